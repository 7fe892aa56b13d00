package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/shared"
	"github.com/KirkDiggler/beyond-tracker/internal/rules"
)

func TestProficiencyBonus(t *testing.T) {
	cases := []struct {
		level int
		want  int
	}{
		{1, 2},
		{4, 2},
		{5, 3},
		{8, 3},
		{9, 4},
		{12, 4},
		{13, 5},
		{16, 5},
		{17, 6},
		{20, 6},
		{0, 2},  // clamped
		{-3, 2}, // clamped
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, rules.ProficiencyBonus(tc.level), "level %d", tc.level)
	}
}

func TestWeaponAbility(t *testing.T) {
	scores := map[string]int{
		"strength":  16, // +3
		"dexterity": 14, // +2
	}

	longsword := rules.Weapon{Name: "Longsword"}
	assert.Equal(t, shared.AttributeStrength, rules.WeaponAbility(longsword, scores))

	longbow := rules.Weapon{Name: "Longbow", Ranged: true}
	assert.Equal(t, shared.AttributeDexterity, rules.WeaponAbility(longbow, scores))

	// finesse picks the better modifier, STR here
	rapier := rules.Weapon{Name: "Rapier", Finesse: true}
	assert.Equal(t, shared.AttributeStrength, rules.WeaponAbility(rapier, scores))

	// and DEX for a dexterous wielder
	dexScores := map[string]int{"strength": 10, "dexterity": 18}
	assert.Equal(t, shared.AttributeDexterity, rules.WeaponAbility(rapier, dexScores))

	// ties go to STR
	tied := map[string]int{"strength": 14, "dexterity": 14}
	assert.Equal(t, shared.AttributeStrength, rules.WeaponAbility(rapier, tied))
}

func TestWeaponAttackBonus(t *testing.T) {
	scores := map[string]int{"strength": 16, "dexterity": 12}

	proficient := rules.Weapon{Name: "Battleaxe", Proficient: true}
	assert.Equal(t, 5, rules.WeaponAttackBonus(proficient, scores, 4)) // +3 STR, +2 prof

	improvised := rules.Weapon{Name: "Chair"}
	assert.Equal(t, 3, rules.WeaponAttackBonus(improvised, scores, 4)) // +3 STR only
}

func TestWeaponDamageBonus_NoProficiency(t *testing.T) {
	scores := map[string]int{"strength": 18, "dexterity": 10}
	weapon := rules.Weapon{Name: "Greataxe", Proficient: true}
	assert.Equal(t, 4, rules.WeaponDamageBonus(weapon, scores))
}

func TestSkillBonus(t *testing.T) {
	// 16 WIS (+3), level 5 (+3 prof)
	assert.Equal(t, 3, rules.SkillBonus(16, 5, false, false))
	assert.Equal(t, 6, rules.SkillBonus(16, 5, true, false))
	assert.Equal(t, 9, rules.SkillBonus(16, 5, true, true))

	// expertise without proficiency is meaningless
	assert.Equal(t, 3, rules.SkillBonus(16, 5, false, true))
}

func TestSaveBonus(t *testing.T) {
	assert.Equal(t, 2, rules.SaveBonus(15, 3, false))
	assert.Equal(t, 4, rules.SaveBonus(15, 3, true))
}

func TestPassivePerception(t *testing.T) {
	assert.Equal(t, 13, rules.PassivePerception(16, 1, false))
	assert.Equal(t, 15, rules.PassivePerception(16, 1, true))
}

func TestSpellcasting(t *testing.T) {
	// 16 INT wizard at level 3: DC 8+2+3, attack +5
	assert.Equal(t, 13, rules.SpellSaveDC(16, 3))
	assert.Equal(t, 5, rules.SpellAttackBonus(16, 3))
}
