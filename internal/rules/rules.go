// Package rules holds the stateless 5e arithmetic used to enrich scraped
// character data with derived stats.
package rules

import (
	"github.com/KirkDiggler/beyond-tracker/internal/domain/shared"
)

// Weapon is the slice of item data the calculators need.
type Weapon struct {
	Name       string
	Ranged     bool
	Finesse    bool
	Proficient bool
}

// ProficiencyBonus returns the bonus for a character level: +2 at levels
// 1-4, +3 at 5-8, and so on.
func ProficiencyBonus(level int) int {
	if level < 1 {
		level = 1
	}
	return 2 + (level-1)/4
}

// WeaponAbility picks the ability a weapon attacks with: ranged weapons use
// DEX, finesse weapons use whichever of STR or DEX has the better modifier,
// everything else uses STR.
func WeaponAbility(weapon Weapon, scores map[string]int) shared.Attribute {
	if weapon.Ranged {
		return shared.AttributeDexterity
	}
	if weapon.Finesse {
		strMod := shared.AbilityModifier(scores[string(shared.AttributeStrength)])
		dexMod := shared.AbilityModifier(scores[string(shared.AttributeDexterity)])
		if dexMod > strMod {
			return shared.AttributeDexterity
		}
		return shared.AttributeStrength
	}
	return shared.AttributeStrength
}

// WeaponAttackBonus computes the attack bonus for a weapon: the relevant
// ability modifier plus proficiency bonus when proficient.
func WeaponAttackBonus(weapon Weapon, scores map[string]int, level int) int {
	ability := WeaponAbility(weapon, scores)
	bonus := shared.AbilityModifier(scores[string(ability)])
	if weapon.Proficient {
		bonus += ProficiencyBonus(level)
	}
	return bonus
}

// WeaponDamageBonus computes the flat damage bonus: the ability modifier
// only, proficiency never applies to damage.
func WeaponDamageBonus(weapon Weapon, scores map[string]int) int {
	ability := WeaponAbility(weapon, scores)
	return shared.AbilityModifier(scores[string(ability)])
}

// SkillBonus computes a skill check bonus from the governing ability score.
// Expertise doubles the proficiency bonus.
func SkillBonus(abilityScore, level int, proficient, expertise bool) int {
	bonus := shared.AbilityModifier(abilityScore)
	if proficient {
		pb := ProficiencyBonus(level)
		if expertise {
			pb *= 2
		}
		bonus += pb
	}
	return bonus
}

// SaveBonus computes a saving-throw bonus.
func SaveBonus(abilityScore, level int, proficient bool) int {
	bonus := shared.AbilityModifier(abilityScore)
	if proficient {
		bonus += ProficiencyBonus(level)
	}
	return bonus
}

// PassivePerception is 10 plus the perception skill bonus.
func PassivePerception(wisdomScore, level int, proficient bool) int {
	return 10 + SkillBonus(wisdomScore, level, proficient, false)
}

// SpellSaveDC computes the spell save DC from the casting ability.
func SpellSaveDC(castingScore, level int) int {
	return 8 + ProficiencyBonus(level) + shared.AbilityModifier(castingScore)
}

// SpellAttackBonus computes the spell attack bonus from the casting ability.
func SpellAttackBonus(castingScore, level int) int {
	return ProficiencyBonus(level) + shared.AbilityModifier(castingScore)
}
