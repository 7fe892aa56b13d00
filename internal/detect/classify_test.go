package detect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/beyond-tracker/internal/detect"
	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
)

func TestMatchPattern_Anchored(t *testing.T) {
	assert.True(t, detect.MatchPattern("spells.*", "spells.Fire Bolt"))
	assert.True(t, detect.MatchPattern("spells.*", "spells.a.b.c"), "wildcard crosses separators")
	assert.False(t, detect.MatchPattern("spells.*", "known_spells.Fire Bolt"), "anchored at start")
	assert.False(t, detect.MatchPattern("spells", "spells.Fire Bolt"), "no wildcard means exact")
	assert.True(t, detect.MatchPattern("spells", "spells"))
	assert.True(t, detect.MatchPattern("inventory[*].quantity", "inventory[3].quantity"))
	assert.False(t, detect.MatchPattern("inventory[*].quantity", "inventory[3].name"))
	assert.True(t, detect.MatchPattern("*", "anything.at.all"))
}

func TestPatternSpecificity_Ordering(t *testing.T) {
	// fewer wildcards beats more, literal length breaks ties
	assert.Greater(t,
		detect.PatternSpecificity("spell_slots.level_1"),
		detect.PatternSpecificity("spell_slots.*"))
	assert.Greater(t,
		detect.PatternSpecificity("inventory.*.quantity"),
		detect.PatternSpecificity("inventory*"))
	assert.Greater(t,
		detect.PatternSpecificity("a.*.b"),
		detect.PatternSpecificity("*.a.*"))
}

func TestCategoryForPath(t *testing.T) {
	tests := []struct {
		path string
		want character.Category
	}{
		{"name", character.CategoryBasicInfo},
		{"level", character.CategoryProgression},
		{"max_hp", character.CategoryCombat},
		{"armor_class", character.CategoryCombat},
		{"ability_scores.strength", character.CategoryAbilities},
		{"skills.athletics", character.CategorySkills},
		{"spells.Fire Bolt", character.CategorySpells},
		{"spell_slots.level_3", character.CategorySpells},
		{"inventory[2].quantity", character.CategoryInventory},
		{"currency.gold", character.CategoryInventory},
		{"feats.Alert", character.CategoryFeatures},
		{"languages", character.CategorySocial},
		{"totally.unknown.path", character.CategoryMetadata},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, detect.CategoryForPath(tt.path), "path %s", tt.path)
	}
}

func TestInferCategory_ContainsMode(t *testing.T) {
	// legacy contains matching catches paths the anchored table misses
	assert.Equal(t, character.CategorySpells, detect.InferCategory("bonus_spell_data.extra"))
	assert.Equal(t, character.CategoryCombat, detect.InferCategory("override_armor_value"))
	assert.Equal(t, character.CategoryMetadata, detect.InferCategory("zzz.opaque"))
}

func TestIsNumericField_Allowlist(t *testing.T) {
	assert.True(t, detect.IsNumericField("level"))
	assert.True(t, detect.IsNumericField("ability_scores.strength"))
	assert.True(t, detect.IsNumericField("inventory[3].quantity"))
	assert.True(t, detect.IsNumericField("spell_slots.level_2"))

	// numerically typed but never a delta
	assert.False(t, detect.IsNumericField("character_id"))
	assert.False(t, detect.IsNumericField("inventory[3].definition_id"))
}

func TestClassifyNumeric(t *testing.T) {
	assert.Equal(t, character.ChangeTypeIncremented, detect.ClassifyNumeric("level", 4, 5))
	assert.Equal(t, character.ChangeTypeDecremented, detect.ClassifyNumeric("current_hp", 20, 12))

	// off-allowlist numeric fields stay modified
	assert.Equal(t, character.ChangeTypeModified, detect.ClassifyNumeric("character_id", 100, 200))

	// failed coercion degrades instead of guessing
	assert.Equal(t, character.ChangeTypeModified, detect.ClassifyNumeric("level", "four", 5))
}
