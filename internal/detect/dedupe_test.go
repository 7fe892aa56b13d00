package detect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/beyond-tracker/internal/detect"
	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
)

func change(path, description string) *character.FieldChange {
	c := character.NewFieldChange(path, "old", "new", character.ChangeTypeModified)
	c.Description = description
	return c
}

func TestDeduplicate_PrefersLongerDescription(t *testing.T) {
	generic := change("current_hp", "Field current_hp changed")
	specific := change("current_hp", "Hit points dropped after the ambush: 24 -> 11")

	result := detect.Deduplicate([]*character.FieldChange{generic, specific})
	require.Len(t, result, 1)
	assert.Equal(t, specific.Description, result[0].Description)

	// order of presentation must not matter
	result = detect.Deduplicate([]*character.FieldChange{specific, generic})
	require.Len(t, result, 1)
	assert.Equal(t, specific.Description, result[0].Description)
}

func TestDeduplicate_EqualLengthPrefersNonGeneric(t *testing.T) {
	generic := change("armor_class", "value changed 14 - 15")
	specific := change("armor_class", "Armor Class: 14 -> 15")
	require.Equal(t, len(generic.Description), len(specific.Description))

	result := detect.Deduplicate([]*character.FieldChange{generic, specific})
	require.Len(t, result, 1)
	assert.Equal(t, specific.Description, result[0].Description)
}

func TestDeduplicate_KeepsDistinctPathsAndOrder(t *testing.T) {
	a := change("level", "Level up! 4 -> 5")
	b := change("max_hp", "Max HP: 31 -> 38")
	c := change("level", "Level up! 4 -> 5")

	result := detect.Deduplicate([]*character.FieldChange{a, b, c})
	require.Len(t, result, 2)
	assert.Equal(t, "level", result[0].FieldPath)
	assert.Equal(t, "max_hp", result[1].FieldPath)
}

func TestDeduplicate_DropsEmptyChanges(t *testing.T) {
	noise := character.NewFieldChange("ghost", nil, nil, character.ChangeTypeModified)
	real := change("speed", "Speed: 30 -> 35")

	result := detect.Deduplicate([]*character.FieldChange{noise, real})
	require.Len(t, result, 1)
	assert.Equal(t, "speed", result[0].FieldPath)
}

func TestGroupByCategory_SpellOrdering(t *testing.T) {
	learned := character.NewFieldChange("spells.Fireball", nil,
		map[string]any{"name": "Fireball", "level": 3}, character.ChangeTypeAdded)
	learned.Category = character.CategorySpells

	cantrip := character.NewFieldChange("spells.Fire Bolt", nil,
		map[string]any{"name": "Fire Bolt", "level": 0}, character.ChangeTypeAdded)
	cantrip.Category = character.CategorySpells

	forgotten := character.NewFieldChange("spells.Sleep",
		map[string]any{"name": "Sleep", "level": 1}, nil, character.ChangeTypeRemoved)
	forgotten.Category = character.CategorySpells

	groups := detect.GroupByCategory([]*character.FieldChange{learned, cantrip, forgotten})
	spells := groups[character.CategorySpells]
	require.Len(t, spells, 3)

	// forgotten first, then learned cantrip before learned level 3
	assert.Equal(t, "spells.Sleep", spells[0].FieldPath)
	assert.Equal(t, "spells.Fire Bolt", spells[1].FieldPath)
	assert.Equal(t, "spells.Fireball", spells[2].FieldPath)
}

func TestGroupByCategory_AbilityOrdering(t *testing.T) {
	cha := character.NewFieldChange("ability_scores.charisma", 10, 12, character.ChangeTypeIncremented)
	cha.Category = character.CategoryAbilities
	str := character.NewFieldChange("ability_scores.strength", 16, 18, character.ChangeTypeIncremented)
	str.Category = character.CategoryAbilities
	dex := character.NewFieldChange("ability_scores.dexterity", 14, 13, character.ChangeTypeDecremented)
	dex.Category = character.CategoryAbilities

	groups := detect.GroupByCategory([]*character.FieldChange{cha, str, dex})
	abilities := groups[character.CategoryAbilities]
	require.Len(t, abilities, 3)
	assert.Equal(t, "ability_scores.strength", abilities[0].FieldPath)
	assert.Equal(t, "ability_scores.dexterity", abilities[1].FieldPath)
	assert.Equal(t, "ability_scores.charisma", abilities[2].FieldPath)
}

func TestSortChanges(t *testing.T) {
	low := change("currency.gold", "gold")
	low.Priority = character.PriorityLow
	critB := change("max_hp", "hp")
	critB.Priority = character.PriorityCritical
	critA := change("level", "level")
	critA.Priority = character.PriorityCritical

	changes := []*character.FieldChange{low, critB, critA}
	detect.SortChanges(changes)

	assert.Equal(t, "level", changes[0].FieldPath)
	assert.Equal(t, "max_hp", changes[1].FieldPath)
	assert.Equal(t, "currency.gold", changes[2].FieldPath)
}

func TestFilterByGroups(t *testing.T) {
	changes := []*character.FieldChange{
		change("spells.Fireball", "spell"),
		change("currency.gold", "money"),
		change("level", "level"),
	}

	// empty include keeps everything
	assert.Len(t, detect.FilterByGroups(changes, nil, nil), 3)

	// include narrows
	kept := detect.FilterByGroups(changes, []string{"spells"}, nil)
	require.Len(t, kept, 1)
	assert.Equal(t, "spells.Fireball", kept[0].FieldPath)

	// exclude wins over include
	kept = detect.FilterByGroups(changes, []string{"spells", "inventory"}, []string{"inventory"})
	require.Len(t, kept, 1)
	assert.Equal(t, "spells.Fireball", kept[0].FieldPath)

	// unknown group names match nothing
	assert.Empty(t, detect.FilterByGroups(changes, []string{"no_such_group"}, nil))
}
