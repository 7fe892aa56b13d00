package testutils

import (
	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
)

// CharacterFixture returns a fully-populated normalized character data tree.
// Tests mutate a copy to describe the "after" side of a comparison.
func CharacterFixture() map[string]any {
	return map[string]any{
		"name":              "Thorin Oakenshield",
		"race":              "Mountain Dwarf",
		"class":             "Fighter",
		"level":             4,
		"experience":        2700,
		"proficiency_bonus": 2,
		"max_hp":            36,
		"current_hp":        36,
		"armor_class":       17,
		"initiative":        1,
		"speed":             25,
		"ability_scores": map[string]any{
			"strength":     16,
			"dexterity":    12,
			"constitution": 15,
			"intelligence": 10,
			"wisdom":       13,
			"charisma":     8,
		},
		"skills": map[string]any{
			"athletics":    5,
			"perception":   3,
			"intimidation": 1,
		},
		"spells": []any{},
		"inventory": []any{
			map[string]any{"name": "Battleaxe", "quantity": 1, "equipped": true},
			map[string]any{"name": "Rope", "quantity": 1},
			map[string]any{"name": "Rations", "quantity": 5},
		},
		"equipment": []any{
			map[string]any{"name": "Chain Mail", "slot": "body"},
			map[string]any{"name": "Battleaxe", "slot": "main-hand"},
		},
		"currency": map[string]any{
			"gold":   50,
			"silver": 30,
			"copper": 12,
		},
		"proficiencies": map[string]any{
			"weapons": []any{"Battleaxe", "Handaxe", "Longsword"},
			"armor":   []any{"Light Armor", "Medium Armor", "Heavy Armor", "Shields"},
			"tools":   []any{"Smith's Tools"},
		},
		"feats":    []any{"Tough"},
		"features": []any{"Second Wind", "Action Surge"},
	}
}

// CasterFixture returns a level 3 wizard with spells and slots.
func CasterFixture() map[string]any {
	return map[string]any{
		"name":              "Elaria Moonwhisper",
		"race":              "High Elf",
		"class":             "Wizard",
		"level":             3,
		"max_hp":            17,
		"current_hp":        17,
		"armor_class":       12,
		"spell_save_dc":     13,
		"ability_scores": map[string]any{
			"strength":     8,
			"dexterity":    14,
			"constitution": 12,
			"intelligence": 16,
			"wisdom":       13,
			"charisma":     10,
		},
		"spells": []any{
			map[string]any{"name": "Fire Bolt", "level": 0},
			map[string]any{"name": "Magic Missile", "level": 1},
			map[string]any{"name": "Shield", "level": 1},
		},
		"spell_slots": map[string]any{
			"level_1": 4,
			"level_2": 2,
		},
		"inventory": []any{
			map[string]any{"name": "Spellbook", "quantity": 1},
			map[string]any{"name": "Component Pouch", "quantity": 1},
		},
		"currency": map[string]any{
			"gold": 25,
		},
	}
}

// CloneData deep-copies a normalized data tree so tests can mutate one side.
func CloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return CloneData(v)
	case []any:
		out := make([]any, len(v))
		for i, element := range v {
			out[i] = cloneValue(element)
		}
		return out
	default:
		return v
	}
}

// SnapshotPair builds two snapshots of the same character from before/after
// data trees, with distinct versions.
func SnapshotPair(characterID int, before, after map[string]any) (*character.Snapshot, *character.Snapshot) {
	old := character.NewSnapshot(characterID, before)
	latest := character.NewSnapshot(characterID, after)
	latest.Version = old.Version + 60
	return old, latest
}
