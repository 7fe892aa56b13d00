package detect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/beyond-tracker/internal/detect"
)

func TestFlatten_NestedMaps(t *testing.T) {
	data := map[string]any{
		"name": "Thorin",
		"ability_scores": map[string]any{
			"strength":  16,
			"dexterity": 12,
		},
	}

	flat := detect.Flatten(data, "")

	assert.Equal(t, "Thorin", flat["name"])
	assert.Equal(t, 16, flat["ability_scores.strength"])
	assert.Equal(t, 12, flat["ability_scores.dexterity"])
}

func TestFlatten_StructuredLists(t *testing.T) {
	data := map[string]any{
		"inventory": []any{
			map[string]any{"name": "Rope", "quantity": 1},
			map[string]any{"name": "Torch", "quantity": 3},
		},
	}

	flat := detect.Flatten(data, "")

	assert.Equal(t, "Rope", flat["inventory[0].name"])
	assert.Equal(t, 1, flat["inventory[0].quantity"])
	assert.Equal(t, "Torch", flat["inventory[1].name"])
	assert.Equal(t, 3, flat["inventory[1].quantity"])
}

func TestFlatten_ScalarListsKeptWhole(t *testing.T) {
	data := map[string]any{
		"languages": []any{"Common", "Dwarvish"},
	}

	flat := detect.Flatten(data, "")

	require.Contains(t, flat, "languages")
	assert.NotContains(t, flat, "languages[0]")
	assert.Equal(t, []any{"Common", "Dwarvish"}, flat["languages"])
}

func TestFlatten_StructAccess(t *testing.T) {
	type stats struct {
		MaxHP     int `json:"max_hp"`
		CurrentHP int `json:"current_hp"`
	}
	data := map[string]any{
		"combat": stats{MaxHP: 20, CurrentHP: 14},
	}

	flat := detect.Flatten(data, "")

	assert.Equal(t, 20, flat["combat.max_hp"])
	assert.Equal(t, 14, flat["combat.current_hp"])
}

func TestGet_MapAndStruct(t *testing.T) {
	m := map[string]any{"level": 4}
	v, ok := detect.Get(m, "level")
	require.True(t, ok)
	assert.Equal(t, 4, v)

	type spell struct {
		Name  string `json:"name"`
		Level int    `json:"level"`
	}
	s := &spell{Name: "Shield", Level: 1}
	v, ok = detect.Get(s, "name")
	require.True(t, ok)
	assert.Equal(t, "Shield", v)

	_, ok = detect.Get(s, "missing")
	assert.False(t, ok)

	_, ok = detect.Get(nil, "anything")
	assert.False(t, ok)
}

func TestGetString_Coercion(t *testing.T) {
	m := map[string]any{"level": 4, "name": "Shield"}
	assert.Equal(t, "Shield", detect.GetString(m, "name", ""))
	assert.Equal(t, "4", detect.GetString(m, "level", ""))
	assert.Equal(t, "fallback", detect.GetString(m, "missing", "fallback"))
}
