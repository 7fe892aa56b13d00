package shared_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/shared"
)

func TestAbilityModifier(t *testing.T) {
	cases := []struct {
		score int
		want  int
	}{
		{1, -5},
		{7, -2},
		{8, -1},
		{9, -1},
		{10, 0},
		{11, 0},
		{12, 1},
		{15, 2},
		{16, 3},
		{18, 4},
		{20, 5},
		{30, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, shared.AbilityModifier(tc.score), "score %d", tc.score)
	}
}

func TestAttributeRank(t *testing.T) {
	assert.Equal(t, 0, shared.AttributeRank("strength"))
	assert.Equal(t, 1, shared.AttributeRank("dexterity"))
	assert.Equal(t, 5, shared.AttributeRank("charisma"))
	assert.Equal(t, len(shared.Attributes), shared.AttributeRank("luck"))
}
