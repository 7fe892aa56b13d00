package detect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/beyond-tracker/internal/detect"
)

func TestMateriallyDifferent_NilHandling(t *testing.T) {
	assert.False(t, detect.MateriallyDifferent(nil, nil))
	assert.True(t, detect.MateriallyDifferent(nil, 5))
	assert.True(t, detect.MateriallyDifferent("hello", nil))
}

func TestMateriallyDifferent_Scalars(t *testing.T) {
	assert.False(t, detect.MateriallyDifferent(5, 5))
	assert.True(t, detect.MateriallyDifferent(5, 6))
	assert.False(t, detect.MateriallyDifferent("a", "a"))
	assert.True(t, detect.MateriallyDifferent("a", "b"))
	assert.False(t, detect.MateriallyDifferent(true, true))
	assert.True(t, detect.MateriallyDifferent(true, false))
}

func TestMateriallyDifferent_NumericCoercion(t *testing.T) {
	// JSON round-trips turn ints into float64; same magnitude is not a change
	assert.False(t, detect.MateriallyDifferent(3, float64(3)))
	assert.True(t, detect.MateriallyDifferent(3, float64(3.5)))
	assert.False(t, detect.MateriallyDifferent(int64(42), 42))
}

func TestMateriallyDifferent_CrossType(t *testing.T) {
	assert.True(t, detect.MateriallyDifferent("5", []any{5}))
	assert.True(t, detect.MateriallyDifferent(map[string]any{}, []any{}))
	assert.True(t, detect.MateriallyDifferent(true, "true"))
}

func TestMateriallyDifferent_Maps(t *testing.T) {
	a := map[string]any{"x": 1, "y": map[string]any{"z": "deep"}}
	b := map[string]any{"x": 1, "y": map[string]any{"z": "deep"}}
	assert.False(t, detect.MateriallyDifferent(a, b))

	c := map[string]any{"x": 1, "y": map[string]any{"z": "changed"}}
	assert.True(t, detect.MateriallyDifferent(a, c))

	// differing key sets
	d := map[string]any{"x": 1}
	assert.True(t, detect.MateriallyDifferent(a, d))
}

func TestMateriallyDifferent_Slices(t *testing.T) {
	assert.False(t, detect.MateriallyDifferent([]any{1, 2, 3}, []any{1, 2, 3}))
	assert.True(t, detect.MateriallyDifferent([]any{1, 2, 3}, []any{1, 2}))
	assert.True(t, detect.MateriallyDifferent([]any{1, 2, 3}, []any{1, 2, 4}))
	assert.False(t, detect.MateriallyDifferent([]string{"a"}, []string{"a"}))
}

// TestMateriallyDifferent_Totality throws deliberately awkward pairs at the
// comparator; surviving without a panic is the assertion.
func TestMateriallyDifferent_Totality(t *testing.T) {
	type opaque struct{ F func() }
	values := []any{
		nil,
		0, -1, 3.14,
		"", "str",
		true,
		[]any{nil, map[string]any{"k": []any{1, "two"}}},
		map[string]any{"nested": map[string]any{"deep": []any{[]any{[]any{"x"}}}}},
		map[string]string{"a": "b"},
		[]int{1, 2},
		struct{ X int }{X: 1},
		opaque{},
		make(chan int),
		func() {},
	}

	for _, oldValue := range values {
		for _, newValue := range values {
			assert.NotPanics(t, func() {
				detect.MateriallyDifferent(oldValue, newValue)
			})
		}
	}
}
