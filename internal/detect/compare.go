package detect

import (
	"reflect"
	"strconv"
)

// MateriallyDifferent reports whether two values of unknown type differ in a
// way worth reporting. It never panics: any comparison that cannot be made
// safely is treated as a difference, because a false positive costs a noisy
// notification while a false negative silently loses data.
func MateriallyDifferent(oldValue, newValue any) bool {
	return safeCompare(oldValue, newValue)
}

func safeCompare(oldValue, newValue any) (different bool) {
	defer func() {
		if r := recover(); r != nil {
			different = true
		}
	}()

	if oldValue == nil && newValue == nil {
		return false
	}
	if oldValue == nil || newValue == nil {
		return true
	}

	oldMap, oldIsMap := asStringMap(oldValue)
	newMap, newIsMap := asStringMap(newValue)
	if oldIsMap != newIsMap {
		return true
	}
	if oldIsMap {
		return compareMaps(oldMap, newMap)
	}

	oldSlice, oldIsSlice := asSlice(oldValue)
	newSlice, newIsSlice := asSlice(newValue)
	if oldIsSlice != newIsSlice {
		return true
	}
	if oldIsSlice {
		return compareSlices(oldSlice, newSlice)
	}

	// Numeric values compare by magnitude so that 3 and 3.0 surviving a
	// JSON round-trip as different Go types do not read as a change.
	oldNum, oldIsNum := AsFloat(oldValue)
	newNum, newIsNum := AsFloat(newValue)
	if oldIsNum && newIsNum {
		return oldNum != newNum
	}

	if reflect.TypeOf(oldValue) != reflect.TypeOf(newValue) {
		return true
	}

	return !reflect.DeepEqual(oldValue, newValue)
}

func compareMaps(oldMap, newMap map[string]any) bool {
	if len(oldMap) != len(newMap) {
		return true
	}
	for key, oldVal := range oldMap {
		newVal, ok := newMap[key]
		if !ok {
			return true
		}
		if safeCompare(oldVal, newVal) {
			return true
		}
	}
	return false
}

func compareSlices(oldSlice, newSlice []any) bool {
	if len(oldSlice) != len(newSlice) {
		return true
	}
	for i := range oldSlice {
		if safeCompare(oldSlice[i], newSlice[i]) {
			return true
		}
	}
	return false
}

func asStringMap(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	}
	return nil, false
}

func asSlice(value any) ([]any, bool) {
	switch s := value.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, v := range s {
			out[i] = v
		}
		return out, true
	case []int:
		out := make([]any, len(s))
		for i, v := range s {
			out[i] = v
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(s))
		for i, v := range s {
			out[i] = v
		}
		return out, true
	}
	return nil, false
}

// AsFloat coerces a scalar to float64. JSON decoding yields float64 for all
// numbers, but normalized data built in Go carries ints and the occasional
// numeric string, so all three families are accepted.
func AsFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case bool:
		return 0, false
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// AsInt coerces a scalar to int, truncating floats.
func AsInt(value any) (int, bool) {
	f, ok := AsFloat(value)
	if !ok {
		return 0, false
	}
	return int(f), true
}
