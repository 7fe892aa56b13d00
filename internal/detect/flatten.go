package detect

import (
	"fmt"
	"reflect"
	"strings"
)

// Get looks up key on an arbitrary container. It tries struct fields first
// (exported name or json tag), then map keys. The flattener and every
// extractor share this accessor so no detector needs its own branching on
// container shape.
func Get(container any, key string) (any, bool) {
	if container == nil {
		return nil, false
	}

	switch m := container.(type) {
	case map[string]any:
		v, ok := m[key]
		return v, ok
	case map[string]string:
		v, ok := m[key]
		return v, ok
	}

	rv := reflect.ValueOf(container)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return structField(rv, key)
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			v := rv.MapIndex(reflect.ValueOf(key))
			if v.IsValid() {
				return v.Interface(), true
			}
		}
	default:
	}

	return nil, false
}

// GetString is Get with string coercion and a default.
func GetString(container any, key, fallback string) string {
	v, ok := Get(container, key)
	if !ok || v == nil {
		return fallback
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// GetNumber is Get with numeric coercion and a default.
func GetNumber(container any, key string, fallback float64) float64 {
	v, ok := Get(container, key)
	if !ok {
		return fallback
	}
	f, ok := AsFloat(v)
	if !ok {
		return fallback
	}
	return f
}

func structField(rv reflect.Value, key string) (any, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		if tag, ok := field.Tag.Lookup("json"); ok {
			name, _, _ := strings.Cut(tag, ",")
			if name == key {
				return rv.Field(i).Interface(), true
			}
		}
		if strings.EqualFold(field.Name, key) {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}

// Flatten converts nested character data into a flat mapping from field path
// to leaf value. Nested containers recurse with dotted paths; sequences of
// structured elements recurse per index with bracketed paths. Sequences of
// scalars are kept whole under the parent path: diffing a scalar list at the
// whole-list level avoids a burst of index-churn changes when one element
// shifts position.
func Flatten(data any, prefix string) map[string]any {
	flat := make(map[string]any)
	flattenInto(flat, data, prefix)
	return flat
}

func flattenInto(flat map[string]any, data any, prefix string) {
	if data == nil {
		if prefix != "" {
			flat[prefix] = nil
		}
		return
	}

	if m, ok := asStringMap(data); ok {
		if len(m) == 0 && prefix != "" {
			flat[prefix] = m
			return
		}
		for key, value := range m {
			flattenInto(flat, value, joinPath(prefix, key))
		}
		return
	}

	if s, ok := asSlice(data); ok {
		if allStructured(s) && len(s) > 0 {
			for i, element := range s {
				flattenInto(flat, element, fmt.Sprintf("%s[%d]", prefix, i))
			}
			return
		}
		if prefix != "" {
			flat[prefix] = s
		}
		return
	}

	if isStruct(data) {
		rv := reflect.ValueOf(data)
		for rv.Kind() == reflect.Pointer {
			rv = rv.Elem()
		}
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			field := rt.Field(i)
			if !field.IsExported() {
				continue
			}
			name := field.Name
			if tag, ok := field.Tag.Lookup("json"); ok {
				if tagName, _, _ := strings.Cut(tag, ","); tagName != "" && tagName != "-" {
					name = tagName
				}
			}
			flattenInto(flat, rv.Field(i).Interface(), joinPath(prefix, name))
		}
		return
	}

	if prefix != "" {
		flat[prefix] = data
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func allStructured(s []any) bool {
	for _, element := range s {
		if _, ok := asStringMap(element); ok {
			continue
		}
		if isStruct(element) {
			continue
		}
		return false
	}
	return true
}

func isStruct(value any) bool {
	if value == nil {
		return false
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	return rv.Kind() == reflect.Struct
}
