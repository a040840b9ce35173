// FILE: lixenwraith/lconfig/helper.go
package lconfig

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// isValidKey checks a key against the allowed character class [a-z0-9_.].
func isValidKey(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		ch := key[i]
		isLower := ch >= 'a' && ch <= 'z'
		isDigit := ch >= '0' && ch <= '9'
		if !(isLower || isDigit || ch == '_' || ch == '.') {
			return false
		}
	}
	return true
}

// stringify renders a caller-supplied value in its stored textual form.
func stringify(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	case bool:
		return strconv.FormatBool(v)
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(val).Int(), 10)
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(val).Uint(), 10)
	case float32, float64:
		return strconv.FormatFloat(reflect.ValueOf(val).Float(), 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// stringifyAll expands slices into one string per element.
func stringifyAll(val any) []string {
	switch v := val.(type) {
	case []string:
		return slices.Clone(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			out = append(out, stringify(elem))
		}
		return out
	default:
		return []string{stringify(val)}
	}
}

// dictValues converts one dict leaf into stored values, one per list element.
// Lists holding tables or other lists have no line form.
func dictValues(val any) ([]string, error) {
	var elems []any
	switch v := val.(type) {
	case []map[string]any:
		return nil, fmt.Errorf("%w: list of tables", ErrUnsupportedFormat)
	case []any:
		elems = v
	default:
		return stringifyAll(val), nil
	}
	out := make([]string, 0, len(elems))
	for _, elem := range elems {
		switch elem.(type) {
		case map[string]any, []any, []map[string]any:
			return nil, fmt.Errorf("%w: nested value in list", ErrUnsupportedFormat)
		}
		out = append(out, stringify(elem))
	}
	return out, nil
}

// flattenDict walks a nested map and calls fn with dotted keys in sorted
// order, so dict sources apply deterministically.
func flattenDict(nested map[string]any, prefix string, fn func(key string, val any) error) error {
	for _, key := range slices.Sorted(maps.Keys(nested)) {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if sub, ok := nested[key].(map[string]any); ok {
			if err := flattenDict(sub, path, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(path, nested[key]); err != nil {
			return err
		}
	}
	return nil
}

// setNestedValue sets a value in a nested map using a dot-notation path.
// It creates intermediate maps if they don't exist.
// If a segment exists but is not a map, it will be overwritten by a new map.
func setNestedValue(nested map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := nested

	for i := 0; i < len(segments)-1; i++ {
		segment := segments[i]
		next, exists := current[segment]
		if nextMap, isMap := next.(map[string]any); exists && isMap {
			current = nextMap
			continue
		}
		newMap := make(map[string]any)
		current[segment] = newMap
		current = newMap
	}

	current[segments[len(segments)-1]] = value
}
