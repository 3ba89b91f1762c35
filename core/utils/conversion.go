// Package utils provides value coercion shared by the entity models.
//
// Provider responses and YAML configuration decode into loosely typed
// values (float64 for JSON numbers, nil for absent strings). These helpers
// normalize them against a declared type, reporting an error when the
// value cannot be represented rather than converting best-effort.
package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// CoerceString converts v to a string. A nil value becomes the empty
// string, and a lone space collapses to empty: some provider backends
// normalize empty strings to a single space on the way back out.
func CoerceString(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("value %v (%T) is not a string", v, v)
	}
	if s == " " {
		return "", nil
	}
	return s, nil
}

// CoerceInt converts v to an int, accepting the numeric types produced by
// JSON and YAML decoding plus numeric strings.
func CoerceInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("value %q is not an integer", n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("value %v (%T) is not an integer", v, v)
	}
}

// CoerceBool converts v to a bool. Unlike numbers, booleans arrive typed
// from both JSON and YAML decoding, so there is no string fallback: a
// string against a boolean field is a schema error.
func CoerceBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("value %v (%T) is not a boolean", v, v)
	}
	return b, nil
}
