package types

import (
	"fmt"
	"strconv"
)

// FormatValue renders a value in its canonical string form: the form used
// for row encoding, index keys, and ORDER BY comparison. Nil is rendered
// as the empty string; the NULL literal is the row codec's concern.
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// EqualValues compares two values with SQL literal semantics: nil equals
// only nil, and integers compare equal to floats of the same magnitude.
func EqualValues(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
		return false
	}
	return a == b
}

// CompareValues orders two non-nil values of compatible types.
// Returns a negative, zero, or positive int. Numeric values compare
// numerically across int64/float64; strings lexicographically; booleans
// with false before true. Incompatible types are an error.
func CompareValues(a, b interface{}) (int, error) {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			switch {
			case af < bf:
				return -1, nil
			case af > bf:
				return 1, nil
			default:
				return 0, nil
			}
		}
		return 0, fmt.Errorf("cannot compare %T with %T", a, b)
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		switch {
		case av < bv:
			return -1, nil
		case av > bv:
			return 1, nil
		default:
			return 0, nil
		}
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, fmt.Errorf("cannot compare %T with %T", a, b)
		}
		switch {
		case av == bv:
			return 0, nil
		case !av:
			return -1, nil
		default:
			return 1, nil
		}
	default:
		return 0, fmt.Errorf("cannot compare %T with %T", a, b)
	}
}

// asFloat widens int64 and float64 to float64 for numeric comparison.
func asFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}
