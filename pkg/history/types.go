// Package history provides a typed, columnar, append-only store for
// per-iteration scalar values produced by an iterative solver.
package history

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind represents the declared value type of a variable
type Kind int

const (
	// KindInt stores values as int64
	KindInt Kind = iota
	// KindFloat stores values as float64
	KindFloat
	// KindComplex stores values as complex128
	KindComplex
	// KindString stores values as string
	KindString
	// KindOther stores values as-is without coercion
	KindOther
)

// kindNames maps kinds to their snapshot tags
var kindNames = map[Kind]string{
	KindInt:     "int",
	KindFloat:   "float",
	KindComplex: "complex",
	KindString:  "string",
	KindOther:   "other",
}

// String returns the kind's name
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindFromString resolves a snapshot kind tag back to a Kind
func KindFromString(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return KindOther, false
}

// Default value formats per kind, chosen to match common solver printouts:
// wide scientific notation for residual-like floats, compact columns for
// counters and labels.
var defaultFormats = map[Kind]string{
	KindInt:     "% 5d",
	KindFloat:   "% 17.11e",
	KindComplex: "% 9.3e",
	KindString:  "%10s",
	KindOther:   "%v",
}

// defaultFormat returns the built-in value format for the kind
func (k Kind) defaultFormat() string {
	return defaultFormats[k]
}

// zero returns the kind's zero value, used to validate format strings at
// registration time
func (k Kind) zero() interface{} {
	switch k {
	case KindInt:
		return int64(0)
	case KindFloat:
		return float64(0)
	case KindComplex:
		return complex128(0)
	case KindString:
		return ""
	default:
		return nil
	}
}

// Convert coerces raw to the kind's canonical Go representation. It returns
// an error when the value cannot represent the kind; the caller is expected
// to wrap it with variable context.
func (k Kind) Convert(raw interface{}) (interface{}, error) {
	switch k {
	case KindInt:
		return toInt64(raw)
	case KindFloat:
		return toFloat64(raw)
	case KindComplex:
		return toComplex128(raw)
	case KindString:
		// Mirrors the permissiveness of string construction: any value
		// has a textual representation.
		if s, ok := raw.(string); ok {
			return s, nil
		}
		if b, ok := raw.([]byte); ok {
			return string(b), nil
		}
		return fmt.Sprintf("%v", raw), nil
	default:
		return raw, nil
	}
}

func toInt64(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return nil, fmt.Errorf("%d overflows int64", v)
		}
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("%d overflows int64", v)
		}
		return int64(v), nil
	case float32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as int", v)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to int", raw)
	}
}

func toFloat64(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as float", v)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to float", raw)
	}
}

func toComplex128(raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case complex128:
		return v, nil
	case complex64:
		return complex128(v), nil
	case float64:
		return complex(v, 0), nil
	case float32:
		return complex(float64(v), 0), nil
	case int:
		return complex(float64(v), 0), nil
	case int64:
		return complex(float64(v), 0), nil
	case string:
		c, err := strconv.ParseComplex(strings.TrimSpace(v), 128)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as complex", v)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to complex", raw)
	}
}

// center pads s with spaces so it occupies width characters, biasing the
// extra space to the right for odd padding. Widths are counted in runes so
// non-ASCII variable names line up.
func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	right := width - n - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
