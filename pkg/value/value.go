// Package value defines the typed scalar values and comparison operators used
// by predicates, columns and query results. The set of types and operators is
// closed; code that consumes them switches exhaustively.
package value

import (
	"fmt"
	"strconv"

	"github.com/stratadb/strata/pkg/errors"
)

// Type identifies the runtime type of a Value.
type Type int

const (
	// TypeInt is a signed 64-bit integer. Time columns hold TypeInt values
	// (nanoseconds since the epoch).
	TypeInt Type = iota
	// TypeFloat is a 64-bit float.
	TypeFloat
	// TypeString is a UTF-8 string. Tag columns hold TypeString values.
	TypeString
	// TypeBool is a boolean.
	TypeBool
)

// String returns the type name used in errors and serialized results.
func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// ParseType converts a type name back into a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "int":
		return TypeInt, nil
	case "float":
		return TypeFloat, nil
	case "string":
		return TypeString, nil
	case "bool":
		return TypeBool, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeInvalidArgument, "unknown value type %q", s)
	}
}

// Value is a tagged union over the supported column value types. The zero
// Value is the integer 0.
type Value struct {
	typ Type
	i   int64
	f   float64
	s   string
	b   bool
}

// Int creates an integer value.
func Int(v int64) Value { return Value{typ: TypeInt, i: v} }

// Float creates a float value.
func Float(v float64) Value { return Value{typ: TypeFloat, f: v} }

// String creates a string value.
func String(v string) Value { return Value{typ: TypeString, s: v} }

// Bool creates a boolean value.
func Bool(v bool) Value { return Value{typ: TypeBool, b: v} }

// Type returns the value's runtime type.
func (v Value) Type() Type { return v.typ }

// IntVal returns the integer payload. The caller must have checked the type.
func (v Value) IntVal() int64 { return v.i }

// FloatVal returns the float payload. The caller must have checked the type.
func (v Value) FloatVal() float64 { return v.f }

// StringVal returns the string payload. The caller must have checked the type.
func (v Value) StringVal() string { return v.s }

// BoolVal returns the boolean payload. The caller must have checked the type.
func (v Value) BoolVal() bool { return v.b }

// Interface returns the payload as an untyped interface value, for
// serialization boundaries.
func (v Value) Interface() interface{} {
	switch v.typ {
	case TypeInt:
		return v.i
	case TypeFloat:
		return v.f
	case TypeString:
		return v.s
	case TypeBool:
		return v.b
	default:
		return nil
	}
}

// String renders the value for error messages and logs.
func (v Value) String() string {
	switch v.typ {
	case TypeInt:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case TypeString:
		return strconv.Quote(v.s)
	case TypeBool:
		return strconv.FormatBool(v.b)
	default:
		return "<invalid>"
	}
}

// Compare orders v against other, returning -1, 0 or 1. Both values must have
// the same type; comparing across types is a schema mismatch. Booleans order
// false before true.
func (v Value) Compare(other Value) (int, error) {
	if v.typ != other.typ {
		return 0, errors.Newf(errors.ErrorTypeSchemaMismatch,
			"cannot compare %s value with %s value", v.typ, other.typ)
	}
	switch v.typ {
	case TypeInt:
		return cmpInt64(v.i, other.i), nil
	case TypeFloat:
		return cmpFloat64(v.f, other.f), nil
	case TypeString:
		return cmpString(v.s, other.s), nil
	case TypeBool:
		return cmpBool(v.b, other.b), nil
	default:
		return 0, errors.Newf(errors.ErrorTypeInternal, "invalid value type %d", int(v.typ))
	}
}

// Equal reports whether both values have the same type and payload.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	c, _ := v.Compare(other)
	return c == 0
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
