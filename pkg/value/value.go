// Package value implements the generic data-interchange tree exchanged
// between the host and the Lua runtime, together with JSON, YAML and TOML
// codecs for it.
//
// Value is a closed set of variants:
//
//	Null | Bool | Int | Float | Str | Array | Object
//
// Code that consumes a Value switches over these types exhaustively.
package value

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrConversion is returned when a value cannot be represented in the target
// format.
var ErrConversion = errors.New("value conversion failed")

// Value is one node of a generic data tree.
type Value interface {
	isValue()
}

type (
	// Null is the absent value.
	Null struct{}
	// Bool is a boolean.
	Bool bool
	// Int is a 64-bit signed integer.
	Int int64
	// Float is a double precision number.
	Float float64
	// Str is a UTF-8 string.
	Str string
	// Array is an ordered list of values.
	Array []Value
	// Object maps string keys to values.
	Object map[string]Value
)

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Int) isValue()    {}
func (Float) isValue()  {}
func (Str) isValue()    {}
func (Array) isValue()  {}
func (Object) isValue() {}

// TypeName returns a short name for the variant of v.
func TypeName(v Value) string {
	switch v.(type) {
	case Null, nil:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Str:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Keys returns the keys of o in sorted order.
func (o Object) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Number returns Int(f) when f is integral and fits in an int64, Float(f)
// otherwise.
func Number(f float64) Value {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return Int(int64(f))
	}
	return Float(f)
}

// Native converts v into plain Go values (nil, bool, int64, float64, string,
// []any, map[string]any). It exists for libraries that only accept untyped
// trees.
func Native(v Value) any {
	switch val := v.(type) {
	case Null, nil:
		return nil
	case Bool:
		return bool(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Str:
		return string(val)
	case Array:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Native(item)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Native(item)
		}
		return out
	default:
		panic(fmt.Sprintf("value: unknown variant %T", v))
	}
}
