package schema

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	ErrTypeMismatch = errors.New("literal does not match column type")
)

// Literal is a comparison constant. Only one form is meaningful, chosen by
// the type of the column it is compared against.
type Literal struct {
	Int   int64
	Float float64
	Str   string
}

func IntLiteral(v int64) Literal {
	return Literal{Int: v}
}

func FloatLiteral(v float64) Literal {
	return Literal{Float: v}
}

func StringLiteral(v string) Literal {
	return Literal{Str: v}
}

// Compare orders two literals using the form active for typ.
func (f FieldType) Compare(a, b Literal) int {
	switch {
	case f.IsInteger():
		return cmp.Compare(a.Int, b.Int)
	case f.IsFloat():
		return cmp.Compare(a.Float, b.Float)
	default:
		return cmp.Compare(a.Str, b.Str)
	}
}

// Value returns the active form of l as a plain Go value.
func (f FieldType) Value(l Literal) any {
	switch {
	case f.IsInteger():
		return l.Int
	case f.IsFloat():
		return l.Float
	default:
		return l.Str
	}
}

func (f FieldType) FormatLiteral(l Literal) string {
	switch {
	case f.IsInteger():
		return strconv.FormatInt(l.Int, 10)
	case f.IsFloat():
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	default:
		return strconv.Quote(l.Str)
	}
}

func integerRange(f FieldType) (int64, int64) {
	switch f {
	case Int8FieldType:
		return math.MinInt8, math.MaxInt8
	case Int16FieldType:
		return math.MinInt16, math.MaxInt16
	case Int32FieldType:
		return math.MinInt32, math.MaxInt32
	case Uint8FieldType:
		return 0, math.MaxUint8
	case Uint16FieldType:
		return 0, math.MaxUint16
	case Uint32FieldType:
		return 0, math.MaxUint32
	case Uint64FieldType:
		// evaluated in the int64 domain
		return 0, math.MaxInt64
	default:
		return math.MinInt64, math.MaxInt64
	}
}

func mismatch(f FieldType, v any) error {
	return fmt.Errorf("%w: %T(%v) for %s column", ErrTypeMismatch, v, v, f.String())
}

func integerLiteral(f FieldType, v int64, raw any) (Literal, error) {
	lo, hi := integerRange(f)
	if v < lo || v > hi {
		return Literal{}, mismatch(f, raw)
	}
	return IntLiteral(v), nil
}

func floatToInteger(f FieldType, v float64, raw any) (Literal, error) {
	if math.Trunc(v) != v || v < math.MinInt64 || v >= math.MaxInt64 {
		return Literal{}, mismatch(f, raw)
	}
	return integerLiteral(f, int64(v), raw)
}

// LiteralOf converts a Go value into a literal for a column of type f.
// This is the construction time type check of every leaf operator.
// Float32 literals are narrowed to the stored precision, NaN and infinities
// are rejected.
func LiteralOf(f FieldType, v any) (Literal, error) {
	l, err := literalOf(f, v)
	if err != nil {
		return l, err
	}
	if !f.IsFloat() {
		return l, nil
	}
	if f == Float32FieldType {
		l.Float = float64(float32(l.Float))
	}
	// infinities have no wire form
	if math.IsNaN(l.Float) || math.IsInf(l.Float, 0) {
		return Literal{}, mismatch(f, v)
	}
	return l, nil
}

func literalOf(f FieldType, v any) (Literal, error) {

	if !f.Valid() {
		return Literal{}, fmt.Errorf("%w: unknown column type %d", ErrTypeMismatch, uint8(f))
	}

	if f.IsString() {
		if s, ok := v.(string); ok {
			return StringLiteral(s), nil
		}
		return Literal{}, mismatch(f, v)
	}

	switch n := v.(type) {
	case json.Number:
		if f.IsInteger() {
			if i, err := n.Int64(); err == nil {
				return integerLiteral(f, i, v)
			}
		}
		fl, err := n.Float64()
		if err != nil {
			return Literal{}, mismatch(f, v)
		}
		if f.IsInteger() {
			return floatToInteger(f, fl, v)
		}
		return FloatLiteral(fl), nil

	case float64:
		if f.IsInteger() {
			return floatToInteger(f, n, v)
		}
		return FloatLiteral(n), nil
	case float32:
		if f.IsInteger() {
			return floatToInteger(f, float64(n), v)
		}
		return FloatLiteral(float64(n)), nil
	}

	var i int64
	switch n := v.(type) {
	case int:
		i = int64(n)
	case int8:
		i = int64(n)
	case int16:
		i = int64(n)
	case int32:
		i = int64(n)
	case int64:
		i = n
	case uint:
		if uint64(n) > math.MaxInt64 {
			return Literal{}, mismatch(f, v)
		}
		i = int64(n)
	case uint8:
		i = int64(n)
	case uint16:
		i = int64(n)
	case uint32:
		i = int64(n)
	case uint64:
		if n > math.MaxInt64 {
			return Literal{}, mismatch(f, v)
		}
		i = int64(n)
	default:
		return Literal{}, mismatch(f, v)
	}

	if f.IsFloat() {
		return FloatLiteral(float64(i)), nil
	}
	return integerLiteral(f, i, v)
}

// MustLiteral is LiteralOf for values known to be valid.
func MustLiteral(f FieldType, v any) Literal {
	l, err := LiteralOf(f, v)
	if err != nil {
		panic(err)
	}
	return l
}
