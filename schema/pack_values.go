package schema

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrValuesLayout = errors.New("pack values do not match column type")
)

// PackValues holds the decoded rows of one column within one pack.
// Integer columns are widened to int64 and float columns to float64.
// Null slots hold the zero value; Nulls is nil when the pack has no nulls.
type PackValues struct {
	Type FieldType

	Ints   []int64
	Floats []float64
	Strs   []string

	Nulls []bool
}

func (v *PackValues) Len() int {
	switch {
	case v.Type.IsInteger():
		return len(v.Ints)
	case v.Type.IsFloat():
		return len(v.Floats)
	default:
		return len(v.Strs)
	}
}

func (v *PackValues) IsNull(row int) bool {
	return v.Nulls != nil && v.Nulls[row]
}

func (v *PackValues) NullCount() int {
	c := 0
	for _, isNull := range v.Nulls {
		if isNull {
			c++
		}
	}
	return c
}

// Literal returns row as a literal, the caller checks IsNull first.
func (v *PackValues) Literal(row int) Literal {
	switch {
	case v.Type.IsInteger():
		return IntLiteral(v.Ints[row])
	case v.Type.IsFloat():
		return FloatLiteral(v.Floats[row])
	default:
		return StringLiteral(v.Strs[row])
	}
}

// Validate checks that only the slice for Type is populated and that the values
// fit the declared width.
func (v *PackValues) Validate() error {

	if !v.Type.Valid() {
		return fmt.Errorf("%w: unknown type %d", ErrValuesLayout, uint8(v.Type))
	}

	switch {
	case v.Type.IsInteger():
		if v.Floats != nil || v.Strs != nil {
			return fmt.Errorf("%w: %s column carries non integer values", ErrValuesLayout, v.Type.String())
		}
		lo, hi := integerRange(v.Type)
		for i, it := range v.Ints {
			if v.IsNull(i) {
				continue
			}
			if it < lo || it > hi {
				return fmt.Errorf("%w: value %d at row %d overflows %s", ErrValuesLayout, it, i, v.Type.String())
			}
		}
	case v.Type.IsFloat():
		if v.Ints != nil || v.Strs != nil {
			return fmt.Errorf("%w: %s column carries non float values", ErrValuesLayout, v.Type.String())
		}
		for i, it := range v.Floats {
			if v.IsNull(i) {
				continue
			}
			if math.IsNaN(it) {
				return fmt.Errorf("%w: NaN at row %d", ErrValuesLayout, i)
			}
			if v.Type == Float32FieldType && overflowsFloat32(it) {
				return fmt.Errorf("%w: %v overflows Float32 at row %d", ErrValuesLayout, it, i)
			}
		}
	default:
		if v.Ints != nil || v.Floats != nil {
			return fmt.Errorf("%w: string column carries numeric values", ErrValuesLayout)
		}
	}

	if v.Nulls != nil && len(v.Nulls) != v.Len() {
		return fmt.Errorf("%w: %d null flags for %d rows", ErrValuesLayout, len(v.Nulls), v.Len())
	}

	return nil
}

func overflowsFloat32(v float64) bool {
	return math.IsInf(float64(float32(v)), 0) && !math.IsInf(v, 0)
}

// NarrowFloat32 returns a copy with every value rounded to float32, the
// precision Float32 columns are stored and compared at. Other types are
// returned as is.
func (v *PackValues) NarrowFloat32() (*PackValues, error) {
	if v.Type != Float32FieldType {
		return v, nil
	}

	narrowed := *v
	narrowed.Floats = make([]float64, len(v.Floats))
	for i, it := range v.Floats {
		if v.IsNull(i) {
			continue
		}
		if overflowsFloat32(it) {
			return nil, fmt.Errorf("%w: %v overflows Float32 at row %d", ErrValuesLayout, it, i)
		}
		narrowed.Floats[i] = float64(float32(it))
	}
	return &narrowed, nil
}

// Slice returns rows [from, to) sharing the underlying storage.
func (v *PackValues) Slice(from, to int) *PackValues {

	result := &PackValues{Type: v.Type}

	switch {
	case v.Type.IsInteger():
		result.Ints = v.Ints[from:to:to]
	case v.Type.IsFloat():
		result.Floats = v.Floats[from:to:to]
	default:
		result.Strs = v.Strs[from:to:to]
	}

	if v.Nulls != nil {
		nulls := v.Nulls[from:to:to]
		for _, isNull := range nulls {
			if isNull {
				result.Nulls = nulls
				break
			}
		}
	}

	return result
}
