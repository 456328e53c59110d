package schema

import (
	"fmt"

	"github.com/dot5enko/segment-rc/ops"
)

// Stats summarizes one column, either over a whole segment or over one pack.
// Min and Max describe non-null rows only.
type Stats struct {
	RowCount  int
	NullCount int

	Min Literal
	Max Literal
}

func (s Stats) HasValues() bool {
	return s.RowCount > s.NullCount
}

func (s Stats) HasNulls() bool {
	return s.NullCount > 0
}

// Morph widens s so it also covers other.
func (s *Stats) Morph(typ FieldType, other Stats) {

	if other.HasValues() {
		if !s.HasValues() {
			s.Min = other.Min
			s.Max = other.Max
		} else {
			if typ.Compare(other.Min, s.Min) < 0 {
				s.Min = other.Min
			}
			if typ.Compare(other.Max, s.Max) > 0 {
				s.Max = other.Max
			}
		}
	}

	s.RowCount += other.RowCount
	s.NullCount += other.NullCount
}

func (s Stats) Format(typ FieldType) string {
	if !s.HasValues() {
		return fmt.Sprintf("rows=%d nulls=%d", s.RowCount, s.NullCount)
	}
	return fmt.Sprintf("rows=%d nulls=%d [%s, %s]", s.RowCount, s.NullCount, typ.FormatLiteral(s.Min), typ.FormatLiteral(s.Max))
}

func boundsSkippingNulls[T ops.Ordered](arr []T, nulls []bool) (ops.Bounds[T], bool) {

	if len(nulls) == 0 {
		if len(arr) == 0 {
			return ops.Bounds[T]{}, false
		}
		return ops.GetMaxMin(arr), true
	}

	var result ops.Bounds[T]
	found := false

	for i, v := range arr {
		if nulls[i] {
			continue
		}
		if !found {
			result = ops.Bounds[T]{Min: v, Max: v}
			found = true
			continue
		}
		result.Morph(ops.Bounds[T]{Min: v, Max: v})
	}

	return result, found
}

// ComputeStats builds pack statistics from decoded values.
func ComputeStats(values *PackValues) Stats {

	stats := Stats{
		RowCount:  values.Len(),
		NullCount: values.NullCount(),
	}

	switch {
	case values.Type.IsInteger():
		if b, ok := boundsSkippingNulls(values.Ints, values.Nulls); ok {
			stats.Min, stats.Max = IntLiteral(b.Min), IntLiteral(b.Max)
		}
	case values.Type.IsFloat():
		if b, ok := boundsSkippingNulls(values.Floats, values.Nulls); ok {
			stats.Min, stats.Max = FloatLiteral(b.Min), FloatLiteral(b.Max)
		}
	default:
		if b, ok := boundsSkippingNulls(values.Strs, values.Nulls); ok {
			stats.Min, stats.Max = StringLiteral(b.Min), StringLiteral(b.Max)
		}
	}

	return stats
}
