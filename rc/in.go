package rc

import (
	"fmt"
	"strings"

	"github.com/dot5enko/segment-rc/bits"
	"github.com/dot5enko/segment-rc/ops"
	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

// valueSet is the state shared by In and NotIn. Literals keep their
// construction order, the lookup maps serve the kernels.
type valueSet struct {
	attr   schema.Attr
	values []schema.Literal

	ints   map[int64]struct{}
	floats map[float64]struct{}
	strs   map[string]struct{}
}

func newValueSet(attr schema.Attr, values []schema.Literal) valueSet {

	set := valueSet{attr: attr, values: values}

	switch {
	case attr.Type.IsInteger():
		set.ints = make(map[int64]struct{}, len(values))
		for _, it := range values {
			set.ints[it.Int] = struct{}{}
		}
	case attr.Type.IsFloat():
		set.floats = make(map[float64]struct{}, len(values))
		for _, it := range values {
			set.floats[it.Float] = struct{}{}
		}
	default:
		set.strs = make(map[string]struct{}, len(values))
		for _, it := range values {
			set.strs[it.Str] = struct{}{}
		}
	}

	return set
}

func valueSetOf(attr schema.Attr, values []any) (valueSet, error) {

	if err := checkAttr(attr); err != nil {
		return valueSet{}, err
	}
	if len(values) == 0 {
		return valueSet{}, ErrEmptySet
	}

	literals := make([]schema.Literal, len(values))
	for idx, it := range values {
		lit, err := schema.LiteralOf(attr.Type, it)
		if err != nil {
			return valueSet{}, fmt.Errorf("value %d: %w", idx, err)
		}
		literals[idx] = lit
	}

	return newValueSet(attr, literals), nil
}

func (s *valueSet) Attr() schema.Attr {
	return s.attr
}

// Values returns the literals in their active form.
func (s *valueSet) Values() []any {
	result := make([]any, len(s.values))
	for idx, it := range s.values {
		result[idx] = s.attr.Type.Value(it)
	}
	return result
}

func (s *valueSet) Children() []Operator {
	return nil
}

func (s *valueSet) sealed() {}

func (s *valueSet) contains(lit schema.Literal) bool {
	switch {
	case s.attr.Type.IsInteger():
		_, ok := s.ints[lit.Int]
		return ok
	case s.attr.Type.IsFloat():
		_, ok := s.floats[lit.Float]
		return ok
	default:
		_, ok := s.strs[lit.Str]
		return ok
	}
}

// anyWithin reports whether some literal lies inside [Min, Max] of stats.
func (s *valueSet) anyWithin(stats schema.Stats) bool {
	typ := s.attr.Type
	for _, it := range s.values {
		if typ.Compare(it, stats.Min) >= 0 && typ.Compare(it, stats.Max) <= 0 {
			return true
		}
	}
	return false
}

// single reports whether every non null row holds one value of the set.
func (s *valueSet) single(stats schema.Stats) bool {
	return s.attr.Type.Compare(stats.Min, stats.Max) == 0 && s.contains(stats.Min)
}

func (s *valueSet) match(values *schema.PackValues, negate bool, out []uint32) int {
	switch {
	case values.Type.IsInteger():
		return ops.CompareValuesAreInSet(values.Ints, s.ints, negate, out)
	case values.Type.IsFloat():
		return ops.CompareValuesAreInSet(values.Floats, s.floats, negate, out)
	default:
		return ops.CompareValuesAreInSet(values.Strs, s.strs, negate, out)
	}
}

func (s *valueSet) format(name string) string {
	parts := make([]string, len(s.values))
	for idx, it := range s.values {
		parts[idx] = s.attr.Type.FormatLiteral(it)
	}
	return fmt.Sprintf("%s(%s, {%s})", name, s.attr.String(), strings.Join(parts, ", "))
}

// In matches rows whose value is one of a set of literals.
type In struct {
	valueSet
}

func NewIn(attr schema.Attr, values ...any) (*In, error) {
	set, err := valueSetOf(attr, values)
	if err != nil {
		return nil, err
	}
	return &In{set}, nil
}

func newIn(attr schema.Attr, values []schema.Literal) *In {
	return &In{newValueSet(attr, values)}
}

func (i *In) Type() string {
	return TypeIn
}

func (i *In) ApplyNot() Operator {
	return &NotIn{i.valueSet}
}

func (i *In) DoOptimize() Operator {
	return i
}

func (i *In) rough(stats schema.Stats) schema.RSValue {
	if !stats.HasValues() || !i.anyWithin(stats) {
		return schema.None
	}
	if i.single(stats) {
		return complete(stats)
	}
	return schema.Some
}

func (i *In) match(values *schema.PackValues, out []uint32) int {
	return i.valueSet.match(values, false, out)
}

func (i *In) RoughCheckOnColumn(seg segment.InfoSegment) (schema.RSValue, error) {
	return roughColumn(i, seg)
}

func (i *In) RoughCheckOnPack(seg segment.Segment, packId int) (schema.RSValue, error) {
	return roughPack(i, seg, packId)
}

func (i *In) ExactCheckOnPack(seg segment.Segment) (*bits.BitMap, error) {
	return packCandidates(i, seg)
}

func (i *In) ExactCheckOnRow(seg segment.Segment, packId int) (*bits.BitMap, error) {
	return exactRows(i, seg, packId)
}

func (i *In) String() string {
	return i.format(TypeIn)
}

// NotIn matches rows whose value is none of a set of literals.
type NotIn struct {
	valueSet
}

func NewNotIn(attr schema.Attr, values ...any) (*NotIn, error) {
	set, err := valueSetOf(attr, values)
	if err != nil {
		return nil, err
	}
	return &NotIn{set}, nil
}

func newNotIn(attr schema.Attr, values []schema.Literal) *NotIn {
	return &NotIn{newValueSet(attr, values)}
}

func (n *NotIn) Type() string {
	return TypeNotIn
}

func (n *NotIn) ApplyNot() Operator {
	return &In{n.valueSet}
}

func (n *NotIn) DoOptimize() Operator {
	return n
}

func (n *NotIn) rough(stats schema.Stats) schema.RSValue {
	if !stats.HasValues() || n.single(stats) {
		return schema.None
	}
	if !n.anyWithin(stats) {
		return complete(stats)
	}
	return schema.Some
}

func (n *NotIn) match(values *schema.PackValues, out []uint32) int {
	return n.valueSet.match(values, true, out)
}

func (n *NotIn) RoughCheckOnColumn(seg segment.InfoSegment) (schema.RSValue, error) {
	return roughColumn(n, seg)
}

func (n *NotIn) RoughCheckOnPack(seg segment.Segment, packId int) (schema.RSValue, error) {
	return roughPack(n, seg, packId)
}

func (n *NotIn) ExactCheckOnPack(seg segment.Segment) (*bits.BitMap, error) {
	return packCandidates(n, seg)
}

func (n *NotIn) ExactCheckOnRow(seg segment.Segment, packId int) (*bits.BitMap, error) {
	return exactRows(n, seg, packId)
}

func (n *NotIn) String() string {
	return n.format(TypeNotIn)
}
