package rc

import (
	"fmt"

	"github.com/dot5enko/segment-rc/bits"
	"github.com/dot5enko/segment-rc/ops"
	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

// wire discriminators
const (
	TypeAnd = "and"
	TypeOr  = "or"
	TypeNot = "not"

	TypeEqual        = "equal"
	TypeNotEqual     = "not_equal"
	TypeGreater      = "greater"
	TypeGreaterEqual = "greater_equal"
	TypeLess         = "less"
	TypeLessEqual    = "less_equal"
	TypeBetween      = "between"
	TypeIn           = "in"
	TypeNotIn        = "not_in"
	TypeLike         = "like"
	TypeNotLike      = "not_like"
	TypeIsNull       = "is_null"
	TypeNotNull      = "not_null"
)

// Leaf is an operator comparing a single column.
type Leaf interface {
	Operator
	Attr() schema.Attr
}

// roughRules and leafRules are the part of the evaluation each leaf defines
// itself, the rest is shared by roughColumn, roughPack and exactRows.
type roughRules interface {
	Leaf

	// rough must only answer None or All when stats prove it.
	rough(stats schema.Stats) schema.RSValue
}

type leafRules interface {
	roughRules

	// match writes the rows accepted by the leaf, nulls included.
	match(values *schema.PackValues, out []uint32) int
}

func roughColumn(l roughRules, seg segment.InfoSegment) (schema.RSValue, error) {
	stats, err := seg.ColumnStats(l.Attr())
	if err != nil {
		return schema.Some, err
	}
	return l.rough(stats), nil
}

func roughPack(l roughRules, seg segment.Segment, packId int) (schema.RSValue, error) {
	stats, err := seg.PackStats(l.Attr(), packId)
	if err != nil {
		return schema.Some, err
	}
	return l.rough(stats), nil
}

func packValues(attr schema.Attr, seg segment.Segment, packId int) (*schema.PackValues, error) {
	values, err := seg.PackColumnValues(attr, packId)
	if err != nil {
		return nil, err
	}
	if values.Type != attr.Type {
		return nil, fmt.Errorf("%w: `%s` pack %d holds %s values", segment.ErrColumnTypeMismatch, attr.Name, packId, values.Type.String())
	}
	return values, nil
}

// exactRows runs the kernel of l over one pack and drops null rows.
func exactRows(l leafRules, seg segment.Segment, packId int) (*bits.BitMap, error) {

	values, err := packValues(l.Attr(), seg, packId)
	if err != nil {
		return nil, err
	}

	buf := ops.AcquireIndices(values.Len())
	defer ops.ReleaseIndices(buf)

	filled := l.match(values, buf.Indices)

	result := bits.FromSorted(buf.Indices[:filled])
	result.ClearMarked(values.Nulls)

	if result.IsNone() {
		result.Free()
		return bits.NONE, nil
	}
	return result, nil
}

type kernel[T ops.Ordered] func(arr []T, cmp T, out []uint32) int

// runKernel dispatches a comparison kernel on the active value form.
func runKernel(values *schema.PackValues, lit schema.Literal, out []uint32,
	ints kernel[int64], floats kernel[float64], strs kernel[string],
) int {
	switch {
	case values.Type.IsInteger():
		return ints(values.Ints, lit.Int, out)
	case values.Type.IsFloat():
		return floats(values.Floats, lit.Float, out)
	default:
		return strs(values.Strs, lit.Str, out)
	}
}

// comparison is the state of a leaf with one literal.
type comparison struct {
	attr  schema.Attr
	value schema.Literal
}

func newComparison(attr schema.Attr, v any) (comparison, error) {
	if err := checkAttr(attr); err != nil {
		return comparison{}, err
	}
	lit, err := schema.LiteralOf(attr.Type, v)
	if err != nil {
		return comparison{}, err
	}
	return comparison{attr: attr, value: lit}, nil
}

func (c *comparison) Attr() schema.Attr {
	return c.attr
}

// Value returns the literal in its active form: int64, float64 or string.
func (c *comparison) Value() any {
	return c.attr.Type.Value(c.value)
}

func (c *comparison) Children() []Operator {
	return nil
}

func (c *comparison) sealed() {}

func (c *comparison) format(name string) string {
	return fmt.Sprintf("%s(%s, %s)", name, c.attr.String(), c.attr.Type.FormatLiteral(c.value))
}

// cmpMin and cmpMax compare the literal with the pack bounds.
func (c *comparison) cmpMin(stats schema.Stats) int {
	return c.attr.Type.Compare(c.value, stats.Min)
}

func (c *comparison) cmpMax(stats schema.Stats) int {
	return c.attr.Type.Compare(c.value, stats.Max)
}

// complete is All for a pack without nulls. Nulls never match a comparison.
func complete(stats schema.Stats) schema.RSValue {
	if stats.HasNulls() {
		return schema.Some
	}
	return schema.All
}
