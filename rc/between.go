package rc

import (
	"fmt"

	"github.com/dot5enko/segment-rc/bits"
	"github.com/dot5enko/segment-rc/ops"
	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

// Between matches rows with low <= value <= high. An inverted range matches nothing.
type Between struct {
	attr schema.Attr

	low  schema.Literal
	high schema.Literal
}

func NewBetween(attr schema.Attr, low, high any) (*Between, error) {
	if err := checkAttr(attr); err != nil {
		return nil, err
	}
	lo, err := schema.LiteralOf(attr.Type, low)
	if err != nil {
		return nil, fmt.Errorf("low bound: %w", err)
	}
	hi, err := schema.LiteralOf(attr.Type, high)
	if err != nil {
		return nil, fmt.Errorf("high bound: %w", err)
	}
	return newBetween(attr, lo, hi), nil
}

func newBetween(attr schema.Attr, low, high schema.Literal) *Between {
	return &Between{attr: attr, low: low, high: high}
}

func (b *Between) Attr() schema.Attr {
	return b.attr
}

func (b *Between) Low() any {
	return b.attr.Type.Value(b.low)
}

func (b *Between) High() any {
	return b.attr.Type.Value(b.high)
}

func (b *Between) Type() string {
	return TypeBetween
}

func (b *Between) Children() []Operator {
	return nil
}

func (b *Between) ApplyNot() Operator {
	return &Or{children: []Operator{
		newLess(b.attr, b.low),
		newGreater(b.attr, b.high),
	}}
}

func (b *Between) DoOptimize() Operator {
	return b
}

func (b *Between) inverted() bool {
	return b.attr.Type.Compare(b.low, b.high) > 0
}

func (b *Between) rough(stats schema.Stats) schema.RSValue {

	typ := b.attr.Type

	if !stats.HasValues() || b.inverted() {
		return schema.None
	}
	if typ.Compare(stats.Max, b.low) < 0 || typ.Compare(stats.Min, b.high) > 0 {
		return schema.None
	}
	if typ.Compare(stats.Min, b.low) >= 0 && typ.Compare(stats.Max, b.high) <= 0 {
		return complete(stats)
	}
	return schema.Some
}

func (b *Between) match(values *schema.PackValues, out []uint32) int {
	switch {
	case values.Type.IsInteger():
		return ops.CompareValuesAreInRange(values.Ints, b.low.Int, b.high.Int, out)
	case values.Type.IsFloat():
		return ops.CompareValuesAreInRange(values.Floats, b.low.Float, b.high.Float, out)
	default:
		return ops.CompareValuesAreInRange(values.Strs, b.low.Str, b.high.Str, out)
	}
}

func (b *Between) RoughCheckOnColumn(seg segment.InfoSegment) (schema.RSValue, error) {
	return roughColumn(b, seg)
}

func (b *Between) RoughCheckOnPack(seg segment.Segment, packId int) (schema.RSValue, error) {
	return roughPack(b, seg, packId)
}

func (b *Between) ExactCheckOnPack(seg segment.Segment) (*bits.BitMap, error) {
	return packCandidates(b, seg)
}

func (b *Between) ExactCheckOnRow(seg segment.Segment, packId int) (*bits.BitMap, error) {
	return exactRows(b, seg, packId)
}

func (b *Between) String() string {
	typ := b.attr.Type
	return fmt.Sprintf("%s(%s, %s, %s)", TypeBetween, b.attr.String(), typ.FormatLiteral(b.low), typ.FormatLiteral(b.high))
}

func (b *Between) sealed() {}
