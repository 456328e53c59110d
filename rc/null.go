package rc

import (
	"fmt"

	"github.com/dot5enko/segment-rc/bits"
	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

type nullCheck struct {
	attr schema.Attr
}

func newNullCheck(attr schema.Attr) (nullCheck, error) {
	if err := checkAttr(attr); err != nil {
		return nullCheck{}, err
	}
	return nullCheck{attr: attr}, nil
}

func (c *nullCheck) Attr() schema.Attr {
	return c.attr
}

func (c *nullCheck) Children() []Operator {
	return nil
}

func (c *nullCheck) sealed() {}

// IsNull matches null rows.
type IsNull struct {
	nullCheck
}

func NewIsNull(attr schema.Attr) (*IsNull, error) {
	c, err := newNullCheck(attr)
	if err != nil {
		return nil, err
	}
	return &IsNull{c}, nil
}

func (n *IsNull) Type() string {
	return TypeIsNull
}

func (n *IsNull) ApplyNot() Operator {
	return &NotNull{n.nullCheck}
}

func (n *IsNull) DoOptimize() Operator {
	return n
}

func (n *IsNull) rough(stats schema.Stats) schema.RSValue {
	switch {
	case stats.NullCount == 0:
		return schema.None
	case stats.NullCount == stats.RowCount:
		return schema.All
	default:
		return schema.Some
	}
}

func (n *IsNull) RoughCheckOnColumn(seg segment.InfoSegment) (schema.RSValue, error) {
	return roughColumn(n, seg)
}

func (n *IsNull) RoughCheckOnPack(seg segment.Segment, packId int) (schema.RSValue, error) {
	return roughPack(n, seg, packId)
}

func (n *IsNull) ExactCheckOnPack(seg segment.Segment) (*bits.BitMap, error) {
	return packCandidates(n, seg)
}

func (n *IsNull) ExactCheckOnRow(seg segment.Segment, packId int) (*bits.BitMap, error) {

	values, err := packValues(n.attr, seg, packId)
	if err != nil {
		return nil, err
	}

	if values.NullCount() == 0 {
		return bits.NONE, nil
	}

	result := bits.New()
	for row, isNull := range values.Nulls {
		if isNull {
			result.Set(row)
		}
	}
	return result, nil
}

func (n *IsNull) String() string {
	return fmt.Sprintf("%s(%s)", TypeIsNull, n.attr.String())
}

// NotNull matches rows holding a value.
type NotNull struct {
	nullCheck
}

func NewNotNull(attr schema.Attr) (*NotNull, error) {
	c, err := newNullCheck(attr)
	if err != nil {
		return nil, err
	}
	return &NotNull{c}, nil
}

func (n *NotNull) Type() string {
	return TypeNotNull
}

func (n *NotNull) ApplyNot() Operator {
	return &IsNull{n.nullCheck}
}

func (n *NotNull) DoOptimize() Operator {
	return n
}

func (n *NotNull) rough(stats schema.Stats) schema.RSValue {
	switch {
	case !stats.HasValues():
		return schema.None
	case stats.NullCount == 0:
		return schema.All
	default:
		return schema.Some
	}
}

func (n *NotNull) RoughCheckOnColumn(seg segment.InfoSegment) (schema.RSValue, error) {
	return roughColumn(n, seg)
}

func (n *NotNull) RoughCheckOnPack(seg segment.Segment, packId int) (schema.RSValue, error) {
	return roughPack(n, seg, packId)
}

func (n *NotNull) ExactCheckOnPack(seg segment.Segment) (*bits.BitMap, error) {
	return packCandidates(n, seg)
}

func (n *NotNull) ExactCheckOnRow(seg segment.Segment, packId int) (*bits.BitMap, error) {

	values, err := packValues(n.attr, seg, packId)
	if err != nil {
		return nil, err
	}

	result := bits.NewFull(values.Len())
	result.ClearMarked(values.Nulls)

	if result.IsNone() {
		result.Free()
		return bits.NONE, nil
	}
	return result, nil
}

func (n *NotNull) String() string {
	return fmt.Sprintf("%s(%s)", TypeNotNull, n.attr.String())
}
