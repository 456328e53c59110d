package rc

import (
	"github.com/dot5enko/segment-rc/bits"
	"github.com/dot5enko/segment-rc/ops"
	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

// Equal matches rows whose value equals the literal.
type Equal struct {
	comparison
}

func NewEqual(attr schema.Attr, v any) (*Equal, error) {
	c, err := newComparison(attr, v)
	if err != nil {
		return nil, err
	}
	return &Equal{c}, nil
}

func newEqual(attr schema.Attr, v schema.Literal) *Equal {
	return &Equal{comparison{attr: attr, value: v}}
}

func (e *Equal) Type() string {
	return TypeEqual
}

func (e *Equal) ApplyNot() Operator {
	return newNotEqual(e.attr, e.value)
}

func (e *Equal) DoOptimize() Operator {
	return e
}

func (e *Equal) rough(stats schema.Stats) schema.RSValue {
	if !stats.HasValues() || e.cmpMin(stats) < 0 || e.cmpMax(stats) > 0 {
		return schema.None
	}
	if e.cmpMin(stats) == 0 && e.cmpMax(stats) == 0 {
		return complete(stats)
	}
	return schema.Some
}

func (e *Equal) match(values *schema.PackValues, out []uint32) int {
	return runKernel(values, e.value, out,
		ops.CompareValuesAreEqual[int64], ops.CompareValuesAreEqual[float64], ops.CompareValuesAreEqual[string])
}

func (e *Equal) RoughCheckOnColumn(seg segment.InfoSegment) (schema.RSValue, error) {
	return roughColumn(e, seg)
}

func (e *Equal) RoughCheckOnPack(seg segment.Segment, packId int) (schema.RSValue, error) {
	return roughPack(e, seg, packId)
}

func (e *Equal) ExactCheckOnPack(seg segment.Segment) (*bits.BitMap, error) {
	return packCandidates(e, seg)
}

func (e *Equal) ExactCheckOnRow(seg segment.Segment, packId int) (*bits.BitMap, error) {
	return exactRows(e, seg, packId)
}

func (e *Equal) String() string {
	return e.format(TypeEqual)
}

// NotEqual matches rows whose value differs from the literal.
type NotEqual struct {
	comparison
}

func NewNotEqual(attr schema.Attr, v any) (*NotEqual, error) {
	c, err := newComparison(attr, v)
	if err != nil {
		return nil, err
	}
	return &NotEqual{c}, nil
}

func newNotEqual(attr schema.Attr, v schema.Literal) *NotEqual {
	return &NotEqual{comparison{attr: attr, value: v}}
}

func (n *NotEqual) Type() string {
	return TypeNotEqual
}

func (n *NotEqual) ApplyNot() Operator {
	return newEqual(n.attr, n.value)
}

func (n *NotEqual) DoOptimize() Operator {
	return n
}

func (n *NotEqual) rough(stats schema.Stats) schema.RSValue {
	if !stats.HasValues() {
		return schema.None
	}
	if n.cmpMin(stats) == 0 && n.cmpMax(stats) == 0 {
		return schema.None
	}
	if n.cmpMin(stats) < 0 || n.cmpMax(stats) > 0 {
		return complete(stats)
	}
	return schema.Some
}

func (n *NotEqual) match(values *schema.PackValues, out []uint32) int {
	return runKernel(values, n.value, out,
		ops.CompareValuesAreNotEqual[int64], ops.CompareValuesAreNotEqual[float64], ops.CompareValuesAreNotEqual[string])
}

func (n *NotEqual) RoughCheckOnColumn(seg segment.InfoSegment) (schema.RSValue, error) {
	return roughColumn(n, seg)
}

func (n *NotEqual) RoughCheckOnPack(seg segment.Segment, packId int) (schema.RSValue, error) {
	return roughPack(n, seg, packId)
}

func (n *NotEqual) ExactCheckOnPack(seg segment.Segment) (*bits.BitMap, error) {
	return packCandidates(n, seg)
}

func (n *NotEqual) ExactCheckOnRow(seg segment.Segment, packId int) (*bits.BitMap, error) {
	return exactRows(n, seg, packId)
}

func (n *NotEqual) String() string {
	return n.format(TypeNotEqual)
}

// Greater matches rows whose value is strictly above the literal.
type Greater struct {
	comparison
}

func NewGreater(attr schema.Attr, v any) (*Greater, error) {
	c, err := newComparison(attr, v)
	if err != nil {
		return nil, err
	}
	return &Greater{c}, nil
}

func newGreater(attr schema.Attr, v schema.Literal) *Greater {
	return &Greater{comparison{attr: attr, value: v}}
}

func (g *Greater) Type() string {
	return TypeGreater
}

func (g *Greater) ApplyNot() Operator {
	return newLessEqual(g.attr, g.value)
}

func (g *Greater) DoOptimize() Operator {
	return g
}

func (g *Greater) rough(stats schema.Stats) schema.RSValue {
	if !stats.HasValues() || g.cmpMax(stats) >= 0 {
		return schema.None
	}
	if g.cmpMin(stats) < 0 {
		return complete(stats)
	}
	return schema.Some
}

func (g *Greater) match(values *schema.PackValues, out []uint32) int {
	return runKernel(values, g.value, out,
		ops.CompareValuesAreBigger[int64], ops.CompareValuesAreBigger[float64], ops.CompareValuesAreBigger[string])
}

func (g *Greater) RoughCheckOnColumn(seg segment.InfoSegment) (schema.RSValue, error) {
	return roughColumn(g, seg)
}

func (g *Greater) RoughCheckOnPack(seg segment.Segment, packId int) (schema.RSValue, error) {
	return roughPack(g, seg, packId)
}

func (g *Greater) ExactCheckOnPack(seg segment.Segment) (*bits.BitMap, error) {
	return packCandidates(g, seg)
}

func (g *Greater) ExactCheckOnRow(seg segment.Segment, packId int) (*bits.BitMap, error) {
	return exactRows(g, seg, packId)
}

func (g *Greater) String() string {
	return g.format(TypeGreater)
}

// GreaterEqual matches rows whose value is at or above the literal.
type GreaterEqual struct {
	comparison
}

func NewGreaterEqual(attr schema.Attr, v any) (*GreaterEqual, error) {
	c, err := newComparison(attr, v)
	if err != nil {
		return nil, err
	}
	return &GreaterEqual{c}, nil
}

func newGreaterEqual(attr schema.Attr, v schema.Literal) *GreaterEqual {
	return &GreaterEqual{comparison{attr: attr, value: v}}
}

func (g *GreaterEqual) Type() string {
	return TypeGreaterEqual
}

func (g *GreaterEqual) ApplyNot() Operator {
	return newLess(g.attr, g.value)
}

func (g *GreaterEqual) DoOptimize() Operator {
	return g
}

func (g *GreaterEqual) rough(stats schema.Stats) schema.RSValue {
	if !stats.HasValues() || g.cmpMax(stats) > 0 {
		return schema.None
	}
	if g.cmpMin(stats) <= 0 {
		return complete(stats)
	}
	return schema.Some
}

func (g *GreaterEqual) match(values *schema.PackValues, out []uint32) int {
	return runKernel(values, g.value, out,
		ops.CompareValuesAreBiggerOrEqual[int64], ops.CompareValuesAreBiggerOrEqual[float64], ops.CompareValuesAreBiggerOrEqual[string])
}

func (g *GreaterEqual) RoughCheckOnColumn(seg segment.InfoSegment) (schema.RSValue, error) {
	return roughColumn(g, seg)
}

func (g *GreaterEqual) RoughCheckOnPack(seg segment.Segment, packId int) (schema.RSValue, error) {
	return roughPack(g, seg, packId)
}

func (g *GreaterEqual) ExactCheckOnPack(seg segment.Segment) (*bits.BitMap, error) {
	return packCandidates(g, seg)
}

func (g *GreaterEqual) ExactCheckOnRow(seg segment.Segment, packId int) (*bits.BitMap, error) {
	return exactRows(g, seg, packId)
}

func (g *GreaterEqual) String() string {
	return g.format(TypeGreaterEqual)
}

// Less matches rows whose value is strictly below the literal.
type Less struct {
	comparison
}

func NewLess(attr schema.Attr, v any) (*Less, error) {
	c, err := newComparison(attr, v)
	if err != nil {
		return nil, err
	}
	return &Less{c}, nil
}

func newLess(attr schema.Attr, v schema.Literal) *Less {
	return &Less{comparison{attr: attr, value: v}}
}

func (l *Less) Type() string {
	return TypeLess
}

func (l *Less) ApplyNot() Operator {
	return newGreaterEqual(l.attr, l.value)
}

func (l *Less) DoOptimize() Operator {
	return l
}

func (l *Less) rough(stats schema.Stats) schema.RSValue {
	if !stats.HasValues() || l.cmpMin(stats) <= 0 {
		return schema.None
	}
	if l.cmpMax(stats) > 0 {
		return complete(stats)
	}
	return schema.Some
}

func (l *Less) match(values *schema.PackValues, out []uint32) int {
	return runKernel(values, l.value, out,
		ops.CompareValuesAreSmaller[int64], ops.CompareValuesAreSmaller[float64], ops.CompareValuesAreSmaller[string])
}

func (l *Less) RoughCheckOnColumn(seg segment.InfoSegment) (schema.RSValue, error) {
	return roughColumn(l, seg)
}

func (l *Less) RoughCheckOnPack(seg segment.Segment, packId int) (schema.RSValue, error) {
	return roughPack(l, seg, packId)
}

func (l *Less) ExactCheckOnPack(seg segment.Segment) (*bits.BitMap, error) {
	return packCandidates(l, seg)
}

func (l *Less) ExactCheckOnRow(seg segment.Segment, packId int) (*bits.BitMap, error) {
	return exactRows(l, seg, packId)
}

func (l *Less) String() string {
	return l.format(TypeLess)
}

// LessEqual matches rows whose value is at or below the literal.
type LessEqual struct {
	comparison
}

func NewLessEqual(attr schema.Attr, v any) (*LessEqual, error) {
	c, err := newComparison(attr, v)
	if err != nil {
		return nil, err
	}
	return &LessEqual{c}, nil
}

func newLessEqual(attr schema.Attr, v schema.Literal) *LessEqual {
	return &LessEqual{comparison{attr: attr, value: v}}
}

func (l *LessEqual) Type() string {
	return TypeLessEqual
}

func (l *LessEqual) ApplyNot() Operator {
	return newGreater(l.attr, l.value)
}

func (l *LessEqual) DoOptimize() Operator {
	return l
}

func (l *LessEqual) rough(stats schema.Stats) schema.RSValue {
	if !stats.HasValues() || l.cmpMin(stats) < 0 {
		return schema.None
	}
	if l.cmpMax(stats) >= 0 {
		return complete(stats)
	}
	return schema.Some
}

func (l *LessEqual) match(values *schema.PackValues, out []uint32) int {
	return runKernel(values, l.value, out,
		ops.CompareValuesAreSmallerOrEqual[int64], ops.CompareValuesAreSmallerOrEqual[float64], ops.CompareValuesAreSmallerOrEqual[string])
}

func (l *LessEqual) RoughCheckOnColumn(seg segment.InfoSegment) (schema.RSValue, error) {
	return roughColumn(l, seg)
}

func (l *LessEqual) RoughCheckOnPack(seg segment.Segment, packId int) (schema.RSValue, error) {
	return roughPack(l, seg, packId)
}

func (l *LessEqual) ExactCheckOnPack(seg segment.Segment) (*bits.BitMap, error) {
	return packCandidates(l, seg)
}

func (l *LessEqual) ExactCheckOnRow(seg segment.Segment, packId int) (*bits.BitMap, error) {
	return exactRows(l, seg, packId)
}

func (l *LessEqual) String() string {
	return l.format(TypeLessEqual)
}
