package rc

import (
	"fmt"

	"github.com/dot5enko/segment-rc/bits"
	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

// Not matches the rows its child does not match. Null rows never match a
// comparison, so a Not is evaluated through the negated child rather than as
// a complement.
type Not struct {
	child Operator
}

func NewNot(child Operator) (*Not, error) {
	if child == nil {
		return nil, ErrNilChild
	}
	return &Not{child: child}, nil
}

func (n *Not) Type() string {
	return TypeNot
}

func (n *Not) Children() []Operator {
	return []Operator{n.child}
}

func (n *Not) ApplyNot() Operator {
	return n.child
}

func (n *Not) DoOptimize() Operator {
	return n.child.ApplyNot().DoOptimize()
}

func (n *Not) RoughCheckOnColumn(seg segment.InfoSegment) (schema.RSValue, error) {
	return n.child.ApplyNot().RoughCheckOnColumn(seg)
}

func (n *Not) RoughCheckOnPack(seg segment.Segment, packId int) (schema.RSValue, error) {
	return n.child.ApplyNot().RoughCheckOnPack(seg, packId)
}

func (n *Not) ExactCheckOnPack(seg segment.Segment) (*bits.BitMap, error) {
	return n.child.ApplyNot().ExactCheckOnPack(seg)
}

func (n *Not) ExactCheckOnRow(seg segment.Segment, packId int) (*bits.BitMap, error) {
	return n.child.ApplyNot().ExactCheckOnRow(seg, packId)
}

func (n *Not) String() string {
	return fmt.Sprintf("%s(%s)", TypeNot, n.child.String())
}

func (n *Not) sealed() {}
