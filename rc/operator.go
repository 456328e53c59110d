// Package rc evaluates filter trees against columnar segments.
//
// A tree is built from leaves comparing one column against literals, joined by
// And, Or and Not. Clients call ApplyNot/DoOptimize (or Optimize) once and then
// evaluate the result in two tiers: rough checks on statistics decide whole
// columns or packs, exact checks resolve the undecided packs row by row.
//
// Trees are immutable. Every method is safe for concurrent use.
package rc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dot5enko/segment-rc/bits"
	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

var (
	ErrEmptyChildren = errors.New("combinator requires at least one child")
	ErrNilChild      = errors.New("nil child operator")
	ErrEmptySet      = errors.New("value set must not be empty")
	ErrStringOnly    = errors.New("operator applies to string columns only")
	ErrUnknownAttr   = errors.New("attribute has no name or an unknown type")
)

// Operator is a node of a filter tree. The set of implementations is closed,
// rewrites switch over the concrete types of this package.
type Operator interface {
	// Type is the wire discriminator of the node.
	Type() string
	Children() []Operator

	// ApplyNot returns the negation of the operator with negation pushed down to the leaves.
	ApplyNot() Operator
	// DoOptimize returns an equivalent, normalized operator. Not nodes are eliminated.
	DoOptimize() Operator

	RoughCheckOnColumn(seg segment.InfoSegment) (schema.RSValue, error)
	RoughCheckOnPack(seg segment.Segment, packId int) (schema.RSValue, error)

	// ExactCheckOnPack returns a bitmap over pack ids, a set bit means the pack
	// may contain matching rows. Unset packs hold no match for sure.
	ExactCheckOnPack(seg segment.Segment) (*bits.BitMap, error)
	// ExactCheckOnRow returns the exact matching rows of one pack.
	ExactCheckOnRow(seg segment.Segment, packId int) (*bits.BitMap, error)

	String() string

	sealed()
}

// Optimize normalizes a freshly built tree: negations end up on the leaves
// and the rewrite rules are applied until none fires.
func Optimize(op Operator) Operator {
	return op.DoOptimize()
}

// Must panics on a construction error, for trees built from constants.
func Must[T Operator](op T, err error) T {
	if err != nil {
		panic(err)
	}
	return op
}

func checkChildren(children []Operator) error {
	if len(children) == 0 {
		return ErrEmptyChildren
	}
	for idx, it := range children {
		if it == nil {
			return fmt.Errorf("%w at position %d", ErrNilChild, idx)
		}
	}
	return nil
}

func checkAttr(attr schema.Attr) error {
	if attr.Name == "" || !attr.Type.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownAttr, attr.String())
	}
	return nil
}

func joinChildren(name string, children []Operator) string {
	parts := make([]string, len(children))
	for i, it := range children {
		parts[i] = it.String()
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
}

func negateAll(children []Operator) []Operator {
	result := make([]Operator, len(children))
	for i, it := range children {
		result[i] = it.ApplyNot()
	}
	return result
}

// optimizeAll optimizes every child. The original slice is returned when no
// child changed.
func optimizeAll(children []Operator) ([]Operator, bool) {
	var result []Operator

	for i, it := range children {
		optimized := it.DoOptimize()
		if result == nil && optimized == it {
			continue
		}
		if result == nil {
			result = make([]Operator, len(children))
			copy(result, children[:i])
		}
		result[i] = optimized
	}

	if result == nil {
		return children, false
	}
	return result, true
}

// packCandidates evaluates op pack by pack. A pack is set unless its rough
// check says None or its exact check comes back empty.
func packCandidates(op Operator, seg segment.Segment) (*bits.BitMap, error) {

	result := bits.New()

	for packId := 0; packId < seg.PackCount(); packId++ {

		rs, err := op.RoughCheckOnPack(seg, packId)
		if err != nil {
			result.Free()
			return nil, err
		}

		switch rs {
		case schema.None:
			continue
		case schema.All:
			result.Set(packId)
		default:
			rows, err := op.ExactCheckOnRow(seg, packId)
			if err != nil {
				result.Free()
				return nil, err
			}
			if rows.Any() {
				result.Set(packId)
			}
			rows.Free()
		}
	}

	if result.IsNone() {
		result.Free()
		return bits.NONE, nil
	}
	return result, nil
}
