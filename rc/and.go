package rc

import (
	"slices"

	"github.com/dot5enko/segment-rc/bits"
	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

// And matches rows matched by every child.
type And struct {
	children []Operator
}

func NewAnd(children ...Operator) (*And, error) {
	if err := checkChildren(children); err != nil {
		return nil, err
	}
	return &And{children: slices.Clone(children)}, nil
}

func (a *And) Type() string {
	return TypeAnd
}

func (a *And) Children() []Operator {
	return slices.Clone(a.children)
}

func (a *And) ApplyNot() Operator {
	return &Or{children: negateAll(a.children)}
}

func (a *And) DoOptimize() Operator {

	current := a
	if children, changed := optimizeAll(a.children); changed {
		current = &And{children: children}
	}

	for {
		next, fired := current.rewrite()
		if !fired {
			return current
		}
		and, ok := next.(*And)
		if !ok {
			return next
		}
		current = and
	}
}

// rewrite applies the first rule that fires, in priority order.
func (a *And) rewrite() (Operator, bool) {

	if len(a.children) == 1 {
		return a.children[0], true
	}

	if notIn, ok := foldNotEqual(a.children); ok {
		return notIn, true
	}

	if children, ok := foldRanges(a.children); ok {
		return &And{children: children}, true
	}

	return a, false
}

// foldNotEqual turns NotEqual children over one attribute into a NotIn.
// Any other child disables the rule.
func foldNotEqual(children []Operator) (*NotIn, bool) {

	values := make([]schema.Literal, 0, len(children))
	var attr schema.Attr

	for idx, it := range children {
		ne, ok := it.(*NotEqual)
		if !ok {
			return nil, false
		}
		if idx == 0 {
			attr = ne.attr
		} else if !attr.Equal(ne.attr) {
			return nil, false
		}
		values = append(values, ne.value)
	}

	return newNotIn(attr, values), true
}

// foldRanges replaces GreaterEqual/LessEqual pairs over the same attribute with
// a Between, scanning again after every fold until no pair is left. The pair is
// picked by the first match of an outer then inner ascending scan. The Between
// goes first, the remaining children follow in their original order.
func foldRanges(children []Operator) ([]Operator, bool) {

	folded := false

	for {
		i, j, between := findRangePair(children)
		if between == nil {
			return children, folded
		}

		next := make([]Operator, 0, len(children)-1)
		next = append(next, between)
		for idx, it := range children {
			if idx != i && idx != j {
				next = append(next, it)
			}
		}

		children = next
		folded = true
	}
}

func findRangePair(children []Operator) (int, int, *Between) {
	for i := 0; i < len(children); i++ {
		for j := i + 1; j < len(children); j++ {
			if between := rangeOf(children[i], children[j]); between != nil {
				return i, j, between
			}
		}
	}
	return -1, -1, nil
}

func rangeOf(a, b Operator) *Between {
	switch lower := a.(type) {
	case *GreaterEqual:
		if upper, ok := b.(*LessEqual); ok && lower.attr.Equal(upper.attr) {
			return newBetween(lower.attr, lower.value, upper.value)
		}
	case *LessEqual:
		if other, ok := b.(*GreaterEqual); ok && lower.attr.Equal(other.attr) {
			return newBetween(lower.attr, other.value, lower.value)
		}
	}
	return nil
}

func (a *And) RoughCheckOnColumn(seg segment.InfoSegment) (schema.RSValue, error) {
	return roughAll(a.children, func(op Operator) (schema.RSValue, error) {
		return op.RoughCheckOnColumn(seg)
	})
}

func (a *And) RoughCheckOnPack(seg segment.Segment, packId int) (schema.RSValue, error) {
	return roughAll(a.children, func(op Operator) (schema.RSValue, error) {
		return op.RoughCheckOnPack(seg, packId)
	})
}

func (a *And) ExactCheckOnPack(seg segment.Segment) (*bits.BitMap, error) {
	return intersect(a.children, func(op Operator) (*bits.BitMap, error) {
		return op.ExactCheckOnPack(seg)
	})
}

func (a *And) ExactCheckOnRow(seg segment.Segment, packId int) (*bits.BitMap, error) {
	return intersect(a.children, func(op Operator) (*bits.BitMap, error) {
		return op.ExactCheckOnRow(seg, packId)
	})
}

func (a *And) String() string {
	return joinChildren(TypeAnd, a.children)
}

func (a *And) sealed() {}

func roughAll(children []Operator, check func(Operator) (schema.RSValue, error)) (schema.RSValue, error) {
	result := schema.All
	for _, it := range children {
		rs, err := check(it)
		if err != nil {
			return schema.Some, err
		}
		result = result.And(rs)
		if result == schema.None {
			return schema.None, nil
		}
	}
	return result, nil
}

// intersect combines child results in order and stops at the first empty one.
func intersect(children []Operator, eval func(Operator) (*bits.BitMap, error)) (*bits.BitMap, error) {

	var result *bits.BitMap

	for _, it := range children {
		current, err := eval(it)
		if err != nil {
			if result != nil {
				result.Free()
			}
			return nil, err
		}

		if result == nil {
			result = current
		} else {
			result = bits.AndFree(result, current)
		}

		if result.IsNone() {
			result.Free()
			return bits.NONE, nil
		}
	}

	return result, nil
}
