package rc

import (
	"slices"

	"github.com/dot5enko/segment-rc/bits"
	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

// Or matches rows matched by any child.
type Or struct {
	children []Operator
}

func NewOr(children ...Operator) (*Or, error) {
	if err := checkChildren(children); err != nil {
		return nil, err
	}
	return &Or{children: slices.Clone(children)}, nil
}

func (o *Or) Type() string {
	return TypeOr
}

func (o *Or) Children() []Operator {
	return slices.Clone(o.children)
}

func (o *Or) ApplyNot() Operator {
	return &And{children: negateAll(o.children)}
}

func (o *Or) DoOptimize() Operator {

	current := o
	if children, changed := optimizeAll(o.children); changed {
		current = &Or{children: children}
	}

	for {
		next, fired := current.rewrite()
		if !fired {
			return current
		}
		or, ok := next.(*Or)
		if !ok {
			return next
		}
		current = or
	}
}

func (o *Or) rewrite() (Operator, bool) {

	if len(o.children) == 1 {
		return o.children[0], true
	}

	if in, ok := foldEqual(o.children); ok {
		return in, true
	}

	return o, false
}

// foldEqual turns Equal children over one attribute into an In.
// Any other child disables the rule.
func foldEqual(children []Operator) (*In, bool) {

	values := make([]schema.Literal, 0, len(children))
	var attr schema.Attr

	for idx, it := range children {
		eq, ok := it.(*Equal)
		if !ok {
			return nil, false
		}
		if idx == 0 {
			attr = eq.attr
		} else if !attr.Equal(eq.attr) {
			return nil, false
		}
		values = append(values, eq.value)
	}

	return newIn(attr, values), true
}

func (o *Or) RoughCheckOnColumn(seg segment.InfoSegment) (schema.RSValue, error) {
	return roughAny(o.children, func(op Operator) (schema.RSValue, error) {
		return op.RoughCheckOnColumn(seg)
	})
}

func (o *Or) RoughCheckOnPack(seg segment.Segment, packId int) (schema.RSValue, error) {
	return roughAny(o.children, func(op Operator) (schema.RSValue, error) {
		return op.RoughCheckOnPack(seg, packId)
	})
}

func (o *Or) ExactCheckOnPack(seg segment.Segment) (*bits.BitMap, error) {
	return union(o.children, func(op Operator) (*bits.BitMap, error) {
		return op.ExactCheckOnPack(seg)
	})
}

func (o *Or) ExactCheckOnRow(seg segment.Segment, packId int) (*bits.BitMap, error) {
	return union(o.children, func(op Operator) (*bits.BitMap, error) {
		return op.ExactCheckOnRow(seg, packId)
	})
}

func (o *Or) String() string {
	return joinChildren(TypeOr, o.children)
}

func (o *Or) sealed() {}

func roughAny(children []Operator, check func(Operator) (schema.RSValue, error)) (schema.RSValue, error) {
	result := schema.None
	for _, it := range children {
		rs, err := check(it)
		if err != nil {
			return schema.Some, err
		}
		result = result.Or(rs)
		if result == schema.All {
			return schema.All, nil
		}
	}
	return result, nil
}

func union(children []Operator, eval func(Operator) (*bits.BitMap, error)) (*bits.BitMap, error) {

	result := bits.NONE

	for _, it := range children {
		current, err := eval(it)
		if err != nil {
			result.Free()
			return nil, err
		}
		result = bits.OrFree(result, current)
	}

	return result, nil
}
