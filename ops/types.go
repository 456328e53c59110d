package ops

import "golang.org/x/exp/constraints"

type NumericTypes interface {
	constraints.Integer | constraints.Float
}

// Ordered covers every type a pack column is evaluated in.
type Ordered interface {
	constraints.Ordered
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
