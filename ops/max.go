package ops

type Bounds[T Ordered] struct {
	Min T
	Max T
}

func (b *Bounds[T]) Morph(other Bounds[T]) {
	if other.Min < b.Min {
		b.Min = other.Min
	}
	if other.Max > b.Max {
		b.Max = other.Max
	}
}

func (b Bounds[T]) Contains(v T) bool {
	return v >= b.Min && v <= b.Max
}

// GetMaxMin expects a non empty slice.
func GetMaxMin[T Ordered](arr []T) Bounds[T] {

	resultBounds := Bounds[T]{
		Min: arr[0],
		Max: arr[0],
	}

	for _, v := range arr[1:] {
		if v < resultBounds.Min {
			resultBounds.Min = v
		}
		if v > resultBounds.Max {
			resultBounds.Max = v
		}
	}
	return resultBounds
}
