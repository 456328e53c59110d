package ops

// CompareValuesAreInSet matches rows whose value is (or, with negate, is not) one of set.
func CompareValuesAreInSet[T Ordered](arr []T, set map[T]struct{}, negate bool, out []uint32) int {
	filled := 0

	for i, v := range arr {
		_, found := set[v]
		if found != negate {
			out[filled] = uint32(i)
			filled++
		}
	}

	return filled
}

// CompareValuesMatch is the fallback kernel for predicates without a dedicated loop.
func CompareValuesMatch[T any](arr []T, match func(T) bool, out []uint32) int {
	filled := 0

	for i, v := range arr {
		if match(v) {
			out[filled] = uint32(i)
			filled++
		}
	}

	return filled
}
