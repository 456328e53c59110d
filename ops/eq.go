package ops

// Kernels write the indices of matching rows into out, which must be at least
// as long as arr, and return how many were written. Indices are ascending.

func CompareValuesAreEqual[T Ordered](arr []T, cmp T, out []uint32) int {
	n := len(arr)
	filled := 0
	i := 0

	for ; i+7 < n; i += 8 {
		a0, a1 := arr[i], arr[i+1]
		a2, a3 := arr[i+2], arr[i+3]
		a4, a5 := arr[i+4], arr[i+5]
		a6, a7 := arr[i+6], arr[i+7]

		out[filled] = uint32(i + 0)
		filled += b2i(a0 == cmp)
		out[filled] = uint32(i + 1)
		filled += b2i(a1 == cmp)
		out[filled] = uint32(i + 2)
		filled += b2i(a2 == cmp)
		out[filled] = uint32(i + 3)
		filled += b2i(a3 == cmp)
		out[filled] = uint32(i + 4)
		filled += b2i(a4 == cmp)
		out[filled] = uint32(i + 5)
		filled += b2i(a5 == cmp)
		out[filled] = uint32(i + 6)
		filled += b2i(a6 == cmp)
		out[filled] = uint32(i + 7)
		filled += b2i(a7 == cmp)
	}

	// Tail element
	for ; i < n; i++ {
		if arr[i] == cmp {
			out[filled] = uint32(i)
			filled++
		}
	}
	return filled
}

func CompareValuesAreNotEqual[T Ordered](arr []T, cmp T, out []uint32) int {
	n := len(arr)
	filled := 0
	i := 0

	for ; i+7 < n; i += 8 {
		a0, a1 := arr[i], arr[i+1]
		a2, a3 := arr[i+2], arr[i+3]
		a4, a5 := arr[i+4], arr[i+5]
		a6, a7 := arr[i+6], arr[i+7]

		out[filled] = uint32(i + 0)
		filled += b2i(a0 != cmp)
		out[filled] = uint32(i + 1)
		filled += b2i(a1 != cmp)
		out[filled] = uint32(i + 2)
		filled += b2i(a2 != cmp)
		out[filled] = uint32(i + 3)
		filled += b2i(a3 != cmp)
		out[filled] = uint32(i + 4)
		filled += b2i(a4 != cmp)
		out[filled] = uint32(i + 5)
		filled += b2i(a5 != cmp)
		out[filled] = uint32(i + 6)
		filled += b2i(a6 != cmp)
		out[filled] = uint32(i + 7)
		filled += b2i(a7 != cmp)
	}

	// Tail element
	for ; i < n; i++ {
		if arr[i] != cmp {
			out[filled] = uint32(i)
			filled++
		}
	}
	return filled
}
