package ops

// CompareValuesAreInRange matches from <= v <= to. An inverted range matches nothing.
func CompareValuesAreInRange[T Ordered](
	arr []T, from, to T, out []uint32,
) int {
	if to < from {
		return 0
	}

	n := len(arr)
	filled := 0
	i := 0

	for ; i+7 < n; i += 8 {
		a0 := arr[i+0]
		a1 := arr[i+1]
		a2 := arr[i+2]
		a3 := arr[i+3]
		a4 := arr[i+4]
		a5 := arr[i+5]
		a6 := arr[i+6]
		a7 := arr[i+7]

		m0 := a0 >= from && a0 <= to
		m1 := a1 >= from && a1 <= to
		m2 := a2 >= from && a2 <= to
		m3 := a3 >= from && a3 <= to
		m4 := a4 >= from && a4 <= to
		m5 := a5 >= from && a5 <= to
		m6 := a6 >= from && a6 <= to
		m7 := a7 >= from && a7 <= to

		out[filled] = uint32(i + 0)
		filled += b2i(m0)
		out[filled] = uint32(i + 1)
		filled += b2i(m1)
		out[filled] = uint32(i + 2)
		filled += b2i(m2)
		out[filled] = uint32(i + 3)
		filled += b2i(m3)
		out[filled] = uint32(i + 4)
		filled += b2i(m4)
		out[filled] = uint32(i + 5)
		filled += b2i(m5)
		out[filled] = uint32(i + 6)
		filled += b2i(m6)
		out[filled] = uint32(i + 7)
		filled += b2i(m7)
	}

	for ; i < n; i++ {
		a := arr[i]
		if a >= from && a <= to {
			out[filled] = uint32(i)
			filled++
		}
	}

	return filled
}
