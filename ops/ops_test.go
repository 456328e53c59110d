package ops

import (
	"math/rand"
	"testing"
)

func TestRangeTail(t *testing.T) {
	input := []int64{1050, 9000, 2000}

	out := make([]uint32, len(input))

	resultSize := CompareValuesAreInRange(input[:], 1024, 8192, out)

	if resultSize != 2 {
		t.Errorf("Expected %d but got %d", 2, resultSize)
	} else if out[1] != 2 {
		t.Errorf("result compare Expected %v but got %v", 2, out[1])
	}
}

func TestRangeTailFloat(t *testing.T) {
	input := []float64{1050, 9000, 2000}

	out := make([]uint32, len(input))

	resultSize := CompareValuesAreInRange(input[:], 1024.0, 8192.0, out)

	if resultSize != 2 {
		t.Errorf("Expected %d but got %d", 2, resultSize)
	} else if out[1] != 2 {
		t.Errorf("result compare Expected %v but got %v", 2, out[1])
	}
}

func TestRangeBlockAndTail(t *testing.T) {
	input := []int64{0, 0, 0, 1, 0, 0, 0, 7000, 1500}

	out := make([]uint32, len(input))

	resultSize := CompareValuesAreInRange(input[:], 1024, 8192, out)

	if resultSize != 2 {
		t.Errorf("Expected %d but got %d", 2, resultSize)
	} else if out[0] != 7 || out[1] != 8 {
		t.Errorf("Expected indices [7 8] but got %v", out[:resultSize])
	}
}

func TestRangeIsInclusive(t *testing.T) {
	input := []int64{10, 20, 9, 21, 15, 10, 20, 0, 20}

	out := make([]uint32, len(input))

	resultSize := CompareValuesAreInRange(input, 10, 20, out)

	expected := []uint32{0, 1, 4, 5, 6, 8}
	if resultSize != len(expected) {
		t.Fatalf("Expected %d but got %d", len(expected), resultSize)
	}
	for i, it := range expected {
		if out[i] != it {
			t.Errorf("at %d expected %d got %d", i, it, out[i])
		}
	}

	if CompareValuesAreInRange(input, 20, 10, out) != 0 {
		t.Errorf("inverted range must match nothing")
	}
}

func TestRangeStrings(t *testing.T) {
	input := []string{"apple", "banana", "cherry", "date"}

	out := make([]uint32, len(input))

	resultSize := CompareValuesAreInRange(input, "b", "cz", out)

	if resultSize != 2 || out[0] != 1 || out[1] != 2 {
		t.Errorf("unexpected result %v", out[:resultSize])
	}
}

func naiveCount(arr []int64, match func(int64) bool) int {
	c := 0
	for _, v := range arr {
		if match(v) {
			c++
		}
	}
	return c
}

func TestComparisonKernelsAgainstNaive(t *testing.T) {

	size := 1037
	input := make([]int64, size)
	for i := range input {
		input[i] = rand.Int63n(100)
	}

	var cmp int64 = 50
	out := make([]uint32, size)

	cases := []struct {
		name   string
		kernel func([]int64, int64, []uint32) int
		match  func(int64) bool
	}{
		{"eq", CompareValuesAreEqual[int64], func(v int64) bool { return v == cmp }},
		{"ne", CompareValuesAreNotEqual[int64], func(v int64) bool { return v != cmp }},
		{"gt", CompareValuesAreBigger[int64], func(v int64) bool { return v > cmp }},
		{"ge", CompareValuesAreBiggerOrEqual[int64], func(v int64) bool { return v >= cmp }},
		{"lt", CompareValuesAreSmaller[int64], func(v int64) bool { return v < cmp }},
		{"le", CompareValuesAreSmallerOrEqual[int64], func(v int64) bool { return v <= cmp }},
	}

	for _, c := range cases {
		got := c.kernel(input, cmp, out)
		expected := naiveCount(input, c.match)

		if got != expected {
			t.Errorf("[%s] expected %d but got %d", c.name, expected, got)
			continue
		}

		for _, idx := range out[:got] {
			if !c.match(input[idx]) {
				t.Errorf("[%s] index %d does not match", c.name, idx)
			}
		}
	}
}

func TestInSet(t *testing.T) {
	input := []int64{1, 2, 3, 4, 1, 5}
	set := map[int64]struct{}{1: {}, 3: {}}

	out := make([]uint32, len(input))

	if n := CompareValuesAreInSet(input, set, false, out); n != 3 {
		t.Errorf("in: expected 3 got %d", n)
	}
	if n := CompareValuesAreInSet(input, set, true, out); n != 3 || out[0] != 1 || out[1] != 3 || out[2] != 5 {
		t.Errorf("not in: unexpected %v", out[:n])
	}
}

func TestMinMax(t *testing.T) {

	minVal := -10.0
	maxVal := 7000.0

	input := []float64{minVal, maxVal, 1, 2, 3, 4, 5, 6, 0.0, 1000}

	result := GetMaxMin(input[:])

	if result.Max != maxVal {
		t.Errorf("Expected %.2f but got %.2f", maxVal, result.Max)
	}

	if result.Min != minVal {
		t.Errorf("Expected %.2f but got %.2f", minVal, result.Min)
	}
}

func TestIndexBufferReuse(t *testing.T) {
	buf := AcquireIndices(16)
	if len(buf.Indices) != 16 {
		t.Fatalf("expected 16 slots, got %d", len(buf.Indices))
	}
	ReleaseIndices(buf)

	bigger := AcquireIndices(64)
	if len(bigger.Indices) != 64 {
		t.Errorf("expected 64 slots, got %d", len(bigger.Indices))
	}
	ReleaseIndices(bigger)
}

func BenchmarkRangeInts(b *testing.B) {

	size := 40000

	var fromBounds int64 = 4096
	var toBounds int64 = 8192

	totalCount := 0

	input := make([]int64, size)

	for i := 0; i < size; i++ {
		val := rand.Int63n(50000)
		input[i] = val

		if val >= fromBounds && val <= toBounds {
			totalCount++
		}
	}

	out := make([]uint32, size)

	for b.Loop() {
		totalBenchCount := CompareValuesAreInRange(input[:], fromBounds, toBounds, out)
		if totalCount != totalBenchCount {
			b.Fatalf("Benchmark failed: expected %d but got %d", totalCount, totalBenchCount)
		}
	}
}

func BenchmarkMinMaxRand(b *testing.B) {

	size := 40000

	input := make([]int64, size)

	for i := 0; i < size; i++ {
		input[i] = rand.Int63n(50000)
	}

	var result Bounds[int64]

	for b.Loop() {
		result = GetMaxMin(input)
	}

	b.Logf("min : %d, max : %d", result.Min, result.Max)
}
