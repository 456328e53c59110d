package rc

import (
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

var (
	attrA = schema.NewAttr("a", schema.Int64FieldType)
	attrF = schema.NewAttr("f", schema.Float64FieldType)
	attrS = schema.NewAttr("s", schema.StringFieldType)
	attrC = schema.NewAttr("c", schema.Int32FieldType)
	attrN = schema.NewAttr("n", schema.Int64FieldType)
)

// testSegment has 16 rows in packs of 4.
//
//	a: 1 2 3 4 | 4 4 4 4 | 10 15 20 25 | 1 2 null 4
//	s: apple apricot banana berry | cherry citrus date dates | fig grape guava kiwi | null lemon lime mango
//	c: 7 everywhere
//	n: null in the first pack, 5..16 after
//	f: row * 0.5
func testSegment(t testing.TB) *segment.Memory {
	t.Helper()

	floats := make([]float64, 16)
	for i := range floats {
		floats[i] = float64(i) * 0.5
	}

	nullAt := func(rows ...int) []bool {
		result := make([]bool, 16)
		for _, it := range rows {
			result[it] = true
		}
		return result
	}

	seg, err := segment.NewBuilder(4).
		AddInts("a", schema.Int64FieldType, []int64{1, 2, 3, 4, 4, 4, 4, 4, 10, 15, 20, 25, 1, 2, 0, 4}, nullAt(14)).
		AddStrings("s", []string{
			"apple", "apricot", "banana", "berry",
			"cherry", "citrus", "date", "dates",
			"fig", "grape", "guava", "kiwi",
			"", "lemon", "lime", "mango",
		}, nullAt(12)).
		AddInts("c", schema.Int32FieldType, []int64{7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7}, nil).
		AddInts("n", schema.Int64FieldType, []int64{0, 0, 0, 0, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}, nullAt(0, 1, 2, 3)).
		AddFloats("f", schema.Float64FieldType, floats, nil).
		Build()
	require.NoError(t, err)

	return seg
}

// singleColumn builds a segment with one int64 column `a`.
func singleColumn(values []int64) (*segment.Memory, error) {
	return segment.NewBuilder(4).AddInts("a", schema.Int64FieldType, values, nil).Build()
}

// matchingRows evaluates op row by row over every pack and returns segment wide row numbers.
func matchingRows(t testing.TB, op Operator, seg segment.Segment) []int {
	t.Helper()

	result := []int{}
	offset := 0

	for packId := 0; packId < seg.PackCount(); packId++ {
		rows, err := op.ExactCheckOnRow(seg, packId)
		require.NoError(t, err, op.String())

		for _, it := range rows.ToIndices() {
			result = append(result, offset+int(it))
		}
		rows.Free()

		offset += seg.PackRowCount(packId)
	}

	return result
}

func dump(v ...any) string {
	return spew.Sdump(v...)
}

var errDiskGone = errors.New("disk gone")

// failingSegment fails every access to one column and counts value reads.
type failingSegment struct {
	segment.Segment

	broken schema.Attr
	reads  int
}

func (s *failingSegment) ColumnStats(attr schema.Attr) (schema.Stats, error) {
	if attr.Equal(s.broken) {
		return schema.Stats{}, errDiskGone
	}
	return s.Segment.ColumnStats(attr)
}

func (s *failingSegment) PackStats(attr schema.Attr, packId int) (schema.Stats, error) {
	if attr.Equal(s.broken) {
		return schema.Stats{}, errDiskGone
	}
	return s.Segment.PackStats(attr, packId)
}

func (s *failingSegment) PackColumnValues(attr schema.Attr, packId int) (*schema.PackValues, error) {
	s.reads++
	if attr.Equal(s.broken) {
		return nil, errDiskGone
	}
	return s.Segment.PackColumnValues(attr, packId)
}

// corpus covers every operator kind over every column shape of testSegment.
func corpus(t testing.TB) []Operator {
	t.Helper()

	return []Operator{
		Must(NewEqual(attrA, 4)),
		Must(NewNotEqual(attrA, 4)),
		Must(NewGreater(attrA, 4)),
		Must(NewGreaterEqual(attrA, 4)),
		Must(NewLess(attrA, 10)),
		Must(NewLessEqual(attrA, 10)),
		Must(NewBetween(attrA, 2, 15)),
		Must(NewBetween(attrA, 20, 10)),
		Must(NewIn(attrA, 1, 4, 25)),
		Must(NewNotIn(attrA, 4)),
		Must(NewEqual(attrC, 7)),
		Must(NewNotEqual(attrC, 7)),
		Must(NewGreaterEqual(attrN, 10)),
		Must(NewEqual(attrF, 1.5)),
		Must(NewGreaterEqual(attrF, 3.0)),
		Must(NewBetween(attrF, 0.5, 2)),
		Must(NewLike(attrS, "ap%")),
		Must(NewLike(attrS, "%an%")),
		Must(NewLike(attrS, "_i%")),
		Must(NewLike(attrS, "%")),
		Must(NewNotLike(attrS, "b%")),
		Must(NewIn(attrS, "fig", "kiwi", "zzz")),
		Must(NewLess(attrS, "c")),
		Must(NewIsNull(attrA)),
		Must(NewNotNull(attrA)),
		Must(NewIsNull(attrN)),
		Must(NewNotNull(attrC)),
		Must(NewAnd(Must(NewGreaterEqual(attrA, 2)), Must(NewLessEqual(attrA, 20)))),
		Must(NewAnd(Must(NewNotEqual(attrA, 1)), Must(NewNotEqual(attrA, 2)), Must(NewNotEqual(attrA, 3)))),
		Must(NewOr(Must(NewEqual(attrA, 1)), Must(NewEqual(attrA, 25)))),
		Must(NewOr(Must(NewLike(attrS, "b%")), Must(NewBetween(attrA, 10, 20)))),
		Must(NewNot(Must(NewAnd(Must(NewGreaterEqual(attrA, 4)), Must(NewLess(attrF, 5.0)))))),
		Must(NewNot(Must(NewNot(Must(NewEqual(attrA, 4)))))),
		Must(NewAnd(
			Must(NewOr(Must(NewIsNull(attrN)), Must(NewGreater(attrF, 6.0)))),
			Must(NewNot(Must(NewIn(attrS, "apple", "kiwi")))),
			Must(NewAnd(Must(NewLessEqual(attrA, 4)))),
		)),
	}
}
