package rc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dot5enko/segment-rc/schema"
)

func TestSingleChildCollapse(t *testing.T) {

	leaf := Must(NewEqual(attrA, 4))
	assert.Same(t, leaf, Must(NewAnd(leaf)).DoOptimize())
	assert.Same(t, leaf, Must(NewOr(leaf)).DoOptimize())

	inner := Must(NewOr(Must(NewLike(attrS, "a%")), Must(NewGreater(attrA, 3))))
	assert.Same(t, inner, Must(NewAnd(inner)).DoOptimize())
}

func TestNotEqualFoldsIntoNotIn(t *testing.T) {

	op := Must(NewAnd(
		Must(NewNotEqual(attrA, 1)),
		Must(NewNotEqual(attrA, 2)),
		Must(NewNotEqual(attrA, 3)),
	)).DoOptimize()

	notIn, ok := op.(*NotIn)
	require.True(t, ok, op.String())
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, notIn.Values())

	seg, err := singleColumn([]int64{1, 2, 3, 4, 2, 4})
	require.NoError(t, err)

	assert.Equal(t, []int{3, 5}, matchingRows(t, op, seg))
}

func TestNotInFoldIsAllOrNothing(t *testing.T) {

	other := schema.NewAttr("b", schema.Int64FieldType)

	mixedAttr := Must(NewAnd(Must(NewNotEqual(attrA, 1)), Must(NewNotEqual(other, 2))))
	assert.Same(t, mixedAttr, mixedAttr.DoOptimize())

	mixedKind := Must(NewAnd(Must(NewNotEqual(attrA, 1)), Must(NewLess(attrA, 2))))
	assert.Same(t, mixedKind, mixedKind.DoOptimize())
}

func TestBetweenFolding(t *testing.T) {

	op := Must(NewAnd(Must(NewGreaterEqual(attrA, 10)), Must(NewLessEqual(attrA, 20)))).DoOptimize()

	between, ok := op.(*Between)
	require.True(t, ok, op.String())
	assert.Equal(t, int64(10), between.Low())
	assert.Equal(t, int64(20), between.High())

	// idempotent
	assert.Same(t, op, op.DoOptimize())
}

func TestBetweenFoldingKeepsOtherChildren(t *testing.T) {

	op := Must(NewAnd(
		Must(NewLessEqual(attrA, 20)),
		Must(NewLike(attrS, "a%")),
		Must(NewGreaterEqual(attrA, 10)),
	)).DoOptimize()

	assert.Equal(t, `and(between(a:Int64, 10, 20), like(s:String, "a%"))`, op.String())
	assert.Same(t, op, op.DoOptimize())
}

func TestBetweenFoldingReachesFixpoint(t *testing.T) {

	op := Must(NewAnd(
		Must(NewGreaterEqual(attrA, 1)),
		Must(NewGreaterEqual(attrA, 2)),
		Must(NewLessEqual(attrA, 5)),
		Must(NewLessEqual(attrA, 6)),
		Must(NewGreaterEqual(attrF, 1.0)),
	)).DoOptimize()

	// first found pairs: (0,2) then (1,2) of the shrunk list, the float bound has no partner
	assert.Equal(t, "and(between(a:Int64, 2, 6), between(a:Int64, 1, 5), greater_equal(f:Float64, 1))", op.String())
}

func TestBetweenFoldingGoesFirst(t *testing.T) {

	op := Must(NewAnd(
		Must(NewEqual(attrS, "x")),
		Must(NewGreaterEqual(attrA, 1)),
		Must(NewLessEqual(attrA, 5)),
		Must(NewGreater(attrF, 2.5)),
	)).DoOptimize()

	assert.Equal(t, `and(between(a:Int64, 1, 5), equal(s:String, "x"), greater(f:Float64, 2.5))`, op.String())
	assert.Same(t, op, op.DoOptimize())
}

func TestBetweenFoldingNeedsSameAttr(t *testing.T) {

	op := Must(NewAnd(Must(NewGreaterEqual(attrA, 1)), Must(NewLessEqual(attrN, 5))))
	assert.Same(t, op, op.DoOptimize())
}

func TestEqualFoldsIntoIn(t *testing.T) {

	op := Must(NewOr(
		Must(NewEqual(attrS, "kiwi")),
		Must(NewEqual(attrS, "fig")),
	)).DoOptimize()

	in, ok := op.(*In)
	require.True(t, ok, op.String())
	assert.Equal(t, []any{"kiwi", "fig"}, in.Values())

	// ranges are never merged on the or side
	ranges := Must(NewOr(Must(NewLessEqual(attrA, 1)), Must(NewGreaterEqual(attrA, 1))))
	assert.Same(t, ranges, ranges.DoOptimize())
}

func TestNotIsEliminated(t *testing.T) {

	op := Must(NewNot(Must(NewOr(
		Must(NewEqual(attrA, 1)),
		Must(NewEqual(attrA, 2)),
	)))).DoOptimize()

	assert.Equal(t, "not_in(a:Int64, {1, 2})", op.String())

	for _, it := range corpus(t) {
		assertNoNot(t, Optimize(it))
	}
}

func assertNoNot(t *testing.T, op Operator) {
	t.Helper()

	_, isNot := op.(*Not)
	assert.False(t, isNot, op.String())

	for _, child := range op.Children() {
		assertNoNot(t, child)
	}
}

func TestApplyNotPairs(t *testing.T) {

	cases := []struct {
		op       Operator
		negation string
	}{
		{Must(NewEqual(attrA, 1)), "not_equal(a:Int64, 1)"},
		{Must(NewGreaterEqual(attrA, 1)), "less(a:Int64, 1)"},
		{Must(NewLessEqual(attrA, 1)), "greater(a:Int64, 1)"},
		{Must(NewBetween(attrA, 1, 5)), "or(less(a:Int64, 1), greater(a:Int64, 5))"},
		{Must(NewIn(attrA, 1, 2)), "not_in(a:Int64, {1, 2})"},
		{Must(NewLike(attrS, "a%")), `not_like(s:String, "a%")`},
		{Must(NewIsNull(attrS)), "not_null(s:String)"},
		{Must(NewAnd(Must(NewEqual(attrA, 1)), Must(NewLess(attrF, 2.5)))), "or(not_equal(a:Int64, 1), greater_equal(f:Float64, 2.5))"},
		{Must(NewNot(Must(NewEqual(attrA, 1)))), "equal(a:Int64, 1)"},
	}

	for _, it := range cases {
		assert.Equal(t, it.negation, it.op.ApplyNot().String())
	}
}

func TestUnchangedChildrenAreShared(t *testing.T) {

	eq := Must(NewEqual(attrA, 1))
	like := Must(NewLike(attrS, "a%"))

	op := Must(NewAnd(eq, like))
	assert.Same(t, op, op.DoOptimize())

	nested := Must(NewOr(op, Must(NewAnd(Must(NewLess(attrA, 3))))))
	optimized := nested.DoOptimize()
	require.NotSame(t, nested, optimized)

	children := optimized.Children()
	require.Len(t, children, 2)
	assert.Same(t, op, children[0])
	assert.Equal(t, "less(a:Int64, 3)", children[1].String())
}
