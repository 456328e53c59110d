package query

import (
	"testing"

	"github.com/dot5enko/segment-rc/schema"
)

// boundsInfo answers column statistics for a single float column.
type boundsInfo struct {
	stats schema.Stats
}

func (b boundsInfo) ColumnStats(attr schema.Attr) (schema.Stats, error) {
	return b.stats, nil
}

var valueAttr = schema.NewAttr("value", schema.Float32FieldType)

func checkBounds(t *testing.T, cond FilterCondition, expected schema.RSValue) {
	t.Helper()

	info := boundsInfo{stats: schema.Stats{
		RowCount: 10,
		Min:      schema.FloatLiteral(0.5),
		Max:      schema.FloatLiteral(0.8),
	}}

	op, err := cond.Operator(valueAttr)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	matchResult, matchErr := op.RoughCheckOnColumn(info)

	if matchErr != nil {
		t.Errorf("unexpected error %v", matchErr)
	} else if matchResult != expected {
		t.Errorf("%s: expected %s, got %s", op.String(), expected.String(), matchResult.String())
	}
}

func TestHeaderFullIntersectFilter(t *testing.T) {
	checkBounds(t, FilterCondition{Field: "value", Operand: GT, Arguments: []any{float32(0.4999)}}, schema.All)
	checkBounds(t, FilterCondition{Field: "value", Operand: RANGE, Arguments: []any{0.5, 0.8}}, schema.All)
}

func TestHeaderNoIntersectFilter(t *testing.T) {
	checkBounds(t, FilterCondition{Field: "value", Operand: LT, Arguments: []any{float32(0.4999)}}, schema.None)
	checkBounds(t, FilterCondition{Field: "value", Operand: EQ, Arguments: []any{0.9}}, schema.None)
	checkBounds(t, FilterCondition{Field: "value", Operand: RANGE, Arguments: []any{0.8, 0.5}}, schema.None)
}

func TestHeaderPartialIntersectFilter(t *testing.T) {
	checkBounds(t, FilterCondition{Field: "value", Operand: LT, Arguments: []any{float32(0.5999)}}, schema.Some)
	checkBounds(t, FilterCondition{Field: "value", Operand: EQ, Arguments: []any{0.6}}, schema.Some)
}
