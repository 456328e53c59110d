package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dot5enko/segment-rc/rc"
	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

var (
	attrV   = schema.NewAttr("v", schema.Int64FieldType)
	attrTag = schema.NewAttr("tag", schema.StringFieldType)
)

// 40 rows in packs of 8, v is the row number, tag cycles through 4 values
func sequenceSegment(t testing.TB) *segment.Memory {
	t.Helper()

	values := make([]int64, 40)
	tags := make([]string, 40)
	for i := range values {
		values[i] = int64(i)
		tags[i] = []string{"red", "green", "blue", "gray"}[i%4]
	}

	seg, err := segment.NewBuilder(8).
		AddInts("v", schema.Int64FieldType, values, nil).
		AddStrings("tag", tags, nil).
		Build()
	require.NoError(t, err)

	return seg
}

func quietExecutor(workers int) *PlanExecutor {
	return NewPlanExecutor(Config{
		Workers: workers,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func rowRange(from, to uint64) []uint64 {
	result := []uint64{}
	for i := from; i < to; i++ {
		result = append(result, i)
	}
	return result
}

func TestExecuteOutcomes(t *testing.T) {

	seg := sequenceSegment(t)
	executor := quietExecutor(4)

	cases := []struct {
		name   string
		filter rc.Operator

		skipped, full, exact int
		rows                 []uint64
		outcomes             []PackOutcome
	}{
		{
			name:     "upper half",
			filter:   rc.Must(rc.NewGreaterEqual(attrV, 16)),
			skipped:  2,
			full:     3,
			rows:     rowRange(16, 40),
			outcomes: []PackOutcome{PackSkipped, PackSkipped, PackFull, PackFull, PackFull},
		},
		{
			name:     "range across two packs",
			filter:   rc.Must(rc.NewBetween(attrV, 4, 11)),
			skipped:  3,
			exact:    2,
			rows:     rowRange(4, 12),
			outcomes: []PackOutcome{PackExact, PackExact, PackSkipped, PackSkipped, PackSkipped},
		},
		{
			name:     "nothing",
			filter:   rc.Must(rc.NewGreater(attrV, 100)),
			skipped:  5,
			rows:     []uint64{},
			outcomes: []PackOutcome{PackSkipped, PackSkipped, PackSkipped, PackSkipped, PackSkipped},
		},
		{
			name:     "everything",
			filter:   rc.Must(rc.NewNotNull(attrTag)),
			full:     5,
			rows:     rowRange(0, 40),
			outcomes: []PackOutcome{PackFull, PackFull, PackFull, PackFull, PackFull},
		},
		{
			name: "tag and range",
			filter: rc.Must(rc.NewAnd(
				rc.Must(rc.NewEqual(attrTag, "blue")),
				rc.Must(rc.NewLess(attrV, 12)),
			)),
			skipped:  3,
			exact:    2,
			rows:     []uint64{2, 6, 10},
			outcomes: []PackOutcome{PackExact, PackExact, PackSkipped, PackSkipped, PackSkipped},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {

			result, err := executor.Execute(context.Background(), tc.filter, seg)
			require.NoError(t, err)
			defer result.Free()

			assert.Equal(t, 5, result.Packs)
			assert.Equal(t, tc.skipped, result.SkippedPacks)
			assert.Equal(t, tc.full, result.FullPacks)
			assert.Equal(t, tc.exact, result.ExactPacks)
			assert.Equal(t, len(tc.rows), result.MatchedRows)
			assert.Equal(t, tc.outcomes, result.Outcomes)
			assert.Equal(t, tc.rows, result.RowIds())
		})
	}
}

func TestExecuteColumnShortcut(t *testing.T) {

	seg := sequenceSegment(t)
	executor := quietExecutor(2)

	counting := &countingSegment{Segment: seg}

	result, err := executor.Execute(context.Background(), rc.Must(rc.NewLess(attrV, 0)), counting)
	require.NoError(t, err)
	defer result.Free()

	assert.Equal(t, schema.None, result.ColumnCheck)
	assert.Equal(t, 0, counting.packStats+counting.values)

	result, err = executor.Execute(context.Background(), rc.Must(rc.NewLess(attrV, 40)), counting)
	require.NoError(t, err)
	defer result.Free()

	assert.Equal(t, schema.All, result.ColumnCheck)
	assert.Equal(t, 0, counting.packStats+counting.values)
	assert.Equal(t, 40, result.MatchedRows)
}

func TestExecuteWorkersAgree(t *testing.T) {

	seg := sequenceSegment(t)

	filters := []rc.Operator{
		rc.Must(rc.NewNotEqual(attrV, 3)),
		rc.Must(rc.NewIn(attrTag, "red", "gray")),
		rc.Must(rc.NewLike(attrTag, "g%")),
		rc.Optimize(rc.Must(rc.NewNot(rc.Must(rc.NewOr(
			rc.Must(rc.NewLess(attrV, 10)),
			rc.Must(rc.NewGreater(attrV, 30)),
		))))),
	}

	serial := quietExecutor(1)
	parallel := quietExecutor(8)

	for _, filter := range filters {

		expected, err := serial.Execute(context.Background(), filter, seg)
		require.NoError(t, err)

		got, err := parallel.Execute(context.Background(), filter, seg)
		require.NoError(t, err)

		assert.Equal(t, expected.RowIds(), got.RowIds(), filter.String())
		assert.Equal(t, expected.Outcomes, got.Outcomes, filter.String())

		expected.Free()
		got.Free()
	}
}

var errDiskGone = errors.New("disk gone")

type countingSegment struct {
	segment.Segment

	failPack  int
	packStats int
	values    int
}

func (s *countingSegment) PackStats(attr schema.Attr, packId int) (schema.Stats, error) {
	s.packStats++
	return s.Segment.PackStats(attr, packId)
}

func (s *countingSegment) PackColumnValues(attr schema.Attr, packId int) (*schema.PackValues, error) {
	s.values++
	if s.failPack > 0 && packId == s.failPack {
		return nil, errDiskGone
	}
	return s.Segment.PackColumnValues(attr, packId)
}

func TestExecuteErrors(t *testing.T) {

	seg := &countingSegment{Segment: sequenceSegment(t), failPack: 2}

	// only pack 2 needs its values
	_, err := quietExecutor(1).Execute(context.Background(), rc.Must(rc.NewEqual(attrV, 17)), seg)
	require.ErrorIs(t, err, errDiskGone)

	_, err = quietExecutor(2).Execute(context.Background(), rc.Must(rc.NewEqual(schema.NewAttr("missing", schema.Int64FieldType), 1)), seg)
	require.ErrorIs(t, err, segment.ErrColumnNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = quietExecutor(2).Execute(ctx, rc.Must(rc.NewNotEqual(attrV, 3)), sequenceSegment(t))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSlowPackLogging(t *testing.T) {

	var out bytes.Buffer

	executor := NewPlanExecutor(Config{
		Workers:           2,
		SlowPackThreshold: 1,
		Logger:            slog.New(slog.NewTextHandler(&out, nil)),
	})

	result, err := executor.Execute(context.Background(), rc.Must(rc.NewBetween(attrV, 4, 11)), sequenceSegment(t))
	require.NoError(t, err)
	result.Free()

	assert.Contains(t, out.String(), "slow pack evaluation")
	assert.Contains(t, out.String(), "matched_rows=8")
}

func TestDefaults(t *testing.T) {
	executor := NewPlanExecutor(Config{})
	assert.Positive(t, executor.Workers())
	assert.Equal(t, DefaultSlowPackThreshold, executor.cfg.SlowPackThreshold)
	assert.NotNil(t, executor.cfg.Logger)
}

func BenchmarkExecute(b *testing.B) {

	seg := sequenceSegment(b)
	executor := quietExecutor(4)
	filter := rc.Must(rc.NewIn(attrTag, "red", "gray"))

	for b.Loop() {
		result, err := executor.Execute(context.Background(), filter, seg)
		if err != nil {
			b.Fatal(err)
		}
		result.Free()
	}
}
