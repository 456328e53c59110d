package manager

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dot5enko/segment-rc/compression"
	"github.com/dot5enko/segment-rc/manager/query"
	"github.com/dot5enko/segment-rc/rc"
	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

// 100 rows in packs of 10: id is the row number, city cycles through 5 names,
// score is null on every 7th row
func ordersSegment(t testing.TB) *segment.Memory {
	t.Helper()

	ids := make([]int64, 100)
	cities := make([]string, 100)
	scores := make([]float64, 100)
	nulls := make([]bool, 100)

	for i := range ids {
		ids[i] = int64(i)
		cities[i] = []string{"berlin", "kyiv", "lisbon", "oslo", "paris"}[i%5]
		scores[i] = float64(i%10) / 2
		if i%7 == 0 {
			scores[i] = 0
			nulls[i] = true
		}
	}

	seg, err := segment.NewBuilder(10).
		AddInts("id", schema.Uint32FieldType, ids, nil).
		AddStrings("city", cities, nil).
		AddFloats("score", schema.Float64FieldType, scores, nulls).
		Build()
	require.NoError(t, err)

	return seg
}

func newTestManager(t testing.TB, dir string) *Manager {
	t.Helper()

	m := New(ManagerConfig{
		PathToStorage:     dir,
		CacheMaxPacks:     64,
		DecodeBuffers:     4,
		DecodeBufferBytes: 4096,
		Workers:           4,
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(func() { m.Close() })

	return m
}

func TestWriteAndFilter(t *testing.T) {

	m := newTestManager(t, filepath.Join(t.TempDir(), "storage"))

	id, err := m.WriteSegment(ordersSegment(t), compression.Lz4)
	require.NoError(t, err)
	assert.FileExists(t, m.SegmentPath(id))
	assert.Equal(t, []uuid.UUID{id}, m.Segments())

	result, err := m.Filter(context.Background(), id, []byte(`{
		"type": "and",
		"children": [
			{"type": "greater_equal", "attr": {"name": "id", "type": "uint32"}, "value": 20},
			{"type": "less_equal", "attr": {"name": "id", "type": "uint32"}, "value": 39},
			{"type": "equal", "attr": {"name": "city", "type": "string"}, "value": "oslo"}
		]
	}`))
	require.NoError(t, err)
	defer result.Free()

	assert.Equal(t, []uint64{23, 28, 33, 38}, result.RowIds())
	assert.Equal(t, 8, result.SkippedPacks)
	assert.Equal(t, 2, result.ExactPacks)
}

func TestFilterNegation(t *testing.T) {

	m := newTestManager(t, t.TempDir())

	id, err := m.WriteSegment(ordersSegment(t), compression.None)
	require.NoError(t, err)

	// not(score < 4) leaves out null scores
	op := rc.Must(rc.NewNot(rc.Must(rc.NewLess(schema.NewAttr("score", schema.Float64FieldType), 4))))

	result, err := m.FilterOperator(context.Background(), id, op)
	require.NoError(t, err)
	defer result.Free()

	for _, row := range result.RowIds() {
		assert.NotZero(t, row%7, "null row %d matched", row)
		assert.GreaterOrEqual(t, float64(row%10)/2, 4.0, "row %d", row)
	}
	// rows ending in 8 or 9, minus 28, 49 and 98
	assert.Equal(t, 17, result.MatchedRows)
}

func TestQuery(t *testing.T) {

	m := newTestManager(t, t.TempDir())

	id, err := m.WriteSegment(ordersSegment(t), compression.Lz4)
	require.NoError(t, err)

	q, err := query.ParseQuery([]byte(`{
		"filter": [
			{"field": "city", "op": "IN", "args": ["kyiv", "paris"]},
			{"field": "id", "op": "LT", "args": [10]}
		],
		"select": [{"type": "count"}, {"type": "row_ids", "alias": "rows"}]
	}`))
	require.NoError(t, err)

	result, err := m.Query(context.Background(), id, q)
	require.NoError(t, err)

	assert.Equal(t, 4, result["count"])
	assert.Equal(t, []uint64{1, 4, 6, 9}, result["rows"])

	_, err = m.Query(context.Background(), id, query.Query{Filter: []query.FilterCondition{{Field: "missing", Operand: query.EQ, Arguments: []any{1}}}})
	assert.ErrorIs(t, err, query.ErrColumnNotFound)
}

func TestReloadFromDisk(t *testing.T) {

	dir := t.TempDir()

	first := newTestManager(t, dir)
	id, err := first.WriteSegment(ordersSegment(t), compression.Lz4)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	_, err = first.OpenSegment(id)
	assert.ErrorIs(t, err, ErrClosed)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.seg"), []byte("hello"), 0644))

	second := newTestManager(t, dir)
	loaded, err := second.LoadSegmentsFromDisk()
	require.NoError(t, err)
	assert.Equal(t, 1, loaded)

	seg, err := second.Segment(id)
	require.NoError(t, err)
	assert.Equal(t, 100, seg.RowCount())

	result, err := second.Filter(context.Background(), id, []byte(`{"type": "is_null", "attr": {"name": "score", "type": "float64"}}`))
	require.NoError(t, err)
	defer result.Free()

	assert.Equal(t, 15, result.MatchedRows)
	assert.Positive(t, second.CacheStats().Items)

	buffers := second.BufferStats()
	assert.Positive(t, buffers.Borrowed)
	assert.Equal(t, 4, buffers.Free)
}

func TestMissingSegments(t *testing.T) {

	m := newTestManager(t, filepath.Join(t.TempDir(), "never-created"))

	loaded, err := m.LoadSegmentsFromDisk()
	require.NoError(t, err)
	assert.Zero(t, loaded)

	unknown := uuid.New()

	_, err = m.OpenSegment(unknown)
	assert.ErrorIs(t, err, ErrSegmentNotFound)

	_, err = m.Filter(context.Background(), unknown, []byte(`{"type": "is_null", "attr": {"name": "x", "type": "int64"}}`))
	assert.ErrorIs(t, err, ErrSegmentNotFound)

	assert.ErrorIs(t, m.DropSegment(unknown), ErrSegmentNotFound)
}

func TestFilterErrors(t *testing.T) {

	m := newTestManager(t, t.TempDir())

	id, err := m.WriteSegment(ordersSegment(t), compression.Lz4)
	require.NoError(t, err)

	_, err = m.Filter(context.Background(), id, []byte(`{"type": "between", "attr": {"name": "id", "type": "uint32"}}`))
	assert.ErrorIs(t, err, rc.ErrMalformed)

	_, err = m.Filter(context.Background(), id, []byte(`{"type": "equal", "attr": {"name": "id", "type": "int64"}, "value": 1}`))
	assert.ErrorIs(t, err, segment.ErrColumnTypeMismatch)
}

func TestDropSegment(t *testing.T) {

	m := newTestManager(t, t.TempDir())

	id, err := m.WriteSegment(ordersSegment(t), compression.Lz4)
	require.NoError(t, err)

	path := m.SegmentPath(id)

	require.NoError(t, m.DropSegment(id))
	assert.NoFileExists(t, path)
	assert.Empty(t, m.Segments())

	_, err = m.Segment(id)
	assert.ErrorIs(t, err, ErrSegmentNotFound)
}
