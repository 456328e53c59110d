package executor

import (
	"time"

	"github.com/dot5enko/segment-rc/bits"
	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

type Result struct {
	Packs int

	SkippedPacks int
	FullPacks    int
	ExactPacks   int
	MatchedRows  int

	ColumnCheck schema.RSValue

	// indexed by pack id, rows are relative to the pack
	Outcomes []PackOutcome
	PackRows []*bits.BitMap

	Took time.Duration

	packOffsets []int
}

func newResult(seg segment.Segment) *Result {

	packCount := seg.PackCount()

	result := &Result{
		Packs:       packCount,
		Outcomes:    make([]PackOutcome, packCount),
		PackRows:    make([]*bits.BitMap, packCount),
		packOffsets: make([]int, packCount),
	}

	offset := 0
	for packId := range packCount {
		result.packOffsets[packId] = offset
		offset += seg.PackRowCount(packId)
	}

	return result
}

// RowIds returns the matching rows as segment wide row numbers in ascending order.
func (r *Result) RowIds() []uint64 {

	ids := make([]uint64, 0, r.MatchedRows)

	for packId, rows := range r.PackRows {
		if rows == nil {
			continue
		}
		offset := uint64(r.packOffsets[packId])
		for _, row := range rows.ToIndices() {
			ids = append(ids, offset+uint64(row))
		}
	}

	return ids
}

// Free releases the per pack bitmaps, the result must not be used afterwards.
func (r *Result) Free() {
	for packId, rows := range r.PackRows {
		if rows != nil {
			rows.Free()
		}
		r.PackRows[packId] = nil
	}
}
