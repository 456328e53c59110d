package executor

import (
	"fmt"
	"time"

	"github.com/dot5enko/segment-rc/bits"
	"github.com/dot5enko/segment-rc/rc"
	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

type PackOutcome byte

const (
	// PackSkipped: the rough check proved no row matches, values were not read.
	PackSkipped PackOutcome = iota
	// PackFull: the rough check proved every row matches, values were not read.
	PackFull
	// PackExact: rows were checked one by one.
	PackExact
)

func (o PackOutcome) String() string {
	switch o {
	case PackSkipped:
		return "skipped"
	case PackFull:
		return "full"
	case PackExact:
		return "exact"
	default:
		return fmt.Sprintf("outcome(%d)", byte(o))
	}
}

// processPack runs the two tier check on one pack. The returned bitmap is
// owned by the caller.
func processPack(op rc.Operator, seg segment.Segment, packId int) (PackOutcome, *bits.BitMap, error) {

	rough, err := op.RoughCheckOnPack(seg, packId)
	if err != nil {
		return PackSkipped, nil, fmt.Errorf("rough check on pack %d: %w", packId, err)
	}

	switch rough {
	case schema.None:
		return PackSkipped, bits.NONE, nil
	case schema.All:
		return PackFull, bits.NewFull(seg.PackRowCount(packId)), nil
	}

	rows, err := op.ExactCheckOnRow(seg, packId)
	if err != nil {
		return PackExact, nil, fmt.Errorf("exact check on pack %d: %w", packId, err)
	}

	return PackExact, rows, nil
}

func (e *PlanExecutor) runPack(status *TaskStatus, result *Result, op rc.Operator, seg segment.Segment, packId int) error {

	start := time.Now()

	outcome, rows, err := processPack(op, seg, packId)
	if err != nil {
		return err
	}

	if took := time.Since(start); took > e.cfg.SlowPackThreshold {
		e.cfg.Logger.Info("slow pack evaluation", "pack_id", packId, "outcome", outcome.String(), "took", took)
	}

	result.Outcomes[packId] = outcome
	result.PackRows[packId] = rows

	switch outcome {
	case PackSkipped:
		status.SkippedPacks.Add(1)
	case PackFull:
		status.FullPacks.Add(1)
	case PackExact:
		status.ExactPacks.Add(1)
	}

	status.MatchedRows.Add(int64(rows.Count()))
	status.PacksProcessed.Add(1)

	return nil
}
