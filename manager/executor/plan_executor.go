package executor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"github.com/dot5enko/segment-rc/bits"
	"github.com/dot5enko/segment-rc/rc"
	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

const DefaultSlowPackThreshold = 10 * time.Millisecond

type Config struct {
	// Workers evaluating packs in parallel, defaults to the number of CPUs.
	Workers int

	SlowPackThreshold time.Duration

	Logger *slog.Logger
}

// PlanExecutor evaluates a filter over a segment: the column statistics
// first, then every pack in parallel, reading values only for packs the
// statistics cannot decide.
type PlanExecutor struct {
	cfg Config
}

func NewPlanExecutor(cfg Config) *PlanExecutor {

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}

	if cfg.SlowPackThreshold <= 0 {
		cfg.SlowPackThreshold = DefaultSlowPackThreshold
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &PlanExecutor{cfg: cfg}
}

func (e *PlanExecutor) Workers() int {
	return e.cfg.Workers
}

// Execute evaluates op over seg. The operator is used as is, callers
// normalize it with rc.Optimize beforehand. The caller owns the result and
// releases it with Free.
func (e *PlanExecutor) Execute(ctx context.Context, op rc.Operator, seg segment.Segment) (*Result, error) {

	start := time.Now()
	packCount := seg.PackCount()

	result := newResult(seg)
	status := &TaskStatus{PacksTotal: packCount}

	columnRough, err := op.RoughCheckOnColumn(seg)
	if err != nil {
		return nil, fmt.Errorf("rough check on columns of %s: %w", op.String(), err)
	}

	switch columnRough {
	case schema.None:
		for packId := range packCount {
			result.Outcomes[packId] = PackSkipped
			result.PackRows[packId] = bits.NONE
		}
		status.SkippedPacks.Store(int32(packCount))
	case schema.All:
		for packId := range packCount {
			rows := bits.NewFull(seg.PackRowCount(packId))
			result.Outcomes[packId] = PackFull
			result.PackRows[packId] = rows
			status.MatchedRows.Add(int64(rows.Count()))
		}
		status.FullPacks.Store(int32(packCount))
	default:
		if err := e.executePacks(ctx, status, result, op, seg); err != nil {
			result.Free()
			return nil, err
		}
	}

	result.SkippedPacks = int(status.SkippedPacks.Load())
	result.FullPacks = int(status.FullPacks.Load())
	result.ExactPacks = int(status.ExactPacks.Load())
	result.MatchedRows = int(status.MatchedRows.Load())
	result.ColumnCheck = columnRough
	result.Took = time.Since(start)

	e.cfg.Logger.Info("filter executed",
		"packs", result.Packs,
		"column_check", columnRough.String(),
		"skipped_packs", result.SkippedPacks,
		"full_packs", result.FullPacks,
		"exact_packs", result.ExactPacks,
		"matched_rows", result.MatchedRows,
		"took", result.Took,
	)

	return result, nil
}

func (e *PlanExecutor) executePacks(ctx context.Context, status *TaskStatus, result *Result, op rc.Operator, seg segment.Segment) error {

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for packId := range status.PacksTotal {

		if status.Err.Load() {
			break
		}

		g.Go(func() error {

			if status.Err.Load() {
				color.Red("pack %d skipped because of error: %s", packId, status.failure().Error())
				return nil
			}

			if err := gctx.Err(); err != nil {
				status.fail(err)
				return err
			}

			if err := e.runPack(status, result, op, seg, packId); err != nil {
				status.fail(err)
				return err
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("error while executing %s: %w", op.String(), err)
	}

	// cancelled before any worker observed it
	if err := ctx.Err(); err != nil {
		return err
	}

	return nil
}
