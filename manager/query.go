package manager

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dot5enko/segment-rc/manager/executor"
	"github.com/dot5enko/segment-rc/manager/query"
	"github.com/dot5enko/segment-rc/rc"
)

// FilterOperator normalizes op and evaluates it over one segment. The caller
// frees the result.
func (m *Manager) FilterOperator(ctx context.Context, id uuid.UUID, op rc.Operator) (*executor.Result, error) {

	seg, err := m.Segment(id)
	if err != nil {
		return nil, err
	}

	return m.Executor.Execute(ctx, rc.Optimize(op), seg)
}

// Filter evaluates a JSON encoded operator tree over one segment.
func (m *Manager) Filter(ctx context.Context, id uuid.UUID, filterJSON []byte) (*executor.Result, error) {

	op, err := rc.Unmarshal(filterJSON)
	if err != nil {
		return nil, fmt.Errorf("unable to decode filter: %w", err)
	}

	return m.FilterOperator(ctx, id, op)
}

// Query runs a flat condition list over one segment, the result holds one
// entry per selector.
func (m *Manager) Query(ctx context.Context, id uuid.UUID, queryData query.Query) (map[string]any, error) {

	seg, err := m.Segment(id)
	if err != nil {
		return nil, err
	}

	plan, planErr := m.Planner.Plan(seg.Columns(), queryData)
	if planErr != nil {
		return nil, fmt.Errorf("unable to construct query execution plan : %w", planErr)
	}

	res, err := m.Executor.Execute(ctx, plan.Filter, seg)
	if err != nil {
		return nil, fmt.Errorf("error while executing query: %w", err)
	}
	defer res.Free()

	result := map[string]any{}

	for _, sel := range plan.Select {
		switch sel.Type {
		case query.SelectCount:
			result[sel.Name()] = res.MatchedRows
		case query.SelectRowIds:
			result[sel.Name()] = res.RowIds()
		default:
			return nil, fmt.Errorf("unsupported selector %s", sel.Type.String())
		}
	}

	return result, nil
}
