package query

import (
	"fmt"
	"slices"

	"github.com/dot5enko/segment-rc/rc"
	"github.com/dot5enko/segment-rc/schema"
)

type QueryPlanner struct {
}

func NewQueryPlanner() *QueryPlanner {
	return &QueryPlanner{}
}

// Plan resolves every condition against columns and combines them into one
// normalized operator. Conditions on the same column end up adjacent so the
// optimizer can fold them.
func (qp *QueryPlanner) Plan(columns []schema.Attr, queryData Query) (QueryPlan, error) {

	if len(queryData.Filter) == 0 {
		return QueryPlan{}, ErrEmptyFilter
	}

	// check fields before building operators
	for _, filter := range queryData.Filter {
		found := false
		for _, it := range columns {
			if it.Name == filter.Field {
				found = true
				break
			}
		}

		if !found {
			return QueryPlan{}, fmt.Errorf("%w: `%v`", ErrColumnNotFound, filter.Field)
		}
	}

	// group filters by columns
	filtersByColumns := map[string][]FilterCondition{}
	for _, filter := range queryData.Filter {
		filtersByColumns[filter.Field] = append(filtersByColumns[filter.Field], filter)
	}

	filterByColumnsArray := []FilterGroupedRT{}
	for fname, it := range filtersByColumns {

		// all fields must exist, as they were checked above
		columnIdx := slices.IndexFunc(columns, func(col schema.Attr) bool {
			return col.Name == fname
		})

		filterByColumnsArray = append(filterByColumnsArray, FilterGroupedRT{
			FieldName:  fname,
			Column:     columns[columnIdx],
			ColumnIdx:  columnIdx,
			Conditions: it,
		})
	}

	slices.SortFunc(filterByColumnsArray, func(a, b FilterGroupedRT) int {
		return a.ColumnIdx - b.ColumnIdx
	})

	children := []rc.Operator{}
	for _, group := range filterByColumnsArray {
		for _, cond := range group.Conditions {
			op, err := cond.Operator(group.Column)
			if err != nil {
				return QueryPlan{}, err
			}
			children = append(children, op)
		}
	}

	conjunction, err := rc.NewAnd(children...)
	if err != nil {
		return QueryPlan{}, err
	}

	selectors := queryData.Select
	if len(selectors) == 0 {
		selectors = []Selector{{Type: SelectCount}}
	}

	return QueryPlan{
		Columns:               columns,
		FilterGroupedByFields: filterByColumnsArray,
		Filter:                rc.Optimize(conjunction),
		Select:                selectors,
	}, nil
}
