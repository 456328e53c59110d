package query

import "github.com/dot5enko/segment-rc/schema"

type FilterGroupedRT struct {
	FieldName string

	Column    schema.Attr
	ColumnIdx int

	Conditions []FilterCondition
}
