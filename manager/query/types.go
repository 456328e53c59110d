package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dot5enko/segment-rc/rc"
	"github.com/dot5enko/segment-rc/schema"
)

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrEmptyFilter    = errors.New("query has no filter conditions")
)

type (
	Query struct {
		Filter []FilterCondition `json:"filter"`
		Select []Selector        `json:"select,omitempty"`
	}

	QueryPlan struct {
		Columns []schema.Attr

		// conditions in column order, as they were combined into Filter
		FilterGroupedByFields []FilterGroupedRT

		// normalized conjunction of every condition
		Filter rc.Operator

		Select []Selector
	}
)

// ParseQuery decodes a JSON query, numbers are kept exact until they are
// checked against the column type.
func ParseQuery(data []byte) (Query, error) {

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()

	var result Query
	if err := dec.Decode(&result); err != nil {
		return Query{}, fmt.Errorf("unable to parse query: %w", err)
	}

	return result, nil
}
