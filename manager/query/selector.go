package query

import (
	"encoding/json"
	"fmt"
)

type SelectorType byte

const (
	// SelectCount returns the number of matching rows.
	SelectCount SelectorType = iota
	// SelectRowIds returns the segment wide numbers of matching rows.
	SelectRowIds
)

func (s SelectorType) String() string {
	switch s {
	case SelectCount:
		return "count"
	case SelectRowIds:
		return "row_ids"
	default:
		return fmt.Sprintf("selector(%d)", byte(s))
	}
}

func (s SelectorType) MarshalJSON() ([]byte, error) {
	if s > SelectRowIds {
		return nil, fmt.Errorf("unknown selector %d", byte(s))
	}
	return json.Marshal(s.String())
}

func (s *SelectorType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("selector must be a string: %w", err)
	}

	for it := SelectCount; it <= SelectRowIds; it++ {
		if it.String() == name {
			*s = it
			return nil
		}
	}

	return fmt.Errorf("unknown selector '%s'", name)
}

type Selector struct {
	Type SelectorType `json:"type"`

	Alias string `json:"alias,omitempty"`
}

// Name is the alias, or the selector type when none was given.
func (s Selector) Name() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Type.String()
}
