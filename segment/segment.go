package segment

import (
	"errors"
	"fmt"

	"github.com/dot5enko/segment-rc/schema"
)

var (
	ErrColumnNotFound     = errors.New("column not found in segment")
	ErrColumnTypeMismatch = errors.New("column type differs from the requested attribute")
	ErrPackOutOfRange     = errors.New("pack id out of range")
)

// InfoSegment exposes column level statistics only.
type InfoSegment interface {
	ColumnStats(attr schema.Attr) (schema.Stats, error)
}

// Segment is a data bearing segment split into packs of rows.
type Segment interface {
	InfoSegment

	PackCount() int
	PackRowCount(packId int) int

	PackStats(attr schema.Attr, packId int) (schema.Stats, error)
	PackColumnValues(attr schema.Attr, packId int) (*schema.PackValues, error)
}

// Columnar is a segment able to describe its own columns.
type Columnar interface {
	Segment

	Columns() []schema.Attr
	RowCount() int
}

type infoOnly struct {
	info InfoSegment
}

func (s infoOnly) ColumnStats(attr schema.Attr) (schema.Stats, error) {
	return s.info.ColumnStats(attr)
}

// InfoOnly hides everything but the column statistics of s.
func InfoOnly(s InfoSegment) InfoSegment {
	return infoOnly{info: s}
}

// FindColumn resolves attr against columns, checking the declared type.
func FindColumn(columns []schema.Attr, attr schema.Attr) (int, error) {
	for idx, it := range columns {
		if it.Name != attr.Name {
			continue
		}
		if it.Type != attr.Type {
			return -1, fmt.Errorf("%w: `%s` is %s, requested %s", ErrColumnTypeMismatch, attr.Name, it.Type.String(), attr.Type.String())
		}
		return idx, nil
	}
	return -1, fmt.Errorf("%w: `%s`", ErrColumnNotFound, attr.Name)
}
