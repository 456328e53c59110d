package segment

import (
	"errors"
	"fmt"

	"github.com/dot5enko/segment-rc/schema"
)

const DefaultPackRows = 32 * 1024 // 32k rows per pack

var (
	ErrInvalidLayout = errors.New("invalid segment layout")
)

// Column is a whole column handed to NewMemory.
type Column struct {
	Attr   schema.Attr
	Values *schema.PackValues
}

// Memory is a Segment kept entirely in memory. Statistics are computed once
// when it is built.
type Memory struct {
	packRows int
	rowCount int

	columns     []schema.Attr
	columnStats []schema.Stats

	// indexed by column, then by pack
	packs     [][]*schema.PackValues
	packStats [][]schema.Stats
}

func NewMemory(packRows int, columns ...Column) (*Memory, error) {

	if packRows <= 0 {
		return nil, fmt.Errorf("%w: pack rows must be positive, got %d", ErrInvalidLayout, packRows)
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrInvalidLayout)
	}

	rowCount := columns[0].Values.Len()

	m := &Memory{
		packRows: packRows,
		rowCount: rowCount,
	}

	for _, col := range columns {

		if col.Values.Type != col.Attr.Type {
			return nil, fmt.Errorf("%w: column `%s` declared %s, values are %s", ErrInvalidLayout, col.Attr.Name, col.Attr.Type.String(), col.Values.Type.String())
		}

		if err := col.Values.Validate(); err != nil {
			return nil, fmt.Errorf("column `%s`: %w", col.Attr.Name, err)
		}

		// float32 columns hold what a stored segment would decode
		values, err := col.Values.NarrowFloat32()
		if err != nil {
			return nil, fmt.Errorf("column `%s`: %w", col.Attr.Name, err)
		}

		if values.Len() != rowCount {
			return nil, fmt.Errorf("%w: column `%s` has %d rows, expected %d", ErrInvalidLayout, col.Attr.Name, values.Len(), rowCount)
		}

		for _, it := range m.columns {
			if it.Name == col.Attr.Name {
				return nil, fmt.Errorf("%w: duplicate column `%s`", ErrInvalidLayout, col.Attr.Name)
			}
		}

		var columnStats schema.Stats
		packs := []*schema.PackValues{}
		packStats := []schema.Stats{}

		for from := 0; from < rowCount; from += packRows {
			to := min(from+packRows, rowCount)

			pack := values.Slice(from, to)
			stats := schema.ComputeStats(pack)

			columnStats.Morph(col.Attr.Type, stats)

			packs = append(packs, pack)
			packStats = append(packStats, stats)
		}

		m.columns = append(m.columns, col.Attr)
		m.columnStats = append(m.columnStats, columnStats)
		m.packs = append(m.packs, packs)
		m.packStats = append(m.packStats, packStats)
	}

	return m, nil
}

func (m *Memory) Columns() []schema.Attr {
	return m.columns
}

func (m *Memory) RowCount() int {
	return m.rowCount
}

func (m *Memory) PackCount() int {
	return (m.rowCount + m.packRows - 1) / m.packRows
}

func (m *Memory) PackRowCount(packId int) int {
	if packId < 0 || packId >= m.PackCount() {
		return 0
	}
	return min(m.packRows, m.rowCount-packId*m.packRows)
}

func (m *Memory) ColumnStats(attr schema.Attr) (schema.Stats, error) {
	idx, err := FindColumn(m.columns, attr)
	if err != nil {
		return schema.Stats{}, err
	}
	return m.columnStats[idx], nil
}

func (m *Memory) checkPack(packId int) error {
	if packId < 0 || packId >= m.PackCount() {
		return fmt.Errorf("%w: %d of %d", ErrPackOutOfRange, packId, m.PackCount())
	}
	return nil
}

func (m *Memory) PackStats(attr schema.Attr, packId int) (schema.Stats, error) {
	idx, err := FindColumn(m.columns, attr)
	if err != nil {
		return schema.Stats{}, err
	}
	if err := m.checkPack(packId); err != nil {
		return schema.Stats{}, err
	}
	return m.packStats[idx][packId], nil
}

func (m *Memory) PackColumnValues(attr schema.Attr, packId int) (*schema.PackValues, error) {
	idx, err := FindColumn(m.columns, attr)
	if err != nil {
		return nil, err
	}
	if err := m.checkPack(packId); err != nil {
		return nil, err
	}
	return m.packs[idx][packId], nil
}

// Builder collects columns for NewMemory.
type Builder struct {
	packRows int
	columns  []Column
}

func NewBuilder(packRows int) *Builder {
	return &Builder{packRows: packRows}
}

func (b *Builder) AddInts(name string, typ schema.FieldType, values []int64, nulls []bool) *Builder {
	b.columns = append(b.columns, Column{
		Attr:   schema.NewAttr(name, typ),
		Values: &schema.PackValues{Type: typ, Ints: values, Nulls: nulls},
	})
	return b
}

func (b *Builder) AddFloats(name string, typ schema.FieldType, values []float64, nulls []bool) *Builder {
	b.columns = append(b.columns, Column{
		Attr:   schema.NewAttr(name, typ),
		Values: &schema.PackValues{Type: typ, Floats: values, Nulls: nulls},
	})
	return b
}

func (b *Builder) AddStrings(name string, values []string, nulls []bool) *Builder {
	b.columns = append(b.columns, Column{
		Attr:   schema.NewAttr(name, schema.StringFieldType),
		Values: &schema.PackValues{Type: schema.StringFieldType, Strs: values, Nulls: nulls},
	})
	return b
}

func (b *Builder) Build() (*Memory, error) {
	return NewMemory(b.packRows, b.columns...)
}
