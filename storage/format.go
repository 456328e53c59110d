package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/dot5enko/segment-rc/bits"
	"github.com/dot5enko/segment-rc/compression"
	"github.com/dot5enko/segment-rc/schema"
)

// Segment file layout, little endian:
//
//	magic "RCSG" | version u16 | header size u32
//	segment uuid | pack rows u32 | row count u64 | compression u8 | column count u16
//	per column: name | type u8 | column stats
//	per column, per pack: pack stats | payload offset u64 | stored size u32 | raw size u32
//	payloads
//
// Stats are row count u64, null count u64, min and max literals. Strings are
// u32 length prefixed.

const (
	FormatVersion uint16 = 1

	prefixSize = 4 + 2 + 4

	// smallest pack entry: counts, two empty strings, offset and sizes
	minPackEntrySize = 8 + 8 + 4 + 4 + 8 + 4 + 4

	// raw size limit for string packs, numeric ones are bounded by their width
	maxStringPackBytes = 1 << 30
)

var (
	magic = [4]byte{'R', 'C', 'S', 'G'}

	order = binary.LittleEndian
)

var (
	ErrBadMagic       = errors.New("not a segment file")
	ErrBadVersion     = errors.New("unsupported segment file version")
	ErrCorruptSegment = errors.New("corrupt segment file")
)

type packEntry struct {
	Stats schema.Stats

	Offset     uint64
	StoredSize uint32
	RawSize    uint32
}

type columnEntry struct {
	Attr  schema.Attr
	Stats schema.Stats
	Packs []packEntry
}

type segmentHeader struct {
	Id          uuid.UUID
	PackRows    int
	RowCount    int
	Compression compression.Type

	Columns []columnEntry
}

func (h *segmentHeader) packCount() int {
	if h.PackRows == 0 {
		return 0
	}
	return (h.RowCount + h.PackRows - 1) / h.PackRows
}

func (h *segmentHeader) packRowCount(packId int) int {
	if packId < 0 || packId >= h.packCount() {
		return 0
	}
	return min(h.PackRows, h.RowCount-packId*h.PackRows)
}

func putLiteral(w *bits.BitWriter, typ schema.FieldType, l schema.Literal) {
	switch {
	case typ.IsInteger():
		w.PutInt64(l.Int)
	case typ.IsFloat():
		w.PutFloat64(l.Float)
	default:
		w.PutString(l.Str)
	}
}

func putStats(w *bits.BitWriter, typ schema.FieldType, s schema.Stats) {
	w.PutUint64(uint64(s.RowCount))
	w.PutUint64(uint64(s.NullCount))
	putLiteral(w, typ, s.Min)
	putLiteral(w, typ, s.Max)
}

// encode writes the header and returns it with the positions of the payload
// offsets, which are patched once the header size is known.
func (h *segmentHeader) encode() (*bits.BitWriter, [][]int) {

	w := bits.NewEncodeBuffer(make([]byte, 0, 4096), order)
	w.EnableGrowing()

	w.Write(magic[:])
	w.PutUint16(FormatVersion)
	w.PutUint32(0) // header size, patched below

	w.Write(h.Id[:])
	w.PutUint32(uint32(h.PackRows))
	w.PutUint64(uint64(h.RowCount))
	w.WriteByte(uint8(h.Compression))
	w.PutUint16(uint16(len(h.Columns)))

	for _, col := range h.Columns {
		w.PutString(col.Attr.Name)
		w.WriteByte(uint8(col.Attr.Type))
		putStats(&w, col.Attr.Type, col.Stats)
	}

	offsetPositions := make([][]int, len(h.Columns))

	for colIdx, col := range h.Columns {
		offsetPositions[colIdx] = make([]int, len(col.Packs))
		for packId, pack := range col.Packs {
			putStats(&w, col.Attr.Type, pack.Stats)
			offsetPositions[colIdx][packId] = w.Position()
			w.PutUint64(pack.Offset)
			w.PutUint32(pack.StoredSize)
			w.PutUint32(pack.RawSize)
		}
	}

	headerSize := w.Position()
	order.PutUint32(w.Bytes()[6:10], uint32(headerSize))

	return &w, offsetPositions
}

// headerSize validates the fixed prefix and returns the size of the whole header.
func headerSize(prefix []byte) (int, error) {

	if len(prefix) < prefixSize || !bytes.Equal(prefix[:4], magic[:]) {
		return 0, ErrBadMagic
	}

	if version := order.Uint16(prefix[4:6]); version != FormatVersion {
		return 0, fmt.Errorf("%w: %d", ErrBadVersion, version)
	}

	size := int(order.Uint32(prefix[6:10]))
	if size < prefixSize {
		return 0, fmt.Errorf("%w: header size %d", ErrCorruptSegment, size)
	}

	return size, nil
}

type headerReader struct {
	r   *bits.BitsReader
	err error
}

func (h *headerReader) u8() uint8 {
	if h.err != nil {
		return 0
	}
	var v uint8
	v, h.err = h.r.ReadU8()
	return v
}

func (h *headerReader) u16() uint16 {
	if h.err != nil {
		return 0
	}
	var v uint16
	v, h.err = h.r.ReadU16()
	return v
}

func (h *headerReader) u32() uint32 {
	if h.err != nil {
		return 0
	}
	var v uint32
	v, h.err = h.r.ReadU32()
	return v
}

func (h *headerReader) u64() uint64 {
	if h.err != nil {
		return 0
	}
	var v uint64
	v, h.err = h.r.ReadU64()
	return v
}

func (h *headerReader) str() string {
	if h.err != nil {
		return ""
	}
	var v string
	v, h.err = h.r.ReadString()
	return v
}

func (h *headerReader) literal(typ schema.FieldType) schema.Literal {
	if h.err != nil {
		return schema.Literal{}
	}

	var l schema.Literal
	switch {
	case typ.IsInteger():
		l.Int, h.err = h.r.ReadI64()
	case typ.IsFloat():
		l.Float, h.err = h.r.ReadF64()
	default:
		l.Str, h.err = h.r.ReadString()
	}
	return l
}

func (h *headerReader) stats(typ schema.FieldType) schema.Stats {
	return schema.Stats{
		RowCount:  int(h.u64()),
		NullCount: int(h.u64()),
		Min:       h.literal(typ),
		Max:       h.literal(typ),
	}
}

// decodeHeader parses the full header, prefix included.
func decodeHeader(data []byte) (*segmentHeader, error) {

	size, err := headerSize(data)
	if err != nil {
		return nil, err
	}
	if len(data) < size {
		return nil, fmt.Errorf("%w: header of %d bytes, got %d", ErrCorruptSegment, size, len(data))
	}

	h := &headerReader{r: bits.NewReader(bytes.NewReader(data[prefixSize:size]), order)}
	result := &segmentHeader{}

	if result.Id, h.err = h.r.ReadUUID(); h.err != nil {
		return nil, fmt.Errorf("%w: segment id: %s", ErrCorruptSegment, h.err.Error())
	}

	result.PackRows = int(h.u32())
	rowCount := h.u64()
	result.Compression = compression.Type(h.u8())
	columnCount := int(h.u16())

	if h.err == nil && rowCount > math.MaxInt64/2 {
		return nil, fmt.Errorf("%w: row count %d", ErrCorruptSegment, rowCount)
	}
	result.RowCount = int(rowCount)

	if h.err == nil && result.PackRows == 0 && result.RowCount > 0 {
		return nil, fmt.Errorf("%w: zero pack rows", ErrCorruptSegment)
	}

	// every pack entry must fit into the header before anything is allocated
	if packCount := result.packCount(); h.err == nil && columnCount > 0 && packCount > (size-prefixSize)/(minPackEntrySize*columnCount) {
		return nil, fmt.Errorf("%w: %d packs of %d columns do not fit a %d bytes header", ErrCorruptSegment, packCount, columnCount, size)
	}

	result.Columns = make([]columnEntry, 0, columnCount)

	for i := 0; i < columnCount && h.err == nil; i++ {
		name := h.str()
		typ := schema.FieldType(h.u8())
		if h.err == nil && !typ.Valid() {
			return nil, fmt.Errorf("%w: column `%s` has unknown type %d", ErrCorruptSegment, name, uint8(typ))
		}

		result.Columns = append(result.Columns, columnEntry{
			Attr:  schema.NewAttr(name, typ),
			Stats: h.stats(typ),
		})
	}

	packCount := result.packCount()

	for colIdx := range result.Columns {
		col := &result.Columns[colIdx]
		col.Packs = make([]packEntry, packCount)

		for packId := 0; packId < packCount && h.err == nil; packId++ {
			col.Packs[packId] = packEntry{
				Stats:      h.stats(col.Attr.Type),
				Offset:     h.u64(),
				StoredSize: h.u32(),
				RawSize:    h.u32(),
			}
		}
	}

	if h.err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorruptSegment, h.err.Error())
	}

	return result, nil
}

// maxRawSize bounds the decoded payload of a pack with rows rows.
func maxRawSize(typ schema.FieldType, rows int) int {
	if typ.IsString() {
		return maxStringPackBytes
	}
	// flags, a null byte per row, values at their stored width
	return 1 + rows + rows*typ.Size()
}
