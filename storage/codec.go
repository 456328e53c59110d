package storage

import (
	"fmt"
	"math"

	"github.com/dot5enko/segment-rc/bits"
	"github.com/dot5enko/segment-rc/schema"
)

const packHasNulls = 1 << 0

// encodePack serializes one pack: a flags byte, a null flag per row when the
// pack has nulls, then the values. Fixed size types are stored at their
// declared width, strings are length prefixed.
func encodePack(values *schema.PackValues) []byte {

	rows := values.Len()
	typ := values.Type

	w := bits.NewEncodeBuffer(make([]byte, 0, 1+rows*max(typ.Size(), 1)*2), order)
	w.EnableGrowing()

	var flags uint8
	if values.Nulls != nil {
		flags |= packHasNulls
	}
	w.WriteByte(flags)

	if values.Nulls != nil {
		for _, isNull := range values.Nulls {
			if isNull {
				w.WriteByte(1)
			} else {
				w.WriteByte(0)
			}
		}
	}

	switch {
	case typ.IsInteger():
		for _, v := range values.Ints {
			putInt(&w, typ.Size(), v)
		}
	case typ == schema.Float32FieldType:
		for _, v := range values.Floats {
			w.PutUint32(math.Float32bits(float32(v)))
		}
	case typ == schema.Float64FieldType:
		for _, v := range values.Floats {
			w.PutFloat64(v)
		}
	default:
		for _, v := range values.Strs {
			w.PutString(v)
		}
	}

	return w.Bytes()
}

func putInt(w *bits.BitWriter, size int, v int64) {
	switch size {
	case 1:
		w.WriteByte(uint8(v))
	case 2:
		w.PutUint16(uint16(v))
	case 4:
		w.PutUint32(uint32(v))
	default:
		w.PutInt64(v)
	}
}

func readInt(typ schema.FieldType, b []byte) int64 {
	switch typ {
	case schema.Int8FieldType:
		return int64(int8(b[0]))
	case schema.Uint8FieldType:
		return int64(b[0])
	case schema.Int16FieldType:
		return int64(int16(order.Uint16(b)))
	case schema.Uint16FieldType:
		return int64(order.Uint16(b))
	case schema.Int32FieldType:
		return int64(int32(order.Uint32(b)))
	case schema.Uint32FieldType:
		return int64(order.Uint32(b))
	default:
		return int64(order.Uint64(b))
	}
}

// decodePack is the inverse of encodePack for a pack of rows values.
func decodePack(typ schema.FieldType, data []byte, rows int) (*schema.PackValues, error) {

	if len(data) < 1 {
		return nil, fmt.Errorf("%w: empty pack payload", ErrCorruptSegment)
	}

	result := &schema.PackValues{Type: typ}

	flags := data[0]
	data = data[1:]

	if flags&packHasNulls != 0 {
		if len(data) < rows {
			return nil, fmt.Errorf("%w: %d null flags for %d rows", ErrCorruptSegment, len(data), rows)
		}
		result.Nulls = make([]bool, rows)
		for i := range rows {
			result.Nulls[i] = data[i] != 0
		}
		data = data[rows:]
	}

	switch {
	case typ.IsInteger():
		size := typ.Size()
		if len(data) != rows*size {
			return nil, fmt.Errorf("%w: %d bytes for %d %s values", ErrCorruptSegment, len(data), rows, typ.String())
		}
		result.Ints = make([]int64, rows)
		for i := range rows {
			result.Ints[i] = readInt(typ, data[i*size:])
		}
	case typ == schema.Float32FieldType:
		if len(data) != rows*4 {
			return nil, fmt.Errorf("%w: %d bytes for %d Float32 values", ErrCorruptSegment, len(data), rows)
		}
		result.Floats = make([]float64, rows)
		for i := range rows {
			result.Floats[i] = float64(math.Float32frombits(order.Uint32(data[i*4:])))
		}
	case typ == schema.Float64FieldType:
		if len(data) != rows*8 {
			return nil, fmt.Errorf("%w: %d bytes for %d Float64 values", ErrCorruptSegment, len(data), rows)
		}
		result.Floats = make([]float64, rows)
		for i := range rows {
			result.Floats[i] = math.Float64frombits(order.Uint64(data[i*8:]))
		}
	default:
		result.Strs = make([]string, rows)
		for i := range rows {
			if len(data) < 4 {
				return nil, fmt.Errorf("%w: truncated string at row %d", ErrCorruptSegment, i)
			}
			size := int(order.Uint32(data))
			data = data[4:]
			if len(data) < size {
				return nil, fmt.Errorf("%w: truncated string at row %d", ErrCorruptSegment, i)
			}
			result.Strs[i] = string(data[:size])
			data = data[size:]
		}
		if len(data) != 0 {
			return nil, fmt.Errorf("%w: %d trailing bytes after strings", ErrCorruptSegment, len(data))
		}
	}

	return result, nil
}
