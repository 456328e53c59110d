package bits

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

type BitWriter struct {
	pos   int
	data  []byte
	size  int
	order binary.ByteOrder

	growingEnabled bool
}

func NewEncodeBuffer(buf []byte, order binary.ByteOrder) BitWriter {
	return BitWriter{
		data:  buf,
		size:  len(buf),
		order: order,
	}
}

func (w *BitWriter) EnableGrowing() {
	w.growingEnabled = true
}

func (w *BitWriter) Reset() {
	w.pos = 0
}

func (w BitWriter) Position() int {
	return w.pos
}

func (w *BitWriter) grow(atLeast int) {

	newSize := w.size * 2
	if w.pos+atLeast > newSize {
		newSize = w.pos + atLeast
	}

	newBuf := make([]byte, newSize)

	copy(newBuf, w.data[:w.pos])
	w.data = newBuf
	w.size = newSize
}

func (w *BitWriter) tryGrow(n int) {
	if (w.pos + n) > w.size {
		if w.growingEnabled {
			w.grow(n)
		} else {
			panic(fmt.Sprintf("bit writer growing is disabled on pos : %d, try grow %d, from size : %d", w.pos, n, w.size))
		}
	}
}

func (w *BitWriter) Write(p []byte) (n int, err error) {

	oldl := len(p)
	w.tryGrow(oldl)

	n = copy(w.data[w.pos:], p)

	if oldl != n {
		return 0, errors.New("not enough space")
	}

	w.pos += n

	return
}

// PutAt overwrites a previously written u64, used to patch offsets.
func (w *BitWriter) PutAt(pos int, v uint64) {
	w.order.PutUint64(w.data[pos:], v)
}

func (w *BitWriter) Bytes() []byte {
	return w.data[:w.pos]
}

func (w *BitWriter) PutUint64(v uint64) {
	w.tryGrow(8)
	w.order.PutUint64(w.data[w.pos:], v)
	w.pos += 8
}

func (w *BitWriter) PutInt64(v int64) {
	w.PutUint64(uint64(v))
}

func (w *BitWriter) PutUint32(v uint32) {
	w.tryGrow(4)
	w.order.PutUint32(w.data[w.pos:], v)
	w.pos += 4
}

func (w *BitWriter) PutUint16(v uint16) {
	w.tryGrow(2)
	w.order.PutUint16(w.data[w.pos:], v)
	w.pos += 2
}

func (w *BitWriter) WriteByte(u uint8) error {
	w.tryGrow(1)
	w.data[w.pos] = u
	w.pos++
	return nil
}

func (w *BitWriter) PutFloat64(f float64) {
	w.PutUint64(math.Float64bits(f))
}

// PutString writes a u32 length prefixed string.
func (w *BitWriter) PutString(s string) {
	w.PutUint32(uint32(len(s)))
	w.tryGrow(len(s))
	w.pos += copy(w.data[w.pos:], s)
}
