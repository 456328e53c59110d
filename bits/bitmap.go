package bits

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

var (
	ErrBitMapConsumed = errors.New("bitmap was consumed by a combine and must not be used")
)

// BitMap is the set of matching row positions within one pack
// (or of candidate pack ids, for segment wide checks).
//
// Ownership: AndFree and OrFree take both operands and return the result,
// which may reuse the storage of one of them. Both operands are consumed,
// any later access to them panics with ErrBitMapConsumed. Callers that need
// to keep an operand Clone it first.
type BitMap struct {
	rb       *roaring.Bitmap
	consumed bool
}

// NONE is the shared empty set. It is never written to and never consumed.
var NONE = &BitMap{}

func New() *BitMap {
	return &BitMap{rb: roaring.New()}
}

// NewFull returns a bitmap with rows [0, rows) set.
func NewFull(rows int) *BitMap {
	if rows <= 0 {
		return NONE
	}
	rb := roaring.New()
	rb.AddRange(0, uint64(rows))
	return &BitMap{rb: rb}
}

// FromSorted builds a bitmap from ascending row indices.
func FromSorted(indices []uint32) *BitMap {
	if len(indices) == 0 {
		return NONE
	}
	rb := roaring.New()
	rb.AddMany(indices)
	return &BitMap{rb: rb}
}

func (b *BitMap) live() *roaring.Bitmap {
	if b.consumed {
		panic(ErrBitMapConsumed)
	}
	return b.rb
}

func (b *BitMap) IsNone() bool {
	if b == NONE {
		return true
	}
	rb := b.live()
	return rb == nil || rb.IsEmpty()
}

func (b *BitMap) Any() bool {
	return !b.IsNone()
}

func (b *BitMap) Count() int {
	if b == NONE {
		return 0
	}
	rb := b.live()
	if rb == nil {
		return 0
	}
	return int(rb.GetCardinality())
}

func (b *BitMap) Get(row int) bool {
	if b == NONE {
		return false
	}
	rb := b.live()
	return rb != nil && rb.Contains(uint32(row))
}

func (b *BitMap) Set(row int) {
	if b == NONE {
		panic("bits: write to the shared NONE bitmap")
	}
	rb := b.live()
	if rb == nil {
		rb = roaring.New()
		b.rb = rb
	}
	rb.Add(uint32(row))
}

func (b *BitMap) Clear(row int) {
	if b == NONE {
		return
	}
	if rb := b.live(); rb != nil {
		rb.Remove(uint32(row))
	}
}

// ClearMarked removes every row whose flag is set, used to drop null rows.
func (b *BitMap) ClearMarked(flags []bool) {
	if b == NONE {
		return
	}
	rb := b.live()
	if rb == nil {
		return
	}
	for row, marked := range flags {
		if marked {
			rb.Remove(uint32(row))
		}
	}
}

// ToIndices returns the set rows in ascending order.
func (b *BitMap) ToIndices() []uint32 {
	if b == NONE {
		return nil
	}
	rb := b.live()
	if rb == nil {
		return nil
	}
	return rb.ToArray()
}

func (b *BitMap) Clone() *BitMap {
	if b.IsNone() {
		return NONE
	}
	return &BitMap{rb: b.live().Clone()}
}

func (b *BitMap) Equals(other *BitMap) bool {
	if b.IsNone() || other.IsNone() {
		return b.IsNone() && other.IsNone()
	}
	return b.live().Equals(other.live())
}

// Free releases b. The shared NONE is left untouched.
func (b *BitMap) Free() {
	if b == NONE {
		return
	}
	b.rb = nil
	b.consumed = true
}

func (b *BitMap) String() string {
	if b.consumed {
		return "BitMap(consumed)"
	}
	if b.IsNone() {
		return "BitMap(NONE)"
	}
	return fmt.Sprintf("BitMap(%d)%v", b.Count(), b.rb.String())
}

// AndFree intersects a and b, consuming both.
func AndFree(a, b *BitMap) *BitMap {
	if a == b {
		a.live()
		return a
	}

	if a.IsNone() || b.IsNone() {
		a.Free()
		b.Free()
		return NONE
	}

	rb := a.live()
	rb.And(b.live())

	b.Free()
	a.Free()

	if rb.IsEmpty() {
		return NONE
	}
	return &BitMap{rb: rb}
}

// OrFree unions a and b, consuming both.
func OrFree(a, b *BitMap) *BitMap {
	if a == b {
		a.live()
		return a
	}

	if a.IsNone() {
		a.Free()
		if b.IsNone() {
			b.Free()
			return NONE
		}
		return b
	}
	if b.IsNone() {
		b.Free()
		return a
	}

	rb := a.live()
	rb.Or(b.live())

	b.Free()
	a.Free()

	return &BitMap{rb: rb}
}
