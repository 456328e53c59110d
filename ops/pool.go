package ops

import "sync"

// IndexBuffer is a reusable kernel output buffer.
type IndexBuffer struct {
	Indices []uint32
}

var indexBuffers = sync.Pool{
	New: func() any {
		return &IndexBuffer{}
	},
}

// AcquireIndices returns a buffer able to hold n indices.
// It must be handed back with ReleaseIndices once its contents were consumed.
func AcquireIndices(n int) *IndexBuffer {
	buf := indexBuffers.Get().(*IndexBuffer)
	if cap(buf.Indices) < n {
		buf.Indices = make([]uint32, n)
	}
	buf.Indices = buf.Indices[:n]
	return buf
}

func ReleaseIndices(buf *IndexBuffer) {
	indexBuffers.Put(buf)
}
