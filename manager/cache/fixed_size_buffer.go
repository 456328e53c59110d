package cache

import "sync/atomic"

// FixedSizeBufferPool hands out equally sized read buffers carved from one
// arena. Readers never wait for a buffer: when all of them are taken TryGet
// fails and the caller allocates.
type FixedSizeBufferPool struct {
	buffers [][]byte
	free    chan uint16

	arena   []byte
	bufSize int

	borrowed atomic.Int64
	busy     atomic.Int64
}

func NewFixedSizeBufferPool(n int, bufSize int) *FixedSizeBufferPool {
	arena := make([]byte, n*bufSize)

	buffers := make([][]byte, n)
	for i := 0; i < n; i++ {
		start := i * bufSize
		end := start + bufSize
		buffers[i] = arena[start:end:end] // full slice expression
	}

	free := make(chan uint16, n)
	for i := 0; i < n; i++ {
		free <- uint16(i)
	}

	return &FixedSizeBufferPool{
		arena:   arena,
		buffers: buffers,
		free:    free,
		bufSize: bufSize,
	}
}

func (p *FixedSizeBufferPool) BufSize() int {
	return p.bufSize
}

// TryGet borrows a buffer sliced to size bytes. It fails when size does not
// fit a buffer or every buffer is in use.
func (p *FixedSizeBufferPool) TryGet(size int) ([]byte, uint16, bool) {
	if size > p.bufSize {
		return nil, 0, false
	}
	select {
	case id := <-p.free:
		p.borrowed.Add(1)
		return p.buffers[id][:size], id, true
	default:
		p.busy.Add(1)
		return nil, 0, false
	}
}

func (p *FixedSizeBufferPool) Return(id uint16) {
	p.free <- id
}

func (p *FixedSizeBufferPool) Stats() BufferStats {
	return BufferStats{
		Buffers:  len(p.buffers),
		Free:     len(p.free),
		Borrowed: p.borrowed.Load(),
		Busy:     p.busy.Load(),
	}
}
