package storage

import (
	"errors"
	"fmt"

	segio "github.com/dot5enko/segment-rc/io"
	"github.com/dot5enko/segment-rc/manager/cache"
)

var (
	ErrMmapUnsupported = errors.New("memory mapping is not supported on this platform")
)

// source gives access to byte ranges of an opened segment file. The returned
// slice is only valid until release is called.
type source interface {
	view(off, length int) (data []byte, release func(), err error)
	size() int
	Close() error
}

func noRelease() {}

type mmapSource struct {
	file *segio.FileReader
	data []byte
}

func openMmapSource(path string) (*mmapSource, error) {

	fr := segio.NewFileReader(path)
	if err := fr.Open(true); err != nil {
		return nil, err
	}

	size, err := fr.Size()
	if err != nil {
		fr.Close()
		return nil, err
	}

	if size < prefixSize {
		fr.Close()
		return nil, ErrBadMagic
	}

	data, err := mapFile(fr.Raw(), size)
	if err != nil {
		fr.Close()
		return nil, fmt.Errorf("unable to map %s: %w", path, err)
	}

	return &mmapSource{file: fr, data: data}, nil
}

func (s *mmapSource) view(off, length int) ([]byte, func(), error) {
	if off < 0 || length < 0 || off+length > len(s.data) {
		return nil, nil, fmt.Errorf("%w: range %d+%d beyond %d bytes", ErrCorruptSegment, off, length, len(s.data))
	}
	return s.data[off : off+length : off+length], noRelease, nil
}

func (s *mmapSource) size() int {
	return len(s.data)
}

func (s *mmapSource) Close() error {
	unmapErr := unmapFile(s.data)
	s.data = nil
	closeErr := s.file.Close()
	return errors.Join(unmapErr, closeErr)
}

// fileSource reads ranges with pread, borrowing buffers from a shared pool
// when the range fits and one is free.
type fileSource struct {
	file     *segio.FileReader
	fileSize int
	buffers  *cache.FixedSizeBufferPool
}

func openFileSource(path string, buffers *cache.FixedSizeBufferPool) (*fileSource, error) {

	fr := segio.NewFileReader(path)
	if err := fr.Open(true); err != nil {
		return nil, err
	}

	size, err := fr.Size()
	if err != nil {
		fr.Close()
		return nil, err
	}

	return &fileSource{file: fr, fileSize: size, buffers: buffers}, nil
}

func (s *fileSource) view(off, length int) ([]byte, func(), error) {

	if off < 0 || length < 0 || off+length > s.fileSize {
		return nil, nil, fmt.Errorf("%w: range %d+%d beyond %d bytes", ErrCorruptSegment, off, length, s.fileSize)
	}

	if s.buffers != nil {
		if buf, id, ok := s.buffers.TryGet(length); ok {
			release := func() { s.buffers.Return(id) }

			if err := s.file.ReadAt(buf, off, length); err != nil {
				release()
				return nil, nil, err
			}
			return buf, release, nil
		}
	}

	buf := make([]byte, length)
	if err := s.file.ReadAt(buf, off, length); err != nil {
		return nil, nil, err
	}
	return buf, noRelease, nil
}

func (s *fileSource) size() int {
	return s.fileSize
}

func (s *fileSource) Close() error {
	return s.file.Close()
}
