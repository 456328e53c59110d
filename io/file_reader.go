package io

import (
	"errors"
	"fmt"
	"os"
)

var (
	ErrNotOpened = errors.New("file not opened")
)

type FileReader struct {
	path   string
	file   *os.File
	opened bool

	exists bool
}

func NewFileReader(path string) *FileReader {

	_, err := os.Stat(path)

	freader := &FileReader{
		path:   path,
		exists: err == nil,
	}

	return freader
}

func (f *FileReader) Path() string {
	return f.path
}

func (f *FileReader) Exists() bool {
	return f.exists
}

func (f *FileReader) Open(readOnly bool) (topErr error) {

	var perm os.FileMode = 0644

	if readOnly {
		f.file, topErr = os.OpenFile(f.path, os.O_RDONLY, perm)
	} else {
		f.file, topErr = os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	}

	if topErr == nil {
		f.opened = true
		f.exists = true
	}

	return topErr

}

// Raw exposes the opened file, nil before Open.
func (f *FileReader) Raw() *os.File {
	return f.file
}

func (f *FileReader) Size() (int, error) {
	if !f.opened {
		return 0, ErrNotOpened
	}

	info, err := f.file.Stat()
	if err != nil {
		return 0, err
	}

	return int(info.Size()), nil
}

func (f *FileReader) Close() error {
	if !f.opened {
		return nil
	}

	f.opened = false
	return f.file.Close()
}

func (f *FileReader) ReadAt(out []byte, off, length int) (err error) {
	if !f.opened {
		return ErrNotOpened
	}

	if len(out) < length {
		return fmt.Errorf("read buffer of %d bytes is too small for %d", len(out), length)
	}

	var readBytes int
	readBytes, err = f.file.ReadAt(out[:length], int64(off))

	if readBytes != length {
		if err == nil {
			err = errors.New("short read")
		}
		return fmt.Errorf("read bytes mismatch at %d: %d of %d: %w", off, readBytes, length, err)
	}

	return nil
}

func (f *FileReader) WriteAt(in []byte, off int) (err error) {
	if !f.opened {
		return ErrNotOpened
	}

	var writtenBytes int
	writtenBytes, err = f.file.WriteAt(in, int64(off))
	if err != nil {
		return err
	}
	if writtenBytes != len(in) {
		return errors.New("written bytes mismatch")
	}

	return nil
}

func (f *FileReader) Sync() error {
	if !f.opened {
		return ErrNotOpened
	}
	return f.file.Sync()
}
