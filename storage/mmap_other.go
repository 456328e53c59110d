//go:build windows

package storage

import "os"

func mapFile(f *os.File, size int) ([]byte, error) {
	return nil, ErrMmapUnsupported
}

func unmapFile(data []byte) error {
	return nil
}
