package io

import (
	"fmt"
	"log"
	"os"
)

// DumpFile writes chunks to path through a temporary file renamed into
// place, so readers never observe a partially written file.
func DumpFile(path string, chunks ...[]byte) error {

	tmpPath := path + ".tmp"

	fw := NewFileReader(tmpPath)
	if err := fw.Open(false); err != nil {
		return err
	}

	offset := 0
	for _, chunk := range chunks {
		if err := fw.WriteAt(chunk, offset); err != nil {
			fw.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("unable to write %s: %w", tmpPath, err)
		}
		offset += len(chunk)
	}

	if err := fw.Sync(); err != nil {
		fw.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := fw.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}

	log.Printf("written %d bytes @ %s", offset, path)

	return nil
}
