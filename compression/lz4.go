package compression

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

type Type uint8

const (
	None Type = iota
	Lz4
	Zstd
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Lz4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(t))
	}
}

func ParseType(name string) (Type, error) {
	for t := None; t <= Zstd; t++ {
		if t.String() == name {
			return t, nil
		}
	}
	return None, fmt.Errorf("unsupported compression type: %s", name)
}

var (
	ErrSizeMismatch = errors.New("decompressed size mismatch")
)

func CompressLz4(src []byte, output *bytes.Buffer) error {
	zw := lz4.NewWriter(output)

	_, writeErr := zw.Write(src)
	if writeErr != nil {
		return writeErr
	}

	flushErr := zw.Flush()

	if flushErr != nil {
		return flushErr
	}

	return zw.Close()
}

// DecompressLz4 inflates a frame written by CompressLz4 into out, which must
// have exactly the uncompressed size.
func DecompressLz4(src []byte, out []byte) (int, error) {
	zr := lz4.NewReader(bytes.NewReader(src))

	n, err := io.ReadFull(zr, out)
	if err != nil {
		return n, fmt.Errorf("lz4 read after %d bytes: %w", n, err)
	}

	// the frame must end exactly here
	var tail [1]byte
	if extra, _ := zr.Read(tail[:]); extra != 0 {
		return n, fmt.Errorf("%w: more than %d bytes in frame", ErrSizeMismatch, len(out))
	}

	return n, nil
}

// Compress encodes src with typ, appending to output.
func Compress(typ Type, src []byte, output *bytes.Buffer) error {
	switch typ {
	case None:
		_, err := output.Write(src)
		return err
	case Lz4:
		return CompressLz4(src, output)
	case Zstd:
		return CompressZstd(src, output)
	default:
		return fmt.Errorf("unsupported compression type: %d", typ)
	}
}

// Decompress decodes src into out, sized to the uncompressed length.
func Decompress(typ Type, src []byte, out []byte) error {
	switch typ {
	case None:
		if len(src) != len(out) {
			return fmt.Errorf("%w: stored %d bytes, expected %d", ErrSizeMismatch, len(src), len(out))
		}
		copy(out, src)
		return nil
	case Lz4:
		_, err := DecompressLz4(src, out)
		return err
	case Zstd:
		_, err := DecompressZstd(src, out)
		return err
	default:
		return fmt.Errorf("unsupported compression type: %d", typ)
	}
}
