package compression

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

func CompressZstd(src []byte, output *bytes.Buffer) error {

	enc, err := getZstdEncoder()
	if err != nil {
		return err
	}
	defer zstdEncoderPool.Put(enc)

	output.Write(enc.EncodeAll(src, nil))

	return nil
}

// DecompressZstd inflates src into out, which must have exactly the
// uncompressed size.
func DecompressZstd(src []byte, out []byte) (int, error) {

	dec, err := getZstdDecoder()
	if err != nil {
		return 0, err
	}
	defer zstdDecoderPool.Put(dec)

	result, err := dec.DecodeAll(src, out[:0])
	if err != nil {
		return 0, fmt.Errorf("zstd: %w", err)
	}

	if len(result) != len(out) {
		return len(result), fmt.Errorf("%w: %d bytes in frame, expected %d", ErrSizeMismatch, len(result), len(out))
	}

	// grew past out into a new array
	if len(out) > 0 && &result[0] != &out[0] {
		copy(out, result)
	}

	return len(result), nil
}
