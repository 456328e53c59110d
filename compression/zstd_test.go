package compression

import (
	"bytes"
	"errors"
	"testing"
)

func TestZstdRoundTrip(t *testing.T) {

	src := bytes.Repeat([]byte("pack payload 0123456789 "), 500)

	var compressed bytes.Buffer
	if err := Compress(Zstd, src, &compressed); err != nil {
		t.Fatalf("compress: %s", err.Error())
	}

	if compressed.Len() >= len(src) {
		t.Errorf("repetitive input did not shrink: %d >= %d", compressed.Len(), len(src))
	}

	out := make([]byte, len(src))
	if err := Decompress(Zstd, compressed.Bytes(), out); err != nil {
		t.Fatalf("decompress: %s", err.Error())
	}

	if !bytes.Equal(src, out) {
		t.Errorf("round trip mismatch")
	}

	if err := Decompress(Zstd, compressed.Bytes(), make([]byte, len(src)+1)); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("expected size mismatch, got %v", err)
	}

	if err := Decompress(Zstd, []byte("garbage"), out); err == nil {
		t.Errorf("expected error for a bad frame")
	}
}

func TestTypeNames(t *testing.T) {

	for typ := None; typ <= Zstd; typ++ {
		parsed, err := ParseType(typ.String())
		if err != nil || parsed != typ {
			t.Errorf("%s parsed as %s: %v", typ.String(), parsed.String(), err)
		}
	}

	if _, err := ParseType("snappy"); err == nil {
		t.Errorf("expected error for unknown compression")
	}

	if err := Compress(Type(9), nil, &bytes.Buffer{}); err == nil {
		t.Errorf("expected error for unknown compression")
	}
}

func BenchmarkZstdDecompress(b *testing.B) {

	src := bytes.Repeat([]byte{1, 2, 3, 4, 5, 6, 7, 8, 0, 0, 0, 0}, 32*1024)

	var compressed bytes.Buffer
	if err := CompressZstd(src, &compressed); err != nil {
		b.Fatal(err)
	}

	out := make([]byte, len(src))

	for b.Loop() {
		if _, err := DecompressZstd(compressed.Bytes(), out); err != nil {
			b.Fatal(err)
		}
	}
}
