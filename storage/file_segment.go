package storage

import (
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dot5enko/segment-rc/compression"
	"github.com/dot5enko/segment-rc/manager/cache"
	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

type Options struct {
	// Cache of decoded packs, shared between segments. Nil disables caching.
	Cache *cache.PackCache

	// Buffers used for reading stored packs when the file is not mapped.
	Buffers *cache.FixedSizeBufferPool

	// UseMmap maps the whole file instead of reading packs on demand. Falls
	// back to reads where mapping is unsupported.
	UseMmap bool
}

// FileSegment is a segment backed by a file written with WriteSegment. Column
// and pack statistics are kept in memory, pack values are decoded on demand.
type FileSegment struct {
	path   string
	header *segmentHeader
	src    source

	columns []schema.Attr

	cache     *cache.PackCache
	loadGroup singleflight.Group

	packLoads atomic.Int64
}

func OpenSegment(path string, opts Options) (*FileSegment, error) {

	var src source
	var err error

	if opts.UseMmap {
		src, err = openMmapSource(path)
		if errors.Is(err, ErrMmapUnsupported) {
			src, err = openFileSource(path, opts.Buffers)
		}
	} else {
		src, err = openFileSource(path, opts.Buffers)
	}

	if err != nil {
		return nil, fmt.Errorf("unable to open segment %s: %w", path, err)
	}

	header, err := readHeader(src)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("unable to read segment %s: %w", path, err)
	}

	s := &FileSegment{
		path:   path,
		header: header,
		src:    src,
		cache:  opts.Cache,
	}

	for _, col := range header.Columns {
		s.columns = append(s.columns, col.Attr)
	}

	return s, nil
}

func readHeader(src source) (*segmentHeader, error) {

	prefix, release, err := src.view(0, prefixSize)
	if err != nil {
		return nil, ErrBadMagic
	}
	size, err := headerSize(prefix)
	release()
	if err != nil {
		return nil, err
	}

	data, release, err := src.view(0, size)
	if err != nil {
		return nil, err
	}
	defer release()

	header, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}

	for _, col := range header.Columns {
		for packId, pack := range col.Packs {
			if pack.Offset < uint64(size) || pack.Offset+uint64(pack.StoredSize) > uint64(src.size()) {
				return nil, fmt.Errorf("%w: pack %d of `%s` at %d+%d outside of file", ErrCorruptSegment, packId, col.Attr.Name, pack.Offset, pack.StoredSize)
			}
			if int(pack.RawSize) > maxRawSize(col.Attr.Type, header.packRowCount(packId)) {
				return nil, fmt.Errorf("%w: pack %d of `%s` claims %d raw bytes", ErrCorruptSegment, packId, col.Attr.Name, pack.RawSize)
			}
		}
	}

	return header, nil
}

func (s *FileSegment) Id() uuid.UUID {
	return s.header.Id
}

func (s *FileSegment) Path() string {
	return s.path
}

func (s *FileSegment) Compression() compression.Type {
	return s.header.Compression
}

func (s *FileSegment) Columns() []schema.Attr {
	return s.columns
}

func (s *FileSegment) RowCount() int {
	return s.header.RowCount
}

func (s *FileSegment) PackCount() int {
	return s.header.packCount()
}

func (s *FileSegment) PackRowCount(packId int) int {
	return s.header.packRowCount(packId)
}

// PackLoads counts packs decoded from the file, cache hits excluded.
func (s *FileSegment) PackLoads() int64 {
	return s.packLoads.Load()
}

func (s *FileSegment) ColumnStats(attr schema.Attr) (schema.Stats, error) {
	idx, err := segment.FindColumn(s.columns, attr)
	if err != nil {
		return schema.Stats{}, err
	}
	return s.header.Columns[idx].Stats, nil
}

func (s *FileSegment) pack(attr schema.Attr, packId int) (int, *packEntry, error) {
	idx, err := segment.FindColumn(s.columns, attr)
	if err != nil {
		return -1, nil, err
	}
	if packId < 0 || packId >= s.PackCount() {
		return -1, nil, fmt.Errorf("%w: %d of %d", segment.ErrPackOutOfRange, packId, s.PackCount())
	}
	return idx, &s.header.Columns[idx].Packs[packId], nil
}

func (s *FileSegment) PackStats(attr schema.Attr, packId int) (schema.Stats, error) {
	_, entry, err := s.pack(attr, packId)
	if err != nil {
		return schema.Stats{}, err
	}
	return entry.Stats, nil
}

// PackColumnValues decodes a pack, concurrent loads of the same pack are
// coalesced. The result may be shared through the cache and must not be modified.
func (s *FileSegment) PackColumnValues(attr schema.Attr, packId int) (*schema.PackValues, error) {

	colIdx, entry, err := s.pack(attr, packId)
	if err != nil {
		return nil, err
	}

	key := cache.PackKey{Segment: s.header.Id, Column: colIdx, Pack: packId}

	if s.cache != nil {
		if values, ok := s.cache.Get(key); ok {
			return values, nil
		}
	}

	v, err, _ := s.loadGroup.Do(fmt.Sprintf("%d:%d", colIdx, packId), func() (any, error) {

		values, loadErr := s.loadPack(attr, packId, entry)
		if loadErr != nil {
			return nil, loadErr
		}

		if s.cache != nil {
			s.cache.Put(key, values)
		}

		return values, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*schema.PackValues), nil
}

func (s *FileSegment) loadPack(attr schema.Attr, packId int, entry *packEntry) (*schema.PackValues, error) {

	s.packLoads.Add(1)

	stored, release, err := s.src.view(int(entry.Offset), int(entry.StoredSize))
	if err != nil {
		return nil, fmt.Errorf("unable to read pack %d of `%s`: %w", packId, attr.Name, err)
	}
	defer release()

	raw := stored
	if s.header.Compression != compression.None {
		raw = make([]byte, entry.RawSize)
		if err := compression.Decompress(s.header.Compression, stored, raw); err != nil {
			log.Printf("pack %d of `%s` failed to decompress, stored prefix:\n%s", packId, attr.Name, spew.Sdump(stored[:min(len(stored), 64)]))
			return nil, fmt.Errorf("unable to decompress pack %d of `%s` [stored %d, raw %d]: %w", packId, attr.Name, entry.StoredSize, entry.RawSize, err)
		}
	} else if len(raw) != int(entry.RawSize) {
		return nil, fmt.Errorf("%w: pack %d of `%s` stored %d bytes, raw %d", ErrCorruptSegment, packId, attr.Name, len(raw), entry.RawSize)
	}

	values, err := decodePack(attr.Type, raw, s.PackRowCount(packId))
	if err != nil {
		return nil, fmt.Errorf("pack %d of `%s`: %w", packId, attr.Name, err)
	}

	return values, nil
}

// Close releases the file, packs already handed out stay valid.
func (s *FileSegment) Close() error {
	if s.cache != nil {
		s.cache.DropSegment(s.header.Id)
	}
	return s.src.Close()
}
