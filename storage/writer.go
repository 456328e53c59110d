package storage

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"

	"github.com/dot5enko/segment-rc/compression"
	segio "github.com/dot5enko/segment-rc/io"
	"github.com/dot5enko/segment-rc/schema"
	"github.com/dot5enko/segment-rc/segment"
)

type WriteOptions struct {
	Compression compression.Type

	// Id of the written segment, a random one is generated when zero.
	Id uuid.UUID
}

// WriteSegment stores every column of seg into a single file at path,
// replacing it atomically, and returns the segment id.
func WriteSegment(path string, seg segment.Columnar, opts WriteOptions) (uuid.UUID, error) {

	id := opts.Id
	if id == uuid.Nil {
		id = uuid.New()
	}

	packCount := seg.PackCount()
	packRows := 0
	if packCount > 0 {
		packRows = seg.PackRowCount(0)
	}

	header := &segmentHeader{
		Id:          id,
		PackRows:    packRows,
		RowCount:    seg.RowCount(),
		Compression: opts.Compression,
	}

	payloads := make([][]byte, 0, packCount*len(seg.Columns()))
	payloadOffset := uint64(0)

	for _, attr := range seg.Columns() {

		col := columnEntry{
			Attr:  attr,
			Packs: make([]packEntry, packCount),
		}

		for packId := range packCount {

			values, err := seg.PackColumnValues(attr, packId)
			if err != nil {
				return uuid.Nil, fmt.Errorf("unable to read pack %d of `%s`: %w", packId, attr.Name, err)
			}

			// stats must describe what a reader decodes
			if values, err = values.NarrowFloat32(); err != nil {
				return uuid.Nil, fmt.Errorf("pack %d of `%s`: %w", packId, attr.Name, err)
			}

			stats := schema.ComputeStats(values)
			col.Stats.Morph(attr.Type, stats)

			raw := encodePack(values)

			var stored bytes.Buffer
			if err := compression.Compress(opts.Compression, raw, &stored); err != nil {
				return uuid.Nil, fmt.Errorf("unable to compress pack %d of `%s`: %w", packId, attr.Name, err)
			}

			col.Packs[packId] = packEntry{
				Stats:      stats,
				Offset:     payloadOffset,
				StoredSize: uint32(stored.Len()),
				RawSize:    uint32(len(raw)),
			}

			payloads = append(payloads, stored.Bytes())
			payloadOffset += uint64(stored.Len())
		}

		header.Columns = append(header.Columns, col)
	}

	w, offsetPositions := header.encode()
	headerSize := uint64(w.Position())

	for colIdx, col := range header.Columns {
		for packId, pack := range col.Packs {
			w.PutAt(offsetPositions[colIdx][packId], headerSize+pack.Offset)
		}
	}

	chunks := append([][]byte{w.Bytes()}, payloads...)

	if err := segio.DumpFile(path, chunks...); err != nil {
		return uuid.Nil, fmt.Errorf("unable to write segment %s: %w", id.String(), err)
	}

	return id, nil
}
