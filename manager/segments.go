package manager

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/dot5enko/segment-rc/compression"
	"github.com/dot5enko/segment-rc/segment"
	"github.com/dot5enko/segment-rc/storage"
)

const segmentFileExt = ".seg"

func (m *Manager) getAbsStoragePath(segments ...string) string {

	pathSegments := []string{m.config.PathToStorage}
	pathSegments = append(pathSegments, segments...)

	return filepath.Join(pathSegments...)
}

func (m *Manager) createStoragePathIfNotExists() error {

	storagePath := m.getAbsStoragePath()

	if _, err := os.Stat(storagePath); err != nil {
		if mkdirErr := os.MkdirAll(storagePath, 0755); mkdirErr != nil {
			log.Printf("unable to create directory : %s", storagePath)
			return mkdirErr
		}
		log.Printf(" >> created %s folder", storagePath)
	}

	return nil
}

func (m *Manager) SegmentPath(id uuid.UUID) string {
	return m.getAbsStoragePath(id.String() + segmentFileExt)
}

// WriteSegment persists seg into the storage directory and opens it.
func (m *Manager) WriteSegment(seg segment.Columnar, typ compression.Type) (uuid.UUID, error) {

	if err := m.createStoragePathIfNotExists(); err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()

	if _, err := storage.WriteSegment(m.SegmentPath(id), seg, storage.WriteOptions{Compression: typ, Id: id}); err != nil {
		return uuid.Nil, err
	}

	if _, err := m.OpenSegment(id); err != nil {
		return uuid.Nil, err
	}

	return id, nil
}

// OpenSegment opens a stored segment, returning the already open one if any.
func (m *Manager) OpenSegment(id uuid.UUID) (*storage.FileSegment, error) {

	m.lock.Lock()
	defer m.lock.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	if seg, ok := m.segments[id]; ok {
		return seg, nil
	}

	seg, err := storage.OpenSegment(m.SegmentPath(id), storage.Options{
		Cache:   m.packs,
		Buffers: m.buffers,
		UseMmap: m.config.UseMmap,
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSegmentNotFound, id.String())
		}
		return nil, err
	}

	if seg.Id() != id {
		seg.Close()
		return nil, fmt.Errorf("%w: file %s holds segment %s", storage.ErrCorruptSegment, m.SegmentPath(id), seg.Id().String())
	}

	m.segments[id] = seg

	m.config.Logger.Info("segment opened",
		"segment_id", id.String(),
		"rows", seg.RowCount(),
		"packs", seg.PackCount(),
		"columns", len(seg.Columns()),
	)

	return seg, nil
}

// LoadSegmentsFromDisk opens every segment file of the storage directory and
// returns how many were opened. A missing directory holds no segments.
func (m *Manager) LoadSegmentsFromDisk() (int, error) {

	entries, err := os.ReadDir(m.getAbsStoragePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	loaded := 0

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, segmentFileExt) {
			continue
		}

		id, parseErr := uuid.Parse(strings.TrimSuffix(name, segmentFileExt))
		if parseErr != nil {
			log.Printf("skipping %s: not a segment file name", name)
			continue
		}

		if _, err := m.OpenSegment(id); err != nil {
			return loaded, fmt.Errorf("unable to load %s: %w", name, err)
		}
		loaded++
	}

	return loaded, nil
}

func (m *Manager) Segment(id uuid.UUID) (*storage.FileSegment, error) {

	m.lock.RLock()
	defer m.lock.RUnlock()

	seg, ok := m.segments[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSegmentNotFound, id.String())
	}

	return seg, nil
}

// Segments lists the open segments in a stable order.
func (m *Manager) Segments() []uuid.UUID {

	m.lock.RLock()
	defer m.lock.RUnlock()

	result := make([]uuid.UUID, 0, len(m.segments))
	for id := range m.segments {
		result = append(result, id)
	}

	slices.SortFunc(result, func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	})

	return result
}

// DropSegment closes the segment and removes its file.
func (m *Manager) DropSegment(id uuid.UUID) error {

	m.lock.Lock()
	seg, ok := m.segments[id]
	delete(m.segments, id)
	m.lock.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSegmentNotFound, id.String())
	}

	closeErr := seg.Close()
	removeErr := os.Remove(seg.Path())

	return errors.Join(closeErr, removeErr)
}
