package manager

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dot5enko/segment-rc/manager/cache"
	"github.com/dot5enko/segment-rc/manager/executor"
	"github.com/dot5enko/segment-rc/manager/query"
	"github.com/dot5enko/segment-rc/storage"
)

const (
	DefaultCacheMaxPacks     = 1024
	DefaultDecodeBuffers     = 16
	DefaultDecodeBufferBytes = 512 * 1024
)

var (
	ErrSegmentNotFound = errors.New("segment not found")
	ErrClosed          = errors.New("manager is closed")
)

type ManagerConfig struct {
	PathToStorage string

	// decoded packs kept in memory across all segments
	CacheMaxPacks int

	// buffers for reading stored packs, a pack larger than
	// DecodeBufferBytes is read into a fresh allocation
	DecodeBuffers     int
	DecodeBufferBytes int

	Workers           int
	SlowPackThreshold time.Duration

	UseMmap bool

	Logger *slog.Logger
}

// Manager keeps the segments of a storage directory open and evaluates
// filters and queries against them.
type Manager struct {
	segments map[uuid.UUID]*storage.FileSegment
	lock     sync.RWMutex
	closed   bool

	config ManagerConfig

	packs   *cache.PackCache
	buffers *cache.FixedSizeBufferPool

	Planner  *query.QueryPlanner
	Executor *executor.PlanExecutor
}

func New(config ManagerConfig) *Manager {

	if config.CacheMaxPacks == 0 {
		config.CacheMaxPacks = DefaultCacheMaxPacks
	}

	if config.DecodeBuffers <= 0 {
		config.DecodeBuffers = DefaultDecodeBuffers
	}

	if config.DecodeBufferBytes <= 0 {
		config.DecodeBufferBytes = DefaultDecodeBufferBytes
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Manager{
		segments: make(map[uuid.UUID]*storage.FileSegment),
		config:   config,
		packs:    cache.NewPackCache(config.CacheMaxPacks),
		buffers:  cache.NewFixedSizeBufferPool(config.DecodeBuffers, config.DecodeBufferBytes),
		Planner:  query.NewQueryPlanner(),
		Executor: executor.NewPlanExecutor(executor.Config{
			Workers:           config.Workers,
			SlowPackThreshold: config.SlowPackThreshold,
			Logger:            config.Logger,
		}),
	}
}

func (m *Manager) Config() ManagerConfig {
	return m.config
}

// CacheStats reports the shared decoded pack cache.
func (m *Manager) CacheStats() cache.Stats {
	return m.packs.Stats()
}

// BufferStats reports the read buffers shared by segments opened without mmap.
func (m *Manager) BufferStats() cache.BufferStats {
	return m.buffers.Stats()
}

// Close closes every open segment, files stay on disk.
func (m *Manager) Close() error {

	m.lock.Lock()
	defer m.lock.Unlock()

	var errs []error
	for id, seg := range m.segments {
		if err := seg.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(m.segments, id)
	}

	m.closed = true

	return errors.Join(errs...)
}
