package executor

import (
	"sync"
	"sync/atomic"
)

// TaskStatus tracks one filter execution shared by all pack workers.
type TaskStatus struct {
	PacksTotal     int
	PacksProcessed atomic.Int32

	SkippedPacks atomic.Int32
	FullPacks    atomic.Int32
	ExactPacks   atomic.Int32
	MatchedRows  atomic.Int64

	Err       atomic.Bool
	ErrObject error

	Lock sync.Mutex
}

func (s *TaskStatus) fail(err error) {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	if s.ErrObject == nil {
		s.ErrObject = err
	}
	s.Err.Store(true)
}

func (s *TaskStatus) failure() error {
	s.Lock.Lock()
	defer s.Lock.Unlock()

	return s.ErrObject
}
