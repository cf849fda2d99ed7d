package service

import (
	"sync"
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
)

// runStore keeps asynchronous generation runs in memory until they expire.
type runStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]dto.TimetableRun
	now   func() time.Time
}

func newRunStore(ttl time.Duration) *runStore {
	return &runStore{
		ttl:   ttl,
		items: make(map[string]dto.TimetableRun),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *runStore) Save(run dto.TimetableRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
	s.items[run.RunID] = run
}

func (s *runStore) Get(id string) (dto.TimetableRun, bool) {
	s.mu.RLock()
	run, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return dto.TimetableRun{}, false
	}
	if s.expired(run) {
		s.Delete(id)
		return dto.TimetableRun{}, false
	}
	return run, true
}

// Update applies fn to the stored run and bumps UpdatedAt. It reports false
// when the run is unknown.
func (s *runStore) Update(id string, fn func(*dto.TimetableRun)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.items[id]
	if !ok {
		return false
	}
	fn(&run)
	run.UpdatedAt = s.now()
	s.items[id] = run
	return true
}

func (s *runStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

// Only finished runs expire; a pending run stays visible however long the queue takes.
func (s *runStore) expired(run dto.TimetableRun) bool {
	return run.FinishedAt != nil && s.now().Sub(*run.FinishedAt) > s.ttl
}

func (s *runStore) pruneLocked() {
	for id, run := range s.items {
		if s.expired(run) {
			delete(s.items, id)
		}
	}
}
