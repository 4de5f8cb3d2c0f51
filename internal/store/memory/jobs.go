package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
)

type entry struct {
	job domain.Job
	seq uint64 // insertion order, used to break PostedDate ties
}

// JobStore keeps job listings in process memory.
// It backs tests and single-node development setups.
type JobStore struct {
	mu       sync.RWMutex
	jobs     map[string]entry
	seq      uint64
	seeded   bool
	watchers map[chan struct{}]struct{}
}

// NewJobStore creates an empty in-memory job store.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs:     make(map[string]entry),
		watchers: make(map[chan struct{}]struct{}),
	}
}

// List returns all jobs newest first, ties in insertion order.
func (s *JobStore) List(_ context.Context) ([]domain.Job, error) {
	s.mu.RLock()
	entries := make([]entry, 0, len(s.jobs))
	for _, e := range s.jobs {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	// Insertion order first, then a stable sort on the date.
	sortBySeq(entries)
	jobs := make([]domain.Job, len(entries))
	for i, e := range entries {
		jobs[i] = e.job
	}
	domain.SortJobs(jobs)
	return jobs, nil
}

// Get retrieves a job by ID.
func (s *JobStore) Get(_ context.Context, id string) (domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.jobs[id]
	if !ok {
		return domain.Job{}, &domain.ErrNotFound{Type: "job", ID: id}
	}
	return e.job, nil
}

// Create stores a new job under a fresh UUID.
func (s *JobStore) Create(_ context.Context, in domain.JobInput) (string, error) {
	id := uuid.NewString()

	s.mu.Lock()
	s.seq++
	s.jobs[id] = entry{job: in.WithID(id), seq: s.seq}
	s.mu.Unlock()

	s.notify()
	return id, nil
}

// Update replaces an existing job, keeping its insertion order.
func (s *JobStore) Update(_ context.Context, id string, in domain.JobInput) error {
	s.mu.Lock()
	e, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		return &domain.ErrNotFound{Type: "job", ID: id}
	}
	e.job = in.WithID(id)
	s.jobs[id] = e
	s.mu.Unlock()

	s.notify()
	return nil
}

// Delete removes a job. Missing IDs are ignored.
func (s *JobStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.jobs[id]
	delete(s.jobs, id)
	s.mu.Unlock()

	if ok {
		s.notify()
	}
	return nil
}

// ClaimSeed returns true only on the first call.
func (s *JobStore) ClaimSeed(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seeded {
		return false, nil
	}
	s.seeded = true
	return true, nil
}

// ReleaseSeed forgets a previous claim.
func (s *JobStore) ReleaseSeed(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seeded = false
	return nil
}

// Watch returns a channel signalled after every mutation.
// Bursts coalesce into a single pending signal.
func (s *JobStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, ch)
		close(ch)
		s.mu.Unlock()
	}()

	return ch, nil
}

// Count returns the number of stored jobs.
func (s *JobStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.jobs)
}

func (s *JobStore) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func sortBySeq(entries []entry) {
	sort.Slice(entries, func(i, k int) bool { return entries[i].seq < entries[k].seq })
}
