package job

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps records in process memory. Used by tests and
// single-node deployments without Redis.
type MemoryStore struct {
	mu      sync.RWMutex
	jobs    map[string]*ImportJob
	batches map[string]*CommunicationBatch
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:    make(map[string]*ImportJob),
		batches: make(map[string]*CommunicationBatch),
	}
}

func (s *MemoryStore) CreateJob(_ context.Context, j *ImportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j.ID == "" {
		j.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now

	clone := *j
	s.jobs[j.ID] = &clone
	return nil
}

func (s *MemoryStore) GetJob(_ context.Context, id string) (*ImportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	clone := *j
	return &clone, nil
}

func (s *MemoryStore) UpdateJob(_ context.Context, j *ImportJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[j.ID]; !ok {
		return fmt.Errorf("job %s: %w", j.ID, ErrNotFound)
	}
	j.UpdatedAt = time.Now().UTC()
	clone := *j
	s.jobs[j.ID] = &clone
	return nil
}

func (s *MemoryStore) ListJobs(_ context.Context) ([]*ImportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*ImportJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		clone := *j
		jobs = append(jobs, &clone)
	}
	// Newest first, id as tie-breaker for stable output.
	sort.Slice(jobs, func(a, b int) bool {
		if !jobs[a].CreatedAt.Equal(jobs[b].CreatedAt) {
			return jobs[a].CreatedAt.After(jobs[b].CreatedAt)
		}
		return jobs[a].ID < jobs[b].ID
	})
	return jobs, nil
}

func (s *MemoryStore) CreateBatch(_ context.Context, b *CommunicationBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	b.CreatedAt = time.Now().UTC()

	clone := *b
	s.batches[b.ID] = &clone
	return nil
}

func (s *MemoryStore) GetBatch(_ context.Context, id string) (*CommunicationBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.batches[id]
	if !ok {
		return nil, fmt.Errorf("batch %s: %w", id, ErrNotFound)
	}
	clone := *b
	return &clone, nil
}

func (s *MemoryStore) UpdateBatch(_ context.Context, b *CommunicationBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.batches[b.ID]; !ok {
		return fmt.Errorf("batch %s: %w", b.ID, ErrNotFound)
	}
	clone := *b
	s.batches[b.ID] = &clone
	return nil
}

func (s *MemoryStore) ListBatches(_ context.Context) ([]*CommunicationBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batches := make([]*CommunicationBatch, 0, len(s.batches))
	for _, b := range s.batches {
		clone := *b
		batches = append(batches, &clone)
	}
	sort.Slice(batches, func(a, b int) bool {
		if !batches[a].CreatedAt.Equal(batches[b].CreatedAt) {
			return batches[a].CreatedAt.After(batches[b].CreatedAt)
		}
		return batches[a].ID < batches[b].ID
	})
	return batches, nil
}
