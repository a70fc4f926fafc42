package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Lllllllleong/lessonreview/internal/models"
)

var _ RunStore = (*MemoryRunStore)(nil)

// MemoryRunStore keeps runs in process. Used for dry runs and tests.
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs map[string]models.QARun
}

func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[string]models.QARun)}
}

func (s *MemoryRunStore) Create(ctx context.Context, run *models.QARun) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	stored := run.Clone()
	stored.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[id] = stored
	return id, nil
}

// Get returns a copy, so callers cannot alter the stored record.
func (s *MemoryRunStore) Get(_ context.Context, id string) (*models.QARun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	out := run.Clone()
	return &out, nil
}

// Len reports how many runs have been stored.
func (s *MemoryRunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
