// Package backend provides persistence backends for the visit store. Every
// backend implements the same full-set contract: RetrieveAll returns the
// complete stored sequence and PersistAll replaces it.
package backend

import (
	"context"
	"sync"

	"github.com/ilya-bc/backstage/internal/visits"
)

// Memory holds the working set in process memory. It is the default for
// tests and for ephemeral use; contents are lost when the process exits.
type Memory struct {
	mu      sync.RWMutex
	records []visits.Visit
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{records: []visits.Visit{}}
}

// RetrieveAll returns a copy of the stored sequence.
func (m *Memory) RetrieveAll(ctx context.Context) ([]visits.Visit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]visits.Visit, len(m.records))
	copy(out, m.records)
	return out, nil
}

// PersistAll replaces the stored sequence with a copy of records.
func (m *Memory) PersistAll(ctx context.Context, records []visits.Visit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make([]visits.Visit, len(records))
	copy(m.records, records)
	return nil
}
