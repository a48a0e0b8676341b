package visits

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// DefaultLimit is the working set capacity used when none is configured.
const DefaultLimit = 100

// Backend persists the full working set. RetrieveAll returns every stored
// record (empty slice when nothing is stored); PersistAll replaces the
// entire stored set. Both may suspend on I/O and may fail.
type Backend interface {
	RetrieveAll(ctx context.Context) ([]Visit, error)
	PersistAll(ctx context.Context, records []Visit) error
}

// Store tracks recently viewed resources on top of a Backend. Every save is
// a full read-modify-write cycle guarded by a mutex, so concurrent saves on
// one Store serialize and the dedup and capacity invariants hold.
type Store struct {
	mu      sync.Mutex
	backend Backend
	clock   Clock
	ids     IDGenerator
	limit   int
}

// Option configures a Store.
type Option func(*Store)

// WithLimit sets the maximum number of retained records.
func WithLimit(n int) Option {
	return func(s *Store) { s.limit = n }
}

// WithClock replaces the system clock, for deterministic tests.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithIDGenerator replaces the UUID source, for deterministic tests.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// NewStore creates a Store over the given backend.
func NewStore(backend Backend, opts ...Option) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("visit store requires a backend")
	}
	s := &Store{
		backend: backend,
		clock:   SystemClock{},
		ids:     UUIDGenerator{},
		limit:   DefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.limit <= 0 {
		return nil, fmt.Errorf("visit limit must be positive, got %d", s.limit)
	}
	return s, nil
}

// SaveVisit records a view of the resource described by c. A repeat view of
// the same (EntityRef, Pathname) pair updates the existing record: the name
// is replaced, the timestamp advances to now and the hit count increments,
// while the ID stays stable. A first view creates a fresh record with one
// hit. If the working set then exceeds the limit, the oldest records are
// evicted. The full resulting set is written back in a single PersistAll;
// on any backend failure no mutation is observable.
func (s *Store) SaveVisit(ctx context.Context, c Candidate) (Visit, error) {
	if c.EntityRef == "" {
		return Visit{}, fmt.Errorf("visit entityRef must not be empty")
	}
	if c.Pathname == "" {
		return Visit{}, fmt.Errorf("visit pathname must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.backend.RetrieveAll(ctx)
	if err != nil {
		return Visit{}, &StorageError{Op: "retrieve", Err: err}
	}

	now := s.clock.NowMillis()

	next := make([]Visit, len(records))
	copy(next, records)

	var saved Visit
	found := false
	for i, v := range next {
		if v.EntityRef == c.EntityRef && v.Pathname == c.Pathname {
			next[i].Name = c.Name
			next[i].Timestamp = now
			next[i].Hits++
			saved = next[i]
			found = true
			break
		}
	}
	if !found {
		saved = Visit{
			ID:        s.ids.NewID(),
			EntityRef: c.EntityRef,
			Pathname:  c.Pathname,
			Name:      c.Name,
			Timestamp: now,
			Hits:      1,
		}
		next = append(next, saved)
	}

	next = evictOldest(next, s.limit)

	if err := s.backend.PersistAll(ctx, next); err != nil {
		return Visit{}, &StorageError{Op: "persist", Err: err}
	}

	return saved, nil
}

// ListVisits returns a snapshot of the working set filtered and ordered by
// q. With a zero Query it returns every record ordered by timestamp
// descending, the natural "recently viewed" order. The snapshot is fetched
// fresh from the backend on every call.
func (s *Store) ListVisits(ctx context.Context, q Query) ([]Visit, error) {
	records, err := s.backend.RetrieveAll(ctx)
	if err != nil {
		return nil, &StorageError{Op: "retrieve", Err: err}
	}
	if len(q.OrderBy) == 0 {
		q.OrderBy = []OrderBy{{Field: FieldTimestamp, Descending: true}}
	}
	return Apply(records, q)
}

// evictOldest drops the oldest-by-timestamp records until at most limit
// remain. Timestamp ties are broken by stored order: the earlier-stored
// record is evicted first. Survivors keep their stored order.
func evictOldest(records []Visit, limit int) []Visit {
	excess := len(records) - limit
	if excess <= 0 {
		return records
	}

	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return records[idx[a]].Timestamp < records[idx[b]].Timestamp
	})

	evicted := make(map[int]bool, excess)
	for _, i := range idx[:excess] {
		evicted[i] = true
	}

	kept := make([]Visit, 0, limit)
	for i, v := range records {
		if !evicted[i] {
			kept = append(kept, v)
		}
	}
	return kept
}
