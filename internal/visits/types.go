package visits

import (
	"time"

	"github.com/google/uuid"
)

// Visit represents a single tracked view of a resource. At most one Visit
// exists per (EntityRef, Pathname) pair; repeat views update the existing
// record in place rather than adding a new one.
type Visit struct {
	ID        string `json:"id"`
	EntityRef string `json:"entityRef"`
	Pathname  string `json:"pathname"`
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds of the most recent view
	Hits      int64  `json:"hits"`
}

// Candidate carries the caller-supplied fields of a visit. ID, Timestamp
// and Hits are assigned by the store on save.
type Candidate struct {
	EntityRef string
	Pathname  string
	Name      string
}

// Clock supplies the current time in epoch milliseconds. Injectable so
// tests can pin timestamps.
type Clock interface {
	NowMillis() int64
}

// SystemClock is the default Clock, backed by time.Now.
type SystemClock struct{}

func (SystemClock) NowMillis() int64 { return time.Now().UnixMilli() }

// IDGenerator supplies a fresh unique identifier per new record.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator is the default IDGenerator, producing random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }
