package cli

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ilya-bc/backstage/internal/backend"
	"github.com/ilya-bc/backstage/internal/visits"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// tickClock returns strictly increasing timestamps.
type tickClock struct {
	now int64
}

func (c *tickClock) NowMillis() int64 {
	c.now++
	return c.now
}

// newMemoryStore builds a store over a fresh memory backend with a
// deterministic clock.
func newMemoryStore(t *testing.T, opts ...visits.Option) (*visits.Store, *backend.Memory) {
	t.Helper()
	b := backend.NewMemory()
	opts = append([]visits.Option{visits.WithClock(&tickClock{})}, opts...)
	store, err := visits.NewStore(b, opts...)
	require.NoError(t, err)
	return store, b
}
