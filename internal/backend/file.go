package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ilya-bc/backstage/internal/visits"
)

// File persists the working set as a single JSON document on disk. Writes
// go to a temp file in the same directory followed by a rename, so a failed
// write never corrupts the previously stored set.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a file backend at path. The file and its directory are
// created on first write.
func NewFile(path string) *File {
	return &File{path: path}
}

// RetrieveAll reads and decodes the stored sequence. A missing file means
// nothing has been stored yet and yields an empty sequence.
func (f *File) RetrieveAll(ctx context.Context) ([]visits.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []visits.Visit{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read visits file: %w", err)
	}

	var records []visits.Visit
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode visits file: %w", err)
	}
	if records == nil {
		records = []visits.Visit{}
	}
	return records, nil
}

// PersistAll encodes records and atomically replaces the stored file.
func (f *File) PersistAll(ctx context.Context, records []visits.Visit) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if records == nil {
		records = []visits.Visit{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode visits: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("create visits directory: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write visits file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace visits file: %w", err)
	}
	return nil
}
