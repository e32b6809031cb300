// Package fs provides file-based output stores for scraped records.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/scrapedoc"
)

// Ensure JSONStore implements scrapedoc.RecordStore at compile time.
var _ scrapedoc.RecordStore = (*JSONStore)(nil)

// JSONStore writes records as a single JSON array with atomic update
// semantics. Records are staged in memory by Save, written to path.tmp and
// renamed over path on Commit.
type JSONStore struct {
	path   string
	pretty bool

	mu      sync.Mutex
	records []*scrapedoc.Record
}

// JSONOption configures a JSONStore.
type JSONOption func(*JSONStore)

// WithPretty indents the JSON output.
func WithPretty(pretty bool) JSONOption {
	return func(s *JSONStore) {
		s.pretty = pretty
	}
}

// NewJSONStore creates a new JSONStore writing to path.
func NewJSONStore(path string, opts ...JSONOption) *JSONStore {
	s := &JSONStore{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *JSONStore) tempPath() string {
	return s.path + ".tmp"
}

// Save stages a validated record.
func (s *JSONStore) Save(ctx context.Context, record *scrapedoc.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// Commit writes every staged record and replaces the output file.
// An empty store writes an empty array.
func (s *JSONStore) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.records
	if records == nil {
		records = []*scrapedoc.Record{}
	}

	var data []byte
	var err error
	if s.pretty {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(s.tempPath(), data, 0644); err != nil {
		return err
	}
	if err := os.Rename(s.tempPath(), s.path); err != nil {
		return err
	}

	s.records = nil
	return nil
}

// Abort discards staged records and any partial output.
func (s *JSONStore) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	if err := os.Remove(s.tempPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
