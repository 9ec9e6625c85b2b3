package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// JSONFile keeps all records as one indented JSON array.
type JSONFile struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*JSONFile)(nil)

// NewJSONFile returns a store backed by path. The file is created on the
// first save.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

func (s *JSONFile) Save(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return err
	}
	return writeJSON(s.path, upsert(records, Prepare(r)))
}

func (s *JSONFile) List(_ context.Context, f Filter) ([]Record, error) {
	s.mu.Lock()
	records, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := filterRecords(records, f)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SavedAt.Before(out[j].SavedAt) })
	return out, nil
}

func (s *JSONFile) Stats(ctx context.Context) (Totals, error) {
	records, err := s.List(ctx, Filter{})
	if err != nil {
		return Totals{}, err
	}
	return totalsOf(records), nil
}

func (s *JSONFile) Close() error { return nil }

func (s *JSONFile) load() ([]Record, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}
	return records, nil
}

// writeJSON replaces path atomically with records as an indented array.
func writeJSON(path string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
