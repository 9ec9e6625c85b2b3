// Package store persists processed articles. Three backends share one
// interface: an SQLite database, a JSON array file and an append-only CSV
// file. Every backend keeps one record per URL; saving a URL again replaces
// the earlier record but keeps its ID.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hyperifyio/gosummarize/internal/stats"
)

// ErrUnsupportedFormat is returned for storage or export formats other than
// sqlite, json and csv.
var ErrUnsupportedFormat = errors.New("unsupported storage format")

// Storage formats.
const (
	FormatSQLite = "sqlite"
	FormatJSON   = "json"
	FormatCSV    = "csv"
)

// Record is one processed article.
type Record struct {
	ID        string             `json:"id"`
	URL       string             `json:"url"`
	Title     string             `json:"title"`
	Content   string             `json:"content"`
	Author    string             `json:"author,omitempty"`
	Published string             `json:"published,omitempty"`
	Metadata  map[string]string  `json:"metadata,omitempty"`
	Summary   string             `json:"summary"`
	Stats     stats.SummaryStats `json:"stats"`
	SavedAt   time.Time          `json:"saved_at"`
}

// Prepare assigns an ID and a save time to r when they are unset.
func Prepare(r Record) Record {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.SavedAt.IsZero() {
		r.SavedAt = time.Now().UTC()
	}
	return r
}

// Filter selects records by case-insensitive substring. Empty fields match
// everything.
type Filter struct {
	URL    string
	Title  string
	Author string
}

// Match reports whether r passes f.
func (f Filter) Match(r Record) bool {
	return containsFold(r.URL, f.URL) && containsFold(r.Title, f.Title) && containsFold(r.Author, f.Author)
}

func containsFold(s, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// Totals describes the stored collection.
type Totals struct {
	Articles      int       `json:"total_articles"`
	WithSummary   int       `json:"articles_with_summary"`
	UniqueAuthors int       `json:"unique_authors"`
	LatestSavedAt time.Time `json:"latest_saved_at,omitzero"`
}

// Store persists and queries records. Implementations are safe for
// concurrent use.
type Store interface {
	// Save inserts r or replaces the record with the same URL.
	Save(ctx context.Context, r Record) error
	// List returns matching records ordered by save time.
	List(ctx context.Context, f Filter) ([]Record, error)
	Stats(ctx context.Context) (Totals, error)
	Close() error
}

// Open returns a store writing to every format under dir. Reads are served by
// the first format. No formats means sqlite.
func Open(dir string, formats []string) (Store, error) {
	if len(formats) == 0 {
		formats = []string{FormatSQLite}
	}
	var stores []Store
	seen := map[string]bool{}
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if seen[f] {
			continue
		}
		seen[f] = true
		s, err := openFormat(dir, f)
		if err != nil {
			for _, opened := range stores {
				_ = opened.Close()
			}
			return nil, err
		}
		stores = append(stores, s)
	}
	if len(stores) == 1 {
		return stores[0], nil
	}
	return NewMulti(stores...), nil
}

// ValidFormat reports whether name is a known storage format.
func ValidFormat(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case FormatSQLite, FormatJSON, FormatCSV:
		return true
	}
	return false
}

func openFormat(dir, format string) (Store, error) {
	switch format {
	case FormatSQLite:
		return OpenSQLite(filepath.Join(dir, "articles.db"))
	case FormatJSON:
		return NewJSONFile(filepath.Join(dir, "articles.json")), nil
	case FormatCSV:
		return NewCSVFile(filepath.Join(dir, "articles.csv")), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Multi fans writes out to several stores and reads from the first.
type Multi struct {
	stores []Store
}

// NewMulti returns a Multi over stores; the first one serves reads.
func NewMulti(stores ...Store) *Multi {
	return &Multi{stores: stores}
}

// Save writes r to every store, using one ID and save time for all of them.
// It attempts every store and joins their errors.
func (m *Multi) Save(ctx context.Context, r Record) error {
	r = Prepare(r)
	var errs []error
	for _, s := range m.stores {
		if err := s.Save(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) List(ctx context.Context, f Filter) ([]Record, error) {
	if len(m.stores) == 0 {
		return nil, nil
	}
	return m.stores[0].List(ctx, f)
}

func (m *Multi) Stats(ctx context.Context) (Totals, error) {
	if len(m.stores) == 0 {
		return Totals{}, nil
	}
	return m.stores[0].Stats(ctx)
}

func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.stores {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// totalsOf computes Totals over records already reduced to one per URL.
func totalsOf(records []Record) Totals {
	var t Totals
	authors := map[string]struct{}{}
	for _, r := range records {
		t.Articles++
		if r.Summary != "" {
			t.WithSummary++
		}
		if r.Author != "" {
			authors[r.Author] = struct{}{}
		}
		if r.SavedAt.After(t.LatestSavedAt) {
			t.LatestSavedAt = r.SavedAt
		}
	}
	t.UniqueAuthors = len(authors)
	return t
}

// upsert replaces the record with r's URL, keeping its ID, or appends r.
func upsert(records []Record, r Record) []Record {
	for i := range records {
		if records[i].URL == r.URL {
			r.ID = records[i].ID
			records[i] = r
			return records
		}
	}
	return append(records, r)
}

func filterRecords(records []Record, f Filter) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
