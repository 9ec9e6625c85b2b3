package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/hyperifyio/gosummarize/internal/store/migrations"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite stores records in a single articles table, one row per URL.
type SQLite struct {
	db   *sql.DB
	path string
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens or creates the database at path and applies pending
// migrations.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	// WAL lets readers proceed while a save is in progress.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &SQLite{db: db, path: path}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string { return s.path }

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) migrate(fsys fs.FS) error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}
	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var upFiles []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			upFiles = append(upFiles, e.Name())
		}
	}
	sort.Strings(upFiles)
	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version <= current {
			continue
		}
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *SQLite) Save(ctx context.Context, r Record) error {
	r = Prepare(r)
	metadata, err := json.Marshal(r.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}
	st, err := json.Marshal(r.Stats)
	if err != nil {
		return fmt.Errorf("marshalling stats: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO articles (id, url, title, content, author, published, metadata, summary, stats, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			author = excluded.author,
			published = excluded.published,
			metadata = excluded.metadata,
			summary = excluded.summary,
			stats = excluded.stats,
			saved_at = excluded.saved_at`,
		r.ID, r.URL, r.Title, r.Content, r.Author, r.Published,
		string(metadata), r.Summary, string(st), r.SavedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("saving article %s: %w", r.URL, err)
	}
	return nil
}

func (s *SQLite) List(ctx context.Context, f Filter) ([]Record, error) {
	query := `SELECT id, url, title, content, author, published, metadata, summary, stats, saved_at FROM articles`
	var where []string
	var args []any
	for _, c := range []struct{ column, value string }{
		{"url", f.URL}, {"title", f.Title}, {"author", f.Author},
	} {
		if c.value == "" {
			continue
		}
		where = append(where, "instr(lower("+c.column+"), ?) > 0")
		args = append(args, strings.ToLower(c.value))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY saved_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var metadata, st, savedAt string
		if err := rows.Scan(&r.ID, &r.URL, &r.Title, &r.Content, &r.Author, &r.Published, &metadata, &r.Summary, &st, &savedAt); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		if err := json.Unmarshal([]byte(metadata), &r.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata of %s: %w", r.URL, err)
		}
		if err := json.Unmarshal([]byte(st), &r.Stats); err != nil {
			return nil, fmt.Errorf("decoding stats of %s: %w", r.URL, err)
		}
		if r.SavedAt, err = time.Parse(timeLayout, savedAt); err != nil {
			return nil, fmt.Errorf("decoding saved_at of %s: %w", r.URL, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) Stats(ctx context.Context) (Totals, error) {
	var t Totals
	var latest string
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COUNT(CASE WHEN summary <> '' THEN 1 END),
			COUNT(DISTINCT CASE WHEN author <> '' THEN author END),
			COALESCE(MAX(saved_at), '')
		FROM articles`).Scan(&t.Articles, &t.WithSummary, &t.UniqueAuthors, &latest)
	if err != nil {
		return Totals{}, fmt.Errorf("article stats: %w", err)
	}
	if latest != "" {
		if t.LatestSavedAt, err = time.Parse(timeLayout, latest); err != nil {
			return Totals{}, fmt.Errorf("decoding latest saved_at: %w", err)
		}
	}
	return t, nil
}
