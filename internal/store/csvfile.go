package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"
)

var csvHeader = []string{
	"id", "url", "title", "author", "published", "summary", "content", "metadata",
	"original_length", "summary_length", "compression_ratio",
	"original_reading_time", "summary_reading_time", "overlap", "saved_at",
}

// CSVFile appends one row per save. The header is written with the first
// row. When a URL appears more than once its last row wins, with the ID of
// its first row.
type CSVFile struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*CSVFile)(nil)

// NewCSVFile returns a store backed by path.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

func (s *CSVFile) Save(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r = Prepare(r)
	existing, err := readCSV(s.path)
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.URL == r.URL {
			r.ID = e.ID
			break
		}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return err
		}
	}
	row, err := csvRow(r)
	if err != nil {
		return err
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (s *CSVFile) List(_ context.Context, f Filter) ([]Record, error) {
	s.mu.Lock()
	records, err := readCSV(s.path)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := filterRecords(records, f)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SavedAt.Before(out[j].SavedAt) })
	return out, nil
}

func (s *CSVFile) Stats(ctx context.Context) (Totals, error) {
	records, err := s.List(ctx, Filter{})
	if err != nil {
		return Totals{}, err
	}
	return totalsOf(records), nil
}

func (s *CSVFile) Close() error { return nil }

// readCSV returns the rows of path reduced to one record per URL.
func readCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = len(csvHeader)
	if _, err := rd.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s header: %w", path, err)
	}
	var records []Record
	for {
		row, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		r, err := parseCSVRow(row)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		records = upsert(records, r)
	}
	return records, nil
}

func csvRow(r Record) ([]string, error) {
	metadata := ""
	if len(r.Metadata) > 0 {
		b, err := json.Marshal(r.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshalling metadata: %w", err)
		}
		metadata = string(b)
	}
	return []string{
		r.ID, r.URL, r.Title, r.Author, r.Published, r.Summary, r.Content, metadata,
		strconv.Itoa(r.Stats.OriginalLength),
		strconv.Itoa(r.Stats.SummaryLength),
		strconv.FormatFloat(r.Stats.CompressionRatio, 'f', -1, 64),
		strconv.Itoa(r.Stats.OriginalReadingTime),
		strconv.Itoa(r.Stats.SummaryReadingTime),
		strconv.FormatFloat(r.Stats.Overlap, 'f', -1, 64),
		r.SavedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

func parseCSVRow(row []string) (Record, error) {
	r := Record{
		ID: row[0], URL: row[1], Title: row[2], Author: row[3],
		Published: row[4], Summary: row[5], Content: row[6],
	}
	if row[7] != "" {
		if err := json.Unmarshal([]byte(row[7]), &r.Metadata); err != nil {
			return Record{}, fmt.Errorf("metadata of %s: %w", r.URL, err)
		}
	}
	var err error
	ints := []*int{&r.Stats.OriginalLength, &r.Stats.SummaryLength}
	for i, dst := range ints {
		if *dst, err = strconv.Atoi(row[8+i]); err != nil {
			return Record{}, fmt.Errorf("%s of %s: %w", csvHeader[8+i], r.URL, err)
		}
	}
	if r.Stats.CompressionRatio, err = strconv.ParseFloat(row[10], 64); err != nil {
		return Record{}, fmt.Errorf("compression_ratio of %s: %w", r.URL, err)
	}
	if r.Stats.OriginalReadingTime, err = strconv.Atoi(row[11]); err != nil {
		return Record{}, fmt.Errorf("original_reading_time of %s: %w", r.URL, err)
	}
	if r.Stats.SummaryReadingTime, err = strconv.Atoi(row[12]); err != nil {
		return Record{}, fmt.Errorf("summary_reading_time of %s: %w", r.URL, err)
	}
	if r.Stats.Overlap, err = strconv.ParseFloat(row[13], 64); err != nil {
		return Record{}, fmt.Errorf("overlap of %s: %w", r.URL, err)
	}
	if r.SavedAt, err = time.Parse(time.RFC3339Nano, row[14]); err != nil {
		return Record{}, fmt.Errorf("saved_at of %s: %w", r.URL, err)
	}
	return r, nil
}
