package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Export writes every record of src to path as a JSON array or a CSV file
// with header, replacing any existing file.
func Export(ctx context.Context, src Store, format, path string) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatJSON && format != FormatCSV {
		return fmt.Errorf("%w: cannot export as %q", ErrUnsupportedFormat, format)
	}
	records, err := src.List(ctx, Filter{})
	if err != nil {
		return err
	}
	if format == FormatJSON {
		return writeJSON(path, records)
	}
	return writeCSV(path, records)
}

func writeCSV(path string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return err
	}
	for _, r := range records {
		row, err := csvRow(r)
		if err != nil {
			f.Close()
			return err
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
