// Package tabular loads lead files (CSV, XLSX) into adapter records and
// writes exported records back out.
package tabular

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-verify/internal/adapter"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = eris.New("tabular: unsupported file format")

// Table is a header row plus one record per non-blank data row.
type Table struct {
	Headers []string
	Records []adapter.Record
}

// LoadFile reads path, dispatching on its extension.
func LoadFile(ctx context.Context, path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "tabular: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return ReadCSV(ctx, f, CSVOptions{TrimSpace: true})
	case ".xlsx":
		return ReadXLSX(path, XLSXOptions{})
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "%s", path)
	}
}

// newTable pairs each row with the header. Short rows are padded with "",
// extra cells are dropped and all-blank rows are skipped.
func newTable(headers []string, rows [][]string) *Table {
	t := &Table{Headers: headers}
	for _, row := range rows {
		if blank(row) {
			continue
		}
		rec := make(adapter.Record, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		t.Records = append(t.Records, rec)
	}
	return t
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
