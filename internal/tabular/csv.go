package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-verify/internal/adapter"
)

// CSVOptions configures the CSV reader.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
}

// StreamCSV reads r and sends rows, header included, to a channel. Errors
// are sent on the error channel. Both channels are closed when processing
// completes.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // allow variable fields

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}

			if opts.TrimSpace {
				for i, field := range record {
					record[i] = strings.TrimSpace(field)
				}
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// ReadCSV reads a whole CSV with a header row into a Table.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) (*Table, error) {
	rowCh, errCh := StreamCSV(ctx, r, opts)

	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return &Table{}, nil
	}
	return newTable(rows[0], rows[1:]), nil
}

// WriteCSV writes records as CSV with the given column order. Missing values
// are written as empty cells.
func WriteCSV(w io.Writer, columns []string, recs []adapter.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return eris.Wrap(err, "csv: write header")
	}

	row := make([]string, len(columns))
	for _, rec := range recs {
		for i, c := range columns {
			row[i] = cell(rec[c])
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "csv: write row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "csv: flush")
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return fmt.Sprintf("%.4f", x)
	default:
		return fmt.Sprint(x)
	}
}
