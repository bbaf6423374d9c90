// Package fetcher downloads and parses school catalog and roster data
// from HTTP, FTP, CSV, and XLSX sources.
package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the streaming CSV parser. Partner feeds disagree
// on delimiters and quoting, so both are tunable.
type CSVOptions struct {
	Delimiter  rune // default ','
	HasHeader  bool // if true, the first row is skipped
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
}

// StreamCSV reads CSV records from r and sends them to the returned row
// channel. The caller must drain the row channel; both channels are
// closed when parsing completes. Rows may have varying field counts, the
// row parsers decide what is acceptable.
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
		reader.FieldsPerRecord = -1

		first := true
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

			if first {
				first = false
				if opts.HasHeader {
					continue
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
