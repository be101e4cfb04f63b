package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Row is one CSV record with header-aware access to its cells.
type Row struct {
	columns map[string]int
	cells   []string
}

// Field returns the cell under the first alias whose column exists in the
// header. A column that is present but holds an empty cell is an empty
// value, not a fallthrough to the next alias.
func (r Row) Field(aliases ...string) string {
	for _, name := range aliases {
		if idx, ok := r.columns[name]; ok {
			return r.cells[idx]
		}
	}
	return ""
}

// rowReader streams CSV records from one source artifact. It never loads
// the artifact whole; memory is bounded by the batch accumulator
// downstream.
type rowReader struct {
	csv     *csv.Reader
	columns map[string]int
}

// newRowReader wraps r in a BOM-stripping decoder (some dump releases carry
// a UTF-8 or UTF-16 byte-order mark that would otherwise corrupt the first
// header cell) and consumes the header row. Header names are lowercased and
// trimmed once; duplicate names keep their first column.
func newRowReader(r io.Reader) (*rowReader, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.LazyQuotes = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty artifact: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	return &rowReader{csv: cr, columns: columns}, nil
}

// Next returns the following row, or io.EOF after the last one. Any other
// error means a malformed record (quote damage, field-count mismatch) and
// is fatal for the table's load.
func (r *rowReader) Next() (Row, error) {
	cells, err := r.csv.Read()
	if err != nil {
		return Row{}, err
	}
	return Row{columns: r.columns, cells: cells}, nil
}
