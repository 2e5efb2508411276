// Package ingest reads the player CSV tables and turns their rows into the
// values the chart renderers consume.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Table is a CSV table addressed by header name.
type Table struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// NewTable builds a table from a header and rows. Rows shorter than the
// header read as empty cells.
func NewTable(header []string, rows [][]string) *Table {
	t := &Table{Header: make([]string, len(header)), Rows: rows, index: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(h)
		t.Header[i] = h
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	return t
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Has reports whether the table has a column named col.
func (t *Table) Has(col string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[col]
	return ok
}

// Cell returns the trimmed value of col in row, or "" when absent.
func (t *Table) Cell(row int, col string) string {
	if t == nil || row < 0 || row >= len(t.Rows) {
		return ""
	}
	i, ok := t.index[col]
	if !ok || i >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][i])
}

// Decode parses CSV from r. A leading UTF-8 byte order mark is dropped.
func Decode(r io.Reader) (*Table, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return NewTable(nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrReadTable, err)
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadTable, err)
		}
		rows = append(rows, rec)
	}
	return NewTable(header, rows), nil
}

// ReadFile loads the table at path. A missing file is an empty table.
func ReadFile(ctx context.Context, path string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewTable(nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadTable, path, err)
	}
	defer f.Close()

	t, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
