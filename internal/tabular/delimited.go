// Package tabular parses and renders the tabular formats handled by leadkit:
// comma-delimited text, partner record markup, spreadsheet grids decoded by
// a SpreadsheetCodec, and XML Spreadsheet 2003 documents for download.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"leadkit/internal/core/domain"
)

const (
	delimiter = ','
	quote     = '"'
	bom       = "\uFEFF"
)

// Table is a parsed delimited-text document.
type Table struct {
	Header  []string
	Rows    []domain.Row
	Lines   int // non-blank data lines seen, before drops
	Dropped int // data rows discarded for a field-count mismatch
}

// TokenizeLine splits one line into fields.
//
// Quoted fields may contain delimiters, and a doubled quote inside a quoted
// field is a literal quote. A quote that is never closed runs to the end of
// the line.
func TokenizeLine(line string) []string {
	var (
		fields   []string
		buf      strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuotes && c == quote:
			if i+1 < len(line) && line[i+1] == quote {
				buf.WriteByte(quote)
				i++
			} else {
				inQuotes = false
			}
		case inQuotes:
			buf.WriteByte(c)
		case c == quote:
			inQuotes = true
		case c == delimiter:
			fields = append(fields, buf.String())
			buf.Reset()
		default:
			buf.WriteByte(c)
		}
	}
	return append(fields, buf.String())
}

// Parse splits text into a header and data rows.
//
// Line endings are normalized, blank lines and all-blank rows are skipped,
// and rows whose field count differs from the header are dropped.
func Parse(text string) (*Table, error) {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, &domain.EmptyInputError{Detail: "input is empty"}
	}

	header := TokenizeLine(lines[0])
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := &Table{Header: header}
	for _, line := range lines[1:] {
		t.add(TokenizeLine(line))
	}
	return t, nil
}

// ParseTable parses text and checks that every required header is present.
func ParseTable(text string, required []string) ([]domain.Row, error) {
	t, err := Parse(text)
	if err != nil {
		return nil, err
	}
	if missing := MissingHeaders(t.Header, required); len(missing) > 0 {
		return nil, &domain.SchemaError{Missing: missing}
	}
	if err := t.RequireData(); err != nil {
		return nil, err
	}
	return t.Rows, nil
}

// FromGrid builds a Table from already-split cells, using the first
// non-blank row as the header. It applies the same drop rules as Parse.
func FromGrid(grid [][]string) (*Table, error) {
	start := -1
	for i, cells := range grid {
		if !allBlank(cells) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, &domain.EmptyInputError{Detail: "spreadsheet is empty"}
	}

	header := make([]string, len(grid[start]))
	for i, h := range grid[start] {
		header[i] = strings.TrimSpace(h)
	}
	// Spreadsheet rows omit trailing empty cells; pad them back out.
	t := &Table{Header: header}
	for _, cells := range grid[start+1:] {
		if len(cells) < len(header) {
			padded := make([]string, len(header))
			copy(padded, cells)
			cells = padded
		}
		t.add(cells)
	}
	return t, nil
}

// RequireData fails with EmptyInputError when the table kept no data rows,
// either because there were none or because every one was dropped.
func (t *Table) RequireData() error {
	if t.Lines == 0 {
		return &domain.EmptyInputError{Detail: "input has a header but no data rows"}
	}
	if len(t.Rows) == 0 {
		return &domain.EmptyInputError{
			Detail: fmt.Sprintf("all %d data rows were dropped for a field count that does not match the header", t.Dropped),
		}
	}
	return nil
}

// add appends fields as a row, or counts it as dropped.
func (t *Table) add(fields []string) {
	if allBlank(fields) {
		return
	}
	t.Lines++
	if len(fields) != len(t.Header) {
		t.Dropped++
		return
	}
	row := make(domain.Row, len(t.Header))
	for i, key := range t.Header {
		// Duplicate header keys: the rightmost column wins.
		row[key] = fields[i]
	}
	t.Rows = append(t.Rows, row)
}

// Column returns the values of the named column, in row order.
func (t *Table) Column(key string) []string {
	out := make([]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, r[key])
	}
	return out
}

// EncodeDelimited renders a header and rows as comma-delimited text.
func EncodeDelimited(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write rows: %w", err)
	}
	return buf.Bytes(), nil
}

// splitLines normalizes line endings and returns the non-blank lines.
func splitLines(text string) []string {
	text = strings.TrimPrefix(text, bom)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func allBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
