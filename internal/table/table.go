// Package table holds the raw tabular data produced by the loader before any
// bank-specific interpretation.
package table

import (
	"fmt"
	"strings"
)

// Table is a header row plus data rows. Every row has len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// New builds a Table, right-padding short rows and truncating long ones to the header width
func New(header []string, rows [][]string) *Table {
	width := len(header)
	normalized := make([][]string, 0, len(rows))
	for _, row := range rows {
		r := make([]string, width)
		copy(r, row)
		normalized = append(normalized, r)
	}
	return &Table{Header: header, Rows: normalized}
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.Header)
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the index of the column whose trimmed header equals name, or -1
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// Columns resolves several column names at once, failing on the first missing one
func (t *Table) Columns(names ...string) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	for _, name := range names {
		i := t.Column(name)
		if i < 0 {
			return nil, fmt.Errorf("missing column %q (have %q)", name, t.Header)
		}
		idx[name] = i
	}
	return idx, nil
}

// Sheet is a named table inside a workbook
type Sheet struct {
	Name  string
	Table *Table
}

// Kind tags which variant a Raw value carries
type Kind int

const (
	// SingleTable is the result of delimited-text decoding
	SingleTable Kind = iota
	// NamedTableSet is the result of spreadsheet decoding, one table per sheet
	NamedTableSet
)

func (k Kind) String() string {
	switch k {
	case SingleTable:
		return "single table"
	case NamedTableSet:
		return "named table set"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Raw is the loader's output for one file: either a single table or an
// ordered set of sheets.
type Raw struct {
	Kind   Kind
	Table  *Table
	Sheets []Sheet
}

// Single wraps a table as a SingleTable
func Single(t *Table) Raw {
	return Raw{Kind: SingleTable, Table: t}
}

// Named wraps sheets as a NamedTableSet
func Named(sheets []Sheet) Raw {
	return Raw{Kind: NamedTableSet, Sheets: sheets}
}

// First returns the single table, or the first sheet of a set
func (r Raw) First() (*Table, error) {
	switch r.Kind {
	case SingleTable:
		if r.Table == nil {
			return nil, fmt.Errorf("empty single table")
		}
		return r.Table, nil
	case NamedTableSet:
		if len(r.Sheets) == 0 || r.Sheets[0].Table == nil {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		return r.Sheets[0].Table, nil
	default:
		return nil, fmt.Errorf("unknown raw kind %s", r.Kind)
	}
}
