package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Row maps column names to cells. A column absent from the map is missing.
type Row map[string]Value

// Table is an ordered collection of records with an ordered column header.
// Columns are not fixed; stages check presence with Has before deriving.
type Table struct {
	columns []string
	index   map[string]int
	rows    []Row
}

// ShapeError reports a table that cannot be processed at all
type ShapeError struct {
	Reason string
}

// Error implements the error interface
func (e *ShapeError) Error() string {
	return "malformed table: " + e.Reason
}

// NewTable creates an empty table with the given header
func NewTable(columns ...string) *Table {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		t.AddColumn(c)
	}
	return t
}

// Columns returns a copy of the header in order
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// NumColumns returns the header width
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Has reports whether the column is present in the header
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// HasAll reports whether every listed column is present
func (t *Table) HasAll(columns ...string) bool {
	for _, c := range columns {
		if !t.Has(c) {
			return false
		}
	}
	return true
}

// AddColumn appends a column to the header if it is not already present
func (t *Table) AddColumn(column string) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if _, ok := t.index[column]; ok {
		return
	}
	t.index[column] = len(t.columns)
	t.columns = append(t.columns, column)
}

// AppendRow adds a copy of r. Columns in r that are not in the header are
// kept so that Validate can report them.
func (t *Table) AppendRow(r Row) {
	t.rows = append(t.rows, maps.Clone(r))
}

// Get returns the cell at row i, column c
func (t *Table) Get(i int, column string) Value {
	return t.rows[i][column]
}

// Set stores a cell, adding the column to the header when needed
func (t *Table) Set(i int, column string, v Value) {
	t.AddColumn(column)
	if t.rows[i] == nil {
		t.rows[i] = make(Row)
	}
	if v.IsMissing() {
		delete(t.rows[i], column)
		return
	}
	t.rows[i][column] = v
}

// Row returns a copy of row i
func (t *Table) Row(i int) Row {
	return maps.Clone(t.rows[i])
}

// Column returns the cells of a column in row order
func (t *Table) Column(column string) []Value {
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[column]
	}
	return out
}

// SetColumn replaces a column with the given cells, adding it when absent
func (t *Table) SetColumn(column string, values []Value) {
	if len(values) != len(t.rows) {
		panic(fmt.Sprintf("domain: column %q has %d values for %d rows", column, len(values), len(t.rows)))
	}
	for i, v := range values {
		t.Set(i, column, v)
	}
	t.AddColumn(column)
}

// Clone returns a deep copy; stages work on clones and never touch their input
func (t *Table) Clone() *Table {
	out := &Table{
		columns: slices.Clone(t.columns),
		index:   maps.Clone(t.index),
		rows:    make([]Row, len(t.rows)),
	}
	if out.index == nil {
		out.index = make(map[string]int)
	}
	for i, r := range t.rows {
		out.rows[i] = maps.Clone(r)
	}
	return out
}

// Filter returns a new table holding copies of the rows for which keep is true
func (t *Table) Filter(keep func(r Row) bool) *Table {
	out := &Table{
		columns: slices.Clone(t.columns),
		index:   maps.Clone(t.index),
		rows:    make([]Row, 0, len(t.rows)),
	}
	if out.index == nil {
		out.index = make(map[string]int)
	}
	for _, r := range t.rows {
		if keep(r) {
			out.rows = append(out.rows, maps.Clone(r))
		}
	}
	return out
}

// GroupBy returns the row indices for each distinct rendering of the key
// column, in first-seen order. Rows with a missing key are not grouped.
func (t *Table) GroupBy(column string) ([]string, map[string][]int) {
	var keys []string
	groups := make(map[string][]int)
	for i, r := range t.rows {
		v := r[column]
		if v.IsMissing() {
			continue
		}
		k := v.String()
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], i)
	}
	return keys, groups
}

// SplitBy partitions the table into one table per key group, in first-seen
// order. Rows with a missing key form a trailing table of their own.
func (t *Table) SplitBy(column string) []*Table {
	keys, groups := t.GroupBy(column)
	var out []*Table
	for _, k := range keys {
		part := NewTable(t.columns...)
		for _, i := range groups[k] {
			part.AppendRow(t.rows[i])
		}
		out = append(out, part)
	}
	orphans := t.Filter(func(r Row) bool { return r[column].IsMissing() })
	if orphans.Len() > 0 {
		out = append(out, orphans)
	}
	return out
}

// Validate checks the structural shape: non-empty column names and no row
// referencing a column outside the header.
func (t *Table) Validate() error {
	if t == nil {
		return &ShapeError{Reason: "nil table"}
	}
	for _, c := range t.columns {
		if strings.TrimSpace(c) == "" {
			return &ShapeError{Reason: "empty column name"}
		}
	}
	for i, r := range t.rows {
		for c := range r {
			if !t.Has(c) {
				return &ShapeError{Reason: fmt.Sprintf("row %d has column %q outside the header", i, c)}
			}
		}
	}
	return nil
}
