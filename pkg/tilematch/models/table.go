// Package models defines the tables that flow through the matching pipeline.
package models

// Table is a header plus string rows, as read from a worksheet or a
// delimited text file.
type Table struct {
	// Columns holds the header names in file order.
	Columns []string `json:"columns"`
	// Rows holds the data rows. Every row has len(Columns) fields.
	Rows [][]string `json:"rows"`
	// Typed holds values typed by the loader, parallel to Rows. A nil entry,
	// or a nil Typed, means the cell is typed from its text.
	Typed [][]any `json:"-"`
}

// ColumnIndex returns the position of name in Columns, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// TypedValue returns the loader-typed value of a cell, or nil.
func (t *Table) TypedValue(row, col int) any {
	if row >= len(t.Typed) || col >= len(t.Typed[row]) {
		return nil
	}
	return t.Typed[row][col]
}

// SetColumn overwrites column name with values, appending it when absent.
// The new values are typed from their text.
func (t *Table) SetColumn(name string, values []string) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		t.Columns = append(t.Columns, name)
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], values[i])
		}
		for i := range t.Typed {
			t.Typed[i] = append(t.Typed[i], nil)
		}
		return
	}
	for i := range t.Rows {
		t.Rows[i][idx] = values[i]
	}
	for i := range t.Typed {
		if idx < len(t.Typed[i]) {
			t.Typed[i][idx] = nil
		}
	}
}

// SourceTable is the user-supplied tower table after cell derivation.
type SourceTable struct {
	Table
	// CellIDs holds one cell id per row; "" marks a row without a cell.
	CellIDs []string `json:"cell_ids"`
}

// ReferenceSet is the filtered subset of the reference file.
type ReferenceSet struct {
	// Columns is the whitelisted column list in projection order.
	Columns []string `json:"columns"`
	// CellColumn names the cell-identifier column within Columns.
	CellColumn string `json:"cell_column"`
	// Rows holds the retained rows, cell id already trimmed.
	Rows [][]string `json:"rows"`
}

// CellIndex returns the position of the cell column, or -1.
func (r *ReferenceSet) CellIndex() int {
	for i, c := range r.Columns {
		if c == r.CellColumn {
			return i
		}
	}
	return -1
}

// MergedTable is the export-ready result of the left join.
type MergedTable struct {
	// Columns holds the output header.
	Columns []string `json:"columns"`
	// Rows holds typed cell values; nil is an empty cell.
	Rows [][]any `json:"rows"`
}
