// Package table provides the shared in-memory tabular representation used
// by the RivalIQ client, the mailbox agent, and the warehouse sink: an
// ordered sequence of named columns and rows of string cells. Typing is
// deferred to consumers; everything downstream of the remote APIs is text.
package table

import "fmt"

// Table holds parsed tabular data. Columns are ordered; every row has
// exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates an empty table with the given column names.
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// ColumnIndex returns the position of the named column, or -1 when the
// column does not exist. Remote services may add or reorder columns, so
// callers should locate columns by name rather than position.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Append adds a row to the table. The row must have one cell per column.
func (t *Table) Append(row []string) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf(
			"row has %d cells, table has %d columns", len(row), len(t.Columns),
		)
	}
	t.Rows = append(t.Rows, row)
	return nil
}
