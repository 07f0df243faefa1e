package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"time"
)

// Kind is the inferred semantic type of a column.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
	KindDatetime
	KindCategorical
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindDatetime:
		return "datetime"
	case KindCategorical:
		return "categorical"
	default:
		return "text"
	}
}

// Column holds one typed column. Cells always carries the raw text of every
// cell ("" means missing). Nums is populated for numeric columns (NaN where
// the cell is missing or unparseable) and Times for datetime columns (zero
// time where missing).
type Column struct {
	Name  string
	Kind  Kind
	Cells []string
	Nums  []float64
	Times []time.Time
}

// NonNull returns the number of non-empty cells.
func (c *Column) NonNull() int {
	n := 0
	for _, v := range c.Cells {
		if v != "" {
			n++
		}
	}
	return n
}

// Values returns the parsed numeric values of a numeric column, skipping
// missing cells.
func (c *Column) Values() []float64 {
	out := make([]float64, 0, len(c.Nums))
	for _, v := range c.Nums {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Dataset is the in-memory tabular representation of one uploaded file.
// It is immutable after load; a new upload replaces it wholesale.
type Dataset struct {
	Name string
	cols []*Column
	rows int
}

// ColumnProfile is the per-column metadata that drives prompt suggestions.
type ColumnProfile struct {
	Name string
	Kind Kind
}

func (d *Dataset) NumRows() int { return d.rows }
func (d *Dataset) NumCols() int { return len(d.cols) }

// Columns returns the column list in file order.
func (d *Dataset) Columns() []*Column { return d.cols }

// Column returns the named column, or nil if absent.
func (d *Dataset) Column(name string) *Column {
	for _, c := range d.cols {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Profile returns name and inferred kind for every column.
func (d *Dataset) Profile() []ColumnProfile {
	out := make([]ColumnProfile, len(d.cols))
	for i, c := range d.cols {
		out[i] = ColumnProfile{Name: c.Name, Kind: c.Kind}
	}
	return out
}

// Select returns a projection of the named columns, all rows, in the order
// given. Unknown names are an error.
func (d *Dataset) Select(names []string) (*Table, error) {
	cols := make([]*Column, len(names))
	for i, n := range names {
		c := d.Column(n)
		if c == nil {
			return nil, fmt.Errorf("no such column %q", n)
		}
		cols[i] = c
	}
	t := &Table{Columns: append([]string(nil), names...)}
	for r := 0; r < d.rows; r++ {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.Cells[r]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Head returns the first n rows as a Table.
func (d *Dataset) Head(n int) *Table {
	if n < 0 || n > d.rows {
		n = d.rows
	}
	t := &Table{Columns: make([]string, len(d.cols))}
	for i, c := range d.cols {
		t.Columns[i] = c.Name
	}
	for r := 0; r < n; r++ {
		row := make([]string, len(d.cols))
		for i, c := range d.cols {
			row[i] = c.Cells[r]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Table is a rendered tabular result: plain strings, ready for the UI or a
// CSV download.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Head returns a copy limited to the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// WriteCSV writes the table as CSV with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatFloat renders a float for table cells, trimming noise.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e12 {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.4g", v)
}
