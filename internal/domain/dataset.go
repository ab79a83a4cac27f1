// Package domain defines the tabular dataset model and the running-activity filter.
package domain

import "fmt"

const (
	// ActivityTypeColumn names the column the filter inspects.
	ActivityTypeColumn = "activity_type"
	// RunningActivity is the exact activity_type value retained by the filter.
	RunningActivity = "Running"
)

// Dataset is an in-memory CSV table. Every value is kept as the text found in the file.
type Dataset struct {
	Columns []string
	Rows    [][]string
	// Source holds the 1-based input data row of each entry in Rows. Nil means
	// the rows are the input rows themselves.
	Source []int
}

// Record is a single row keyed by column name.
type Record map[string]string

// Len returns the number of data rows.
func (d Dataset) Len() int {
	return len(d.Rows)
}

// ColumnIndex returns the position of name in the header, or -1 when absent.
func (d Dataset) ColumnIndex(name string) int {
	for i, col := range d.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// SourceRow returns the 1-based data row of the input file that row i came from.
func (d Dataset) SourceRow(i int) int {
	if i < len(d.Source) {
		return d.Source[i]
	}
	return i + 1
}

// Record returns row i as a column-keyed map.
func (d Dataset) Record(i int) Record {
	row := d.Rows[i]
	rec := make(Record, len(d.Columns))
	for j, col := range d.Columns {
		if j < len(row) {
			rec[col] = row[j]
		}
	}
	return rec
}

// Validate checks the header is usable and every row matches its width.
func (d Dataset) Validate() error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("%w: empty header", ErrParse)
	}
	seen := make(map[string]struct{}, len(d.Columns))
	blank := true
	for _, col := range d.Columns {
		if col != "" {
			blank = false
		}
		if _, dup := seen[col]; dup {
			return fmt.Errorf("%w: duplicate column %q", ErrParse, col)
		}
		seen[col] = struct{}{}
	}
	if blank {
		return fmt.Errorf("%w: header has no column names", ErrParse)
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Columns) {
			return fmt.Errorf("%w: row %d has %d fields, header has %d", ErrParse, i+1, len(row), len(d.Columns))
		}
	}
	return nil
}
