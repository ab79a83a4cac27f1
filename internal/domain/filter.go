package domain

import "fmt"

// FilterRunning keeps the rows whose activity_type is exactly "Running".
func FilterRunning(ds Dataset) (Dataset, error) {
	return filterEquals(ds, ActivityTypeColumn, RunningActivity)
}

// filterEquals retains rows where column equals value byte for byte. Column order,
// row order and field values are preserved; the row slices are shared with ds.
// Source records where each retained row sat in the input.
func filterEquals(ds Dataset, column, value string) (Dataset, error) {
	idx := ds.ColumnIndex(column)
	if idx < 0 {
		return Dataset{}, fmt.Errorf("%w: %q", ErrMissingColumn, column)
	}

	out := Dataset{
		Columns: append([]string(nil), ds.Columns...),
		Rows:    make([][]string, 0),
		Source:  make([]int, 0),
	}
	for i, row := range ds.Rows {
		if idx < len(row) && row[idx] == value {
			out.Rows = append(out.Rows, row)
			out.Source = append(out.Source, ds.SourceRow(i))
		}
	}
	return out, nil
}
