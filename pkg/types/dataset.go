package types

import "fmt"

// Dataset is an in-memory table of survey responses: named columns of
// equal length holding nullable cells. Columns are kept in insertion order.
//
// The recode engine is the only writer (AddColumn during a calculation
// pass); every other component reads only.
type Dataset struct {
	names   []string
	columns map[string][]Value
	length  int
}

// NewDataset creates an empty dataset with the given row count.
func NewDataset(rows int) *Dataset {
	return &Dataset{
		columns: make(map[string][]Value),
		length:  rows,
	}
}

// AddColumn appends a column. The column length must match the dataset's
// row count and the name must be new.
func (d *Dataset) AddColumn(name string, values []Value) error {
	if _, exists := d.columns[name]; exists {
		return fmt.Errorf("dataset: column %q already exists", name)
	}
	if len(values) != d.length {
		return fmt.Errorf("dataset: column %q has %d rows, dataset has %d", name, len(values), d.length)
	}
	d.names = append(d.names, name)
	d.columns[name] = values
	return nil
}

// Column returns the named column, or false if it does not exist.
func (d *Dataset) Column(name string) ([]Value, bool) {
	col, ok := d.columns[name]
	return col, ok
}

// HasColumn reports whether the named column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.columns[name]
	return ok
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return d.length
}

// ColumnNames returns the column names in insertion order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.names))
	copy(names, d.names)
	return names
}

// NumColumns returns the number of columns.
func (d *Dataset) NumColumns() int {
	return len(d.names)
}
