package core

// Table is a derived, read-only result with a fixed column order.
// Cells are nil for null values.
type Table interface {
	Columns() []string
	Len() int
	Row(i int) []any
}
