package types

// Row is a mapping from column name to value plus the integer rowid assigned
// by the storage engine. The rowid equals the row's 1-based line position in
// the current table file; a full-table rewrite renumbers surviving rows.
//
// Values are one of: int64, float64, bool, string, or nil.
type Row struct {
	Values map[string]interface{}
	RowID  int64
}

// NewRow creates a row with the given values and rowid.
func NewRow(values map[string]interface{}, rowid int64) *Row {
	return &Row{Values: values, RowID: rowid}
}

// Get returns the value for a column, or nil when absent.
func (r *Row) Get(column string) interface{} {
	return r.Values[column]
}

// Has reports whether the row carries a value (including nil) for the column.
func (r *Row) Has(column string) bool {
	_, ok := r.Values[column]
	return ok
}
