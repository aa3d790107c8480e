package executor

// QueryResult is the uniform result shape returned by every command.
// Rows is nil for commands that do not return a result set; Rowcount is
// the number of rows returned or affected. Columns preserves the
// projection order that row maps cannot.
type QueryResult struct {
	Columns  []string                 `json:"columns,omitempty"`
	Rows     []map[string]interface{} `json:"rows"`
	Rowcount int                      `json:"rowcount"`
}
