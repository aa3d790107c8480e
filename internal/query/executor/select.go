package executor

import (
	"sort"
	"strings"

	"github.com/minirel/minirel/internal/query/parser"
	"github.com/minirel/minirel/pkg/types"
)

// executeSelect routes between a single-table scan and a two-table join.
func (e *Executor) executeSelect(stmt *parser.SelectStatement) (*QueryResult, error) {
	if stmt.From.Join != nil {
		return e.executeJoinSelect(stmt)
	}
	return e.executeSimpleSelect(stmt)
}

// executeSimpleSelect scans one table, filters, projects, and orders.
func (e *Executor) executeSimpleSelect(stmt *parser.SelectStatement) (*QueryResult, error) {
	table := stmt.From.Table
	schema, err := e.storage.LoadSchema(table)
	if err != nil {
		return nil, err
	}

	rows, err := e.storage.ReadRows(table)
	if err != nil {
		return nil, err
	}

	var filtered []*types.Row
	if stmt.Where == nil {
		filtered = rows
	} else {
		for _, row := range rows {
			ok, err := evaluateWhere(row.Values, stmt.Where)
			if err != nil {
				return nil, err
			}
			if ok {
				filtered = append(filtered, row)
			}
		}
	}

	selected := stmt.Columns
	if len(selected) == 1 && selected[0] == "*" {
		selected = schema.ColumnNames()
	}

	results := make([]map[string]interface{}, 0, len(filtered))
	for _, row := range filtered {
		out := make(map[string]interface{}, len(selected))
		for _, col := range selected {
			if v, ok := row.Values[col]; ok {
				out[col] = v
			} else {
				out[col] = nil
			}
		}
		results = append(results, out)
	}

	applyOrderBy(results, stmt.OrderBy)

	return &QueryResult{Columns: selected, Rows: results, Rowcount: len(results)}, nil
}

// applyOrderBy stable-sorts projected rows by the requested columns,
// ascending with nulls last. Non-null values compare as lower-cased
// strings regardless of declared type.
func applyOrderBy(rows []map[string]interface{}, orderBy []string) {
	if len(orderBy) == 0 || len(rows) <= 1 {
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, col := range orderBy {
			ai, aok := sortKey(rows[i][col])
			bj, bok := sortKey(rows[j][col])
			if aok != bok {
				return aok // non-null sorts before null
			}
			if ai != bj {
				return ai < bj
			}
		}
		return false
	})
}

// sortKey returns the lower-cased string form of a value and whether the
// value is non-null.
func sortKey(v interface{}) (string, bool) {
	if v == nil {
		return "", false
	}
	return strings.ToLower(types.FormatValue(v)), true
}
