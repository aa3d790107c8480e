package executor

import (
	"strings"

	"github.com/spaolacci/murmur3"

	"github.com/minirel/minirel/internal/query/parser"
	"github.com/minirel/minirel/pkg/types"
)

// joinedRow pairs one row from each side of a join. Either side may be nil
// for outer joins.
type joinedRow struct {
	left  *types.Row
	right *types.Row
}

// executeJoinSelect performs a two-table hash join, then filters, projects,
// and orders the joined records.
func (e *Executor) executeJoinSelect(stmt *parser.SelectStatement) (*QueryResult, error) {
	join := stmt.From.Join

	leftSchema, err := e.storage.LoadSchema(join.Left)
	if err != nil {
		return nil, err
	}
	rightSchema, err := e.storage.LoadSchema(join.Right)
	if err != nil {
		return nil, err
	}

	leftRows, err := e.storage.ReadRows(join.Left)
	if err != nil {
		return nil, err
	}
	rightRows, err := e.storage.ReadRows(join.Right)
	if err != nil {
		return nil, err
	}

	var joined []joinedRow
	switch join.Type {
	case parser.JoinInner:
		joined = innerJoin(leftRows, rightRows, join.LeftColumn, join.RightColumn)
	case parser.JoinLeft:
		joined = leftJoin(leftRows, rightRows, join.LeftColumn, join.RightColumn)
	case parser.JoinRight:
		joined = rightJoin(leftRows, rightRows, join.LeftColumn, join.RightColumn)
	}

	// Filter against a merged map carrying both qualified and bare keys.
	var filtered []joinedRow
	if stmt.Where == nil {
		filtered = joined
	} else {
		for _, jr := range joined {
			values := mergeJoinedValues(jr, join.Left, join.Right)
			ok, err := evaluateWhere(values, stmt.Where)
			if err != nil {
				return nil, err
			}
			if ok {
				filtered = append(filtered, jr)
			}
		}
	}

	columns := stmt.Columns
	if len(columns) == 1 && columns[0] == "*" {
		columns = nil
		for _, col := range leftSchema.ColumnNames() {
			columns = append(columns, join.Left+"."+col)
		}
		for _, col := range rightSchema.ColumnNames() {
			columns = append(columns, join.Right+"."+col)
		}
	}

	results := projectJoined(filtered, stmt.Columns, join, leftSchema, rightSchema)
	applyOrderBy(results, stmt.OrderBy)

	return &QueryResult{Columns: columns, Rows: results, Rowcount: len(results)}, nil
}

// hashTable is the build side of a hash join: rows bucketed by the murmur3
// hash of their key value's canonical string form. Bucket entries still
// verify value equality, so hash collisions cannot produce false matches.
type hashTable map[uint64][]*types.Row

// hashValue hashes a non-nil join key value.
func hashValue(v interface{}) uint64 {
	return murmur3.Sum64([]byte(types.FormatValue(v)))
}

// buildHashTable indexes rows by key column. Rows with a null or absent
// key never enter the table and therefore never match.
func buildHashTable(rows []*types.Row, key string) hashTable {
	ht := make(hashTable)
	for _, row := range rows {
		v, ok := row.Values[key]
		if !ok || v == nil {
			continue
		}
		h := hashValue(v)
		ht[h] = append(ht[h], row)
	}
	return ht
}

// probe returns the rows whose key value equals v.
func (ht hashTable) probe(v interface{}, key string) []*types.Row {
	var matches []*types.Row
	for _, row := range ht[hashValue(v)] {
		if types.EqualValues(row.Values[key], v) {
			matches = append(matches, row)
		}
	}
	return matches
}

// innerJoin emits one joined record per matching left/right pair.
func innerJoin(leftRows, rightRows []*types.Row, leftKey, rightKey string) []joinedRow {
	ht := buildHashTable(rightRows, rightKey)

	var joined []joinedRow
	for _, left := range leftRows {
		v, ok := left.Values[leftKey]
		if !ok || v == nil {
			continue
		}
		for _, right := range ht.probe(v, rightKey) {
			joined = append(joined, joinedRow{left: left, right: right})
		}
	}
	return joined
}

// leftJoin is innerJoin plus a {left, nil} record for each unmatched left row.
func leftJoin(leftRows, rightRows []*types.Row, leftKey, rightKey string) []joinedRow {
	ht := buildHashTable(rightRows, rightKey)

	var joined []joinedRow
	for _, left := range leftRows {
		var matches []*types.Row
		if v, ok := left.Values[leftKey]; ok && v != nil {
			matches = ht.probe(v, rightKey)
		}
		if len(matches) == 0 {
			joined = append(joined, joinedRow{left: left})
			continue
		}
		for _, right := range matches {
			joined = append(joined, joinedRow{left: left, right: right})
		}
	}
	return joined
}

// rightJoin swaps the inputs, runs a left join, and swaps each record back.
func rightJoin(leftRows, rightRows []*types.Row, leftKey, rightKey string) []joinedRow {
	joined := leftJoin(rightRows, leftRows, rightKey, leftKey)
	for i := range joined {
		joined[i].left, joined[i].right = joined[i].right, joined[i].left
	}
	return joined
}

// mergeJoinedValues flattens a joined record into one map holding both
// qualified and bare keys for every column. When the tables share a column
// name, right's value overwrites the bare key.
func mergeJoinedValues(jr joinedRow, leftTable, rightTable string) map[string]interface{} {
	values := make(map[string]interface{})
	if jr.left != nil {
		for k, v := range jr.left.Values {
			values[leftTable+"."+k] = v
			values[k] = v
		}
	}
	if jr.right != nil {
		for k, v := range jr.right.Values {
			values[rightTable+"."+k] = v
			values[k] = v
		}
	}
	return values
}

// projectJoined renders joined records into result rows. A * projection
// emits every column of both tables qualified as <table>.<column>;
// explicit selectors read from the matching side, with bare names
// searching left first, then right.
func projectJoined(joined []joinedRow, columns []string, join *parser.JoinClause,
	leftSchema, rightSchema *types.TableSchema) []map[string]interface{} {

	star := len(columns) == 1 && columns[0] == "*"

	results := make([]map[string]interface{}, 0, len(joined))
	for _, jr := range joined {
		out := make(map[string]interface{})

		if star {
			for _, col := range leftSchema.ColumnNames() {
				out[join.Left+"."+col] = sideValue(jr.left, col)
			}
			for _, col := range rightSchema.ColumnNames() {
				out[join.Right+"."+col] = sideValue(jr.right, col)
			}
			results = append(results, out)
			continue
		}

		for _, sel := range columns {
			if table, col, found := strings.Cut(sel, "."); found {
				switch table {
				case join.Left:
					out[sel] = sideValue(jr.left, col)
				case join.Right:
					out[sel] = sideValue(jr.right, col)
				default:
					out[sel] = nil
				}
				continue
			}
			if jr.left != nil && jr.left.Has(sel) {
				out[sel] = jr.left.Values[sel]
			} else if jr.right != nil && jr.right.Has(sel) {
				out[sel] = jr.right.Values[sel]
			} else {
				out[sel] = nil
			}
		}
		results = append(results, out)
	}
	return results
}

// sideValue reads a column from one side of a joined record, nil when the
// side is absent.
func sideValue(row *types.Row, col string) interface{} {
	if row == nil {
		return nil
	}
	return row.Values[col]
}
