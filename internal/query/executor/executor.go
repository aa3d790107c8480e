// Package executor evaluates parsed SQL statements against the storage
// engine: it dispatches per command kind, performs joins, filtering and
// ordering, and keeps the secondary indexes consistent with the row files.
package executor

import (
	"fmt"
	"os"

	"github.com/minirel/minirel/internal/errors"
	"github.com/minirel/minirel/internal/index"
	"github.com/minirel/minirel/internal/query/parser"
	"github.com/minirel/minirel/internal/storage"
	"github.com/minirel/minirel/pkg/types"
)

// Executor executes parsed SQL commands. It owns the in-memory index cache,
// keyed by table then column; indexes are loaded lazily on first access to
// a table so a reopened database keeps enforcing primary key checks.
type Executor struct {
	storage *storage.Engine
	indexes map[string]map[string]*index.Index
}

// New creates an executor over the given storage engine.
func New(eng *storage.Engine) *Executor {
	return &Executor{
		storage: eng,
		indexes: make(map[string]map[string]*index.Index),
	}
}

// Execute dispatches a parsed statement and returns its result.
func (e *Executor) Execute(stmt parser.Statement) (*QueryResult, error) {
	switch s := stmt.(type) {
	case *parser.CreateTableStatement:
		return e.executeCreateTable(s)
	case *parser.InsertStatement:
		return e.executeInsert(s)
	case *parser.SelectStatement:
		return e.executeSelect(s)
	case *parser.UpdateStatement:
		return e.executeUpdate(s)
	case *parser.DeleteStatement:
		return e.executeDelete(s)
	case *parser.DropTableStatement:
		return e.executeDropTable(s)
	default:
		return nil, errors.NewInternalError(
			fmt.Sprintf("unsupported command type: %T", stmt), nil)
	}
}

// executeCreateTable builds and saves the schema, creates an empty row
// file, and creates an empty index for every PK or UNIQUE column.
func (e *Executor) executeCreateTable(stmt *parser.CreateTableStatement) (*QueryResult, error) {
	columns := make([]*types.Column, len(stmt.Columns))
	for i, def := range stmt.Columns {
		columns[i] = &types.Column{
			Name:       def.Name,
			Type:       def.Type,
			Length:     def.Length,
			PrimaryKey: def.PrimaryKey,
			Unique:     def.Unique || def.PrimaryKey,
			Nullable:   !def.NotNull,
		}
	}
	schema := types.NewTableSchema(stmt.Table, columns)

	if err := e.storage.SaveSchema(stmt.Table, schema); err != nil {
		return nil, err
	}
	if err := e.storage.CreateTableFile(stmt.Table); err != nil {
		return nil, err
	}

	e.indexes[stmt.Table] = make(map[string]*index.Index)
	for _, col := range schema.IndexedColumns() {
		if err := e.createIndex(stmt.Table, col); err != nil {
			return nil, err
		}
	}

	return &QueryResult{Rowcount: 0}, nil
}

// createIndex builds an index over existing rows and saves it.
func (e *Executor) createIndex(table, column string) error {
	if _, ok := e.indexes[table]; !ok {
		e.indexes[table] = make(map[string]*index.Index)
	}

	ix := index.New(table, column)
	e.indexes[table][column] = ix

	rows, err := e.storage.ReadRows(table)
	if err != nil {
		return err
	}
	ix.Rebuild(rows)
	return ix.Save(e.storage)
}

// indexesFor returns the index set for a table, loading or rebuilding the
// indexes of every PK/UNIQUE column on first access.
func (e *Executor) indexesFor(table string, schema *types.TableSchema) (map[string]*index.Index, error) {
	if idxs, ok := e.indexes[table]; ok {
		return idxs, nil
	}

	idxs := make(map[string]*index.Index)
	e.indexes[table] = idxs

	indexed := schema.IndexedColumns()
	if len(indexed) == 0 {
		return idxs, nil
	}

	var rows []*types.Row
	var rowsLoaded bool
	for _, col := range indexed {
		ix := index.New(table, col)
		if fileExists(e.storage.IndexPath(table, col)) {
			if err := ix.Load(e.storage); err != nil {
				return nil, err
			}
		} else {
			if !rowsLoaded {
				var err error
				if rows, err = e.storage.ReadRows(table); err != nil {
					return nil, err
				}
				rowsLoaded = true
			}
			ix.Rebuild(rows)
			if err := ix.Save(e.storage); err != nil {
				return nil, err
			}
		}
		idxs[col] = ix
	}
	return idxs, nil
}

// executeInsert validates the row, enforces key uniqueness, appends the
// row, and updates every index that covers a value in the row.
func (e *Executor) executeInsert(stmt *parser.InsertStatement) (*QueryResult, error) {
	schema, err := e.storage.LoadSchema(stmt.Table)
	if err != nil {
		return nil, err
	}

	values := make(map[string]interface{})
	if stmt.Columns == nil {
		// Positional VALUES zip against declaration order.
		names := schema.ColumnNames()
		if len(stmt.Values) != len(names) {
			return nil, errors.NewSchemaError(errors.CodeColumnCount,
				fmt.Sprintf("expected %d values, got %d", len(names), len(stmt.Values)))
		}
		for i, name := range names {
			values[name] = stmt.Values[i]
		}
	} else {
		for i, name := range stmt.Columns {
			values[name] = stmt.Values[i]
		}
	}

	if err := schema.ValidateRow(values); err != nil {
		return nil, errors.NewConstraintError(errors.CodeNotNullViolated, err.Error())
	}

	idxs, err := e.indexesFor(stmt.Table, schema)
	if err != nil {
		return nil, err
	}
	for _, col := range schema.Columns {
		if !col.PrimaryKey && !col.Unique {
			continue
		}
		v, ok := values[col.Name]
		if !ok || v == nil {
			continue
		}
		ix, ok := idxs[col.Name]
		if !ok || !ix.Contains(v) {
			continue
		}
		if col.PrimaryKey {
			return nil, errors.NewConstraintError(errors.CodeDuplicateKey,
				fmt.Sprintf("duplicate primary key value: %v", v))
		}
		return nil, errors.NewConstraintError(errors.CodeDuplicateKey,
			fmt.Sprintf("duplicate value for unique column %s: %v", col.Name, v))
	}

	rowid, err := e.storage.InsertRow(stmt.Table, values)
	if err != nil {
		return nil, err
	}

	for col, ix := range idxs {
		if v, ok := values[col]; ok && v != nil {
			ix.Add(v, rowid)
		}
	}
	for _, ix := range idxs {
		if err := ix.Save(e.storage); err != nil {
			return nil, err
		}
	}

	return &QueryResult{Rowcount: 1}, nil
}

// executeUpdate applies the SET map to every row matched by the WHERE
// condition, then rewrites the table file and rebuilds its indexes.
// The WHERE condition is evaluated with equality semantics regardless of
// the declared operator.
func (e *Executor) executeUpdate(stmt *parser.UpdateStatement) (*QueryResult, error) {
	schema, err := e.storage.LoadSchema(stmt.Table)
	if err != nil {
		return nil, err
	}

	rows, err := e.storage.ReadRows(stmt.Table)
	if err != nil {
		return nil, err
	}

	updated := 0
	for _, row := range rows {
		if !matchesEquality(row, &stmt.Where) {
			continue
		}
		for _, a := range stmt.Assignments {
			row.Values[a.Column] = a.Value
		}
		updated++
	}

	if updated > 0 {
		if err := e.storage.RewriteTable(stmt.Table, rows); err != nil {
			return nil, err
		}
		if err := e.rebuildIndexes(stmt.Table, schema); err != nil {
			return nil, err
		}
	}

	return &QueryResult{Rowcount: updated}, nil
}

// executeDelete removes every row matched by the WHERE condition (all rows
// when WHERE is absent), then rewrites the table file and rebuilds its
// indexes against the new line numbering.
func (e *Executor) executeDelete(stmt *parser.DeleteStatement) (*QueryResult, error) {
	schema, err := e.storage.LoadSchema(stmt.Table)
	if err != nil {
		return nil, err
	}

	rows, err := e.storage.ReadRows(stmt.Table)
	if err != nil {
		return nil, err
	}

	var kept []*types.Row
	deleted := 0
	for _, row := range rows {
		if stmt.Where == nil || matchesEquality(row, stmt.Where) {
			deleted++
			continue
		}
		kept = append(kept, row)
	}

	if deleted > 0 {
		if err := e.storage.RewriteTable(stmt.Table, kept); err != nil {
			return nil, err
		}
		if err := e.rebuildIndexes(stmt.Table, schema); err != nil {
			return nil, err
		}
	}

	return &QueryResult{Rowcount: deleted}, nil
}

// matchesEquality evaluates an UPDATE/DELETE condition: the column must be
// present and its value equal to the literal, whatever operator was written.
func matchesEquality(row *types.Row, cond *parser.Condition) bool {
	v, ok := row.Values[cond.Column]
	return ok && types.EqualValues(v, cond.Value)
}

// rebuildIndexes drops and repopulates every index of a table from its
// current rows, then saves them. Rewrites renumber surviving rows, so
// indexes are never patched incrementally.
func (e *Executor) rebuildIndexes(table string, schema *types.TableSchema) error {
	idxs, err := e.indexesFor(table, schema)
	if err != nil {
		return err
	}
	if len(idxs) == 0 {
		return nil
	}

	rows, err := e.storage.ReadRows(table)
	if err != nil {
		return err
	}
	for _, ix := range idxs {
		ix.Rebuild(rows)
		if err := ix.Save(e.storage); err != nil {
			return err
		}
	}
	return nil
}

// fileExists reports whether a path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// executeDropTable deletes the row file, schema file, and every index file
// for the table, and drops the in-memory index entry.
func (e *Executor) executeDropTable(stmt *parser.DropTableStatement) (*QueryResult, error) {
	schema, err := e.storage.LoadSchema(stmt.Table)
	if err != nil {
		return nil, err
	}

	if err := e.storage.RemoveTableFiles(stmt.Table); err != nil {
		return nil, err
	}
	for _, col := range schema.IndexedColumns() {
		if err := e.storage.RemoveIndexFile(stmt.Table, col); err != nil {
			return nil, err
		}
	}
	delete(e.indexes, stmt.Table)

	return &QueryResult{Rowcount: 0}, nil
}
