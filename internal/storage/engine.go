// Package storage implements the durable per-table layout of a minirel
// database: a schema file, a row file, and one index file per indexed
// column, all inside a single database directory.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minirel/minirel/internal/errors"
	"github.com/minirel/minirel/pkg/types"
)

// Engine is the file-backed storage engine. It identifies rows by their
// 1-based line number in the table file; any full rewrite renumbers
// surviving rows.
type Engine struct {
	dbPath string
}

// NewEngine opens (or creates) a database directory.
func NewEngine(dbPath string) (*Engine, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCategoryStorage, errors.CodeWriteFailed,
			"failed to create database directory", err)
	}
	return &Engine{dbPath: dbPath}, nil
}

// Path returns the database directory.
func (e *Engine) Path() string {
	return e.dbPath
}

// TablePath returns the row file path for a table.
func (e *Engine) TablePath(table string) string {
	return filepath.Join(e.dbPath, table+".tbl")
}

// SchemaPath returns the schema file path for a table.
func (e *Engine) SchemaPath(table string) string {
	return filepath.Join(e.dbPath, table+".schema")
}

// IndexPath returns the index file path for a table column.
func (e *Engine) IndexPath(table, column string) string {
	return filepath.Join(e.dbPath, fmt.Sprintf("%s_%s.idx", table, column))
}

// SaveSchema persists a table schema, pretty-printed, overwriting any
// previous version.
func (e *Engine) SaveSchema(table string, schema *types.TableSchema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return errors.NewInternalError("failed to encode schema", err)
	}
	if err := os.WriteFile(e.SchemaPath(table), data, 0644); err != nil {
		return errors.Wrap(errors.ErrCategoryStorage, errors.CodeWriteFailed,
			"failed to write schema file", err)
	}
	return nil
}

// LoadSchema reads a table schema. A missing schema file means the table
// does not exist.
func (e *Engine) LoadSchema(table string) (*types.TableSchema, error) {
	data, err := os.ReadFile(e.SchemaPath(table))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewTableNotFound(table)
		}
		return nil, errors.Wrap(errors.ErrCategoryStorage, errors.CodeReadFailed,
			"failed to read schema file", err)
	}

	var schema types.TableSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, errors.Wrap(errors.ErrCategorySchema, errors.CodeInvalidSchema,
			"failed to decode schema file", err)
	}
	for _, col := range schema.Columns {
		dtype, err := types.ParseDataType(string(col.Type))
		if err != nil {
			return nil, errors.NewSchemaError(errors.CodeUnknownType, err.Error())
		}
		col.Type = dtype
	}
	return &schema, nil
}

// TableExists reports whether a table's schema file is present.
func (e *Engine) TableExists(table string) bool {
	_, err := os.Stat(e.SchemaPath(table))
	return err == nil
}

// CreateTableFile creates an empty row file for a newly created table.
func (e *Engine) CreateTableFile(table string) error {
	f, err := os.Create(e.TablePath(table))
	if err != nil {
		return errors.Wrap(errors.ErrCategoryStorage, errors.CodeWriteFailed,
			"failed to create table file", err)
	}
	return f.Close()
}

// InsertRow appends one encoded row and returns its rowid, the 1-based
// line count after the append. The line count is taken before the append
// in a single read pass.
func (e *Engine) InsertRow(table string, values map[string]interface{}) (int64, error) {
	schema, err := e.LoadSchema(table)
	if err != nil {
		return 0, err
	}

	path := e.TablePath(table)
	existing, err := countLines(path)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCategoryStorage, errors.CodeReadFailed,
			"failed to count table rows", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCategoryStorage, errors.CodeWriteFailed,
			"failed to open table file", err)
	}
	defer f.Close()

	if _, err := f.WriteString(EncodeRow(schema, values) + "\n"); err != nil {
		return 0, errors.Wrap(errors.ErrCategoryStorage, errors.CodeWriteFailed,
			"failed to append row", err)
	}
	return existing + 1, nil
}

// ReadRows returns every non-blank line of the table file parsed under the
// current schema, with 1-based line numbers as rowids. A missing row file
// (but present schema) yields no rows.
func (e *Engine) ReadRows(table string) ([]*types.Row, error) {
	schema, err := e.LoadSchema(table)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(e.TablePath(table))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCategoryStorage, errors.CodeReadFailed,
			"failed to open table file", err)
	}
	defer f.Close()

	var rows []*types.Row
	scanner := bufio.NewScanner(f)
	var lineNum int64
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		values, err := DecodeRow(schema, line)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCategoryStorage, errors.CodeReadFailed,
				fmt.Sprintf("corrupt row at line %d of %s", lineNum, table), err)
		}
		rows = append(rows, types.NewRow(values, lineNum))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCategoryStorage, errors.CodeReadFailed,
			"failed to read table file", err)
	}
	return rows, nil
}

// DeleteRow rewrites the table file without the given line.
func (e *Engine) DeleteRow(table string, rowid int64) error {
	rows, err := e.ReadRows(table)
	if err != nil {
		return err
	}
	kept := rows[:0]
	for _, r := range rows {
		if r.RowID != rowid {
			kept = append(kept, r)
		}
	}
	return e.RewriteTable(table, kept)
}

// RewriteTable replaces the table file with the given rows. Surviving rows
// are renumbered by line position; callers must rebuild indexes afterwards.
func (e *Engine) RewriteTable(table string, rows []*types.Row) error {
	schema, err := e.LoadSchema(table)
	if err != nil {
		return err
	}

	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(EncodeRow(schema, r.Values))
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(e.TablePath(table), []byte(sb.String()), 0644); err != nil {
		return errors.Wrap(errors.ErrCategoryStorage, errors.CodeWriteFailed,
			"failed to rewrite table file", err)
	}
	return nil
}

// RemoveTableFiles deletes the row file and schema file for a table.
// Missing files are ignored.
func (e *Engine) RemoveTableFiles(table string) error {
	for _, path := range []string{e.TablePath(table), e.SchemaPath(table)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCategoryStorage, errors.CodeWriteFailed,
				"failed to remove table file", err)
		}
	}
	return nil
}

// RemoveIndexFile deletes the index file for a table column, ignoring a
// missing file.
func (e *Engine) RemoveIndexFile(table, column string) error {
	if err := os.Remove(e.IndexPath(table, column)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCategoryStorage, errors.CodeWriteFailed,
			"failed to remove index file", err)
	}
	return nil
}

// ListTables returns the name of every table with a schema file present,
// in schema file name order.
func (e *Engine) ListTables() ([]string, error) {
	entries, err := os.ReadDir(e.dbPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCategoryStorage, errors.CodeReadFailed,
			"failed to list database directory", err)
	}
	var tables []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(entry.Name(), ".schema"); ok {
			tables = append(tables, name)
		}
	}
	return tables, nil
}

// countLines counts newline-terminated lines in a file. A missing file
// counts as zero lines.
func countLines(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	var count int64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}
