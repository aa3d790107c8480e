// Package engine provides the database façade: a storage engine bound to a
// query executor behind a single Execute entry point.
package engine

import (
	"github.com/minirel/minirel/internal/query/executor"
	"github.com/minirel/minirel/internal/query/parser"
	"github.com/minirel/minirel/internal/storage"
	"github.com/minirel/minirel/pkg/types"
)

// Database is the main database interface. Each Execute call is a blocking
// read-mutate-write cycle; callers are expected to serialize access per
// database instance.
type Database struct {
	storage  *storage.Engine
	executor *executor.Executor
}

// Open opens (or creates) a database directory. Opening the same path
// twice is idempotent.
func Open(dbPath string) (*Database, error) {
	eng, err := storage.NewEngine(dbPath)
	if err != nil {
		return nil, err
	}
	return &Database{
		storage:  eng,
		executor: executor.New(eng),
	}, nil
}

// Path returns the database directory.
func (db *Database) Path() string {
	return db.storage.Path()
}

// Execute parses and executes one SQL statement.
func (db *Database) Execute(sql string) (*executor.QueryResult, error) {
	stmt, err := parser.Parse(sql)
	if err != nil {
		return nil, err
	}
	return db.executor.Execute(stmt)
}

// TableInfo describes one table for listing surfaces.
type TableInfo struct {
	Name     string `json:"name"`
	RowCount int    `json:"row_count"`
}

// ListTables returns every table with its current row count.
func (db *Database) ListTables() ([]TableInfo, error) {
	names, err := db.storage.ListTables()
	if err != nil {
		return nil, err
	}
	infos := make([]TableInfo, 0, len(names))
	for _, name := range names {
		rows, err := db.storage.ReadRows(name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, TableInfo{Name: name, RowCount: len(rows)})
	}
	return infos, nil
}

// Schema returns the schema of one table.
func (db *Database) Schema(table string) (*types.TableSchema, error) {
	return db.storage.LoadSchema(table)
}

// Close releases the database. Currently a no-op, reserved for future use.
func (db *Database) Close() error {
	return nil
}
