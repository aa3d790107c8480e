// Package types provides the core data model for the minirel engine:
// column types, table schemas, rows, and value semantics.
package types

import (
	"fmt"
	"strings"
)

// DataType is the closed set of column types supported by the engine.
// The string value is the uppercase short form persisted in schema files.
type DataType string

const (
	TypeInteger DataType = "INT"
	TypeVarchar DataType = "VARCHAR"
	TypeBoolean DataType = "BOOLEAN"
	// TypeDate is accepted by the schema but stored and compared as a string.
	TypeDate DataType = "DATE"
)

// ParseDataType converts a persisted dtype string into a DataType.
// Unknown types are rejected.
func ParseDataType(s string) (DataType, error) {
	switch DataType(strings.ToUpper(s)) {
	case TypeInteger:
		return TypeInteger, nil
	case TypeVarchar:
		return TypeVarchar, nil
	case TypeBoolean:
		return TypeBoolean, nil
	case TypeDate:
		return TypeDate, nil
	default:
		return "", fmt.Errorf("unknown data type: %s", s)
	}
}

// Column describes a single column of a table.
type Column struct {
	// Name is the lower-cased column identifier.
	Name string `json:"name"`

	// Type is the column data type.
	Type DataType `json:"dtype"`

	// Length is the declared length, only meaningful for VARCHAR.
	Length *int `json:"length"`

	// PrimaryKey marks the column as part of the primary key.
	PrimaryKey bool `json:"primary_key"`

	// Unique is implied true when PrimaryKey is set.
	Unique bool `json:"unique"`

	// Nullable is false iff NOT NULL appeared in the declaration.
	Nullable bool `json:"nullable"`
}

// String renders the column as it would appear in a CREATE TABLE statement.
func (c *Column) String() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	sb.WriteByte(' ')
	sb.WriteString(string(c.Type))
	if c.Length != nil {
		fmt.Fprintf(&sb, "(%d)", *c.Length)
	}
	if c.PrimaryKey {
		sb.WriteString(" PRIMARY KEY")
	} else if c.Unique {
		sb.WriteString(" UNIQUE")
	}
	if !c.Nullable {
		sb.WriteString(" NOT NULL")
	}
	return sb.String()
}

// TableSchema is a table name plus its ordered column list. Order matters:
// positional INSERT zips values against declaration order, and encoded rows
// carry one field per column in this order.
type TableSchema struct {
	Name    string    `json:"name"`
	Columns []*Column `json:"columns"`
}

// NewTableSchema creates a schema from an ordered column list.
func NewTableSchema(name string, columns []*Column) *TableSchema {
	return &TableSchema{Name: name, Columns: columns}
}

// Column returns the column with the given name, or nil.
func (s *TableSchema) Column(name string) *Column {
	for _, c := range s.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ColumnNames returns the column names in declaration order.
func (s *TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// PrimaryKey returns the names of all primary key columns in declaration order.
func (s *TableSchema) PrimaryKey() []string {
	var pk []string
	for _, c := range s.Columns {
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	return pk
}

// IndexedColumns returns the names of all columns that carry an index,
// i.e. every PRIMARY KEY or UNIQUE column.
func (s *TableSchema) IndexedColumns() []string {
	var cols []string
	for _, c := range s.Columns {
		if c.PrimaryKey || c.Unique {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// ValidateRow checks a row mapping against the schema: every non-nullable
// column must be present. Type checking is not performed.
func (s *TableSchema) ValidateRow(values map[string]interface{}) error {
	for _, c := range s.Columns {
		if c.Nullable {
			continue
		}
		if _, ok := values[c.Name]; !ok {
			return fmt.Errorf("column %s may not be null", c.Name)
		}
	}
	return nil
}

// String renders the schema for human consumption.
func (s *TableSchema) String() string {
	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = c.String()
	}
	return fmt.Sprintf("Table: %s\n  %s", s.Name, strings.Join(cols, "\n  "))
}
