package parser

import (
	"fmt"
	"strings"

	"github.com/minirel/minirel/pkg/types"
)

// Statement represents one parsed SQL command. The concrete type tags the
// command kind: CreateTableStatement, InsertStatement, SelectStatement,
// UpdateStatement, DeleteStatement, or DropTableStatement.
type Statement interface {
	statementNode()
	String() string
}

// ColumnDef is a single column definition in a CREATE TABLE statement.
type ColumnDef struct {
	Name       string
	Type       types.DataType
	Length     *int
	PrimaryKey bool
	Unique     bool
	NotNull    bool
}

// String returns the SQL representation of the column definition.
func (c ColumnDef) String() string {
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
	if c.NotNull {
		sb.WriteString(" NOT NULL")
	}
	return sb.String()
}

// CreateTableStatement represents CREATE TABLE.
type CreateTableStatement struct {
	Table   string
	Columns []ColumnDef
}

func (s *CreateTableStatement) statementNode() {}

// String returns the SQL representation of the statement.
func (s *CreateTableStatement) String() string {
	defs := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		defs[i] = c.String()
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", s.Table, strings.Join(defs, ", "))
}

// InsertStatement represents INSERT INTO. A nil Columns slice means the
// positional form: values zip against schema declaration order.
type InsertStatement struct {
	Table   string
	Columns []string
	Values  []interface{}
}

func (s *InsertStatement) statementNode() {}

// String returns the SQL representation of the statement.
func (s *InsertStatement) String() string {
	vals := make([]string, len(s.Values))
	for i, v := range s.Values {
		vals[i] = literalString(v)
	}
	if s.Columns == nil {
		return fmt.Sprintf("INSERT INTO %s VALUES (%s)", s.Table, strings.Join(vals, ", "))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.Table, strings.Join(s.Columns, ", "), strings.Join(vals, ", "))
}

// JoinType identifies the join variant.
type JoinType string

const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
)

// JoinClause is a two-table equi-join. The ON clause references the two
// tables exactly in declared order.
type JoinClause struct {
	Type        JoinType
	Left        string
	Right       string
	LeftColumn  string
	RightColumn string
}

// String returns the SQL representation of the join.
func (j *JoinClause) String() string {
	return fmt.Sprintf("%s %s JOIN %s ON %s.%s = %s.%s",
		j.Left, j.Type, j.Right, j.Left, j.LeftColumn, j.Right, j.RightColumn)
}

// FromClause is either a single table or a two-table join.
type FromClause struct {
	Table string
	Join  *JoinClause
}

// String returns the SQL representation of the FROM clause.
func (f *FromClause) String() string {
	if f.Join != nil {
		return f.Join.String()
	}
	return f.Table
}

// Connective joins the conditions of a WHERE clause. Conjunction and
// disjunction are flat: they are never nested or mixed.
type Connective string

const (
	ConnectiveNone Connective = ""
	ConnectiveAnd  Connective = "AND"
	ConnectiveOr   Connective = "OR"
)

// Condition is a single comparison: <column> <op> <literal>. For IN the
// literal list is carried in Values.
type Condition struct {
	Column   string
	Operator string
	Value    interface{}
	Values   []interface{}
}

// String returns the SQL representation of the condition.
func (c Condition) String() string {
	if c.Operator == "IN" {
		vals := make([]string, len(c.Values))
		for i, v := range c.Values {
			vals[i] = literalString(v)
		}
		return fmt.Sprintf("%s IN (%s)", c.Column, strings.Join(vals, ", "))
	}
	return fmt.Sprintf("%s %s %s", c.Column, c.Operator, literalString(c.Value))
}

// WhereClause is a flat list of conditions joined by one connective.
// A single condition has ConnectiveNone.
type WhereClause struct {
	Connective Connective
	Conditions []Condition
}

// String returns the SQL representation of the WHERE clause.
func (w *WhereClause) String() string {
	if len(w.Conditions) == 1 {
		return w.Conditions[0].String()
	}
	parts := make([]string, len(w.Conditions))
	for i, c := range w.Conditions {
		parts[i] = c.String()
	}
	return strings.Join(parts, " "+string(w.Connective)+" ")
}

// SelectStatement represents SELECT. Columns holds "*" or lower-cased
// selectors, optionally qualified as "table.column".
type SelectStatement struct {
	Columns []string
	From    *FromClause
	Where   *WhereClause
	OrderBy []string
}

func (s *SelectStatement) statementNode() {}

// String returns the SQL representation of the statement.
func (s *SelectStatement) String() string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(s.Columns, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(s.From.String())
	if s.Where != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(s.Where.String())
	}
	if len(s.OrderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(s.OrderBy, ", "))
	}
	return sb.String()
}

// Assignment is one column = value pair in an UPDATE SET clause.
type Assignment struct {
	Column string
	Value  interface{}
}

// UpdateStatement represents UPDATE. The WHERE clause is mandatory and
// holds exactly one condition.
type UpdateStatement struct {
	Table       string
	Assignments []Assignment
	Where       Condition
}

func (s *UpdateStatement) statementNode() {}

// String returns the SQL representation of the statement.
func (s *UpdateStatement) String() string {
	sets := make([]string, len(s.Assignments))
	for i, a := range s.Assignments {
		sets[i] = fmt.Sprintf("%s = %s", a.Column, literalString(a.Value))
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s", s.Table, strings.Join(sets, ", "), s.Where.String())
}

// DeleteStatement represents DELETE FROM. A nil Where matches every row.
type DeleteStatement struct {
	Table string
	Where *Condition
}

func (s *DeleteStatement) statementNode() {}

// String returns the SQL representation of the statement.
func (s *DeleteStatement) String() string {
	if s.Where == nil {
		return fmt.Sprintf("DELETE FROM %s", s.Table)
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s", s.Table, s.Where.String())
}

// DropTableStatement represents DROP TABLE.
type DropTableStatement struct {
	Table string
}

func (s *DropTableStatement) statementNode() {}

// String returns the SQL representation of the statement.
func (s *DropTableStatement) String() string {
	return fmt.Sprintf("DROP TABLE %s", s.Table)
}

// literalString renders a literal value as SQL.
func literalString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	default:
		return types.FormatValue(v)
	}
}
