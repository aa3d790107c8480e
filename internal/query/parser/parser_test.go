package parser

import (
	"testing"

	"github.com/minirel/minirel/internal/errors"
	"github.com/minirel/minirel/pkg/types"
)

func TestLexer(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenType
	}{
		{
			"SELECT * FROM users",
			[]TokenType{TokenSelect, TokenStar, TokenFrom, TokenIdent, TokenEOF},
		},
		{
			"SELECT id, name FROM users WHERE id = 1",
			[]TokenType{TokenSelect, TokenIdent, TokenComma, TokenIdent, TokenFrom, TokenIdent, TokenWhere, TokenIdent, TokenEq, TokenNumber, TokenEOF},
		},
		{
			"INSERT INTO t VALUES (1, 'a', TRUE, NULL)",
			[]TokenType{TokenInsert, TokenInto, TokenIdent, TokenValues, TokenLParen, TokenNumber, TokenComma, TokenString, TokenComma, TokenTrue, TokenComma, TokenNull, TokenRParen, TokenEOF},
		},
		{
			"WHERE name LIKE 'al%'",
			[]TokenType{TokenWhere, TokenIdent, TokenLike, TokenString, TokenEOF},
		},
		{
			"a != 1 AND b <> 2",
			[]TokenType{TokenIdent, TokenNe, TokenNumber, TokenAnd, TokenIdent, TokenNe, TokenNumber, TokenEOF},
		},
	}

	for _, tt := range tests {
		lexer := NewLexer(tt.input)
		tokens := lexer.Tokenize()

		if len(tokens) != len(tt.expected) {
			t.Errorf("input %q: expected %d tokens, got %d", tt.input, len(tt.expected), len(tokens))
			continue
		}
		for i, tok := range tokens {
			if tok.Type != tt.expected[i] {
				t.Errorf("input %q: token %d: expected %s, got %s", tt.input, i, tt.expected[i], tok.Type)
			}
		}
	}
}

func TestLexer_StringEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"'plain'", "plain"},
		{"'it''s'", "it's"},
		{`"double"`, "double"},
		{`"say ""hi"""`, `say "hi"`},
		{"'a, b'", "a, b"},
	}

	for _, tt := range tests {
		tok := NewLexer(tt.input).NextToken()
		if tok.Type != TokenString {
			t.Errorf("input %q: expected STRING, got %s", tt.input, tok.Type)
			continue
		}
		if tok.Literal != tt.want {
			t.Errorf("input %q: got %q, want %q", tt.input, tok.Literal, tt.want)
		}
	}
}

func TestParseCreateTable(t *testing.T) {
	stmt, err := Parse("CREATE TABLE Users (id INT PRIMARY KEY, name VARCHAR(50) NOT NULL, active BOOL, joined DATE UNIQUE)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	create, ok := stmt.(*CreateTableStatement)
	if !ok {
		t.Fatalf("expected CreateTableStatement, got %T", stmt)
	}
	if create.Table != "users" {
		t.Errorf("table: got %q, want %q", create.Table, "users")
	}
	if len(create.Columns) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(create.Columns))
	}

	id := create.Columns[0]
	if id.Name != "id" || id.Type != types.TypeInteger || !id.PrimaryKey || !id.Unique {
		t.Errorf("unexpected id column: %+v", id)
	}

	name := create.Columns[1]
	if name.Type != types.TypeVarchar || !name.NotNull {
		t.Errorf("unexpected name column: %+v", name)
	}
	if name.Length == nil || *name.Length != 50 {
		t.Errorf("name length: got %v, want 50", name.Length)
	}

	if create.Columns[2].Type != types.TypeBoolean {
		t.Errorf("active column type: got %v", create.Columns[2].Type)
	}
	joined := create.Columns[3]
	if joined.Type != types.TypeDate || !joined.Unique || joined.PrimaryKey {
		t.Errorf("unexpected joined column: %+v", joined)
	}
}

func TestParseCreateTable_TypeAliases(t *testing.T) {
	tests := []struct {
		alias string
		want  types.DataType
	}{
		{"INT", types.TypeInteger},
		{"INTEGER", types.TypeInteger},
		{"VARCHAR", types.TypeVarchar},
		{"TEXT", types.TypeVarchar},
		{"STRING", types.TypeVarchar},
		{"BOOL", types.TypeBoolean},
		{"BOOLEAN", types.TypeBoolean},
		{"DATE", types.TypeDate},
	}

	for _, tt := range tests {
		stmt, err := Parse("CREATE TABLE t (c " + tt.alias + ")")
		if err != nil {
			t.Errorf("alias %s: unexpected error: %v", tt.alias, err)
			continue
		}
		create := stmt.(*CreateTableStatement)
		if create.Columns[0].Type != tt.want {
			t.Errorf("alias %s: got %v, want %v", tt.alias, create.Columns[0].Type, tt.want)
		}
	}
}

func TestParseCreateTable_UnknownType(t *testing.T) {
	_, err := Parse("CREATE TABLE t (c BLOB)")
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
	if errors.GetCode(err) != errors.CodeUnknownType {
		t.Errorf("expected %s, got %v", errors.CodeUnknownType, err)
	}
}

func TestParseInsert_Positional(t *testing.T) {
	stmt, err := Parse("INSERT INTO users VALUES (1, 'Alice', TRUE, NULL, -5, 3.14)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ins := stmt.(*InsertStatement)
	if ins.Table != "users" {
		t.Errorf("table: got %q", ins.Table)
	}
	if ins.Columns != nil {
		t.Errorf("expected positional insert, got columns %v", ins.Columns)
	}

	want := []interface{}{int64(1), "Alice", true, nil, int64(-5), float64(3.14)}
	if len(ins.Values) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(ins.Values))
	}
	for i, v := range want {
		if ins.Values[i] != v {
			t.Errorf("value %d: got %#v, want %#v", i, ins.Values[i], v)
		}
	}
}

func TestParseInsert_WithColumns(t *testing.T) {
	stmt, err := Parse("INSERT INTO users (ID, Name) VALUES (2, 'it''s Bob')")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ins := stmt.(*InsertStatement)
	if len(ins.Columns) != 2 || ins.Columns[0] != "id" || ins.Columns[1] != "name" {
		t.Errorf("columns: got %v", ins.Columns)
	}
	if ins.Values[1] != "it's Bob" {
		t.Errorf("quoted value: got %q", ins.Values[1])
	}
}

func TestParseInsert_CountMismatch(t *testing.T) {
	_, err := Parse("INSERT INTO users (id, name) VALUES (1)")
	if err == nil {
		t.Fatal("expected error for count mismatch")
	}
	if errors.GetCode(err) != errors.CodeColumnCount {
		t.Errorf("expected %s, got %v", errors.CodeColumnCount, err)
	}
}

func TestParseSelect_Simple(t *testing.T) {
	stmt, err := Parse("SELECT id, name FROM users WHERE id = 1 ORDER BY name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sel := stmt.(*SelectStatement)
	if len(sel.Columns) != 2 || sel.Columns[0] != "id" {
		t.Errorf("columns: got %v", sel.Columns)
	}
	if sel.From.Table != "users" || sel.From.Join != nil {
		t.Errorf("from: got %+v", sel.From)
	}
	if sel.Where == nil || len(sel.Where.Conditions) != 1 {
		t.Fatalf("where: got %+v", sel.Where)
	}
	cond := sel.Where.Conditions[0]
	if cond.Column != "id" || cond.Operator != "=" || cond.Value != int64(1) {
		t.Errorf("condition: got %+v", cond)
	}
	if len(sel.OrderBy) != 1 || sel.OrderBy[0] != "name" {
		t.Errorf("order by: got %v", sel.OrderBy)
	}
}

func TestParseSelect_Star(t *testing.T) {
	stmt, err := Parse("select * from Users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sel := stmt.(*SelectStatement)
	if len(sel.Columns) != 1 || sel.Columns[0] != "*" {
		t.Errorf("columns: got %v", sel.Columns)
	}
	if sel.From.Table != "users" {
		t.Errorf("case folding failed: got %q", sel.From.Table)
	}
}

func TestParseSelect_Join(t *testing.T) {
	stmt, err := Parse("SELECT users.name, orders.oid FROM users INNER JOIN orders ON users.id = orders.uid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sel := stmt.(*SelectStatement)
	join := sel.From.Join
	if join == nil {
		t.Fatal("expected join")
	}
	if join.Type != JoinInner || join.Left != "users" || join.Right != "orders" {
		t.Errorf("join: got %+v", join)
	}
	if join.LeftColumn != "id" || join.RightColumn != "uid" {
		t.Errorf("join keys: got %s, %s", join.LeftColumn, join.RightColumn)
	}
	if sel.Columns[0] != "users.name" || sel.Columns[1] != "orders.oid" {
		t.Errorf("qualified columns: got %v", sel.Columns)
	}
}

func TestParseSelect_JoinTableMismatch(t *testing.T) {
	_, err := Parse("SELECT * FROM users LEFT JOIN orders ON people.id = orders.uid")
	if err == nil {
		t.Fatal("expected error for mismatched ON reference")
	}
}

func TestParseSelect_JoinTypes(t *testing.T) {
	for _, jt := range []string{"INNER", "LEFT", "RIGHT"} {
		stmt, err := Parse("SELECT * FROM a " + jt + " JOIN b ON a.x = b.y")
		if err != nil {
			t.Errorf("%s join: unexpected error: %v", jt, err)
			continue
		}
		join := stmt.(*SelectStatement).From.Join
		if string(join.Type) != jt {
			t.Errorf("join type: got %s, want %s", join.Type, jt)
		}
	}
}

func TestParseWhere_Conjunction(t *testing.T) {
	stmt, err := Parse("SELECT * FROM t WHERE a = 1 AND b = 2 AND c = 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	where := stmt.(*SelectStatement).Where
	if where.Connective != ConnectiveAnd || len(where.Conditions) != 3 {
		t.Errorf("where: got %+v", where)
	}
}

func TestParseWhere_Disjunction(t *testing.T) {
	stmt, err := Parse("SELECT * FROM t WHERE a = 1 OR b = 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	where := stmt.(*SelectStatement).Where
	if where.Connective != ConnectiveOr || len(where.Conditions) != 2 {
		t.Errorf("where: got %+v", where)
	}
}

func TestParseWhere_MixedConnectives(t *testing.T) {
	_, err := Parse("SELECT * FROM t WHERE a = 1 AND b = 2 OR c = 3")
	if err == nil {
		t.Fatal("expected error for mixed AND/OR")
	}
	if errors.GetCode(err) != errors.CodeUnsupportedSyntax {
		t.Errorf("expected %s, got %v", errors.CodeUnsupportedSyntax, err)
	}
}

func TestParseWhere_Operators(t *testing.T) {
	ops := []string{"=", "!=", ">", "<", ">=", "<="}
	for _, op := range ops {
		stmt, err := Parse("SELECT * FROM t WHERE a " + op + " 1")
		if err != nil {
			t.Errorf("op %s: unexpected error: %v", op, err)
			continue
		}
		cond := stmt.(*SelectStatement).Where.Conditions[0]
		if cond.Operator != op {
			t.Errorf("op: got %s, want %s", cond.Operator, op)
		}
	}
}

func TestParseWhere_In(t *testing.T) {
	stmt, err := Parse("SELECT * FROM t WHERE id IN (1, 2, 3)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cond := stmt.(*SelectStatement).Where.Conditions[0]
	if cond.Operator != "IN" || len(cond.Values) != 3 {
		t.Errorf("condition: got %+v", cond)
	}
}

func TestParseOrderBy_DescUnsupported(t *testing.T) {
	_, err := Parse("SELECT * FROM t ORDER BY name DESC")
	if err == nil {
		t.Fatal("expected error for DESC")
	}
	if errors.GetCode(err) != errors.CodeUnsupportedSyntax {
		t.Errorf("expected %s, got %v", errors.CodeUnsupportedSyntax, err)
	}
}

func TestParseOrderBy_Qualified(t *testing.T) {
	stmt, err := Parse("SELECT * FROM a INNER JOIN b ON a.x = b.y ORDER BY B.Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sel := stmt.(*SelectStatement)
	if len(sel.OrderBy) != 1 || sel.OrderBy[0] != "b.z" {
		t.Errorf("order by: got %v", sel.OrderBy)
	}
}

func TestParseUpdate(t *testing.T) {
	stmt, err := Parse("UPDATE users SET name = 'Alicia', active = FALSE WHERE id = 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	upd := stmt.(*UpdateStatement)
	if upd.Table != "users" || len(upd.Assignments) != 2 {
		t.Errorf("update: got %+v", upd)
	}
	if upd.Assignments[0].Column != "name" || upd.Assignments[0].Value != "Alicia" {
		t.Errorf("assignment: got %+v", upd.Assignments[0])
	}
	if upd.Where.Column != "id" || upd.Where.Value != int64(1) {
		t.Errorf("where: got %+v", upd.Where)
	}
}

func TestParseUpdate_WhereRequired(t *testing.T) {
	_, err := Parse("UPDATE users SET name = 'x'")
	if err == nil {
		t.Fatal("expected error for missing WHERE")
	}
}

func TestParseDelete(t *testing.T) {
	stmt, err := Parse("DELETE FROM users WHERE id > 5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	del := stmt.(*DeleteStatement)
	if del.Table != "users" || del.Where == nil || del.Where.Operator != ">" {
		t.Errorf("delete: got %+v", del)
	}
}

func TestParseDelete_NoWhere(t *testing.T) {
	stmt, err := Parse("DELETE FROM users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stmt.(*DeleteStatement).Where != nil {
		t.Error("expected nil WHERE")
	}
}

func TestParseDropTable(t *testing.T) {
	stmt, err := Parse("DROP TABLE Users;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stmt.(*DropTableStatement).Table != "users" {
		t.Errorf("table: got %q", stmt.(*DropTableStatement).Table)
	}
}

func TestParse_UnknownStatement(t *testing.T) {
	_, err := Parse("TRUNCATE TABLE users")
	if err == nil {
		t.Fatal("expected error for unknown statement")
	}
}

func TestParse_TrailingGarbage(t *testing.T) {
	_, err := Parse("DROP TABLE users extra")
	if err == nil {
		t.Fatal("expected error for trailing input")
	}
}

func TestStatementString(t *testing.T) {
	inputs := []string{
		"SELECT id, name FROM users WHERE id = 1 ORDER BY name",
		"DELETE FROM users WHERE id = 1",
		"DROP TABLE users",
	}
	for _, input := range inputs {
		stmt, err := Parse(input)
		if err != nil {
			t.Fatalf("input %q: %v", input, err)
		}
		if stmt.String() != input {
			t.Errorf("String(): got %q, want %q", stmt.String(), input)
		}
	}
}
