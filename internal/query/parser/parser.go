package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/minirel/minirel/internal/errors"
	"github.com/minirel/minirel/pkg/types"
)

// ParseError represents a parsing error with location information.
type ParseError struct {
	Message  string
	Position int
	Token    Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: %s (got %s)", e.Position, e.Message, e.Token.Literal)
}

// dataTypes maps type names and their aliases to the canonical DataType.
var dataTypes = map[string]types.DataType{
	"INT":     types.TypeInteger,
	"INTEGER": types.TypeInteger,
	"VARCHAR": types.TypeVarchar,
	"TEXT":    types.TypeVarchar,
	"STRING":  types.TypeVarchar,
	"BOOL":    types.TypeBoolean,
	"BOOLEAN": types.TypeBoolean,
	"DATE":    types.TypeDate,
}

// Parser parses SQL statements into Statement values.
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
}

// NewParser creates a new Parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
	}
	// Read two tokens to initialize curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses one SQL statement.
func Parse(input string) (Statement, error) {
	p := NewParser(input)
	return p.ParseStatement()
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

// errorf builds a ParseError at the current token.
func (p *Parser) errorf(format string, args ...interface{}) error {
	return &ParseError{
		Message:  fmt.Sprintf(format, args...),
		Position: p.curToken.Pos,
		Token:    p.curToken,
	}
}

// expect consumes the current token if it matches, otherwise errors.
func (p *Parser) expect(t TokenType) error {
	if !p.curTokenIs(t) {
		return p.errorf("expected %s", t.String())
	}
	p.nextToken()
	return nil
}

// identifier consumes the current token as a lower-cased identifier.
func (p *Parser) identifier(what string) (string, error) {
	if !p.curTokenIs(TokenIdent) {
		return "", p.errorf("expected %s", what)
	}
	name := strings.ToLower(p.curToken.Literal)
	p.nextToken()
	return name, nil
}

// ParseStatement dispatches on the leading keyword.
func (p *Parser) ParseStatement() (Statement, error) {
	var stmt Statement
	var err error

	switch p.curToken.Type {
	case TokenCreate:
		stmt, err = p.parseCreateTable()
	case TokenInsert:
		stmt, err = p.parseInsert()
	case TokenSelect:
		stmt, err = p.parseSelect()
	case TokenUpdate:
		stmt, err = p.parseUpdate()
	case TokenDelete:
		stmt, err = p.parseDelete()
	case TokenDrop:
		stmt, err = p.parseDropTable()
	default:
		return nil, p.errorf("unsupported SQL statement")
	}
	if err != nil {
		return nil, err
	}

	// Allow a trailing semicolon, then require end of input.
	if p.curTokenIs(TokenSemicolon) {
		p.nextToken()
	}
	if !p.curTokenIs(TokenEOF) {
		return nil, p.errorf("unexpected trailing input")
	}
	return stmt, nil
}

// parseCreateTable parses CREATE TABLE <name> (<col-defs>).
func (p *Parser) parseCreateTable() (*CreateTableStatement, error) {
	p.nextToken() // CREATE
	if err := p.expect(TokenTable); err != nil {
		return nil, err
	}

	table, err := p.identifier("table name")
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	stmt := &CreateTableStatement{Table: table}
	for {
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, *col)

		if !p.curTokenIs(TokenComma) {
			break
		}
		p.nextToken()
	}

	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	if len(stmt.Columns) == 0 {
		return nil, p.errorf("expected at least one column definition")
	}
	return stmt, nil
}

// parseColumnDef parses <name> <type>[(<len>)] [PRIMARY KEY | UNIQUE] [NOT NULL].
func (p *Parser) parseColumnDef() (*ColumnDef, error) {
	name, err := p.identifier("column name")
	if err != nil {
		return nil, err
	}

	if !p.curTokenIs(TokenIdent) {
		return nil, p.errorf("expected column type")
	}
	typeName := strings.ToUpper(p.curToken.Literal)
	dtype, ok := dataTypes[typeName]
	if !ok {
		return nil, errors.NewSchemaError(errors.CodeUnknownType,
			fmt.Sprintf("unsupported data type: %s", typeName))
	}
	p.nextToken()

	col := &ColumnDef{Name: name, Type: dtype}

	// Optional length, e.g. VARCHAR(50)
	if p.curTokenIs(TokenLParen) {
		p.nextToken()
		if !p.curTokenIs(TokenNumber) {
			return nil, p.errorf("expected length")
		}
		n, err := strconv.Atoi(p.curToken.Literal)
		if err != nil {
			return nil, p.errorf("invalid length")
		}
		col.Length = &n
		p.nextToken()
		if err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
	}

	// Constraint flags in any order.
	for {
		switch p.curToken.Type {
		case TokenPrimary:
			p.nextToken()
			if err := p.expect(TokenKey); err != nil {
				return nil, err
			}
			col.PrimaryKey = true
			col.Unique = true
		case TokenUnique:
			col.Unique = true
			p.nextToken()
		case TokenNot:
			p.nextToken()
			if err := p.expect(TokenNull); err != nil {
				return nil, err
			}
			col.NotNull = true
		default:
			return col, nil
		}
	}
}

// parseInsert parses both INSERT shapes: with a column list and positional.
func (p *Parser) parseInsert() (*InsertStatement, error) {
	p.nextToken() // INSERT
	if err := p.expect(TokenInto); err != nil {
		return nil, err
	}

	table, err := p.identifier("table name")
	if err != nil {
		return nil, err
	}
	stmt := &InsertStatement{Table: table}

	if p.curTokenIs(TokenLParen) {
		p.nextToken()
		for {
			col, err := p.identifier("column name")
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, col)
			if !p.curTokenIs(TokenComma) {
				break
			}
			p.nextToken()
		}
		if err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
	}

	if err := p.expect(TokenValues); err != nil {
		return nil, err
	}
	if err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	for {
		v, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		stmt.Values = append(stmt.Values, v)
		if !p.curTokenIs(TokenComma) {
			break
		}
		p.nextToken()
	}
	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}

	if stmt.Columns != nil && len(stmt.Columns) != len(stmt.Values) {
		return nil, errors.NewSchemaError(errors.CodeColumnCount,
			fmt.Sprintf("column count (%d) doesn't match value count (%d)",
				len(stmt.Columns), len(stmt.Values)))
	}
	return stmt, nil
}

// parseLiteral parses one literal value: NULL, TRUE/FALSE, a number
// (optionally negative), a quoted string, or a bare word kept as a string.
func (p *Parser) parseLiteral() (interface{}, error) {
	switch p.curToken.Type {
	case TokenNull:
		p.nextToken()
		return nil, nil
	case TokenTrue:
		p.nextToken()
		return true, nil
	case TokenFalse:
		p.nextToken()
		return false, nil
	case TokenString:
		s := p.curToken.Literal
		p.nextToken()
		return s, nil
	case TokenMinus:
		p.nextToken()
		if !p.curTokenIs(TokenNumber) {
			return nil, p.errorf("expected number after -")
		}
		v, err := p.parseNumber(true)
		if err != nil {
			return nil, err
		}
		return v, nil
	case TokenNumber:
		return p.parseNumber(false)
	case TokenIdent:
		// Bare unquoted values are kept as strings.
		s := p.curToken.Literal
		p.nextToken()
		return s, nil
	default:
		return nil, p.errorf("expected value")
	}
}

// parseNumber consumes the current number token as int64 or float64.
func (p *Parser) parseNumber(negative bool) (interface{}, error) {
	lit := p.curToken.Literal
	if negative {
		lit = "-" + lit
	}
	p.nextToken()

	if strings.Contains(lit, ".") {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return nil, p.errorf("invalid number %s", lit)
		}
		return f, nil
	}
	n, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return nil, p.errorf("invalid number %s", lit)
	}
	return n, nil
}

// parseSelect parses SELECT <cols> FROM <from> [WHERE <cond>] [ORDER BY <cols>].
func (p *Parser) parseSelect() (*SelectStatement, error) {
	p.nextToken() // SELECT
	stmt := &SelectStatement{}

	if p.curTokenIs(TokenStar) {
		stmt.Columns = []string{"*"}
		p.nextToken()
	} else {
		for {
			sel, err := p.parseSelector()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, sel)
			if !p.curTokenIs(TokenComma) {
				break
			}
			p.nextToken()
		}
	}

	if err := p.expect(TokenFrom); err != nil {
		return nil, err
	}
	from, err := p.parseFromClause()
	if err != nil {
		return nil, err
	}
	stmt.From = from

	if p.curTokenIs(TokenWhere) {
		p.nextToken()
		where, err := p.parseWhereClause()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.curTokenIs(TokenOrder) {
		p.nextToken()
		if err := p.expect(TokenBy); err != nil {
			return nil, err
		}
		for {
			sel, err := p.parseSelector()
			if err != nil {
				return nil, err
			}
			stmt.OrderBy = append(stmt.OrderBy, sel)

			// Ascending is the only supported direction.
			if p.curTokenIs(TokenAsc) {
				p.nextToken()
			} else if p.curTokenIs(TokenDesc) {
				return nil, errors.NewQueryError(errors.CodeUnsupportedSyntax,
					"descending ORDER BY is not supported")
			}

			if !p.curTokenIs(TokenComma) {
				break
			}
			p.nextToken()
		}
	}

	return stmt, nil
}

// parseSelector parses a column selector: <col> or <table>.<col>, lower-cased.
func (p *Parser) parseSelector() (string, error) {
	name, err := p.identifier("column name")
	if err != nil {
		return "", err
	}
	if p.curTokenIs(TokenDot) {
		p.nextToken()
		col, err := p.identifier("column name")
		if err != nil {
			return "", err
		}
		return name + "." + col, nil
	}
	return name, nil
}

// parseFromClause parses a single table or a two-table join.
func (p *Parser) parseFromClause() (*FromClause, error) {
	left, err := p.identifier("table name")
	if err != nil {
		return nil, err
	}

	var joinType JoinType
	switch p.curToken.Type {
	case TokenInner:
		joinType = JoinInner
	case TokenLeft:
		joinType = JoinLeft
	case TokenRight:
		joinType = JoinRight
	default:
		return &FromClause{Table: left}, nil
	}
	p.nextToken()
	if err := p.expect(TokenJoin); err != nil {
		return nil, err
	}

	right, err := p.identifier("table name")
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenOn); err != nil {
		return nil, err
	}

	// ON <left>.<col> = <right>.<col>, referencing the tables in order.
	leftRef, leftCol, err := p.parseQualifiedRef()
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenEq); err != nil {
		return nil, err
	}
	rightRef, rightCol, err := p.parseQualifiedRef()
	if err != nil {
		return nil, err
	}

	if leftRef != left {
		return nil, p.errorf("left table reference mismatch: %s != %s", leftRef, left)
	}
	if rightRef != right {
		return nil, p.errorf("right table reference mismatch: %s != %s", rightRef, right)
	}

	return &FromClause{
		Table: left,
		Join: &JoinClause{
			Type:        joinType,
			Left:        left,
			Right:       right,
			LeftColumn:  leftCol,
			RightColumn: rightCol,
		},
	}, nil
}

// parseQualifiedRef parses <table>.<column>.
func (p *Parser) parseQualifiedRef() (string, string, error) {
	table, err := p.identifier("table name")
	if err != nil {
		return "", "", err
	}
	if err := p.expect(TokenDot); err != nil {
		return "", "", err
	}
	col, err := p.identifier("column name")
	if err != nil {
		return "", "", err
	}
	return table, col, nil
}

// parseWhereClause parses a flat condition list joined by AND or OR.
// The connectives may not be mixed and never nest.
func (p *Parser) parseWhereClause() (*WhereClause, error) {
	first, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	where := &WhereClause{Conditions: []Condition{*first}}

	for p.curTokenIs(TokenAnd) || p.curTokenIs(TokenOr) {
		conn := ConnectiveAnd
		if p.curTokenIs(TokenOr) {
			conn = ConnectiveOr
		}
		if where.Connective == ConnectiveNone {
			where.Connective = conn
		} else if where.Connective != conn {
			return nil, errors.NewQueryError(errors.CodeUnsupportedSyntax,
				"mixing AND and OR in one WHERE clause is not supported")
		}
		p.nextToken()

		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		where.Conditions = append(where.Conditions, *cond)
	}
	return where, nil
}

// parseCondition parses <col> <op> <literal> with op one of
// =, !=, >, <, >=, <=, LIKE, IN.
func (p *Parser) parseCondition() (*Condition, error) {
	column, err := p.parseSelector()
	if err != nil {
		return nil, err
	}

	var op string
	switch p.curToken.Type {
	case TokenEq:
		op = "="
	case TokenNe:
		op = "!="
	case TokenGt:
		op = ">"
	case TokenLt:
		op = "<"
	case TokenGe:
		op = ">="
	case TokenLe:
		op = "<="
	case TokenLike:
		op = "LIKE"
	case TokenIn:
		op = "IN"
	default:
		return nil, p.errorf("expected comparison operator")
	}
	p.nextToken()

	cond := &Condition{Column: column, Operator: op}

	if op == "IN" {
		if err := p.expect(TokenLParen); err != nil {
			return nil, err
		}
		for {
			v, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			cond.Values = append(cond.Values, v)
			if !p.curTokenIs(TokenComma) {
				break
			}
			p.nextToken()
		}
		if err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return cond, nil
	}

	v, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	cond.Value = v
	return cond, nil
}

// parseUpdate parses UPDATE <t> SET <col> = <v>, ... WHERE <cond>.
// The single-condition WHERE is mandatory.
func (p *Parser) parseUpdate() (*UpdateStatement, error) {
	p.nextToken() // UPDATE

	table, err := p.identifier("table name")
	if err != nil {
		return nil, err
	}
	if err := p.expect(TokenSet); err != nil {
		return nil, err
	}

	stmt := &UpdateStatement{Table: table}
	for {
		col, err := p.identifier("column name")
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenEq); err != nil {
			return nil, err
		}
		v, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		stmt.Assignments = append(stmt.Assignments, Assignment{Column: col, Value: v})
		if !p.curTokenIs(TokenComma) {
			break
		}
		p.nextToken()
	}

	if err := p.expect(TokenWhere); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	stmt.Where = *cond
	return stmt, nil
}

// parseDelete parses DELETE FROM <t> [WHERE <cond>].
func (p *Parser) parseDelete() (*DeleteStatement, error) {
	p.nextToken() // DELETE
	if err := p.expect(TokenFrom); err != nil {
		return nil, err
	}

	table, err := p.identifier("table name")
	if err != nil {
		return nil, err
	}
	stmt := &DeleteStatement{Table: table}

	if p.curTokenIs(TokenWhere) {
		p.nextToken()
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		stmt.Where = cond
	}
	return stmt, nil
}

// parseDropTable parses DROP TABLE <t>.
func (p *Parser) parseDropTable() (*DropTableStatement, error) {
	p.nextToken() // DROP
	if err := p.expect(TokenTable); err != nil {
		return nil, err
	}
	table, err := p.identifier("table name")
	if err != nil {
		return nil, err
	}
	return &DropTableStatement{Table: table}, nil
}
