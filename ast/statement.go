package ast

import "github.com/watkinslabs/ddbsql/token"

// Statement is any of CreateTableStmt, UseStmt, SelectStmt.
type Statement interface {
	statementNode()
	Pos() token.Pos
}

// JoinType is the explicit enum replacing the original's overloaded
// provenance codes on the join's success marker (spec §9).
type JoinType int

const (
	JoinInner JoinType = iota
	JoinLeft
	JoinRight
	JoinFullOuter
)

func (j JoinType) String() string {
	switch j {
	case JoinInner:
		return "INNER"
	case JoinLeft:
		return "LEFT"
	case JoinRight:
		return "RIGHT"
	case JoinFullOuter:
		return "FULL OUTER"
	default:
		return "?"
	}
}

// TableRef names a FROM or JOIN source with its resolved alias.
type TableRef struct {
	Identifier Identifier
	Alias      string // defaulted by the validator to Identifier.Source
}

// JoinClause is one JOIN in a SELECT's FROM clause.
type JoinClause struct {
	StartPos token.Pos
	Type     JoinType
	Table    TableRef
	On       Expr // nil permitted by the grammar; evaluator treats as always-true
}

// SelectItem is one projected column: a literal or an identifier, aliased.
// Star is the `*`/`qualifier.*` wildcard form, expanded by the validator
// into one concrete Ident per source column once sources are resolved.
type SelectItem struct {
	Expr  Expr // *Lit or *Ident, per spec §4.3's select_list grammar
	Alias string
	Star  bool
	StarQualifier string // non-empty for qualifier.* ; empty means plain *
}

// OrderItem is one ORDER BY term.
type OrderItem struct {
	Identifier Identifier
	Desc       bool
}

// SelectStmt is a full SELECT statement.
type SelectStmt struct {
	StartPos    token.Pos
	Distinct    bool
	Columns     []SelectItem
	From        *TableRef // nil: select-list-only query
	Joins       []JoinClause
	Where       Expr // nil: no WHERE clause
	GroupBy     []Identifier
	OrderBy     []OrderItem
	LimitStart  *int
	LimitLength *int
}

func (*SelectStmt) statementNode()   {}
func (s *SelectStmt) Pos() token.Pos { return s.StartPos }

// CreateTableStmt is CREATE TABLE ... FILE ... [COLUMN ...] [STRICT ...].
type CreateTableStmt struct {
	StartPos     token.Pos
	Table        Identifier
	Columns      []string // required string literals, the schema column labels
	FilePath     string
	ColumnDelim  *string
	Strict       *bool
}

func (*CreateTableStmt) statementNode()   {}
func (c *CreateTableStmt) Pos() token.Pos { return c.StartPos }

// UseStmt is USE <database>.
type UseStmt struct {
	StartPos token.Pos
	Database string
}

func (*UseStmt) statementNode()   {}
func (u *UseStmt) Pos() token.Pos { return u.StartPos }
