// Package ast defines the parsed representation of the three supported
// statements (CREATE TABLE, USE, SELECT) and their expression tree.
//
// Per the redesign called out in spec §9, optionality is modeled with Go
// pointers/option fields rather than a sentinel value, and expressions are a
// tagged tree (BinOp/Unary/Cmp/Logical/Ident/Lit) instead of the original's
// singly-linked chain with operator attributes hanging off each node.
package ast

import "github.com/watkinslabs/ddbsql/token"

// Identifier is a qualified name (qualifier?, source). Qualifier is nil
// until the validator fills it in from the active database.
type Identifier struct {
	Qualifier *string
	Source    string
}

// Qualified reports whether q has an explicit or resolved qualifier.
func (id Identifier) Qualified() bool { return id.Qualifier != nil }

// Equal compares two identifiers by qualifier and source, per spec §3: two
// identifiers compare equal iff both parts are present and byte-equal.
func (id Identifier) Equal(other Identifier) bool {
	if id.Qualifier == nil || other.Qualifier == nil {
		return false
	}
	return *id.Qualifier == *other.Qualifier && id.Source == other.Source
}

// LiteralKind tags the kind of scalar literal.
type LiteralKind int

const (
	LitNull LiteralKind = iota
	LitString
	LitNumeric
	LitReal
	LitHex
	LitBinary
)

// Expr is any node in the expression tree.
type Expr interface {
	exprNode()
	Pos() token.Pos
}

// Lit is a literal value.
type Lit struct {
	StartPos token.Pos
	Kind     LiteralKind
	Value    string
}

func (*Lit) exprNode()        {}
func (l *Lit) Pos() token.Pos { return l.StartPos }

// Ident references a column, resolved by the validator.
type Ident struct {
	StartPos token.Pos
	Identifier
}

func (*Ident) exprNode()        {}
func (i *Ident) Pos() token.Pos { return i.StartPos }

// Unary is a prefix +/- applied to a numeric simple_expr.
type Unary struct {
	Op      token.Token
	Operand Expr
}

func (*Unary) exprNode()        {}
func (u *Unary) Pos() token.Pos { return u.Operand.Pos() }

// BinOp is a bit_expr-level arithmetic/bitwise combination.
type BinOp struct {
	Op    token.Token
	Left  Expr
	Right Expr
}

func (*BinOp) exprNode()        {}
func (b *BinOp) Pos() token.Pos { return b.Left.Pos() }

// Cmp is a boolean_primary-level comparison between two predicates.
type Cmp struct {
	Op    token.Token
	Left  Expr
	Right Expr
}

func (*Cmp) exprNode()        {}
func (c *Cmp) Pos() token.Pos { return c.Left.Pos() }

// IsNullTest is the IS [NOT] NULL suffix form of boolean_primary.
type IsNullTest struct {
	Operand Expr
	Not     bool
}

func (*IsNullTest) exprNode()        {}
func (n *IsNullTest) Pos() token.Pos { return n.Operand.Pos() }

// Logical is an expression-level AND/OR/&&/|| combination.
type Logical struct {
	Op    token.Token
	Left  Expr
	Right Expr
}

func (*Logical) exprNode()        {}
func (l *Logical) Pos() token.Pos { return l.Left.Pos() }

// Not is the optional leading NOT on an expression.
type Not struct {
	Operand Expr
}

func (*Not) exprNode()        {}
func (n *Not) Pos() token.Pos { return n.Operand.Pos() }
