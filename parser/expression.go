package parser

import (
	"github.com/watkinslabs/ddbsql/ast"
	"github.com/watkinslabs/ddbsql/token"
)

// parseExpression implements spec §4.3's top grammar level:
//
//	expression := [NOT] boolean_primary ( (AND|OR|&&|\|\|) boolean_primary )*
func (p *Parser) parseExpression() (ast.Expr, error) {
	var not bool
	if p.curIs(token.NOT) {
		not = true
		p.advance()
	}

	left, err := p.parseBooleanPrimary()
	if err != nil {
		return nil, err
	}
	if left == nil {
		return nil, nil
	}
	if not {
		left = &ast.Not{Operand: left}
	}

	for isLogicalOp(p.cur().Type) {
		op := p.advance().Type
		right, err := p.parseBooleanPrimary()
		if err != nil {
			return nil, err
		}
		if right == nil {
			p.errorf("expected expression after %v", op)
			return nil, p.err
		}
		left = &ast.Logical{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func isLogicalOp(t token.Token) bool {
	return t == token.AND || t == token.OR || t == token.LOGAND || t == token.LOGOR
}

// parseBooleanPrimary implements:
//
//	boolean_primary := predicate [ comparison_op predicate | IS_NULL | IS_NOT_NULL ]
func (p *Parser) parseBooleanPrimary() (ast.Expr, error) {
	left, err := p.parsePredicate()
	if err != nil {
		return nil, err
	}
	if left == nil {
		return nil, nil
	}

	switch p.cur().Type {
	case token.IS_NULL:
		p.advance()
		return &ast.IsNullTest{Operand: left, Not: false}, nil
	case token.IS_NOT_NULL:
		p.advance()
		return &ast.IsNullTest{Operand: left, Not: true}, nil
	}

	if isComparisonOp(p.cur().Type) {
		op := p.advance().Type
		right, err := p.parsePredicate()
		if err != nil {
			return nil, err
		}
		if right == nil {
			p.errorf("expected expression after %v", op)
			return nil, p.err
		}
		node := ast.GetCmp()
		node.Op, node.Left, node.Right = op, left, right
		return node, nil
	}
	return left, nil
}

func isComparisonOp(t token.Token) bool {
	switch t {
	case token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE, token.NULLEQ:
		return true
	default:
		return false
	}
}

// parsePredicate is bit_expr (IN/NOT IN list support is reserved and
// disabled per spec §4.3).
func (p *Parser) parsePredicate() (ast.Expr, error) {
	return p.parseBitExpr()
}

// parseBitExpr implements:
//
//	bit_expr := simple_expr ( (+|-|*|/|%|<<|>>|\||&) simple_expr )*
func (p *Parser) parseBitExpr() (ast.Expr, error) {
	left, err := p.parseSimpleExpr()
	if err != nil {
		return nil, err
	}
	if left == nil {
		return nil, nil
	}
	for isArithmeticOp(p.cur().Type) {
		op := p.advance().Type
		right, err := p.parseSimpleExpr()
		if err != nil {
			return nil, err
		}
		if right == nil {
			p.errorf("expected expression after %v", op)
			return nil, p.err
		}
		node := ast.GetBinOp()
		node.Op, node.Left, node.Right = op, left, right
		left = node
	}
	return left, nil
}

func isArithmeticOp(t token.Token) bool {
	switch t {
	case token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT,
		token.LSHIFT, token.RSHIFT, token.BITOR, token.BITAND:
		return true
	default:
		return false
	}
}

// parseSimpleExpr implements:
//
//	simple_expr := [ +|- ] ( literal | identifier )
//
// Unary +/- is only legal before a numeric literal (spec §4.3); the parser
// rejects it here before a string, NULL or identifier operand.
func (p *Parser) parseSimpleExpr() (ast.Expr, error) {
	var unary token.Token
	if p.curIs(token.PLUS) || p.curIs(token.MINUS) {
		unary = p.advance().Type
	}

	operand, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if operand == nil {
		if unary != 0 {
			p.errorf("expected literal or identifier after unary operator")
			return nil, p.err
		}
		return nil, nil
	}
	if unary != 0 {
		if lit, ok := operand.(*ast.Lit); !ok || (lit.Kind != ast.LitNumeric && lit.Kind != ast.LitReal && lit.Kind != ast.LitHex && lit.Kind != ast.LitBinary) {
			p.errorf("unary operator only legal before a numeric literal")
			return nil, p.err
		}
		return &ast.Unary{Op: unary, Operand: operand}, nil
	}
	return operand, nil
}

func (p *Parser) parseOperand() (ast.Expr, error) {
	switch p.cur().Type {
	case token.NULL:
		pos := p.advance().Pos
		return newLit(pos, ast.LitNull, ""), nil
	case token.STRING:
		t := p.advance()
		return newLit(t.Pos, ast.LitString, t.Value), nil
	case token.INT:
		t := p.advance()
		return newLit(t.Pos, ast.LitNumeric, t.Value), nil
	case token.REAL:
		t := p.advance()
		return newLit(t.Pos, ast.LitReal, t.Value), nil
	case token.HEX:
		t := p.advance()
		return newLit(t.Pos, ast.LitHex, t.Value), nil
	case token.BIN:
		t := p.advance()
		return newLit(t.Pos, ast.LitBinary, t.Value), nil
	case token.QUALIFIER, token.SOURCE:
		pos := p.cur().Pos
		id, ok := p.parseIdentifier()
		if !ok {
			return nil, p.err
		}
		node := ast.GetIdent()
		node.StartPos, node.Identifier = pos, id
		return node, nil
	default:
		return nil, nil
	}
}

func newLit(pos token.Pos, kind ast.LiteralKind, value string) *ast.Lit {
	l := ast.GetLit()
	l.StartPos, l.Kind, l.Value = pos, kind, value
	return l
}
