package parser

import (
	"strconv"

	"github.com/watkinslabs/ddbsql/ast"
	"github.com/watkinslabs/ddbsql/token"
)

// parseSelect implements spec §4.3's select grammar:
//
//	select := SELECT [DISTINCT] select_list
//	          [ FROM identifier [ALIAS] ( join_type identifier [ALIAS] [ ON expression ] )* ]
//	          [ WHERE expression ]
//	          [ GROUP_BY identifier_list ]
//	          [ ORDER_BY order_list ]
//	          [ LIMIT_START n ] [ LIMIT_LENGTH n ]
func (p *Parser) parseSelect() (ast.Statement, error) {
	if !p.curIs(token.SELECT) {
		return nil, nil
	}
	start := p.mark()
	pos := p.advance().Pos

	stmt := ast.GetSelectStmt()
	stmt.StartPos = pos

	if p.curIs(token.DISTINCT) {
		stmt.Distinct = true
		p.advance()
	}

	items, err := p.parseSelectList()
	if err != nil {
		p.reset(start)
		return nil, err
	}
	if items == nil {
		p.reset(start)
		return nil, nil
	}
	stmt.Columns = items

	if p.curIs(token.FROM) {
		p.advance()
		ref, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}
		stmt.From = ref

		for isJoinStart(p.cur().Type) {
			jt := joinTypeOf(p.advance().Type)
			jref, err := p.parseTableRef()
			if err != nil {
				return nil, err
			}
			join := ast.JoinClause{Type: jt, Table: *jref}
			if p.curIs(token.ON) {
				p.advance()
				on, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				if on == nil {
					p.errorf("expected expression after ON")
					return nil, p.err
				}
				join.On = on
			}
			stmt.Joins = append(stmt.Joins, join)
		}
	}

	if p.curIs(token.WHERE) {
		p.advance()
		where, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if where == nil {
			p.errorf("expected expression after WHERE")
			return nil, p.err
		}
		stmt.Where = where
	}

	if p.curIs(token.GROUP_BY) {
		p.advance()
		ids, err := p.parseIdentifierList()
		if err != nil {
			return nil, err
		}
		stmt.GroupBy = ids
	}

	if p.curIs(token.ORDER_BY) {
		p.advance()
		items, err := p.parseOrderList()
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = items
	}

	if p.curIs(token.LIMIT_START) {
		n, err := strconv.Atoi(p.advance().Value)
		if err != nil {
			p.errorf("invalid LIMIT value")
			return nil, p.err
		}
		stmt.LimitStart = &n
	}
	if p.curIs(token.LIMIT_LENGTH) {
		n, err := strconv.Atoi(p.advance().Value)
		if err != nil {
			p.errorf("invalid LIMIT value")
			return nil, p.err
		}
		stmt.LimitLength = &n
	}

	return stmt, nil
}

// parseSelectList parses one or more comma-separated select items: a
// literal, an identifier, or a `*`/`qualifier.*` wildcard, each with an
// optional alias (already fused to an ALIAS token by the lexer).
func (p *Parser) parseSelectList() ([]ast.SelectItem, error) {
	var items []ast.SelectItem
	for {
		item, ok, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		items = append(items, item)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	return items, nil
}

func (p *Parser) parseSelectItem() (ast.SelectItem, bool, error) {
	if p.curIs(token.ASTERISK) {
		p.advance()
		return ast.SelectItem{Star: true}, true, nil
	}
	if p.curIs(token.QUALIFIER) && p.peek().Type == token.ASTERISK {
		qual := p.advance().Value
		p.advance() // *
		return ast.SelectItem{Star: true, StarQualifier: qual}, true, nil
	}

	expr, err := p.parseSimpleExpr()
	if err != nil {
		return ast.SelectItem{}, false, err
	}
	if expr == nil {
		return ast.SelectItem{}, false, nil
	}
	item := ast.SelectItem{Expr: expr}
	if p.curIs(token.ALIAS) {
		item.Alias = p.advance().Value
	}
	return item, true, nil
}

// parseTableRef parses an identifier followed by an optional alias. The
// alias may come from an explicit `AS alias` (fused to an ALIAS token) or,
// per spec §6's `FROM <id> [alias]` surface, a bare SOURCE token with no
// AS at all.
func (p *Parser) parseTableRef() (*ast.TableRef, error) {
	id, ok := p.parseIdentifier()
	if !ok {
		return nil, p.err
	}
	ref := &ast.TableRef{Identifier: id}
	switch {
	case p.curIs(token.ALIAS):
		ref.Alias = p.advance().Value
	case p.curIs(token.SOURCE):
		ref.Alias = p.advance().Value
	}
	return ref, nil
}

func isJoinStart(t token.Token) bool {
	switch t {
	case token.JOIN, token.LEFT_JOIN, token.RIGHT_JOIN, token.INNER_JOIN, token.FULL_OUTER_JOIN:
		return true
	default:
		return false
	}
}

func joinTypeOf(t token.Token) ast.JoinType {
	switch t {
	case token.LEFT_JOIN:
		return ast.JoinLeft
	case token.RIGHT_JOIN:
		return ast.JoinRight
	case token.FULL_OUTER_JOIN:
		return ast.JoinFullOuter
	default: // JOIN, INNER_JOIN
		return ast.JoinInner
	}
}

// parseIdentifierList parses a comma-separated list of identifiers, used
// by GROUP BY.
func (p *Parser) parseIdentifierList() ([]ast.Identifier, error) {
	var ids []ast.Identifier
	for {
		if !p.curIs(token.QUALIFIER) && !p.curIs(token.SOURCE) {
			break
		}
		id, ok := p.parseIdentifier()
		if !ok {
			return nil, p.err
		}
		ids = append(ids, id)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	if ids == nil {
		p.errorf("expected identifier list")
		return nil, p.err
	}
	return ids, nil
}

// parseOrderList parses a comma-separated list of identifiers, each with
// an optional ASC|DESC (default ASC), used by ORDER BY.
func (p *Parser) parseOrderList() ([]ast.OrderItem, error) {
	var items []ast.OrderItem
	for {
		if !p.curIs(token.QUALIFIER) && !p.curIs(token.SOURCE) {
			break
		}
		id, ok := p.parseIdentifier()
		if !ok {
			return nil, p.err
		}
		item := ast.OrderItem{Identifier: id}
		switch p.cur().Type {
		case token.DESC:
			item.Desc = true
			p.advance()
		case token.ASC:
			p.advance()
		}
		items = append(items, item)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	if items == nil {
		p.errorf("expected order-by list")
		return nil, p.err
	}
	return items, nil
}
