package parser

import (
	"github.com/watkinslabs/ddbsql/ast"
	"github.com/watkinslabs/ddbsql/token"
)

// parseCreateTable implements spec §4.3's create-table grammar:
//
//	CREATE_TABLE identifier '(' STRING (',' STRING)* ')' FILE STRING
//	             [ COLUMN STRING ] [ STRICT (TRUE|FALSE) ]
func (p *Parser) parseCreateTable() (ast.Statement, error) {
	if !p.curIs(token.CREATE_TABLE) {
		return nil, nil
	}
	start := p.mark()
	pos := p.advance().Pos

	id, ok := p.parseIdentifier()
	if !ok {
		p.reset(start)
		return nil, nil
	}

	if _, ok := p.expect(token.LPAREN); !ok {
		return nil, p.err
	}

	var columns []string
	for {
		col, ok := p.expect(token.STRING)
		if !ok {
			return nil, p.err
		}
		columns = append(columns, col.Value)
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance()
	}
	if _, ok := p.expect(token.RPAREN); !ok {
		return nil, p.err
	}

	if _, ok := p.expect(token.FILE); !ok {
		return nil, p.err
	}
	file, ok := p.expect(token.STRING)
	if !ok {
		return nil, p.err
	}

	stmt := &ast.CreateTableStmt{
		StartPos: pos,
		Table:    id,
		Columns:  columns,
		FilePath: file.Value,
	}

	if p.curIs(token.COLUMN) {
		p.advance()
		delim, ok := p.expect(token.STRING)
		if !ok {
			return nil, p.err
		}
		stmt.ColumnDelim = &delim.Value
	}

	if p.curIs(token.STRICT) {
		p.advance()
		var b bool
		switch p.cur().Type {
		case token.TRUE:
			b = true
			p.advance()
		case token.FALSE:
			b = false
			p.advance()
		default:
			p.errorf("expected TRUE or FALSE after STRICT, got %v", p.cur().Type)
			return nil, p.err
		}
		stmt.Strict = &b
	}

	return stmt, nil
}

// parseIdentifier consumes a QUALIFIER SOURCE pair or a standalone SOURCE
// token, per spec §4.2's post-fusion qualifier tagging.
func (p *Parser) parseIdentifier() (ast.Identifier, bool) {
	if p.curIs(token.QUALIFIER) {
		qual := p.advance().Value
		if !p.curIs(token.SOURCE) {
			p.errorf("expected identifier after qualifier %s", qual)
			return ast.Identifier{}, false
		}
		src := p.advance().Value
		return ast.Identifier{Qualifier: &qual, Source: src}, true
	}
	if p.curIs(token.SOURCE) {
		return ast.Identifier{Source: p.advance().Value}, true
	}
	p.errorf("expected identifier, got %v", p.cur().Type)
	return ast.Identifier{}, false
}
