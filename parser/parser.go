// Package parser implements the recursive-descent grammar of spec §4.3:
// CREATE TABLE, USE, and SELECT (with joins, WHERE, GROUP BY, ORDER BY,
// LIMIT) over the lexer's fused token stream.
package parser

import (
	"fmt"
	"sync"

	"github.com/watkinslabs/ddbsql/ast"
	"github.com/watkinslabs/ddbsql/token"
)

// ParseError is a parse failure positioned in the source text, in the
// teacher's parser.ParseError{Pos, Message} style.
type ParseError struct {
	Pos     token.Pos
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Parser walks a fused token stream, producing Statement nodes.
type Parser struct {
	tokens []token.Item
	pos    int
	err    *ParseError
}

var pool = sync.Pool{
	New: func() any { return &Parser{} },
}

// New creates a Parser over a fully-fused token stream (lexer.Scan's
// output).
func New(tokens []token.Item) *Parser {
	return &Parser{tokens: tokens}
}

// Get returns a pooled Parser reset over tokens.
func Get(tokens []token.Item) *Parser {
	p := pool.Get().(*Parser)
	p.tokens = tokens
	p.pos = 0
	p.err = nil
	return p
}

// Put returns p to the pool.
func Put(p *Parser) {
	p.tokens = nil
	pool.Put(p)
}

// Position returns the parser's current cursor into the token stream
// (spec §4.1's Token Stream "position").
func (p *Parser) Position() int { return p.pos }

func (p *Parser) cur() token.Item {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return token.Item{Type: token.EOF}
}

func (p *Parser) curIs(t token.Token) bool { return p.cur().Type == t }

func (p *Parser) peek() token.Item {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return token.Item{Type: token.EOF}
}

func (p *Parser) advance() token.Item {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *Parser) expect(t token.Token) (token.Item, bool) {
	if p.curIs(t) {
		return p.advance(), true
	}
	p.errorf("expected %v, got %v", t, p.cur().Type)
	return token.Item{}, false
}

func (p *Parser) errorf(format string, args ...any) {
	if p.err == nil {
		p.err = &ParseError{Pos: p.cur().Pos, Message: fmt.Sprintf(format, args...)}
	}
}

// mark/reset support backtracking: a production that fails after
// consuming tokens restores pos so the top-level driver can try the next
// alternative, per spec §4.3 ("each production returns either an AST node
// ... or null, leaving position at its entry value").
func (p *Parser) mark() int { return p.pos }

func (p *Parser) reset(mark int) {
	p.pos = mark
	p.err = nil
}

// ParseScript runs the top-level driver: repeatedly try SELECT, CREATE
// TABLE, USE; after each successful parse, consume a single ';' if
// present and loop. Returns the ordered statement queue.
func (p *Parser) ParseScript() ([]ast.Statement, error) {
	var stmts []ast.Statement
	for {
		if p.curIs(token.EOF) {
			return stmts, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return stmts, err
		}
		if stmt == nil {
			if p.pos < len(p.tokens) && !p.curIs(token.EOF) {
				return stmts, &ParseError{Pos: p.cur().Pos, Message: "unknown sql near " + p.cur().Type.String()}
			}
			return stmts, nil
		}
		stmts = append(stmts, stmt)
		if p.curIs(token.SEMICOLON) {
			p.advance()
		}
	}
}

// parseStatement tries each of the three statement productions in turn.
func (p *Parser) parseStatement() (ast.Statement, error) {
	if stmt, err := p.parseSelect(); stmt != nil || err != nil {
		return stmt, err
	}
	if stmt, err := p.parseCreateTable(); stmt != nil || err != nil {
		return stmt, err
	}
	if stmt, err := p.parseUse(); stmt != nil || err != nil {
		return stmt, err
	}
	return nil, nil
}

// parseUse implements: USE source ;
func (p *Parser) parseUse() (ast.Statement, error) {
	if !p.curIs(token.USE) {
		return nil, nil
	}
	start := p.mark()
	pos := p.advance().Pos
	if !p.curIs(token.SOURCE) {
		p.reset(start)
		return nil, nil
	}
	name := p.advance().Value
	return &ast.UseStmt{StartPos: pos, Database: name}, nil
}
