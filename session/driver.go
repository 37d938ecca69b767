package session

import (
	"context"
	"strings"
	"time"

	jujuerrors "github.com/juju/errors"

	"github.com/watkinslabs/ddbsql/lexer"
	"github.com/watkinslabs/ddbsql/parser"
)

// Run is the Session Driver's entry point (spec §4.8/§2 component 9): lex
// once, parse the full command queue, then walk it once — validate each
// statement against the catalog as it stands, execute it if validation
// held, and stop at the first failure. ctx is checked once between
// statements, per spec §5's cancellation note; no operation checks it
// mid-statement.
func Run(ctx context.Context, cur *Cursor, script string) error {
	cur.RequestedQuery = script

	l := lexer.Get(script)
	tokens, lexErr := l.Scan()
	lexer.Put(l)
	if lexErr != nil {
		err := fail(cur, lexErrorCode(lexErr), lexErr.Error())
		return jujuerrors.Annotate(err, "lexing script")
	}

	p := parser.Get(tokens)
	stmts, parseErr := p.ParseScript()
	cur.ParsePosition = p.Position()
	parser.Put(p)
	if parseErr != nil {
		err := fail(cur, ErrUnknownSQL, parseErr.Error())
		return jujuerrors.Annotate(err, "parsing script")
	}

	for _, stmt := range stmts {
		if err := ctx.Err(); err != nil {
			failErr := fail(cur, ErrOutOfBounds, "execution canceled: "+err.Error())
			return jujuerrors.Annotate(failErr, "running script")
		}

		if err := Validate(cur, stmt); err != nil {
			return jujuerrors.Annotate(err, "validating statement")
		}

		snapshot := cur.Catalog.Snapshot()
		if err := Execute(cur, stmt); err != nil {
			cur.Catalog.Restore(snapshot)
			return jujuerrors.Annotate(err, "executing statement")
		}
	}

	if cur.Status != StatusFailure {
		cur.Status = StatusSuccess
	}
	cur.Ended = time.Now()
	return nil
}

// lexErrorCode maps a lexer.Error's message to its SessionError code. The
// lexer reports failures as plain strings (spec §4.2's failure-mode list
// rather than a typed enum), so the driver is the layer that knows the
// mapping back to ErrorCode.
func lexErrorCode(err error) ErrorCode {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "unterminated string"):
		return ErrUnterminatedString
	case strings.Contains(msg, "unterminated line comment"):
		return ErrUnterminatedLineComment
	case strings.Contains(msg, "unterminated block comment"):
		return ErrUnterminatedBlockComment
	case strings.Contains(msg, "malformed hex token"):
		return ErrMalformedHexToken
	case strings.Contains(msg, "malformed binary token"):
		return ErrMalformedBinaryToken
	default:
		return ErrUnknownCharacter
	}
}
