package session

import (
	"fmt"

	"github.com/watkinslabs/ddbsql/token"
)

// ErrorCode enumerates every failure kind from spec §7, replacing the
// original's ad hoc numbered ERR_* constants with a typed Go enum.
type ErrorCode int

const (
	_ ErrorCode = iota

	// Lexical
	ErrUnterminatedString
	ErrUnterminatedLineComment
	ErrUnterminatedBlockComment
	ErrMalformedHexToken
	ErrMalformedBinaryToken
	ErrUnknownCharacter

	// Syntactic
	ErrUnknownSQL
	ErrInvalidJoinIdentity
	ErrJoinWithoutOn
	ErrInvalidSelectExprAlias
	ErrMissingColumns

	// Semantic
	ErrInvalidQualifier
	ErrColumnNotFound
	ErrAmbiguousColumnName
	ErrAmbiguousColumnInSelectList
	ErrAmbiguousJoin
	ErrInvalidFromTable
	ErrInvalidJoinTable
	ErrTableAlreadyExists
	ErrTableHasNoColumns
	ErrInvalidColumnName
	ErrDuplicateGroupByColumn
	ErrLimitStartNegative
	ErrLimitLengthNegative
	ErrInvalidDatabase

	// Resource
	ErrFileNotFound
	ErrFileReadPermission
	ErrFileWritePermission
	ErrFileOpenError
	ErrDataFetchError
	ErrLockingError

	// Structural
	ErrExpressionMalformed
	ErrOutOfBounds
)

var errorText = map[ErrorCode]string{
	ErrUnterminatedString:          "unterminated string",
	ErrUnterminatedLineComment:     "unterminated line comment",
	ErrUnterminatedBlockComment:    "unterminated block comment",
	ErrMalformedHexToken:           "malformed hex token",
	ErrMalformedBinaryToken:        "malformed binary token",
	ErrUnknownCharacter:            "unknown character",
	ErrUnknownSQL:                  "unknown sql",
	ErrInvalidJoinIdentity:         "invalid join identity",
	ErrJoinWithoutOn:               "join without on",
	ErrInvalidSelectExprAlias:      "invalid select expression alias",
	ErrMissingColumns:              "missing columns",
	ErrInvalidQualifier:            "invalid qualifier",
	ErrColumnNotFound:              "column not found",
	ErrAmbiguousColumnName:         "ambiguous column name",
	ErrAmbiguousColumnInSelectList: "ambiguous column in select list",
	ErrAmbiguousJoin:               "ambiguous join",
	ErrInvalidFromTable:            "invalid from table",
	ErrInvalidJoinTable:            "invalid join table",
	ErrTableAlreadyExists:          "table already exists",
	ErrTableHasNoColumns:           "table has no columns",
	ErrInvalidColumnName:           "invalid column name",
	ErrDuplicateGroupByColumn:      "duplicate group by column",
	ErrLimitStartNegative:          "limit start negative",
	ErrLimitLengthNegative:         "limit length negative",
	ErrInvalidDatabase:             "invalid database",
	ErrFileNotFound:                "file not found",
	ErrFileReadPermission:          "file read permission",
	ErrFileWritePermission:         "file write permission",
	ErrFileOpenError:               "file open error",
	ErrDataFetchError:              "data fetch error",
	ErrLockingError:                "locking error",
	ErrExpressionMalformed:         "expression malformed",
	ErrOutOfBounds:                 "out of bounds",
}

func (c ErrorCode) String() string {
	if s, ok := errorText[c]; ok {
		return s
	}
	return "unknown error"
}

// SessionError is the (code, message) pair carried on the cursor, in the
// teacher's ParseError{Pos, Message} style generalized with an enum code.
type SessionError struct {
	Code    ErrorCode
	Message string
	Pos     token.Pos
}

func (e *SessionError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s (line %d, column %d)", e.Code, e.Message, e.Pos.Line, e.Pos.Column)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a SessionError with no position information.
func NewError(code ErrorCode, message string) *SessionError {
	return &SessionError{Code: code, Message: message}
}

// NewErrorAt builds a SessionError positioned in the source text.
func NewErrorAt(code ErrorCode, message string, pos token.Pos) *SessionError {
	return &SessionError{Code: code, Message: message, Pos: pos}
}
