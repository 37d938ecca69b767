// Package session owns the Cursor (the session state threaded through
// lexing, parsing, validation and execution), the validator, and the
// top-level Session Driver entry point.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/watkinslabs/ddbsql/catalog"
	"github.com/watkinslabs/ddbsql/dataset"
	"github.com/watkinslabs/ddbsql/lookup"
)

// Status is the outcome of running a script.
type Status int

const (
	StatusPending Status = iota
	StatusSuccess
	StatusFailure
)

// Cursor is the single mutable session object threaded explicitly through
// the pipeline (spec §9: "no hidden globals").
type Cursor struct {
	ID uuid.UUID

	Catalog        catalog.Catalog
	ActiveDatabase string
	ActiveTable    *catalog.Handle

	RequestedQuery string
	ParsePosition  int

	Err      *SessionError
	Status   Status
	Created  time.Time
	Ended    time.Time

	// Populated by the validator/executor while running a single SELECT.
	SourceAliases []string
	Sources       []*dataset.DataSet
	Lookup        lookup.Table
	Results       *dataset.DataSet
}

// DefaultDatabase is the sentinel active-database name before any USE
// statement runs (spec Glossary: "Active database").
const DefaultDatabase = "this"

// New creates a Cursor ready to drive one script.
func New() *Cursor {
	return &Cursor{
		ID:             uuid.New(),
		ActiveDatabase: DefaultDatabase,
		Created:        time.Now(),
	}
}

// Fail records err on the cursor and marks the session failed. It never
// overwrites an error already recorded (first failure wins, spec §7).
func (c *Cursor) Fail(err *SessionError) {
	if c.Err != nil {
		return
	}
	c.Err = err
	c.Status = StatusFailure
}
