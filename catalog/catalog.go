// Package catalog holds the in-session, insertion-ordered list of table
// definitions. Per spec §9's redesign, callers reference entries by a
// stable handle (slice index) rather than a pointer, so validator rewrites
// and catalog growth never leave a dangling reference.
package catalog

import "github.com/watkinslabs/ddbsql/ast"

// Handle is a stable reference to a catalog entry.
type Handle int

// TableDef is one table's schema and file binding.
type TableDef struct {
	Identifier  ast.Identifier
	Columns     []string
	FilePath    string
	ColumnDelim byte // defaults to ','
	Strict      bool
}

// HasColumn reports whether name is one of t's declared schema columns.
func (t TableDef) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// ColumnIndex returns the zero-based index of name in t's schema.
func (t TableDef) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// Catalog is the in-session table registry. Insertion order is preserved;
// the catalog's own zero value is ready to use.
type Catalog struct {
	tables []TableDef
}

// Insert appends def and returns its handle. The appended table becomes
// the catalog's "most recently created" (the caller tracks active table).
func (c *Catalog) Insert(def TableDef) Handle {
	c.tables = append(c.tables, def)
	return Handle(len(c.tables) - 1)
}

// Lookup finds the table whose identifier equals id.
func (c *Catalog) Lookup(id ast.Identifier) (Handle, bool) {
	for i, t := range c.tables {
		if t.Identifier.Equal(id) {
			return Handle(i), true
		}
	}
	return 0, false
}

// LookupByQualifier finds any table whose qualifier equals q (used by USE
// validation, which only needs a database name to exist, not a specific
// table).
func (c *Catalog) LookupByQualifier(q string) bool {
	for _, t := range c.tables {
		if t.Identifier.Qualified() && *t.Identifier.Qualifier == q {
			return true
		}
	}
	return false
}

// Get dereferences a handle. Panics on an out-of-range handle, since
// handles are only ever minted by Insert/Lookup against this same catalog.
func (c *Catalog) Get(h Handle) TableDef { return c.tables[h] }

// Len returns the number of tables currently in the catalog.
func (c *Catalog) Len() int { return len(c.tables) }

// Snapshot returns a copy of the current table list, for the driver's
// rollback-on-error behavior (spec invariant 5).
func (c *Catalog) Snapshot() []TableDef {
	out := make([]TableDef, len(c.tables))
	copy(out, c.tables)
	return out
}

// Restore replaces the catalog's contents with a prior snapshot.
func (c *Catalog) Restore(snapshot []TableDef) {
	c.tables = append(c.tables[:0], snapshot...)
}
