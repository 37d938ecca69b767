package session

import (
	"errors"

	"github.com/watkinslabs/ddbsql/ast"
	"github.com/watkinslabs/ddbsql/catalog"
	"github.com/watkinslabs/ddbsql/csvtable"
	"github.com/watkinslabs/ddbsql/dataset"
	"github.com/watkinslabs/ddbsql/exec"
)

// Execute runs a single validated statement against cur, per spec §4.7.
// It is only ever called after Validate has succeeded for stmt.
func Execute(cur *Cursor, stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.UseStmt:
		return executeUse(cur, s)
	case *ast.CreateTableStmt:
		return executeCreateTable(cur, s)
	case *ast.SelectStmt:
		return executeSelect(cur, s)
	default:
		return nil
	}
}

// executeUse replaces the cursor's active database string.
func executeUse(cur *Cursor, stmt *ast.UseStmt) error {
	cur.ActiveDatabase = stmt.Database
	return nil
}

// executeCreateTable deep-copies the table definition and appends it to
// the catalog, then marks it the active table.
func executeCreateTable(cur *Cursor, stmt *ast.CreateTableStmt) error {
	columns := make([]string, len(stmt.Columns))
	copy(columns, stmt.Columns)

	delim := byte(',')
	if stmt.ColumnDelim != nil && len(*stmt.ColumnDelim) > 0 {
		delim = (*stmt.ColumnDelim)[0]
	}
	strict := false
	if stmt.Strict != nil {
		strict = *stmt.Strict
	}

	def := catalog.TableDef{
		Identifier:  stmt.Table,
		Columns:     columns,
		FilePath:    stmt.FilePath,
		ColumnDelim: delim,
		Strict:      strict,
	}
	h := cur.Catalog.Insert(def)
	cur.ActiveTable = &h
	return nil
}

// executeSelect loads every FROM/JOIN source, runs the row-matrix walk and
// projection, and records the result set on the cursor. The statement's
// pooled AST nodes (spec §9's reused node set) are returned to the pool
// once execution is done with them, win or lose — nothing downstream of
// Execute touches stmt again.
func executeSelect(cur *Cursor, stmt *ast.SelectStmt) error {
	defer ast.ReleaseSelectStmt(stmt)

	var refs []*ast.TableRef
	if stmt.From != nil {
		refs = append(refs, stmt.From)
	}
	for i := range stmt.Joins {
		refs = append(refs, &stmt.Joins[i].Table)
	}

	sources := make([]*dataset.DataSet, len(refs))
	for i, ref := range refs {
		h, ok := cur.Catalog.Lookup(ref.Identifier)
		if !ok {
			return fail(cur, ErrInvalidFromTable, "no such table "+ref.Identifier.Source)
		}
		def := cur.Catalog.Get(h)
		ds, err := csvtable.Load(def)
		if err != nil {
			return mapLoadError(cur, err)
		}
		sources[i] = ds
	}
	cur.Sources = sources

	plan := &exec.Plan{Stmt: stmt, Sources: sources, Lookup: cur.Lookup}
	results, err := exec.Run(plan)
	if err != nil {
		return fail(cur, ErrExpressionMalformed, err.Error())
	}
	cur.Results = results
	return nil
}

// mapLoadError translates csvtable's sentinel load errors to the matching
// resource ErrorCode (spec §4.6).
func mapLoadError(cur *Cursor, err error) error {
	switch {
	case errors.Is(err, csvtable.ErrNoData):
		return fail(cur, ErrDataFetchError, err.Error())
	default:
		return fail(cur, ErrFileOpenError, err.Error())
	}
}
