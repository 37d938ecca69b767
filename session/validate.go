package session

import (
	"os"

	"github.com/watkinslabs/ddbsql/ast"
	"github.com/watkinslabs/ddbsql/catalog"
	"github.com/watkinslabs/ddbsql/lookup"
)

// Validate runs the semantic checks for stmt against cur's current catalog,
// grounded on original_source's validate.c. On failure it records the
// error on cur and returns it; the catalog is never changed, but a failed
// SELECT may leave stmt partly rewritten and cur.SourceAliases/cur.Lookup
// partly filled.
func Validate(cur *Cursor, stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.UseStmt:
		return validateUse(cur, s)
	case *ast.CreateTableStmt:
		return validateCreateTable(cur, s)
	case *ast.SelectStmt:
		return validateSelect(cur, s)
	default:
		return nil
	}
}

func fail(cur *Cursor, code ErrorCode, msg string) error {
	err := NewError(code, msg)
	cur.Fail(err)
	return err
}

func validateUse(cur *Cursor, stmt *ast.UseStmt) error {
	if stmt.Database == "" {
		return fail(cur, ErrInvalidDatabase, "missing database name")
	}
	if !cur.Catalog.LookupByQualifier(stmt.Database) {
		return fail(cur, ErrInvalidDatabase, "no table registered under database "+stmt.Database)
	}
	return nil
}

func validateCreateTable(cur *Cursor, stmt *ast.CreateTableStmt) error {
	if !stmt.Table.Qualified() {
		q := cur.ActiveDatabase
		stmt.Table.Qualifier = &q
	}

	if _, exists := cur.Catalog.Lookup(stmt.Table); exists {
		return fail(cur, ErrTableAlreadyExists, "table "+stmt.Table.Source+" already exists")
	}

	if err := checkFileAccess(cur, stmt.FilePath); err != nil {
		return err
	}

	if len(stmt.Columns) == 0 {
		return fail(cur, ErrTableHasNoColumns, "table "+stmt.Table.Source+" has no columns")
	}
	seen := make(map[string]bool, len(stmt.Columns))
	for _, c := range stmt.Columns {
		if seen[c] {
			return fail(cur, ErrAmbiguousColumnName, "duplicate column name "+c)
		}
		seen[c] = true
	}
	return nil
}

// checkFileAccess mirrors validate.c's F_OK -> R_OK -> W_OK priority order.
func checkFileAccess(cur *Cursor, path string) error {
	info, statErr := os.Stat(path)
	if statErr != nil {
		return fail(cur, ErrFileNotFound, "file not found: "+path)
	}
	if info.Mode().Perm()&0o444 == 0 {
		return fail(cur, ErrFileReadPermission, "file not readable: "+path)
	}
	if info.Mode().Perm()&0o222 == 0 {
		return fail(cur, ErrFileWritePermission, "file not writable: "+path)
	}
	return nil
}

// resolvedSource is one FROM/JOIN source, in source_alias[] order.
type resolvedSource struct {
	alias string
	table catalog.TableDef
}

func validateSelect(cur *Cursor, stmt *ast.SelectStmt) error {
	if len(stmt.Columns) == 0 {
		return fail(cur, ErrMissingColumns, "select list is empty")
	}

	var sources []resolvedSource
	if stmt.From != nil {
		rs, err := resolveSource(cur, stmt.From, ErrInvalidFromTable)
		if err != nil {
			return err
		}
		sources = append(sources, rs)
	}
	for i := range stmt.Joins {
		rs, err := resolveSource(cur, &stmt.Joins[i].Table, ErrInvalidJoinTable)
		if err != nil {
			return err
		}
		sources = append(sources, rs)
	}
	for i := 0; i < len(sources); i++ {
		for j := i + 1; j < len(sources); j++ {
			if sources[i].alias == sources[j].alias {
				return fail(cur, ErrAmbiguousJoin, "duplicate source alias "+sources[i].alias)
			}
		}
	}

	// Sources must be resolved before a `*`/`qualifier.*` wildcard can be
	// expanded into concrete per-column identifiers.
	expanded, err := expandSelectList(cur, stmt.Columns, sources)
	if err != nil {
		return err
	}
	stmt.Columns = expanded

	for i := range stmt.Columns {
		item := &stmt.Columns[i]
		if item.Alias != "" {
			continue
		}
		switch e := item.Expr.(type) {
		case *ast.Lit:
			item.Alias = e.Value
		case *ast.Ident:
			item.Alias = e.Source
		default:
			return fail(cur, ErrInvalidSelectExprAlias, "select expression has no derivable alias")
		}
	}
	for i := 0; i < len(stmt.Columns); i++ {
		for j := i + 1; j < len(stmt.Columns); j++ {
			if stmt.Columns[i].Alias == stmt.Columns[j].Alias {
				return fail(cur, ErrAmbiguousColumnInSelectList, "duplicate select alias "+stmt.Columns[i].Alias)
			}
		}
	}

	cur.SourceAliases = make([]string, len(sources))
	for i, s := range sources {
		cur.SourceAliases[i] = s.alias
	}
	cur.Lookup = make(lookup.Table)

	for i := range stmt.Columns {
		if id, ok := stmt.Columns[i].Expr.(*ast.Ident); ok {
			if err := resolveIdentifier(cur, sources, &id.Identifier); err != nil {
				return err
			}
		}
	}
	for i := range stmt.Joins {
		if stmt.Joins[i].On != nil {
			if err := resolveExprIdentifiers(cur, sources, stmt.Joins[i].On); err != nil {
				return err
			}
		}
	}
	if stmt.Where != nil {
		if err := resolveExprIdentifiers(cur, sources, stmt.Where); err != nil {
			return err
		}
	}
	for i := range stmt.GroupBy {
		if err := resolveIdentifier(cur, sources, &stmt.GroupBy[i]); err != nil {
			return err
		}
	}
	for i := range stmt.OrderBy {
		if err := resolveIdentifier(cur, sources, &stmt.OrderBy[i].Identifier); err != nil {
			return err
		}
	}

	if err := checkDuplicateIdentifiers(cur, stmt.GroupBy); err != nil {
		return err
	}
	orderIdents := make([]ast.Identifier, len(stmt.OrderBy))
	for i, o := range stmt.OrderBy {
		orderIdents[i] = o.Identifier
	}
	if err := checkDuplicateIdentifiers(cur, orderIdents); err != nil {
		return err
	}

	if stmt.LimitStart != nil && *stmt.LimitStart < 0 {
		return fail(cur, ErrLimitStartNegative, "limit start is negative")
	}
	if stmt.LimitLength != nil && *stmt.LimitLength < 0 {
		return fail(cur, ErrLimitLengthNegative, "limit length is negative")
	}

	return nil
}

// expandSelectList replaces each `*`/`qualifier.*` wildcard item with one
// concrete Ident item per matching source column, in source order, per
// spec §4.3's select_list grammar.
func expandSelectList(cur *Cursor, items []ast.SelectItem, sources []resolvedSource) ([]ast.SelectItem, error) {
	var out []ast.SelectItem
	for _, item := range items {
		if !item.Star {
			out = append(out, item)
			continue
		}
		if item.StarQualifier != "" {
			idx := -1
			for i, s := range sources {
				if s.alias == item.StarQualifier {
					idx = i
					break
				}
			}
			if idx < 0 {
				return nil, fail(cur, ErrInvalidQualifier, "unknown qualifier "+item.StarQualifier+" in select list")
			}
			out = append(out, starColumns(sources[idx])...)
			continue
		}
		if len(sources) == 0 {
			return nil, fail(cur, ErrMissingColumns, "`*` has no source to expand")
		}
		for _, s := range sources {
			out = append(out, starColumns(s)...)
		}
	}
	return out, nil
}

// starColumns builds one already-qualified Ident select item per column of
// s, so the later alias-defaulting/resolution passes treat an expanded
// wildcard exactly like a hand-written `qualifier.column` item.
func starColumns(s resolvedSource) []ast.SelectItem {
	items := make([]ast.SelectItem, len(s.table.Columns))
	for i, col := range s.table.Columns {
		qual := s.alias
		items[i] = ast.SelectItem{Expr: &ast.Ident{Identifier: ast.Identifier{Qualifier: &qual, Source: col}}}
	}
	return items
}

func resolveSource(cur *Cursor, ref *ast.TableRef, missingCode ErrorCode) (resolvedSource, error) {
	if !ref.Identifier.Qualified() {
		q := cur.ActiveDatabase
		ref.Identifier.Qualifier = &q
	}
	if ref.Alias == "" {
		ref.Alias = ref.Identifier.Source
	}
	h, ok := cur.Catalog.Lookup(ref.Identifier)
	if !ok {
		return resolvedSource{}, fail(cur, missingCode, "no such table "+ref.Identifier.Source)
	}
	return resolvedSource{alias: ref.Alias, table: cur.Catalog.Get(h)}, nil
}

func checkDuplicateIdentifiers(cur *Cursor, ids []ast.Identifier) error {
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[i].Source == ids[j].Source {
				return fail(cur, ErrDuplicateGroupByColumn, "duplicate column "+ids[i].Source)
			}
		}
	}
	return nil
}

func resolveExprIdentifiers(cur *Cursor, sources []resolvedSource, e ast.Expr) error {
	switch n := e.(type) {
	case *ast.Ident:
		return resolveIdentifier(cur, sources, &n.Identifier)
	case *ast.Unary:
		return resolveExprIdentifiers(cur, sources, n.Operand)
	case *ast.BinOp:
		if err := resolveExprIdentifiers(cur, sources, n.Left); err != nil {
			return err
		}
		return resolveExprIdentifiers(cur, sources, n.Right)
	case *ast.Cmp:
		if err := resolveExprIdentifiers(cur, sources, n.Left); err != nil {
			return err
		}
		return resolveExprIdentifiers(cur, sources, n.Right)
	case *ast.IsNullTest:
		return resolveExprIdentifiers(cur, sources, n.Operand)
	case *ast.Logical:
		if err := resolveExprIdentifiers(cur, sources, n.Left); err != nil {
			return err
		}
		return resolveExprIdentifiers(cur, sources, n.Right)
	case *ast.Not:
		return resolveExprIdentifiers(cur, sources, n.Operand)
	default:
		return nil
	}
}

// resolveIdentifier implements spec §4.5 point 4: qualified identifiers
// must name an existing source/column; unqualified identifiers must match
// exactly one source. On success it fills id.Qualifier and records the
// identifier-lookup entry on the cursor.
func resolveIdentifier(cur *Cursor, sources []resolvedSource, id *ast.Identifier) error {
	if id.Qualified() {
		idx := -1
		for i, s := range sources {
			if s.alias == *id.Qualifier {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fail(cur, ErrInvalidQualifier, "unknown qualifier "+*id.Qualifier)
		}
		col, ok := sources[idx].table.ColumnIndex(id.Source)
		if !ok {
			return fail(cur, ErrColumnNotFound, "column "+id.Source+" not found in "+sources[idx].alias)
		}
		cur.Lookup[lookup.Key(*id.Qualifier, id.Source)] = lookup.Entry{SourceIndex: idx, SourceColumn: col}
		return nil
	}

	matchIdx, matchCol, matches := -1, -1, 0
	for i, s := range sources {
		if col, ok := s.table.ColumnIndex(id.Source); ok {
			matchIdx, matchCol = i, col
			matches++
		}
	}
	switch matches {
	case 0:
		return fail(cur, ErrColumnNotFound, "column "+id.Source+" not found in any source")
	case 1:
		id.Qualifier = &sources[matchIdx].alias
		cur.Lookup[lookup.Key(sources[matchIdx].alias, id.Source)] = lookup.Entry{SourceIndex: matchIdx, SourceColumn: matchCol}
		return nil
	default:
		return fail(cur, ErrAmbiguousColumnName, "ambiguous column "+id.Source)
	}
}
