package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/watkinslabs/ddbsql/ast"
	"github.com/watkinslabs/ddbsql/lexer"
	"github.com/watkinslabs/ddbsql/token"
)

func parseScript(t *testing.T, sql string) []ast.Statement {
	t.Helper()
	l := lexer.Get(sql)
	tokens, err := l.Scan()
	lexer.Put(l)
	if err != nil {
		t.Fatalf("lex(%q): %v", sql, err)
	}
	p := Get(tokens)
	defer Put(p)
	stmts, err := p.ParseScript()
	if err != nil {
		t.Fatalf("parse(%q): %v", sql, err)
	}
	return stmts
}

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }
func boolp(b bool) *bool    { return &b }

// ident renders an unqualified identifier, the way the parser leaves it
// before the validator fills in a qualifier.
func ident(source string) ast.Identifier { return ast.Identifier{Source: source} }

func qualIdent(qual, source string) ast.Identifier {
	return ast.Identifier{Qualifier: strp(qual), Source: source}
}

// exprEqual structurally compares two expression trees by their exported
// fields, ignoring position information.
func exprEqual(a, b ast.Expr) bool {
	switch x := a.(type) {
	case *ast.Lit:
		y, ok := b.(*ast.Lit)
		return ok && x.Kind == y.Kind && x.Value == y.Value
	case *ast.Ident:
		y, ok := b.(*ast.Ident)
		return ok && identEqual(x.Identifier, y.Identifier)
	case *ast.Unary:
		y, ok := b.(*ast.Unary)
		return ok && x.Op == y.Op && exprEqual(x.Operand, y.Operand)
	case *ast.BinOp:
		y, ok := b.(*ast.BinOp)
		return ok && x.Op == y.Op && exprEqual(x.Left, y.Left) && exprEqual(x.Right, y.Right)
	case *ast.Cmp:
		y, ok := b.(*ast.Cmp)
		return ok && x.Op == y.Op && exprEqual(x.Left, y.Left) && exprEqual(x.Right, y.Right)
	case *ast.IsNullTest:
		y, ok := b.(*ast.IsNullTest)
		return ok && x.Not == y.Not && exprEqual(x.Operand, y.Operand)
	case *ast.Logical:
		y, ok := b.(*ast.Logical)
		return ok && x.Op == y.Op && exprEqual(x.Left, y.Left) && exprEqual(x.Right, y.Right)
	case *ast.Not:
		y, ok := b.(*ast.Not)
		return ok && exprEqual(x.Operand, y.Operand)
	default:
		return a == nil && b == nil
	}
}

func identEqual(a, b ast.Identifier) bool {
	aq, bq := "", ""
	if a.Qualifier != nil {
		aq = *a.Qualifier
	}
	if b.Qualifier != nil {
		bq = *b.Qualifier
	}
	return aq == bq && a.Source == b.Source
}

func TestParseUse(t *testing.T) {
	stmts := parseScript(t, "USE mydb;")
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	use, ok := stmts[0].(*ast.UseStmt)
	if !ok {
		t.Fatalf("statement is %T, want *ast.UseStmt", stmts[0])
	}
	if use.Database != "mydb" {
		t.Errorf("Database = %q, want %q", use.Database, "mydb")
	}
}

func TestParseCreateTable(t *testing.T) {
	sql := `CREATE TABLE people ("id", "name") FILE "people.csv" COLUMN "," STRICT TRUE`
	stmts := parseScript(t, sql)
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	create, ok := stmts[0].(*ast.CreateTableStmt)
	if !ok {
		t.Fatalf("statement is %T, want *ast.CreateTableStmt", stmts[0])
	}

	want := &ast.CreateTableStmt{
		Table:       ident("people"),
		Columns:     []string{"id", "name"},
		FilePath:    "people.csv",
		ColumnDelim: strp(","),
		Strict:      boolp(true),
	}
	got := *create
	got.StartPos = want.StartPos // position isn't part of the comparison
	if diff := cmp.Diff(want, &got, cmp.Comparer(identEqual)); diff != "" {
		t.Errorf("CreateTableStmt mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCreateTableMinimal(t *testing.T) {
	sql := `CREATE TABLE db.people ("id") FILE "people.csv"`
	stmts := parseScript(t, sql)
	create := stmts[0].(*ast.CreateTableStmt)
	if !create.Table.Qualified() || *create.Table.Qualifier != "db" || create.Table.Source != "people" {
		t.Errorf("Table = %+v, want db.people", create.Table)
	}
	if create.ColumnDelim != nil {
		t.Errorf("ColumnDelim = %v, want nil", *create.ColumnDelim)
	}
	if create.Strict != nil {
		t.Errorf("Strict = %v, want nil", *create.Strict)
	}
}

func TestParseSelectSimple(t *testing.T) {
	stmts := parseScript(t, "SELECT a, b FROM t")
	sel := stmts[0].(*ast.SelectStmt)

	if len(sel.Columns) != 2 {
		t.Fatalf("got %d columns, want 2", len(sel.Columns))
	}
	if !exprEqual(sel.Columns[0].Expr, &ast.Ident{Identifier: ident("a")}) {
		t.Errorf("column 0 = %+v", sel.Columns[0].Expr)
	}
	if sel.From == nil || sel.From.Identifier.Source != "t" {
		t.Errorf("From = %+v", sel.From)
	}
}

func TestParseSelectDistinctAndAlias(t *testing.T) {
	stmts := parseScript(t, "SELECT DISTINCT a AS x, 1 FROM t")
	sel := stmts[0].(*ast.SelectStmt)
	if !sel.Distinct {
		t.Errorf("Distinct = false, want true")
	}
	if sel.Columns[0].Alias != "x" {
		t.Errorf("Columns[0].Alias = %q, want %q", sel.Columns[0].Alias, "x")
	}
	lit, ok := sel.Columns[1].Expr.(*ast.Lit)
	if !ok || lit.Value != "1" {
		t.Errorf("Columns[1].Expr = %+v, want literal 1", sel.Columns[1].Expr)
	}
}

func TestParseSelectStar(t *testing.T) {
	stmts := parseScript(t, "SELECT * FROM t")
	sel := stmts[0].(*ast.SelectStmt)
	if len(sel.Columns) != 1 || !sel.Columns[0].Star || sel.Columns[0].StarQualifier != "" {
		t.Errorf("Columns = %+v, want single unqualified star", sel.Columns)
	}
}

func TestParseSelectQualifiedStar(t *testing.T) {
	stmts := parseScript(t, "SELECT t.* FROM t")
	sel := stmts[0].(*ast.SelectStmt)
	if len(sel.Columns) != 1 || !sel.Columns[0].Star || sel.Columns[0].StarQualifier != "t" {
		t.Errorf("Columns = %+v, want t.* star", sel.Columns)
	}
}

func TestParseSelectJoinsAndOn(t *testing.T) {
	sql := "SELECT a.x FROM a LEFT JOIN b ON a.id = b.id RIGHT JOIN c ON b.id = c.id"
	stmts := parseScript(t, sql)
	sel := stmts[0].(*ast.SelectStmt)

	if len(sel.Joins) != 2 {
		t.Fatalf("got %d joins, want 2", len(sel.Joins))
	}
	if sel.Joins[0].Type != ast.JoinLeft {
		t.Errorf("Joins[0].Type = %v, want JoinLeft", sel.Joins[0].Type)
	}
	if sel.Joins[1].Type != ast.JoinRight {
		t.Errorf("Joins[1].Type = %v, want JoinRight", sel.Joins[1].Type)
	}
	wantOn0 := &ast.Cmp{Op: token.EQ, Left: &ast.Ident{Identifier: qualIdent("a", "id")}, Right: &ast.Ident{Identifier: qualIdent("b", "id")}}
	if !exprEqual(sel.Joins[0].On, wantOn0) {
		t.Errorf("Joins[0].On = %+v", sel.Joins[0].On)
	}
}

func TestParseSelectTableAliasWithoutAs(t *testing.T) {
	stmts := parseScript(t, "SELECT 1 FROM people p")
	sel := stmts[0].(*ast.SelectStmt)
	if sel.From.Alias != "p" {
		t.Errorf("From.Alias = %q, want %q", sel.From.Alias, "p")
	}
}

func TestParseSelectWhereExpression(t *testing.T) {
	stmts := parseScript(t, "SELECT 1 FROM t WHERE a + 1 = b * 2 AND c IS NOT NULL")
	sel := stmts[0].(*ast.SelectStmt)

	logical, ok := sel.Where.(*ast.Logical)
	if !ok {
		t.Fatalf("Where is %T, want *ast.Logical", sel.Where)
	}
	if _, ok := logical.Left.(*ast.Cmp); !ok {
		t.Errorf("Where.Left is %T, want *ast.Cmp", logical.Left)
	}
	isNull, ok := logical.Right.(*ast.IsNullTest)
	if !ok || !isNull.Not {
		t.Errorf("Where.Right = %+v, want IS NOT NULL", logical.Right)
	}
}

func TestParseSelectGroupOrderLimit(t *testing.T) {
	stmts := parseScript(t, "SELECT a FROM t GROUP BY a ORDER BY a DESC, b LIMIT 5, 10")
	sel := stmts[0].(*ast.SelectStmt)

	if len(sel.GroupBy) != 1 || sel.GroupBy[0].Source != "a" {
		t.Errorf("GroupBy = %+v", sel.GroupBy)
	}
	if len(sel.OrderBy) != 2 || !sel.OrderBy[0].Desc || sel.OrderBy[1].Desc {
		t.Errorf("OrderBy = %+v", sel.OrderBy)
	}
	if sel.LimitStart == nil || *sel.LimitStart != 5 {
		t.Errorf("LimitStart = %v, want 5", sel.LimitStart)
	}
	if sel.LimitLength == nil || *sel.LimitLength != 10 {
		t.Errorf("LimitLength = %v, want 10", sel.LimitLength)
	}
}

func TestParseSelectLimitLengthOnly(t *testing.T) {
	stmts := parseScript(t, "SELECT a FROM t LIMIT 10")
	sel := stmts[0].(*ast.SelectStmt)
	if sel.LimitStart != nil {
		t.Errorf("LimitStart = %v, want nil", *sel.LimitStart)
	}
	if sel.LimitLength == nil || *sel.LimitLength != 10 {
		t.Errorf("LimitLength = %v, want 10", sel.LimitLength)
	}
}

func TestParseScriptMultipleStatements(t *testing.T) {
	sql := `USE db; CREATE TABLE t ("a") FILE "t.csv"; SELECT a FROM t;`
	stmts := parseScript(t, sql)
	if len(stmts) != 3 {
		t.Fatalf("got %d statements, want 3", len(stmts))
	}
	if _, ok := stmts[0].(*ast.UseStmt); !ok {
		t.Errorf("stmts[0] is %T", stmts[0])
	}
	if _, ok := stmts[1].(*ast.CreateTableStmt); !ok {
		t.Errorf("stmts[1] is %T", stmts[1])
	}
	if _, ok := stmts[2].(*ast.SelectStmt); !ok {
		t.Errorf("stmts[2] is %T", stmts[2])
	}
}

func TestParseUnknownSQLError(t *testing.T) {
	l := lexer.Get("SELECT FROM")
	tokens, err := l.Scan()
	lexer.Put(l)
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	p := Get(tokens)
	defer Put(p)
	_, err = p.ParseScript()
	if err == nil {
		t.Fatalf("expected a parse error, got none")
	}
}
