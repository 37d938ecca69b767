package ast

import "sync"

// Node pools for the hot allocation paths during parsing, adapted from the
// teacher's ast/pool.go and narrowed to the node set this grammar produces.

var (
	identPool = sync.Pool{New: func() any { return &Ident{} }}
	litPool   = sync.Pool{New: func() any { return &Lit{} }}
	binOpPool = sync.Pool{New: func() any { return &BinOp{} }}
	cmpPool   = sync.Pool{New: func() any { return &Cmp{} }}
	selStmt   = sync.Pool{New: func() any { return &SelectStmt{} }}
)

// GetIdent returns an *Ident from the pool.
func GetIdent() *Ident { return identPool.Get().(*Ident) }

// ReleaseIdent returns i to the pool.
func ReleaseIdent(i *Ident) {
	*i = Ident{}
	identPool.Put(i)
}

// GetLit returns a *Lit from the pool.
func GetLit() *Lit { return litPool.Get().(*Lit) }

// ReleaseLit returns l to the pool.
func ReleaseLit(l *Lit) {
	*l = Lit{}
	litPool.Put(l)
}

// GetBinOp returns a *BinOp from the pool.
func GetBinOp() *BinOp { return binOpPool.Get().(*BinOp) }

// ReleaseBinOp returns b to the pool.
func ReleaseBinOp(b *BinOp) {
	*b = BinOp{}
	binOpPool.Put(b)
}

// GetCmp returns a *Cmp from the pool.
func GetCmp() *Cmp { return cmpPool.Get().(*Cmp) }

// ReleaseCmp returns c to the pool.
func ReleaseCmp(c *Cmp) {
	*c = Cmp{}
	cmpPool.Put(c)
}

// GetSelectStmt returns a *SelectStmt from the pool.
func GetSelectStmt() *SelectStmt { return selStmt.Get().(*SelectStmt) }

// ReleaseSelectStmt releases s's pooled expression children (select-list
// items, WHERE, each join's ON) and returns s to the pool. Callers must not
// touch s or any Expr reachable from it afterward.
func ReleaseSelectStmt(s *SelectStmt) {
	for _, item := range s.Columns {
		if item.Expr != nil {
			ReleaseExpr(item.Expr)
		}
	}
	if s.Where != nil {
		ReleaseExpr(s.Where)
	}
	for i := range s.Joins {
		if s.Joins[i].On != nil {
			ReleaseExpr(s.Joins[i].On)
		}
	}
	*s = SelectStmt{}
	selStmt.Put(s)
}

// ReleaseExpr recursively returns expression nodes to their pools. Every
// *Ident, *Lit, *BinOp and *Cmp it reaches is put back into its pool,
// whether or not it came from Get*; *Logical, *Not, *Unary and
// *IsNullTest nodes have no pool and are left for GC.
func ReleaseExpr(e Expr) {
	switch n := e.(type) {
	case *BinOp:
		ReleaseExpr(n.Left)
		ReleaseExpr(n.Right)
		ReleaseBinOp(n)
	case *Cmp:
		ReleaseExpr(n.Left)
		ReleaseExpr(n.Right)
		ReleaseCmp(n)
	case *Logical:
		ReleaseExpr(n.Left)
		ReleaseExpr(n.Right)
	case *Not:
		ReleaseExpr(n.Operand)
	case *Unary:
		ReleaseExpr(n.Operand)
	case *IsNullTest:
		ReleaseExpr(n.Operand)
	case *Ident:
		ReleaseIdent(n)
	case *Lit:
		ReleaseLit(n)
	}
}
