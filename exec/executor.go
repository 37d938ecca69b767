// Package exec also hosts the row-matrix join walk: the Cartesian
// enumeration of FROM + joins, predicate application, and projection
// described in spec §4.7.
package exec

import (
	"sort"

	"github.com/watkinslabs/ddbsql/ast"
	"github.com/watkinslabs/ddbsql/dataset"
	"github.com/watkinslabs/ddbsql/lookup"
)

// Plan is everything a SELECT execution needs beyond the parsed statement:
// the sources loaded in source_alias[] order, and the validator's
// identifier-lookup table.
type Plan struct {
	Stmt    *ast.SelectStmt
	Sources []*dataset.DataSet
	Lookup  lookup.Table
}

// emittedRow is one surviving output row plus the evaluated GROUP BY/ORDER
// BY keys captured at emission time — after the walk returns, the sources'
// Position/Frame no longer reflect the binding that produced this row, so
// any key needed later must be captured now.
type emittedRow struct {
	cols     []string
	null     []bool
	groupKey []Value
	orderKey []Value
}

// walker drives the recursive depth-first enumeration of return_match's
// Go equivalent (spec §4.7 point 3), plus the RIGHT/FULL OUTER second pass.
type walker struct {
	ctx     *Context
	stmt    *ast.SelectStmt
	sources []*dataset.DataSet

	// matched[set][row] records, for join sources (set > 0), whether
	// sources[set].Rows[row] was ever bound successfully during the primary
	// walk, across every outer combination tried — the bitset the
	// RIGHT/FULL OUTER second pass reads to find rows nothing on the left
	// ever matched. matched[0], the FROM side, is never set.
	matched [][]bool
	emitted []emittedRow
}

// Run performs the full join walk and projection, applies GROUP BY,
// DISTINCT, ORDER BY and LIMIT, and returns the projected result set.
func Run(p *Plan) (*dataset.DataSet, error) {
	ctx := &Context{Sources: p.Sources, Lookup: p.Lookup}
	w := &walker{ctx: ctx, stmt: p.Stmt, sources: p.Sources}

	for _, s := range w.sources {
		s.Frame = dataset.FrameUnevaluated
		s.Position = 0
	}
	w.matched = make([][]bool, len(w.sources))
	for i, s := range w.sources {
		w.matched[i] = make([]bool, len(s.Rows))
	}

	if err := w.walk(0); err != nil {
		return nil, err
	}
	if err := w.secondPass(); err != nil {
		return nil, err
	}

	rows := w.emitted
	if len(p.Stmt.GroupBy) > 0 {
		rows = groupRows(rows)
	}
	if p.Stmt.Distinct {
		rows = distinctRows(rows)
	}
	if len(p.Stmt.OrderBy) > 0 {
		sortRows(rows, p.Stmt.OrderBy)
	}
	rows = applyLimit(rows, p.Stmt.LimitStart, p.Stmt.LimitLength)

	names := make([]string, len(p.Stmt.Columns))
	for i, c := range p.Stmt.Columns {
		names[i] = c.Alias
	}
	out := &dataset.DataSet{ColumnNames: names, Rows: make([]dataset.Row, len(rows))}
	for i, r := range rows {
		out.Rows[i] = dataset.Row{Columns: r.cols, Null: r.null, FileRow: i + 1}
	}
	return out, nil
}

// walk enumerates sources[set]'s rows against the binding already fixed for
// sources[0:set]. set==0 is the FROM side: it has no join predicate, so
// every row is tried. Deeper sets are JOIN clauses: a miss under INNER
// drops that candidate row; a miss under LEFT/FULL_OUTER is handled once,
// after the loop, by padding a single NULL row if nothing matched at all.
func (w *walker) walk(set int) error {
	if set == len(w.sources) {
		return w.emitIfPasses()
	}

	src := w.sources[set]
	var jt ast.JoinType
	var on ast.Expr
	if set > 0 {
		j := &w.stmt.Joins[set-1]
		jt = j.Type
		on = j.On
	}

	matchedAny := false
	for row := 0; row < len(src.Rows); row++ {
		src.Position = row
		ok := true
		if set > 0 && on != nil {
			var err error
			ok, err = Truthy(w.ctx, on)
			if err != nil {
				return err
			}
		}
		if ok {
			matchedAny = true
			src.Frame = dataset.FrameMatched
			if set > 0 {
				w.matched[set][row] = true
			}
			if err := w.walk(set + 1); err != nil {
				return err
			}
			continue
		}
		if set > 0 && jt == ast.JoinInner {
			src.Frame = dataset.FrameFilteredInner
		}
	}

	if set > 0 && !matchedAny && (jt == ast.JoinLeft || jt == ast.JoinFullOuter) {
		src.Frame = dataset.FrameNullRow
		src.Position = -1
		if err := w.walk(set + 1); err != nil {
			return err
		}
	}
	return nil
}

// secondPass implements the RIGHT/FULL OUTER redesign of spec §4.7/§9:
// after the primary left-anchored walk, any right-hand row that never
// matched is emitted once on its own, with every other source's frame
// padded to NULL.
func (w *walker) secondPass() error {
	for idx := range w.stmt.Joins {
		jt := w.stmt.Joins[idx].Type
		if jt != ast.JoinRight && jt != ast.JoinFullOuter {
			continue
		}
		set := idx + 1
		for row, wasMatched := range w.matched[set] {
			if wasMatched {
				continue
			}
			for i, s := range w.sources {
				if i == set {
					s.Frame = dataset.FrameMatched
					s.Position = row
				} else {
					s.Frame = dataset.FrameNullRow
					s.Position = -1
				}
			}
			if err := w.emitIfPasses(); err != nil {
				return err
			}
		}
	}
	return nil
}

// emitIfPasses implements spec §4.7 point 4: short-circuit on a filtered
// source, then apply WHERE, then project.
func (w *walker) emitIfPasses() error {
	for _, s := range w.sources {
		if s.Frame == dataset.FrameFilteredInner {
			return nil
		}
	}
	if w.stmt.Where != nil {
		ok, err := Truthy(w.ctx, w.stmt.Where)
		if err != nil {
			return err
		}
		if !ok {
			if len(w.sources) > 0 {
				w.sources[0].Frame = dataset.FrameFilteredWhere
			}
			return nil
		}
	}

	cols, null, groupKey, orderKey, err := w.project()
	if err != nil {
		return err
	}
	w.emitted = append(w.emitted, emittedRow{cols: cols, null: null, groupKey: groupKey, orderKey: orderKey})
	return nil
}

func (w *walker) project() ([]string, []bool, []Value, []Value, error) {
	cols := make([]string, len(w.stmt.Columns))
	var null []bool
	for i, item := range w.stmt.Columns {
		v, err := Evaluate(w.ctx, item.Expr)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		cols[i] = v.String()
		if v.IsNull() {
			if null == nil {
				null = make([]bool, len(w.stmt.Columns))
			}
			null[i] = true
		}
	}

	groupKey := make([]Value, len(w.stmt.GroupBy))
	for i, id := range w.stmt.GroupBy {
		v, err := Evaluate(w.ctx, &ast.Ident{Identifier: id})
		if err != nil {
			return nil, nil, nil, nil, err
		}
		groupKey[i] = v
	}

	orderKey := make([]Value, len(w.stmt.OrderBy))
	for i, o := range w.stmt.OrderBy {
		v, err := Evaluate(w.ctx, &ast.Ident{Identifier: o.Identifier})
		if err != nil {
			return nil, nil, nil, nil, err
		}
		orderKey[i] = v
	}

	return cols, null, groupKey, orderKey, nil
}

// groupRows implements GROUP BY as the engine's non-aggregate scope allows
// it (spec §1 excludes aggregate functions): one output row per distinct
// combination of grouped-column values, first occurrence kept.
func groupRows(rows []emittedRow) []emittedRow {
	var out []emittedRow
	seen := make([][]Value, 0, len(rows))
	for _, r := range rows {
		dup := false
		for _, k := range seen {
			if valueSliceEqual(k, r.groupKey) {
				dup = true
				break
			}
		}
		if !dup {
			seen = append(seen, r.groupKey)
			out = append(out, r)
		}
	}
	return out
}

func distinctRows(rows []emittedRow) []emittedRow {
	var out []emittedRow
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		key := stringSliceKey(r.cols, r.null)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// stringSliceKey builds a dedup key from cols and their null flags, so a
// real empty-string value never collides with a NULL in the same column.
func stringSliceKey(cols []string, null []bool) string {
	var b []byte
	for i, c := range cols {
		if i < len(null) && null[i] {
			b = append(b, 1)
		} else {
			b = append(b, 0)
		}
		b = append(b, c...)
		b = append(b, 0)
	}
	return string(b)
}

func valueSliceEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !valuesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// sortRows applies ORDER BY's identifier list, each with its own ASC/DESC,
// as successive tie-break comparisons (spec §4.3's order_list).
func sortRows(rows []emittedRow, orderBy []ast.OrderItem) {
	sort.SliceStable(rows, func(i, j int) bool {
		for k := range orderBy {
			c := compareValues(rows[i].orderKey[k], rows[j].orderKey[k])
			if c == 0 {
				continue
			}
			if orderBy[k].Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compareValues orders two values using the same cross-type rule as
// evalComparison: NULL sorts first, then a string/numeric mismatch
// compares as strings, else numerically.
func compareValues(l, r Value) int {
	switch {
	case l.Kind == KindNull && r.Kind == KindNull:
		return 0
	case l.Kind == KindNull:
		return -1
	case r.Kind == KindNull:
		return 1
	}
	if l.Kind == KindString || r.Kind == KindString {
		ls, rs := l.String(), r.String()
		switch {
		case ls < rs:
			return -1
		case ls > rs:
			return 1
		default:
			return 0
		}
	}
	lf, rf := l.numeric(), r.numeric()
	switch {
	case lf < rf:
		return -1
	case lf > rf:
		return 1
	default:
		return 0
	}
}

// applyLimit implements LIMIT_START/LIMIT_LENGTH: start defaults to 0,
// length defaults to "the rest of the rows" (spec §4.3/§6: `LIMIT n[, m]`).
func applyLimit(rows []emittedRow, start, length *int) []emittedRow {
	s := 0
	if start != nil {
		s = *start
	}
	if s >= len(rows) {
		return nil
	}
	rows = rows[s:]
	if length != nil && *length < len(rows) {
		rows = rows[:*length]
	}
	return rows
}
