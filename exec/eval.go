package exec

import (
	"fmt"
	"math"
	"strconv"

	"github.com/watkinslabs/ddbsql/ast"
	"github.com/watkinslabs/ddbsql/dataset"
	"github.com/watkinslabs/ddbsql/lookup"
	"github.com/watkinslabs/ddbsql/token"
)

// Context groups the data an expression needs to resolve an identifier
// against the current row-matrix positions (spec §4.7 point 5).
type Context struct {
	Sources []*dataset.DataSet
	Lookup  lookup.Table
}

// Evaluate walks e and returns its typed value, resolving identifiers
// through ctx against the sources' current Position/Frame.
func Evaluate(ctx *Context, e ast.Expr) (Value, error) {
	switch n := e.(type) {
	case *ast.Lit:
		return literalValue(n)
	case *ast.Ident:
		return identValue(ctx, n)
	case *ast.Unary:
		return evalUnary(ctx, n)
	case *ast.BinOp:
		return evalArithmetic(ctx, n)
	case *ast.Cmp:
		b, err := evalComparison(ctx, n)
		if err != nil {
			return Value{}, err
		}
		return boolValue(b), nil
	case *ast.IsNullTest:
		return evalIsNull(ctx, n)
	case *ast.Logical:
		b, err := evalLogical(ctx, n)
		if err != nil {
			return Value{}, err
		}
		return boolValue(b), nil
	case *ast.Not:
		v, err := Evaluate(ctx, n.Operand)
		if err != nil {
			return Value{}, err
		}
		return boolValue(!v.truthy()), nil
	default:
		return Value{}, fmt.Errorf("unsupported expression node %T", e)
	}
}

// Truthy evaluates e and reports its boolean result, per spec §4.7's
// WHERE/ON predicate evaluation.
func Truthy(ctx *Context, e ast.Expr) (bool, error) {
	v, err := Evaluate(ctx, e)
	if err != nil {
		return false, err
	}
	return v.truthy(), nil
}

// identValue resolves an identifier through the lookup table against the
// current source positions, per spec §4.7 point 4 ("eval_row_set"):
// a source in FrameNullRow state yields NULL; an out-of-range column index
// yields NULL; otherwise the raw CSV cell is type-inferred into a Value.
func identValue(ctx *Context, id *ast.Ident) (Value, error) {
	qualifier := ""
	if id.Qualifier != nil {
		qualifier = *id.Qualifier
	}
	entry, ok := ctx.Lookup[lookup.Key(qualifier, id.Source)]
	if !ok {
		return Value{}, fmt.Errorf("identifier %s.%s has no lookup entry", qualifier, id.Source)
	}
	src := ctx.Sources[entry.SourceIndex]
	if src.Frame == dataset.FrameNullRow {
		return nullValue(), nil
	}
	raw, ok := src.At(entry.SourceColumn)
	if !ok {
		return nullValue(), nil
	}
	return cellValue(raw), nil
}

// cellValue infers a runtime type for a raw CSV cell: integer, then float,
// else a plain string. The file format carries no column type declarations
// (spec §4.6), so typing is inferred at evaluation time the way an
// untyped-flat-file engine must.
func cellValue(raw string) Value {
	if raw == "" {
		return Value{Kind: KindString, Str: ""}
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Value{Kind: KindInt, Int: n}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Value{Kind: KindFloat, Flt: f}
	}
	return Value{Kind: KindString, Str: raw}
}

func evalUnary(ctx *Context, n *ast.Unary) (Value, error) {
	v, err := Evaluate(ctx, n.Operand)
	if err != nil {
		return Value{}, err
	}
	if v.Kind == KindNull || v.Kind == KindString {
		return Value{}, fmt.Errorf("unary operator not valid on NULL/STRING operand")
	}
	if n.Op == token.MINUS {
		switch v.Kind {
		case KindInt, KindLong:
			return Value{Kind: v.Kind, Int: -v.Int}, nil
		case KindFloat:
			return Value{Kind: KindFloat, Flt: -v.Flt}, nil
		}
	}
	return v, nil
}

// evalArithmetic implements spec §4.7's arithmetic/bitwise rules: NULL or
// STRING operands are invalid, mixed numeric kinds widen INT->LONG->FLOAT,
// and float `%` uses floating modulo.
func evalArithmetic(ctx *Context, n *ast.BinOp) (Value, error) {
	l, err := Evaluate(ctx, n.Left)
	if err != nil {
		return Value{}, err
	}
	r, err := Evaluate(ctx, n.Right)
	if err != nil {
		return Value{}, err
	}
	if !l.isNumeric() || !r.isNumeric() {
		return Value{}, fmt.Errorf("arithmetic on NULL/STRING operand")
	}

	kind := widen(l.Kind, r.Kind)
	if kind == KindFloat {
		lf, rf := l.numeric(), r.numeric()
		f, err := floatArith(n.Op, lf, rf)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindFloat, Flt: f}, nil
	}

	li, ri := l.Int, r.Int
	i, err := intArith(n.Op, li, ri)
	if err != nil {
		return Value{}, err
	}
	return Value{Kind: kind, Int: i}, nil
}

func floatArith(op token.Token, l, r float64) (float64, error) {
	switch op {
	case token.PLUS:
		return l + r, nil
	case token.MINUS:
		return l - r, nil
	case token.ASTERISK:
		return l * r, nil
	case token.SLASH:
		if r == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return l / r, nil
	case token.PERCENT:
		if r == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return math.Mod(l, r), nil
	default:
		return 0, fmt.Errorf("operator %v not valid on FLOAT operands", op)
	}
}

func intArith(op token.Token, l, r int64) (int64, error) {
	switch op {
	case token.PLUS:
		return l + r, nil
	case token.MINUS:
		return l - r, nil
	case token.ASTERISK:
		return l * r, nil
	case token.SLASH:
		if r == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return l / r, nil
	case token.PERCENT:
		if r == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return l % r, nil
	case token.LSHIFT:
		return l << uint(r), nil
	case token.RSHIFT:
		return l >> uint(r), nil
	case token.BITAND:
		return l & r, nil
	case token.BITOR:
		return l | r, nil
	default:
		return 0, fmt.Errorf("unknown arithmetic operator %v", op)
	}
}

// evalComparison implements spec §4.7's cross-type comparison rule: when
// one side is a string and the other numeric, the numeric side is
// stringified; otherwise both sides are promoted to the wider numeric type.
// `<=>` is true when both sides are NULL or when the values are equal.
func evalComparison(ctx *Context, n *ast.Cmp) (bool, error) {
	l, err := Evaluate(ctx, n.Left)
	if err != nil {
		return false, err
	}
	r, err := Evaluate(ctx, n.Right)
	if err != nil {
		return false, err
	}

	if n.Op == token.NULLEQ {
		if l.Kind == KindNull || r.Kind == KindNull {
			return l.Kind == KindNull && r.Kind == KindNull, nil
		}
		return valuesEqual(l, r), nil
	}
	if l.Kind == KindNull || r.Kind == KindNull {
		return false, nil
	}

	switch n.Op {
	case token.EQ:
		return valuesEqual(l, r), nil
	case token.NEQ:
		return !valuesEqual(l, r), nil
	}

	if l.Kind == KindString || r.Kind == KindString {
		ls, rs := l.String(), r.String()
		switch n.Op {
		case token.LT:
			return ls < rs, nil
		case token.LTE:
			return ls <= rs, nil
		case token.GT:
			return ls > rs, nil
		case token.GTE:
			return ls >= rs, nil
		}
		return false, fmt.Errorf("unknown comparison operator %v", n.Op)
	}

	lf, rf := l.numeric(), r.numeric()
	switch n.Op {
	case token.LT:
		return lf < rf, nil
	case token.LTE:
		return lf <= rf, nil
	case token.GT:
		return lf > rf, nil
	case token.GTE:
		return lf >= rf, nil
	}
	return false, fmt.Errorf("unknown comparison operator %v", n.Op)
}

func valuesEqual(l, r Value) bool {
	if l.Kind == KindString || r.Kind == KindString {
		return l.String() == r.String()
	}
	return l.numeric() == r.numeric()
}

func evalIsNull(ctx *Context, n *ast.IsNullTest) (Value, error) {
	v, err := Evaluate(ctx, n.Operand)
	if err != nil {
		return Value{}, err
	}
	isNull := v.Kind == KindNull
	if n.Not {
		return boolValue(!isNull), nil
	}
	return boolValue(isNull), nil
}

// evalLogical folds AND/OR/&&/|| left-to-right, short-circuiting OR/||
// to true on the first true operand, per spec §4.7 point 5.
func evalLogical(ctx *Context, n *ast.Logical) (bool, error) {
	l, err := Truthy(ctx, n.Left)
	if err != nil {
		return false, err
	}
	switch n.Op {
	case token.OR, token.LOGOR:
		if l {
			return true, nil
		}
		return Truthy(ctx, n.Right)
	default: // AND, LOGAND
		if !l {
			return false, nil
		}
		return Truthy(ctx, n.Right)
	}
}
