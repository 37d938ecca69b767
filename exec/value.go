// Package exec is the pure evaluation core: expression evaluation and the
// row-matrix join walk (spec §4.7). It takes data sets and a lookup table
// as plain arguments rather than depending on session.Cursor, so the
// session package can own orchestration without an import cycle.
package exec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/watkinslabs/ddbsql/ast"
)

// ValueKind tags a runtime expression value (spec §3/§4.7).
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt
	KindLong
	KindFloat
	KindString
)

// Value is a typed result of evaluating one expression node.
type Value struct {
	Kind ValueKind
	Int  int64
	Flt  float64
	Str  string
}

func nullValue() Value  { return Value{Kind: KindNull} }
func boolValue(b bool) Value {
	if b {
		return Value{Kind: KindInt, Int: 1}
	}
	return Value{Kind: KindInt, Int: 0}
}
func (v Value) truthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindString:
		return v.Str != ""
	default:
		return v.numeric() != 0
	}
}

// numeric returns v's value widened to float64, for KindInt/KindLong/KindFloat.
func (v Value) numeric() float64 {
	switch v.Kind {
	case KindInt, KindLong:
		return float64(v.Int)
	case KindFloat:
		return v.Flt
	default:
		return 0
	}
}

func (v Value) isNumeric() bool {
	return v.Kind == KindInt || v.Kind == KindLong || v.Kind == KindFloat
}

// widen returns the wider of two numeric kinds, per spec §4.7's
// INT -> LONG -> FLOAT ladder.
func widen(a, b ValueKind) ValueKind {
	rank := func(k ValueKind) int {
		switch k {
		case KindInt:
			return 0
		case KindLong:
			return 1
		case KindFloat:
			return 2
		default:
			return -1
		}
	}
	if rank(a) >= rank(b) {
		return a
	}
	return b
}

func literalValue(l *ast.Lit) (Value, error) {
	switch l.Kind {
	case ast.LitNull:
		return nullValue(), nil
	case ast.LitString:
		return Value{Kind: KindString, Str: l.Value}, nil
	case ast.LitNumeric:
		n, err := strconv.ParseInt(l.Value, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid numeric literal %q: %w", l.Value, err)
		}
		return Value{Kind: KindInt, Int: n}, nil
	case ast.LitReal:
		f, err := strconv.ParseFloat(l.Value, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid real literal %q: %w", l.Value, err)
		}
		return Value{Kind: KindFloat, Flt: f}, nil
	case ast.LitHex:
		n, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimPrefix(l.Value, "0x"), "0X"), 16, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid hex literal %q: %w", l.Value, err)
		}
		return Value{Kind: KindLong, Int: n}, nil
	case ast.LitBinary:
		n, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimPrefix(l.Value, "0b"), "0B"), 2, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid binary literal %q: %w", l.Value, err)
		}
		return Value{Kind: KindLong, Int: n}, nil
	default:
		return Value{}, fmt.Errorf("unknown literal kind %d", l.Kind)
	}
}

// IsNull reports whether v is the NULL sentinel (spec §4.7 point 4).
// Callers projecting v into a result row must carry this alongside
// String(), which renders a NULL as "" indistinguishable from real empty
// string data on its own.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// String renders v's textual form for projection (spec §4.7). For
// KindNull this is "", so callers needing to tell NULL apart from a real
// empty-string value must also consult IsNull.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindInt, KindLong:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Flt, 'g', -1, 64)
	default:
		return v.Str
	}
}
