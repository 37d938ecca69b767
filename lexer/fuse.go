package lexer

import "github.com/watkinslabs/ddbsql/token"

// fuse applies multi-token fusion and the post-fusion fixups described in
// spec §4.2, grounded on original_source's token_combine/consolidate_tokens.
func fuse(items []token.Item) ([]token.Item, error) {
	items = fuseWindows(items)
	items = fixupAlias(items)
	items = fixupQualifier(items)
	items = fixupLimit(items)
	items = fixupEquals(items)
	items = collapseSemicolons(items)
	return items, nil
}

type window struct {
	pattern []token.Token
	result  token.Token
	// combine controls how the fused value is built from the matched items.
	combine func(m []token.Item) string
}

func joinValues(m []token.Item) string {
	s := ""
	for i, it := range m {
		if i > 0 {
			s += " "
		}
		s += it.Value
	}
	return s
}

func concatValues(m []token.Item) string {
	s := ""
	for _, it := range m {
		s += it.Value
	}
	return s
}

var windows = []window{
	{[]token.Token{token.FULL, token.OUTER, token.JOIN}, token.FULL_OUTER_JOIN, joinValues},
	{[]token.Token{token.IS, token.NOT, token.NULL}, token.IS_NOT_NULL, joinValues},
	{[]token.Token{token.IS, token.NULL}, token.IS_NULL, joinValues},
	{[]token.Token{token.NOT, token.IN}, token.NOT_IN, joinValues},
	{[]token.Token{token.INT, token.DOT, token.INT}, token.REAL, concatValues},
	{[]token.Token{token.DOT, token.INT}, token.REAL, concatValues},
	{[]token.Token{token.LEFT, token.JOIN}, token.LEFT_JOIN, joinValues},
	{[]token.Token{token.RIGHT, token.JOIN}, token.RIGHT_JOIN, joinValues},
	{[]token.Token{token.INNER, token.JOIN}, token.INNER_JOIN, joinValues},
	{[]token.Token{token.GROUP, token.BY}, token.GROUP_BY, joinValues},
	{[]token.Token{token.ORDER, token.BY}, token.ORDER_BY, joinValues},
	{[]token.Token{token.CREATE, token.TABLE}, token.CREATE_TABLE, joinValues},
}

func fuseWindows(items []token.Item) []token.Item {
	changed := true
	for changed {
		changed = false
		for _, w := range windows {
			out := make([]token.Item, 0, len(items))
			i := 0
			for i < len(items) {
				if matches(items, i, w.pattern) {
					end := i + len(w.pattern)
					out = append(out, token.Item{
						Type:  w.result,
						Value: w.combine(items[i:end]),
						Pos:   items[i].Pos,
					})
					i = end
					changed = true
					continue
				}
				out = append(out, items[i])
				i++
			}
			items = out
		}
	}
	return items
}

func matches(items []token.Item, at int, pattern []token.Token) bool {
	if at+len(pattern) > len(items) {
		return false
	}
	for i, t := range pattern {
		if items[at+i].Type != t {
			return false
		}
	}
	return true
}

// fixupAlias consumes AS and retags the following IDENT as ALIAS.
func fixupAlias(items []token.Item) []token.Item {
	out := make([]token.Item, 0, len(items))
	for i := 0; i < len(items); i++ {
		if items[i].Type == token.AS && i+1 < len(items) && items[i+1].Type == token.IDENT {
			aliased := items[i+1]
			aliased.Type = token.ALIAS
			out = append(out, aliased)
			i++
			continue
		}
		out = append(out, items[i])
	}
	return out
}

// fixupQualifier turns IDENT.IDENT into QUALIFIER SOURCE (dropping the dot),
// IDENT.* into QUALIFIER ASTERISK (dropping the dot, for a qualified select
// star), and standalone IDENT into SOURCE.
func fixupQualifier(items []token.Item) []token.Item {
	out := make([]token.Item, 0, len(items))
	for i := 0; i < len(items); i++ {
		if items[i].Type == token.IDENT {
			if i+2 < len(items) && items[i+1].Type == token.DOT && items[i+2].Type == token.IDENT {
				qual := items[i]
				qual.Type = token.QUALIFIER
				src := items[i+2]
				src.Type = token.SOURCE
				out = append(out, qual, src)
				i += 2
				continue
			}
			if i+2 < len(items) && items[i+1].Type == token.DOT && items[i+2].Type == token.ASTERISK {
				qual := items[i]
				qual.Type = token.QUALIFIER
				out = append(out, qual, items[i+2])
				i += 2
				continue
			}
			src := items[i]
			src.Type = token.SOURCE
			out = append(out, src)
			continue
		}
		out = append(out, items[i])
	}
	return out
}

// fixupLimit splits `LIMIT n[, m]` into LIMIT_START/LIMIT_LENGTH tokens.
func fixupLimit(items []token.Item) []token.Item {
	out := make([]token.Item, 0, len(items))
	for i := 0; i < len(items); i++ {
		if items[i].Type == token.LIMIT && i+1 < len(items) && items[i+1].Type == token.INT {
			first := items[i+1]
			if i+3 < len(items) && items[i+2].Type == token.COMMA && items[i+3].Type == token.INT {
				start := first
				start.Type = token.LIMIT_START
				length := items[i+3]
				length.Type = token.LIMIT_LENGTH
				out = append(out, start, length)
				i += 3
				continue
			}
			length := first
			length.Type = token.LIMIT_LENGTH
			out = append(out, length)
			i++
			continue
		}
		out = append(out, items[i])
	}
	return out
}

// fixupEquals drops the `=` after FILE/COLUMN/STRICT, keeping only the
// left-hand keyword token (the value that follows remains untouched).
func fixupEquals(items []token.Item) []token.Item {
	out := make([]token.Item, 0, len(items))
	for i := 0; i < len(items); i++ {
		out = append(out, items[i])
		switch items[i].Type {
		case token.FILE, token.COLUMN, token.STRICT:
			if i+1 < len(items) && items[i+1].Type == token.EQ {
				i++
			}
		}
	}
	return out
}

// collapseSemicolons turns a run of consecutive `;` into a single one.
func collapseSemicolons(items []token.Item) []token.Item {
	out := make([]token.Item, 0, len(items))
	for i := 0; i < len(items); i++ {
		out = append(out, items[i])
		if items[i].Type == token.SEMICOLON {
			for i+1 < len(items) && items[i+1].Type == token.SEMICOLON {
				i++
			}
		}
	}
	return out
}
