package lexer

import (
	"strings"
	"testing"

	"github.com/watkinslabs/ddbsql/token"
)

// tokenShape strips position information so tests can compare only type and
// value, the way the teacher's lexer_test.go compares raw token fields.
type tokenShape struct {
	Type  token.Token
	Value string
}

func shapes(items []token.Item) []tokenShape {
	out := make([]tokenShape, len(items))
	for i, it := range items {
		out[i] = tokenShape{Type: it.Type, Value: it.Value}
	}
	return out
}

func scan(t *testing.T, input string) []token.Item {
	t.Helper()
	l := Get(input)
	defer Put(l)
	items, err := l.Scan()
	if err != nil {
		t.Fatalf("Scan(%q): %v", input, err)
	}
	return items
}

func TestScanBasicTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []tokenShape
	}{
		{
			name:  "select star from",
			input: "SELECT * FROM users",
			expected: []tokenShape{
				{token.SELECT, "SELECT"},
				{token.ASTERISK, "*"},
				{token.FROM, "FROM"},
				{token.SOURCE, "users"},
				{token.EOF, ""},
			},
		},
		{
			name:  "comparison operators",
			input: "a >= b AND c <= d",
			expected: []tokenShape{
				{token.SOURCE, "a"},
				{token.GTE, ">="},
				{token.SOURCE, "b"},
				{token.AND, "AND"},
				{token.SOURCE, "c"},
				{token.LTE, "<="},
				{token.SOURCE, "d"},
				{token.EOF, ""},
			},
		},
		{
			name:  "not equals spellings",
			input: "a <> b OR a != c",
			expected: []tokenShape{
				{token.SOURCE, "a"},
				{token.NEQ, "<>"},
				{token.SOURCE, "b"},
				{token.OR, "OR"},
				{token.SOURCE, "a"},
				{token.NEQ, "!="},
				{token.SOURCE, "c"},
				{token.EOF, ""},
			},
		},
		{
			name:  "bare bang as NOT",
			input: "SELECT 1 FROM t WHERE ! a IS NULL",
			expected: []tokenShape{
				{token.SELECT, "SELECT"},
				{token.INT, "1"},
				{token.FROM, "FROM"},
				{token.SOURCE, "t"},
				{token.WHERE, "WHERE"},
				{token.NOT, "!"},
				{token.SOURCE, "a"},
				{token.IS_NULL, "IS NULL"},
				{token.EOF, ""},
			},
		},
		{
			name:  "null-safe equal",
			input: "a <=> b",
			expected: []tokenShape{
				{token.SOURCE, "a"},
				{token.NULLEQ, "<=>"},
				{token.SOURCE, "b"},
				{token.EOF, ""},
			},
		},
		{
			name:  "qualified identifier",
			input: "SELECT t.col FROM t",
			expected: []tokenShape{
				{token.SELECT, "SELECT"},
				{token.QUALIFIER, "t"},
				{token.SOURCE, "col"},
				{token.FROM, "FROM"},
				{token.SOURCE, "t"},
				{token.EOF, ""},
			},
		},
		{
			name:  "alias with as",
			input: "SELECT col AS c FROM t",
			expected: []tokenShape{
				{token.SELECT, "SELECT"},
				{token.SOURCE, "col"},
				{token.ALIAS, "c"},
				{token.FROM, "FROM"},
				{token.SOURCE, "t"},
				{token.EOF, ""},
			},
		},
		{
			name:  "real literal fusion",
			input: "SELECT 3.14 FROM t",
			expected: []tokenShape{
				{token.SELECT, "SELECT"},
				{token.REAL, "3.14"},
				{token.FROM, "FROM"},
				{token.SOURCE, "t"},
				{token.EOF, ""},
			},
		},
		{
			name:  "hex and binary literals",
			input: "SELECT 0xFF, 0b101 FROM t",
			expected: []tokenShape{
				{token.SELECT, "SELECT"},
				{token.HEX, "0xFF"},
				{token.COMMA, ","},
				{token.BIN, "0b101"},
				{token.FROM, "FROM"},
				{token.SOURCE, "t"},
				{token.EOF, ""},
			},
		},
		{
			name:  "line and block comments stripped",
			input: "SELECT 1 -- trailing\nFROM t /* mid */ WHERE 1 = 1",
			expected: []tokenShape{
				{token.SELECT, "SELECT"},
				{token.INT, "1"},
				{token.FROM, "FROM"},
				{token.SOURCE, "t"},
				{token.WHERE, "WHERE"},
				{token.INT, "1"},
				{token.EQ, "="},
				{token.INT, "1"},
				{token.EOF, ""},
			},
		},
		{
			name:  "join fusion",
			input: "SELECT * FROM a LEFT JOIN b ON a.id = b.id",
			expected: []tokenShape{
				{token.SELECT, "SELECT"},
				{token.ASTERISK, "*"},
				{token.FROM, "FROM"},
				{token.SOURCE, "a"},
				{token.LEFT_JOIN, "LEFT JOIN"},
				{token.SOURCE, "b"},
				{token.ON, "ON"},
				{token.QUALIFIER, "a"},
				{token.SOURCE, "id"},
				{token.EQ, "="},
				{token.QUALIFIER, "b"},
				{token.SOURCE, "id"},
				{token.EOF, ""},
			},
		},
		{
			name:  "full outer join fusion",
			input: "SELECT * FROM a FULL OUTER JOIN b ON a.id = b.id",
			expected: []tokenShape{
				{token.SELECT, "SELECT"},
				{token.ASTERISK, "*"},
				{token.FROM, "FROM"},
				{token.SOURCE, "a"},
				{token.FULL_OUTER_JOIN, "FULL OUTER JOIN"},
				{token.SOURCE, "b"},
				{token.ON, "ON"},
				{token.QUALIFIER, "a"},
				{token.SOURCE, "id"},
				{token.EQ, "="},
				{token.QUALIFIER, "b"},
				{token.SOURCE, "id"},
				{token.EOF, ""},
			},
		},
		{
			name:  "is null and is not null fusion",
			input: "SELECT * FROM t WHERE a IS NULL AND b IS NOT NULL",
			expected: []tokenShape{
				{token.SELECT, "SELECT"},
				{token.ASTERISK, "*"},
				{token.FROM, "FROM"},
				{token.SOURCE, "t"},
				{token.WHERE, "WHERE"},
				{token.SOURCE, "a"},
				{token.IS_NULL, "IS NULL"},
				{token.AND, "AND"},
				{token.SOURCE, "b"},
				{token.IS_NOT_NULL, "IS NOT NULL"},
				{token.EOF, ""},
			},
		},
		{
			name:  "group by and order by fusion",
			input: "SELECT a FROM t GROUP BY a ORDER BY a DESC",
			expected: []tokenShape{
				{token.SELECT, "SELECT"},
				{token.SOURCE, "a"},
				{token.FROM, "FROM"},
				{token.SOURCE, "t"},
				{token.GROUP_BY, "GROUP BY"},
				{token.SOURCE, "a"},
				{token.ORDER_BY, "ORDER BY"},
				{token.SOURCE, "a"},
				{token.DESC, "DESC"},
				{token.EOF, ""},
			},
		},
		{
			name:  "limit start and length split",
			input: "SELECT a FROM t LIMIT 20, 10",
			expected: []tokenShape{
				{token.SELECT, "SELECT"},
				{token.SOURCE, "a"},
				{token.FROM, "FROM"},
				{token.SOURCE, "t"},
				{token.LIMIT_START, "20"},
				{token.LIMIT_LENGTH, "10"},
				{token.EOF, ""},
			},
		},
		{
			name:  "limit single value is length only",
			input: "SELECT a FROM t LIMIT 10",
			expected: []tokenShape{
				{token.SELECT, "SELECT"},
				{token.SOURCE, "a"},
				{token.FROM, "FROM"},
				{token.SOURCE, "t"},
				{token.LIMIT_LENGTH, "10"},
				{token.EOF, ""},
			},
		},
		{
			name:  "create table fusion",
			input: "CREATE TABLE t",
			expected: []tokenShape{
				{token.CREATE_TABLE, "CREATE TABLE"},
				{token.SOURCE, "t"},
				{token.EOF, ""},
			},
		},
		{
			name:  "trailing equals dropped after file column strict",
			input: `CREATE TABLE t ("a") FILE = "t.csv" COLUMN = "," STRICT = TRUE`,
			expected: []tokenShape{
				{token.CREATE_TABLE, "CREATE TABLE"},
				{token.SOURCE, "t"},
				{token.LPAREN, "("},
				{token.STRING, "a"},
				{token.RPAREN, ")"},
				{token.FILE, "FILE"},
				{token.STRING, "t.csv"},
				{token.COLUMN, "COLUMN"},
				{token.STRING, ","},
				{token.STRICT, "STRICT"},
				{token.TRUE, "TRUE"},
				{token.EOF, ""},
			},
		},
		{
			name:  "consecutive semicolons collapse",
			input: "USE db;;;",
			expected: []tokenShape{
				{token.USE, "USE"},
				{token.SOURCE, "db"},
				{token.SEMICOLON, ";"},
				{token.EOF, ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shapes(scan(t, tt.input))
			if len(got) != len(tt.expected) {
				t.Fatalf("token count = %d, want %d\ngot:  %+v\nwant: %+v", len(got), len(tt.expected), got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d = %+v, want %+v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantSub string
	}{
		{"unterminated string", `SELECT 'abc FROM t`, "unterminated string"},
		{"unterminated line comment", "SELECT 1 -- never closed", "unterminated line comment"},
		{"unterminated block comment", "SELECT 1 /* never closed", "unterminated block comment"},
		{"malformed hex token", "SELECT 0xZZ FROM t", "malformed hex token"},
		{"malformed binary token", "SELECT 0b2 FROM t", "malformed binary token"},
		{"unknown character", "SELECT 1 @ FROM t", "unknown character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Get(tt.input)
			defer Put(l)
			_, err := l.Scan()
			if err == nil {
				t.Fatalf("Scan(%q): expected error, got none", tt.input)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestGetPutResetsState(t *testing.T) {
	l := Get("SELECT 1")
	if _, err := l.Scan(); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	Put(l)

	l2 := Get("SELECT 2 FROM t")
	items, err := l2.Scan()
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	Put(l2)

	if items[0].Type != token.SELECT || items[1].Value != "2" {
		t.Fatalf("pooled lexer retained stale state: %+v", items)
	}
}
