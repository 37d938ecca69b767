// Package csvtable reads a table definition's backing file into a DataSet.
//
// Deliberately NOT built on encoding/csv: that package enforces RFC4180
// (escaped "" quoting, configurable but strict quote handling, equal column
// counts) which contradicts spec §4.6's looser semantics — quotes are
// traversed but never themselves a delimiter trigger, there are no escape
// sequences, and short/ragged rows are expected, not rejected. A small
// hand-rolled scanner in the teacher's lexer style (byte-index scan with an
// in-quote flag) matches the spec instead; see DESIGN.md for the full
// justification.
package csvtable

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/watkinslabs/ddbsql/catalog"
	"github.com/watkinslabs/ddbsql/dataset"
)

// ErrOpenFailed and ErrNoData are sentinel causes the session driver maps
// to FILE_OPEN_ERROR / DATA_FETCH_ERROR (spec §4.6), kept as plain errors
// here so this package never needs to import session.
var (
	ErrOpenFailed = errors.New("file open error")
	ErrNoData     = errors.New("data fetch error")
)

// Load reads def's backing file and builds a DataSet, per spec §4.6.
func Load(def catalog.TableDef) (*dataset.DataSet, error) {
	raw, err := os.ReadFile(def.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenFailed, def.FilePath, err)
	}

	delim := def.ColumnDelim
	if delim == 0 {
		delim = ','
	}

	lines := splitLines(string(raw))
	rows := make([]dataset.Row, len(lines))
	maxCols := len(def.Columns)
	for i, line := range lines {
		cols := splitColumns(line, delim)
		rows[i] = dataset.Row{Columns: cols, FileRow: i + 1}
		if len(cols) > maxCols {
			maxCols = len(cols)
		}
	}

	names := make([]string, maxCols)
	for i := range names {
		if i < len(def.Columns) {
			names[i] = def.Columns[i]
		} else {
			names[i] = syntheticColumnName(i)
		}
	}

	ds := &dataset.DataSet{ColumnNames: names, Rows: rows}
	if len(ds.Rows) == 0 {
		return ds, fmt.Errorf("%w: %s", ErrNoData, def.FilePath)
	}
	return ds, nil
}

func syntheticColumnName(i int) string {
	// col_0, col_1, ... per spec §4.6.
	return "col_" + strconv.Itoa(i)
}

// splitLines splits on '\n'; the final line is kept even without a
// trailing newline, and is dropped only when the input's very last
// character is the newline itself (no synthetic empty trailing row).
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	trimmed := strings.HasSuffix(s, "\n")
	parts := strings.Split(s, "\n")
	if trimmed {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// splitColumns splits line on delim, honoring quoted spans: a quote
// character toggles an in-quote state and is itself consumed; delimiters
// inside a quoted span are literal. No escape sequences are recognized.
func splitColumns(line string, delim byte) []string {
	if line == "" {
		return nil
	}
	var cols []string
	var cur strings.Builder
	inQuote := byte(0)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuote != 0:
			if c == inQuote {
				inQuote = 0
			} else {
				cur.WriteByte(c)
			}
		case c == '\'' || c == '"':
			inQuote = c
		case c == delim:
			cols = append(cols, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	cols = append(cols, cur.String())
	return cols
}
