// Command ddbsql is a thin wrapper over the session package's Run entry
// point (spec §6): it only acquires the SQL script text and prints the
// outcome, deferring every SQL-level decision to session.Run.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/watkinslabs/ddbsql/session"
)

func main() {
	os.Exit(run())
}

func run() int {
	script, ok := readScript()
	if !ok {
		usage()
		return 0
	}

	cur := session.New()
	if err := session.Run(context.Background(), cur, script); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	if cur.Status == session.StatusFailure && cur.Err != nil {
		fmt.Fprintln(os.Stderr, cur.Err.Error())
		return 0
	}
	printResults(cur)
	return 0
}

// readScript reads the script from stdin when it is not a terminal, else
// from the file named by the first argument. It reports ok=false only for
// the "no input available" usage case, per spec §6.
func readScript() (string, bool) {
	stat, statErr := os.Stdin.Stat()
	if statErr == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, "ddbsql: reading stdin:", err)
			os.Exit(1)
		}
		return string(data), true
	}

	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "ddbsql: reading script file:", err)
			os.Exit(1)
		}
		return string(data), true
	}

	return "", false
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ddbsql <script.sql>   (or pipe a script on stdin)")
}

func printResults(cur *session.Cursor) {
	if cur.Results == nil {
		return
	}
	fmt.Println(strings.Join(cur.Results.ColumnNames, "\t"))
	for _, row := range cur.Results.Rows {
		fmt.Println(strings.Join(row.Columns, "\t"))
	}
}
