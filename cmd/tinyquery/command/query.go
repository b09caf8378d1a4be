package command

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joeandaverde/tinyquery"
)

// QueryCommand is the one-shot, scriptable form of the query engine: open
// a database, run exactly one statement, print its rows, exit.
type QueryCommand struct{}

func (c *QueryCommand) Help() string {
	helpText := `
Usage: tinyquery query [options] <db-path>

  Executes a single SQL statement against the database at <db-path> and
  prints its rows, pipe-delimited, one per line. The statement is read
  from -e, or from stdin if -e is not given.

Options:

  -e=""    SQL statement to execute
`
	return strings.TrimSpace(helpText)
}

func (c *QueryCommand) Synopsis() string {
	return "Run a single SQL statement against a database file"
}

func (c *QueryCommand) Run(args []string) int {
	flags := flag.NewFlagSet("query", flag.ContinueOnError)
	stmt := flags.String("e", "", "SQL statement to execute")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	rest := flags.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one <db-path> argument is required")
		return 1
	}
	dbPath := rest[0]

	sql := *stmt
	if sql == "" {
		data, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reading statement from stdin: %s\n", err)
			return 1
		}
		sql = strings.TrimSpace(string(data))
	}

	db, err := tinyquery.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	defer db.Close()

	rows, err := db.Query(sql)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}

	writeRows(os.Stdout, rows)
	return 0
}

func writeRows(w io.Writer, rows *tinyquery.Rows) {
	fmt.Fprintln(w, strings.Join(rows.Columns, "|"))
	for _, row := range rows.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		fmt.Fprintln(w, strings.Join(cells, "|"))
	}
}
