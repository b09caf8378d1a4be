package command

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/joeandaverde/tinyquery"
)

// ReplCommand opens a database and reads statements from stdin in a loop,
// one per line, until .exit or EOF. The two dot-commands .exit and .tables
// are handled directly; anything else is passed to DB.Query.
type ReplCommand struct{}

func (c *ReplCommand) Help() string {
	helpText := `
Usage: tinyquery repl <db-path>

  Starts an interactive session against the database at <db-path>. Each
  line is either a dot-command (.exit, .tables) or a SQL statement whose
  resulting rows are printed pipe-delimited.
`
	return strings.TrimSpace(helpText)
}

func (c *ReplCommand) Synopsis() string {
	return "Start an interactive query session against a database file"
}

func (c *ReplCommand) Run(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one <db-path> argument is required")
		return 1
	}

	db, err := tinyquery.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	defer db.Close()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(os.Stdout, "tinyquery> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == ".exit":
			return 0
		case line == ".tables":
			printTables(os.Stdout, db.Tables())
		default:
			rows, err := db.Query(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			} else {
				writeRows(os.Stdout, rows)
			}
		}
		fmt.Fprint(os.Stdout, "tinyquery> ")
	}
	fmt.Fprintln(os.Stdout)

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: reading input: %s\n", err)
		return 1
	}
	return 0
}
