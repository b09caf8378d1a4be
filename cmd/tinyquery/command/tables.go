package command

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joeandaverde/tinyquery"
	"github.com/joeandaverde/tinyquery/internal/planner"
)

// TablesCommand lists every table described in a database's sqlite_schema.
type TablesCommand struct{}

func (c *TablesCommand) Help() string {
	helpText := `
Usage: tinyquery tables <db-path>

  Lists every table in the database at <db-path>, one per line, along
  with its root page and column names.
`
	return strings.TrimSpace(helpText)
}

func (c *TablesCommand) Synopsis() string {
	return "List the tables described in a database's schema"
}

func (c *TablesCommand) Run(args []string) int {
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

	printTables(os.Stdout, db.Tables())
	return 0
}

func printTables(w io.Writer, tables []planner.TableMetadata) {
	for _, t := range tables {
		cols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = c.Name
		}
		fmt.Fprintf(w, "%s (root page %d): %s\n", t.Name, t.RootPage, strings.Join(cols, ", "))
	}
}
