package planner

import (
	"fmt"

	"github.com/joeandaverde/tinyquery/internal/btree"
	"github.com/joeandaverde/tinyquery/internal/pager"
	"github.com/joeandaverde/tinyquery/internal/sqlparse"
)

// ResultColumn is a single compiled output column: its display name
// (alias if given, the source column name otherwise) and its index into
// the underlying record.
type ResultColumn struct {
	Name  string
	Index int
}

// Plan is a compiled SELECT: a sequential scan plus the display names for
// each projected column.
type Plan struct {
	Columns []ResultColumn
	Scan    *SeqScan
}

// Planner compiles parsed statements against a fixed schema and pager.
type Planner struct {
	schema *Schema
	pager  pager.Pager
}

// New builds a Planner bound to an already-loaded schema.
func New(schema *Schema, p pager.Pager) *Planner {
	return &Planner{schema: schema, pager: p}
}

// Compile turns a parsed statement into an executable Plan. Only SELECT is
// supported; anything else returns ErrUnsupportedStatement (CREATE TABLE
// has no execution path in a read-only engine).
func (pl *Planner) Compile(stmt *sqlparse.Statement) (*Plan, error) {
	if stmt.Select == nil {
		return nil, ErrUnsupportedStatement
	}
	return pl.compileSelect(stmt.Select)
}

func (pl *Planner) compileSelect(sel *sqlparse.SelectStatement) (*Plan, error) {
	table, err := pl.schema.Table(sel.From)
	if err != nil {
		return nil, err
	}

	var columns []ResultColumn
	for _, rc := range sel.ResultColumns {
		if rc.Star {
			for i, c := range table.Columns {
				columns = append(columns, ResultColumn{Name: c.Name, Index: i})
			}
			continue
		}

		idx := table.ColumnIndex(rc.Column)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, table.Name, rc.Column)
		}
		name := rc.Column
		if rc.Alias != "" {
			name = rc.Alias
		}
		columns = append(columns, ResultColumn{Name: name, Index: idx})
	}

	scanner, err := btree.NewScanner(pl.pager, table.RootPage)
	if err != nil {
		return nil, fmt.Errorf("opening scanner for table %s: %w", table.Name, err)
	}

	fields := make([]int, len(columns))
	for i, c := range columns {
		fields[i] = c.Index
	}

	return &Plan{
		Columns: columns,
		Scan:    NewSeqScan(fields, scanner),
	}, nil
}
