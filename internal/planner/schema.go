package planner

import (
	"fmt"
	"io"

	"github.com/armon/go-radix"
	"github.com/sirupsen/logrus"

	"github.com/joeandaverde/tinyquery/internal/btree"
	"github.com/joeandaverde/tinyquery/internal/pager"
	"github.com/joeandaverde/tinyquery/internal/sqlparse"
)

// TableMetadata describes one table row parsed out of sqlite_schema: its
// name, the columns its CREATE TABLE text declares (in on-disk order),
// and the root page of its own table b-tree.
type TableMetadata struct {
	Name      string
	Columns   []sqlparse.ColumnDef
	RootPage  uint32
	CreateSQL string
}

// ColumnIndex returns the position of name within t.Columns, or -1.
func (t TableMetadata) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Schema is the set of tables discovered in sqlite_schema, indexed by
// name in a radix tree. Lookups are by exact name only; no prefix or
// completion lookup is exposed.
type Schema struct {
	tables *radix.Tree
	order  []string
}

// LoadSchema scans the sqlite_schema table rooted at page 1 and parses
// each "table" row's CREATE TABLE text to recover its column list.
func LoadSchema(p pager.Pager, log *logrus.Entry) (*Schema, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	scanner, err := btree.NewScanner(p, 1)
	if err != nil {
		return nil, fmt.Errorf("opening schema scanner: %w", err)
	}

	tables := radix.New()
	var order []string

	for {
		cur, err := scanner.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scanning sqlite_schema: %w", err)
		}

		typeVal, ok, err := cur.Field(0)
		if err != nil {
			return nil, fmt.Errorf("reading schema row type: %w", err)
		}
		if !ok || typeVal.Kind != btree.KindText || typeVal.Str != "table" {
			continue
		}

		nameVal, ok, err := cur.Field(1)
		if err != nil || !ok {
			return nil, fmt.Errorf("reading schema row name: %w", err)
		}

		rootPageVal, ok, err := cur.Field(3)
		if err != nil || !ok {
			return nil, fmt.Errorf("reading schema row root page: %w", err)
		}

		sqlVal, ok, err := cur.Field(4)
		if err != nil || !ok {
			return nil, fmt.Errorf("reading schema row sql text: %w", err)
		}

		stmt, err := sqlparse.Parse(sqlVal.Str)
		if err != nil || stmt.CreateTable == nil {
			log.WithField("table", nameVal.Str).WithError(err).Warn("planner: unparseable CREATE TABLE text, skipping")
			continue
		}

		meta := TableMetadata{
			Name:      nameVal.Str,
			Columns:   stmt.CreateTable.Columns,
			RootPage:  uint32(rootPageVal.Int),
			CreateSQL: sqlVal.Str,
		}
		tables.Insert(meta.Name, meta)
		order = append(order, meta.Name)
	}

	return &Schema{tables: tables, order: order}, nil
}

// Table looks up a table by exact name.
func (s *Schema) Table(name string) (TableMetadata, error) {
	v, ok := s.tables.Get(name)
	if !ok {
		return TableMetadata{}, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return v.(TableMetadata), nil
}

// Tables returns every table's metadata, in schema-scan order.
func (s *Schema) Tables() []TableMetadata {
	out := make([]TableMetadata, 0, len(s.order))
	for _, name := range s.order {
		v, _ := s.tables.Get(name)
		out = append(out, v.(TableMetadata))
	}
	return out
}
