// Package tinyquery is a read-only query engine over SQLite-format
// database files. It opens a file, parses its schema from the CREATE TABLE
// text stored in sqlite_schema, and compiles simple SELECT statements into
// sequential scans over the underlying B-tree storage.
package tinyquery

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/joeandaverde/tinyquery/internal/btree"
	"github.com/joeandaverde/tinyquery/internal/config"
	"github.com/joeandaverde/tinyquery/internal/pager"
	"github.com/joeandaverde/tinyquery/internal/planner"
	"github.com/joeandaverde/tinyquery/internal/sqlparse"
)

// DB is an open handle onto a SQLite-format database file. It is safe for
// concurrent use by multiple readers: the underlying pager's page cache
// is reader-writer-lock protected, and each Query call gets its own
// scanner and cursor state.
type DB struct {
	id     string
	file   *os.File
	pager  pager.Pager
	schema *planner.Schema
	log    *logrus.Entry
}

// Option configures Open.
type Option func(*options)

type options struct {
	cfg config.Config
	log *logrus.Logger
}

// WithConfig supplies a loaded config.Config instead of the default.
func WithConfig(cfg config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger supplies a logrus.Logger to attach structured fields to,
// instead of logrus's standard logger.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) { o.log = l }
}

// Open opens the database file at path, parses its header, and loads its
// schema (the set of tables described in sqlite_schema). The returned DB
// must be closed when no longer needed.
func Open(path string, opts ...Option) (*DB, error) {
	o := options{cfg: config.Default(), log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if lvl, err := logrus.ParseLevel(o.cfg.LogLevel); err == nil {
		o.log.SetLevel(lvl)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database file %s: %w", path, err)
	}

	id := uuid.NewString()
	entry := o.log.WithField("db_id", id)

	p, err := pager.Open(f, entry)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening pager for %s: %w", path, err)
	}

	schema, err := planner.LoadSchema(p, entry)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("loading schema from %s: %w", path, err)
	}

	entry.WithField("tables", len(schema.Tables())).Debug("tinyquery: database opened")

	return &DB{id: id, file: f, pager: p, schema: schema, log: entry}, nil
}

// Close releases the underlying file handle.
func (db *DB) Close() error {
	return db.file.Close()
}

// Rows is the result of a Query call: column names plus every row,
// materialized eagerly since this engine has no cursor-streaming public
// API (see Plan.Scan for a streaming alternative inside internal/planner).
type Rows struct {
	Columns []string
	Values  [][]btree.OwnedValue
}

// Query parses, plans, and fully executes a single SQL statement.
// CREATE TABLE statements return an error: there is no schema mutation
// in a read-only engine.
func (db *DB) Query(sql string) (*Rows, error) {
	stmt, err := sqlparse.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("parsing statement: %w", err)
	}

	pl := planner.New(db.schema, db.pager)
	plan, err := pl.Compile(stmt)
	if err != nil {
		return nil, fmt.Errorf("compiling statement: %w", err)
	}

	names := make([]string, len(plan.Columns))
	for i, c := range plan.Columns {
		names[i] = c.Name
	}

	result := &Rows{Columns: names}
	for {
		row, err := plan.Scan.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("scanning rows: %w", err)
		}
		copied := make([]btree.OwnedValue, len(row))
		copy(copied, row)
		result.Values = append(result.Values, copied)
	}
	return result, nil
}

// Tables returns every table described in sqlite_schema, in schema-scan
// order.
func (db *DB) Tables() []planner.TableMetadata {
	return db.schema.Tables()
}

// Table looks up one table's metadata by exact name.
func (db *DB) Table(name string) (planner.TableMetadata, error) {
	return db.schema.Table(name)
}
