package planner

import "errors"

var (
	// ErrTableNotFound is returned when a SELECT names a table absent
	// from sqlite_schema.
	ErrTableNotFound = errors.New("table not found")

	// ErrColumnNotFound is returned when a result column references a
	// name absent from the resolved table's column list.
	ErrColumnNotFound = errors.New("column not found")

	// ErrUnsupportedStatement is returned for any parsed statement other
	// than SELECT (e.g. compiling a CREATE TABLE directly).
	ErrUnsupportedStatement = errors.New("unsupported statement")
)
