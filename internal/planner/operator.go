package planner

import (
	"fmt"

	"github.com/joeandaverde/tinyquery/internal/btree"
)

// SeqScan is the only operator this engine has: it walks a table's b-tree
// with a Scanner and projects each row down to the requested field
// indices, reusing one row buffer across calls.
type SeqScan struct {
	fields  []int
	scanner *btree.Scanner
	row     []btree.OwnedValue
}

// NewSeqScan builds a sequential-scan operator over scanner, projecting
// each row to the column indices in fields (in request order).
func NewSeqScan(fields []int, scanner *btree.Scanner) *SeqScan {
	return &SeqScan{
		fields:  fields,
		scanner: scanner,
		row:     make([]btree.OwnedValue, len(fields)),
	}
}

// Next advances to the next row, returning io.EOF once the scan is
// exhausted. The returned slice is reused on the next call.
func (s *SeqScan) Next() ([]btree.OwnedValue, error) {
	cur, err := s.scanner.Next()
	if err != nil {
		return nil, err
	}

	for i, n := range s.fields {
		v, ok, err := cur.OwnedField(n)
		if err != nil {
			return nil, fmt.Errorf("reading field %d: %w", n, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: index %d", ErrColumnNotFound, n)
		}
		s.row[i] = v
	}
	return s.row, nil
}
