package btree

import (
	"fmt"
	"io"

	"github.com/joeandaverde/tinyquery/internal/pager"
	"github.com/joeandaverde/tinyquery/internal/storage"
)

// positionedPage tracks how far a depth-first walk has gotten through one
// page's cells: the next cell index to visit, 0-based. For an interior
// page, reaching cellIndex == len(cells) means every ordinary cell has
// been descended into and only the rightmost child remains.
type positionedPage struct {
	page      *storage.Page
	cellIndex int
}

// Scanner performs a depth-first, in-order walk of a table b-tree rooted
// at a given page, yielding one Cursor per row in ascending rowid order.
// A Scanner is a single-use, single-threaded iterator; distinct scanners
// over the same Pager see independent row streams.
type Scanner struct {
	pager pager.Pager
	stack []positionedPage
	err   error
}

// NewScanner constructs a scanner rooted at rootPage. The root page is read
// here, not deferred to the first call to Next, so an unreadable root page
// is reported by NewScanner.
func NewScanner(p pager.Pager, rootPage uint32) (*Scanner, error) {
	page, err := p.ReadPage(rootPage)
	if err != nil {
		return nil, fmt.Errorf("reading root page %d: %w", rootPage, err)
	}
	return &Scanner{
		pager: p,
		stack: []positionedPage{{page: page, cellIndex: 0}},
	}, nil
}

// Next returns the next row's cursor, or io.EOF once the walk is
// exhausted. Once an error has been returned, subsequent calls keep
// returning that same error.
func (s *Scanner) Next() (*Cursor, error) {
	if s.err != nil {
		return nil, s.err
	}

	for {
		if len(s.stack) == 0 {
			s.err = io.EOF
			return nil, io.EOF
		}

		top := &s.stack[len(s.stack)-1]
		cellCount := len(top.page.Cells)

		if top.page.Header.Type == storage.PageTypeTableInterior && top.cellIndex == cellCount {
			// Every ordinary cell visited; descend into the rightmost
			// child exactly once.
			top.cellIndex++
			child, err := s.pager.ReadPage(top.page.Header.RightmostPointer)
			if err != nil {
				s.err = fmt.Errorf("reading rightmost child page %d: %w", top.page.Header.RightmostPointer, err)
				return nil, s.err
			}
			s.stack = append(s.stack, positionedPage{page: child})
			continue
		}

		if top.cellIndex < cellCount {
			cell := top.page.Cells[top.cellIndex]
			top.cellIndex++

			switch c := cell.(type) {
			case storage.TableInteriorCell:
				child, err := s.pager.ReadPage(c.LeftChild)
				if err != nil {
					s.err = fmt.Errorf("reading child page %d: %w", c.LeftChild, err)
					return nil, s.err
				}
				s.stack = append(s.stack, positionedPage{page: child})
				continue
			case storage.TableLeafCell:
				cur, err := newCursor(s.pager, c.RowID, c.LocalPayload, c.FirstOverflow)
				if err != nil {
					s.err = err
					return nil, err
				}
				return cur, nil
			default:
				s.err = fmt.Errorf("%w: unrecognized cell type", storage.ErrUnknownPageType)
				return nil, s.err
			}
		}

		// No more cells on this page (leaf page fully consumed, or
		// interior page already descended into its rightmost child).
		if len(s.stack) == 1 {
			s.err = io.EOF
			return nil, io.EOF
		}
		s.stack = s.stack[:len(s.stack)-1]
	}
}
