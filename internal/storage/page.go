package storage

import (
	"fmt"
)

// PageType identifies the role a page plays in a table b-tree. This engine
// only ever walks table b-trees; index b-tree page types are rejected.
type PageType byte

const (
	PageTypeTableInterior PageType = 0x05
	PageTypeTableLeaf     PageType = 0x0D
)

func (t PageType) String() string {
	switch t {
	case PageTypeTableInterior:
		return "table-interior"
	case PageTypeTableLeaf:
		return "table-leaf"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(t))
	}
}

// PageHeader is the 8- or 12-byte header at the start of every b-tree page
// (following the 100-byte file header on page 1).
type PageHeader struct {
	Type               PageType
	FirstFreeblock     uint16
	CellCount          uint16
	CellContentStart   uint16
	FragmentedFreeByte byte
	RightmostPointer   uint32 // only meaningful when Type == PageTypeTableInterior
}

// headerSize returns 8 for leaf pages and 12 for interior pages, which carry
// an extra 4-byte rightmost-child pointer.
func (h PageHeader) headerSize() int {
	if h.Type == PageTypeTableInterior {
		return 12
	}
	return 8
}

// Cell is either a TableLeafCell or a TableInteriorCell.
type Cell interface {
	isCell()
}

// TableLeafCell holds a row's payload (a serialized record), along with the
// rowid it is keyed by and, when the payload doesn't fit locally, the page
// number of the first overflow page.
type TableLeafCell struct {
	RowID           int64
	PayloadSize     int64
	LocalPayload    []byte
	FirstOverflow   uint32 // zero when the payload fits entirely on this page
}

func (TableLeafCell) isCell() {}

// TableInteriorCell points to a child page containing rowids less than or
// equal to Key.
type TableInteriorCell struct {
	LeftChild uint32
	Key       int64
}

func (TableInteriorCell) isCell() {}

// Page is a single parsed b-tree page: its header plus its decoded cells in
// cell-pointer-array order (ascending key order for table b-trees).
type Page struct {
	Header PageHeader
	Cells  []Cell
}

// ParsePage decodes a single page from buf, which must contain the entire
// page (usable-size bytes). pageOneOffset is HeaderSize when this is page 1
// (whose buffer is prefixed by the 100-byte file header) and 0 otherwise;
// it shifts where the b-tree page header itself begins, but cell-pointer
// values remain absolute offsets into buf and need no further adjustment.
// usablePageSize drives the overflow-threshold calculation for leaf cells.
func ParsePage(buf []byte, pageOneOffset, usablePageSize int) (Page, error) {
	base := pageOneOffset
	if len(buf) < base+8 {
		return Page{}, fmt.Errorf("%w: page shorter than its header", ErrTruncated)
	}

	pt := PageType(buf[base])
	if pt != PageTypeTableLeaf && pt != PageTypeTableInterior {
		return Page{}, fmt.Errorf("%w: 0x%02x", ErrUnknownPageType, buf[base])
	}

	h := PageHeader{
		Type:               pt,
		FirstFreeblock:     ReadU16(buf[base+1 : base+3]),
		CellCount:          ReadU16(buf[base+3 : base+5]),
		CellContentStart:   ReadU16(buf[base+5 : base+7]),
		FragmentedFreeByte: buf[base+7],
	}
	if pt == PageTypeTableInterior {
		if len(buf) < base+12 {
			return Page{}, fmt.Errorf("%w: interior page shorter than its header", ErrTruncated)
		}
		h.RightmostPointer = ReadU32(buf[base+8 : base+12])
	}

	ptrArrayStart := base + h.headerSize()
	ptrArrayEnd := ptrArrayStart + int(h.CellCount)*2
	if len(buf) < ptrArrayEnd {
		return Page{}, fmt.Errorf("%w: cell pointer array runs past page end", ErrTruncated)
	}

	cells := make([]Cell, h.CellCount)
	for i := 0; i < int(h.CellCount); i++ {
		off := int(ReadU16(buf[ptrArrayStart+i*2 : ptrArrayStart+i*2+2]))
		if off >= len(buf) {
			return Page{}, fmt.Errorf("%w: cell pointer %d out of range", ErrTruncated, i)
		}
		cell, err := parseCell(pt, buf[off:], usablePageSize)
		if err != nil {
			return Page{}, fmt.Errorf("cell %d: %w", i, err)
		}
		cells[i] = cell
	}

	return Page{Header: h, Cells: cells}, nil
}

func parseCell(pt PageType, buf []byte, usablePageSize int) (Cell, error) {
	if pt == PageTypeTableInterior {
		if len(buf) < 4 {
			return nil, fmt.Errorf("%w: interior cell truncated before left child pointer", ErrTruncated)
		}
		left := ReadU32(buf[:4])
		_, key, err := ReadVarint(buf[4:])
		if err != nil {
			return nil, fmt.Errorf("decoding key: %w", err)
		}
		return TableInteriorCell{LeftChild: left, Key: key}, nil
	}

	n, payloadSize, err := ReadVarint(buf)
	if err != nil {
		return nil, fmt.Errorf("decoding payload size: %w", err)
	}
	buf = buf[n:]

	n, rowID, err := ReadVarint(buf)
	if err != nil {
		return nil, fmt.Errorf("decoding rowid: %w", err)
	}
	buf = buf[n:]

	localSize := LocalPayloadSize(usablePageSize, int(payloadSize))
	if localSize < 0 || localSize > len(buf) {
		return nil, fmt.Errorf("%w: local payload size %d exceeds cell bounds", ErrTruncated, localSize)
	}

	cell := TableLeafCell{RowID: rowID, PayloadSize: payloadSize, LocalPayload: buf[:localSize]}
	if localSize < int(payloadSize) {
		rest := buf[localSize:]
		if len(rest) < 4 {
			return nil, fmt.Errorf("%w: cell truncated before overflow page pointer", ErrTruncated)
		}
		cell.FirstOverflow = ReadU32(rest[:4])
	}
	return cell, nil
}

// LocalPayloadSize computes how many bytes of a P-byte payload are stored
// directly in the cell versus spilled to an overflow chain, for a b-tree
// page whose usable size is U.
//
//	M := ((U-12)*32/255) - 23
//	X := U - 35
//
// If P <= X the whole payload is local. Otherwise K := M + (P-M) mod (U-4),
// and the local size is K when K <= X, or M otherwise.
func LocalPayloadSize(usablePageSize, payloadSize int) int {
	x := usablePageSize - 35
	if payloadSize <= x {
		return payloadSize
	}
	m := ((usablePageSize-12)*32)/255 - 23
	k := m + (payloadSize-m)%(usablePageSize-4)
	if k <= x {
		return k
	}
	return m
}
