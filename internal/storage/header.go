package storage

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed length, in bytes, of the database file header
// that prefixes page 1.
const HeaderSize = 100

const magicPrefix = "SQLite format 3\x00"

// DbHeader is the 100-byte header found at offset 0 of every database file.
// Only the fields below are decoded, and of those the engine itself uses
// PageSize and ReservedSpace; the rest of the header (freelist bookkeeping,
// version numbers, the application ID) is not read.
type DbHeader struct {
	PageSize      uint32
	ReservedSpace byte
	FileChangeCtr uint32
	DatabaseSize  uint32
	TextEncoding  uint32
	SchemaCookie  uint32
}

// ParseHeader decodes the first 100 bytes of a database file.
func ParseHeader(buf []byte) (DbHeader, error) {
	if len(buf) < HeaderSize {
		return DbHeader{}, fmt.Errorf("%w: %d bytes is shorter than the 100-byte header", ErrTruncated, len(buf))
	}
	if string(buf[:16]) != magicPrefix {
		return DbHeader{}, fmt.Errorf("%w: missing magic prefix", ErrBadHeader)
	}

	rawPageSize := binary.BigEndian.Uint16(buf[16:18])
	var pageSize uint32
	switch {
	case rawPageSize == 1:
		// 1 is the on-disk encoding for the maximum page size, 65536, which
		// does not fit in a uint16.
		pageSize = 65536
	case rawPageSize >= 512 && rawPageSize&(rawPageSize-1) == 0:
		pageSize = uint32(rawPageSize)
	default:
		return DbHeader{}, fmt.Errorf("%w: %d is not a power of two between 512 and 65536", ErrInvalidPageSize, rawPageSize)
	}

	return DbHeader{
		PageSize:      pageSize,
		ReservedSpace: buf[20],
		FileChangeCtr: binary.BigEndian.Uint32(buf[24:28]),
		DatabaseSize:  binary.BigEndian.Uint32(buf[28:32]),
		SchemaCookie:  binary.BigEndian.Uint32(buf[40:44]),
		TextEncoding:  binary.BigEndian.Uint32(buf[56:60]),
	}, nil
}

// UsablePageSize is the portion of each page available to the b-tree layer,
// after subtracting bytes reserved for per-page extensions (almost always
// zero in practice, but the file format allows it).
func (h DbHeader) UsablePageSize() int {
	return int(h.PageSize) - int(h.ReservedSpace)
}
