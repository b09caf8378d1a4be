package storage

import "errors"

// Sentinel errors returned by the storage layer. Callers use errors.Is to
// classify a failure without depending on its formatted message.
var (
	// ErrBadHeader is returned when the 100-byte database header does not
	// begin with the expected magic prefix.
	ErrBadHeader = errors.New("invalid database header")

	// ErrInvalidPageSize is returned when the header's page size is not a
	// power of two in the supported range.
	ErrInvalidPageSize = errors.New("invalid page size")

	// ErrUnknownPageType is returned for any page-type byte other than
	// table-leaf (0x0D) or table-interior (0x05).
	ErrUnknownPageType = errors.New("unknown or unsupported page type")

	// ErrReservedFieldType is returned for record field type codes 10/11,
	// which SQLite reserves and never produces.
	ErrReservedFieldType = errors.New("reserved record field type")

	// ErrTruncated is returned when a varint, cell, or record runs past
	// the end of the buffer it is being decoded from.
	ErrTruncated = errors.New("truncated data")

	// ErrInvalidUTF8 is returned when a text field's bytes are not valid
	// UTF-8.
	ErrInvalidUTF8 = errors.New("invalid utf8 in text field")
)
