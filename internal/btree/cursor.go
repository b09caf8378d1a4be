package btree

import (
	"fmt"
	"unicode/utf8"

	"github.com/joeandaverde/tinyquery/internal/pager"
	"github.com/joeandaverde/tinyquery/internal/storage"
)

// Cursor is a handle over one table row. It is built once per leaf cell by
// the Scanner and grants random-access, type-aware reads of that row's
// columns, lazily pulling in overflow pages only when a requested field
// reaches past the bytes already materialized.
//
// A Cursor is not safe for concurrent use: reading a field that requires
// overflow mutates its payload buffer.
type Cursor struct {
	RowID   int64
	header  storage.RecordHeader
	payload []byte
	pager   pager.Pager
	next    uint32 // next overflow page to pull, 0 if the chain is exhausted
}

// newCursor builds a cursor from a leaf cell's raw local payload bytes,
// parsing the record header up front. The rest of each field's content is
// decoded lazily by Field/OwnedField.
func newCursor(p pager.Pager, rowID int64, localPayload []byte, firstOverflow uint32) (*Cursor, error) {
	header, err := storage.ParseRecordHeader(localPayload)
	if err != nil {
		return nil, fmt.Errorf("parsing record header for rowid %d: %w", rowID, err)
	}
	return &Cursor{
		RowID:   rowID,
		header:  header,
		payload: localPayload,
		pager:   p,
		next:    firstOverflow,
	}, nil
}

// FieldCount returns the number of columns in this row's record.
func (c *Cursor) FieldCount() int {
	return len(c.header.Fields)
}

// Field decodes column n. The second return value is false if n is past
// the record's field count.
func (c *Cursor) Field(n int) (Value, bool, error) {
	if n < 0 || n >= len(c.header.Fields) {
		return Value{}, false, nil
	}
	f := c.header.Fields[n]
	endOffset := f.Offset + f.Size

	if endOffset > len(c.payload) && c.next != 0 {
		if err := c.extendTo(endOffset); err != nil {
			return Value{}, false, err
		}
	}
	if endOffset > len(c.payload) {
		return Value{}, false, fmt.Errorf("%w: field %d extends past payload and overflow chain", storage.ErrTruncated, n)
	}

	content := c.payload[f.Offset:endOffset]
	v, err := decodeField(f, content)
	if err != nil {
		return Value{}, false, fmt.Errorf("decoding field %d: %w", n, err)
	}
	return v, true, nil
}

// OwnedField is Field with the result's borrowed storage copied out so it
// remains valid after the cursor (or its pager) is discarded.
func (c *Cursor) OwnedField(n int) (OwnedValue, bool, error) {
	v, ok, err := c.Field(n)
	if err != nil || !ok {
		return OwnedValue{}, ok, err
	}
	return v.Own(), true, nil
}

// extendTo pulls overflow pages until the payload buffer covers at least
// `want` bytes or the chain runs out.
func (c *Cursor) extendTo(want int) error {
	for len(c.payload) < want && c.next != 0 {
		op, err := c.pager.ReadOverflow(c.next)
		if err != nil {
			return fmt.Errorf("reading overflow page %d: %w", c.next, err)
		}
		c.payload = append(c.payload, op.Payload...)
		c.next = op.NextPage
	}
	return nil
}

func decodeField(f storage.RecordField, content []byte) (Value, error) {
	switch f.Kind {
	case storage.KindNull:
		return Value{Kind: KindNull}, nil
	case storage.KindZero:
		return Value{Kind: KindInt, Int: 0}, nil
	case storage.KindOne:
		return Value{Kind: KindInt, Int: 1}, nil
	case storage.KindInt:
		i, err := storage.DecodeInt(content)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindInt, Int: i}, nil
	case storage.KindFloat:
		return Value{Kind: KindFloat, Float: storage.ReadFloat64(content)}, nil
	case storage.KindBlob:
		return Value{Kind: KindBlob, Blob: content}, nil
	case storage.KindText:
		if !utf8.Valid(content) {
			return Value{}, storage.ErrInvalidUTF8
		}
		return Value{Kind: KindText, Str: string(content)}, nil
	default:
		return Value{}, fmt.Errorf("%w: unrecognized field kind", storage.ErrUnknownPageType)
	}
}
