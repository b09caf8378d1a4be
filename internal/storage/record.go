package storage

import "fmt"

// RecordFieldKind classifies the storage class a serial type code maps to.
type RecordFieldKind int

const (
	KindNull RecordFieldKind = iota
	KindInt
	KindFloat
	KindZero // serial type 8: the literal integer 0, stored in no bytes
	KindOne  // serial type 9: the literal integer 1, stored in no bytes
	KindBlob
	KindText
)

// RecordField describes one column's encoding within a record: its kind,
// the byte length of its encoded content, and the byte offset of that
// content relative to the start of the record body (header length +
// content, as laid out by ParseRecordHeader).
type RecordField struct {
	Kind   RecordFieldKind
	Size   int
	Offset int
}

// RecordHeader is the decoded header of a SQLite record: the per-column
// serial-type table plus the total record body length it implies.
type RecordHeader struct {
	Fields   []RecordField
	BodySize int // header length + sum of all field content lengths
}

// ParseRecordHeader decodes a record's header (a varint header length
// followed by one varint serial type per column) from the start of buf.
// It does not read column content; it only establishes where each column's
// bytes begin and how long they are, per the type-code table:
//
//	0       NULL, 0 bytes
//	1-4     signed int, N bytes (N = type code)
//	5       signed int, 6 bytes
//	6       signed int, 8 bytes
//	7       IEEE-754 float, 8 bytes
//	8       integer literal 0, 0 bytes
//	9       integer literal 1, 0 bytes
//	10, 11  reserved, never produced
//	N>=12 even   blob, (N-12)/2 bytes
//	N>=13 odd    text, (N-13)/2 bytes
func ParseRecordHeader(buf []byte) (RecordHeader, error) {
	n, headerLen, err := ReadVarint(buf)
	if err != nil {
		return RecordHeader{}, fmt.Errorf("decoding record header length: %w", err)
	}
	if headerLen < 0 || int(headerLen) > len(buf) {
		return RecordHeader{}, fmt.Errorf("%w: record header length %d exceeds buffer", ErrTruncated, headerLen)
	}

	pos := n
	contentOffset := int(headerLen)
	var fields []RecordField

	for pos < int(headerLen) {
		m, serialType, err := ReadVarint(buf[pos:])
		if err != nil {
			return RecordHeader{}, fmt.Errorf("decoding serial type: %w", err)
		}
		pos += m

		kind, size, err := decodeSerialType(serialType)
		if err != nil {
			return RecordHeader{}, err
		}

		fields = append(fields, RecordField{Kind: kind, Size: size, Offset: contentOffset})
		contentOffset += size
	}

	return RecordHeader{Fields: fields, BodySize: contentOffset}, nil
}

func decodeSerialType(serialType int64) (RecordFieldKind, int, error) {
	switch {
	case serialType == 0:
		return KindNull, 0, nil
	case serialType >= 1 && serialType <= 4:
		return KindInt, int(serialType), nil
	case serialType == 5:
		return KindInt, 6, nil
	case serialType == 6:
		return KindInt, 8, nil
	case serialType == 7:
		return KindFloat, 8, nil
	case serialType == 8:
		return KindZero, 0, nil
	case serialType == 9:
		return KindOne, 0, nil
	case serialType == 10 || serialType == 11:
		return 0, 0, fmt.Errorf("%w: serial type %d", ErrReservedFieldType, serialType)
	case serialType >= 12 && serialType%2 == 0:
		return KindBlob, int((serialType - 12) / 2), nil
	default: // odd, >= 13
		return KindText, int((serialType - 13) / 2), nil
	}
}

// DecodeInt reinterprets b (whose length must match the field's declared
// size: 1, 2, 3, 4, 6, or 8 bytes) as a signed, sign-extended integer.
func DecodeInt(b []byte) (int64, error) {
	switch len(b) {
	case 1:
		return ReadI8(b), nil
	case 2:
		return ReadI16(b), nil
	case 3:
		return ReadI24(b), nil
	case 4:
		return ReadI32(b), nil
	case 6:
		return ReadI48(b), nil
	case 8:
		return ReadI64(b), nil
	default:
		return 0, fmt.Errorf("%w: %d is not a valid integer field width", ErrTruncated, len(b))
	}
}
