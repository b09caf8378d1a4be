// Package btree walks a table b-tree rooted at a page number, yielding one
// cursor per row in ascending rowid order, and decodes individual record
// fields on demand (including overflow-chain reassembly).
package btree

import "fmt"

// ValueKind tags which storage class a Value holds.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt
	KindFloat
	KindText
	KindBlob
)

// Value is a single decoded record field. Blob aliases the cursor's payload
// buffer rather than copying it; Str is a Go string and so always holds its
// own copy of the text bytes. Callers that need a Blob independent of the
// cursor should use OwnedValue instead.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Str   string
	Blob  []byte
}

// OwnedValue is a Value whose String/Blob storage has been copied out, so
// it remains valid independent of the cursor that produced it.
type OwnedValue struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Str   string
	Blob  []byte
}

// Own copies a Value's borrowed storage into an OwnedValue.
func (v Value) Own() OwnedValue {
	o := OwnedValue{Kind: v.Kind, Int: v.Int, Float: v.Float}
	if v.Str != "" {
		o.Str = string([]byte(v.Str))
	}
	if v.Blob != nil {
		o.Blob = append([]byte(nil), v.Blob...)
	}
	return o
}

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindText:
		return v.Str
	case KindBlob:
		return fmt.Sprintf("<blob %d bytes>", len(v.Blob))
	default:
		return ""
	}
}

func (v OwnedValue) String() string {
	return Value(v).String()
}
