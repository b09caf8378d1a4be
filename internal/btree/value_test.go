package btree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueOwnCopiesBorrowedStorage(t *testing.T) {
	blob := []byte{1, 2, 3}
	v := Value{Kind: KindBlob, Blob: blob}
	o := v.Own()

	blob[0] = 0xFF
	assert.Equal(t, byte(1), o.Blob[0], "owned value must not alias the source slice")
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "NULL", Value{Kind: KindNull}.String())
	assert.Equal(t, "42", Value{Kind: KindInt, Int: 42}.String())
	assert.Equal(t, "hi", Value{Kind: KindText, Str: "hi"}.String())
}
