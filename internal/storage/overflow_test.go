package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverflowPage(t *testing.T) {
	buf := make([]byte, 512)
	PutU32(buf[:4], 42)
	copy(buf[4:], []byte("overflow payload bytes"))

	op, err := ParseOverflowPage(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), op.NextPage)
	assert.Equal(t, buf[4:], op.Payload)
}

func TestParseOverflowPageLastInChain(t *testing.T) {
	buf := make([]byte, 16)
	op, err := ParseOverflowPage(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), op.NextPage)
}

func TestParseOverflowPageTruncated(t *testing.T) {
	_, err := ParseOverflowPage([]byte{1, 2})
	assert.ErrorIs(t, err, ErrTruncated)
}
