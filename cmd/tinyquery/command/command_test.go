package command

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeandaverde/tinyquery/internal/storage"
)

const testPageSize = 512

func encodeVarint(v int64) []byte {
	var groups []byte
	x := v
	groups = append(groups, byte(x&0x7f))
	x >>= 7
	for x > 0 {
		groups = append(groups, byte(x&0x7f))
		x >>= 7
	}
	buf := make([]byte, len(groups))
	for i, g := range groups {
		buf[len(groups)-1-i] = g
	}
	for i := 0; i < len(buf)-1; i++ {
		buf[i] |= 0x80
	}
	return buf
}

func textField(s string) (header, content []byte) {
	return encodeVarint(int64(13 + 2*len(s))), []byte(s)
}

func intField(v int32) (header, content []byte) {
	content = make([]byte, 4)
	storage.PutU32(content, uint32(v))
	return []byte{4}, content
}

func buildRecord(headers, contents [][]byte) []byte {
	var headerBody []byte
	for _, h := range headers {
		headerBody = append(headerBody, h...)
	}
	headerLen := encodeVarint(int64(len(headerBody) + 1))
	if len(headerLen) != 1 {
		panic("fixture header too long for a 1-byte length prefix")
	}
	rec := append(append([]byte{}, headerLen...), headerBody...)
	for _, c := range contents {
		rec = append(rec, c...)
	}
	return rec
}

type fixtureRow struct {
	RowID  int64
	Record []byte
}

func writeLeafPage(buf []byte, headerOffset int, rows []fixtureRow) {
	base := buf[headerOffset:]
	base[0] = byte(storage.PageTypeTableLeaf)
	storage.PutU16(base[3:5], uint16(len(rows)))

	cellEnd := len(buf)
	offsets := make([]int, len(rows))
	for i, row := range rows {
		cell := append(encodeVarint(int64(len(row.Record))), encodeVarint(row.RowID)...)
		cell = append(cell, row.Record...)
		cellEnd -= len(cell)
		copy(buf[cellEnd:], cell)
		offsets[i] = cellEnd
	}
	storage.PutU16(base[5:7], uint16(cellEnd))

	ptrStart := headerOffset + 8
	for i, off := range offsets {
		storage.PutU16(buf[ptrStart+i*2:ptrStart+i*2+2], uint16(off))
	}
}

// writeFixtureDB writes a minimal two-page database: page 1 is
// sqlite_schema with a single "nums(v integer)" table rooted at page 2,
// which holds two rows.
func writeFixtureDB(t *testing.T, path string) {
	t.Helper()
	data := make([]byte, testPageSize*2)
	copy(data, "SQLite format 3\x00")
	storage.PutU16(data[16:18], testPageSize)
	storage.PutU32(data[28:32], 2)

	typeH, typeC := textField("table")
	nameH, nameC := textField("nums")
	tblH, tblC := textField("nums")
	rootH, rootC := intField(2)
	sqlH, sqlC := textField("create table nums (v integer)")

	schemaRecord := buildRecord(
		[][]byte{typeH, nameH, tblH, rootH, sqlH},
		[][]byte{typeC, nameC, tblC, rootC, sqlC},
	)
	writeLeafPage(data[:testPageSize], storage.HeaderSize, []fixtureRow{{RowID: 1, Record: schemaRecord}})

	v1H, v1C := intField(10)
	v2H, v2C := intField(20)
	row1 := buildRecord([][]byte{v1H}, [][]byte{v1C})
	row2 := buildRecord([][]byte{v2H}, [][]byte{v2C})
	writeLeafPage(data[testPageSize:testPageSize*2], 0, []fixtureRow{
		{RowID: 1, Record: row1},
		{RowID: 2, Record: row2},
	})

	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// captureStdout redirects os.Stdout for the duration of fn and returns
// whatever was written to it.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	require.NoError(t, w.Close())
	os.Stdout = orig

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)
	return buf.String()
}

func TestQueryCommandRunsStatement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.db")
	writeFixtureDB(t, path)

	cmd := &QueryCommand{}
	var code int
	out := captureStdout(t, func() {
		code = cmd.Run([]string{"-e", "select v from nums", path})
	})

	assert.Equal(t, 0, code)
	assert.Equal(t, "v\n10\n20\n", out)
}

func TestQueryCommandMissingArg(t *testing.T) {
	cmd := &QueryCommand{}
	assert.Equal(t, 1, cmd.Run(nil))
}

func TestTablesCommandListsTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.db")
	writeFixtureDB(t, path)

	cmd := &TablesCommand{}
	var code int
	out := captureStdout(t, func() {
		code = cmd.Run([]string{path})
	})

	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "nums (root page 2): v\n"))
}

func TestReplCommandTablesThenExit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.db")
	writeFixtureDB(t, path)

	origStdin := os.Stdin
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString(".tables\n.exit\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	os.Stdin = r
	defer func() { os.Stdin = origStdin }()

	cmd := &ReplCommand{}
	var code int
	out := captureStdout(t, func() {
		code = cmd.Run([]string{path})
	})

	assert.Equal(t, 0, code)
	assert.Contains(t, out, "nums (root page 2): v")
}
