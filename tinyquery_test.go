package tinyquery

import (
	"os"
	"path/filepath"
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

// writeFixtureDB writes a minimal two-page database to path: page 1 is
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

func TestOpenAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.db")
	writeFixtureDB(t, path)

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	tables := db.Tables()
	require.Len(t, tables, 1)
	assert.Equal(t, "nums", tables[0].Name)

	rows, err := db.Query("select v from nums")
	require.NoError(t, err)
	assert.Equal(t, []string{"v"}, rows.Columns)
	require.Len(t, rows.Values, 2)
	assert.Equal(t, int64(10), rows.Values[0][0].Int)
	assert.Equal(t, int64(20), rows.Values[1][0].Int)
}

func TestOpenNonexistentFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err)
}

func TestQueryUnknownTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.db")
	writeFixtureDB(t, path)

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Query("select * from missing")
	assert.Error(t, err)
}
