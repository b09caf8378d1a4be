// Package pager turns raw file bytes into parsed, cached pages. It owns the
// one subtlety that makes SQLite's page numbering awkward in Go: page 1 is
// both the database header and the root page of sqlite_schema, so its
// buffer must be read with a 100-byte offset that every other page lacks.
package pager

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/joeandaverde/tinyquery/internal/storage"
)

// Pager reads and caches pages from a SQLite-format database file. Page
// numbers are 1-based, matching the on-disk format.
type Pager interface {
	// Header returns the parsed 100-byte file header.
	Header() storage.DbHeader

	// ReadPage returns the parsed page numbered n (1-based).
	ReadPage(n uint32) (*storage.Page, error)

	// ReadOverflow returns the parsed overflow page numbered n.
	ReadOverflow(n uint32) (*storage.OverflowPage, error)
}

// filePager is the only concrete Pager implementation. It is built around
// an io.ReaderAt rather than an os.File directly so tests can substitute an
// in-memory backend without touching the filesystem.
type filePager struct {
	r      io.ReaderAt
	header storage.DbHeader
	log    *logrus.Entry

	mu    sync.RWMutex
	pages map[uint32]*storage.Page
	ovfl  map[uint32]*storage.OverflowPage
}

// Open reads the 100-byte header from r and constructs a Pager around it.
func Open(r io.ReaderAt, log *logrus.Entry) (Pager, error) {
	buf := make([]byte, storage.HeaderSize)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("reading database header: %w", err)
	}
	h, err := storage.ParseHeader(buf)
	if err != nil {
		return nil, fmt.Errorf("parsing database header: %w", err)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &filePager{
		r:      r,
		header: h,
		log:    log,
		pages:  make(map[uint32]*storage.Page),
		ovfl:   make(map[uint32]*storage.OverflowPage),
	}, nil
}

func (p *filePager) Header() storage.DbHeader { return p.header }

func (p *filePager) ReadPage(n uint32) (*storage.Page, error) {
	if n == 0 {
		return nil, fmt.Errorf("%w: page number 0 is not valid, pages are 1-indexed", storage.ErrTruncated)
	}

	p.mu.RLock()
	if page, ok := p.pages[n]; ok {
		p.mu.RUnlock()
		return page, nil
	}
	p.mu.RUnlock()

	usable := p.header.UsablePageSize()
	fileOffset := int64(n-1) * int64(p.header.PageSize)
	pageOneOffset := 0
	if n == 1 {
		pageOneOffset = storage.HeaderSize
	}

	// Every page, including page 1, occupies a full on-disk PageSize bytes;
	// page 1's leading 100 bytes are the file header rather than b-tree
	// page content. Cell pointers are absolute offsets within this same
	// raw buffer, so no further offset translation is needed once
	// pageOneOffset locates where the b-tree page header itself begins.
	buf := make([]byte, p.header.PageSize)
	if _, err := p.r.ReadAt(buf, fileOffset); err != nil {
		return nil, fmt.Errorf("reading page %d: %w", n, err)
	}

	parsed, err := storage.ParsePage(buf[:usable], pageOneOffset, usable)
	if err != nil {
		return nil, fmt.Errorf("parsing page %d: %w", n, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.pages[n]; ok {
		// Another goroutine populated the cache first.
		return existing, nil
	}
	p.log.WithField("page", n).Debug("pager: page cache miss")
	p.pages[n] = &parsed
	return &parsed, nil
}

func (p *filePager) ReadOverflow(n uint32) (*storage.OverflowPage, error) {
	if n == 0 {
		return nil, fmt.Errorf("%w: page number 0 is not valid, pages are 1-indexed", storage.ErrTruncated)
	}

	p.mu.RLock()
	if page, ok := p.ovfl[n]; ok {
		p.mu.RUnlock()
		return page, nil
	}
	p.mu.RUnlock()

	usable := p.header.UsablePageSize()
	fileOffset := int64(n-1) * int64(p.header.PageSize)

	buf := make([]byte, usable)
	if _, err := p.r.ReadAt(buf, fileOffset); err != nil {
		return nil, fmt.Errorf("reading overflow page %d: %w", n, err)
	}

	parsed, err := storage.ParseOverflowPage(buf)
	if err != nil {
		return nil, fmt.Errorf("parsing overflow page %d: %w", n, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.ovfl[n]; ok {
		return existing, nil
	}
	p.log.WithField("page", n).Debug("pager: overflow cache miss")
	p.ovfl[n] = &parsed
	return &parsed, nil
}
