package storage

import "fmt"

// OverflowPage is a single page in an overflow chain: a 4-byte pointer to
// the next overflow page (zero if this is the last one) followed by raw
// payload bytes filling the rest of the usable page size.
type OverflowPage struct {
	NextPage uint32
	Payload  []byte
}

// ParseOverflowPage decodes a single overflow page. buf must be exactly
// usablePageSize bytes, the first 4 of which are the next-page pointer.
func ParseOverflowPage(buf []byte) (OverflowPage, error) {
	if len(buf) < 4 {
		return OverflowPage{}, fmt.Errorf("%w: overflow page shorter than its next-pointer", ErrTruncated)
	}
	return OverflowPage{
		NextPage: ReadU32(buf[:4]),
		Payload:  buf[4:],
	}, nil
}
