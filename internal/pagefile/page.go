// Package pagefile implements SoupDB's on-disk page format and the scoped
// file handle that reads and writes it.
//
// What: a fixed 8192-byte page layout (PageMetadata on every page, an
// additional DbMetadata on page 0 only) and byte-exact, page-aligned file
// I/O.
// How: little-endian field-by-field marshal/unmarshal via encoding/binary.
// Deliberately no CRC32 checksum or magic-number superblock: the format
// this package implements is fixed-size and self-describing through
// DbMetadata alone.
// Why: the on-disk byte layout is an external interface (exact byte offsets
// are part of the contract), so the marshal code here must reproduce it
// exactly rather than delegate to a generic struct encoder.
package pagefile

import "encoding/binary"

// PageSize is the fixed page size in bytes (0x2000).
const PageSize = 8192

// pageMetadataSize is the on-disk size of PageMetadata: two 8-byte fields.
const pageMetadataSize = 16

// dbMetadataSize is the on-disk size of DbMetadata: two 8-byte fields.
const dbMetadataSize = 16

// PageID identifies a page within a database file. Zero is the
// terminator/null sentinel; valid page ids start at 1 where needed.
type PageID uint64

// PageMetadata is the header present at offset 0 of every page.
type PageMetadata struct {
	PrevPage PageID
	NextPage PageID
}

// MarshalInto writes m's little-endian encoding into buf[0:16].
func (m PageMetadata) MarshalInto(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(m.PrevPage))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(m.NextPage))
}

// UnmarshalPageMetadata reads a PageMetadata from buf[0:16].
func UnmarshalPageMetadata(buf []byte) PageMetadata {
	return PageMetadata{
		PrevPage: PageID(binary.LittleEndian.Uint64(buf[0:8])),
		NextPage: PageID(binary.LittleEndian.Uint64(buf[8:16])),
	}
}

// DbMetadata is the header present immediately after PageMetadata on page 0
// only.
type DbMetadata struct {
	FirstFreePage PageID
	LastPage      PageID
}

// MarshalInto writes m's little-endian encoding into buf[0:16].
func (m DbMetadata) MarshalInto(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(m.FirstFreePage))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(m.LastPage))
}

// UnmarshalDbMetadata reads a DbMetadata from buf[0:16].
func UnmarshalDbMetadata(buf []byte) DbMetadata {
	return DbMetadata{
		FirstFreePage: PageID(binary.LittleEndian.Uint64(buf[0:8])),
		LastPage:      PageID(binary.LittleEndian.Uint64(buf[8:16])),
	}
}
