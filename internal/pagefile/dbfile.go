package pagefile

import (
	"io"
	"os"

	"github.com/soupdb/soupdb/internal/errs"
)

// DbFile is a scoped handle onto a database file on disk: a file whose
// length is always a multiple of PageSize, with PageMetadata on every page
// and an additional DbMetadata on page 0.
type DbFile struct {
	Name string
	Meta DbMetadata
	file *os.File
}

// Create opens path for writing and lays down a fresh two-page database
// file: page 0 carries a zeroed PageMetadata followed by
// DbMetadata{FirstFreePage: 1, LastPage: 1}; page 1 carries a zeroed
// PageMetadata. The file is flushed before returning.
func Create(name string, path string) (*DbFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errs.Wrap(errs.IoError, err, "create database file %q", path)
	}

	pageMeta := PageMetadata{}
	dbMeta := DbMetadata{FirstFreePage: 1, LastPage: 1}

	buf := make([]byte, PageSize*2)
	pageMeta.MarshalInto(buf[0:pageMetadataSize])
	dbMeta.MarshalInto(buf[pageMetadataSize : pageMetadataSize+dbMetadataSize])
	pageMeta.MarshalInto(buf[PageSize : PageSize+pageMetadataSize])

	if _, err := f.Write(buf); err != nil {
		f.Close()
		return nil, errs.Wrap(errs.IoError, err, "write initial pages for %q", path)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return nil, errs.Wrap(errs.IoError, err, "flush %q", path)
	}

	return &DbFile{Name: name, Meta: dbMeta, file: f}, nil
}

// Open opens an existing database file for reading and writing and reads
// its page-0 header.
func Open(name string, path string) (*DbFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, errs.Wrap(errs.IoError, err, "open database file %q", path)
	}

	header := make([]byte, pageMetadataSize+dbMetadataSize)
	if err := readPageBytes(f, 0, header); err != nil {
		f.Close()
		return nil, err
	}
	dbMeta := UnmarshalDbMetadata(header[pageMetadataSize : pageMetadataSize+dbMetadataSize])

	return &DbFile{Name: name, Meta: dbMeta, file: f}, nil
}

// Close releases the underlying OS file handle.
func (d *DbFile) Close() error {
	return d.file.Close()
}

// WriteDbMetadata overwrites page 0's DbMetadata header (the bytes
// immediately following its PageMetadata) in place, without touching the
// rest of the page, and updates d.Meta to match.
func (d *DbFile) WriteDbMetadata(meta DbMetadata) error {
	buf := make([]byte, dbMetadataSize)
	meta.MarshalInto(buf)
	n, err := d.file.WriteAt(buf, int64(pageMetadataSize))
	if err != nil {
		return errs.Wrap(errs.IoError, err, "write db metadata for %q", d.Name)
	}
	if n != dbMetadataSize {
		return errs.New(errs.IoError, "short write of db metadata for %q: wrote %d of %d bytes", d.Name, n, dbMetadataSize)
	}
	d.Meta = meta
	return nil
}

// ReadPage reads exactly PageSize bytes from the page at pageIndex into buf.
// buf must be at least PageSize bytes; a short read is an error.
func (d *DbFile) ReadPage(pageIndex uint64, buf []byte) error {
	if len(buf) < PageSize {
		return errs.New(errs.IoError, "read buffer too small: %d < %d", len(buf), PageSize)
	}
	return readPageBytes(d.file, pageIndex, buf[:PageSize])
}

// WritePage writes exactly PageSize bytes from bytes to the page at
// pageIndex. len(bytes) must equal PageSize; a short write is an error.
func (d *DbFile) WritePage(pageIndex uint64, bytes []byte) error {
	if len(bytes) != PageSize {
		return errs.New(errs.IoError, "write buffer must be exactly %d bytes, got %d", PageSize, len(bytes))
	}
	off := int64(pageIndex) * PageSize
	n, err := d.file.WriteAt(bytes, off)
	if err != nil {
		return errs.Wrap(errs.IoError, err, "write page %d", pageIndex)
	}
	if n != PageSize {
		return errs.New(errs.IoError, "short write on page %d: wrote %d of %d bytes", pageIndex, n, PageSize)
	}
	return nil
}

// Size returns the current file size in bytes.
func (d *DbFile) Size() (int64, error) {
	info, err := d.file.Stat()
	if err != nil {
		return 0, errs.Wrap(errs.IoError, err, "stat %q", d.Name)
	}
	return info.Size(), nil
}

func readPageBytes(f *os.File, pageIndex uint64, buf []byte) error {
	off := int64(pageIndex) * PageSize
	n, err := f.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return errs.Wrap(errs.IoError, err, "read page %d", pageIndex)
	}
	if n != len(buf) {
		return errs.New(errs.IoError, "short read on page %d: read %d of %d bytes", pageIndex, n, len(buf))
	}
	return nil
}
