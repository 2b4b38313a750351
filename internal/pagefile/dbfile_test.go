package pagefile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPageMetadataRoundTrip(t *testing.T) {
	data := []byte{
		0xa, 0, 0, 0, 0, 0, 0, 0, 0x14, 0, 0, 0, 0, 0, 0, 0,
		0xb, 0, 0, 0, 0, 0, 0, 0, 0x15, 0, 0, 0, 0, 0, 0, 0,
	}
	page := UnmarshalPageMetadata(data[0:16])
	if page.PrevPage != 10 || page.NextPage != 20 {
		t.Errorf("PageMetadata = %+v, want {10 20}", page)
	}
	db := UnmarshalDbMetadata(data[16:32])
	if db.FirstFreePage != 11 || db.LastPage != 21 {
		t.Errorf("DbMetadata = %+v, want {11 21}", db)
	}
}

func TestCreateProducesTwoZeroedPages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.soupdb")

	db, err := Create("test", path)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	defer db.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat returned error: %v", err)
	}
	if info.Size() != 2*PageSize {
		t.Fatalf("file size = %d, want %d", info.Size(), 2*PageSize)
	}

	if db.Meta.FirstFreePage != 1 || db.Meta.LastPage != 1 {
		t.Errorf("DbMetadata = %+v, want {FirstFreePage:1 LastPage:1}", db.Meta)
	}

	buf := make([]byte, PageSize)
	if err := db.ReadPage(0, buf); err != nil {
		t.Fatalf("ReadPage(0) returned error: %v", err)
	}
	meta := UnmarshalPageMetadata(buf[0:16])
	if meta.PrevPage != 0 || meta.NextPage != 0 {
		t.Errorf("page 0 PageMetadata = %+v, want zeroed", meta)
	}
	dbMeta := UnmarshalDbMetadata(buf[16:32])
	if dbMeta.FirstFreePage != 1 || dbMeta.LastPage != 1 {
		t.Errorf("page 0 DbMetadata = %+v, want {1 1}", dbMeta)
	}

	if err := db.ReadPage(1, buf); err != nil {
		t.Fatalf("ReadPage(1) returned error: %v", err)
	}
	meta1 := UnmarshalPageMetadata(buf[0:16])
	if meta1.PrevPage != 0 || meta1.NextPage != 0 {
		t.Errorf("page 1 PageMetadata = %+v, want zeroed", meta1)
	}
}

func TestOpenRoundTripsMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.soupdb")

	created, err := Create("test", path)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	created.Close()

	opened, err := Open("test", path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer opened.Close()

	if opened.Meta != created.Meta {
		t.Errorf("Open().Meta = %+v, want %+v", opened.Meta, created.Meta)
	}
}

func TestWritePageRejectsShortBuffer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.soupdb")
	db, err := Create("test", path)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	defer db.Close()

	if err := db.WritePage(0, make([]byte, PageSize-1)); err == nil {
		t.Error("expected error writing a short buffer")
	}
}
