package executor

import (
	"os"

	"github.com/soupdb/soupdb/internal/errs"
	"github.com/soupdb/soupdb/internal/pagefile"
)

// CompactResult reports what a single page file's compaction pass found
// and did.
type CompactResult struct {
	FreePages      int
	ReclaimedPages int
}

// CompactPageFile walks path's free-page chain (threaded through each free
// page's PageMetadata.NextPage, starting at DbMetadata.FirstFreePage) and
// reclaims the trailing run of free pages by truncating the file, the only
// case a single-file, single-pass compactor can shrink safely without
// moving any live page: a free page found anywhere else in the file is
// counted but left in place on the free list, since relocating the pages
// above it is a multi-page operation outside this module's scope.
func CompactPageFile(path string) (CompactResult, error) {
	db, err := pagefile.Open(path, path)
	if err != nil {
		return CompactResult{}, err
	}
	defer db.Close()

	size, err := db.Size()
	if err != nil {
		return CompactResult{}, err
	}
	totalPages := uint64(size) / pagefile.PageSize

	// chain preserves free-list traversal order; free is the same set for
	// O(1) trailing-run membership tests below.
	var chain []uint64
	free := make(map[uint64]bool)
	buf := make([]byte, pagefile.PageSize)
	for p := uint64(db.Meta.FirstFreePage); p != 0; {
		if free[p] || p >= totalPages {
			break // guard against a malformed cyclic or out-of-range chain
		}
		free[p] = true
		chain = append(chain, p)
		if err := db.ReadPage(p, buf); err != nil {
			return CompactResult{}, err
		}
		meta := pagefile.UnmarshalPageMetadata(buf[:16])
		p = uint64(meta.NextPage)
	}

	result := CompactResult{FreePages: len(free)}
	if len(free) == 0 {
		return result, nil
	}

	trailing := uint64(0)
	for p := totalPages - 1; p > 0 && free[p]; p-- {
		trailing++
	}
	if trailing == 0 {
		return result, nil
	}
	newTotal := totalPages - trailing

	// Free pages below newTotal survive the truncation. Re-link them into a
	// fresh chain rather than dropping them: resetting FirstFreePage to 0
	// unconditionally would silently forget any free page that isn't part
	// of the trailing run, leaking it as permanently-unreclaimable space
	// (future allocation would grow the file instead of reusing it).
	var surviving []uint64
	for _, p := range chain {
		if p < newTotal {
			surviving = append(surviving, p)
		}
	}
	for i, p := range surviving {
		if err := db.ReadPage(p, buf); err != nil {
			return result, err
		}
		var next pagefile.PageID
		if i+1 < len(surviving) {
			next = pagefile.PageID(surviving[i+1])
		}
		meta := pagefile.PageMetadata{PrevPage: pagefile.UnmarshalPageMetadata(buf[:16]).PrevPage, NextPage: next}
		meta.MarshalInto(buf[:16])
		if err := db.WritePage(p, buf); err != nil {
			return result, err
		}
	}

	newFirstFree := pagefile.PageID(0)
	if len(surviving) > 0 {
		newFirstFree = pagefile.PageID(surviving[0])
	}
	newMeta := pagefile.DbMetadata{FirstFreePage: newFirstFree, LastPage: pagefile.PageID(newTotal - 1)}
	if err := db.WriteDbMetadata(newMeta); err != nil {
		return result, err
	}
	if err := os.Truncate(path, int64(newTotal)*pagefile.PageSize); err != nil {
		return result, errs.Wrap(errs.IoError, err, "truncate %q during compaction", path)
	}
	result.ReclaimedPages = int(trailing)
	return result, nil
}
