package buffer

import (
	"testing"

	"github.com/soupdb/soupdb/internal/pagefile"
)

func newTestBuffer(slots int) *Buffer {
	return New(slots * pagefile.PageSize)
}

func mustGet(t *testing.T, b *Buffer, id pagefile.PageID, kind LockKind) *PageLock {
	t.Helper()
	lock, bytes := b.GetPage(id, kind, func(buf []byte) {})
	if lock == nil {
		t.Fatalf("GetPage(%d, %v) = nil, want a lock", id, kind)
	}
	if bytes == nil {
		t.Fatalf("GetPage(%d, %v) returned nil slot bytes", id, kind)
	}
	return lock
}

func TestThreeDistinctPagesOccupySlotsInOrder(t *testing.T) {
	b := newTestBuffer(3)

	l1 := mustGet(t, b, 1, ReadLock)
	l2 := mustGet(t, b, 2, ReadLock)
	l3 := mustGet(t, b, 3, ReadLock)

	if l1.slot != 0 || l2.slot != 1 || l3.slot != 2 {
		t.Fatalf("slots = %d,%d,%d, want 0,1,2", l1.slot, l2.slot, l3.slot)
	}
	l1.Release()
	l2.Release()
	l3.Release()
}

func TestFourthPageEvictsLRUHead(t *testing.T) {
	b := newTestBuffer(3)

	l1 := mustGet(t, b, 1, ReadLock)
	l2 := mustGet(t, b, 2, ReadLock)
	l3 := mustGet(t, b, 3, ReadLock)
	l1.Release()
	l2.Release()
	l3.Release()
	b.Tick()

	if !b.ContainsPage(1) {
		t.Fatal("page 1 should still be resident (in LRU) before the fourth load")
	}

	l4 := mustGet(t, b, 4, ReadLock)
	if l4.slot != 0 {
		t.Fatalf("page 4 got slot %d, want 0 (the evicted LRU head)", l4.slot)
	}
	if b.ContainsPage(1) {
		t.Fatal("page 1 should have been evicted")
	}
	if !b.ContainsPage(2) || !b.ContainsPage(3) {
		t.Fatal("pages 2 and 3 should still be resident")
	}
	l4.Release()
}

func TestHeldReadLockIsNeverEvicted(t *testing.T) {
	b := newTestBuffer(3)

	pinned := mustGet(t, b, 1, ReadLock)

	l2 := mustGet(t, b, 2, ReadLock)
	l2.Release()
	l3 := mustGet(t, b, 3, ReadLock)
	l3.Release()
	b.Tick()

	l4 := mustGet(t, b, 4, ReadLock) // evicts page 2 (LRU head)
	l4.Release()
	b.Tick()
	l5 := mustGet(t, b, 5, ReadLock) // evicts page 3
	l5.Release()
	b.Tick()

	if !b.ContainsPage(1) {
		t.Fatal("page 1 was evicted while a read lock was held on it")
	}
	pinned.Release()
}

func TestWriteQueuedBehindReadersDeliveredAfterRelease(t *testing.T) {
	b := newTestBuffer(3)

	reader := mustGet(t, b, 1, ReadLock)

	reply := make(chan *PageLock, 1)
	b.RequestLock(1, WriteLock, func([]byte) {}, reply)

	select {
	case <-reply:
		t.Fatal("write lock was granted while a reader was still active")
	default:
	}

	reader.Release()
	b.Tick()

	select {
	case lock := <-reply:
		if lock == nil || lock.Kind() != WriteLock {
			t.Fatalf("got %+v, want a write lock", lock)
		}
		lock.Release()
	default:
		t.Fatal("write lock was not granted after the reader released")
	}
}

func TestConcurrentRequestsOnActiveWriterQueueFIFO(t *testing.T) {
	b := newTestBuffer(3)

	writer := mustGet(t, b, 1, WriteLock)

	readReply := make(chan *PageLock, 1)
	writeReply := make(chan *PageLock, 1)
	b.RequestLock(1, ReadLock, func([]byte) {}, readReply)
	b.RequestLock(1, WriteLock, func([]byte) {}, writeReply)

	writer.Release()
	b.Tick()

	var readLock *PageLock
	select {
	case readLock = <-readReply:
		if readLock == nil {
			t.Fatal("read request was not granted first")
		}
	default:
		t.Fatal("read request (head of queue) should have been granted")
	}
	select {
	case <-writeReply:
		t.Fatal("write request should still be queued behind the read lock")
	default:
	}

	readLock.Release()
	b.Tick()

	select {
	case lock := <-writeReply:
		if lock == nil || lock.Kind() != WriteLock {
			t.Fatalf("got %+v, want a write lock", lock)
		}
		lock.Release()
	default:
		t.Fatal("write request should have been granted after the read lock released")
	}
}

func TestReadRequestQueuesBehindAlreadyQueuedWrite(t *testing.T) {
	b := newTestBuffer(3)

	reader := mustGet(t, b, 1, ReadLock)

	writeReply := make(chan *PageLock, 1)
	b.RequestLock(1, WriteLock, func([]byte) {}, writeReply)

	readReply := make(chan *PageLock, 1)
	b.RequestLock(1, ReadLock, func([]byte) {}, readReply)

	reader.Release()
	b.Tick()

	var writeLock *PageLock
	select {
	case writeLock = <-writeReply:
		if writeLock == nil {
			t.Fatal("queued write should have been granted")
		}
	default:
		t.Fatal("queued write should have been granted once the original reader released")
	}
	select {
	case <-readReply:
		t.Fatal("later read request should still be queued behind the write")
	default:
	}

	writeLock.Release()
	b.Tick()

	select {
	case lock := <-readReply:
		if lock == nil || lock.Kind() != ReadLock {
			t.Fatalf("got %+v, want a read lock", lock)
		}
		lock.Release()
	default:
		t.Fatal("read request should have been granted after the write released")
	}
}

func TestFullyPinnedMissReturnsNilThenRetrySucceeds(t *testing.T) {
	b := newTestBuffer(1)

	pinned := mustGet(t, b, 1, ReadLock)

	lock, bytes := b.GetPage(2, ReadLock, func([]byte) {})
	if lock != nil || bytes != nil {
		t.Fatalf("GetPage on a fully pinned buffer = (%v, %v), want (nil, nil)", lock, bytes)
	}

	pinned.Release()
	b.Tick()

	lock2, bytes2 := b.GetPage(2, ReadLock, func([]byte) {})
	if lock2 == nil || bytes2 == nil {
		t.Fatal("retry after release should have succeeded")
	}
	lock2.Release()
}

func TestContainsPageReflectsResidency(t *testing.T) {
	b := newTestBuffer(1)

	if b.ContainsPage(1) {
		t.Fatal("page 1 should not be resident before any load")
	}

	lock := mustGet(t, b, 1, ReadLock)
	if !b.ContainsPage(1) {
		t.Fatal("page 1 should be resident once locked")
	}
	lock.Release()
	b.Tick()
	if !b.ContainsPage(1) {
		t.Fatal("page 1 should still be resident (idle in LRU) after release")
	}

	mustGet(t, b, 2, ReadLock) // evicts page 1, the only slot
	if b.ContainsPage(1) {
		t.Fatal("page 1 should no longer be resident after being evicted")
	}
}

func TestFillInvokedOnlyOnMiss(t *testing.T) {
	b := newTestBuffer(2)

	fillCount := 0
	fill := func([]byte) { fillCount++ }

	l1, _ := b.GetPage(1, ReadLock, fill)
	if fillCount != 1 {
		t.Fatalf("fillCount = %d after first load, want 1", fillCount)
	}
	l1.Release()
	b.Tick()

	l1b, _ := b.GetPage(1, ReadLock, fill)
	if fillCount != 1 {
		t.Fatalf("fillCount = %d on a hit, want unchanged at 1", fillCount)
	}
	l1b.Release()
}

func TestAbandonedReplyChannelTreatedAsImmediateRelease(t *testing.T) {
	b := newTestBuffer(1)

	writer := mustGet(t, b, 1, WriteLock)

	// An unbuffered, never-read channel: the grant attempt's non-blocking
	// send will fail, and the buffer must treat that as an immediate
	// release rather than leaking the writer-count increment.
	abandoned := make(chan *PageLock)
	b.RequestLock(1, WriteLock, func([]byte) {}, abandoned)

	writer.Release()
	b.Tick()

	// If the abandoned grant had leaked its writer-count increment, this
	// next request would wrongly queue forever instead of being grantable.
	lock, bytes := b.GetPage(1, WriteLock, func([]byte) {})
	if lock == nil || bytes == nil {
		t.Fatal("page should be grantable again after an abandoned reply was treated as released")
	}
	lock.Release()
}
