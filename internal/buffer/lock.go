package buffer

import (
	"sync"

	"github.com/soupdb/soupdb/internal/pagefile"
)

// PageLock is a granted reference on a resident page. Go has no Drop, so
// release is explicit: callers must call Release when done, exactly once.
// A forgotten Release pins the page and its slot forever, same as forgetting
// to unlock a mutex.
type PageLock struct {
	buf  *Buffer
	id   pagefile.PageID
	kind LockKind
	slot int

	once sync.Once
}

// PageID returns the id of the locked page.
func (l *PageLock) PageID() pagefile.PageID { return l.id }

// Kind returns whether this is a read or write lock.
func (l *PageLock) Kind() LockKind { return l.kind }

// Bytes returns the current contents of the locked page's slot. The slice
// aliases the buffer's arena directly; holders of a WriteLock may mutate it
// in place, holders of a ReadLock must not.
func (l *PageLock) Bytes() []byte {
	return l.buf.slotBytes(l.slot)
}

// Release gives up this lock. Safe to call more than once; only the first
// call has any effect.
func (l *PageLock) Release() {
	l.once.Do(func() {
		l.buf.release <- releaseMsg{id: l.id, kind: l.kind}
	})
}
