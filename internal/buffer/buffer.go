// Package buffer implements SoupDB's page buffer manager — the concurrency
// core: slot allocation, LRU, reader/writer reference counts, and
// fairness-preserving lock queues.
//
// What: a fixed-capacity arena of page-sized slots, a page table mapping
// page ids to slots, an LRU set of idle-cached pages, per-page reader/writer
// reference counts, and a per-page FIFO pending-request queue.
// How: every granted PageLock posts its page id and kind to the buffer's
// release channel when released rather than decrementing counters directly;
// the channel is drained at the top of every public entry point, which is
// also where pending requests are re-attempted. Reader/writer reference
// counts and a per-page FIFO queue sit alongside the LRU set so a page with
// any live lock is never evicted and writers never get starved behind an
// endless stream of readers.
// Why: a single-owner, channel-serialized design keeps every state
// transition behind one mutex while still giving lock objects a safe,
// reliable release path that doesn't re-enter the buffer's mutation logic.
package buffer

import (
	"log"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/soupdb/soupdb/internal/pagefile"
)

// LockKind is the kind of lock a caller requested or holds.
type LockKind int

const (
	ReadLock LockKind = iota
	WriteLock
)

func (k LockKind) String() string {
	if k == WriteLock {
		return "write"
	}
	return "read"
}

// releaseMsg is what a PageLock posts to the buffer on release. The kind
// travels with the message because the buffer's release channel is the only
// place a lock's reference is decremented.
type releaseMsg struct {
	id   pagefile.PageID
	kind LockKind
}

// pendingReq is one entry of a page's FIFO pending-request queue.
type pendingReq struct {
	kind  LockKind
	fill  func([]byte)
	reply chan<- *PageLock
}

// Buffer is the page buffer manager. Its effective capacity is
// floor(capacityBytes / PageSize) slots of exactly PageSize bytes.
type Buffer struct {
	mu sync.Mutex

	arena         []byte
	capacityPages int

	pageMap map[pagefile.PageID]int // page id -> slot, for resident pages
	free    []int                   // stack of unused slot indices
	lru     *lruList

	readerCount map[pagefile.PageID]int
	writerCount map[pagefile.PageID]int
	pending     map[pagefile.PageID][]*pendingReq

	release chan releaseMsg

	hits, misses, evictions uint64
}

// New constructs a Buffer with the given target byte capacity.
func New(capacityBytes int) *Buffer {
	capacityPages := capacityBytes / pagefile.PageSize
	if capacityPages < 0 {
		capacityPages = 0
	}
	free := make([]int, capacityPages)
	for i := range free {
		free[i] = capacityPages - 1 - i // pop from the tail in ascending order
	}
	b := &Buffer{
		arena:         make([]byte, capacityPages*pagefile.PageSize),
		capacityPages: capacityPages,
		pageMap:       make(map[pagefile.PageID]int),
		free:          free,
		lru:           newLRUList(),
		readerCount:   make(map[pagefile.PageID]int),
		writerCount:   make(map[pagefile.PageID]int),
		pending:       make(map[pagefile.PageID][]*pendingReq),
		release:       make(chan releaseMsg, 4096),
	}
	log.Printf("buffer: initialized with capacity %s (%d pages)", humanize.Bytes(uint64(len(b.arena))), capacityPages)
	return b
}

// CapacityPages returns the number of page-sized slots in the arena.
func (b *Buffer) CapacityPages() int { return b.capacityPages }

func (b *Buffer) slotBytes(slot int) []byte {
	return b.arena[slot*pagefile.PageSize : (slot+1)*pagefile.PageSize]
}

// Tick drains pending release messages without doing anything else. Calling
// it is never required for correctness (every public entry point drains on
// arrival), but it lets an idle loop reclaim released pages promptly.
func (b *Buffer) Tick() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drainReleases()
}

// ContainsPage reports whether id is currently resident (in the LRU or
// actively locked).
func (b *Buffer) ContainsPage(id pagefile.PageID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drainReleases()
	_, ok := b.pageMap[id]
	return ok
}

// GetPage synchronously attempts to grant kind on id. On a miss, fill is
// invoked on the slot bytes before returning. It returns (nil, nil) if the
// grant cannot be made immediately — either because the buffer is
// completely pinned, or because an incompatible lock or a fairness-blocking
// queue entry is ahead of this request; a well-behaved caller retries after
// a release.
func (b *Buffer) GetPage(id pagefile.PageID, kind LockKind, fill func([]byte)) (*PageLock, []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drainReleases()

	// Only attempt the synchronous path if this request would become the
	// new head of an otherwise-empty queue; if there's already a queue for
	// this id, a synchronous caller must not skip ahead of it.
	if len(b.pending[id]) != 0 {
		return nil, nil
	}
	if !b.canGrant(id, kind) {
		return nil, nil
	}
	hit := b.resident(id)
	lock, bytes := b.grant(id, kind, fill)
	if hit {
		b.hits++
	}
	return lock, bytes
}

// RequestLock enqueues a request for kind on id. If it (and any requests
// ahead of it) can be granted immediately, the grant is delivered
// synchronously before RequestLock returns — but always through reply,
// never as a direct return value, so callers always have a single code
// path. The send to reply is non-blocking: an abandoned reply channel
// (nobody left to receive) is treated as an immediate release rather than
// wedging the buffer.
func (b *Buffer) RequestLock(id pagefile.PageID, kind LockKind, fill func([]byte), reply chan<- *PageLock) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.drainReleases()

	b.pending[id] = append(b.pending[id], &pendingReq{kind: kind, fill: fill, reply: reply})
	b.tryGrantPending(id)
}

// resident reports whether id currently occupies a slot.
func (b *Buffer) resident(id pagefile.PageID) bool {
	_, ok := b.pageMap[id]
	return ok
}

// slotAvailableForLoad reports whether a miss on id could be satisfied:
// either a free slot exists, or an LRU eviction candidate exists.
func (b *Buffer) slotAvailableForLoad() bool {
	return len(b.free) > 0 || !b.lru.empty()
}

// canGrant decides whether kind can be granted on id right now, given the
// current reader/writer counts and residency. Because requests are always
// processed in strict FIFO order per page (never skipping a queued entry),
// fairness — a pending write blocks later reads from jumping the queue —
// falls out of that ordering and needs no separate check here.
func (b *Buffer) canGrant(id pagefile.PageID, kind LockKind) bool {
	if b.writerCount[id] != 0 {
		return false
	}
	switch kind {
	case ReadLock:
		return b.resident(id) || b.slotAvailableForLoad()
	case WriteLock:
		if b.readerCount[id] != 0 {
			return false
		}
		return b.resident(id) || b.slotAvailableForLoad()
	default:
		return false
	}
}

// grant performs the slot selection (on miss), reference-count increment,
// and lock construction for an already-approved request.
func (b *Buffer) grant(id pagefile.PageID, kind LockKind, fill func([]byte)) (*PageLock, []byte) {
	slot, isMiss := b.acquireSlot(id)
	bytes := b.slotBytes(slot)
	if isMiss {
		b.misses++
		log.Printf("buffer: miss loading page %v into slot %d (%s)", id, slot, humanize.Bytes(uint64(len(bytes))))
		if fill != nil {
			fill(bytes)
		}
	}
	// The page is transitioning out of IDLE_CACHED (if it was there) into
	// LOCKED; it must not remain in the LRU while referenced.
	b.lru.remove(id)

	switch kind {
	case ReadLock:
		b.readerCount[id]++
	case WriteLock:
		b.writerCount[id] = 1
	}
	return &PageLock{buf: b, id: id, kind: kind, slot: slot}, bytes
}

// acquireSlot returns the slot for id, allocating and possibly evicting on
// miss. The second return value reports whether this was a miss.
func (b *Buffer) acquireSlot(id pagefile.PageID) (int, bool) {
	if slot, ok := b.pageMap[id]; ok {
		return slot, false
	}
	var slot int
	if n := len(b.free); n > 0 {
		slot = b.free[n-1]
		b.free = b.free[:n-1]
	} else {
		evicted, s, ok := b.lru.popFront()
		if !ok {
			panic("soupdb/buffer: acquireSlot called with no slot available; caller must check slotAvailableForLoad first")
		}
		delete(b.pageMap, evicted)
		b.evictions++
		log.Printf("buffer: evicted page %v from slot %d (%s) to load page %v", evicted, s, humanize.Bytes(uint64(len(b.slotBytes(s)))), id)
		slot = s
	}
	b.pageMap[id] = slot
	return slot, true
}

// tryGrantPending drains id's pending queue from the head for as long as
// grants succeed, delivering each grant through its request's reply
// channel.
func (b *Buffer) tryGrantPending(id pagefile.PageID) {
	q := b.pending[id]
	for len(q) > 0 {
		head := q[0]
		if !b.canGrant(id, head.kind) {
			break
		}
		q = q[1:]
		b.pending[id] = q
		lock, _ := b.grant(id, head.kind, head.fill)
		select {
		case head.reply <- lock:
		default:
			// Abandoned reply channel: treat as an immediate release
			// rather than leaking the reference or blocking the buffer.
			// The release re-attempts the rest of the queue itself, so
			// pick up whatever it left behind.
			b.releaseLocked(releaseMsg{id: id, kind: head.kind})
			q = b.pending[id]
		}
	}
	if len(q) == 0 {
		delete(b.pending, id)
	} else {
		b.pending[id] = q
	}
}

// drainReleases processes every pending release message without blocking.
// Called at the top of every public entry point.
func (b *Buffer) drainReleases() {
	for {
		select {
		case msg := <-b.release:
			b.releaseLocked(msg)
		default:
			return
		}
	}
}

// releaseLocked applies one release message: decrements the relevant
// counter and, if both counters reach zero, re-enters the page into the LRU
// and re-attempts its pending queue. Must be called with mu held.
func (b *Buffer) releaseLocked(msg releaseMsg) {
	switch msg.kind {
	case ReadLock:
		if b.readerCount[msg.id] > 0 {
			b.readerCount[msg.id]--
		}
		if b.readerCount[msg.id] == 0 {
			delete(b.readerCount, msg.id)
		}
	case WriteLock:
		b.writerCount[msg.id] = 0
		delete(b.writerCount, msg.id)
	}
	if b.readerCount[msg.id] == 0 && b.writerCount[msg.id] == 0 {
		if slot, ok := b.pageMap[msg.id]; ok {
			b.lru.pushBack(msg.id, slot)
		}
		b.tryGrantPending(msg.id)
	}
}

// Stats reports simple hit/miss/eviction counters for diagnostics.
type Stats struct {
	Hits, Misses, Evictions uint64
}

func (b *Buffer) StatsSnapshot() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{Hits: b.hits, Misses: b.misses, Evictions: b.evictions}
}
