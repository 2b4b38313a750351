package buffer

import "github.com/soupdb/soupdb/internal/pagefile"

// lruNode is one entry of the LRU set: a page id resident in a slot with
// both reference counts at zero, ordered by release time.
type lruNode struct {
	id         pagefile.PageID
	slot       int
	prev, next *lruNode
}

// lruList is a doubly-linked list of idle-cached pages, oldest at head
// (next eviction candidate), newest at tail (just released). The companion
// map gives O(1) removal of an arbitrary page when it transitions from idle
// back to locked.
type lruList struct {
	head, tail *lruNode
	nodes      map[pagefile.PageID]*lruNode
}

func newLRUList() *lruList {
	return &lruList{nodes: make(map[pagefile.PageID]*lruNode)}
}

func (l *lruList) pushBack(id pagefile.PageID, slot int) {
	n := &lruNode{id: id, slot: slot}
	if l.tail == nil {
		l.head, l.tail = n, n
	} else {
		n.prev = l.tail
		l.tail.next = n
		l.tail = n
	}
	l.nodes[id] = n
}

// popFront removes and returns the least-recently-released page, if any.
func (l *lruList) popFront() (pagefile.PageID, int, bool) {
	if l.head == nil {
		return 0, 0, false
	}
	n := l.head
	l.remove(n.id)
	return n.id, n.slot, true
}

func (l *lruList) remove(id pagefile.PageID) bool {
	n, ok := l.nodes[id]
	if !ok {
		return false
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	delete(l.nodes, id)
	return true
}

func (l *lruList) contains(id pagefile.PageID) bool {
	_, ok := l.nodes[id]
	return ok
}

func (l *lruList) empty() bool { return len(l.nodes) == 0 }

func (l *lruList) len() int { return len(l.nodes) }
