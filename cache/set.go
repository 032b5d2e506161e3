package cache

import "fmt"

// A Line is the bookkeeping associated with one block resident in a set.
type Line struct {
	Tag        uint64
	Valid      bool
	Dirty      bool
	LastUsed   int
	InsertedAt int
}

// lineNode wraps a line as a member of the set's two intrusive orders. The
// recency order has the least-recently-used line at the head; the insertion
// order has the earliest-inserted line at the head.
type lineNode struct {
	line Line

	recPrev, recNext *lineNode
	insPrev, insNext *lineNode
}

// A Set is a fixed-capacity associative container of lines within one level.
// It maps tags to lines and keeps the recency and insertion orders consistent
// with the mapping. The number of resident lines never exceeds the capacity.
type Set struct {
	capacity int
	lines    map[uint64]*lineNode

	// Sentinel nodes. recHead.recNext is the LRU line, insHead.insNext the
	// oldest line.
	recHead, recTail *lineNode
	insHead, insTail *lineNode
}

// NewSet creates an empty set with capacity lines.
func NewSet(capacity int) *Set {
	if capacity < 1 {
		panic(fmt.Sprintf("set capacity must be positive, got %d", capacity))
	}

	s := &Set{
		capacity: capacity,
		lines:    make(map[uint64]*lineNode, capacity),
		recHead:  &lineNode{},
		recTail:  &lineNode{},
		insHead:  &lineNode{},
		insTail:  &lineNode{},
	}

	s.recHead.recNext = s.recTail
	s.recTail.recPrev = s.recHead
	s.insHead.insNext = s.insTail
	s.insTail.insPrev = s.insHead

	return s
}

// Capacity returns the associativity of the set.
func (s *Set) Capacity() int {
	return s.capacity
}

// Size returns the number of resident lines.
func (s *Set) Size() int {
	return len(s.lines)
}

// Probe reports whether the tag is resident.
func (s *Set) Probe(tag uint64) bool {
	_, ok := s.lines[tag]
	return ok
}

// Lookup returns a copy of the resident line for the tag.
func (s *Set) Lookup(tag uint64) (Line, bool) {
	node, ok := s.lines[tag]
	if !ok {
		return Line{}, false
	}

	return node.line, true
}

// RecordHit updates a resident line after a hit. The line becomes the
// most-recently-used one and turns dirty on a write. Insertion order is
// untouched, so FIFO victim selection never reorders on hits.
func (s *Set) RecordHit(tag uint64, tick int, isWrite bool) {
	node, ok := s.lines[tag]
	if !ok {
		panic(fmt.Sprintf("recording hit on absent tag %d", tag))
	}

	node.line.LastUsed = tick
	if isWrite {
		node.line.Dirty = true
	}

	s.recUnlink(node)
	s.recPushBack(node)
}

// Insert fills a new line for the tag. The set must not be at capacity; the
// caller evicts a victim first when it is. The new line is the
// most-recently-used and the newest-inserted one.
func (s *Set) Insert(tag uint64, tick int, dirty bool) {
	if _, ok := s.lines[tag]; ok {
		panic(fmt.Sprintf("inserting already resident tag %d", tag))
	}

	if len(s.lines) >= s.capacity {
		panic("inserting into a full set")
	}

	node := &lineNode{
		line: Line{
			Tag:        tag,
			Valid:      true,
			Dirty:      dirty,
			LastUsed:   tick,
			InsertedAt: tick,
		},
	}

	s.lines[tag] = node
	s.recPushBack(node)
	s.insPushBack(node)
}

// Evict removes the line for the tag, purging it from both orders, and
// reports whether the evicted line was dirty.
func (s *Set) Evict(tag uint64) (dirty bool) {
	node, ok := s.lines[tag]
	if !ok {
		panic(fmt.Sprintf("evicting absent tag %d", tag))
	}

	delete(s.lines, tag)
	s.recUnlink(node)
	s.insUnlink(node)

	return node.line.Dirty
}

// leastRecentTag returns the tag at the head of the recency order.
func (s *Set) leastRecentTag() uint64 {
	return s.recHead.recNext.line.Tag
}

// oldestTag returns the tag at the head of the insertion order.
func (s *Set) oldestTag() uint64 {
	return s.insHead.insNext.line.Tag
}

// forEachTagInInsertionOrder enumerates resident tags deterministically,
// oldest first.
func (s *Set) forEachTagInInsertionOrder(f func(tag uint64)) {
	for node := s.insHead.insNext; node != s.insTail; node = node.insNext {
		f(node.line.Tag)
	}
}

func (s *Set) recPushBack(node *lineNode) {
	node.recPrev = s.recTail.recPrev
	node.recNext = s.recTail
	node.recPrev.recNext = node
	s.recTail.recPrev = node
}

func (s *Set) recUnlink(node *lineNode) {
	node.recPrev.recNext = node.recNext
	node.recNext.recPrev = node.recPrev
	node.recPrev, node.recNext = nil, nil
}

func (s *Set) insPushBack(node *lineNode) {
	node.insPrev = s.insTail.insPrev
	node.insNext = s.insTail
	node.insPrev.insNext = node
	s.insTail.insPrev = node
}

func (s *Set) insUnlink(node *lineNode) {
	node.insPrev.insNext = node.insNext
	node.insNext.insPrev = node.insPrev
	node.insPrev, node.insNext = nil, nil
}
