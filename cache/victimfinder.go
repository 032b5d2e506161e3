package cache

import "fmt"

// A NextUseFunc answers when a resident tag is accessed next. It returns the
// trace position of the next access, or ok=false if the tag is never accessed
// again.
type NextUseFunc func(tag uint64) (pos int, ok bool)

// A NextUseProvider answers next-use queries for every set of one level. It
// must be bound to a specific level, since the same tag maps differently and
// has a different future in every level.
type NextUseProvider func(setID int, tag uint64) (pos int, ok bool)

// A VictimFinder decides which line should be evicted from a set.
type VictimFinder interface {
	// FindVictim returns the tag to evict. It returns ok=false when the set
	// still has room, in which case no eviction is needed.
	FindVictim(set *Set, nextUse NextUseFunc) (tag uint64, ok bool)
}

// NewVictimFinder returns the victim finder for a policy.
func NewVictimFinder(policy Policy) VictimFinder {
	switch policy {
	case LRU:
		return &LRUVictimFinder{}
	case FIFO:
		return &FIFOVictimFinder{}
	case OPT:
		return &OPTVictimFinder{}
	}

	panic(fmt.Sprintf("no victim finder for policy %s", policy))
}

// LRUVictimFinder evicts the least-recently-used line.
type LRUVictimFinder struct{}

// NewLRUVictimFinder returns a newly constructed LRU evictor.
func NewLRUVictimFinder() *LRUVictimFinder {
	return &LRUVictimFinder{}
}

// FindVictim returns the least-recently-used tag in the set.
func (e *LRUVictimFinder) FindVictim(
	set *Set,
	_ NextUseFunc,
) (uint64, bool) {
	if set.Size() < set.Capacity() {
		return 0, false
	}

	return set.leastRecentTag(), true
}

// FIFOVictimFinder evicts the earliest-inserted line.
type FIFOVictimFinder struct{}

// NewFIFOVictimFinder returns a newly constructed FIFO evictor.
func NewFIFOVictimFinder() *FIFOVictimFinder {
	return &FIFOVictimFinder{}
}

// FindVictim returns the earliest-inserted still-resident tag in the set.
func (e *FIFOVictimFinder) FindVictim(
	set *Set,
	_ NextUseFunc,
) (uint64, bool) {
	if set.Size() < set.Capacity() {
		return 0, false
	}

	return set.oldestTag(), true
}

// OPTVictimFinder implements Belady's optimal policy. It evicts the line
// whose next use is farthest in the future. A line that is never used again
// is infinitely far and always preferred over lines with a known future use.
type OPTVictimFinder struct{}

// NewOPTVictimFinder returns a newly constructed Belady evictor.
func NewOPTVictimFinder() *OPTVictimFinder {
	return &OPTVictimFinder{}
}

// FindVictim returns the tag with the farthest next use. Ties break on the
// set's insertion-order enumeration, which is deterministic but carries no
// semantic meaning.
func (e *OPTVictimFinder) FindVictim(
	set *Set,
	nextUse NextUseFunc,
) (uint64, bool) {
	if set.Size() < set.Capacity() {
		return 0, false
	}

	var victim uint64
	found := false
	neverUsed := false
	farthest := -1

	set.forEachTagInInsertionOrder(func(tag uint64) {
		if neverUsed {
			return
		}

		pos, used := nextUse(tag)
		if !used {
			victim = tag
			found = true
			neverUsed = true
			return
		}

		if pos > farthest {
			farthest = pos
			victim = tag
			found = true
		}
	})

	return victim, found
}
