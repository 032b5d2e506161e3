package cache

import "fmt"

// LevelStats are the monotonic per-level counters of one run.
type LevelStats struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// An AccessResult describes what one level did for one access.
type AccessResult struct {
	Hit        bool
	SetID      int
	Tag        uint64
	Evicted    bool
	EvictedTag uint64
	Writeback  bool
}

// A Level partitions the address space into sets and serves accesses against
// them. On a miss it evicts at capacity and always fills the missed block,
// regardless of which deeper level ultimately satisfies the access.
type Level struct {
	name      string
	sizeKB    int
	assoc     int
	blockSize int
	latencyNs int
	policy    Policy

	numSets int
	sets    []*Set
	finder  VictimFinder

	stats LevelStats
}

// NewLevel creates a cache level. All geometry parameters must be positive.
func NewLevel(
	name string,
	sizeKB, assoc, blockSize, latencyNs int,
	policy Policy,
) *Level {
	if sizeKB <= 0 || assoc <= 0 || blockSize <= 0 {
		panic(fmt.Sprintf(
			"level %s geometry must be positive: sizeKB=%d assoc=%d blockSize=%d",
			name, sizeKB, assoc, blockSize))
	}

	numLines := sizeKB * 1024 / blockSize
	numSets := numLines / assoc
	if numSets < 1 {
		numSets = 1
	}

	l := &Level{
		name:      name,
		sizeKB:    sizeKB,
		assoc:     assoc,
		blockSize: blockSize,
		latencyNs: latencyNs,
		policy:    policy,
		numSets:   numSets,
		sets:      make([]*Set, numSets),
		finder:    NewVictimFinder(policy),
	}

	for i := range l.sets {
		l.sets[i] = NewSet(assoc)
	}

	return l
}

// Name returns the level name, e.g. "L1".
func (l *Level) Name() string {
	return l.name
}

// Policy returns the replacement policy of the level.
func (l *Level) Policy() Policy {
	return l.policy
}

// LatencyNs returns the lookup latency of the level.
func (l *Level) LatencyNs() int {
	return l.latencyNs
}

// BlockSize returns the block size of the level in bytes.
func (l *Level) BlockSize() int {
	return l.blockSize
}

// NumSets returns the number of sets of the level.
func (l *Level) NumSets() int {
	return l.numSets
}

// Set returns the set with the given index.
func (l *Level) Set(setID int) *Set {
	return l.sets[setID]
}

// Stats returns a copy of the level counters.
func (l *Level) Stats() LevelStats {
	return l.stats
}

// Decompose splits an address into the set index and tag of this level.
// (setID, tag) uniquely reconstructs the block index for the level geometry.
func (l *Level) Decompose(addr uint64) (setID int, tag uint64) {
	block := addr / uint64(l.blockSize)
	setID = int(block % uint64(l.numSets))
	tag = block / uint64(l.numSets)

	return setID, tag
}

// Access serves one access at this level. On a hit the line turns dirty on a
// write and becomes the most recently used. On a miss a victim is evicted if
// the set is full, then the missed block is filled with write-allocate
// semantics. The provider answers next-use queries for OPT victim selection;
// other policies never consult it.
func (l *Level) Access(
	addr uint64,
	isWrite bool,
	tick int,
	provider NextUseProvider,
) AccessResult {
	setID, tag := l.Decompose(addr)
	set := l.sets[setID]

	result := AccessResult{SetID: setID, Tag: tag}

	if set.Probe(tag) {
		l.stats.Hits++
		set.RecordHit(tag, tick, isWrite)
		result.Hit = true

		return result
	}

	l.stats.Misses++

	nextUse := func(residentTag uint64) (int, bool) {
		return provider(setID, residentTag)
	}

	if victim, ok := l.finder.FindVictim(set, nextUse); ok {
		dirty := set.Evict(victim)
		l.stats.Evictions++
		result.Evicted = true
		result.EvictedTag = victim

		if dirty {
			l.stats.Writebacks++
			result.Writeback = true
		}
	}

	set.Insert(tag, tick, isWrite)

	return result
}
