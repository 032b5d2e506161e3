// Package lookahead precomputes future-reference information over a fully
// materialized trace, which is what makes Belady's optimal replacement
// policy computable during simulation.
package lookahead

import (
	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/workload"
)

// Geometry describes how one cache level maps addresses to (set, tag).
type Geometry struct {
	NumSets   int
	BlockSize int
}

func (g Geometry) decompose(addr uint64) (setID int, tag uint64) {
	block := addr / uint64(g.BlockSize)
	setID = int(block % uint64(g.NumSets))
	tag = block / uint64(g.NumSets)

	return setID, tag
}

// tagQueue is a FIFO of trace positions. Positions are appended in trace
// order at build time and popped from the front as the simulation advances.
type tagQueue struct {
	positions []int
	head      int
}

func (q *tagQueue) push(pos int) {
	q.positions = append(q.positions, pos)
}

func (q *tagQueue) peek() (int, bool) {
	if q.head >= len(q.positions) {
		return 0, false
	}

	return q.positions[q.head], true
}

func (q *tagQueue) pop() {
	q.head++
}

type levelIndex struct {
	geom Geometry
	sets []map[uint64]*tagQueue
}

// An Index holds, per level, per set, per tag, the ordered queue of future
// trace positions at which that tag is accessed. Queues are scoped per tag
// so that next-use queries over one set's resident tags stay cheap.
type Index struct {
	levels []levelIndex
}

// Build scans the trace once and records, for every position, the (set, tag)
// pair it touches at each level geometry.
func Build(trace workload.Trace, geoms []Geometry) *Index {
	ix := &Index{levels: make([]levelIndex, len(geoms))}

	for i, geom := range geoms {
		ix.levels[i] = levelIndex{
			geom: geom,
			sets: make([]map[uint64]*tagQueue, geom.NumSets),
		}

		for s := range ix.levels[i].sets {
			ix.levels[i].sets[s] = make(map[uint64]*tagQueue)
		}
	}

	for pos, access := range trace {
		for i := range ix.levels {
			level := &ix.levels[i]
			setID, tag := level.geom.decompose(access.Address)

			queue, ok := level.sets[setID][tag]
			if !ok {
				queue = &tagQueue{}
				level.sets[setID][tag] = queue
			}

			queue.push(pos)
		}
	}

	return ix
}

// NumLevels returns the number of level geometries indexed.
func (ix *Index) NumLevels() int {
	return len(ix.levels)
}

// Advance consumes the occurrence of the access at pos from the queue it
// heads at the given level, so that subsequent next-use queries only ever
// see strictly-future positions. It must be called for every level before
// the access at pos is simulated.
func (ix *Index) Advance(level int, addr uint64, pos int) {
	li := &ix.levels[level]
	setID, tag := li.geom.decompose(addr)

	queue, ok := li.sets[setID][tag]
	if !ok {
		return
	}

	if front, ok := queue.peek(); ok && front == pos {
		queue.pop()
	}
}

// NextUse peeks the next future position at which the tag is accessed in the
// given level and set, or reports ok=false if the tag is never accessed
// again under that level's mapping.
func (ix *Index) NextUse(level, setID int, tag uint64) (int, bool) {
	queue, ok := ix.levels[level].sets[setID][tag]
	if !ok {
		return 0, false
	}

	return queue.peek()
}

// Provider returns a next-use provider bound to one level.
func (ix *Index) Provider(level int) cache.NextUseProvider {
	return func(setID int, tag uint64) (int, bool) {
		return ix.NextUse(level, setID, tag)
	}
}

// Never is the provider for levels whose policy does not consult future
// references. It is well-defined but always answers "never accessed again".
func Never(_ int, _ uint64) (int, bool) {
	return 0, false
}
