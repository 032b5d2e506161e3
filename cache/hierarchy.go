package cache

import "fmt"

// MemoryLevelName is the hit-level name reported when no cache level holds
// the accessed block.
const MemoryLevelName = "Memory"

// Memory is the terminal of a hierarchy. It always hits, holds no state, and
// charges a single latency.
type Memory struct {
	latencyNs int
}

// NewMemory creates the terminal memory with the given latency.
func NewMemory(latencyNs int) *Memory {
	return &Memory{latencyNs: latencyNs}
}

// LatencyNs returns the access latency of the memory.
func (m *Memory) LatencyNs() int {
	return m.latencyNs
}

// A TraversalStep records what one traversed level did for an access.
type TraversalStep struct {
	Level string
	AccessResult
}

// A HierarchyResult describes the full path of one access through the
// hierarchy.
type HierarchyResult struct {
	HitLevel  string
	LatencyNs int
	Steps     []TraversalStep
}

// A Hierarchy routes accesses through an ordered stack of levels backed by a
// terminal memory.
//
// The inclusive flag is carried as configuration and recorded for
// provenance, but no inclusion or exclusion is enforced: levels never
// invalidate each other or cascade evictions. Wiring it up is a separate
// extension, not a bug fix.
type Hierarchy struct {
	levels    []*Level
	memory    *Memory
	inclusive bool
}

// NewHierarchy creates a hierarchy over the given levels and memory.
func NewHierarchy(levels []*Level, memory *Memory, inclusive bool) *Hierarchy {
	if len(levels) == 0 {
		panic("hierarchy requires at least one level")
	}

	return &Hierarchy{
		levels:    levels,
		memory:    memory,
		inclusive: inclusive,
	}
}

// Levels returns the levels of the hierarchy, fastest first.
func (h *Hierarchy) Levels() []*Level {
	return h.levels
}

// Memory returns the terminal memory.
func (h *Hierarchy) Memory() *Memory {
	return h.memory
}

// Inclusive returns the configured inclusivity flag.
func (h *Hierarchy) Inclusive() bool {
	return h.inclusive
}

// Access routes one access through the levels in order, stopping at the
// first hit. The latency of every traversed level is charged serially, even
// when the access hits deeper down; a full miss additionally charges the
// memory latency. Every level that misses performs its own evict-and-fill,
// independent of where the access is ultimately satisfied. One provider must
// be supplied per level, in level order.
func (h *Hierarchy) Access(
	addr uint64,
	isWrite bool,
	tick int,
	providers []NextUseProvider,
) HierarchyResult {
	if len(providers) != len(h.levels) {
		panic(fmt.Sprintf("got %d next-use providers for %d levels",
			len(providers), len(h.levels)))
	}

	result := HierarchyResult{HitLevel: MemoryLevelName}

	for i, level := range h.levels {
		levelResult := level.Access(addr, isWrite, tick, providers[i])

		result.LatencyNs += level.LatencyNs()
		result.Steps = append(result.Steps, TraversalStep{
			Level:        level.Name(),
			AccessResult: levelResult,
		})

		if levelResult.Hit {
			result.HitLevel = level.Name()
			return result
		}
	}

	result.LatencyNs += h.memory.LatencyNs()

	return result
}
