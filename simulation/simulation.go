// Package simulation drives trace replay through a cache hierarchy and
// aggregates the run's metrics.
package simulation

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/lookahead"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/workload"
)

// A Simulation replays one trace through one hierarchy. Build simulations
// with a Builder; every simulation carries a unique run ID.
type Simulation struct {
	id     string
	config Config

	hierarchy *cache.Hierarchy
	trace     workload.Trace

	recorder datarecording.DataRecorder
	monitor  *monitoring.Monitor
}

// ID returns the unique run identifier.
func (s *Simulation) ID() string {
	return s.id
}

// Config returns the configuration of the run.
func (s *Simulation) Config() Config {
	return s.config
}

// Hierarchy returns the cache hierarchy the run drives.
func (s *Simulation) Hierarchy() *cache.Hierarchy {
	return s.hierarchy
}

// Run replays the whole trace, one access at a time, and returns the
// aggregated result. When a recorder is attached, one event per access and
// one result per run are emitted to it.
func (s *Simulation) Run() RunResult {
	trace := s.trace
	if trace == nil {
		trace = workload.NewGenerator(s.config.Workload).Generate()
	}

	levels := s.hierarchy.Levels()
	index := lookahead.Build(trace, geometries(levels))
	providers := s.bindProviders(index, levels)
	policies := joinedPolicies(levels)

	var bar *monitoring.ProgressBar
	if s.monitor != nil {
		bar = s.monitor.CreateProgressBar("run "+s.id, uint64(len(trace)))
		defer s.monitor.CompleteProgressBar(bar)
	}

	totalLatencyNs := 0
	overallHits := 0

	for _, access := range trace {
		// Consume this access's own occurrence from every level's queue
		// before simulating it, so next-use queries during the access only
		// see strictly-future positions.
		for li := range levels {
			index.Advance(li, access.Address, access.ID)
		}

		result := s.hierarchy.Access(
			access.Address,
			access.Op == workload.Write,
			access.ID,
			providers,
		)

		totalLatencyNs += result.LatencyNs
		if result.HitLevel != cache.MemoryLevelName {
			overallHits++
		}

		if s.recorder != nil {
			s.recorder.InsertData(
				TraceEventsTable,
				s.newTraceEvent(access, result, policies))
		}

		if bar != nil {
			bar.IncrementFinished(1)
		}
	}

	runResult := s.aggregate(len(trace), totalLatencyNs, overallHits, policies)

	if s.recorder != nil {
		s.recorder.InsertData(RunResultsTable, runResult)
		s.recorder.Flush()
	}

	return runResult
}

// bindProviders binds one next-use provider per level. Only OPT levels query
// the lookahead index; the other policies get a well-defined provider that
// always answers "never", since their victim selection does not consult it.
func (s *Simulation) bindProviders(
	index *lookahead.Index,
	levels []*cache.Level,
) []cache.NextUseProvider {
	providers := make([]cache.NextUseProvider, len(levels))

	for i, level := range levels {
		if level.Policy() == cache.OPT {
			providers[i] = index.Provider(i)
		} else {
			providers[i] = lookahead.Never
		}
	}

	return providers
}

func (s *Simulation) newTraceEvent(
	access workload.Access,
	result cache.HierarchyResult,
	policies string,
) TraceEvent {
	levels := s.hierarchy.Levels()

	hits := make([]string, len(levels))
	setIDs := make([]string, len(levels))
	writebacks := make([]string, len(levels))

	for i, level := range levels {
		hits[i] = "0"
		if result.HitLevel == level.Name() {
			hits[i] = "1"
		}

		if i < len(result.Steps) {
			step := result.Steps[i]
			setIDs[i] = strconv.Itoa(step.SetID)
			writebacks[i] = "0"
			if step.Writeback {
				writebacks[i] = "1"
			}
		} else {
			setIDs[i] = "-"
			writebacks[i] = "-"
		}
	}

	return TraceEvent{
		RunID:          s.id,
		AccessID:       access.ID,
		Op:             access.Op.String(),
		Address:        access.Address,
		BlockAddr:      access.Address / uint64(levels[0].BlockSize()),
		Policies:       policies,
		HitLevel:       result.HitLevel,
		TotalLatencyNs: result.LatencyNs,
		LevelHits:      strings.Join(hits, levelFieldSeparator),
		SetIDs:         strings.Join(setIDs, levelFieldSeparator),
		Writebacks:     strings.Join(writebacks, levelFieldSeparator),
	}
}

func (s *Simulation) aggregate(
	nAccesses, totalLatencyNs, overallHits int,
	policies string,
) RunResult {
	levels := s.hierarchy.Levels()

	hitRates := make([]string, len(levels))
	evictions := make([]string, len(levels))
	writebacks := make([]string, len(levels))

	for i, level := range levels {
		stats := level.Stats()

		rate := 0.0
		if nAccesses > 0 {
			rate = float64(stats.Hits) / float64(nAccesses)
		}

		hitRates[i] = strconv.FormatFloat(rate, 'g', -1, 64)
		evictions[i] = strconv.FormatUint(stats.Evictions, 10)
		writebacks[i] = strconv.FormatUint(stats.Writebacks, 10)
	}

	// Zero accesses is a valid degenerate run; every rate is 0, not NaN.
	amat := 0.0
	mpki := 0.0
	overallHitRate := 0.0

	if nAccesses > 0 {
		amat = float64(totalLatencyNs) / float64(nAccesses)
		mpki = float64(nAccesses-overallHits) / (float64(nAccesses) / 1000.0)
		overallHitRate = float64(overallHits) / float64(nAccesses)
	}

	configJSON, err := json.Marshal(s.config)
	if err != nil {
		panic(err)
	}

	return RunResult{
		RunID:          s.id,
		NAccesses:      nAccesses,
		Policies:       policies,
		LevelHitRates:  strings.Join(hitRates, levelFieldSeparator),
		OverallHitRate: overallHitRate,
		AMATNs:         amat,
		MPKI:           mpki,
		Evictions:      strings.Join(evictions, levelFieldSeparator),
		Writebacks:     strings.Join(writebacks, levelFieldSeparator),
		ConfigJSON:     string(configJSON),
	}
}

func geometries(levels []*cache.Level) []lookahead.Geometry {
	geoms := make([]lookahead.Geometry, len(levels))
	for i, level := range levels {
		geoms[i] = lookahead.Geometry{
			NumSets:   level.NumSets(),
			BlockSize: level.BlockSize(),
		}
	}

	return geoms
}

func joinedPolicies(levels []*cache.Level) string {
	names := make([]string, len(levels))
	for i, level := range levels {
		names[i] = level.Policy().String()
	}

	return strings.Join(names, levelFieldSeparator)
}
