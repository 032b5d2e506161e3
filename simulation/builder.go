package simulation

import (
	"fmt"
	"slices"

	"github.com/rs/xid"
	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/workload"
)

// Builder can be used to build a simulation.
type Builder struct {
	config         Config
	trace          workload.Trace
	recorder       datarecording.DataRecorder
	monitor        *monitoring.Monitor
	outputFileName string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithConfig sets the configuration of the run.
func (b Builder) WithConfig(config Config) Builder {
	b.config = config
	return b
}

// WithTrace injects a pre-materialized trace, bypassing the synthetic
// generator. The trace generator is used when no trace is injected.
func (b Builder) WithTrace(trace workload.Trace) Builder {
	b.trace = trace
	return b
}

// WithDataRecorder sets the sink that events and results are emitted to.
// Without a recorder and without an output file name, the run is simulated
// but nothing is recorded.
func (b Builder) WithDataRecorder(recorder datarecording.DataRecorder) Builder {
	b.recorder = recorder
	return b
}

// WithMonitor attaches a monitor that tracks run progress.
func (b Builder) WithMonitor(monitor *monitoring.Monitor) Builder {
	b.monitor = monitor
	return b
}

// WithOutputFileName sets the database file a new recorder is created at.
// It is ignored when a recorder is set explicitly.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// Build builds the simulation. Configurations that fail validation panic
// here, before any simulation state exists.
func (b Builder) Build() *Simulation {
	if err := b.config.Validate(); err != nil {
		panic(fmt.Errorf("invalid configuration: %w", err))
	}

	levels := make([]*cache.Level, len(b.config.Levels))
	for i, lc := range b.config.Levels {
		levels[i] = cache.NewLevel(
			fmt.Sprintf("L%d", i+1),
			lc.SizeKB,
			lc.Assoc,
			lc.BlockSize,
			lc.LatencyNs,
			lc.Policy,
		)
	}

	s := &Simulation{
		id:     xid.New().String(),
		config: b.config,
		trace:  b.trace,
		hierarchy: cache.NewHierarchy(
			levels,
			cache.NewMemory(b.config.MemoryLatencyNs),
			b.config.Inclusive,
		),
		recorder: b.recorder,
		monitor:  b.monitor,
	}

	if s.recorder == nil && b.outputFileName != "" {
		s.recorder = datarecording.NewRecorder(b.outputFileName)
	}

	if s.recorder != nil {
		ensureTables(s.recorder)
	}

	return s
}

// ensureTables creates the recording tables once. Sweeps share one recorder
// across runs, so later builds find the tables already present.
func ensureTables(recorder datarecording.DataRecorder) {
	existing := recorder.ListTables()

	if !slices.Contains(existing, TraceEventsTable) {
		recorder.CreateTable(TraceEventsTable, TraceEvent{})
	}

	if !slices.Contains(existing, RunResultsTable) {
		recorder.CreateTable(RunResultsTable, RunResult{})
	}
}
