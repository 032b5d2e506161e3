package simulation

// Table names used in the recording database.
const (
	TraceEventsTable = "trace_events"
	RunResultsTable  = "run_results"
)

// levelFieldSeparator joins per-level values into one flat column, so event
// and result rows keep the same shape for any number of levels.
const levelFieldSeparator = "|"

// A TraceEvent is the record emitted for every access. Per-level fields are
// joined with "|" in level order; levels below the hit level, which the
// access never traversed, are reported as "-".
type TraceEvent struct {
	RunID          string
	AccessID       int
	Op             string
	Address        uint64
	BlockAddr      uint64
	Policies       string
	HitLevel       string
	TotalLatencyNs int
	LevelHits      string
	SetIDs         string
	Writebacks     string
}

// A RunResult is the aggregated record emitted once per run. ConfigJSON
// carries the full configuration for provenance.
type RunResult struct {
	RunID          string
	NAccesses      int
	Policies       string
	LevelHitRates  string
	OverallHitRate float64
	AMATNs         float64
	MPKI           float64
	Evictions      string
	Writebacks     string
	ConfigJSON     string
}
