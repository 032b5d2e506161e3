package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/monitoring"
	"github.com/sarchlab/cachesim/simulation"
	"github.com/sarchlab/cachesim/workload"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation, or an L1 policy sweep with --sweep.",
	Run:   runExperiments,
}

func init() {
	rootCmd.AddCommand(runCmd)

	addConfigFlags(runCmd)
	runCmd.Flags().Bool("sweep", false,
		"Sweep the L1 policy over LRU, FIFO, and OPT, keeping L2 fixed")
}

// addConfigFlags registers the flags shared by run and sweep that describe
// the hierarchy and the workload.
func addConfigFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.Int("levels", 2, "Number of cache levels (1 or 2)")
	flags.String("l1-policy", "LRU", "L1 replacement policy (LRU, FIFO, OPT)")
	flags.String("l2-policy", "LRU", "L2 replacement policy (LRU, FIFO, OPT)")
	flags.Int("l1-size-kb", 32, "L1 size in KB")
	flags.Int("l2-size-kb", 256, "L2 size in KB")
	flags.Int("l1-assoc", 8, "L1 associativity")
	flags.Int("l2-assoc", 8, "L2 associativity")
	flags.Int("l1-latency-ns", 4, "L1 lookup latency in ns")
	flags.Int("l2-latency-ns", 12, "L2 lookup latency in ns")
	flags.Int("mem-latency-ns", 100, "Terminal memory latency in ns")
	flags.Int("block-size", 64, "Cache block size in bytes")
	flags.Bool("inclusive", true, "Mark the hierarchy inclusive (recorded, "+
		"no invalidation is modeled)")
	flags.Int("n", 10000, "Number of accesses in the trace")
	flags.Int("address-space-kb", 1024, "Address space size in KB")
	flags.Float64("seq-frac", 0.5, "Fraction of sequential-burst draws")
	flags.Float64("hot-frac", 0.3, "Fraction of hot-region draws")
	flags.Float64("write-ratio", 0.1, "Probability that an access writes")
	flags.Int64("seed", 42, "Trace generator seed")
	flags.String("outdir", envOrDefault("CACHESIM_OUTDIR", "outputs"),
		"Output directory for the recording database")
	flags.Bool("monitor", false, "Serve run progress over HTTP")
	flags.Int("monitor-port", 0, "Port of the monitoring server")
}

func runExperiments(cmd *cobra.Command, _ []string) {
	config, err := configFromFlags(cmd)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	outdir := mustGetString(cmd, "outdir")
	recorder, _ := openRecorder(outdir)
	defer recorder.Close()

	monitor := startMonitor(cmd)

	sweep, _ := cmd.Flags().GetBool("sweep")
	if !sweep {
		runOne(config, recorder, monitor)
		return
	}

	for _, name := range []string{"LRU", "FIFO", "OPT"} {
		policy, err := cache.ParsePolicy(name)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}

		config.Levels[0].Policy = policy
		runOne(config, recorder, monitor)
	}
}

func runOne(
	config simulation.Config,
	recorder datarecording.DataRecorder,
	monitor *monitoring.Monitor,
) simulation.RunResult {
	s := simulation.MakeBuilder().
		WithConfig(config).
		WithDataRecorder(recorder).
		WithMonitor(monitor).
		Build()

	result := s.Run()

	fmt.Printf("run %s: policies=%s amat=%.3f ns, mpki=%.1f\n",
		result.RunID, result.Policies, result.AMATNs, result.MPKI)

	return result
}

// configFromFlags assembles and validates the base configuration.
func configFromFlags(cmd *cobra.Command) (simulation.Config, error) {
	numLevels := mustGetInt(cmd, "levels")
	if numLevels < 1 || numLevels > 2 {
		return simulation.Config{},
			fmt.Errorf("the CLI supports 1 or 2 levels, got %d", numLevels)
	}

	blockSize := mustGetInt(cmd, "block-size")

	l1Policy, err := cache.ParsePolicy(mustGetString(cmd, "l1-policy"))
	if err != nil {
		return simulation.Config{}, err
	}

	levels := []simulation.LevelConfig{{
		SizeKB:    mustGetInt(cmd, "l1-size-kb"),
		Assoc:     mustGetInt(cmd, "l1-assoc"),
		LatencyNs: mustGetInt(cmd, "l1-latency-ns"),
		BlockSize: blockSize,
		Policy:    l1Policy,
	}}

	if numLevels >= 2 {
		l2Policy, err := cache.ParsePolicy(mustGetString(cmd, "l2-policy"))
		if err != nil {
			return simulation.Config{}, err
		}

		levels = append(levels, simulation.LevelConfig{
			SizeKB:    mustGetInt(cmd, "l2-size-kb"),
			Assoc:     mustGetInt(cmd, "l2-assoc"),
			LatencyNs: mustGetInt(cmd, "l2-latency-ns"),
			BlockSize: blockSize,
			Policy:    l2Policy,
		})
	}

	seed, _ := cmd.Flags().GetInt64("seed")

	config := simulation.Config{
		Levels:          levels,
		MemoryLatencyNs: mustGetInt(cmd, "mem-latency-ns"),
		Inclusive:       mustGetBool(cmd, "inclusive"),
		Workload: workload.Params{
			N:              mustGetInt(cmd, "n"),
			AddressSpaceKB: mustGetInt(cmd, "address-space-kb"),
			BlockSize:      blockSize,
			SeqFrac:        mustGetFloat64(cmd, "seq-frac"),
			HotFrac:        mustGetFloat64(cmd, "hot-frac"),
			WriteRatio:     mustGetFloat64(cmd, "write-ratio"),
			Seed:           seed,
		},
	}

	return config, config.Validate()
}

// openRecorder creates a fresh recording database under outdir, replacing
// any database a previous invocation left there.
func openRecorder(outdir string) (datarecording.DataRecorder, string) {
	if err := os.MkdirAll(outdir, 0755); err != nil {
		log.Fatalf("Error creating output directory: %v", err)
	}

	dbPath := filepath.Join(outdir, "cachesim")
	_ = os.Remove(dbPath + ".sqlite3")

	return datarecording.NewRecorder(dbPath), dbPath
}

func startMonitor(cmd *cobra.Command) *monitoring.Monitor {
	if !mustGetBool(cmd, "monitor") {
		return nil
	}

	monitor := monitoring.NewMonitor()
	if port := mustGetInt(cmd, "monitor-port"); port > 0 {
		monitor.WithPortNumber(port)
	}

	monitor.StartServer()

	return monitor
}

func mustGetInt(cmd *cobra.Command, name string) int {
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(err)
	}

	return value
}

func mustGetString(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(err)
	}

	return value
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(err)
	}

	return value
}

func mustGetFloat64(cmd *cobra.Command, name string) float64 {
	value, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		panic(err)
	}

	return value
}
