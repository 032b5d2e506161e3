package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/datarecording"
	"github.com/sarchlab/cachesim/simulation"
)

var sweepCmd = &cobra.Command{
	Use:       "sweep <policies|assoc|blocks|workload>",
	Short:     "Run a one-dimensional sweep and summarize KPI deltas.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"policies", "assoc", "blocks", "workload"},
	Run:       runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	addConfigFlags(sweepCmd)

	flags := sweepCmd.Flags()
	flags.IntSlice("assoc-values", []int{2, 4, 8, 16},
		"L1 associativities for the assoc sweep")
	flags.IntSlice("block-size-values", []int{32, 64, 128},
		"Block sizes for the blocks sweep")
	flags.Float64Slice("seq-frac-values", []float64{0.2, 0.5, 0.8},
		"Sequential fractions for the workload sweep")
	flags.Float64Slice("hot-frac-values", []float64{0.1, 0.3},
		"Hot-region fractions for the workload sweep")
}

func runSweep(cmd *cobra.Command, args []string) {
	config, err := configFromFlags(cmd)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	outdir := mustGetString(cmd, "outdir")
	recorder, dbPath := openRecorder(outdir)
	monitor := startMonitor(cmd)

	switch args[0] {
	case "policies":
		for _, name := range []string{"LRU", "FIFO", "OPT"} {
			policy, _ := cache.ParsePolicy(name)
			config.Levels[0].Policy = policy
			runOne(config, recorder, monitor)
		}

	case "assoc":
		values, _ := cmd.Flags().GetIntSlice("assoc-values")
		for _, assoc := range values {
			config.Levels[0].Assoc = assoc
			runOne(config, recorder, monitor)
		}

	case "blocks":
		values, _ := cmd.Flags().GetIntSlice("block-size-values")
		for _, blockSize := range values {
			for i := range config.Levels {
				config.Levels[i].BlockSize = blockSize
			}
			config.Workload.BlockSize = blockSize
			runOne(config, recorder, monitor)
		}

	case "workload":
		seqValues, _ := cmd.Flags().GetFloat64Slice("seq-frac-values")
		hotValues, _ := cmd.Flags().GetFloat64Slice("hot-frac-values")

		for _, seqFrac := range seqValues {
			for _, hotFrac := range hotValues {
				config.Workload.SeqFrac = seqFrac
				config.Workload.HotFrac = hotFrac

				if err := config.Validate(); err != nil {
					log.Fatalf("Error: %v", err)
				}

				runOne(config, recorder, monitor)
			}
		}
	}

	recorder.Close()
	writeSummary(outdir, dbPath)
}

// writeSummary reads the results back and reports the AMAT and MPKI deltas
// of every run against the first run as baseline.
func writeSummary(outdir, dbPath string) {
	reader := datarecording.NewReader(dbPath)
	defer reader.Close()

	reader.MapTable(simulation.RunResultsTable, simulation.RunResult{})

	rows, err := reader.Query(
		context.Background(),
		simulation.RunResultsTable,
		datarecording.QueryParams{OrderBy: "rowid"},
	)
	if err != nil {
		log.Fatalf("Error reading results back: %v", err)
	}

	if len(rows) < 2 {
		return
	}

	base := rows[0].(simulation.RunResult)
	lines := []string{"KPI deltas vs baseline: " + base.RunID}

	for _, row := range rows {
		result := row.(simulation.RunResult)
		lines = append(lines, fmt.Sprintf(
			"- %s: delta_amat=%.3f ns, delta_mpki=%.1f",
			result.RunID,
			result.AMATNs-base.AMATNs,
			result.MPKI-base.MPKI,
		))
	}

	summaryPath := filepath.Join(outdir, "summary.txt")
	err = os.WriteFile(summaryPath,
		[]byte(strings.Join(lines, "\n")+"\n"), 0644)
	if err != nil {
		log.Fatalf("Error writing summary: %v", err)
	}

	fmt.Printf("Summary written to %s\n", summaryPath)
}
