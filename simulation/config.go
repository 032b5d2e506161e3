package simulation

import (
	"fmt"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/workload"
)

// A LevelConfig describes the geometry, latency, and replacement policy of
// one cache level.
type LevelConfig struct {
	SizeKB    int          `json:"size_kb"`
	Assoc     int          `json:"assoc"`
	LatencyNs int          `json:"latency_ns"`
	BlockSize int          `json:"block_size"`
	Policy    cache.Policy `json:"policy"`
}

// A Config fully describes one simulation run. It is static for the run's
// duration and recorded verbatim for provenance.
type Config struct {
	Levels          []LevelConfig   `json:"levels"`
	MemoryLatencyNs int             `json:"memory_latency_ns"`
	Inclusive       bool            `json:"inclusive"`
	Workload        workload.Params `json:"workload"`
}

// Validate reports the first constraint the configuration violates.
// Simulations must fail here, before any state is built, rather than degrade
// mid-run.
func (c Config) Validate() error {
	if len(c.Levels) == 0 {
		return fmt.Errorf("at least one cache level is required")
	}

	for i, level := range c.Levels {
		name := fmt.Sprintf("L%d", i+1)

		if level.SizeKB <= 0 {
			return fmt.Errorf("%s size must be positive, got %d KB",
				name, level.SizeKB)
		}

		if level.Assoc <= 0 {
			return fmt.Errorf("%s associativity must be positive, got %d",
				name, level.Assoc)
		}

		if level.BlockSize <= 0 {
			return fmt.Errorf("%s block size must be positive, got %d",
				name, level.BlockSize)
		}

		if level.LatencyNs < 0 {
			return fmt.Errorf("%s latency must be non-negative, got %d",
				name, level.LatencyNs)
		}

		switch level.Policy {
		case cache.LRU, cache.FIFO, cache.OPT:
		default:
			return fmt.Errorf("%s has no valid replacement policy", name)
		}
	}

	if c.MemoryLatencyNs < 0 {
		return fmt.Errorf("memory latency must be non-negative, got %d",
			c.MemoryLatencyNs)
	}

	if err := c.Workload.Validate(); err != nil {
		return fmt.Errorf("workload: %w", err)
	}

	return nil
}
