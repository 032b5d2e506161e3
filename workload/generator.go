package workload

import (
	"fmt"
	"math/rand"
)

// Params configure the synthetic trace generator.
type Params struct {
	N              int     `json:"n"`
	AddressSpaceKB int     `json:"address_space_kb"`
	BlockSize      int     `json:"block_size"`
	SeqFrac        float64 `json:"seq_frac"`
	HotFrac        float64 `json:"hot_frac"`
	WriteRatio     float64 `json:"write_ratio"`
	Seed           int64   `json:"seed"`
}

// Validate reports the first constraint the parameters violate.
func (p Params) Validate() error {
	if p.N < 0 {
		return fmt.Errorf("access count must be non-negative, got %d", p.N)
	}

	if p.AddressSpaceKB <= 0 {
		return fmt.Errorf("address space must be positive, got %d KB",
			p.AddressSpaceKB)
	}

	if p.BlockSize <= 0 {
		return fmt.Errorf("block size must be positive, got %d", p.BlockSize)
	}

	for _, frac := range []struct {
		name  string
		value float64
	}{
		{"seq_frac", p.SeqFrac},
		{"hot_frac", p.HotFrac},
		{"write_ratio", p.WriteRatio},
	} {
		if frac.value < 0 || frac.value > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %g",
				frac.name, frac.value)
		}
	}

	if p.SeqFrac+p.HotFrac > 1 {
		return fmt.Errorf("seq_frac + hot_frac must not exceed 1, got %g",
			p.SeqFrac+p.HotFrac)
	}

	return nil
}

// A Generator produces traces mixing sequential bursts, hot-region accesses,
// and uniform random accesses. It is a pure function of its parameters: the
// same seed yields a bit-identical trace.
type Generator struct {
	params Params
}

// NewGenerator creates a generator for the given parameters.
func NewGenerator(params Params) *Generator {
	return &Generator{params: params}
}

// Generate materializes a trace of exactly N accesses.
func (g *Generator) Generate() Trace {
	p := g.params
	rnd := rand.New(rand.NewSource(p.Seed))

	spaceBytes := uint64(p.AddressSpaceKB) * 1024
	blockSize := uint64(p.BlockSize)

	hotSpace := spaceBytes / 10
	if hotSpace < blockSize {
		hotSpace = blockSize
	}

	trace := make(Trace, 0, p.N)

	for len(trace) < p.N {
		mode := rnd.Float64()

		switch {
		case mode < p.SeqFrac:
			// Sequential burst: a run of consecutive blocks from an aligned
			// start, truncated at N.
			start := alignedBelow(rnd, spaceBytes-64*blockSize, blockSize)
			length := 8 + rnd.Intn(57)

			for j := 0; j < length && len(trace) < p.N; j++ {
				addr := (start + uint64(j)*blockSize) % spaceBytes
				trace = g.append(trace, rnd, addr)
			}

		case mode < p.SeqFrac+p.HotFrac:
			// One access inside a hot region at a random aligned base.
			base := alignedBelow(rnd, spaceBytes-hotSpace, blockSize)
			offset := uint64(randBlock(rnd, hotSpace/blockSize)) * blockSize
			trace = g.append(trace, rnd, (base+offset)%spaceBytes)

		default:
			// Uniform random block-aligned access across the whole space.
			addr := uint64(randBlock(rnd, spaceBytes/blockSize)) * blockSize
			trace = g.append(trace, rnd, addr)
		}
	}

	return trace
}

func (g *Generator) append(trace Trace, rnd *rand.Rand, addr uint64) Trace {
	op := Read
	if rnd.Float64() < g.params.WriteRatio {
		op = Write
	}

	return append(trace, Access{ID: len(trace), Op: op, Address: addr})
}

// randBlock draws a block index in [0, numBlocks), tolerating degenerate
// spaces smaller than one block.
func randBlock(rnd *rand.Rand, numBlocks uint64) int {
	if numBlocks < 1 {
		return 0
	}

	return rnd.Intn(int(numBlocks))
}

// alignedBelow draws a random multiple of align below limit. A limit at or
// below the alignment collapses to zero, which keeps tiny address spaces
// valid.
func alignedBelow(rnd *rand.Rand, limit, align uint64) uint64 {
	if limit > 1<<62 {
		// limit underflowed; the space is smaller than one burst.
		return 0
	}

	choices := int(limit / align)
	if choices < 1 {
		return 0
	}

	return uint64(rnd.Intn(choices)) * align
}
