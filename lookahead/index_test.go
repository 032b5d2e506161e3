package lookahead_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/cachesim/lookahead"
	"github.com/sarchlab/cachesim/workload"
)

var _ = Describe("Index", func() {
	var (
		trace workload.Trace
		index *lookahead.Index
	)

	// Two sets of 64 B blocks: address 0 maps to (set 0, tag 0), address
	// 128 to (set 0, tag 1), address 64 to (set 1, tag 0).
	geom := lookahead.Geometry{NumSets: 2, BlockSize: 64}

	BeforeEach(func() {
		trace = workload.Trace{
			{ID: 0, Op: workload.Read, Address: 0},
			{ID: 1, Op: workload.Read, Address: 128},
			{ID: 2, Op: workload.Read, Address: 0},
			{ID: 3, Op: workload.Write, Address: 64},
			{ID: 4, Op: workload.Read, Address: 128},
		}

		index = lookahead.Build(trace, []lookahead.Geometry{geom})
	})

	It("should report the number of indexed levels", func() {
		Expect(index.NumLevels()).To(Equal(1))
	})

	It("should answer the first occurrence before any advance", func() {
		pos, ok := index.NextUse(0, 0, 0)
		Expect(ok).To(BeTrue())
		Expect(pos).To(Equal(0))
	})

	It("should only see strictly-future positions after advancing", func() {
		index.Advance(0, 0, 0)

		pos, ok := index.NextUse(0, 0, 0)
		Expect(ok).To(BeTrue())
		Expect(pos).To(Equal(2))
	})

	It("should report never-again once a tag's queue is drained", func() {
		index.Advance(0, 0, 0)
		index.Advance(0, 0, 2)

		_, ok := index.NextUse(0, 0, 0)
		Expect(ok).To(BeFalse())
	})

	It("should report never-again for tags absent from the trace", func() {
		_, ok := index.NextUse(0, 1, 99)
		Expect(ok).To(BeFalse())
	})

	It("should ignore advances that do not match the queue front", func() {
		index.Advance(0, 0, 1)

		pos, ok := index.NextUse(0, 0, 0)
		Expect(ok).To(BeTrue())
		Expect(pos).To(Equal(0))
	})

	It("should keep per-set queues independent", func() {
		index.Advance(0, 64, 3)

		_, ok := index.NextUse(0, 1, 0)
		Expect(ok).To(BeFalse())

		pos, ok := index.NextUse(0, 0, 0)
		Expect(ok).To(BeTrue())
		Expect(pos).To(Equal(0))
	})

	It("should bind providers to their level", func() {
		// A second level with one set maps every block to set 0.
		wide := lookahead.Geometry{NumSets: 1, BlockSize: 64}
		index = lookahead.Build(trace,
			[]lookahead.Geometry{geom, wide})

		index.Advance(0, 0, 0)

		narrow := index.Provider(0)
		flat := index.Provider(1)

		pos, ok := narrow(0, 0)
		Expect(ok).To(BeTrue())
		Expect(pos).To(Equal(2))

		// Level 1 was not advanced, so its tag 0 queue still fronts
		// position 0.
		pos, ok = flat(0, 0)
		Expect(ok).To(BeTrue())
		Expect(pos).To(Equal(0))
	})

	It("should always answer never from the stub provider", func() {
		_, ok := lookahead.Never(0, 0)
		Expect(ok).To(BeFalse())
	})
})
