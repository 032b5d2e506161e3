package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func neverProvider(_ int, _ uint64) (int, bool) {
	return 0, false
}

var _ = Describe("Level", func() {
	It("should derive the number of sets from the geometry", func() {
		// 1 KB of 64 B blocks, direct mapped: 16 sets.
		Expect(NewLevel("L1", 1, 1, 64, 4, LRU).NumSets()).To(Equal(16))

		// 32 KB, 8-way, 64 B blocks: 64 sets.
		Expect(NewLevel("L1", 32, 8, 64, 4, LRU).NumSets()).To(Equal(64))
	})

	It("should collapse to one set when the level is smaller than a set",
		func() {
			Expect(NewLevel("L1", 1, 32, 64, 4, LRU).NumSets()).To(Equal(1))
		})

	It("should reject non-positive geometry", func() {
		Expect(func() { NewLevel("L1", 0, 1, 64, 4, LRU) }).To(Panic())
		Expect(func() { NewLevel("L1", 1, 0, 64, 4, LRU) }).To(Panic())
		Expect(func() { NewLevel("L1", 1, 1, 0, 4, LRU) }).To(Panic())
	})

	It("should decompose addresses so (set, tag) reconstructs the block",
		func() {
			l := NewLevel("L1", 1, 1, 64, 4, LRU)

			for _, addr := range []uint64{0, 64, 100, 1024, 4096, 65536} {
				setID, tag := l.Decompose(addr)
				block := tag*uint64(l.NumSets()) + uint64(setID)
				Expect(block).To(Equal(addr / 64))
			}
		})

	Context("when accessing", func() {
		var l *Level

		BeforeEach(func() {
			l = NewLevel("L1", 1, 1, 64, 4, LRU)
		})

		It("should miss cold and hit warm", func() {
			first := l.Access(0, false, 0, neverProvider)
			Expect(first.Hit).To(BeFalse())

			second := l.Access(0, false, 1, neverProvider)
			Expect(second.Hit).To(BeTrue())

			Expect(l.Stats()).To(Equal(LevelStats{Hits: 1, Misses: 1}))
		})

		It("should hit anywhere within a cached block", func() {
			l.Access(0, false, 0, neverProvider)

			Expect(l.Access(63, false, 1, neverProvider).Hit).To(BeTrue())
			Expect(l.Access(64, false, 2, neverProvider).Hit).To(BeFalse())
		})

		It("should fill with write-allocate semantics", func() {
			result := l.Access(0, true, 0, neverProvider)
			Expect(result.Hit).To(BeFalse())

			setID, tag := l.Decompose(0)
			line, ok := l.Set(setID).Lookup(tag)
			Expect(ok).To(BeTrue())
			Expect(line.Dirty).To(BeTrue())
		})

		It("should evict a conflicting block and count the writeback",
			func() {
				l.Access(0, true, 0, neverProvider)

				// 1 KB direct mapped wraps every 1024 bytes.
				result := l.Access(1024, false, 1, neverProvider)
				Expect(result.Hit).To(BeFalse())
				Expect(result.Evicted).To(BeTrue())
				Expect(result.Writeback).To(BeTrue())

				stats := l.Stats()
				Expect(stats.Evictions).To(Equal(uint64(1)))
				Expect(stats.Writebacks).To(Equal(uint64(1)))
			})

		It("should not count a writeback for clean victims", func() {
			l.Access(0, false, 0, neverProvider)
			result := l.Access(1024, false, 1, neverProvider)

			Expect(result.Evicted).To(BeTrue())
			Expect(result.Writeback).To(BeFalse())
			Expect(l.Stats().Writebacks).To(BeZero())
		})

		It("should never let a set exceed its capacity", func() {
			l = NewLevel("L1", 1, 2, 64, 4, LRU)

			for tick := 0; tick < 1000; tick++ {
				l.Access(uint64(tick*64*7), false, tick, neverProvider)

				for s := 0; s < l.NumSets(); s++ {
					Expect(l.Set(s).Size()).
						To(BeNumerically("<=", l.Set(s).Capacity()))
				}
			}
		})
	})
})
