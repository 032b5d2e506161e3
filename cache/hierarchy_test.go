package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Hierarchy", func() {
	var (
		l1, l2    *Level
		h         *Hierarchy
		providers []NextUseProvider
	)

	BeforeEach(func() {
		l1 = NewLevel("L1", 1, 1, 64, 4, LRU)
		l2 = NewLevel("L2", 4, 2, 64, 12, LRU)
		h = NewHierarchy([]*Level{l1, l2}, NewMemory(100), true)
		providers = []NextUseProvider{neverProvider, neverProvider}
	})

	It("should require at least one level", func() {
		Expect(func() { NewHierarchy(nil, NewMemory(100), false) }).To(Panic())
	})

	It("should require one provider per level", func() {
		Expect(func() {
			h.Access(0, false, 0, []NextUseProvider{neverProvider})
		}).To(Panic())
	})

	It("should charge every traversed level plus memory on a full miss",
		func() {
			result := h.Access(0, false, 0, providers)

			Expect(result.HitLevel).To(Equal(MemoryLevelName))
			Expect(result.LatencyNs).To(Equal(4 + 12 + 100))
			Expect(result.Steps).To(HaveLen(2))
		})

	It("should stop at the first hit", func() {
		h.Access(0, false, 0, providers)

		result := h.Access(0, false, 1, providers)
		Expect(result.HitLevel).To(Equal("L1"))
		Expect(result.LatencyNs).To(Equal(4))
		Expect(result.Steps).To(HaveLen(1))
	})

	It("should charge the faster levels when hitting deeper down", func() {
		h.Access(0, false, 0, providers)

		// Address 1024 conflicts with 0 in the direct-mapped L1 but lives
		// in a different L2 set, so 0 survives in L2.
		h.Access(1024, false, 1, providers)

		result := h.Access(0, false, 2, providers)
		Expect(result.HitLevel).To(Equal("L2"))
		Expect(result.LatencyNs).To(Equal(4 + 12))
	})

	It("should fill every missing level even when memory satisfies the "+
		"access", func() {
		h.Access(0, false, 0, providers)

		setID1, tag1 := l1.Decompose(0)
		_, ok := l1.Set(setID1).Lookup(tag1)
		Expect(ok).To(BeTrue())

		setID2, tag2 := l2.Decompose(0)
		_, ok = l2.Set(setID2).Lookup(tag2)
		Expect(ok).To(BeTrue())
	})

	It("should keep hit and miss counts conserved across levels", func() {
		addresses := []uint64{0, 64, 1024, 0, 2048, 64, 4096, 0}
		for tick, addr := range addresses {
			h.Access(addr, false, tick, providers)
		}

		n := uint64(len(addresses))
		Expect(l1.Stats().Hits + l1.Stats().Misses).To(Equal(n))
		Expect(l2.Stats().Hits + l2.Stats().Misses).To(Equal(l1.Stats().Misses))
	})

	It("should carry the inclusive flag without enforcing it", func() {
		Expect(h.Inclusive()).To(BeTrue())

		// A hit in L2 does not disturb L1 and vice versa.
		h.Access(0, false, 0, providers)
		h.Access(1024, false, 1, providers)

		setID, tag := l2.Decompose(0)
		_, stillThere := l2.Set(setID).Lookup(tag)
		Expect(stillThere).To(BeTrue())
	})
})
