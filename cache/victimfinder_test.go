package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func neverUsedAgain(_ uint64) (int, bool) {
	return 0, false
}

var _ = Describe("VictimFinder", func() {
	var s *Set

	BeforeEach(func() {
		s = NewSet(2)
	})

	It("should dispatch one finder per policy", func() {
		Expect(NewVictimFinder(LRU)).To(BeAssignableToTypeOf(&LRUVictimFinder{}))
		Expect(NewVictimFinder(FIFO)).To(BeAssignableToTypeOf(&FIFOVictimFinder{}))
		Expect(NewVictimFinder(OPT)).To(BeAssignableToTypeOf(&OPTVictimFinder{}))
		Expect(func() { NewVictimFinder(Policy(99)) }).To(Panic())
	})

	Context("when the set is not at capacity", func() {
		It("should not pick a victim", func() {
			s.Insert(1, 0, false)

			for _, policy := range []Policy{LRU, FIFO, OPT} {
				_, ok := NewVictimFinder(policy).FindVictim(s, neverUsedAgain)
				Expect(ok).To(BeFalse())
			}
		})
	})

	Context("with LRU", func() {
		It("should evict the least recently used tag", func() {
			s.Insert(1, 0, false)
			s.Insert(2, 1, false)
			s.RecordHit(1, 2, false)

			victim, ok := NewLRUVictimFinder().FindVictim(s, neverUsedAgain)
			Expect(ok).To(BeTrue())
			Expect(victim).To(Equal(uint64(2)))
		})
	})

	Context("with FIFO", func() {
		It("should evict the earliest inserted tag regardless of hits", func() {
			s.Insert(1, 0, false)
			s.Insert(2, 1, false)
			s.RecordHit(1, 2, false)

			victim, ok := NewFIFOVictimFinder().FindVictim(s, neverUsedAgain)
			Expect(ok).To(BeTrue())
			Expect(victim).To(Equal(uint64(1)))
		})
	})

	Context("with OPT", func() {
		It("should evict the tag with the farthest next use", func() {
			s.Insert(1, 0, false)
			s.Insert(2, 1, false)

			nextUse := func(tag uint64) (int, bool) {
				if tag == 1 {
					return 5, true
				}
				return 9, true
			}

			victim, ok := NewOPTVictimFinder().FindVictim(s, nextUse)
			Expect(ok).To(BeTrue())
			Expect(victim).To(Equal(uint64(2)))
		})

		It("should prefer a tag that is never used again", func() {
			s.Insert(1, 0, false)
			s.Insert(2, 1, false)

			nextUse := func(tag uint64) (int, bool) {
				if tag == 1 {
					return 1000000, true
				}
				return 0, false
			}

			victim, ok := NewOPTVictimFinder().FindVictim(s, nextUse)
			Expect(ok).To(BeTrue())
			Expect(victim).To(Equal(uint64(2)))
		})

		It("should break ties deterministically", func() {
			s.Insert(1, 0, false)
			s.Insert(2, 1, false)

			victim, ok := NewOPTVictimFinder().FindVictim(s, neverUsedAgain)
			Expect(ok).To(BeTrue())
			Expect(victim).To(Equal(uint64(1)))
		})
	})
})
