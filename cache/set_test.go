package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Set", func() {
	var s *Set

	BeforeEach(func() {
		s = NewSet(2)
	})

	It("should start empty", func() {
		Expect(s.Size()).To(Equal(0))
		Expect(s.Capacity()).To(Equal(2))
		Expect(s.Probe(1)).To(BeFalse())
	})

	It("should hold inserted lines", func() {
		s.Insert(1, 10, false)

		Expect(s.Probe(1)).To(BeTrue())
		Expect(s.Size()).To(Equal(1))

		line, ok := s.Lookup(1)
		Expect(ok).To(BeTrue())
		Expect(line.Valid).To(BeTrue())
		Expect(line.Dirty).To(BeFalse())
		Expect(line.LastUsed).To(Equal(10))
		Expect(line.InsertedAt).To(Equal(10))
	})

	It("should mark lines dirty when filled by a write", func() {
		s.Insert(1, 10, true)

		line, _ := s.Lookup(1)
		Expect(line.Dirty).To(BeTrue())
	})

	It("should refuse to grow beyond capacity", func() {
		s.Insert(1, 0, false)
		s.Insert(2, 1, false)

		Expect(func() { s.Insert(3, 2, false) }).To(Panic())
		Expect(s.Size()).To(Equal(2))
	})

	It("should refuse to insert a resident tag", func() {
		s.Insert(1, 0, false)

		Expect(func() { s.Insert(1, 1, false) }).To(Panic())
	})

	It("should update recency and dirtiness on hits", func() {
		s.Insert(1, 0, false)
		s.RecordHit(1, 5, true)

		line, _ := s.Lookup(1)
		Expect(line.LastUsed).To(Equal(5))
		Expect(line.Dirty).To(BeTrue())
	})

	It("should keep read hits clean", func() {
		s.Insert(1, 0, false)
		s.RecordHit(1, 5, false)

		line, _ := s.Lookup(1)
		Expect(line.Dirty).To(BeFalse())
	})

	It("should report dirtiness on eviction and purge the line", func() {
		s.Insert(1, 0, true)
		s.Insert(2, 1, false)

		Expect(s.Evict(1)).To(BeTrue())
		Expect(s.Evict(2)).To(BeFalse())
		Expect(s.Size()).To(Equal(0))
		Expect(s.Probe(1)).To(BeFalse())
	})

	It("should enumerate tags oldest first", func() {
		s.Insert(7, 0, false)
		s.Insert(3, 1, false)

		var order []uint64
		s.forEachTagInInsertionOrder(func(tag uint64) {
			order = append(order, tag)
		})

		Expect(order).To(Equal([]uint64{7, 3}))
	})

	It("should keep insertion order stable across hits", func() {
		s.Insert(7, 0, false)
		s.Insert(3, 1, false)
		s.RecordHit(7, 2, false)

		Expect(s.oldestTag()).To(Equal(uint64(7)))
		Expect(s.leastRecentTag()).To(Equal(uint64(3)))
	})
})
