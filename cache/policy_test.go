package cache

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Policy", func() {
	It("should parse the three known policies", func() {
		for _, expected := range []Policy{LRU, FIFO, OPT} {
			parsed, err := ParsePolicy(expected.String())
			Expect(err).ToNot(HaveOccurred())
			Expect(parsed).To(Equal(expected))
		}
	})

	It("should reject unrecognized policy names", func() {
		_, err := ParsePolicy("RANDOM")
		Expect(err).To(HaveOccurred())

		_, err = ParsePolicy("lru")
		Expect(err).To(HaveOccurred())
	})

	It("should round-trip through JSON by name", func() {
		data, err := json.Marshal(OPT)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(Equal(`"OPT"`))

		var parsed Policy
		Expect(json.Unmarshal(data, &parsed)).To(Succeed())
		Expect(parsed).To(Equal(OPT))
	})

	It("should fail to unmarshal unknown names", func() {
		var parsed Policy
		Expect(json.Unmarshal([]byte(`"MRU"`), &parsed)).ToNot(Succeed())
	})
})
