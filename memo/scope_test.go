package memo

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Scope", func() {
	var (
		scope *Scope
		calls int
	)

	compute := func() int {
		calls++
		return calls * 10
	}

	BeforeEach(func() {
		scope = &Scope{}
		calls = 0
	})

	It("should compute without storing when no scope is active", func() {
		Expect(Cached(scope, "k", compute)).To(Equal(10))
		Expect(Cached(scope, "k", compute)).To(Equal(20))
		Expect(calls).To(Equal(2))
	})

	It("should compute once within an active scope", func() {
		release := scope.Use()
		defer release()

		Expect(Cached(scope, "k", compute)).To(Equal(10))
		Expect(Cached(scope, "k", compute)).To(Equal(10))
		Expect(calls).To(Equal(1))
	})

	It("should key results by call identity", func() {
		release := scope.Use()
		defer release()

		Expect(Cached(scope, "a", compute)).To(Equal(10))
		Expect(Cached(scope, "b", compute)).To(Equal(20))
		Expect(calls).To(Equal(2))
	})

	It("should recompute after the scope is released", func() {
		release := scope.Use()
		Cached(scope, "k", compute)
		release()

		Expect(scope.Active()).To(BeFalse())
		Expect(Cached(scope, "k", compute)).To(Equal(20))
		Expect(calls).To(Equal(2))
	})

	It("should let nested uses share the outer scope", func() {
		outerRelease := scope.Use()
		Cached(scope, "k", compute)

		innerRelease := scope.Use()
		Expect(Cached(scope, "k", compute)).To(Equal(10))
		innerRelease()

		// The inner release must not tear the outer scope down.
		Expect(scope.Active()).To(BeTrue())
		Expect(Cached(scope, "k", compute)).To(Equal(10))
		Expect(calls).To(Equal(1))

		outerRelease()
		Expect(scope.Active()).To(BeFalse())
	})

	It("should cache the identical value, not a recomputation", func() {
		release := scope.Use()
		defer release()

		first := Cached(scope, "slice", func() []float64 {
			return []float64{1, 2, 3}
		})
		second := Cached(scope, "slice", func() []float64 {
			return []float64{4, 5, 6}
		})

		Expect(&second[0]).To(BeIdenticalTo(&first[0]))
	})
})
