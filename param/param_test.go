package param

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pulsarlab/pulsetime/toa"
)

var _ = Describe("Float", func() {
	var f0 *Float

	BeforeEach(func() {
		f0 = NewFloat("F0", Hertz).
			WithAliases("F").
			WithDescription("Spin frequency")
	})

	It("should start frozen and unset", func() {
		Expect(f0.Frozen()).To(BeTrue())
		Expect(f0.IsSet()).To(BeFalse())
		Expect(f0.Line()).To(Equal(""))
	})

	It("should set and get a value in its own unit", func() {
		Expect(f0.SetValue(29.946923, Hertz)).To(Succeed())
		Expect(f0.Value()).To(Equal(29.946923))
	})

	It("should convert on assignment", func() {
		Expect(f0.SetValue(29.946923e-6, Megahertz)).To(Succeed())
		Expect(f0.Value()).To(BeNumerically("~", 29.946923, 1e-9))
	})

	It("should reject a unit from another family", func() {
		err := f0.SetValue(1.0, Second)
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(&UnitError{}))
	})

	It("should read in another unit of the same family", func() {
		Expect(f0.SetValue(30, Hertz)).To(Succeed())
		v, err := f0.ValueIn(Kilohertz)
		Expect(err).ToNot(HaveOccurred())
		Expect(v).To(BeNumerically("~", 0.03, 1e-15))
	})

	It("should parse a full line", func() {
		matched, err := f0.ParseLine("F0 29.946923 1.2e-10 1")
		Expect(matched).To(BeTrue())
		Expect(err).ToNot(HaveOccurred())
		Expect(f0.Value()).To(Equal(29.946923))
		Expect(f0.Uncertainty()).To(Equal(1.2e-10))
		Expect(f0.Frozen()).To(BeFalse())
	})

	It("should match an alias, case-insensitively", func() {
		matched, err := f0.ParseLine("f 29.946923")
		Expect(matched).To(BeTrue())
		Expect(err).ToNot(HaveOccurred())
		Expect(f0.Value()).To(Equal(29.946923))
	})

	It("should not match a line for another parameter", func() {
		matched, err := f0.ParseLine("F1 -3.77e-10")
		Expect(matched).To(BeFalse())
		Expect(err).ToNot(HaveOccurred())
		Expect(f0.IsSet()).To(BeFalse())
	})

	It("should report a bad value on a matching line", func() {
		matched, err := f0.ParseLine("F0 fast")
		Expect(matched).To(BeTrue())
		Expect(err).To(HaveOccurred())
	})

	It("should round-trip through its text line", func() {
		Expect(f0.SetValue(29.946923, Hertz)).To(Succeed())
		f0.SetUncertainty(1.2e-10)
		f0.SetFrozen(false)

		fresh := NewFloat("F0", Hertz)
		matched, err := fresh.ParseLine(f0.Line())
		Expect(matched).To(BeTrue())
		Expect(err).ToNot(HaveOccurred())
		Expect(fresh.Value()).To(Equal(f0.Value()))
		Expect(fresh.Uncertainty()).To(Equal(f0.Uncertainty()))
		Expect(fresh.Frozen()).To(Equal(f0.Frozen()))
	})
})

var _ = Describe("Epoch", func() {
	It("should keep the full textual precision of a day count", func() {
		e := NewEpoch("PEPOCH")
		matched, err := e.ParseLine("PEPOCH 53750.000000000000241")
		Expect(matched).To(BeTrue())
		Expect(err).ToNot(HaveOccurred())
		Expect(e.MJD().Day).To(Equal(int64(53750)))
		Expect(e.MJD().Frac).To(BeNumerically("~", 2.41e-13, 1e-20))
	})

	It("should round-trip through its text line", func() {
		e := NewEpoch("PEPOCH").WithValue(toa.NewMJD(53750, 0.333))

		fresh := NewEpoch("PEPOCH")
		matched, err := fresh.ParseLine(e.Line())
		Expect(matched).To(BeTrue())
		Expect(err).ToNot(HaveOccurred())
		Expect(fresh.MJD()).To(Equal(e.MJD()))
	})
})

var _ = Describe("Str", func() {
	It("should match its aliases", func() {
		psr := NewStr("PSR").WithAliases("PSRJ", "PSRB")
		matched, err := psr.ParseLine("PSRJ J0030+0451")
		Expect(matched).To(BeTrue())
		Expect(err).ToNot(HaveOccurred())
		Expect(psr.Value()).To(Equal("J0030+0451"))
	})

	It("should round-trip through its text line", func() {
		psr := NewStr("PSR")
		psr.SetValue("B1937+21")

		fresh := NewStr("PSR")
		matched, err := fresh.ParseLine(psr.Line())
		Expect(matched).To(BeTrue())
		Expect(err).ToNot(HaveOccurred())
		Expect(fresh.Value()).To(Equal("B1937+21"))
	})
})

var _ = Describe("Prefix", func() {
	It("should derive its name from the prefix and index", func() {
		p := NewPrefix("DMX", 2, PcPerCC)
		Expect(p.Name()).To(Equal("DMX2"))
		Expect(p.Prefix()).To(Equal("DMX"))
		Expect(p.Index()).To(Equal(2))
	})

	It("should answer to alias prefixes with its own index", func() {
		p := NewPrefix("DMX", 7, PcPerCC).WithAliasPrefixes("DMXR")
		matched, err := p.ParseLine("DMXR7 0.002")
		Expect(matched).To(BeTrue())
		Expect(err).ToNot(HaveOccurred())
		Expect(p.Value()).To(Equal(0.002))
	})
})

var _ = Describe("SplitIndexed", func() {
	It("should split a trailing index", func() {
		prefix, index, ok := SplitIndexed("DMX12")
		Expect(ok).To(BeTrue())
		Expect(prefix).To(Equal("DMX"))
		Expect(index).To(Equal(12))
	})

	It("should reject names without an index", func() {
		_, _, ok := SplitIndexed("DM")
		Expect(ok).To(BeFalse())
	})

	It("should reject bare numbers", func() {
		_, _, ok := SplitIndexed("42")
		Expect(ok).To(BeFalse())
	})
})
