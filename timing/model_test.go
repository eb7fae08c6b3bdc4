package timing_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/pulsarlab/pulsetime/param"
	"github.com/pulsarlab/pulsetime/timing"
	"github.com/pulsarlab/pulsetime/toa"
)

func testTOAs(n int) []toa.TOA {
	toas := make([]toa.TOA, n)
	for i := range toas {
		toas[i] = toa.TOA{
			Time: toa.NewMJD(55000+int64(i), 0.5),
			Obs:  "GBT",
			Freq: 1400 * toa.MHz,
		}
	}
	return toas
}

// constDelayComp contributes a constant delay at one level.
func constDelayComp(name string, level timing.DelayLevel, d float64) *timing.ComponentBase {
	c := timing.NewComponentBase(name)
	c.AddDelayFunc(level, func(toas []toa.TOA) []float64 {
		out := make([]float64, len(toas))
		for i := range out {
			out[i] = d
		}
		return out
	})
	return c
}

var _ = Describe("Model", func() {
	It("should sum delay contributions independent of add order", func() {
		toas := testTOAs(3)

		forward := timing.NewModel()
		Expect(forward.AddComponent(constDelayComp("A", timing.LevelL1, 1.5))).To(Succeed())
		Expect(forward.AddComponent(constDelayComp("B", timing.LevelL1, 2.25))).To(Succeed())

		backward := timing.NewModel()
		Expect(backward.AddComponent(constDelayComp("B", timing.LevelL1, 2.25))).To(Succeed())
		Expect(backward.AddComponent(constDelayComp("A", timing.LevelL1, 1.5))).To(Succeed())

		Expect(forward.Delay(toas)).To(Equal(backward.Delay(toas)))
		Expect(forward.Delay(toas)[0]).To(BeNumerically("~", 3.75, 1e-12))
	})

	It("should run every L1 function before any L2 function", func() {
		toas := testTOAs(2)
		var calls []string

		c := timing.NewComponentBase("Recorder")
		c.AddDelayFunc(timing.LevelL2, func(toas []toa.TOA) []float64 {
			calls = append(calls, "L2")
			return make([]float64, len(toas))
		})
		c.AddDelayFunc(timing.LevelL1, func(toas []toa.TOA) []float64 {
			calls = append(calls, "L1")
			return make([]float64, len(toas))
		})

		m := timing.NewModel()
		Expect(m.AddComponent(c)).To(Succeed())
		m.Delay(toas)

		Expect(calls).To(Equal([]string{"L1", "L2"}))
	})

	It("should exclude L2 contributions from the L1 total", func() {
		toas := testTOAs(2)

		m := timing.NewModel()
		Expect(m.AddComponent(constDelayComp("Pre", timing.LevelL1, 1.0))).To(Succeed())
		Expect(m.AddComponent(constDelayComp("Post", timing.LevelL2, 10.0))).To(Succeed())

		Expect(m.L1Delay(toas)[0]).To(BeNumerically("~", 1.0, 1e-12))
		Expect(m.Delay(toas)[0]).To(BeNumerically("~", 11.0, 1e-12))
	})

	It("should subtract the L1 delay to form barycentric times", func() {
		toas := testTOAs(1)

		m := timing.NewModel()
		Expect(m.AddComponent(constDelayComp("Pre", timing.LevelL1, 2.0))).To(Succeed())

		bary := m.BarycentricTOAs(toas)

		Expect(toas[0].Time.SubSeconds(bary[0])).
			To(BeNumerically("~", 2.0, 1e-9))
	})

	Context("memoization", func() {
		var (
			m     *timing.Model
			toas  []toa.TOA
			count int
		)

		BeforeEach(func() {
			toas = testTOAs(2)
			count = 0

			c := timing.NewComponentBase("Counter")
			c.AddDelayFunc(timing.LevelL1, func(toas []toa.TOA) []float64 {
				count++
				return make([]float64, len(toas))
			})

			m = timing.NewModel()
			Expect(m.AddComponent(c)).To(Succeed())
		})

		It("should evaluate once per active scope", func() {
			release := m.Use()
			defer release()

			first := m.Delay(toas)
			second := m.Delay(toas)

			Expect(count).To(Equal(1))
			Expect(&first[0]).To(BeIdenticalTo(&second[0]))
		})

		It("should recompute after the scope is released", func() {
			release := m.Use()
			m.Delay(toas)
			release()

			release = m.Use()
			defer release()
			m.Delay(toas)

			Expect(count).To(Equal(2))
		})

		It("should scope each entry point on its own when not wrapped", func() {
			m.Delay(toas)
			m.Delay(toas)

			Expect(count).To(Equal(2))
		})

		It("should share cached results across nested entry points", func() {
			release := m.Use()
			defer release()

			m.BarycentricTOAs(toas)
			m.L1Delay(toas)

			Expect(count).To(Equal(1))
		})
	})

	Context("composition conflicts", func() {
		It("should reject a duplicate parameter name", func() {
			a := timing.NewComponentBase("A")
			a.AddParam(param.NewFloat("DM", param.PcPerCC))

			b := timing.NewComponentBase("B")
			b.AddParam(param.NewFloat("DM", param.PcPerCC))

			m := timing.NewModel()
			Expect(m.AddComponent(a)).To(Succeed())

			err := m.AddComponent(b)
			Expect(err).To(BeAssignableToTypeOf(&timing.ParamConflictError{}))
		})

		It("should reject a duplicate prefix index", func() {
			a := timing.NewComponentBase("A")
			a.AddParam(param.NewPrefix("JUMP", 1, param.Second))

			b := timing.NewComponentBase("B")
			b.AddParam(param.NewPrefix("JUMP", 1, param.Second))

			m := timing.NewModel()
			Expect(m.AddComponent(a)).To(Succeed())
			Expect(m.AddComponent(b)).NotTo(Succeed())
		})

		It("should reject a duplicate analytic phase derivative", func() {
			a := timing.NewComponentBase("A")
			a.RegisterPhaseDeriv("GLF0", func([]toa.TOA, []float64) []float64 {
				return nil
			})

			b := timing.NewComponentBase("B")
			b.RegisterPhaseDeriv("GLF0", func([]toa.TOA, []float64) []float64 {
				return nil
			})

			m := timing.NewModel()
			Expect(m.AddComponent(a)).To(Succeed())
			Expect(m.AddComponent(b)).NotTo(Succeed())
		})

		It("should allow the same parameter instance in two components", func() {
			shared := param.NewFloat("DM", param.PcPerCC)

			a := timing.NewComponentBase("A")
			a.AddParam(shared)

			b := timing.NewComponentBase("B")
			b.AddParam(shared)

			m := timing.NewModel()
			Expect(m.AddComponent(a)).To(Succeed())
			Expect(m.AddComponent(b)).To(Succeed())
		})
	})

	It("should record the binary model name from a component tag", func() {
		c := timing.NewComponentBase("BT")
		c.SetMatch(timing.Match{BinaryModel: "BT"})

		m := timing.NewModel()
		Expect(m.AddComponent(c)).To(Succeed())

		Expect(m.BinaryModel()).To(Equal("BT"))
	})

	It("should map prefix families to sorted indices", func() {
		c := timing.NewComponentBase("Jumps")
		c.AddParam(param.NewPrefix("JUMP", 3, param.Second))
		c.AddParam(param.NewPrefix("JUMP", 1, param.Second))

		m := timing.NewModel()
		Expect(m.AddComponent(c)).To(Succeed())

		Expect(m.PrefixIndices("JUMP")).To(Equal([]int{1, 3}))
		Expect(m.PrefixMapping("JUMP")).To(HaveKeyWithValue(3, "JUMP3"))
	})

	It("should compose a component through the Component interface alone", func() {
		ctrl := gomock.NewController(GinkgoT())
		comp := NewMockComponent(ctrl)

		comp.EXPECT().Params().Return(nil).AnyTimes()
		comp.EXPECT().DerivParams().Return(nil, nil).AnyTimes()
		comp.EXPECT().Match().Return(timing.Match{}).AnyTimes()
		comp.EXPECT().DelayFuncs(gomock.Any()).Return(nil).AnyTimes()
		comp.EXPECT().PhaseFuncs().Return(nil).AnyTimes()

		m := timing.NewModel()
		Expect(m.AddComponent(comp)).To(Succeed())

		toas := testTOAs(2)
		Expect(m.Delay(toas)).To(Equal([]float64{0, 0}))
		Expect(m.Phase(toas).Len()).To(Equal(2))
	})
})
