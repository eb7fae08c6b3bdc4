package timing_test

import (
	"io"
	"log"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pulsarlab/pulsetime/components/spindown"
	"github.com/pulsarlab/pulsetime/param"
	"github.com/pulsarlab/pulsetime/timing"
)

func componentNames(m *timing.Model) []string {
	var names []string
	for _, c := range m.Components() {
		names = append(names, c.Name())
	}
	return names
}

var _ = Describe("ModelBuilder", func() {
	It("should select components by parameter-name intersection", func() {
		m, err := timing.MakeModelBuilder().
			WithComponents(spindown.New()).
			Build(strings.NewReader("F0 100.0\n"))

		Expect(err).To(BeNil())
		Expect(componentNames(m)).To(Equal([]string{"Spindown"}))
	})

	It("should select components by alias intersection", func() {
		m, err := timing.MakeModelBuilder().
			WithComponents(spindown.New()).
			Build(strings.NewReader("F 100.0\n"))

		Expect(err).To(BeNil())
		Expect(componentNames(m)).To(Equal([]string{"Spindown"}))
	})

	It("should leave out components the file never mentions", func() {
		jumps := timing.NewComponentBase("Jumps")
		jumps.AddParam(param.NewPrefix("JUMP", 1, param.Second))

		m, err := timing.MakeModelBuilder().
			WithComponents(spindown.New(), jumps).
			Build(strings.NewReader("F0 100.0\n"))

		Expect(err).To(BeNil())
		Expect(componentNames(m)).To(Equal([]string{"Spindown"}))
	})

	It("should select prefix-family components by any member index", func() {
		jumps := timing.NewComponentBase("Jumps")
		jumps.AddParam(param.NewPrefix("JUMP", 1, param.Second))

		m, err := timing.MakeModelBuilder().
			WithComponents(spindown.New(), jumps).
			Build(strings.NewReader("F0 100.0\nJUMP5 1e-6\n"))

		Expect(err).To(BeNil())
		Expect(componentNames(m)).To(Equal([]string{"Spindown", "Jumps"}))
	})

	It("should select a binary component only by the BINARY value", func() {
		bt := timing.NewComponentBase("BT")
		bt.SetMatch(timing.Match{BinaryModel: "BT"})
		bt.AddParam(param.NewFloat("PB", param.Day))

		dd := timing.NewComponentBase("DD")
		dd.SetMatch(timing.Match{BinaryModel: "DD"})
		dd.AddParam(param.NewFloat("PB", param.Day))

		m, err := timing.MakeModelBuilder().
			WithComponents(spindown.New(), bt, dd).
			Build(strings.NewReader("F0 100.0\nBINARY BT\nPB 1.5\n"))

		Expect(err).To(BeNil())
		Expect(componentNames(m)).To(Equal([]string{"Spindown", "BT"}))
		Expect(m.BinaryModel()).To(Equal("BT"))
	})

	It("should honor an exclude marker over parameter matching", func() {
		shapiro := timing.NewComponentBase("SolarShapiro")
		shapiro.SetMatch(timing.Match{ExcludeMarker: "NO_SS_SHAPIRO"})

		included, err := timing.MakeModelBuilder().
			WithComponents(spindown.New(), shapiro).
			Build(strings.NewReader("F0 100.0\n"))
		Expect(err).To(BeNil())
		Expect(componentNames(included)).
			To(Equal([]string{"Spindown", "SolarShapiro"}))

		excluded, err := timing.MakeModelBuilder().
			WithComponents(spindown.New(), shapiro).
			WithLogger(log.New(io.Discard, "", 0)).
			Build(strings.NewReader("F0 100.0\nNO_SS_SHAPIRO\n"))
		Expect(err).To(BeNil())
		Expect(componentNames(excluded)).To(Equal([]string{"Spindown"}))
	})

	It("should never match on the pulsar name alone", func() {
		c := timing.NewComponentBase("NameOnly")
		c.AddParam(param.NewStr("PSR"))

		Expect(c.IsApplicable(map[string][]string{
			"PSR": {"J1234+5678"},
		})).To(BeFalse())
	})

	It("should keep candidate order as evaluation order", func() {
		a := constDelayComp("A", timing.LevelL1, 1)
		a.AddParam(param.NewFloat("TA", param.Second))

		b := constDelayComp("B", timing.LevelL1, 2)
		b.AddParam(param.NewFloat("TB", param.Second))

		m, err := timing.MakeModelBuilder().
			WithComponents(b, a).
			Build(strings.NewReader("TA 1.0\nTB 2.0\n"))

		Expect(err).To(BeNil())
		Expect(componentNames(m)).To(Equal([]string{"B", "A"}))
	})

	It("should surface composition conflicts from selection", func() {
		a := timing.NewComponentBase("A")
		a.AddParam(param.NewFloat("DM", param.PcPerCC))

		b := timing.NewComponentBase("B")
		b.AddParam(param.NewFloat("DM", param.PcPerCC))

		_, err := timing.MakeModelBuilder().
			WithComponents(a, b).
			Build(strings.NewReader("DM 15.9\n"))

		Expect(err).To(BeAssignableToTypeOf(&timing.ParamConflictError{}))
	})
})
