// Package spindown implements the rotational phase of an isolated pulsar
// as a Taylor series in the spin frequency and its derivatives.
package spindown

import (
	"math"

	"github.com/pulsarlab/pulsetime/param"
	"github.com/pulsarlab/pulsetime/timing"
	"github.com/pulsarlab/pulsetime/toa"
)

// Comp is the spin-down component. It contributes one phase function and
// analytic phase derivatives for F0, F1 and F2.
type Comp struct {
	*timing.ComponentBase

	f0     *param.Float
	f1     *param.Float
	f2     *param.Float
	pepoch *param.Epoch
}

// New creates the spin-down component.
func New() *Comp {
	c := &Comp{ComponentBase: timing.NewComponentBase("Spindown")}

	c.f0 = param.NewFloat("F0", param.Hertz).
		WithAliases("F").
		WithDescription("Spin frequency")
	c.f1 = param.NewFloat("F1", param.HzPerSec).
		WithDescription("Spin-down rate")
	c.f2 = param.NewFloat("F2", param.HzPerSec2).
		WithDescription("Second derivative of the spin frequency")
	c.pepoch = param.NewEpoch("PEPOCH").
		WithDescription("Reference epoch of the spin parameters")

	c.AddParam(c.f0)
	c.AddParam(c.f1)
	c.AddParam(c.f2)
	c.AddParam(c.pepoch)

	c.AddPhaseFunc(c.spinPhase)
	c.RegisterPhaseDeriv("F0", c.dPhaseDF0)
	c.RegisterPhaseDeriv("F1", c.dPhaseDF1)
	c.RegisterPhaseDeriv("F2", c.dPhaseDF2)

	return c
}

// F0 returns the spin frequency parameter.
func (c *Comp) F0() *param.Float { return c.f0 }

// PEpoch returns the reference epoch parameter.
func (c *Comp) PEpoch() *param.Epoch { return c.pepoch }

// Setup implements timing.Component.
func (c *Comp) Setup() error {
	if !c.f0.IsSet() {
		return &timing.MissingParameterError{
			Component: c.Name(),
			Param:     "F0",
			Msg:       "a spin frequency is required",
		}
	}

	if !c.pepoch.IsSet() && (c.f1.IsSet() || c.f2.IsSet()) {
		return &timing.MissingParameterError{
			Component: c.Name(),
			Param:     "PEPOCH",
			Msg:       "spin frequency derivatives need a reference epoch",
		}
	}

	return nil
}

// emissionDT is the elapsed emission time, in seconds, between the spin
// reference epoch and each delay-corrected observation.
func (c *Comp) emissionDT(toas []toa.TOA, delay []float64) []float64 {
	epoch := c.pepoch.MJD()

	dt := make([]float64, len(toas))
	for i, t := range toas {
		dt[i] = t.Time.SubSeconds(epoch) - delay[i]
	}
	return dt
}

// spinPhase accumulates F0*dt + F1*dt^2/2 + F2*dt^3/6 turns. The dominant
// F0*dt product is split with an FMA so the sub-turn structure survives
// rotation counts far beyond float64's integer range for fractions.
func (c *Comp) spinPhase(toas []toa.TOA, delay []float64) timing.Phase {
	f0 := c.f0.Value()
	f1 := c.f1.Value()
	f2 := c.f2.Value()
	dt := c.emissionDT(toas, delay)

	ph := timing.ZeroPhase(len(toas))
	for i, t := range dt {
		hi := f0 * t
		lo := math.FMA(f0, t, -hi)
		lo += t * t * (f1/2 + t*f2/6)

		ip, fp := math.Modf(hi)
		ph.Int[i] = int64(ip)
		ph.Frac[i] = fp + lo
	}

	return ph.Normalized()
}

func (c *Comp) dPhaseDF0(toas []toa.TOA, delay []float64) []float64 {
	return c.emissionDT(toas, delay)
}

func (c *Comp) dPhaseDF1(toas []toa.TOA, delay []float64) []float64 {
	dt := c.emissionDT(toas, delay)
	for i, t := range dt {
		dt[i] = t * t / 2
	}
	return dt
}

func (c *Comp) dPhaseDF2(toas []toa.TOA, delay []float64) []float64 {
	dt := c.emissionDT(toas, delay)
	for i, t := range dt {
		dt[i] = t * t * t / 6
	}
	return dt
}
