package timing

import (
	"math"

	"github.com/pulsarlab/pulsetime/deriv"
	"github.com/pulsarlab/pulsetime/memo"
	"github.com/pulsarlab/pulsetime/param"
	"github.com/pulsarlab/pulsetime/toa"
)

type derivResult struct {
	values []float64
	err    error
}

// DPhaseDParam evaluates d(phase)/d(parameter) for every observation, in
// turns per parameter unit. An analytic derivative registered by a
// component is dispatched directly; otherwise the numeric estimator steps
// the parameter over a symmetric window and differentiates the re-evaluated
// phase. A name with neither path is an UnavailableDerivativeError.
func (m *Model) DPhaseDParam(toas []toa.TOA, name string) ([]float64, error) {
	release := m.scope.Use()
	defer release()

	r := memo.Cached(&m.scope, "d_phase_d_"+name, func() derivResult {
		if f, ok := m.phaseDerivs[name]; ok {
			return derivResult{values: f(toas, m.Delay(toas))}
		}

		values, err := m.numericPhaseDParam(toas, name)
		return derivResult{values: values, err: err}
	})

	return r.values, r.err
}

// DDelayDParam evaluates d(delay)/d(parameter) by summing the analytic
// delay derivatives components registered for the parameter, in seconds per
// parameter unit.
func (m *Model) DDelayDParam(toas []toa.TOA, name string) ([]float64, error) {
	release := m.scope.Use()
	defer release()

	r := memo.Cached(&m.scope, "d_delay_d_"+name, func() derivResult {
		funcs, ok := m.delayDerivs[name]
		if !ok {
			return derivResult{err: &UnavailableDerivativeError{
				Param: name,
				Msg:   "no delay derivative registered",
			}}
		}

		total := make([]float64, len(toas))
		for _, f := range funcs {
			accumulate(total, f(toas))
		}
		return derivResult{values: total}
	})

	return r.values, r.err
}

// numericPhaseDParam is the finite-window fallback: re-evaluate the full
// phase at a symmetric window of parameter values around the current one,
// collapse each evaluation to safe double precision, and differentiate the
// phase-versus-value samples at the window center under the configured
// policy. The parameter is restored on every exit path.
func (m *Model) numericPhaseDParam(toas []toa.TOA, name string) ([]float64, error) {
	p, ok := m.params[name]
	if !ok {
		return nil, &UnavailableDerivativeError{
			Param: name,
			Msg:   "parameter is not in the model",
		}
	}

	np, ok := p.(param.Numeric)
	if !ok {
		return nil, &UnavailableDerivativeError{
			Param: name,
			Msg:   "parameter is not a numeric quantity",
		}
	}

	cfg := m.config.Sanitized()

	center := np.Value()
	halfWidth := math.Abs(center) * cfg.RelStep
	if halfWidth == 0 {
		halfWidth = cfg.AbsStep
	}

	values := deriv.SamplePoints(center, halfWidth, cfg.Samples)
	defer func() {
		// Restore before any cached consumer can observe the stepped value.
		_ = np.SetValue(center, np.Unit())
	}()

	// One batched phase evaluation per window sample, bypassing the scope
	// cache: the receiver state changes between evaluations.
	samples := make([]Phase, len(values))
	for k, v := range values {
		if err := np.SetValue(v, np.Unit()); err != nil {
			return nil, err
		}
		samples[k] = m.phaseNoCache(toas)
	}

	result := make([]float64, len(toas))
	y := make([]float64, len(values))
	for i := range toas {
		minInt := samples[0].Int[i]
		for _, s := range samples[1:] {
			if s.Int[i] < minInt {
				minInt = s.Int[i]
			}
		}
		for k, s := range samples {
			y[k] = float64(s.Int[i]-minInt) + s.Frac[i]
		}

		d, err := deriv.CenterDerivative(values, y, cfg)
		if err != nil {
			return nil, err
		}
		result[i] = d
	}

	return result, nil
}

// DPhaseDTOA evaluates d(phase)/d(time) at each observation, in turns per
// second: each observation is resampled over a symmetric time window
// (observatory and frequency preserved), the phase is re-evaluated in one
// batched call per window, and the phase-versus-elapsed-seconds samples are
// differentiated at the center.
func (m *Model) DPhaseDTOA(toas []toa.TOA) ([]float64, error) {
	release := m.scope.Use()
	defer release()

	r := memo.Cached(&m.scope, "d_phase_d_toa", func() derivResult {
		cfg := m.config.Sanitized()

		result := make([]float64, len(toas))
		for i, t := range toas {
			window := toa.Resample(t, cfg.HalfWidth, cfg.Samples)
			collapsed := m.phaseNoCache(window).Collapsed()

			elapsed := make([]float64, len(window))
			for k, s := range window {
				elapsed[k] = s.Time.SubSeconds(window[0].Time)
			}

			d, err := deriv.CenterDerivative(elapsed, collapsed, cfg)
			if err != nil {
				return derivResult{err: err}
			}
			result[i] = d
		}

		return derivResult{values: result}
	})

	return r.values, r.err
}
