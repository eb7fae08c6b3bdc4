// Package deriv implements the numerical differentiation used when a
// timing-model component supplies no closed-form derivative. The package
// works on plain sample arrays: the timing package builds the sample
// windows (in time or in parameter space), batch-evaluates the model over
// them, and hands the samples here to be differentiated at the window
// center.
package deriv

// Policy selects the differentiation method.
type Policy int

const (
	// FiniteDifference differentiates the samples directly with central
	// differences. It is the default.
	FiniteDifference Policy = iota

	// Chebyshev fits a bounded-degree Chebyshev series to the samples,
	// differentiates the series analytically, and evaluates it at the
	// window center. It smooths sampling noise at the cost of a small
	// least-squares solve.
	Chebyshev
)

// Config tunes the numeric estimator. All settings are deterministic:
// identical inputs always produce identical derivative estimates.
type Config struct {
	Policy Policy

	// Samples is the number of evaluation points per window. It is
	// forced odd so a true center sample exists.
	Samples int

	// HalfWidth is the half-width of a time window in seconds.
	HalfWidth float64

	// RelStep is the relative half-width of a parameter window.
	RelStep float64

	// AbsStep is the absolute half-width used when the parameter's
	// current value is zero.
	AbsStep float64

	// ChebOrder bounds the degree of the Chebyshev fit.
	ChebOrder int
}

// DefaultConfig returns the standard estimator settings.
func DefaultConfig() Config {
	return Config{
		Policy:    FiniteDifference,
		Samples:   21,
		HalfWidth: 30,
		RelStep:   1e-6,
		AbsStep:   1e-9,
		ChebOrder: 11,
	}
}

// Sanitized returns the config with out-of-range settings replaced by the
// defaults and the sample count forced odd.
func (c Config) Sanitized() Config {
	def := DefaultConfig()

	if c.Samples < 3 {
		c.Samples = def.Samples
	}
	if c.Samples%2 == 0 {
		c.Samples++
	}
	if c.HalfWidth <= 0 {
		c.HalfWidth = def.HalfWidth
	}
	if c.RelStep <= 0 {
		c.RelStep = def.RelStep
	}
	if c.AbsStep <= 0 {
		c.AbsStep = def.AbsStep
	}
	if c.ChebOrder < 1 {
		c.ChebOrder = def.ChebOrder
	}

	return c
}

// SamplePoints returns n points centered on center, spanning halfWidth on
// each side. n is forced odd; the middle point is exactly center.
func SamplePoints(center, halfWidth float64, n int) []float64 {
	if n < 3 {
		n = 3
	}
	if n%2 == 0 {
		n++
	}

	points := make([]float64, n)
	step := 2 * halfWidth / float64(n-1)
	for i := range points {
		points[i] = center - halfWidth + float64(i)*step
	}
	points[n/2] = center

	return points
}
