package deriv

import (
	"errors"
	"fmt"
)

// Gradient numerically differentiates y with respect to x: central
// differences at interior points, one-sided differences at the window
// edges. x must be strictly monotonic.
func Gradient(x, y []float64) ([]float64, error) {
	n := len(x)
	if n != len(y) {
		return nil, fmt.Errorf("gradient: %d abscissae but %d samples",
			len(x), len(y))
	}
	if n < 3 {
		return nil, errors.New("gradient: need at least 3 samples")
	}

	d := make([]float64, n)
	d[0] = (y[1] - y[0]) / (x[1] - x[0])
	d[n-1] = (y[n-1] - y[n-2]) / (x[n-1] - x[n-2])
	for i := 1; i < n-1; i++ {
		d[i] = (y[i+1] - y[i-1]) / (x[i+1] - x[i-1])
	}

	return d, nil
}

// CenterDerivative estimates dy/dx at the center sample of one window,
// dispatching on the configured policy. The sample count must be odd, as
// produced by SamplePoints.
func CenterDerivative(x, y []float64, cfg Config) (float64, error) {
	if len(x)%2 == 0 {
		return 0, errors.New("center derivative: even sample count has no center")
	}

	switch cfg.Policy {
	case FiniteDifference:
		d, err := Gradient(x, y)
		if err != nil {
			return 0, err
		}
		return d[len(d)/2], nil

	case Chebyshev:
		fit, err := FitChebyshev(x, y, cfg.ChebOrder)
		if err != nil {
			return 0, err
		}
		return fit.Derivative().At(x[len(x)/2]), nil

	default:
		return 0, fmt.Errorf("center derivative: unknown policy %d", cfg.Policy)
	}
}
