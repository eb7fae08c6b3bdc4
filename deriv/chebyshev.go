package deriv

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// A ChebFit is a Chebyshev series fitted over a sample window. The series
// lives on the canonical interval [-1, 1]; the fit remembers the affine map
// from the original abscissae.
type ChebFit struct {
	coeffs []float64
	xmin   float64
	xmax   float64
}

// FitChebyshev least-squares fits a Chebyshev series of the given degree to
// the samples. The degree is clamped so the system stays overdetermined.
func FitChebyshev(x, y []float64, degree int) (*ChebFit, error) {
	n := len(x)
	if n != len(y) {
		return nil, fmt.Errorf("chebyshev fit: %d abscissae but %d samples",
			len(x), len(y))
	}
	if n < 3 {
		return nil, errors.New("chebyshev fit: need at least 3 samples")
	}
	if degree > n-1 {
		degree = n - 1
	}

	fit := &ChebFit{xmin: x[0], xmax: x[n-1]}
	if fit.xmax == fit.xmin {
		return nil, errors.New("chebyshev fit: degenerate window")
	}

	// Vandermonde-style basis matrix from the three-term recurrence.
	basis := mat.NewDense(n, degree+1, nil)
	for i := 0; i < n; i++ {
		t := fit.mapToUnit(x[i])
		tPrev, tCur := 1.0, t
		basis.Set(i, 0, 1)
		for j := 1; j <= degree; j++ {
			basis.Set(i, j, tCur)
			tPrev, tCur = tCur, 2*t*tCur-tPrev
		}
	}

	var qr mat.QR
	qr.Factorize(basis)

	rhs := mat.NewVecDense(n, y)
	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, rhs); err != nil {
		return nil, fmt.Errorf("chebyshev fit: %w", err)
	}

	fit.coeffs = make([]float64, degree+1)
	for j := range fit.coeffs {
		fit.coeffs[j] = sol.AtVec(j)
	}

	return fit, nil
}

func (f *ChebFit) mapToUnit(x float64) float64 {
	return 2*(x-f.xmin)/(f.xmax-f.xmin) - 1
}

// At evaluates the series at x by Clenshaw recurrence.
func (f *ChebFit) At(x float64) float64 {
	t := f.mapToUnit(x)

	b1, b2 := 0.0, 0.0
	for j := len(f.coeffs) - 1; j >= 1; j-- {
		b1, b2 = f.coeffs[j]+2*t*b1-b2, b1
	}

	return f.coeffs[0] + t*b1 - b2
}

// Derivative differentiates the series in coefficient space, including the
// chain-rule factor of the window map, and returns the derivative series.
func (f *ChebFit) Derivative() *ChebFit {
	c := f.coeffs
	n := len(c) - 1

	der := &ChebFit{xmin: f.xmin, xmax: f.xmax}
	if n < 1 {
		der.coeffs = []float64{0}
		return der
	}

	work := make([]float64, len(c))
	copy(work, c)

	d := make([]float64, n)
	for j := n; j > 2; j-- {
		d[j-1] = 2 * float64(j) * work[j]
		work[j-2] += float64(j) * work[j] / float64(j-2)
	}
	if n > 1 {
		d[1] = 4 * work[2]
	}
	d[0] = work[1]

	// d/dx = d/dt * dt/dx.
	chain := 2 / (f.xmax - f.xmin)
	for j := range d {
		d[j] *= chain
	}

	der.coeffs = d
	return der
}
