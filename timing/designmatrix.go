package timing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/pulsarlab/pulsetime/param"
	"github.com/pulsarlab/pulsetime/toa"
)

// DesignMatrixOptions selects the columns of a design matrix.
type DesignMatrixOptions struct {
	// IncludeFrozen adds columns for frozen parameters as well as free
	// ones.
	IncludeFrozen bool

	// IncludeOffset prepends the all-ones Offset column representing a
	// free additive phase offset.
	IncludeOffset bool
}

// A DesignMatrix holds the partial derivatives of the predicted time
// residual with respect to each selected parameter: one row per
// observation, one column per parameter. It is only meaningful for the
// parameter values and frozen set it was built from, so it is built fresh
// on every request.
type DesignMatrix struct {
	M     *mat.Dense
	Names []string
	Units []param.Unit
}

// Dims returns the matrix dimensions.
func (d *DesignMatrix) Dims() (rows, cols int) { return d.M.Dims() }

// DesignMatrix builds the fitting matrix for the observations. Column
// derivation, per parameter: an analytic phase derivative (divided by the
// spin frequency F0 to convert turns to seconds of residual) wins; a
// parameter with only delay derivatives uses their sum directly; any other
// numeric parameter falls back to the numeric phase estimator; anything
// else is an UnavailableDerivativeError. The model must carry a set F0.
func (m *Model) DesignMatrix(
	toas []toa.TOA,
	opts DesignMatrixOptions,
) (*DesignMatrix, error) {
	release := m.scope.Use()
	defer release()

	if len(toas) == 0 {
		return nil, &EmptyDesignError{Msg: "no observations"}
	}

	f0, err := m.spinFrequency()
	if err != nil {
		return nil, err
	}

	var selected []param.Param
	for _, name := range m.paramOrder {
		p := m.params[name]
		if _, numeric := p.(param.Numeric); !numeric {
			continue
		}
		if p.Frozen() && !opts.IncludeFrozen {
			continue
		}
		selected = append(selected, p)
	}

	cols := len(selected)
	if opts.IncludeOffset {
		cols++
	}
	if cols == 0 {
		return nil, &EmptyDesignError{Msg: "no fittable parameters selected"}
	}

	d := &DesignMatrix{
		M:     mat.NewDense(len(toas), cols, nil),
		Names: make([]string, 0, cols),
		Units: make([]param.Unit, 0, cols),
	}

	col := 0
	if opts.IncludeOffset {
		for row := range toas {
			d.M.Set(row, col, 1.0)
		}
		d.Names = append(d.Names, "Offset")
		d.Units = append(d.Units, param.Per(param.Second, param.Second))
		col++
	}

	for _, p := range selected {
		column, err := m.designColumn(toas, p, f0)
		if err != nil {
			return nil, err
		}

		d.M.SetCol(col, column)
		d.Names = append(d.Names, p.Name())
		d.Units = append(d.Units, param.Per(param.Second, p.Unit()))
		col++
	}

	return d, nil
}

func (m *Model) designColumn(
	toas []toa.TOA,
	p param.Param,
	f0 float64,
) ([]float64, error) {
	name := p.Name()

	if _, analytic := m.phaseDerivs[name]; !analytic {
		if _, delayOnly := m.delayDerivs[name]; delayOnly {
			return m.DDelayDParam(toas, name)
		}
	}

	dphase, err := m.DPhaseDParam(toas, name)
	if err != nil {
		return nil, err
	}

	column := make([]float64, len(dphase))
	for i, v := range dphase {
		column[i] = v / f0
	}
	return column, nil
}

// spinFrequency reads F0 in Hz; the design matrix needs it to convert
// phase derivatives into time-residual derivatives.
func (m *Model) spinFrequency() (float64, error) {
	p, ok := m.params["F0"]
	if !ok {
		return 0, &UnavailableDerivativeError{
			Param: "F0",
			Msg:   "the design matrix requires a spin frequency",
		}
	}

	np, ok := p.(param.Numeric)
	if !ok || !np.IsSet() || np.Value() == 0 {
		return 0, &UnavailableDerivativeError{
			Param: "F0",
			Msg:   "the spin frequency is unset",
		}
	}

	f, ok := np.(*param.Float)
	if !ok {
		return np.Value(), nil
	}
	return f.ValueIn(param.Hertz)
}
