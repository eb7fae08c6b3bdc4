package recording

import (
	"github.com/rs/xid"

	"github.com/pulsarlab/pulsetime/param"
	"github.com/pulsarlab/pulsetime/timing"
	"github.com/pulsarlab/pulsetime/toa"
)

// Table names a Run writes to.
const (
	PhaseTable    = "phases"
	ResidualTable = "residuals"
	DesignTable   = "design_matrix"
	ParamTable    = "params"
)

// A PhaseRow is one observation's predicted phase.
type PhaseRow struct {
	Run      string
	TOA      float64
	Obs      string
	FreqHz   float64
	TurnInt  int64
	TurnFrac float64
}

// A ResidualRow is one observation's timing residual in seconds.
type ResidualRow struct {
	Run     string
	TOA     float64
	Obs     string
	Seconds float64
}

// A DesignRow is one design-matrix entry.
type DesignRow struct {
	Run   string
	Row   int
	Param string
	Unit  string
	Value float64
}

// A ParamRow is one numeric parameter's state at recording time.
type ParamRow struct {
	Run         string
	Name        string
	Unit        string
	Value       float64
	Uncertainty float64
	Frozen      bool
}

// A Run tags everything recorded through it with a unique run identifier,
// so several evaluations can share one database.
type Run struct {
	rec Recorder
	id  string
}

// NewRun starts a recording run on the recorder.
func NewRun(rec Recorder) *Run {
	return &Run{rec: rec, id: xid.New().String()}
}

// ID returns the run identifier rows are tagged with.
func (r *Run) ID() string { return r.id }

func (r *Run) ensureTable(name string, sample any) {
	for _, t := range r.rec.ListTables() {
		if t == name {
			return
		}
	}
	r.rec.CreateTable(name, sample)
}

// RecordPhases writes one row per observation with the predicted phase in
// the reporting convention.
func (r *Run) RecordPhases(toas []toa.TOA, ph timing.Phase) {
	r.ensureTable(PhaseTable, PhaseRow{})

	reported := ph.Reported()
	for i, t := range toas {
		r.rec.Insert(PhaseTable, PhaseRow{
			Run:      r.id,
			TOA:      t.Time.Float(),
			Obs:      t.Obs,
			FreqHz:   float64(t.Freq),
			TurnInt:  reported.Int[i],
			TurnFrac: reported.Frac[i],
		})
	}
}

// RecordResiduals writes the nearest-turn timing residual of each
// observation: the fractional phase folded into [-0.5, 0.5) turns and
// converted to seconds with the spin frequency.
func (r *Run) RecordResiduals(toas []toa.TOA, ph timing.Phase, f0 float64) {
	r.ensureTable(ResidualTable, ResidualRow{})

	n := ph.Normalized()
	for i, t := range toas {
		frac := n.Frac[i]
		if frac >= 0.5 {
			frac--
		} else if frac < -0.5 {
			frac++
		}

		r.rec.Insert(ResidualTable, ResidualRow{
			Run:     r.id,
			TOA:     t.Time.Float(),
			Obs:     t.Obs,
			Seconds: frac / f0,
		})
	}
}

// RecordDesignMatrix writes every matrix entry with its parameter name and
// column unit.
func (r *Run) RecordDesignMatrix(d *timing.DesignMatrix) {
	r.ensureTable(DesignTable, DesignRow{})

	rows, cols := d.Dims()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			r.rec.Insert(DesignTable, DesignRow{
				Run:   r.id,
				Row:   row,
				Param: d.Names[col],
				Unit:  string(d.Units[col]),
				Value: d.M.At(row, col),
			})
		}
	}
}

// RecordParams writes the model's numeric parameter table.
func (r *Run) RecordParams(m *timing.Model) {
	r.ensureTable(ParamTable, ParamRow{})

	for _, name := range m.ParamNames() {
		p, _ := m.Param(name)
		np, ok := p.(param.Numeric)
		if !ok || !np.IsSet() {
			continue
		}

		r.rec.Insert(ParamTable, ParamRow{
			Run:         r.id,
			Name:        p.Name(),
			Unit:        string(p.Unit()),
			Value:       np.Value(),
			Uncertainty: np.Uncertainty(),
			Frozen:      p.Frozen(),
		})
	}
}
