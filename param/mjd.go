package param

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pulsarlab/pulsetime/toa"
)

// An Epoch is a time-valued parameter such as PEPOCH, kept as a
// high-precision MJD. Epochs are reference instants, not fitted scalars,
// so Epoch does not implement Numeric.
type Epoch struct {
	base

	value       toa.MJD
	uncertainty float64
}

// NewEpoch creates an MJD-valued parameter.
func NewEpoch(name string) *Epoch {
	e := &Epoch{}
	e.name = name
	e.unit = Day
	e.frozen = true
	return e
}

// WithAliases adds the alternate names the model-file format accepts.
func (e *Epoch) WithAliases(aliases ...string) *Epoch {
	e.aliases = append(e.aliases, aliases...)
	return e
}

// WithDescription sets the help text.
func (e *Epoch) WithDescription(d string) *Epoch {
	e.description = d
	return e
}

// WithValue assigns an initial instant.
func (e *Epoch) WithValue(v toa.MJD) *Epoch {
	e.value = v
	e.set = true
	return e
}

// MJD reads the instant.
func (e *Epoch) MJD() toa.MJD { return e.value }

// SetMJD assigns the instant.
func (e *Epoch) SetMJD(v toa.MJD) {
	e.value = v
	e.set = true
}

// Uncertainty reads the 1-sigma uncertainty in days.
func (e *Epoch) Uncertainty() float64 { return e.uncertainty }

// ParseLine implements Param. The day count is parsed with its integer and
// fractional digits separated so the full precision of the text survives.
func (e *Epoch) ParseLine(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || !e.matches(fields[0]) {
		return false, nil
	}

	v, err := toa.ParseMJD(fields[1])
	if err != nil {
		return true, fmt.Errorf("parameter %s: %w", e.name, err)
	}
	e.value = v
	e.set = true

	if len(fields) > 2 {
		u, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return true, fmt.Errorf("parameter %s: bad uncertainty %q: %w",
				e.name, fields[2], err)
		}
		e.uncertainty = u
	}

	if len(fields) > 3 {
		e.applyFitFlag(fields[3])
	}

	return true, nil
}

// Line implements Param.
func (e *Epoch) Line() string {
	if !e.set {
		return ""
	}

	return fmt.Sprintf("%-15s %-25s %-25s %s",
		e.name,
		e.value.String(),
		strconv.FormatFloat(e.uncertainty, 'g', -1, 64),
		fitFlag(e.frozen))
}
