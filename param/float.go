package param

import (
	"fmt"
	"strconv"
	"strings"
)

// A Float is a scalar parameter with a physical unit, e.g. F0 or DM.
// Parameters start frozen; a fitter or a model-file fit flag frees them.
type Float struct {
	base

	value       float64
	uncertainty float64
}

// NewFloat creates a float parameter measured in the given unit.
func NewFloat(name string, unit Unit) *Float {
	f := &Float{}
	f.name = name
	f.unit = unit
	f.frozen = true
	return f
}

// WithAliases adds the alternate names the model-file format accepts.
func (f *Float) WithAliases(aliases ...string) *Float {
	f.aliases = append(f.aliases, aliases...)
	return f
}

// WithDescription sets the help text.
func (f *Float) WithDescription(d string) *Float {
	f.description = d
	return f
}

// WithValue assigns an initial value in the parameter's own unit.
func (f *Float) WithValue(v float64) *Float {
	f.value = v
	f.set = true
	return f
}

// Value reads the value in the parameter's own unit.
func (f *Float) Value() float64 { return f.value }

// ValueIn reads the value converted to another unit of the same family.
func (f *Float) ValueIn(u Unit) (float64, error) {
	v, err := Convert(f.value, f.unit, u)
	if err != nil {
		return 0, &UnitError{Param: f.name, From: f.unit, To: u}
	}
	return v, nil
}

// SetValue assigns a value given in unit u, converting it into the
// parameter's own unit. A unit from another family is a UnitError.
func (f *Float) SetValue(v float64, u Unit) error {
	converted, err := Convert(v, u, f.unit)
	if err != nil {
		return &UnitError{Param: f.name, From: u, To: f.unit}
	}

	f.value = converted
	f.set = true

	return nil
}

// Uncertainty reads the 1-sigma uncertainty in the parameter's own unit.
func (f *Float) Uncertainty() float64 { return f.uncertainty }

// SetUncertainty assigns the 1-sigma uncertainty in the parameter's own
// unit.
func (f *Float) SetUncertainty(u float64) { f.uncertainty = u }

// ParseLine implements Param.
func (f *Float) ParseLine(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || !f.matches(fields[0]) {
		return false, nil
	}

	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return true, fmt.Errorf("parameter %s: bad value %q: %w",
			f.name, fields[1], err)
	}
	f.value = v
	f.set = true

	if len(fields) > 2 {
		u, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return true, fmt.Errorf("parameter %s: bad uncertainty %q: %w",
				f.name, fields[2], err)
		}
		f.uncertainty = u
	}

	if len(fields) > 3 {
		f.applyFitFlag(fields[3])
	}

	return true, nil
}

// Line implements Param.
func (f *Float) Line() string {
	if !f.set {
		return ""
	}

	return fmt.Sprintf("%-15s %-25s %-25s %s",
		f.name,
		strconv.FormatFloat(f.value, 'g', -1, 64),
		strconv.FormatFloat(f.uncertainty, 'g', -1, 64),
		fitFlag(f.frozen))
}
