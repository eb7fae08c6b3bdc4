// Package param implements the fittable parameters that timing-model
// components declare. A parameter carries a value with a physical unit, an
// uncertainty, a frozen flag, and the textual form used by model files.
package param

import (
	"fmt"
	"math"
)

// Unit names a physical unit.
type Unit string

// Units understood by the conversion table.
const (
	Dimensionless Unit = ""
	Second        Unit = "s"
	Millisecond   Unit = "ms"
	Microsecond   Unit = "us"
	Day           Unit = "day"
	Hertz         Unit = "Hz"
	Kilohertz     Unit = "kHz"
	Megahertz     Unit = "MHz"
	HzPerSec      Unit = "Hz/s"
	HzPerSec2     Unit = "Hz/s^2"
	Degree        Unit = "deg"
	Radian        Unit = "rad"
	PcPerCC       Unit = "pc/cm^3"
)

type unitFamily int

const (
	familyNone unitFamily = iota
	familyTime
	familyFrequency
	familyAngle
)

// scale maps a unit to its family and the factor to the family base unit.
var scale = map[Unit]struct {
	family unitFamily
	factor float64
}{
	Second:      {familyTime, 1},
	Millisecond: {familyTime, 1e-3},
	Microsecond: {familyTime, 1e-6},
	Day:         {familyTime, 86400},
	Hertz:       {familyFrequency, 1},
	Kilohertz:   {familyFrequency, 1e3},
	Megahertz:   {familyFrequency, 1e6},
	Degree:      {familyAngle, math.Pi / 180},
	Radian:      {familyAngle, 1},
}

// A UnitError reports an assignment or read in a unit that the parameter
// cannot convert to or from.
type UnitError struct {
	Param string
	From  Unit
	To    Unit
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("parameter %s: cannot convert %q to %q",
		e.Param, e.From, e.To)
}

// Convert rescales v from one unit to another. Units convert only within
// the same family; anything else is a UnitError.
func Convert(v float64, from, to Unit) (float64, error) {
	if from == to {
		return v, nil
	}

	f, fOK := scale[from]
	t, tOK := scale[to]
	if !fOK || !tOK || f.family != t.family {
		return 0, &UnitError{From: from, To: to}
	}

	return v * f.factor / t.factor, nil
}

// Per composes a quotient unit, e.g. Per(Second, Hertz) = "s/Hz". It is
// used to label design-matrix columns.
func Per(num, den Unit) Unit {
	if den == Dimensionless {
		return num
	}
	return Unit(string(num) + "/" + string(den))
}
