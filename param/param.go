package param

import (
	"strconv"
	"strings"
)

// A Param is a named model quantity that a timing model can read from and
// write back to the textual model-file format.
type Param interface {
	Name() string
	Aliases() []string
	Unit() Unit
	Description() string

	// Frozen reports whether a fitter must hold this parameter fixed.
	Frozen() bool
	SetFrozen(frozen bool)

	// IsSet reports whether the parameter has been assigned a value,
	// either directly or from a model file.
	IsSet() bool

	// ParseLine matches a model-file line against the parameter's name
	// and aliases. On a match it assigns the value and the optional
	// uncertainty and fit-flag fields, and reports true. A line for a
	// different parameter is not an error.
	ParseLine(line string) (bool, error)

	// Line serializes the parameter as one model-file line. It returns
	// the empty string for an unset parameter. Line and ParseLine
	// round-trip.
	Line() string
}

// Numeric is a Param holding a plain scalar that derivative engines can
// step and fitters can adjust.
type Numeric interface {
	Param

	Value() float64
	SetValue(v float64, u Unit) error
	Uncertainty() float64
	SetUncertainty(u float64)
}

// Indexed is implemented by prefix parameters, the members of an indexed
// family such as DMX1, DMX2, ...
type Indexed interface {
	Prefix() string
	Index() int
}

// SplitIndexed splits a name of the form <prefix><digits> into its prefix
// and index. ok is false when the name carries no trailing index.
func SplitIndexed(name string) (prefix string, index int, ok bool) {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) || i == 0 {
		return "", 0, false
	}

	index, err := strconv.Atoi(name[i:])
	if err != nil {
		return "", 0, false
	}

	return name[:i], index, true
}

// base carries the fields every parameter type shares.
type base struct {
	name        string
	aliases     []string
	description string
	unit        Unit
	frozen      bool
	set         bool
}

func (b *base) Name() string        { return b.name }
func (b *base) Aliases() []string   { return b.aliases }
func (b *base) Unit() Unit          { return b.unit }
func (b *base) Description() string { return b.description }
func (b *base) Frozen() bool        { return b.frozen }
func (b *base) SetFrozen(f bool)    { b.frozen = f }
func (b *base) IsSet() bool         { return b.set }

// matches reports whether field names this parameter, case-insensitively,
// by its name or any alias.
func (b *base) matches(field string) bool {
	if strings.EqualFold(field, b.name) {
		return true
	}
	for _, a := range b.aliases {
		if strings.EqualFold(field, a) {
			return true
		}
	}
	return false
}

// applyFitFlag interprets the optional trailing fit-flag field: 1 frees
// the parameter, 0 freezes it.
func (b *base) applyFitFlag(field string) {
	switch field {
	case "1":
		b.frozen = false
	case "0":
		b.frozen = true
	}
}

func fitFlag(frozen bool) string {
	if frozen {
		return "0"
	}
	return "1"
}
