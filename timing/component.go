package timing

import (
	"strings"

	"github.com/pulsarlab/pulsetime/param"
	"github.com/pulsarlab/pulsetime/toa"
)

// DelayLevel tags a delay function with its place in the two-stage delay
// pipeline.
type DelayLevel int

const (
	// LevelL1 delays are pre-barycentric: they do not require
	// barycenter-corrected observation times. Every L1 function runs
	// before any L2 function.
	LevelL1 DelayLevel = iota + 1

	// LevelL2 delays are post-barycentric: they may assume the L1 total
	// is complete.
	LevelL2
)

// A DelayFunc contributes a per-observation delay in seconds.
type DelayFunc func(toas []toa.TOA) []float64

// A PhaseFunc contributes per-observation pulse phase. It receives the
// total delay of the full pipeline, never an itemized breakdown.
type PhaseFunc func(toas []toa.TOA, delay []float64) Phase

// A PhaseDerivFunc is an analytic d(phase)/d(parameter), in turns per
// parameter unit. Like a PhaseFunc it receives the total delay.
type PhaseDerivFunc func(toas []toa.TOA, delay []float64) []float64

// A DelayDerivFunc is an analytic d(delay)/d(parameter), in seconds per
// parameter unit.
type DelayDerivFunc func(toas []toa.TOA) []float64

// Match describes how a component decides whether a parsed model file
// includes it, beyond plain parameter-name intersection.
type Match struct {
	// ExcludeMarker names an opt-out tag, e.g. "NO_SS_SHAPIRO". A
	// component carrying a marker is included unless the tag appears in
	// the file.
	ExcludeMarker string

	// BinaryModel names the binary model a component implements. The
	// component is included exactly when the file's BINARY value equals
	// it.
	BinaryModel string
}

// A Component is one unit of physical behavior in a timing model. It owns
// parameters and contributes delay functions, phase functions, and analytic
// derivatives. Components are configured once via Setup after all
// parameters are populated and are read-only during evaluation.
type Component interface {
	Name() string

	// Params lists the parameters the component owns, in registration
	// order.
	Params() []param.Param

	// DelayFuncs lists the delay functions contributed at one level, in
	// registration order.
	DelayFuncs(level DelayLevel) []DelayFunc

	// PhaseFuncs lists the phase functions, in registration order.
	PhaseFuncs() []PhaseFunc

	// PhaseDeriv looks up the analytic phase derivative registered for
	// a parameter.
	PhaseDeriv(name string) (PhaseDerivFunc, bool)

	// DelayDerivs looks up the analytic delay derivatives registered
	// for a parameter.
	DelayDerivs(name string) []DelayDerivFunc

	// DerivParams lists the parameter names with registered analytic
	// derivatives, phase and delay.
	DerivParams() (phase, delay []string)

	// Setup validates required parameters and combinations once the
	// full model file has been read. A missing requirement is a
	// MissingParameterError.
	Setup() error

	// IsApplicable decides from the parameter names found in a model
	// file whether the component belongs in the composed model.
	IsApplicable(parsed map[string][]string) bool

	// Match exposes the component's matching tags.
	Match() Match
}

// ModelAware components receive the owning model when composed, so their
// functions can query shared quantities such as barycentric times.
type ModelAware interface {
	AttachModel(m *Model)
}

// ComponentBase carries the registries a Component needs and implements
// everything except Setup-time validation. Concrete components embed it and
// register their parameters and functions during construction.
type ComponentBase struct {
	name  string
	match Match

	params     []param.Param
	paramIndex map[string]param.Param

	delayFuncs  map[DelayLevel][]DelayFunc
	phaseFuncs  []PhaseFunc
	phaseDerivs map[string]PhaseDerivFunc
	delayDerivs map[string][]DelayDerivFunc
}

// NewComponentBase creates a ComponentBase.
func NewComponentBase(name string) *ComponentBase {
	return &ComponentBase{
		name:        name,
		paramIndex:  make(map[string]param.Param),
		delayFuncs:  make(map[DelayLevel][]DelayFunc),
		phaseDerivs: make(map[string]PhaseDerivFunc),
		delayDerivs: make(map[string][]DelayDerivFunc),
	}
}

// Name returns the component name.
func (c *ComponentBase) Name() string { return c.name }

// SetMatch sets the component's matching tags.
func (c *ComponentBase) SetMatch(m Match) { c.match = m }

// Match returns the component's matching tags.
func (c *ComponentBase) Match() Match { return c.match }

// AddParam registers a parameter the component owns. Registering two
// parameters with the same name is a programming error.
func (c *ComponentBase) AddParam(p param.Param) {
	if _, dup := c.paramIndex[p.Name()]; dup {
		panic("parameter " + p.Name() + " already registered on " + c.name)
	}

	c.params = append(c.params, p)
	c.paramIndex[p.Name()] = p
}

// Param looks up an owned parameter by name.
func (c *ComponentBase) Param(name string) (param.Param, bool) {
	p, ok := c.paramIndex[name]
	return p, ok
}

// Params lists the owned parameters in registration order.
func (c *ComponentBase) Params() []param.Param { return c.params }

// AddDelayFunc registers a delay contribution at the given level.
func (c *ComponentBase) AddDelayFunc(level DelayLevel, f DelayFunc) {
	c.delayFuncs[level] = append(c.delayFuncs[level], f)
}

// AddPhaseFunc registers a phase contribution.
func (c *ComponentBase) AddPhaseFunc(f PhaseFunc) {
	c.phaseFuncs = append(c.phaseFuncs, f)
}

// RegisterPhaseDeriv registers the analytic d(phase)/d(name).
func (c *ComponentBase) RegisterPhaseDeriv(name string, f PhaseDerivFunc) {
	if _, dup := c.phaseDerivs[name]; dup {
		panic("phase derivative for " + name + " already registered on " + c.name)
	}
	c.phaseDerivs[name] = f
}

// RegisterDelayDeriv registers an analytic d(delay)/d(name). A parameter
// may collect several delay derivatives; they are summed on evaluation.
func (c *ComponentBase) RegisterDelayDeriv(name string, f DelayDerivFunc) {
	c.delayDerivs[name] = append(c.delayDerivs[name], f)
}

// DelayFuncs implements Component.
func (c *ComponentBase) DelayFuncs(level DelayLevel) []DelayFunc {
	return c.delayFuncs[level]
}

// PhaseFuncs implements Component.
func (c *ComponentBase) PhaseFuncs() []PhaseFunc { return c.phaseFuncs }

// PhaseDeriv implements Component.
func (c *ComponentBase) PhaseDeriv(name string) (PhaseDerivFunc, bool) {
	f, ok := c.phaseDerivs[name]
	return f, ok
}

// DelayDerivs implements Component.
func (c *ComponentBase) DelayDerivs(name string) []DelayDerivFunc {
	return c.delayDerivs[name]
}

// DerivParams implements Component.
func (c *ComponentBase) DerivParams() (phase, delay []string) {
	for name := range c.phaseDerivs {
		phase = append(phase, name)
	}
	for name := range c.delayDerivs {
		delay = append(delay, name)
	}
	return phase, delay
}

// Setup is the default no-op validation; components with required
// parameters override it.
func (c *ComponentBase) Setup() error { return nil }

// IsApplicable implements the documented matching priority:
//  1. A component with an exclude marker is included unless the marker
//     appears in the file.
//  2. A binary-model component is included exactly when the file's BINARY
//     value names it.
//  3. Exact parameter-name intersection (PSR never counts).
//  4. Alias intersection.
//  5. A recognized indexed-parameter family prefix.
//
// Earlier rules decide alone; later rules run only when no earlier rule
// applies to the component.
func (c *ComponentBase) IsApplicable(parsed map[string][]string) bool {
	if c.match.ExcludeMarker != "" {
		_, excluded := parsed[strings.ToUpper(c.match.ExcludeMarker)]
		return !excluded
	}

	if c.match.BinaryModel != "" {
		vals, ok := parsed["BINARY"]
		return ok && len(vals) > 0 &&
			strings.EqualFold(vals[0], c.match.BinaryModel)
	}

	for _, p := range c.params {
		if p.Name() == "PSR" {
			continue
		}
		if _, ok := parsed[strings.ToUpper(p.Name())]; ok {
			return true
		}
	}

	for _, p := range c.params {
		for _, a := range p.Aliases() {
			if _, ok := parsed[strings.ToUpper(a)]; ok {
				return true
			}
		}
	}

	for _, p := range c.params {
		ip, isIndexed := p.(param.Indexed)
		if !isIndexed {
			continue
		}
		for name := range parsed {
			prefix, _, ok := param.SplitIndexed(name)
			if ok && prefix == ip.Prefix() {
				return true
			}
		}
	}

	return false
}
