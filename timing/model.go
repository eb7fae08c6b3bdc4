package timing

import (
	"log"
	"os"
	"sort"

	"github.com/pulsarlab/pulsetime/deriv"
	"github.com/pulsarlab/pulsetime/memo"
	"github.com/pulsarlab/pulsetime/param"
	"github.com/pulsarlab/pulsetime/toa"
)

// A Model is the composition of timing-model components: it owns the
// ordered delay and phase pipelines, the unified parameter table, and the
// memoization scope evaluation runs under. A Model and its parameters must
// not be mutated or evaluated from more than one goroutine at a time;
// parallel fitters need one Model instance per worker.
type Model struct {
	components []Component

	params     map[string]param.Param
	paramOrder []string
	prefixes   map[string]map[int]string

	phaseDerivs map[string]PhaseDerivFunc
	delayDerivs map[string][]DelayDerivFunc

	binaryModel string

	scope  memo.Scope
	config deriv.Config
	logger *log.Logger

	psr *param.Str
}

// NewModel creates an empty model holding only the mandatory PSR name
// parameter.
func NewModel() *Model {
	m := &Model{
		params:      make(map[string]param.Param),
		prefixes:    make(map[string]map[int]string),
		phaseDerivs: make(map[string]PhaseDerivFunc),
		delayDerivs: make(map[string][]DelayDerivFunc),
		config:      deriv.DefaultConfig(),
		logger:      log.New(os.Stderr, "", log.LstdFlags),
	}

	m.psr = param.NewStr("PSR").
		WithAliases("PSRJ", "PSRB").
		WithDescription("Source name")
	m.registerParam(m.psr)

	return m
}

// SetLogger replaces the logger parse warnings are written to.
func (m *Model) SetLogger(l *log.Logger) { m.logger = l }

// SetDerivConfig tunes the numeric derivative estimator.
func (m *Model) SetDerivConfig(cfg deriv.Config) { m.config = cfg.Sanitized() }

// PSR returns the pulsar name parameter.
func (m *Model) PSR() *param.Str { return m.psr }

// BinaryModel reports the binary model name the composition carries, or ""
// for an isolated pulsar.
func (m *Model) BinaryModel() string { return m.binaryModel }

// Components lists the composed components in registration order.
func (m *Model) Components() []Component { return m.components }

// Param looks up a parameter in the unified table.
func (m *Model) Param(name string) (param.Param, bool) {
	p, ok := m.params[name]
	return p, ok
}

// ParamNames lists the unified parameter table in registration order.
func (m *Model) ParamNames() []string { return m.paramOrder }

func (m *Model) registerParam(p param.Param) {
	m.params[p.Name()] = p
	m.paramOrder = append(m.paramOrder, p.Name())

	if ip, ok := p.(param.Indexed); ok {
		family := m.prefixes[ip.Prefix()]
		if family == nil {
			family = make(map[int]string)
			m.prefixes[ip.Prefix()] = family
		}
		family[ip.Index()] = p.Name()
	}
}

// AddComponent composes a component into the model: its delay and phase
// functions are appended in add-order to the pipelines, its parameters are
// merged into the unified table, and its analytic derivative registries are
// merged. Add-order is evaluation order, so physically dependent components
// must be added after the components they depend on.
func (m *Model) AddComponent(c Component) error {
	for _, p := range c.Params() {
		if existing, ok := m.params[p.Name()]; ok && existing != p {
			return &ParamConflictError{Param: p.Name(), Component: c.Name()}
		}
	}

	for _, p := range c.Params() {
		ip, isIndexed := p.(param.Indexed)
		if !isIndexed {
			continue
		}
		if owner, ok := m.prefixes[ip.Prefix()][ip.Index()]; ok && owner != p.Name() {
			return &ParamConflictError{Param: p.Name(), Component: c.Name()}
		}
	}

	phaseDerivParams, _ := c.DerivParams()
	for _, name := range phaseDerivParams {
		if _, ok := m.phaseDerivs[name]; ok {
			return &ParamConflictError{Param: "d_phase_d_" + name, Component: c.Name()}
		}
	}

	for _, p := range c.Params() {
		if _, ok := m.params[p.Name()]; !ok {
			m.registerParam(p)
		}
	}

	phaseDerivParams, delayDerivParams := c.DerivParams()
	for _, name := range phaseDerivParams {
		f, _ := c.PhaseDeriv(name)
		m.phaseDerivs[name] = f
	}
	for _, name := range delayDerivParams {
		m.delayDerivs[name] = append(m.delayDerivs[name], c.DelayDerivs(name)...)
	}

	if bm := c.Match().BinaryModel; bm != "" {
		m.binaryModel = bm
	}

	if ma, ok := c.(ModelAware); ok {
		ma.AttachModel(m)
	}

	m.components = append(m.components, c)

	return nil
}

// Use activates the model's memoization scope for a batch of evaluation
// calls and returns the release function. Fitters wrap each iteration:
//
//	release := model.Use()
//	defer release()
//
// Nested entry points share the scope, so repeated queries for the same
// observation set reuse intermediate results. Parameters must not change
// while a scope is active; the only cache invalidation is scope release.
func (m *Model) Use() (release func()) { return m.scope.Use() }

// L1Delay evaluates only the pre-barycentric delay pipeline: the summed
// contribution of every L1 function, in registration order, in seconds.
func (m *Model) L1Delay(toas []toa.TOA) []float64 {
	release := m.scope.Use()
	defer release()

	return memo.Cached(&m.scope, "l1_delay", func() []float64 {
		return m.delayUpTo(toas, LevelL1)
	})
}

// Delay evaluates the full delay pipeline: every L1 function completes for
// every observation before the first L2 function runs, because L2 functions
// assume barycenter-corrected times. The result is the total correction, in
// seconds, to subtract from each recorded arrival time to obtain the
// emission time.
func (m *Model) Delay(toas []toa.TOA) []float64 {
	release := m.scope.Use()
	defer release()

	return memo.Cached(&m.scope, "delay", func() []float64 {
		return m.delayUpTo(toas, LevelL2)
	})
}

func (m *Model) delayUpTo(toas []toa.TOA, level DelayLevel) []float64 {
	total := make([]float64, len(toas))
	for l := LevelL1; l <= level; l++ {
		for _, c := range m.components {
			for _, f := range c.DelayFuncs(l) {
				accumulate(total, f(toas))
			}
		}
	}
	return total
}

// BarycentricTOAs derives the barycenter-corrected observation instants:
// the recorded times minus the L1 delay total.
func (m *Model) BarycentricTOAs(toas []toa.TOA) []toa.MJD {
	release := m.scope.Use()
	defer release()

	return memo.Cached(&m.scope, "barycentric_toas", func() []toa.MJD {
		delay := m.L1Delay(toas)
		out := make([]toa.MJD, len(toas))
		for i, t := range toas {
			out[i] = t.Time.AddSeconds(-delay[i])
		}
		return out
	})
}

// Phase evaluates the model-predicted pulse phase for the observations.
// The total delay is computed once and handed to every phase function in
// registration order; contributions accumulate under the integer/fraction
// carry rule. The returned fraction is signed; use Reported for the
// non-negative reporting convention.
func (m *Model) Phase(toas []toa.TOA) Phase {
	release := m.scope.Use()
	defer release()

	return memo.Cached(&m.scope, "phase", func() Phase {
		return m.phaseNoCache(toas)
	})
}

// phaseNoCache evaluates phase bypassing the scope. The derivative engine
// steps parameters and observation times between evaluations, which would
// otherwise poison results cached by call identity.
func (m *Model) phaseNoCache(toas []toa.TOA) Phase {
	delay := m.delayUpTo(toas, LevelL2)

	total := ZeroPhase(len(toas))
	for _, c := range m.components {
		for _, f := range c.PhaseFuncs() {
			total = total.Add(f(toas, delay))
		}
	}
	return total
}

// PrefixMapping returns index → parameter name for one prefix family.
func (m *Model) PrefixMapping(prefix string) map[int]string {
	release := m.scope.Use()
	defer release()

	return memo.Cached(&m.scope, "prefix_mapping:"+prefix, func() map[int]string {
		mapping := make(map[int]string, len(m.prefixes[prefix]))
		for index, name := range m.prefixes[prefix] {
			mapping[index] = name
		}
		return mapping
	})
}

// PrefixIndices returns the sorted indices present in one prefix family.
func (m *Model) PrefixIndices(prefix string) []int {
	mapping := m.PrefixMapping(prefix)
	indices := make([]int, 0, len(mapping))
	for i := range mapping {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

func accumulate(total, contribution []float64) {
	for i, v := range contribution {
		total[i] += v
	}
}
