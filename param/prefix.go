package param

import "strconv"

// A Prefix is one member of an indexed parameter family, e.g. DMX1 within
// the DMX family. It behaves like a Float whose name is the family prefix
// followed by the index. (prefix, index) pairs must be unique within one
// model; the timing model enforces that when components register.
type Prefix struct {
	Float

	prefix string
	index  int
}

// NewPrefix creates the family member prefix+index, e.g. NewPrefix("DMX",
// 2, ...) creates DMX2.
func NewPrefix(prefix string, index int, unit Unit) *Prefix {
	p := &Prefix{}
	p.name = prefix + strconv.Itoa(index)
	p.unit = unit
	p.frozen = true
	p.prefix = prefix
	p.index = index
	return p
}

// WithAliasPrefixes adds alternate family prefixes; the member answers to
// each of them with its own index appended.
func (p *Prefix) WithAliasPrefixes(prefixes ...string) *Prefix {
	for _, pre := range prefixes {
		p.aliases = append(p.aliases, pre+strconv.Itoa(p.index))
	}
	return p
}

// WithDescription sets the help text.
func (p *Prefix) WithDescription(d string) *Prefix {
	p.description = d
	return p
}

// WithValue assigns an initial value in the parameter's own unit.
func (p *Prefix) WithValue(v float64) *Prefix {
	p.value = v
	p.set = true
	return p
}

// Prefix reports the family prefix.
func (p *Prefix) Prefix() string { return p.prefix }

// Index reports the member's index within the family.
func (p *Prefix) Index() int { return p.index }
