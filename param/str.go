package param

import (
	"fmt"
	"strings"
)

// A Str is a string-valued parameter such as the pulsar name. It is never
// fittable and stays frozen.
type Str struct {
	base

	value string
}

// NewStr creates a string parameter.
func NewStr(name string) *Str {
	s := &Str{}
	s.name = name
	s.frozen = true
	return s
}

// WithAliases adds the alternate names the model-file format accepts.
func (s *Str) WithAliases(aliases ...string) *Str {
	s.aliases = append(s.aliases, aliases...)
	return s
}

// WithDescription sets the help text.
func (s *Str) WithDescription(d string) *Str {
	s.description = d
	return s
}

// Value reads the string value.
func (s *Str) Value() string { return s.value }

// SetValue assigns the string value.
func (s *Str) SetValue(v string) {
	s.value = v
	s.set = true
}

// ParseLine implements Param.
func (s *Str) ParseLine(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || !s.matches(fields[0]) {
		return false, nil
	}

	s.value = fields[1]
	s.set = true

	return true, nil
}

// Line implements Param.
func (s *Str) Line() string {
	if !s.set {
		return ""
	}
	return fmt.Sprintf("%-15s %s", s.name, s.value)
}
