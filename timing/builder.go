package timing

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/pulsarlab/pulsetime/deriv"
)

// A ModelBuilder composes a Model from a candidate component list and a
// model file: it scans the file for the parameter names it mentions,
// selects the applicable candidates in order, and then parses the file into
// the composed model.
type ModelBuilder struct {
	candidates []Component
	logger     *log.Logger
	config     deriv.Config
}

// MakeModelBuilder creates a builder with default settings.
func MakeModelBuilder() ModelBuilder {
	return ModelBuilder{config: deriv.DefaultConfig()}
}

// WithComponents appends candidate components. Order is preserved and
// becomes evaluation order for the selected components, so candidates must
// be listed in physical dependency order.
func (b ModelBuilder) WithComponents(cs ...Component) ModelBuilder {
	b.candidates = append(b.candidates, cs...)
	return b
}

// WithLogger sets the logger the built model warns through.
func (b ModelBuilder) WithLogger(l *log.Logger) ModelBuilder {
	b.logger = l
	return b
}

// WithDerivConfig tunes the built model's numeric derivative estimator.
func (b ModelBuilder) WithDerivConfig(cfg deriv.Config) ModelBuilder {
	b.config = cfg
	return b
}

// Build reads the model file, composes the applicable candidates, and
// parses the file into the result.
func (b ModelBuilder) Build(parfile io.Reader) (*Model, error) {
	content, err := io.ReadAll(parfile)
	if err != nil {
		return nil, fmt.Errorf("reading parfile: %w", err)
	}

	parsed := scanParNames(content)

	m := NewModel()
	if b.logger != nil {
		m.SetLogger(b.logger)
	}
	m.SetDerivConfig(b.config)

	for _, c := range b.candidates {
		if !c.IsApplicable(parsed) {
			continue
		}
		if err := m.AddComponent(c); err != nil {
			return nil, err
		}
	}

	if err := m.ReadParFile(bytes.NewReader(content)); err != nil {
		return nil, err
	}

	return m, nil
}

// scanParNames collects the upper-cased parameter names a model file
// mentions, with their value fields, for applicability matching.
func scanParNames(content []byte) map[string][]string {
	parsed := make(map[string][]string)

	for _, raw := range strings.Split(string(content), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "C ") {
			continue
		}

		fields := strings.Fields(line)
		name := strings.ToUpper(fields[0])
		if _, seen := parsed[name]; !seen {
			parsed[name] = fields[1:]
		}
	}

	return parsed
}
