package timing

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pulsarlab/pulsetime/param"
)

// Model-file directives that are not parameters and not worth a warning.
var ignoreParams = map[string]bool{
	"START": true, "FINISH": true, "SOLARN0": true, "EPHEM": true,
	"CLK": true, "UNITS": true, "TIMEEPH": true, "T2CMETHOD": true,
	"CORRECT_TROPOSPHERE": true, "DILATEFREQ": true, "NTOA": true,
	"CLOCK": true, "TRES": true, "TZRMJD": true, "TZRFRQ": true,
	"TZRSITE": true, "NITS": true, "IBOOT": true, "BINARY": true,
}

// Indexed families that are recognized but not modeled.
var ignorePrefixes = []string{"DMXF1_", "DMXF2_", "DMXEP_"}

// ReadParFile populates the model's parameters from the textual model-file
// format: whitespace-delimited NAME VALUE [UNCERTAINTY] [FIT_FLAG] lines,
// with # and "C " comments. Each line is offered to every parameter until
// one matches. Duplicate names get an occurrence suffix (the second DMX
// line becomes DMX2) instead of silently overwriting. Unrecognized lines
// are warnings unless ignorable. After the whole file is consumed, every
// component's Setup runs; a missing required parameter is fatal.
func (m *Model) ReadParFile(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	occurrences := make(map[string]int)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "C ") {
			continue
		}

		fields := strings.Fields(line)
		name := strings.ToUpper(fields[0])

		occurrences[name]++
		if occurrences[name] > 1 {
			fields[0] += strconv.Itoa(occurrences[name])
			line = strings.Join(fields, " ")
		}

		parsed := false
		for _, pname := range m.paramOrder {
			matched, err := m.params[pname].ParseLine(line)
			if err != nil {
				m.logger.Printf("parfile line %q: %v", line, err)
			}
			if matched {
				parsed = true
				break
			}
		}

		if !parsed && !m.ignorable(name) {
			m.logger.Printf("unrecognized parfile line %q", line)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading parfile: %w", err)
	}

	// Cross-parameter validation needs the complete parameter set, so it
	// only runs once the whole file is consumed.
	for _, c := range m.components {
		if err := c.Setup(); err != nil {
			return err
		}
	}

	return nil
}

func (m *Model) ignorable(name string) bool {
	if ignoreParams[name] {
		return true
	}

	for _, prefix := range ignorePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	if prefix, _, ok := param.SplitIndexed(name); ok {
		if _, recognized := m.prefixes[prefix]; recognized {
			return true
		}
	}

	return false
}

// AsParFile serializes the model back to the model-file format: every set
// parameter's line, the units-system tag, and the binary-model tag when one
// applies. The output round-trips through ReadParFile.
func (m *Model) AsParFile() string {
	var b strings.Builder

	for _, name := range m.paramOrder {
		if line := m.params[name].Line(); line != "" {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	b.WriteString("UNITS TDB\n")
	if m.binaryModel != "" {
		fmt.Fprintf(&b, "BINARY %s\n", m.binaryModel)
	}

	return b.String()
}
