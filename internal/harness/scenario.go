package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario. A scenario loads a pattern
// definition, converts it through one backend, and asserts on the rendered
// target and its structural counts.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden file
	// name when the scenario runs under RunWithGolden.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Pattern is the path to the CUE pattern definition.
	// Relative paths are resolved against the scenario file location.
	Pattern string `yaml:"pattern"`

	// Backend names the conversion target: dataflow, codegen, or circuit.
	Backend string `yaml:"backend"`

	// Assertions validate the conversion result.
	// Supported types: render_contains, op_count, conditional_count,
	// outcome_count, output_count, fingerprint
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one property of a conversion result.
type Assertion struct {
	// Type specifies the assertion type:
	// - "render_contains": Check the rendered target contains a substring
	// - "op_count": Check an operation appears exactly N times
	// - "conditional_count": Check the number of outcome-conditioned gates
	// - "outcome_count": Check the number of exposed measurement outcomes
	// - "output_count": Check the number of output wires
	// - "fingerprint": Check the structural hash of the target
	Type string `yaml:"type"`

	// Text is the expected substring (used by render_contains).
	Text string `yaml:"text,omitempty"`

	// Op is the operation name (used by op_count).
	Op string `yaml:"op,omitempty"`

	// Count is the expected occurrence count (used by op_count,
	// conditional_count, outcome_count, output_count).
	Count int `yaml:"count,omitempty"`

	// Value is the expected fingerprint hex string (used by fingerprint).
	Value string `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertRenderContains   = "render_contains"
	AssertOpCount          = "op_count"
	AssertConditionalCount = "conditional_count"
	AssertOutcomeCount     = "outcome_count"
	AssertOutputCount      = "output_count"
	AssertFingerprint      = "fingerprint"
)

// Backend name constants accepted by Run.
const (
	BackendDataflow = "dataflow"
	BackendCodegen  = "codegen"
	BackendCircuit  = "circuit"
)

// LoadScenario reads and parses a scenario YAML file. The pattern path is
// resolved relative to the scenario file's directory. Returns an error if
// the file doesn't exist, is malformed, contains unknown fields (typos),
// or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the pattern path relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Pattern != "" && !filepath.IsAbs(scenario.Pattern) && basePath != "" {
		scenario.Pattern = filepath.Join(basePath, scenario.Pattern)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Pattern == "" {
		return fmt.Errorf("pattern is required")
	}
	if _, err := os.Stat(s.Pattern); os.IsNotExist(err) {
		return fmt.Errorf("pattern file not found: %s", s.Pattern)
	}

	switch s.Backend {
	case BackendDataflow, BackendCodegen, BackendCircuit:
	case "":
		return fmt.Errorf("backend is required")
	default:
		return fmt.Errorf("unknown backend %q", s.Backend)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRenderContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for render_contains", index)
		}
	case AssertOpCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for op_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for op_count", index)
		}
	case AssertConditionalCount, AssertOutcomeCount, AssertOutputCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertFingerprint:
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for fingerprint", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
