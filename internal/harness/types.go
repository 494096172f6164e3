package harness

// Stats are the structural counts of a converted target.
type Stats struct {
	// OpCounts maps operation names to occurrence counts.
	// Populated for the dataflow and circuit backends; nil for codegen,
	// which exposes line counts instead.
	OpCounts map[string]int

	// ConditionalCount is the number of outcome-conditioned corrections.
	ConditionalCount int

	// Outputs is the number of output wires.
	Outputs int

	// Outcomes is the number of exposed measurement outcomes.
	Outcomes int

	// Lines is the number of emitted body lines (codegen only).
	Lines int
}

// Result captures the outcome of running a scenario.
type Result struct {
	// ScenarioName echoes the scenario that produced this result.
	ScenarioName string

	// Backend names the backend the scenario converted through.
	Backend string

	// PatternHash is the canonical hash of the loaded pattern.
	PatternHash string

	// Render is the backend's textual rendering of the target.
	Render string

	// Fingerprint is the structural hash of the target.
	Fingerprint string

	// Stats holds the structural counts used by assertions.
	Stats Stats

	// Errors collects assertion failures. Empty means the scenario passed.
	Errors []string
}

// Passed reports whether all assertions held.
func (r *Result) Passed() bool { return len(r.Errors) == 0 }

// AddError records an assertion failure.
func (r *Result) AddError(msg string) { r.Errors = append(r.Errors, msg) }
