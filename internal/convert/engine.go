package convert

import (
	"log/slog"
	"slices"

	"github.com/roach88/weft/internal/clifford"
	"github.com/roach88/weft/internal/pattern"
)

// State is the engine lifecycle state.
type State int

const (
	StateInitialized State = iota
	StateProcessing
	StateFinalized
	StateFailed
)

// String returns the lifecycle state name.
func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateProcessing:
		return "processing"
	case StateFinalized:
		return "finalized"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Engine drives one conversion: a stateful single-pass fold of a pattern's
// command stream onto a backend. An Engine converts exactly one pattern;
// create a fresh one per conversion.
type Engine[W, O any] struct {
	backend  Backend[W, O]
	log      *slog.Logger
	obs      Observer
	state    State
	wires    map[pattern.NodeID]W // live wire slots, exclusively owned
	outcomes map[pattern.NodeID]O // immutable once written
}

// Option configures an Engine.
type Option[W, O any] func(*Engine[W, O])

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger[W, O any](log *slog.Logger) Option[W, O] {
	return func(e *Engine[W, O]) { e.log = log }
}

// WithObserver attaches a conversion observer (e.g. a trace recorder).
func WithObserver[W, O any](obs Observer) Option[W, O] {
	return func(e *Engine[W, O]) { e.obs = obs }
}

// NewEngine creates an engine bound to one backend instance.
func NewEngine[W, O any](b Backend[W, O], opts ...Option[W, O]) *Engine[W, O] {
	e := &Engine[W, O]{
		backend:  b,
		log:      slog.Default(),
		state:    StateInitialized,
		wires:    make(map[pattern.NodeID]W),
		outcomes: make(map[pattern.NodeID]O),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Convert validates p and runs it through backend b. On success the
// backend holds the finished target representation; on failure the error
// is a *pattern.Error identifying the offending command.
func Convert[W, O any](p *pattern.Pattern, b Backend[W, O], opts ...Option[W, O]) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return NewEngine(b, opts...).Run(p)
}

// State returns the engine lifecycle state.
func (e *Engine[W, O]) State() State { return e.state }

// LiveWires returns the number of currently bound wire slots. Exposed for
// the wire-conservation property: after any processed prefix it equals the
// number of prepared-or-input nodes not yet measured.
func (e *Engine[W, O]) LiveWires() int { return len(e.wires) }

// Run executes the single forward pass. The pattern must already be
// validated; Run still enforces every state-machine precondition and
// fails fast on the first violation.
func (e *Engine[W, O]) Run(p *pattern.Pattern) error {
	e.state = StateProcessing

	for _, n := range p.Inputs {
		w, err := e.backend.AcquireInput()
		if err != nil {
			return e.fail(pattern.NewBackendEmissionError(-1, n, err))
		}
		e.wires[n] = w
	}

	for pos, cmd := range p.Commands {
		if err := e.step(pos, cmd); err != nil {
			return e.fail(err)
		}
		if e.obs != nil {
			e.obs.Command(pos, cmd)
		}
	}

	return e.finalize(p)
}

// step dispatches one command against the backend, folding returned wires
// back into the slot map.
func (e *Engine[W, O]) step(pos int, cmd pattern.Command) error {
	switch c := cmd.(type) {
	case pattern.PrepareCmd:
		if _, bound := e.wires[c.Node]; bound {
			return pattern.NewStructuralError(pos, c.Node, "node %d already prepared", c.Node)
		}
		if _, done := e.outcomes[c.Node]; done {
			return pattern.NewStructuralError(pos, c.Node, "node %d already measured", c.Node)
		}
		w, err := e.backend.Prepare()
		if err != nil {
			return pattern.NewBackendEmissionError(pos, c.Node, err)
		}
		e.wires[c.Node] = w
		return nil

	case pattern.EntangleCmd:
		wa, err := e.take(pos, c.A)
		if err != nil {
			return err
		}
		wb, err := e.take(pos, c.B)
		if err != nil {
			return err
		}
		na, nb, err := e.backend.Entangle(wa, wb)
		if err != nil {
			return pattern.NewBackendEmissionError(pos, c.A, err)
		}
		e.wires[c.A] = na
		e.wires[c.B] = nb
		return nil

	case pattern.MeasureCmd:
		if _, done := e.outcomes[c.Node]; done {
			return pattern.NewStructuralError(pos, c.Node, "node %d already measured", c.Node)
		}
		w, err := e.take(pos, c.Node)
		if err != nil {
			return err
		}
		// The measurement domain is resolved for validation parity even
		// though the sign flip is realized by the backend's basis
		// rotation of the dependent angle upstream; a stale domain entry
		// must fail here, not at the correction that reads the outcome.
		if _, err := e.resolveDomain(pos, c.Node, c.Domain); err != nil {
			return err
		}
		outcome, post, keep, err := e.backend.RotateAndMeasure(w, c.Plane, c.Angle)
		if err != nil {
			return pattern.NewBackendEmissionError(pos, c.Node, err)
		}
		e.outcomes[c.Node] = outcome
		if keep {
			e.wires[c.Node] = post
		}
		return nil

	case pattern.CorrectXCmd:
		return e.correct(pos, c.Node, clifford.X, c.Domain)

	case pattern.CorrectZCmd:
		return e.correct(pos, c.Node, clifford.Z, c.Domain)

	case pattern.CliffordCmd:
		gates, err := clifford.Decompose(c.Index)
		if err != nil {
			return pattern.NewCliffordIndexError(pos, c.Node, c.Index)
		}
		w, err := e.take(pos, c.Node)
		if err != nil {
			return err
		}
		for _, g := range gates {
			w, err = e.backend.ApplyUnary(g, w)
			if err != nil {
				return pattern.NewBackendEmissionError(pos, c.Node, err)
			}
		}
		e.wires[c.Node] = w
		return nil

	default:
		// Unreachable: Command is sealed to the pattern package.
		return pattern.NewStructuralError(pos, -1, "unknown command type %T", cmd)
	}
}

// correct emits a Pauli correction gated by the XOR of the domain's
// outcomes. An empty domain builds the unconditional predicate, which
// backends must treat exactly as a plain unary application.
func (e *Engine[W, O]) correct(pos int, node pattern.NodeID, g clifford.Gate, domain []pattern.NodeID) error {
	w, err := e.take(pos, node)
	if err != nil {
		return err
	}
	resolved, err := e.resolveDomain(pos, node, domain)
	if err != nil {
		return err
	}
	nw, err := e.backend.ConditionalApply(g, XorOf(resolved...), w)
	if err != nil {
		return pattern.NewBackendEmissionError(pos, node, err)
	}
	e.wires[node] = nw
	return nil
}

// take moves the wire out of a node's slot, clearing it. The caller owns
// the wire until it rebinds a fresh one.
func (e *Engine[W, O]) take(pos int, node pattern.NodeID) (W, error) {
	w, bound := e.wires[node]
	if !bound {
		var zero W
		if _, done := e.outcomes[node]; done {
			return zero, pattern.NewStructuralError(pos, node, "node %d already measured", node)
		}
		return zero, pattern.NewStructuralError(pos, node, "node %d referenced before preparation", node)
	}
	delete(e.wires, node)
	return w, nil
}

// resolveDomain maps domain node IDs to their outcome handles, in
// ascending node order for determinism. Any unmeasured entry is a
// DomainError at this command's position.
func (e *Engine[W, O]) resolveDomain(pos int, node pattern.NodeID, domain []pattern.NodeID) ([]O, error) {
	if len(domain) == 0 {
		return nil, nil
	}
	sorted := make([]pattern.NodeID, len(domain))
	copy(sorted, domain)
	slices.Sort(sorted)

	resolved := make([]O, 0, len(sorted))
	for _, d := range sorted {
		o, done := e.outcomes[d]
		if !done {
			return nil, pattern.NewDomainError(pos, node, "domain references unmeasured node %d", d)
		}
		resolved = append(resolved, o)
	}
	return resolved, nil
}

// finalize asserts every declared output still owns a wire, hands the
// backend its outputs and classical outcomes, and transitions the engine.
func (e *Engine[W, O]) finalize(p *pattern.Pattern) error {
	outputs := make([]W, 0, len(p.Outputs))
	for _, n := range p.Outputs {
		w, bound := e.wires[n]
		if !bound {
			return e.fail(pattern.NewIncompleteOutputError(n))
		}
		outputs = append(outputs, w)
	}

	measured := p.MeasuredNonOutputs()
	outcomes := make([]O, 0, len(measured))
	for _, n := range measured {
		outcomes = append(outcomes, e.outcomes[n])
	}

	if err := e.backend.Finalize(outputs, outcomes); err != nil {
		return e.fail(pattern.NewBackendEmissionError(-1, -1, err))
	}

	e.state = StateFinalized
	if e.obs != nil {
		e.obs.Finalized(len(outputs), len(outcomes))
	}
	e.log.Debug("conversion finalized",
		"commands", len(p.Commands),
		"outputs", len(outputs),
		"outcomes", len(outcomes),
	)
	return nil
}

func (e *Engine[W, O]) fail(err error) error {
	e.state = StateFailed
	e.log.Debug("conversion failed", "err", err)
	return err
}
