// Package patterndef loads MBQC pattern definitions from CUE files.
//
// Patterns are declared in CUE rather than an ad-hoc format so definitions
// get schema checking, expression evaluation, and positioned errors for
// free. The package embeds its own schema and unifies every loaded file
// against it before building the pattern model; structural stream
// invariants remain the job of pattern.Validate.
//
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
package patterndef

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/roach88/weft/internal/pattern"
)

//go:embed schema.cue
var schemaCUE string

// LoadError represents an error that occurred while loading a pattern
// definition.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

// Load error codes.
const (
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeParse    = "PARSE"
	ErrCodeSchema   = "SCHEMA"
	ErrCodeCommand  = "COMMAND"
)

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadFile reads and parses a pattern definition from a .cue file.
func LoadFile(path string) (*pattern.Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("pattern file not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error()}
	}
	return LoadBytes(data, path)
}

// LoadBytes parses a pattern definition from CUE source. filename is used
// for error positions only.
func LoadBytes(data []byte, filename string) (*pattern.Pattern, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeSchema, Message: fmt.Sprintf("embedded schema: %v", err)}
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: err.Error(), Pos: v.Pos()}
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, &LoadError{Code: ErrCodeSchema, Message: err.Error(), Pos: unified.Pos()}
	}

	return ParseValue(unified.LookupPath(cue.ParsePath("pattern")))
}

// ParseValue builds a Pattern from a CUE value of the #Pattern shape.
func ParseValue(v cue.Value) (*pattern.Pattern, error) {
	if err := v.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: err.Error(), Pos: v.Pos()}
	}
	if !v.Exists() {
		return nil, &LoadError{Code: ErrCodeSchema, Message: `missing top-level "pattern" field`}
	}

	inputs, err := parseNodeList(v.LookupPath(cue.ParsePath("inputs")))
	if err != nil {
		return nil, err
	}
	outputs, err := parseNodeList(v.LookupPath(cue.ParsePath("outputs")))
	if err != nil {
		return nil, err
	}

	cmdsVal := v.LookupPath(cue.ParsePath("commands"))
	iter, lerr := cmdsVal.List()
	if lerr != nil {
		return nil, &LoadError{Code: ErrCodeSchema, Message: "commands must be a list", Pos: cmdsVal.Pos()}
	}

	var commands []pattern.Command
	for iter.Next() {
		cmd, err := parseCommand(iter.Value())
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmd)
	}

	return pattern.New(inputs, outputs, commands), nil
}

// parseCommand decodes one command struct. Each command is a single-key
// struct naming its kind (the schema's disjunction guarantees shape).
func parseCommand(v cue.Value) (pattern.Command, error) {
	fields, err := v.Fields()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeCommand, Message: err.Error(), Pos: v.Pos()}
	}
	if !fields.Next() {
		return nil, &LoadError{Code: ErrCodeCommand, Message: "empty command", Pos: v.Pos()}
	}
	kind := fields.Selector().Unquoted()
	body := fields.Value()

	switch kind {
	case "prepare":
		node, err := parseNode(body.LookupPath(cue.ParsePath("node")))
		if err != nil {
			return nil, err
		}
		return pattern.PrepareCmd{Node: node}, nil

	case "entangle":
		nodes, err := parseNodeList(body.LookupPath(cue.ParsePath("nodes")))
		if err != nil {
			return nil, err
		}
		if len(nodes) != 2 {
			return nil, &LoadError{Code: ErrCodeCommand, Message: "entangle requires exactly two nodes", Pos: body.Pos()}
		}
		return pattern.EntangleCmd{A: nodes[0], B: nodes[1]}, nil

	case "measure":
		node, err := parseNode(body.LookupPath(cue.ParsePath("node")))
		if err != nil {
			return nil, err
		}
		planeStr, perr := body.LookupPath(cue.ParsePath("plane")).String()
		if perr != nil {
			return nil, &LoadError{Code: ErrCodeCommand, Message: "measure requires a plane", Pos: body.Pos()}
		}
		angle := 0.0
		if av := body.LookupPath(cue.ParsePath("angle")); av.Exists() {
			angle, err = av.Float64()
			if err != nil {
				return nil, &LoadError{Code: ErrCodeCommand, Message: "angle must be a number", Pos: av.Pos()}
			}
		}
		domain, err := parseOptionalDomain(body)
		if err != nil {
			return nil, err
		}
		return pattern.MeasureCmd{Node: node, Plane: pattern.Plane(planeStr), Angle: angle, Domain: domain}, nil

	case "correctX":
		node, domain, err := parseCorrection(body)
		if err != nil {
			return nil, err
		}
		return pattern.CorrectXCmd{Node: node, Domain: domain}, nil

	case "correctZ":
		node, domain, err := parseCorrection(body)
		if err != nil {
			return nil, err
		}
		return pattern.CorrectZCmd{Node: node, Domain: domain}, nil

	case "clifford":
		node, err := parseNode(body.LookupPath(cue.ParsePath("node")))
		if err != nil {
			return nil, err
		}
		index, ierr := body.LookupPath(cue.ParsePath("index")).Int64()
		if ierr != nil {
			return nil, &LoadError{Code: ErrCodeCommand, Message: "clifford requires an index", Pos: body.Pos()}
		}
		return pattern.CliffordCmd{Node: node, Index: int(index)}, nil

	default:
		return nil, &LoadError{Code: ErrCodeCommand, Message: fmt.Sprintf("unknown command kind %q", kind), Pos: v.Pos()}
	}
}

func parseCorrection(body cue.Value) (pattern.NodeID, []pattern.NodeID, error) {
	node, err := parseNode(body.LookupPath(cue.ParsePath("node")))
	if err != nil {
		return 0, nil, err
	}
	domain, err := parseOptionalDomain(body)
	if err != nil {
		return 0, nil, err
	}
	return node, domain, nil
}

func parseOptionalDomain(body cue.Value) ([]pattern.NodeID, error) {
	dv := body.LookupPath(cue.ParsePath("domain"))
	if !dv.Exists() {
		return nil, nil
	}
	return parseNodeList(dv)
}

func parseNode(v cue.Value) (pattern.NodeID, error) {
	n, err := v.Int64()
	if err != nil {
		return 0, &LoadError{Code: ErrCodeCommand, Message: "node must be an integer", Pos: v.Pos()}
	}
	return pattern.NodeID(n), nil
}

func parseNodeList(v cue.Value) ([]pattern.NodeID, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeSchema, Message: "expected a list of nodes", Pos: v.Pos()}
	}
	var nodes []pattern.NodeID
	for iter.Next() {
		n, err := parseNode(iter.Value())
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
