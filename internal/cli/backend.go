package cli

import (
	"fmt"

	"github.com/roach88/weft/internal/backend/circuit"
	"github.com/roach88/weft/internal/backend/codegen"
	"github.com/roach88/weft/internal/backend/dataflow"
	"github.com/roach88/weft/internal/convert"
	"github.com/roach88/weft/internal/pattern"
)

// Backend names accepted by the convert and verify commands.
const (
	BackendDataflow = "dataflow"
	BackendCodegen  = "codegen"
	BackendCircuit  = "circuit"
)

// ValidBackends defines the allowed conversion targets.
var ValidBackends = []string{BackendDataflow, BackendCodegen, BackendCircuit}

func isValidBackend(name string) bool {
	for _, b := range ValidBackends {
		if b == name {
			return true
		}
	}
	return false
}

// Conversion is the backend-independent outcome of a conversion: the
// rendered target plus its structural fingerprint.
type Conversion struct {
	Render      string
	Fingerprint string
}

// runConversion converts the pattern through the named backend. A non-nil
// observer sees every processed command; pass nil when no trace is wanted.
func runConversion(p *pattern.Pattern, backendName string, obs convert.Observer) (*Conversion, error) {
	switch backendName {
	case BackendDataflow:
		g := dataflow.New()
		var opts []convert.Option[dataflow.Port, dataflow.Port]
		if obs != nil {
			opts = append(opts, convert.WithObserver[dataflow.Port, dataflow.Port](obs))
		}
		if err := convert.Convert[dataflow.Port, dataflow.Port](p, g, opts...); err != nil {
			return nil, err
		}
		fp, err := g.Fingerprint()
		if err != nil {
			return nil, err
		}
		return &Conversion{Render: g.Render(), Fingerprint: fp}, nil

	case BackendCodegen:
		prog := codegen.New()
		var opts []convert.Option[string, string]
		if obs != nil {
			opts = append(opts, convert.WithObserver[string, string](obs))
		}
		if err := convert.Convert[string, string](p, prog, opts...); err != nil {
			return nil, err
		}
		fp, err := prog.Fingerprint()
		if err != nil {
			return nil, err
		}
		return &Conversion{Render: prog.Code(), Fingerprint: fp}, nil

	case BackendCircuit:
		c := circuit.New()
		var opts []convert.Option[circuit.QubitRef, circuit.BitRef]
		if obs != nil {
			opts = append(opts, convert.WithObserver[circuit.QubitRef, circuit.BitRef](obs))
		}
		if err := convert.Convert[circuit.QubitRef, circuit.BitRef](p, c, opts...); err != nil {
			return nil, err
		}
		fp, err := c.Fingerprint()
		if err != nil {
			return nil, err
		}
		return &Conversion{Render: c.Render(), Fingerprint: fp}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q: must be one of %v", backendName, ValidBackends)
	}
}
