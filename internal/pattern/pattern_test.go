package pattern

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// teleport is the canonical two-hop teleportation stream used across the
// package tests: one input, two prepared nodes, two measurements, two
// conditional corrections.
func teleport() *Pattern {
	return New(
		[]NodeID{0},
		[]NodeID{2},
		[]Command{
			PrepareCmd{Node: 1},
			PrepareCmd{Node: 2},
			EntangleCmd{A: 0, B: 1},
			EntangleCmd{A: 1, B: 2},
			MeasureCmd{Node: 0, Plane: PlaneXY},
			MeasureCmd{Node: 1, Plane: PlaneXY},
			CorrectXCmd{Node: 2, Domain: []NodeID{1}},
			CorrectZCmd{Node: 2, Domain: []NodeID{0}},
		},
	)
}

func TestNew_CopiesSlices(t *testing.T) {
	inputs := []NodeID{0}
	outputs := []NodeID{1}
	commands := []Command{PrepareCmd{Node: 1}}

	p := New(inputs, outputs, commands)
	inputs[0] = 99
	outputs[0] = 99
	commands[0] = PrepareCmd{Node: 99}

	assert.Equal(t, NodeID(0), p.Inputs[0])
	assert.Equal(t, NodeID(1), p.Outputs[0])
	assert.Equal(t, PrepareCmd{Node: 1}, p.Commands[0])
}

func TestMeasuredNonOutputs(t *testing.T) {
	p := teleport()
	assert.Equal(t, []NodeID{0, 1}, p.MeasuredNonOutputs())
}

func TestMeasuredNonOutputs_ExcludesOutputs(t *testing.T) {
	p := New(
		nil,
		[]NodeID{1},
		[]Command{
			PrepareCmd{Node: 0},
			PrepareCmd{Node: 1},
			MeasureCmd{Node: 0, Plane: PlaneYZ},
		},
	)
	assert.Equal(t, []NodeID{0}, p.MeasuredNonOutputs())
}

func TestMeasuredNonOutputs_AscendingOrder(t *testing.T) {
	p := New(
		nil,
		nil,
		[]Command{
			PrepareCmd{Node: 5},
			PrepareCmd{Node: 3},
			MeasureCmd{Node: 5, Plane: PlaneXY},
			MeasureCmd{Node: 3, Plane: PlaneXY},
		},
	)
	assert.Equal(t, []NodeID{3, 5}, p.MeasuredNonOutputs())
}

func TestCommandString(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{PrepareCmd{Node: 3}, "N(3)"},
		{EntangleCmd{A: 1, B: 2}, "E(1,2)"},
		{MeasureCmd{Node: 0, Plane: PlaneXY, Angle: 0.25, Domain: []NodeID{1, 2}}, "M(0,XY,0.25,{1,2})"},
		{MeasureCmd{Node: 4, Plane: PlaneYZ}, "M(4,YZ,0,{})"},
		{CorrectXCmd{Node: 2, Domain: []NodeID{1}}, "X(2,{1})"},
		{CorrectZCmd{Node: 2}, "Z(2,{})"},
		{CliffordCmd{Node: 1, Index: 17}, "C(1,17)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cmd.String())
	}
}

func TestPatternString(t *testing.T) {
	s := teleport().String()
	assert.Contains(t, s, "inputs=[0] outputs=[2]")
	assert.Contains(t, s, "[0] N(1)")
	assert.Contains(t, s, "[7] Z(2,{0})")
}

func TestValidate_Teleport(t *testing.T) {
	require.NoError(t, teleport().Validate())
}

func TestValidate_DuplicateInput(t *testing.T) {
	p := New([]NodeID{0, 0}, nil, nil)
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, IsStructural(err))
	assert.Contains(t, err.Error(), "duplicate input node 0")
}

func TestValidate_DoublePrepare(t *testing.T) {
	p := New(nil, []NodeID{0}, []Command{
		PrepareCmd{Node: 0},
		PrepareCmd{Node: 0},
	})
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, IsStructural(err))
}

func TestValidate_PrepareOfMeasuredNode(t *testing.T) {
	p := New(nil, nil, []Command{
		PrepareCmd{Node: 0},
		MeasureCmd{Node: 0, Plane: PlaneXY},
		PrepareCmd{Node: 0},
	})
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, IsStructural(err))
}

func TestValidate_EntangleSelf(t *testing.T) {
	p := New([]NodeID{0}, []NodeID{0}, []Command{
		EntangleCmd{A: 0, B: 0},
	})
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "two distinct nodes")
}

func TestValidate_EntangleUnprepared(t *testing.T) {
	p := New([]NodeID{0}, []NodeID{0}, []Command{
		EntangleCmd{A: 0, B: 1},
	})
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, IsStructural(err))
	assert.Contains(t, err.Error(), "node 1 referenced before preparation")
}

func TestValidate_DoubleMeasure(t *testing.T) {
	p := New([]NodeID{0}, nil, []Command{
		MeasureCmd{Node: 0, Plane: PlaneXY},
		MeasureCmd{Node: 0, Plane: PlaneXY},
	})
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, IsStructural(err))
	assert.Contains(t, err.Error(), "node 0 already measured")
}

func TestValidate_UnknownPlane(t *testing.T) {
	p := New([]NodeID{0}, nil, []Command{
		MeasureCmd{Node: 0, Plane: Plane("ZZ")},
	})
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown measurement plane "ZZ"`)
}

func TestValidate_MeasureDomainForwardReference(t *testing.T) {
	p := New([]NodeID{0, 1}, []NodeID{1}, []Command{
		MeasureCmd{Node: 0, Plane: PlaneXY, Domain: []NodeID{1}},
	})
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, IsDomain(err))
	assert.Contains(t, err.Error(), "domain references unmeasured node 1")
}

func TestValidate_CorrectionDomainForwardReference(t *testing.T) {
	p := New([]NodeID{0, 1}, []NodeID{0, 1}, []Command{
		CorrectXCmd{Node: 0, Domain: []NodeID{1}},
	})
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, IsDomain(err))
}

func TestValidate_CorrectionOnMeasuredNode(t *testing.T) {
	p := New([]NodeID{0}, nil, []Command{
		MeasureCmd{Node: 0, Plane: PlaneXY},
		CorrectZCmd{Node: 0},
	})
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, IsStructural(err))
}

func TestValidate_CliffordIndexOutOfRange(t *testing.T) {
	for _, index := range []int{-1, CliffordOrder, 100} {
		p := New([]NodeID{0}, []NodeID{0}, []Command{
			CliffordCmd{Node: 0, Index: index},
		})
		err := p.Validate()
		require.Error(t, err, "index %d", index)
		assert.True(t, IsUnsupportedClifford(err), "index %d", index)
	}
}

func TestValidate_CliffordIndexBoundaries(t *testing.T) {
	for _, index := range []int{0, CliffordOrder - 1} {
		p := New([]NodeID{0}, []NodeID{0}, []Command{
			CliffordCmd{Node: 0, Index: index},
		})
		assert.NoError(t, p.Validate(), "index %d", index)
	}
}

func TestValidate_OutputMeasured(t *testing.T) {
	p := New([]NodeID{0}, []NodeID{0}, []Command{
		MeasureCmd{Node: 0, Plane: PlaneXY},
	})
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, IsIncompleteOutput(err))
}

func TestValidate_OutputNeverPrepared(t *testing.T) {
	p := New(nil, []NodeID{7}, nil)
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, IsIncompleteOutput(err))
}

func TestValidate_ErrorPositions(t *testing.T) {
	p := New([]NodeID{0}, nil, []Command{
		MeasureCmd{Node: 0, Plane: PlaneXY},
		MeasureCmd{Node: 0, Plane: PlaneXY},
	})
	err := p.Validate()
	require.Error(t, err)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Pos)
	assert.Equal(t, NodeID(0), pe.Node)
	assert.Equal(t, ErrCodeStructural, pe.Code)
}

func TestError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			"command and node",
			NewStructuralError(3, 1, "node %d never prepared", 1),
			"STRUCTURAL: node 1 never prepared (command=3, node=1)",
		},
		{
			"node only",
			NewIncompleteOutputError(2),
			"INCOMPLETE_OUTPUT: declared output node has no live wire at stream end (node=2)",
		},
		{
			"wrapped cause surfaces in the message",
			NewBackendEmissionError(0, 1, errors.New("register exhausted")),
			"BACKEND_EMISSION: backend emission failed: register exhausted (command=0, node=1)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_UnwrapsBackendCause(t *testing.T) {
	cause := errors.New("register exhausted")
	err := NewBackendEmissionError(0, 1, cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorContains(t, err, "register exhausted")
}
