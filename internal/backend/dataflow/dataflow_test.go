package dataflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/weft/internal/clifford"
	"github.com/roach88/weft/internal/convert"
	"github.com/roach88/weft/internal/pattern"
)

func teleport() *pattern.Pattern {
	return pattern.New(
		[]pattern.NodeID{0},
		[]pattern.NodeID{2},
		[]pattern.Command{
			pattern.PrepareCmd{Node: 1},
			pattern.PrepareCmd{Node: 2},
			pattern.EntangleCmd{A: 0, B: 1},
			pattern.EntangleCmd{A: 1, B: 2},
			pattern.MeasureCmd{Node: 0, Plane: pattern.PlaneXY},
			pattern.MeasureCmd{Node: 1, Plane: pattern.PlaneXY},
			pattern.CorrectXCmd{Node: 2, Domain: []pattern.NodeID{1}},
			pattern.CorrectZCmd{Node: 2, Domain: []pattern.NodeID{0}},
		},
	)
}

func convertTeleport(t *testing.T) *Graph {
	t.Helper()
	g := New()
	err := convert.Convert[Port, Port](teleport(), g)
	require.NoError(t, err)
	return g
}

func TestConvert_TeleportRender(t *testing.T) {
	g := convertTeleport(t)

	want := `dataflow graph
n0: input/1
n1: prepare
n2: prepare
n3: cz <- n0.0 n1.0
n4: cz <- n3.1 n2.0
n5: h <- n3.0
n6: measure <- n5.0
n7: h <- n4.0
n8: measure <- n7.0
n9: cond_x <- n8.0 n4.1
n10: cond_z <- n6.0 n9.0
n11: output <- n10.0 n6.0 n8.0
`
	assert.Equal(t, want, g.Render())
}

func TestConvert_TeleportCounts(t *testing.T) {
	g := convertTeleport(t)

	assert.Equal(t, 2, g.OpCount(OpCZ))
	assert.Equal(t, 2, g.OpCount(OpMeasure))
	assert.Equal(t, 2, g.OpCount(OpH))
	assert.Equal(t, 1, g.OpCount(OpCondX))
	assert.Equal(t, 1, g.OpCount(OpCondZ))
	assert.Equal(t, 0, g.OpCount(OpXor))
	assert.Equal(t, 12, len(g.Nodes()))
	assert.Equal(t, 15, g.EdgeCount())
	assert.True(t, g.Finished())
}

func TestGraph_FingerprintDeterministic(t *testing.T) {
	first, err := convertTeleport(t).Fingerprint()
	require.NoError(t, err)
	second, err := convertTeleport(t).Fingerprint()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestGraph_FingerprintSensitiveToAngle(t *testing.T) {
	build := func(angle float64) string {
		p := pattern.New(
			[]pattern.NodeID{0},
			[]pattern.NodeID{1},
			[]pattern.Command{
				pattern.PrepareCmd{Node: 1},
				pattern.EntangleCmd{A: 0, B: 1},
				pattern.MeasureCmd{Node: 0, Plane: pattern.PlaneXY, Angle: angle},
				pattern.CorrectXCmd{Node: 1, Domain: []pattern.NodeID{0}},
			},
		)
		g := New()
		require.NoError(t, convert.Convert[Port, Port](p, g))
		fp, err := g.Fingerprint()
		require.NoError(t, err)
		return fp
	}

	assert.NotEqual(t, build(0.25), build(0.5))
}

func TestRotateAndMeasure_Planes(t *testing.T) {
	tests := []struct {
		name    string
		plane   pattern.Plane
		angle   float64
		wantOps []Op
	}{
		{"XY zero angle", pattern.PlaneXY, 0, []Op{OpPrepare, OpH, OpMeasure}},
		{"XY rotated", pattern.PlaneXY, 0.25, []Op{OpPrepare, OpRz, OpH, OpMeasure}},
		{"YZ zero angle", pattern.PlaneYZ, 0, []Op{OpPrepare, OpMeasure}},
		{"YZ rotated", pattern.PlaneYZ, 0.5, []Op{OpPrepare, OpRx, OpMeasure}},
		{"XZ rotated", pattern.PlaneXZ, 0.5, []Op{OpPrepare, OpRy, OpMeasure}},
		{"tiny angle dropped", pattern.PlaneXY, 1e-12, []Op{OpPrepare, OpH, OpMeasure}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			w, err := g.Prepare()
			require.NoError(t, err)
			_, _, keep, err := g.RotateAndMeasure(w, tt.plane, tt.angle)
			require.NoError(t, err)
			assert.False(t, keep)

			ops := make([]Op, len(g.Nodes()))
			for i, n := range g.Nodes() {
				ops[i] = n.Op
			}
			assert.Equal(t, tt.wantOps, ops)
		})
	}
}

func TestRotateAndMeasure_AngleSigns(t *testing.T) {
	g := New()
	w, err := g.Prepare()
	require.NoError(t, err)
	_, _, _, err = g.RotateAndMeasure(w, pattern.PlaneXY, 0.25)
	require.NoError(t, err)

	rz := g.Nodes()[1]
	require.Equal(t, OpRz, rz.Op)
	assert.Equal(t, -0.25, rz.Angle)
	assert.True(t, rz.HasAngle)

	g = New()
	w, err = g.Prepare()
	require.NoError(t, err)
	_, _, _, err = g.RotateAndMeasure(w, pattern.PlaneXZ, 0.25)
	require.NoError(t, err)

	ry := g.Nodes()[1]
	require.Equal(t, OpRy, ry.Op)
	assert.Equal(t, 0.25, ry.Angle)
}

func TestRotateAndMeasure_UnknownPlane(t *testing.T) {
	g := New()
	w, err := g.Prepare()
	require.NoError(t, err)
	_, _, _, err = g.RotateAndMeasure(w, pattern.Plane("ZZ"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown measurement plane")
}

func TestAcquireInput_SharedNode(t *testing.T) {
	g := New()
	a, err := g.AcquireInput()
	require.NoError(t, err)
	b, err := g.AcquireInput()
	require.NoError(t, err)

	assert.Equal(t, a.Node, b.Node)
	assert.Equal(t, 0, a.Index)
	assert.Equal(t, 1, b.Index)
	require.Len(t, g.Nodes(), 1)
	assert.Equal(t, 2, g.Nodes()[0].Outs)
	assert.Equal(t, "n0.1", b.String())
}

func TestConditionalApply_XorFolding(t *testing.T) {
	g := New()
	var outcomes []Port
	for i := 0; i < 3; i++ {
		w, err := g.Prepare()
		require.NoError(t, err)
		o, _, _, err := g.RotateAndMeasure(w, pattern.PlaneYZ, 0)
		require.NoError(t, err)
		outcomes = append(outcomes, o)
	}
	w, err := g.Prepare()
	require.NoError(t, err)

	out, err := g.ConditionalApply(clifford.X, convert.XorOf(outcomes...), w)
	require.NoError(t, err)

	assert.Equal(t, 2, g.OpCount(OpXor))
	cond := g.Nodes()[out.Node]
	require.Equal(t, OpCondX, cond.Op)
	require.Len(t, cond.Args, 2)
	assert.Equal(t, OpXor, g.Nodes()[cond.Args[0].Node].Op)
	assert.Equal(t, w, cond.Args[1])
}

func TestConditionalApply_UnconditionalFallsBack(t *testing.T) {
	g := New()
	w, err := g.Prepare()
	require.NoError(t, err)

	out, err := g.ConditionalApply(clifford.Z, convert.Unconditional[Port](), w)
	require.NoError(t, err)

	assert.Equal(t, OpZ, g.Nodes()[out.Node].Op)
	assert.Equal(t, 0, g.OpCount(OpCondZ))
}

func TestConditionalApply_UnsupportedGate(t *testing.T) {
	g := New()
	w, err := g.Prepare()
	require.NoError(t, err)
	o, _, _, err := g.RotateAndMeasure(w, pattern.PlaneYZ, 0)
	require.NoError(t, err)
	w, err = g.Prepare()
	require.NoError(t, err)

	_, err = g.ConditionalApply(clifford.H, convert.XorOf(o), w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestApplyUnary_UnsupportedGate(t *testing.T) {
	g := New()
	w, err := g.Prepare()
	require.NoError(t, err)

	_, err = g.ApplyUnary(clifford.Sdg, w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestGraph_FinalizedGuards(t *testing.T) {
	g := New()
	w, err := g.Prepare()
	require.NoError(t, err)
	require.NoError(t, g.Finalize([]Port{w}, nil))
	require.True(t, g.Finished())

	_, err = g.AcquireInput()
	assert.Error(t, err)
	_, err = g.Prepare()
	assert.Error(t, err)
	_, _, err = g.Entangle(w, w)
	assert.Error(t, err)
	_, _, _, err = g.RotateAndMeasure(w, pattern.PlaneXY, 0)
	assert.Error(t, err)
	_, err = g.ApplyUnary(clifford.H, w)
	assert.Error(t, err)
	err = g.Finalize(nil, nil)
	assert.Error(t, err)
}
