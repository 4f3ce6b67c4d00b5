package boundary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vassdrag/lpbuild"
	"github.com/vassdrag/lpbuild/boundary"
	"github.com/vassdrag/lpbuild/problem"
)

func newSingleCut(t *testing.T, objects []*storage, probabilities []float64, maxCuts int, lowerBound float64) (*boundary.SingleCut, *problem.Matrix) {
	t.Helper()
	held := make([]problem.Stateful, len(objects))
	for i, object := range objects {
		held[i] = object
	}
	cut, err := boundary.NewSingleCut(lpbuild.NewId(boundary.Category, "futurecost"), held, probabilities, maxCuts, lowerBound)
	require.NoError(t, err)

	m := problem.NewMatrix()
	declareColumns(m, objects...)
	cut.Build(m)
	cut.SetConstants(m)
	return cut, m
}

func TestSingleCutConstructionValidation(t *testing.T) {
	id := lpbuild.NewId(boundary.Category, "futurecost")
	one := []problem.Stateful{newStorage("a", 1)}

	tests := []struct {
		name          string
		objects       []problem.Stateful
		probabilities []float64
		maxCuts       int
	}{
		{name: "no objects", objects: nil, probabilities: []float64{1}, maxCuts: 3},
		{name: "stateless object", objects: []problem.Stateful{newStorage("a", 0)}, probabilities: []float64{1}, maxCuts: 3},
		{name: "empty probabilities", objects: one, probabilities: nil, maxCuts: 3},
		{name: "negative probability", objects: one, probabilities: []float64{1.5, -0.5}, maxCuts: 3},
		{name: "sum not one", objects: one, probabilities: []float64{0.5, 0.3}, maxCuts: 3},
		{name: "zero capacity", objects: one, probabilities: []float64{1}, maxCuts: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := boundary.NewSingleCut(id, tt.objects, tt.probabilities, tt.maxCuts, -1000)
			require.Error(t, err)
		})
	}
}

func TestSingleCutIsTerminalOnly(t *testing.T) {
	cut, _ := newSingleCut(t, []*storage{newStorage("a", 1)}, []float64{1}, 3, -1000)
	assert.False(t, cut.Initial())
	assert.True(t, cut.Terminal())
}

func TestSingleCutBuildInactiveRows(t *testing.T) {
	a := newStorage("a", 1)
	cut, m := newSingleCut(t, []*storage{a}, []float64{1}, 3, -1000)

	column := cut.FutureCostColumn()
	require.Equal(t, 1, m.ColumnCount(column))
	require.Equal(t, 3, m.RowCount(cut.ID()))
	assert.Equal(t, 1.0, m.Objective(column, 0))

	out := a.Outgoing(0)
	for row := 0; row < 3; row++ {
		assert.Equal(t, 1.0, m.Coefficient(cut.ID(), column, row, 0))
		assert.Equal(t, -1000.0, m.RHS(cut.ID(), cut.ID(), row))
		assert.Equal(t, 0.0, m.Coefficient(cut.ID(), out.Column, row, out.Index))
	}
	assert.Equal(t, 0, cut.NumCuts())
	assert.Equal(t, 0, cut.WriteIndex())
}

func TestSingleCutWeightedAverage(t *testing.T) {
	// Two objects with one state variable each, equal scenario weights,
	// lower bound -1000, capacity 3. Scenario results (10, slope 2) and
	// (20, slope 4) must average into a cut of (15, slope 3).
	a := newStorage("a", 1)
	b := newStorage("b", 1)
	cut, m := newSingleCut(t, []*storage{a, b}, []float64{0.5, 0.5}, 3, -1000)

	slopesOf := func(value float64) map[problem.StateVariableRef]float64 {
		return map[problem.StateVariableRef]float64{
			a.Outgoing(0): value,
			b.Outgoing(0): value,
		}
	}
	err := cut.UpdateCuts(m, []boundary.ScenarioResult{
		{Constant: 10, Slopes: slopesOf(2)},
		{Constant: 20, Slopes: slopesOf(4)},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, cut.NumCuts())
	assert.Equal(t, 1, cut.WriteIndex())

	stored := cut.CutAt(1)
	assert.InDelta(t, 15.0, stored.Constant, 1e-12)
	assert.InDelta(t, 3.0, stored.Slopes[a.Outgoing(0)], 1e-12)
	assert.InDelta(t, 3.0, stored.Slopes[b.Outgoing(0)], 1e-12)

	assert.InDelta(t, 15.0, m.RHS(cut.ID(), cut.ID(), 0), 1e-12)
	assert.InDelta(t, -3.0, m.Coefficient(cut.ID(), a.Outgoing(0).Column, 0, a.Outgoing(0).Index), 1e-12)
	assert.InDelta(t, -3.0, m.Coefficient(cut.ID(), b.Outgoing(0).Column, 0, b.Outgoing(0).Index), 1e-12)

	// The remaining slots stay inactive.
	assert.Equal(t, -1000.0, m.RHS(cut.ID(), cut.ID(), 1))
	assert.Equal(t, -1000.0, m.RHS(cut.ID(), cut.ID(), 2))
}

func TestSingleCutWriteIndexWraps(t *testing.T) {
	a := newStorage("a", 1)
	cut, m := newSingleCut(t, []*storage{a}, []float64{1}, 3, -1000)

	update := func(constant float64) {
		t.Helper()
		err := cut.UpdateCuts(m, []boundary.ScenarioResult{
			{Constant: constant, Slopes: map[problem.StateVariableRef]float64{a.Outgoing(0): 1}},
		})
		require.NoError(t, err)
	}

	for i := 1; i <= 3; i++ {
		update(float64(i))
		assert.Equal(t, i, cut.NumCuts())
		assert.Equal(t, i, cut.WriteIndex())
	}

	// The fourth update saturates the count and overwrites the oldest slot.
	update(4)
	assert.Equal(t, 3, cut.NumCuts())
	assert.Equal(t, 1, cut.WriteIndex())
	assert.InDelta(t, 4.0, cut.CutAt(1).Constant, 1e-12)
	assert.InDelta(t, 2.0, cut.CutAt(2).Constant, 1e-12)
	assert.InDelta(t, 4.0, m.RHS(cut.ID(), cut.ID(), 0), 1e-12)
}

func TestSingleCutRejectsMismatchedResultCount(t *testing.T) {
	a := newStorage("a", 1)
	cut, m := newSingleCut(t, []*storage{a}, []float64{0.5, 0.5}, 3, -1000)
	err := cut.UpdateCuts(m, []boundary.ScenarioResult{{Constant: 1}})
	require.ErrorIs(t, err, boundary.ErrResultCount)
	assert.Equal(t, 0, cut.NumCuts())
}

func TestSingleCutClear(t *testing.T) {
	a := newStorage("a", 1)
	cut, m := newSingleCut(t, []*storage{a}, []float64{1}, 3, -500)

	for i := 0; i < 2; i++ {
		err := cut.UpdateCuts(m, []boundary.ScenarioResult{
			{Constant: 10, Slopes: map[problem.StateVariableRef]float64{a.Outgoing(0): 2}},
		})
		require.NoError(t, err)
	}
	require.Equal(t, 2, cut.NumCuts())

	cut.Clear(m)

	assert.Equal(t, 0, cut.NumCuts())
	assert.Equal(t, 0, cut.WriteIndex())
	out := a.Outgoing(0)
	for row := 0; row < 3; row++ {
		assert.Equal(t, -500.0, m.RHS(cut.ID(), cut.ID(), row))
		assert.Equal(t, 0.0, m.Coefficient(cut.ID(), out.Column, row, out.Index))
	}
	for slot := 1; slot <= 3; slot++ {
		assert.Zero(t, cut.CutAt(slot).Constant)
		assert.Empty(t, cut.CutAt(slot).Slopes)
	}

	// Topology is untouched: structure can be refreshed, not redeclared.
	assert.Equal(t, 3, m.RowCount(cut.ID()))
	assert.Equal(t, 1, m.ColumnCount(cut.FutureCostColumn()))
}
