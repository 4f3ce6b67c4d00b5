package boundary

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/vassdrag/lpbuild"
	"github.com/vassdrag/lpbuild/problem"
)

// probabilityTolerance bounds how far a probability vector may drift from
// summing to exactly 1.
const probabilityTolerance = 1e-9

// FutureCostCategory tags the surrogate future-cost column identity.
const FutureCostCategory = "FutureCost"

var (
	// ErrNoObjects indicates a single-cut condition without contributing objects.
	ErrNoObjects = errors.New("boundary: single cut needs at least one contributing object")

	// ErrBadProbabilities indicates an empty, negative, or non-normalized
	// probability vector.
	ErrBadProbabilities = errors.New("boundary: probabilities must be non-negative and sum to 1")

	// ErrBadCapacity indicates a non-positive maximum cut capacity.
	ErrBadCapacity = errors.New("boundary: cut capacity must be positive")

	// ErrResultCount indicates a scenario result count that does not match
	// the probability vector.
	ErrResultCount = errors.New("boundary: scenario result count must match probability vector")
)

// ScenarioResult summarizes one solved scenario sub-problem: the objective
// constant and the cost slope per state variable, as seen from the
// sub-problem's duals.
type ScenarioResult struct {
	Constant float64
	Slopes   map[problem.StateVariableRef]float64
}

// Cut is one stored linear inequality approximating cost-to-go.
type Cut struct {
	Constant float64
	Slopes   map[problem.StateVariableRef]float64
}

// SingleCut approximates future cost beyond the horizon as a piecewise-linear
// lower envelope over the outgoing state variables of its contributing
// objects, learned Benders-style from a weighted ensemble of scenario
// sub-problems. There is no cut selection or pruning: cuts live in a
// fixed-capacity circular buffer and the oldest is overwritten once capacity
// is exceeded.
//
// It is always a terminal condition and never an initial one; it represents
// cost-to-go, not continuity with the past.
type SingleCut struct {
	id            lpbuild.Id
	objects       []problem.Stateful
	probabilities []float64
	lowerBound    float64
	maxCuts       int

	cuts    []Cut
	numCuts int
	slot    int // last written slot, 1-based; 0 before the first update
}

// NewSingleCut constructs the decomposition surrogate. It requires at least
// one contributing object, each owning at least one state variable, a
// normalized probability vector, a positive cut capacity, and a scalar lower
// bound on future cost.
func NewSingleCut(id lpbuild.Id, objects []problem.Stateful, probabilities []float64, maxCuts int, lowerBound float64) (*SingleCut, error) {
	if len(objects) == 0 {
		return nil, fmt.Errorf("%w (%s)", ErrNoObjects, id)
	}
	for _, object := range objects {
		if object.StateVariableCount() < 1 {
			return nil, fmt.Errorf("boundary: single cut %s: %s owns no state variables", id, object.ID())
		}
	}
	if len(probabilities) == 0 {
		return nil, fmt.Errorf("%w: empty vector (%s)", ErrBadProbabilities, id)
	}
	for i, p := range probabilities {
		if p < 0 {
			return nil, fmt.Errorf("%w: index %d is %g (%s)", ErrBadProbabilities, i, p, id)
		}
	}
	if sum := floats.Sum(probabilities); math.Abs(sum-1.0) > probabilityTolerance {
		return nil, fmt.Errorf("%w: sum is %g (%s)", ErrBadProbabilities, sum, id)
	}
	if maxCuts <= 0 {
		return nil, fmt.Errorf("%w: got %d (%s)", ErrBadCapacity, maxCuts, id)
	}

	held := make([]problem.Stateful, len(objects))
	copy(held, objects)
	probs := make([]float64, len(probabilities))
	copy(probs, probabilities)

	return &SingleCut{
		id:            id,
		objects:       held,
		probabilities: probs,
		lowerBound:    lowerBound,
		maxCuts:       maxCuts,
		cuts:          make([]Cut, maxCuts),
	}, nil
}

// ID returns the condition's identity.
func (s *SingleCut) ID() lpbuild.Id { return s.id }

// Covered returns the contributing objects.
func (s *SingleCut) Covered() []problem.Stateful {
	out := make([]problem.Stateful, len(s.objects))
	copy(out, s.objects)
	return out
}

// Initial reports false: cost-to-go says nothing about continuity with the
// past.
func (s *SingleCut) Initial() bool { return false }

// Terminal reports true.
func (s *SingleCut) Terminal() bool { return true }

// Ready reports whether every contributing object's time structure is
// resolved.
func (s *SingleCut) Ready() bool {
	for _, object := range s.objects {
		if !object.Ready() {
			return false
		}
	}
	return true
}

// FutureCostColumn returns the identity of the surrogate future-cost column.
func (s *SingleCut) FutureCostColumn() lpbuild.Id {
	return lpbuild.NewId(FutureCostCategory, s.id.Name)
}

// Capacity returns the maximum number of stored cuts.
func (s *SingleCut) Capacity() int { return s.maxCuts }

// NumCuts returns how many cuts are currently active; it saturates at the
// capacity.
func (s *SingleCut) NumCuts() int { return s.numCuts }

// WriteIndex returns the 1-based slot written by the most recent update, or
// zero before the first update.
func (s *SingleCut) WriteIndex() int { return s.slot }

// LowerBound returns the configured future-cost lower bound.
func (s *SingleCut) LowerBound() float64 { return s.lowerBound }

// CutAt returns the cut stored in 1-based slot. Inactive slots hold the zero
// Cut.
func (s *SingleCut) CutAt(slot int) Cut {
	return s.cuts[slot-1]
}

// Build declares the future-cost column, puts it into the objective with
// coefficient 1, and preallocates the full capacity of cut rows of the form
// futureCost >= cutValue.
func (s *SingleCut) Build(p problem.Problem) {
	column := s.FutureCostColumn()
	p.AddColumns(column, 1)
	p.SetObjective(column, 0, 1.0)
	p.AddRows(s.id, s.maxCuts)
}

// SetConstants initializes every cut row inactive: coefficient +1 on the
// future-cost column, right-hand side at the lower bound, and zero slope on
// every tracked outgoing state variable.
func (s *SingleCut) SetConstants(p problem.Problem) {
	column := s.FutureCostColumn()
	tracked := s.outgoing()
	for row := 0; row < s.maxCuts; row++ {
		p.SetCoefficient(s.id, column, row, 0, 1.0)
		p.SetRHS(s.id, s.id, row, s.lowerBound)
		for _, ref := range tracked {
			p.SetCoefficient(s.id, ref.Column, row, ref.Index, 0.0)
		}
	}
}

// Update folds one scenario result per probability entry into a single
// averaged cut, stores it in the next circular slot, and pushes it into p:
// right-hand side set to the averaged constant, slope coefficients set to
// the negated averaged slopes on each tracked outgoing state variable.
//
// The write index wraps back to slot 1 after reaching capacity, overwriting
// the oldest cut; the active count saturates at capacity.
func (s *SingleCut) UpdateCuts(p problem.Problem, results []ScenarioResult) error {
	if len(results) != len(s.probabilities) {
		return fmt.Errorf("%w: got %d results for %d probabilities (%s)",
			ErrResultCount, len(results), len(s.probabilities), s.id)
	}

	constants := make([]float64, len(results))
	for i, result := range results {
		constants[i] = result.Constant
	}
	constant := floats.Dot(s.probabilities, constants)

	slopes := make(map[problem.StateVariableRef]float64)
	for i, result := range results {
		weight := s.probabilities[i]
		for ref, slope := range result.Slopes {
			slopes[ref] += weight * slope
		}
	}

	s.slot++
	if s.slot > s.maxCuts {
		s.slot = 1
	}
	if s.numCuts < s.maxCuts {
		s.numCuts++
	}
	s.cuts[s.slot-1] = Cut{Constant: constant, Slopes: slopes}

	row := s.slot - 1
	p.SetRHS(s.id, s.id, row, constant)
	for _, ref := range s.outgoing() {
		p.SetCoefficient(s.id, ref.Column, row, ref.Index, -slopes[ref])
	}
	return nil
}

// Update refreshes nothing between iterations; cut rows change only through
// UpdateCuts and Clear.
func (s *SingleCut) Update(problem.Problem, time.Time) {}

// Clear resets every cut row to the inactive state and zeroes the counters
// without touching problem topology, so decomposition can restart against
// the same structure.
func (s *SingleCut) Clear(p problem.Problem) {
	s.SetConstants(p)
	for i := range s.cuts {
		s.cuts[i] = Cut{}
	}
	s.numCuts = 0
	s.slot = 0
}

// outgoing lists the end-of-period state-variable instances of every
// contributing object, the columns cut slopes attach to.
func (s *SingleCut) outgoing() []problem.StateVariableRef {
	var refs []problem.StateVariableRef
	for _, object := range s.objects {
		for i := 0; i < object.StateVariableCount(); i++ {
			refs = append(refs, object.Outgoing(i))
		}
	}
	return refs
}
