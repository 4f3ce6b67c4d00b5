package boundary

import (
	"fmt"
	"time"

	"github.com/vassdrag/lpbuild"
	"github.com/vassdrag/lpbuild/problem"
)

// StartEqualStop forces an object's end-of-horizon state to equal its
// start-of-horizon state, a cyclic boundary. For an owner with N state
// variables it allocates N equality rows; row i carries +1 on the outgoing
// instance and -1 on the incoming instance of state variable i.
//
// It is simultaneously an initial and a terminal condition, so it covers the
// owner on both ends by itself.
type StartEqualStop struct {
	id    lpbuild.Id
	owner problem.Stateful
}

// NewStartEqualStop constructs the condition from an explicit identity and
// owner without any checks, for callers wiring conditions before the owner
// is fully resolved.
func NewStartEqualStop(id lpbuild.Id, owner problem.Stateful) *StartEqualStop {
	return &StartEqualStop{id: id, owner: owner}
}

// StartEqualStopFor constructs the condition for a resolved owner, deriving
// the identity from the owner's name and requiring at least one state
// variable.
func StartEqualStopFor(owner problem.Stateful) (*StartEqualStop, error) {
	if owner.StateVariableCount() < 1 {
		return nil, fmt.Errorf("boundary: %s owns no state variables", owner.ID())
	}
	id := lpbuild.NewId(Category, "StartEqualStop_"+owner.ID().Name)
	return &StartEqualStop{id: id, owner: owner}, nil
}

// ID returns the condition's identity.
func (s *StartEqualStop) ID() lpbuild.Id { return s.id }

// Covered returns the owning object.
func (s *StartEqualStop) Covered() []problem.Stateful { return []problem.Stateful{s.owner} }

// Initial reports true: the cyclic boundary pins the start of the horizon.
func (s *StartEqualStop) Initial() bool { return true }

// Terminal reports true: the cyclic boundary pins the end of the horizon.
func (s *StartEqualStop) Terminal() bool { return true }

// Ready reports whether the owner's time structure is resolved.
func (s *StartEqualStop) Ready() bool { return s.owner.Ready() }

// Build allocates one equality row per state variable and sets the +1/-1
// coefficient pair on each.
func (s *StartEqualStop) Build(p problem.Problem) {
	n := s.owner.StateVariableCount()
	p.AddRows(s.id, n)
	for i := 0; i < n; i++ {
		out := s.owner.Outgoing(i)
		in := s.owner.Incoming(i)
		p.SetCoefficient(s.id, out.Column, i, out.Index, 1.0)
		p.SetCoefficient(s.id, in.Column, i, in.Index, -1.0)
	}
}

// SetConstants zeroes the right-hand side of every equality row.
func (s *StartEqualStop) SetConstants(p problem.Problem) {
	for i := 0; i < s.owner.StateVariableCount(); i++ {
		p.SetRHS(s.id, s.id, i, 0.0)
	}
}

// Update is a no-op: the cyclic boundary has no iteration-dependent terms.
func (s *StartEqualStop) Update(problem.Problem, time.Time) {}
