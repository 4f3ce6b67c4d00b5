// Package boundary wires continuity and cost-to-go constraints onto
// state-bearing model objects across time and scenario seams.
//
// Every top-level object owning state variables must end up covered on both
// ends: either by one condition that is simultaneously initial and terminal
// (StartEqualStop), or by separate conditions per end. Exempt marks an object
// as deliberately uncovered on one or both ends. Bridge ties two objects
// across a stage seam and sits outside the initial/terminal framework
// entirely. SingleCut approximates cost beyond the horizon as a
// piecewise-linear lower envelope learned from scenario sub-problems.
package boundary

import (
	"time"

	"github.com/vassdrag/lpbuild"
	"github.com/vassdrag/lpbuild/problem"
)

// Category tags boundary-condition identities and records.
const Category = "Boundary"

// Condition is the capability set shared by every boundary-condition
// variant. Build is called exactly once after Ready reports true; constants
// and per-iteration state are refreshed against that stable structure.
type Condition interface {
	// ID returns the condition's identity.
	ID() lpbuild.Id

	// Covered returns the state-bearing objects the condition applies to.
	Covered() []problem.Stateful

	// Initial reports whether the condition covers the start of the horizon.
	Initial() bool

	// Terminal reports whether the condition covers the end of the horizon.
	Terminal() bool

	// Ready reports whether every covered object's time structure is
	// resolved, the precondition for Build and SetConstants.
	Ready() bool

	// Build declares the condition's rows and columns in p.
	Build(p problem.Problem)

	// SetConstants writes the constraint constants for the built structure.
	SetConstants(p problem.Problem)

	// Update refreshes iteration-dependent terms for the period starting at
	// start. Static variants are no-ops.
	Update(p problem.Problem, start time.Time)
}

// Exempt marks an object as deliberately uncovered on the flagged ends. It
// contributes nothing to the problem.
type Exempt struct {
	id       lpbuild.Id
	object   problem.Stateful
	initial  bool
	terminal bool
}

// NewExemptInitial exempts object from needing an initial condition.
func NewExemptInitial(id lpbuild.Id, object problem.Stateful) *Exempt {
	return &Exempt{id: id, object: object, initial: true}
}

// NewExemptTerminal exempts object from needing a terminal condition.
func NewExemptTerminal(id lpbuild.Id, object problem.Stateful) *Exempt {
	return &Exempt{id: id, object: object, terminal: true}
}

// NewExempt exempts object on both ends.
func NewExempt(id lpbuild.Id, object problem.Stateful) *Exempt {
	return &Exempt{id: id, object: object, initial: true, terminal: true}
}

// ID returns the condition's identity.
func (e *Exempt) ID() lpbuild.Id { return e.id }

// Covered returns the exempted object.
func (e *Exempt) Covered() []problem.Stateful { return []problem.Stateful{e.object} }

// Initial reports whether the exemption covers the start of the horizon.
func (e *Exempt) Initial() bool { return e.initial }

// Terminal reports whether the exemption covers the end of the horizon.
func (e *Exempt) Terminal() bool { return e.terminal }

// Ready always reports true: there is nothing to build.
func (e *Exempt) Ready() bool { return true }

// Build contributes nothing.
func (e *Exempt) Build(problem.Problem) {}

// SetConstants contributes nothing.
func (e *Exempt) SetConstants(problem.Problem) {}

// Update contributes nothing.
func (e *Exempt) Update(problem.Problem, time.Time) {}
