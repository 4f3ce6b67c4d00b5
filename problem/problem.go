// Package problem defines the solver-agnostic surface between model objects
// and the sparse optimization problem: symbolic row/column declaration,
// state-variable identities, and the capability interface implemented by any
// object carrying optimization state across periods.
//
// All addressing is by symbolic identity plus local index, never by global
// numeric offset, so model-object code stays decoupled from the underlying
// matrix layout.
package problem

import (
	"github.com/vassdrag/lpbuild"
)

// StateVariableRef identifies one incarnation of a state variable: the owning
// object, the column it lives in, the local column index, and whether it is
// the end-of-period (outgoing) or start-of-period (incoming) instance.
//
// It is a value type and can key maps, which cut-slope accumulation relies on.
type StateVariableRef struct {
	Object   lpbuild.Id
	Column   lpbuild.Id
	Index    int
	Outgoing bool
}

// Stateful is the capability implemented by any model object with internal
// optimization state (storage content, lagged flow, ramp state). Boundary
// conditions operate purely through this interface and never see the
// concrete object type.
type Stateful interface {
	// ID returns the object's identity.
	ID() lpbuild.Id

	// StateVariableCount returns how many state variables the object owns.
	StateVariableCount() int

	// Incoming returns the start-of-period instance of state variable i.
	Incoming(i int) StateVariableRef

	// Outgoing returns the end-of-period instance of state variable i.
	Outgoing(i int) StateVariableRef

	// Ready reports whether the object's associated time structure is
	// resolved, the precondition for building it into a Problem.
	Ready() bool
}

// Problem is the sparse row/column builder boundary conditions write into.
// Implementations are not reentrant: structure is declared exactly once per
// object, then constants and cuts are refreshed against that stable
// structure. A call that addresses undeclared structure is a defect in the
// caller, not a recoverable condition, and implementations may panic on it.
type Problem interface {
	// AddColumns declares count columns under id.
	AddColumns(id lpbuild.Id, count int)

	// AddRows declares count rows under id.
	AddRows(id lpbuild.Id, count int)

	// SetCoefficient sets the matrix entry at (row, rowIndex) x (column, columnIndex).
	SetCoefficient(row, column lpbuild.Id, rowIndex, columnIndex int, value float64)

	// SetObjective sets the objective coefficient of (column, columnIndex).
	SetObjective(column lpbuild.Id, columnIndex int, value float64)

	// SetRHS sets the term's contribution to the right-hand side of (row, rowIndex).
	SetRHS(row, term lpbuild.Id, rowIndex int, value float64)
}
