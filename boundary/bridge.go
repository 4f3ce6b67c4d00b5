package boundary

import (
	"fmt"
	"time"

	"github.com/vassdrag/lpbuild"
	"github.com/vassdrag/lpbuild/problem"
)

// Bridge ties the outgoing state of one object to the incoming state of
// another, 1:1 by state-variable index. It chains independently solved
// stages, such as a deterministic first stage feeding stochastic
// second-stage scenarios.
//
// A bridge is deliberately neither an initial nor a terminal condition: it
// is a structural seam, and the bridged objects are exempt from the
// init+terminal coverage requirement at that seam. Whether each endpoint
// still needs its own condition on the free end is the caller's
// responsibility; the bridge makes no ruling on it.
type Bridge struct {
	id   lpbuild.Id
	from problem.Stateful
	to   problem.Stateful
}

// NewBridge constructs a bridge from the outgoing state of from to the
// incoming state of to, rejecting mismatched state-variable counts.
func NewBridge(id lpbuild.Id, from, to problem.Stateful) (*Bridge, error) {
	if n, m := from.StateVariableCount(), to.StateVariableCount(); n != m {
		return nil, fmt.Errorf("boundary: bridge %s: %s owns %d state variables, %s owns %d",
			id, from.ID(), n, to.ID(), m)
	}
	return &Bridge{id: id, from: from, to: to}, nil
}

// ID returns the bridge's identity.
func (b *Bridge) ID() lpbuild.Id { return b.id }

// Covered returns both bridged objects.
func (b *Bridge) Covered() []problem.Stateful { return []problem.Stateful{b.from, b.to} }

// Initial reports false: the bridge sits outside the initial/terminal
// framework.
func (b *Bridge) Initial() bool { return false }

// Terminal reports false, see Initial.
func (b *Bridge) Terminal() bool { return false }

// Ready reports whether both endpoints' time structures are resolved.
func (b *Bridge) Ready() bool { return b.from.Ready() && b.to.Ready() }

// Build allocates one equality row per bridged state-variable pair, +1 on
// the upstream outgoing instance and -1 on the downstream incoming instance.
func (b *Bridge) Build(p problem.Problem) {
	n := b.from.StateVariableCount()
	p.AddRows(b.id, n)
	for i := 0; i < n; i++ {
		out := b.from.Outgoing(i)
		in := b.to.Incoming(i)
		p.SetCoefficient(b.id, out.Column, i, out.Index, 1.0)
		p.SetCoefficient(b.id, in.Column, i, in.Index, -1.0)
	}
}

// SetConstants zeroes the right-hand side of every seam row.
func (b *Bridge) SetConstants(p problem.Problem) {
	for i := 0; i < b.from.StateVariableCount(); i++ {
		p.SetRHS(b.id, b.id, i, 0.0)
	}
}

// Update is a no-op: the seam has no iteration-dependent terms.
func (b *Bridge) Update(problem.Problem, time.Time) {}
