package lpbuild

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PendingRecord describes one record left unresolved after the fixpoint,
// together with the identities it reported missing on its final attempt.
type PendingRecord struct {
	Id      Id
	Key     VariantKey
	Missing []Id
}

// UnresolvedError is returned when a full resolution pass makes no progress
// while records remain pending.
type UnresolvedError struct {
	RunID   string
	Passes  int
	Pending []PendingRecord
}

func (e *UnresolvedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "lpbuild: %d records unresolved after %d passes (run %s):", len(e.Pending), e.Passes, e.RunID)
	for _, pending := range e.Pending {
		fmt.Fprintf(&b, "\n  %s (%s): %d missing", pending.Id, pending.Key, len(pending.Missing))
		for _, dep := range pending.Missing {
			fmt.Fprintf(&b, " %s", dep)
		}
	}
	return b.String()
}

// ResolverOption configures a Resolver instance.
type ResolverOption func(*Resolver)

// WithLogger attaches a pass logger to the resolver.
func WithLogger(logger Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver runs the convergence loop that turns records into stored objects.
// It is single-threaded: each pass is a deterministic sequential sweep with
// exactly one mutator per record.
type Resolver struct {
	registry *Registry
	logger   Logger
}

// NewResolver constructs a resolver over registry.
func NewResolver(registry *Registry, opts ...ResolverOption) (*Resolver, error) {
	if registry == nil {
		return nil, errors.New("lpbuild: registry is required")
	}
	r := &Resolver{registry: registry, logger: noopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Resolve sweeps records until every one is resolved, returning the top-level
// store. Input order is irrelevant to the outcome but fixes the order
// handlers run in each pass and the order of failure diagnostics.
//
// Resolution is monotonic: a resolved record is never revisited and the
// pending set only shrinks.
func (r *Resolver) Resolve(records []Record) (*Store, error) {
	top, _, err := r.ResolveStores(records)
	return top, err
}

// ResolveStores is Resolve exposing both stores, for callers that need the
// resolved low-level values as well.
func (r *Resolver) ResolveStores(records []Record) (*Store, *Store, error) {
	runID := uuid.NewString()

	for _, record := range records {
		if err := record.Validate(); err != nil {
			return nil, nil, err
		}
		if _, ok := r.registry.Handler(record.Key()); !ok {
			return nil, nil, fmt.Errorf("lpbuild: no handler registered for %s (record %s, run %s)", record.Key(), record.Id(), runID)
		}
	}

	top := NewStore()
	low := NewStore()
	pending := make([]Record, len(records))
	copy(pending, records)
	missing := make(map[Id][]Id, len(records))

	pass := 0
	for len(pending) > 0 {
		pass++
		start := time.Now()
		resolved := 0
		next := pending[:0:0]

		for _, record := range pending {
			handler, _ := r.registry.Handler(record.Key())
			ok, deps, err := handler(top, low, record.Id(), record.Fields)
			if err != nil {
				return nil, nil, fmt.Errorf("lpbuild: resolve %s (run %s): %w", record.Id(), runID, err)
			}
			if !ok {
				missing[record.Id()] = deps
				next = append(next, record)
				continue
			}
			delete(missing, record.Id())
			resolved++
		}

		r.logger.LogPass(PassEvent{
			RunID:    runID,
			Pass:     pass,
			Resolved: resolved,
			Pending:  len(next),
			Values:   low.Len(),
			Objects:  top.Len(),
			Duration: time.Since(start),
		})

		if resolved == 0 {
			stalled := make([]PendingRecord, 0, len(next))
			for _, record := range next {
				stalled = append(stalled, PendingRecord{
					Id:      record.Id(),
					Key:     record.Key(),
					Missing: missing[record.Id()],
				})
			}
			return nil, nil, &UnresolvedError{RunID: runID, Passes: pass, Pending: stalled}
		}
		pending = next
	}

	return top, low, nil
}
