package eval

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function is a host function reachable from derived-value expressions
// through the call("name", args...) dispatch.
type Function func(args ...any) (any, error)

// FunctionRegistry holds the host functions shared by every engine. Names
// are case-insensitive; the casing used at registration is preserved for
// listing. Safe for concurrent use.
type FunctionRegistry struct {
	mu      sync.RWMutex
	entries map[string]registration
}

type registration struct {
	name string
	fn   Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{entries: make(map[string]registration)}
}

// Register stores fn under name. A name may be registered once; duplicates
// differing only in case are rejected.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if name == "" {
		return fmt.Errorf("eval: function name must not be empty")
	}
	if fn == nil {
		return fmt.Errorf("eval: function %q has no implementation", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries == nil {
		r.entries = make(map[string]registration)
	}
	folded := strings.ToLower(name)
	if existing, taken := r.entries[folded]; taken {
		return fmt.Errorf("eval: function %q already registered as %q", name, existing.name)
	}
	r.entries[folded] = registration{name: name, fn: fn}
	return nil
}

// Call dispatches to the function registered under name, matched
// case-insensitively.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("eval: no function registry configured")
	}
	r.mu.RLock()
	entry, found := r.entries[strings.ToLower(name)]
	r.mu.RUnlock()
	if !found {
		return nil, fmt.Errorf("eval: function %q not registered", name)
	}
	return entry.fn(args...)
}

// Names lists the registered names in their original casing, sorted.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		names = append(names, entry.name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent registry holding the same functions, so an
// evaluator's function set is fixed at construction.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{entries: make(map[string]registration, len(r.entries))}
	for folded, entry := range r.entries {
		clone.entries[folded] = entry
	}
	return clone
}
