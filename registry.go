package lpbuild

import (
	"fmt"
	"sort"
)

// Handler resolves one record variant. It is invoked with the growing stores,
// the record's identity, and its raw field mapping.
//
// A handler returns ok=false when the record cannot be resolved this pass;
// deps then lists the still-missing identities and neither store may have
// been mutated. It returns ok=true once the record is fully resolved and
// installed into the appropriate store; deps then lists the identities the
// record depended on, kept for diagnostics only. A non-nil error is fatal and
// aborts resolution.
type Handler func(top, low *Store, id Id, fields map[string]any) (ok bool, deps []Id, err error)

// Registry maps a (category, variant) key to the handler resolving that
// variant. It is populated once at startup through an explicit registration
// routine; duplicate registration is a configuration error.
type Registry struct {
	handlers map[VariantKey]Handler
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[VariantKey]Handler)}
}

// Register stores handler under key, guarding against duplicates.
func (r *Registry) Register(key VariantKey, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("lpbuild: handler for %s is nil", key)
	}
	if key.Category == "" || key.Variant == "" {
		return fmt.Errorf("lpbuild: variant key %s has empty parts", key)
	}
	if _, exists := r.handlers[key]; exists {
		return fmt.Errorf("lpbuild: variant %s already registered", key)
	}
	r.handlers[key] = handler
	return nil
}

// Handler returns the handler registered under key.
func (r *Registry) Handler(key VariantKey) (Handler, bool) {
	handler, ok := r.handlers[key]
	return handler, ok
}

// Keys returns every registered key sorted by its string form.
func (r *Registry) Keys() []VariantKey {
	keys := make([]VariantKey, 0, len(r.handlers))
	for key := range r.handlers {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}
