package lpbuild

import (
	"fmt"
	"sort"
)

// Store is a write-once table keyed by Id. The Resolver grows two of them
// during resolution: one for low-level shared values and one for top-level
// model objects. Entries are created exactly once by their handler and
// thereafter only read.
type Store struct {
	entries map[Id]any
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[Id]any)}
}

// Put installs value under id, guarding against duplicates.
func (s *Store) Put(id Id, value any) error {
	if id.IsZero() {
		return fmt.Errorf("lpbuild: store key is empty")
	}
	if value == nil {
		return fmt.Errorf("lpbuild: nil value for %s", id)
	}
	if _, exists := s.entries[id]; exists {
		return fmt.Errorf("lpbuild: duplicate identity %s", id)
	}
	s.entries[id] = value
	return nil
}

// Get returns the value stored under id.
func (s *Store) Get(id Id) (any, bool) {
	value, ok := s.entries[id]
	return value, ok
}

// Has reports whether id is present.
func (s *Store) Has(id Id) bool {
	_, ok := s.entries[id]
	return ok
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Ids returns every key sorted by its string form, for deterministic output.
func (s *Store) Ids() []Id {
	ids := make([]Id, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// Missing filters ids down to those not present in the store, preserving
// order. Handlers use it to report unmet dependencies.
func (s *Store) Missing(ids ...Id) []Id {
	var missing []Id
	for _, id := range ids {
		if !s.Has(id) {
			missing = append(missing, id)
		}
	}
	return missing
}
