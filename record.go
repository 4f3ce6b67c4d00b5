package lpbuild

import "fmt"

// Record is one named, typed piece of declarative input. Field values are
// scalars, typed primitives, "Category/Name" references to other records,
// nested mappings, or raw sequences. Records are created once from input and
// never mutated.
type Record struct {
	Category string
	Variant  string
	Name     string
	Fields   map[string]any
}

// Id returns the identity the record resolves under.
func (r Record) Id() Id {
	return Id{Category: r.Category, Name: r.Name}
}

// Key returns the registry key selecting the record's handler.
func (r Record) Key() VariantKey {
	return VariantKey{Category: r.Category, Variant: r.Variant}
}

// Validate checks the record's tag parts are populated.
func (r Record) Validate() error {
	if r.Category == "" {
		return fmt.Errorf("lpbuild: record %q has empty category", r.Name)
	}
	if r.Variant == "" {
		return fmt.Errorf("lpbuild: record %s has empty variant", r.Id())
	}
	if r.Name == "" {
		return fmt.Errorf("lpbuild: record with key %s has empty name", r.Key())
	}
	return nil
}
