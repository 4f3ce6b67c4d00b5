package lpbuild

import (
	"fmt"
	"strings"
)

// Id identifies one record or resolved object by (category, instance name).
// It is a value type so it can key stores and slope maps directly.
type Id struct {
	Category string
	Name     string
}

// NewId constructs an Id from its category and instance name.
func NewId(category, name string) Id {
	return Id{Category: category, Name: name}
}

// ParseId splits a "Category/Name" reference into an Id. The name part may
// itself contain slashes.
func ParseId(ref string) (Id, error) {
	category, name, found := strings.Cut(ref, "/")
	if !found || category == "" || name == "" {
		return Id{}, fmt.Errorf("lpbuild: malformed reference %q, want \"Category/Name\"", ref)
	}
	return Id{Category: category, Name: name}, nil
}

// IsZero reports whether the Id carries no category and no name.
func (id Id) IsZero() bool {
	return id.Category == "" && id.Name == ""
}

func (id Id) String() string {
	return id.Category + "/" + id.Name
}

// VariantKey selects the handler responsible for one record variant.
type VariantKey struct {
	Category string
	Variant  string
}

// NewVariantKey constructs a VariantKey from its category and variant name.
func NewVariantKey(category, variant string) VariantKey {
	return VariantKey{Category: category, Variant: variant}
}

func (k VariantKey) String() string {
	return k.Category + "." + k.Variant
}
