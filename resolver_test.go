package lpbuild

import (
	"errors"
	"strings"
	"testing"
)

// constHandler installs the record's "value" field into the low-level store.
func constHandler(_, low *Store, id Id, raw map[string]any) (bool, []Id, error) {
	value, ok := raw["value"]
	if !ok {
		return false, nil, errors.New("value missing")
	}
	return true, nil, low.Put(id, value)
}

// copyHandler waits for the low-level value referenced by "source" and
// installs a copy of it.
func copyHandler(_, low *Store, id Id, raw map[string]any) (bool, []Id, error) {
	ref, ok := raw["source"].(string)
	if !ok {
		return false, nil, errors.New("source missing")
	}
	source, err := ParseId(ref)
	if err != nil {
		return false, nil, err
	}
	value, found := low.Get(source)
	if !found {
		return false, []Id{source}, nil
	}
	return true, []Id{source}, low.Put(id, value)
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	registry := NewRegistry()
	if err := registry.Register(NewVariantKey("Series", "Const"), constHandler); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(NewVariantKey("Series", "Copy"), copyHandler); err != nil {
		t.Fatal(err)
	}
	return registry
}

func newTestResolver(t *testing.T, opts ...ResolverOption) *Resolver {
	t.Helper()
	resolver, err := NewResolver(newTestRegistry(t), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return resolver
}

func TestResolveForwardReference(t *testing.T) {
	// The copy appears before the constant it references; resolution must
	// still converge.
	records := []Record{
		{Category: "Series", Variant: "Copy", Name: "mirror", Fields: map[string]any{"source": "Series/base"}},
		{Category: "Series", Variant: "Const", Name: "base", Fields: map[string]any{"value": 42.0}},
	}

	var passes []PassEvent
	resolver := newTestResolver(t, WithLogger(LoggerFunc(func(event PassEvent) {
		passes = append(passes, event)
	})))

	_, low, err := resolver.ResolveStores(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	value, ok := low.Get(NewId("Series", "mirror"))
	if !ok {
		t.Fatal("mirror not resolved")
	}
	if value != 42.0 {
		t.Fatalf("mirror = %v, want 42", value)
	}
	if len(passes) != 2 {
		t.Fatalf("got %d passes, want 2", len(passes))
	}
	if passes[0].Resolved != 1 || passes[0].Pending != 1 {
		t.Fatalf("pass 1 resolved=%d pending=%d, want 1/1", passes[0].Resolved, passes[0].Pending)
	}
	if passes[0].RunID == "" {
		t.Fatal("pass event missing run id")
	}
}

func TestResolveChainLongerThanInputOrder(t *testing.T) {
	// Three-link chain declared in reverse order resolves in three passes.
	records := []Record{
		{Category: "Series", Variant: "Copy", Name: "c", Fields: map[string]any{"source": "Series/b"}},
		{Category: "Series", Variant: "Copy", Name: "b", Fields: map[string]any{"source": "Series/a"}},
		{Category: "Series", Variant: "Const", Name: "a", Fields: map[string]any{"value": 1.0}},
	}
	resolver := newTestResolver(t)
	_, low, err := resolver.ResolveStores(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if low.Len() != 3 {
		t.Fatalf("low store has %d entries, want 3", low.Len())
	}
}

func TestResolveMissingDependency(t *testing.T) {
	records := []Record{
		{Category: "Series", Variant: "Copy", Name: "orphan", Fields: map[string]any{"source": "Series/nowhere"}},
	}
	resolver := newTestResolver(t)
	_, err := resolver.Resolve(records)
	if err == nil {
		t.Fatal("expected error")
	}
	var unresolved *UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("error is %T, want *UnresolvedError", err)
	}
	if len(unresolved.Pending) != 1 {
		t.Fatalf("got %d pending records, want 1", len(unresolved.Pending))
	}
	pending := unresolved.Pending[0]
	if pending.Id != NewId("Series", "orphan") {
		t.Fatalf("pending id = %s", pending.Id)
	}
	if len(pending.Missing) != 1 || pending.Missing[0] != NewId("Series", "nowhere") {
		t.Fatalf("missing = %v, want [Series/nowhere]", pending.Missing)
	}
	if !strings.Contains(err.Error(), "Series/nowhere") {
		t.Fatalf("diagnostic %q does not name the missing identity", err.Error())
	}
}

func TestResolveUnregisteredVariant(t *testing.T) {
	invoked := false
	registry := NewRegistry()
	if err := registry.Register(NewVariantKey("Series", "Const"), func(top, low *Store, id Id, raw map[string]any) (bool, []Id, error) {
		invoked = true
		return constHandler(top, low, id, raw)
	}); err != nil {
		t.Fatal(err)
	}
	resolver, err := NewResolver(registry)
	if err != nil {
		t.Fatal(err)
	}

	records := []Record{
		{Category: "Series", Variant: "Const", Name: "a", Fields: map[string]any{"value": 1.0}},
		{Category: "Series", Variant: "Unknown", Name: "b", Fields: map[string]any{}},
	}
	_, err = resolver.Resolve(records)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Series.Unknown") {
		t.Fatalf("diagnostic %q does not name the variant key", err.Error())
	}
	if invoked {
		t.Fatal("handlers ran despite unregistered variant: coverage must be checked before any pass")
	}
}

func TestResolveFatalHandlerError(t *testing.T) {
	records := []Record{
		{Category: "Series", Variant: "Const", Name: "broken", Fields: map[string]any{}},
	}
	resolver := newTestResolver(t)
	_, err := resolver.Resolve(records)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Series/broken") {
		t.Fatalf("diagnostic %q does not carry the record identity", err.Error())
	}
}

func TestResolveRejectsInvalidRecord(t *testing.T) {
	for _, record := range []Record{
		{Variant: "Const", Name: "a"},
		{Category: "Series", Name: "a"},
		{Category: "Series", Variant: "Const"},
	} {
		resolver := newTestResolver(t)
		if _, err := resolver.Resolve([]Record{record}); err == nil {
			t.Fatalf("record %+v accepted, want error", record)
		}
	}
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	registry := NewRegistry()
	key := NewVariantKey("Series", "Const")
	if err := registry.Register(key, constHandler); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register(key, constHandler); err == nil {
		t.Fatal("duplicate registration accepted")
	}
}

func TestRegistryRejectsEmptyKey(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(NewVariantKey("", "Const"), constHandler); err == nil {
		t.Fatal("empty category accepted")
	}
	if err := registry.Register(NewVariantKey("Series", ""), constHandler); err == nil {
		t.Fatal("empty variant accepted")
	}
	if err := registry.Register(NewVariantKey("Series", "Const"), nil); err == nil {
		t.Fatal("nil handler accepted")
	}
}

func TestStoreDuplicatePut(t *testing.T) {
	store := NewStore()
	id := NewId("Series", "a")
	if err := store.Put(id, 1.0); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(id, 2.0); err == nil {
		t.Fatal("duplicate put accepted")
	}
	value, _ := store.Get(id)
	if value != 1.0 {
		t.Fatalf("duplicate put overwrote value: %v", value)
	}
}

func TestParseId(t *testing.T) {
	tests := []struct {
		ref     string
		want    Id
		wantErr bool
	}{
		{ref: "Series/spot", want: NewId("Series", "spot")},
		{ref: "Series/nested/name", want: NewId("Series", "nested/name")},
		{ref: "Series", wantErr: true},
		{ref: "/name", wantErr: true},
		{ref: "Series/", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseId(tt.ref)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseId(%q) accepted", tt.ref)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseId(%q): %v", tt.ref, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseId(%q) = %v, want %v", tt.ref, got, tt.want)
		}
	}
}
