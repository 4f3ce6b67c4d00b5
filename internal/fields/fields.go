// Package fields provides typed accessors over the raw field mappings
// declarative records carry. Handlers use it to enforce their per-variant
// validation duties: required keys, declared types, and exactly-one-of
// shapes. Values are never coerced beyond the documented acceptances.
package fields

import (
	"fmt"
	"time"

	"github.com/vassdrag/lpbuild"
)

// String returns the string under key.
func String(m map[string]any, key string) (string, error) {
	value, ok := m[key]
	if !ok {
		return "", fmt.Errorf("fields: %q missing", key)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("fields: %q is %T, want string", key, value)
	}
	if s == "" {
		return "", fmt.Errorf("fields: %q is empty", key)
	}
	return s, nil
}

// Float returns the number under key. Integer and floating inputs are both
// accepted; anything else is rejected.
func Float(m map[string]any, key string) (float64, error) {
	value, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("fields: %q missing", key)
	}
	f, ok := asFloat(value)
	if !ok {
		return 0, fmt.Errorf("fields: %q is %T, want number", key, value)
	}
	return f, nil
}

// Int returns the integer under key.
func Int(m map[string]any, key string) (int, error) {
	value, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("fields: %q missing", key)
	}
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("fields: %q is %T, want integer", key, value)
	}
}

// Duration returns the duration under key, declared as a string in Go
// duration syntax ("1h30m").
func Duration(m map[string]any, key string) (time.Duration, error) {
	s, err := String(m, key)
	if err != nil {
		return 0, err
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("fields: %q: %w", key, err)
	}
	return d, nil
}

// Time returns the timestamp under key, accepting time.Time or an RFC 3339
// string.
func Time(m map[string]any, key string) (time.Time, error) {
	value, ok := m[key]
	if !ok {
		return time.Time{}, fmt.Errorf("fields: %q missing", key)
	}
	return asTime(key, value)
}

// Times returns the timestamp sequence under key.
func Times(m map[string]any, key string) ([]time.Time, error) {
	value, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("fields: %q missing", key)
	}
	seq, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("fields: %q is %T, want sequence of timestamps", key, value)
	}
	out := make([]time.Time, len(seq))
	for i, item := range seq {
		t, err := asTime(fmt.Sprintf("%s[%d]", key, i), item)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// Floats returns the numeric sequence under key.
func Floats(m map[string]any, key string) ([]float64, error) {
	value, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("fields: %q missing", key)
	}
	seq, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("fields: %q is %T, want sequence of numbers", key, value)
	}
	out := make([]float64, len(seq))
	for i, item := range seq {
		f, ok := asFloat(item)
		if !ok {
			return nil, fmt.Errorf("fields: %s[%d] is %T, want number", key, i, item)
		}
		out[i] = f
	}
	return out, nil
}

// Ref returns the "Category/Name" reference under key as an identity.
func Ref(m map[string]any, key string) (lpbuild.Id, error) {
	s, err := String(m, key)
	if err != nil {
		return lpbuild.Id{}, err
	}
	id, err := lpbuild.ParseId(s)
	if err != nil {
		return lpbuild.Id{}, fmt.Errorf("fields: %q: %w", key, err)
	}
	return id, nil
}

// Refs returns the sequence of references under key.
func Refs(m map[string]any, key string) ([]lpbuild.Id, error) {
	value, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("fields: %q missing", key)
	}
	seq, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("fields: %q is %T, want sequence of references", key, value)
	}
	out := make([]lpbuild.Id, len(seq))
	for i, item := range seq {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("fields: %s[%d] is %T, want string reference", key, i, item)
		}
		id, err := lpbuild.ParseId(s)
		if err != nil {
			return nil, fmt.Errorf("fields: %s[%d]: %w", key, i, err)
		}
		out[i] = id
	}
	return out, nil
}

// RefMap returns the alias-to-reference mapping under key.
func RefMap(m map[string]any, key string) (map[string]lpbuild.Id, error) {
	value, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("fields: %q missing", key)
	}
	raw, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("fields: %q is %T, want mapping of references", key, value)
	}
	out := make(map[string]lpbuild.Id, len(raw))
	for alias, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("fields: %s.%s is %T, want string reference", key, alias, item)
		}
		id, err := lpbuild.ParseId(s)
		if err != nil {
			return nil, fmt.Errorf("fields: %s.%s: %w", key, alias, err)
		}
		out[alias] = id
	}
	return out, nil
}

// OneOf returns the single key of keys present in m, rejecting zero and
// multiple matches.
func OneOf(m map[string]any, keys ...string) (string, error) {
	found := ""
	for _, key := range keys {
		if _, ok := m[key]; !ok {
			continue
		}
		if found != "" {
			return "", fmt.Errorf("fields: both %q and %q present, want exactly one of %v", found, key, keys)
		}
		found = key
	}
	if found == "" {
		return "", fmt.Errorf("fields: want exactly one of %v, none present", keys)
	}
	return found, nil
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func asTime(label string, value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("fields: %s: %w", label, err)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("fields: %s is %T, want timestamp", label, value)
	}
}
