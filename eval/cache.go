package eval

// ProgramCache stores compiled expression programs keyed by expression
// strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MapCache is a plain map-backed ProgramCache for single-threaded use.
type MapCache map[string]any

// Get returns the cached program for key.
func (c MapCache) Get(key string) (any, bool) {
	value, ok := c[key]
	return value, ok
}

// Set stores value under key.
func (c MapCache) Set(key string, value any) {
	c[key] = value
}
