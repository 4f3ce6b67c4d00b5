// Package lpbuild turns flat collections of named, cross-referencing
// declarative records into typed model objects for energy-system scheduling
// problems.
//
// Records carry a (category, variant) tag pair that selects a Handler from a
// Registry populated once at startup. The Resolver repeatedly sweeps the
// pending records, letting handlers install results into two write-once
// stores: a low-level store for shared primitive values (time windows, raw
// series) and a top-level store for fully constructed model objects
// (including boundary conditions). Forward references across records resolve
// naturally within as many passes as the longest dependency chain; a sweep
// that makes no progress escalates the remaining records into an
// UnresolvedError naming every unmet dependency.
//
// The companion packages build on this core: problem defines the sparse
// row/column surface and state-variable identities, boundary wires
// continuity and cost-to-go constraints onto state-bearing objects, timegrid
// supplies the time-window primitives, and handlers registers the built-in
// record variants.
package lpbuild
