// Package core defines the canonical core-form representation produced by the
// lowering engine and consumed by code generation. The node set is closed:
// literals, variable references, the four call shapes, operator applications,
// match/block/tuple/list aggregates, the branch constructs (case, try,
// receive), closures, comprehensions, and definition markers.
package core
