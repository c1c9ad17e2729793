// Package lower implements the macro-lowering stage of the Cinder front end.
// It rewrites surface forms (operators, control-flow keywords, definition
// keywords, closures, comprehensions, module directives, loop/recur sugar)
// into the canonical core-form representation in pkg/core, threading an
// immutable-snapshot Scope value through every rewrite. Lowering is a pure,
// deterministic, single-threaded recursive descent over (form, scope) pairs;
// sibling sub-lowerings are folded back with either the full or the
// counter-only merge discipline on their output scopes.
package lower
