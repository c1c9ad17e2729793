package lower

import "fmt"

// Scope is the lexical lowering state threaded value-by-value through every
// recursive call for one top-level form. A Scope is never shared mutably
// between sibling sub-lowerings: each branch consumes an input Scope and
// produces its own output snapshot, which the caller folds back with merge or
// counterMerge.
type Scope struct {
	// Module is the enclosing module identity, or "" at top level.
	Module string
	// Function is the enclosing function identity, or "" outside any body.
	// Definitions and directives are forbidden while it is set.
	Function string
	// Filename feeds diagnostics.
	Filename string
	// NoName suppresses additional implicit naming while lowering an
	// exception-guard form.
	NoName bool
	// RefMode marks a position that expects a bare module reference.
	RefMode bool
	// RecurTarget is the self-reference identity established by an enclosing
	// loop construct; "" outside any loop.
	RecurTarget string
	// Scheduled is the ordered set of module identities discovered during
	// this pass. Appended to, never removed from.
	Scheduled []string
	// Counter mints fresh variable identities. Monotonically non-decreasing
	// across every lowering path, preserved even when branch-local bindings
	// are discarded.
	Counter int

	bindings map[string]struct{}
}

// NewScope creates the scope for lowering one top-level form.
func NewScope(filename string) Scope {
	return Scope{Filename: filename}
}

// allocate mints a fresh variable identity, advancing the counter.
func (s Scope) allocate() (string, Scope) {
	name := fmt.Sprintf("_cnd@%d", s.Counter)
	s.Counter++
	return name, s.bind(name)
}

// bind records name as a known variable. The binding set is copied so sibling
// scope snapshots stay independent.
func (s Scope) bind(name string) Scope {
	next := make(map[string]struct{}, len(s.bindings)+1)
	for k := range s.bindings {
		next[k] = struct{}{}
	}
	next[name] = struct{}{}
	s.bindings = next
	return s
}

// isBound reports whether name is a known variable in this scope.
func (s Scope) isBound(name string) bool {
	_, ok := s.bindings[name]
	return ok
}

// schedule appends a module identity to the ordered set, once.
func (s Scope) schedule(module string) Scope {
	for _, name := range s.Scheduled {
		if name == module {
			return s
		}
	}
	next := make([]string, 0, len(s.Scheduled)+1)
	next = append(next, s.Scheduled...)
	next = append(next, module)
	s.Scheduled = next
	return s
}

// merge is the full-merge discipline for sequential composition: the later
// sub-lowering inherits the earlier one's entire output scope.
func (s Scope) merge(later Scope) Scope {
	return later
}

// counterMerge is the branch-isolation discipline: only the fresh-name
// counter and the scheduled-module accumulation of the branch scopes are
// carried forward; bindings and context flags revert to the receiver.
func (s Scope) counterMerge(branches ...Scope) Scope {
	out := s
	for _, branch := range branches {
		if branch.Counter > out.Counter {
			out.Counter = branch.Counter
		}
		for _, module := range branch.Scheduled {
			out = out.schedule(module)
		}
	}
	return out
}
