package lower

import (
	"sort"

	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/syntax"
)

// usingHook is the fixed hook function invoked on a module by the use
// expansion.
const usingHook = "__using__"

// lowerUse expands use(ref, args...) inside a module body into a block that
// first requires ref, then applies ref's using hook with the enclosing module
// identity prepended to the arguments, and re-lowers that block. Outside a
// module body it is a scope error.
func (e *Engine) lowerUse(c *syntax.Call, s Scope) (core.Node, Scope, error) {
	if s.Module == "" {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "use", "cannot invoke use outside of a module")
	}
	if len(c.Args) == 0 {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "use", "invalid arguments for use")
	}
	ref := c.Args[0]
	rest := c.Args[1:]

	hookArgs := append(syntax.List{syntax.Atom(s.Module)}, rest...)
	block := syntax.Block(c.Line,
		syntax.C("require", c.Line, ref),
		syntax.C("apply", c.Line, ref, syntax.Atom(usingHook), hookArgs),
	)
	return e.Lower(block, s)
}

// lowerImport delegates import resolution entirely to the collaborator. It is
// legal only directly inside a module body: both outside any module and
// inside a function body it is a scope error. The one-argument form defaults
// the option list to empty before delegating.
func (e *Engine) lowerImport(c *syntax.Call, s Scope) (core.Node, Scope, error) {
	if s.Module == "" || s.Function != "" {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "import", "cannot invoke import outside of a module body")
	}
	var target, opts syntax.Form
	switch len(c.Args) {
	case 1:
		target, opts = c.Args[0], syntax.Keywords{}
	case 2:
		target, opts = c.Args[0], c.Args[1]
	default:
		return nil, s, syntaxErrorf(c.Line, s.Filename, "import", "invalid arguments for import")
	}
	return e.imports.ResolveImport(c.Line, s.Filename, s.Module, target, opts, s)
}

// lowerRequire resolves its reference in reference mode and schedules the
// module identity for the pass, emitting the module literal. The use
// expansion relies on it; standalone require carries no extra legality rule
// beyond what its position already enforces.
func (e *Engine) lowerRequire(c *syntax.Call, s Scope) (core.Node, Scope, error) {
	if len(c.Args) != 1 {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "require", "invalid arguments for require")
	}
	refScope := s
	refScope.RefMode = true
	ref, s1, err := e.Lower(c.Args[0], refScope)
	if err != nil {
		return nil, s, err
	}
	s1.RefMode = s.RefMode
	if name, ok := core.AtomOf(ref); ok {
		s1 = s1.schedule(name)
	}
	return ref, s1, nil
}

// importTable is the default import-resolution collaborator: it validates
// the target module reference, records the import edge per importing module,
// and emits the module literal. Full visibility semantics belong to the
// surrounding pipeline; an optional module registry narrows accepted targets
// to known modules.
type importTable struct {
	edges    map[string][]string
	registry ModuleRegistry
}

// ModuleRegistry answers whether a module identity is known to the loader.
type ModuleRegistry interface {
	Known(module string) bool
}

func newImportTable() *importTable {
	return &importTable{edges: make(map[string][]string)}
}

// WithImportRegistry wires a module registry into the default import
// resolver, rejecting imports of modules the loader has never seen.
func WithImportRegistry(registry ModuleRegistry) Option {
	return func(e *Engine) {
		if table, ok := e.imports.(*importTable); ok {
			table.registry = registry
		}
	}
}

func (it *importTable) ResolveImport(line int, filename, module string, target, opts syntax.Form, s Scope) (core.Node, Scope, error) {
	var name string
	switch t := target.(type) {
	case syntax.Atom:
		name = string(t)
	case syntax.Var:
		name = t.Name
	default:
		return nil, s, syntaxErrorf(line, filename, "import", "invalid arguments for import")
	}
	if _, ok := opts.(syntax.Keywords); !ok {
		return nil, s, syntaxErrorf(line, filename, "import", "import options must be a keyword list")
	}
	if it.registry != nil && !it.registry.Known(name) {
		return nil, s, syntaxErrorf(line, filename, "import", "module %s is not available", name)
	}
	it.edges[module] = append(it.edges[module], name)
	return &core.Literal{Line: line, Value: syntax.Atom(name)}, s.schedule(name), nil
}

// Imports lists the modules imported by the named module, in stable order.
func (it *importTable) Imports(module string) []string {
	out := append([]string(nil), it.edges[module]...)
	sort.Strings(out)
	return out
}
