package lower

import (
	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/syntax"
)

// MacroFunc expands a user-defined macro: it receives the raw argument forms
// and returns the surface form to lower in the macro's place.
type MacroFunc func(line int, args []syntax.Form, s Scope) (syntax.Form, error)

// macroTable is the default macro-dispatch collaborator: a table of named
// expanders. A claimed name expands and re-lowers; an unclaimed name falls
// back to a plain call by name via the caller-supplied callback.
type macroTable struct {
	engine *Engine
	macros map[string]MacroFunc
}

func newMacroTable(e *Engine) *macroTable {
	return &macroTable{engine: e, macros: make(map[string]MacroFunc)}
}

// WithMacro registers a macro expander under name on the default dispatcher.
func WithMacro(name string, fn MacroFunc) Option {
	return func(e *Engine) {
		if table, ok := e.macros.(*macroTable); ok {
			table.macros[name] = fn
		}
	}
}

func (mt *macroTable) Dispatch(line int, name string, args []syntax.Form, s Scope, fallback Fallback) (core.Node, Scope, error) {
	fn, ok := mt.macros[name]
	if !ok {
		return fallback(s)
	}
	expanded, err := fn(line, args, s)
	if err != nil {
		return nil, s, err
	}
	return mt.engine.Lower(expanded, s)
}
