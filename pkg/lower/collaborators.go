package lower

import (
	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/syntax"
)

// The engine depends on a handful of collaborator capabilities. Defaults are
// wired by New; callers substitute their own with the With* options.

// Fallback lowers an argument list and emits a plain call when no macro
// claims a dispatched name.
type Fallback func(s Scope) (core.Node, Scope, error)

// FormLowerer is the slice of the engine handed to collaborators that need
// to lower sub-forms themselves.
type FormLowerer interface {
	Lower(form syntax.Form, s Scope) (core.Node, Scope, error)
	LowerAll(forms []syntax.Form, s Scope) ([]core.Node, Scope, error)
}

// ClauseCompiler owns pattern/guard semantics and the variable-binding merge
// across match clauses. The engine threads scope opaquely through it.
type ClauseCompiler interface {
	// CompileClauses compiles -> match arms into core clauses.
	CompileClauses(line int, clauses []*syntax.ClauseForm, s Scope) ([]*core.Clause, Scope, error)
	// ExtractGuards splits trailing when guards off a parameter list.
	ExtractGuards(params []syntax.Form) ([]syntax.Form, []syntax.Form)
	// CompileAssignable compiles a pattern in assignment position, binding
	// its variables into the returned scope.
	CompileAssignable(pattern syntax.Form, s Scope) (core.Node, Scope, error)
	// TryCatch compiles the catch section of an exception guard.
	TryCatch(line int, clauses []*syntax.ClauseForm, s Scope) ([]*core.Clause, Scope, error)
}

// MacroDispatcher resolves call-like forms that may name user-defined macros.
type MacroDispatcher interface {
	Dispatch(line int, name string, args []syntax.Form, s Scope, fallback Fallback) (core.Node, Scope, error)
}

// DefinitionRegistrar performs the process-wide bookkeeping for def, defp,
// and defmacro. Its effects are not scope-local: the caller keeps its input
// scope unchanged.
type DefinitionRegistrar interface {
	WrapDefinition(kind string, line int, call *syntax.Call, body syntax.Form, s Scope) (core.Node, error)
}

// ModuleTransformer lowers a defmodule body.
type ModuleTransformer interface {
	TransformModule(line int, ref core.Node, body syntax.Form, s Scope) (core.Node, Scope, error)
}

// ImportResolver owns import semantics.
type ImportResolver interface {
	ResolveImport(line int, filename, module string, target, opts syntax.Form, s Scope) (core.Node, Scope, error)
}

// ApplyOptimizer chooses between a statically resolved call shape and fully
// dynamic dispatch for the three-argument apply form. It receives the lowered
// callee and selector, the raw argument form, all three scope snapshots, and
// a FormLowerer for the argument list.
type ApplyOptimizer interface {
	OptimizeApply(line int, callee, selector core.Node, rawArgs syntax.Form, s, fromCallee, fromSelector Scope, lowerer FormLowerer) (core.Node, Scope, error)
}
