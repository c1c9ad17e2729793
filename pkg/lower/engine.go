package lower

import (
	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/syntax"
)

// Engine is the lowering engine. It is stateless between top-level forms:
// everything that persists across a form's lowering travels in the Scope.
type Engine struct {
	clauses  ClauseCompiler
	macros   MacroDispatcher
	defs     DefinitionRegistrar
	modules  ModuleTransformer
	imports  ImportResolver
	applyOpt ApplyOptimizer
}

// Option overrides one collaborator of an Engine.
type Option func(*Engine)

// WithClauseCompiler substitutes the clause-lowering collaborator.
func WithClauseCompiler(c ClauseCompiler) Option { return func(e *Engine) { e.clauses = c } }

// WithMacroDispatcher substitutes the macro-dispatch collaborator.
func WithMacroDispatcher(m MacroDispatcher) Option { return func(e *Engine) { e.macros = m } }

// WithDefinitionRegistrar substitutes the definition-registration collaborator.
func WithDefinitionRegistrar(d DefinitionRegistrar) Option { return func(e *Engine) { e.defs = d } }

// WithModuleTransformer substitutes the module-body collaborator.
func WithModuleTransformer(m ModuleTransformer) Option { return func(e *Engine) { e.modules = m } }

// WithImportResolver substitutes the import-resolution collaborator.
func WithImportResolver(r ImportResolver) Option { return func(e *Engine) { e.imports = r } }

// WithApplyOptimizer substitutes the apply-optimization collaborator.
func WithApplyOptimizer(o ApplyOptimizer) Option { return func(e *Engine) { e.applyOpt = o } }

// New constructs an engine with the default collaborators, then applies opts.
func New(opts ...Option) *Engine {
	e := &Engine{}
	e.clauses = &clauseCompiler{engine: e}
	e.macros = newMacroTable(e)
	e.defs = newDefinitionTable()
	e.modules = &moduleTransformer{engine: e}
	e.imports = newImportTable()
	e.applyOpt = applyOptimizer{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Lower rewrites one surface form into its core form, returning the resulting
// scope snapshot. This is the single entry point the outer pipeline invokes
// per top-level form; every lowering rule reaches sub-forms through it.
func (e *Engine) Lower(form syntax.Form, s Scope) (core.Node, Scope, error) {
	switch f := form.(type) {
	case syntax.Atom:
		return &core.Literal{Value: f}, s, nil
	case syntax.Int:
		return &core.Literal{Value: int64(f)}, s, nil
	case syntax.Float:
		return &core.Literal{Value: float64(f)}, s, nil
	case syntax.Str:
		return &core.Literal{Value: string(f)}, s, nil
	case syntax.Var:
		if s.RefMode {
			// A bare name in reference position denotes a module identity.
			return &core.Literal{Line: f.Line, Value: syntax.Atom(f.Name)}, s, nil
		}
		return &core.VarRef{Line: f.Line, Name: f.Name}, s, nil
	case syntax.List:
		elems, s1, err := e.LowerAll(f, s)
		if err != nil {
			return nil, s, err
		}
		return &core.ListNode{Elems: elems}, s1, nil
	case syntax.Tuple:
		elems, s1, err := e.LowerAll(f.Elems, s)
		if err != nil {
			return nil, s, err
		}
		return &core.Tuple{Elems: elems}, s1, nil
	case syntax.Keywords:
		return e.lowerKeywordList(f, s)
	case *syntax.Call:
		return e.dispatchCall(f, s)
	default:
		return nil, s, syntaxErrorf(0, s.Filename, "", "cannot lower form %T", form)
	}
}

// LowerAll lowers a form sequence left-to-right, threading scope under the
// full-merge discipline: each later form sees the earlier form's bindings.
func (e *Engine) LowerAll(forms []syntax.Form, s Scope) ([]core.Node, Scope, error) {
	nodes := make([]core.Node, 0, len(forms))
	current := s
	for _, form := range forms {
		node, next, err := e.Lower(form, current)
		if err != nil {
			return nil, s, err
		}
		nodes = append(nodes, node)
		current = current.merge(next)
	}
	return nodes, current, nil
}

// lowerBody lowers a statement sequence into nodes, unwrapping a trivial
// single-expression block to its expression list.
func (e *Engine) lowerBody(body syntax.Form, s Scope) ([]core.Node, Scope, error) {
	return e.LowerAll(syntax.BlockToForms(body), s)
}

// bodyNode folds a lowered statement sequence into a single node, without
// introducing a block wrapper around a lone expression.
func bodyNode(line int, nodes []core.Node) core.Node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	return &core.Block{Line: line, Exprs: nodes}
}

// A keyword list in argument position lowers to a list of 2-tuples.
func (e *Engine) lowerKeywordList(kw syntax.Keywords, s Scope) (core.Node, Scope, error) {
	elems := make([]core.Node, 0, len(kw))
	current := s
	for _, pair := range kw {
		value, next, err := e.Lower(pair.Value, current)
		if err != nil {
			return nil, s, err
		}
		current = current.merge(next)
		elems = append(elems, &core.Tuple{Elems: []core.Node{
			&core.Literal{Value: pair.Key},
			value,
		}})
	}
	return &core.ListNode{Elems: elems}, current, nil
}
