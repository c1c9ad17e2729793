package lower

import (
	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/syntax"
)

// clauseCompiler is the default clause-lowering collaborator. It compiles
// match arms by binding pattern variables into the scope, lowering guards and
// bodies through the engine, and folding the per-clause scopes with the
// counter-only discipline so clause-local bindings never leak across arms.
type clauseCompiler struct {
	engine *Engine
}

func (cc *clauseCompiler) CompileClauses(line int, clauses []*syntax.ClauseForm, s Scope) ([]*core.Clause, Scope, error) {
	compiled := make([]*core.Clause, 0, len(clauses))
	out := s
	for _, arm := range clauses {
		clause, branch, err := cc.compileClause(arm, s)
		if err != nil {
			return nil, s, err
		}
		compiled = append(compiled, clause)
		out = out.counterMerge(branch)
		// Later clauses may mint fresh names; keep the counter moving.
		s.Counter = out.Counter
	}
	return compiled, out, nil
}

func (cc *clauseCompiler) compileClause(arm *syntax.ClauseForm, s Scope) (*core.Clause, Scope, error) {
	params, guards := cc.ExtractGuards(arm.Params)

	patterns := make([]core.Node, 0, len(params))
	current := s
	for _, param := range params {
		pattern, next, err := cc.CompileAssignable(param, current)
		if err != nil {
			return nil, s, err
		}
		patterns = append(patterns, pattern)
		current = next
	}

	guardNodes, current, err := cc.engine.LowerAll(guards, current)
	if err != nil {
		return nil, s, err
	}
	body, current, err := cc.engine.LowerAll(arm.Body, current)
	if err != nil {
		return nil, s, err
	}
	return &core.Clause{
		Line:     arm.Line,
		Patterns: patterns,
		Guards:   guardNodes,
		Body:     body,
	}, current, nil
}

// ExtractGuards splits trailing when guards off a parameter list: a final
// parameter of shape when(param, guards...) contributes its wrapped pattern
// to the parameters and its guards to the clause.
func (cc *clauseCompiler) ExtractGuards(params []syntax.Form) ([]syntax.Form, []syntax.Form) {
	if len(params) == 0 {
		return params, nil
	}
	last, ok := params[len(params)-1].(*syntax.Call)
	if !ok || last.Name != syntax.WhenName || len(last.Args) < 2 {
		return params, nil
	}
	out := make([]syntax.Form, 0, len(params))
	out = append(out, params[:len(params)-1]...)
	out = append(out, last.Args[0])
	return out, last.Args[1:]
}

// CompileAssignable compiles a pattern in assignment position. Variables bind
// into the scope; the wildcard _ matches without binding; literals and
// aggregates match structurally.
func (cc *clauseCompiler) CompileAssignable(pattern syntax.Form, s Scope) (core.Node, Scope, error) {
	switch p := pattern.(type) {
	case syntax.Atom:
		return &core.Literal{Value: p}, s, nil
	case syntax.Int:
		return &core.Literal{Value: int64(p)}, s, nil
	case syntax.Float:
		return &core.Literal{Value: float64(p)}, s, nil
	case syntax.Str:
		return &core.Literal{Value: string(p)}, s, nil
	case syntax.Var:
		if p.Name == "_" {
			return &core.VarRef{Line: p.Line, Name: "_"}, s, nil
		}
		return &core.VarRef{Line: p.Line, Name: p.Name}, s.bind(p.Name), nil
	case syntax.List:
		elems, next, err := cc.compileAssignables(p, s)
		if err != nil {
			return nil, s, err
		}
		return &core.ListNode{Elems: elems}, next, nil
	case syntax.Tuple:
		elems, next, err := cc.compileAssignables(p.Elems, s)
		if err != nil {
			return nil, s, err
		}
		return &core.Tuple{Elems: elems}, next, nil
	case *syntax.Call:
		if p.Name == "<<>>" {
			elems, next, err := cc.compileAssignables(p.Args, s)
			if err != nil {
				return nil, s, err
			}
			return &core.Call{Line: p.Line, Fun: "<<>>", Args: elems}, next, nil
		}
		return nil, s, syntaxErrorf(p.Line, s.Filename, p.Name, "invalid pattern")
	default:
		return nil, s, syntaxErrorf(0, s.Filename, "", "invalid pattern %T", pattern)
	}
}

func (cc *clauseCompiler) compileAssignables(patterns []syntax.Form, s Scope) ([]core.Node, Scope, error) {
	nodes := make([]core.Node, 0, len(patterns))
	current := s
	for _, pattern := range patterns {
		node, next, err := cc.CompileAssignable(pattern, current)
		if err != nil {
			return nil, s, err
		}
		nodes = append(nodes, node)
		current = next
	}
	return nodes, current, nil
}

// TryCatch compiles the catch clauses of an exception guard. Catch arms share
// the match-arm shape; the naming-suppression flag already set on the scope
// keeps pattern compilation from introducing implicit names.
func (cc *clauseCompiler) TryCatch(line int, clauses []*syntax.ClauseForm, s Scope) ([]*core.Clause, Scope, error) {
	return cc.CompileClauses(line, clauses, s)
}
