package lower

import (
	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/syntax"
)

// lowerFn lowers a closure literal. Two shapes are accepted: a single clause
// written as parameters plus a do body, or multiple match-style clauses
// grouped under a keyword block. Every clause compiles independently from the
// same input scope; the clause scopes fold back counter-only so clause-local
// bindings stay inside the closure.
func (e *Engine) lowerFn(c *syntax.Call, s Scope) (core.Node, Scope, error) {
	arms, err := fnClauses(c)
	if err != nil {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "fn", "missing do block")
	}

	clauses := make([]*core.Clause, 0, len(arms))
	out := s
	for _, arm := range arms {
		compiled, branch, err := e.clauses.CompileClauses(c.Line, []*syntax.ClauseForm{arm}, s)
		if err != nil {
			return nil, s, err
		}
		clauses = append(clauses, compiled...)
		out = out.counterMerge(branch)
		s.Counter = out.Counter
	}
	return &core.Closure{Line: c.Line, Clauses: clauses}, out, nil
}

func fnClauses(c *syntax.Call) ([]*syntax.ClauseForm, error) {
	if len(c.Args) == 1 {
		if kw, ok := c.Args[0].(syntax.Keywords); ok && !kw.Has("do") {
			return syntax.DecoupleClauses(kw)
		}
	}
	leading, kw, ok := syntax.SplitTrailingKeywords(c.Args)
	if !ok {
		return nil, errMissingBlock
	}
	body, found := kw.Get("do")
	if !found {
		return nil, errMissingBlock
	}
	return []*syntax.ClauseForm{{
		Line:   c.Line,
		Params: leading,
		Body:   syntax.BlockToForms(body),
	}}, nil
}
