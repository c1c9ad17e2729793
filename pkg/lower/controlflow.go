package lower

import (
	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/syntax"
)

// lowerCase lowers case(expr, do: clauses): the branch expression first, then
// the clause list through the clause collaborator, which owns pattern/guard
// semantics and the binding merge across clauses.
func (e *Engine) lowerCase(c *syntax.Call, s Scope) (core.Node, Scope, error) {
	leading, kw, ok := syntax.SplitTrailingKeywords(c.Args)
	if !ok || len(leading) != 1 || !kw.Has("do") {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "case", "missing do block")
	}
	expr, s1, err := e.Lower(leading[0], s)
	if err != nil {
		return nil, s, err
	}
	doBody, _ := kw.Get("do")
	arms, err := syntax.NormalizeClauses(doBody)
	if err != nil {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "case", "%v", err)
	}
	clauses, s2, err := e.clauses.CompileClauses(c.Line, arms, s1)
	if err != nil {
		return nil, s, err
	}
	return &core.Case{Line: c.Line, Expr: expr, Clauses: clauses}, s2, nil
}

// lowerTry lowers try(do: ..., catch: ..., after: ...). The three sections
// are independent sub-lowerings from a common base scope with implicit naming
// suppressed; their scopes fold back with the counter-only merge so bindings
// made inside any section never leak out of the try node.
func (e *Engine) lowerTry(c *syntax.Call, s Scope) (core.Node, Scope, error) {
	leading, kw, ok := syntax.SplitTrailingKeywords(c.Args)
	if !ok || !kw.Has("do") {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "try", "missing do block")
	}
	if len(leading) != 0 {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "try", "invalid arguments for try")
	}
	base := s
	base.NoName = true

	doBody, _ := kw.Get("do")
	body, sDo, err := e.lowerBody(doBody, base)
	if err != nil {
		return nil, s, err
	}

	var catch []*core.Clause
	sCatch := base
	if catchBody, found := kw.Get("catch"); found {
		arms, err := syntax.NormalizeClauses(catchBody)
		if err != nil {
			return nil, s, syntaxErrorf(c.Line, s.Filename, "try", "%v", err)
		}
		catch, sCatch, err = e.clauses.TryCatch(c.Line, arms, base)
		if err != nil {
			return nil, s, err
		}
	}

	var after []core.Node
	sAfter := base
	if afterBody, found := kw.Get("after"); found {
		if !noOpBody(afterBody) {
			after, sAfter, err = e.lowerBody(afterBody, base)
			if err != nil {
				return nil, s, err
			}
		}
	}

	out := s.counterMerge(sDo, sCatch, sAfter)
	return &core.Try{Line: c.Line, Body: body, Catch: catch, After: after}, out, nil
}

// noOpBody reports whether an after section carries nothing worth emitting:
// an absent body, an empty block, or a lone nil atom.
func noOpBody(body syntax.Form) bool {
	stmts := syntax.BlockToForms(body)
	if len(stmts) == 0 {
		return true
	}
	if len(stmts) == 1 {
		if atom, ok := stmts[0].(syntax.Atom); ok && atom == "nil" {
			return true
		}
	}
	return false
}

// lowerReceive lowers receive(do: clauses, after: timeout_clause). When an
// after entry exists its single timeout clause is appended to the ordinary
// clauses, the combined list is lowered once, and the result is split back
// into ordinary clauses plus the lowered timeout expression and body.
func (e *Engine) lowerReceive(c *syntax.Call, s Scope) (core.Node, Scope, error) {
	leading, kw, ok := syntax.SplitTrailingKeywords(c.Args)
	if !ok || !kw.Has("do") {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "receive", "missing do block")
	}
	if len(leading) != 0 {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "receive", "invalid arguments for receive")
	}
	doBody, _ := kw.Get("do")
	arms, err := syntax.NormalizeClauses(doBody)
	if err != nil {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "receive", "%v", err)
	}

	afterBody, hasAfter := kw.Get("after")
	if !hasAfter {
		clauses, s1, err := e.clauses.CompileClauses(c.Line, arms, s)
		if err != nil {
			return nil, s, err
		}
		return &core.Receive{Line: c.Line, Clauses: clauses}, s1, nil
	}

	afterArms, err := syntax.NormalizeClauses(afterBody)
	if err != nil {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "receive", "%v", err)
	}
	if len(afterArms) != 1 {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "receive", "expected a single after clause")
	}
	combined := append(append([]*syntax.ClauseForm{}, arms...), afterArms[0])
	compiled, s1, err := e.clauses.CompileClauses(c.Line, combined, s)
	if err != nil {
		return nil, s, err
	}

	timeout := compiled[len(compiled)-1]
	ordinary := compiled[:len(compiled)-1]
	if len(timeout.Patterns) != 1 {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "receive", "after clause takes a single timeout expression")
	}
	if len(timeout.Guards) != 0 {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "receive", "after clause does not take a guard")
	}
	return &core.Receive{
		Line:        c.Line,
		Clauses:     ordinary,
		Timeout:     timeout.Patterns[0],
		TimeoutBody: timeout.Body,
	}, s1, nil
}
