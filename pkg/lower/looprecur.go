package lower

import (
	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/syntax"
)

// lowerLoop desugars loop(args..., do: arms) into a self-referencing closure
// plus its invocation: a fresh self-reference variable is bound to a closure
// whose every arm takes the self-reference as an implicit first parameter,
// then invoked with the self-reference itself prepended to the original
// arguments. Nested recur calls resolve against the self-reference through
// the scope's recur target, which must not leak past the loop.
func (e *Engine) lowerLoop(c *syntax.Call, s Scope) (core.Node, Scope, error) {
	initArgs, kw, ok := syntax.SplitTrailingKeywords(c.Args)
	if !ok || !kw.Has("do") {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "loop", "invalid arguments for loop")
	}
	doBody, _ := kw.Get("do")
	arms, err := syntax.NormalizeClauses(doBody)
	if err != nil {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "loop", "%v", err)
	}

	selfName, s1 := s.allocate()
	selfRef := syntax.V(selfName, c.Line)

	// Prepend the self-reference as the implicit first parameter of every arm.
	entries := make(syntax.Keywords, 0, len(arms))
	for _, arm := range arms {
		params := append(syntax.List{selfRef}, arm.Params...)
		body := make([]syntax.Form, len(arm.Body))
		copy(body, arm.Body)
		entries = append(entries, syntax.P("match", syntax.Arrow(arm.Line, params, body...)))
	}
	closure := syntax.C("fn", c.Line, entries)

	invokeArgs := append([]syntax.Form{selfRef}, initArgs...)
	block := syntax.Block(c.Line,
		syntax.C("=", c.Line, selfRef, closure),
		syntax.C(selfName, c.Line, invokeArgs...),
	)

	loopScope := s1
	loopScope.RecurTarget = selfName
	node, s2, err := e.Lower(block, loopScope)
	if err != nil {
		return nil, s, err
	}
	s2.RecurTarget = s.RecurTarget
	return node, s2, nil
}

// lowerRecur lowers a recur call into an invocation of the enclosing loop's
// self-reference, reproducing the call shape of the loop's own invocation:
// the self-reference prepended to the recur arguments. Outside a loop it is a
// scope error.
func (e *Engine) lowerRecur(c *syntax.Call, s Scope) (core.Node, Scope, error) {
	if s.RecurTarget == "" {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "recur", "cannot invoke recur outside of a loop")
	}
	target := &core.VarRef{Line: c.Line, Name: s.RecurTarget}
	args, s1, err := e.LowerAll(c.Args, s)
	if err != nil {
		return nil, s, err
	}
	invokeArgs := append([]core.Node{&core.VarRef{Line: c.Line, Name: s.RecurTarget}}, args...)
	return &core.Invoke{Line: c.Line, Target: target, Args: invokeArgs}, s1, nil
}
