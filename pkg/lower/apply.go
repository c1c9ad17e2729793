package lower

import (
	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/syntax"
)

// lowerApply wires the explicit three-argument dynamic application form:
// callee and selector lower sequentially, then the optimization collaborator
// chooses the final call shape from the lowered operands, the raw argument
// form, and the three scope snapshots.
func (e *Engine) lowerApply(c *syntax.Call, s Scope) (core.Node, Scope, error) {
	callee, fromCallee, err := e.Lower(c.Args[0], s)
	if err != nil {
		return nil, s, err
	}
	selector, fromSelector, err := e.Lower(c.Args[1], fromCallee)
	if err != nil {
		return nil, s, err
	}
	return e.applyOpt.OptimizeApply(c.Line, callee, selector, c.Args[2], s, fromCallee, fromSelector, e)
}

// applyOptimizer is the default apply-optimization collaborator: when both
// operands reduce to literals and the argument form is a literal list, the
// call resolves statically to a remote call; otherwise it stays a fully
// dynamic dispatch.
type applyOptimizer struct{}

func (applyOptimizer) OptimizeApply(line int, callee, selector core.Node, rawArgs syntax.Form, s, fromCallee, fromSelector Scope, lowerer FormLowerer) (core.Node, Scope, error) {
	module, moduleOK := core.AtomOf(callee)
	fun, funOK := core.AtomOf(selector)
	if moduleOK && funOK {
		if list, ok := rawArgs.(syntax.List); ok {
			args, s1, err := lowerer.LowerAll(list, fromSelector)
			if err != nil {
				return nil, s, err
			}
			return &core.RemoteCall{Line: line, Module: module, Fun: fun, Args: args}, s1, nil
		}
	}
	args, s1, err := lowerer.Lower(rawArgs, fromSelector)
	if err != nil {
		return nil, s, err
	}
	return &core.Apply{Line: line, Callee: callee, Selector: selector, Args: args}, s1, nil
}
