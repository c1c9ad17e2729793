package lower

import (
	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/syntax"
)

// canonicalOpName tags the internal operator form produced by the generic
// operator rule and re-dispatched through the canonical path.
const canonicalOpName = "__op__"

// dispatchCall routes a tagged node to its lowering rule. Rules are tried in
// priority order: operators, control flow, definitions, closures and loop
// sugar, comprehensions, the apply triple, directives, structural forms, then
// the generic call-or-macro fallback.
func (e *Engine) dispatchCall(c *syntax.Call, s Scope) (core.Node, Scope, error) {
	switch {
	case isOperator(c.Name):
		return e.lowerOperator(c, s)
	case c.Name == canonicalOpName:
		return e.lowerCanonicalOp(c, s)
	}

	switch c.Name {
	case "case":
		return e.lowerCase(c, s)
	case "try":
		return e.lowerTry(c, s)
	case "receive":
		return e.lowerReceive(c, s)
	case "defmodule":
		return e.lowerModuleDef(c, s)
	case "def", "defp", "defmacro":
		return e.lowerDefinition(c.Name, c, s)
	case "fn":
		return e.lowerFn(c, s)
	case "loop":
		return e.lowerLoop(c, s)
	case "recur":
		return e.lowerRecur(c, s)
	case "for":
		return e.lowerComprehension(core.KindSequence, c, s)
	case "bitfor":
		return e.lowerComprehension(core.KindBitstring, c, s)
	case "apply":
		if len(c.Args) == 3 {
			return e.lowerApply(c, s)
		}
	case "use":
		return e.lowerUse(c, s)
	case "import":
		return e.lowerImport(c, s)
	case "require":
		return e.lowerRequire(c, s)
	case "=":
		return e.lowerMatch(c, s)
	case syntax.BlockName:
		return e.lowerBlock(c, s)
	}

	// A call whose name is a bound variable invokes the closure it holds;
	// loop/recur relies on this for the self-reference invocation.
	if s.isBound(c.Name) {
		args, s1, err := e.LowerAll(c.Args, s)
		if err != nil {
			return nil, s, err
		}
		target := &core.VarRef{Line: c.Line, Name: c.Name}
		return &core.Invoke{Line: c.Line, Target: target, Args: args}, s1, nil
	}

	// Generic fallback: the tag may name a user-defined macro. The fallback
	// callback lowers the argument list and emits a plain call by name when
	// no macro claims the form.
	fallback := func(fs Scope) (core.Node, Scope, error) {
		args, s1, err := e.LowerAll(c.Args, fs)
		if err != nil {
			return nil, fs, err
		}
		return &core.Call{Line: c.Line, Fun: c.Name, Args: args}, s1, nil
	}
	return e.macros.Dispatch(c.Line, c.Name, c.Args, s, fallback)
}

func (e *Engine) lowerMatch(c *syntax.Call, s Scope) (core.Node, Scope, error) {
	if len(c.Args) != 2 {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "=", "invalid arguments for match")
	}
	value, s1, err := e.Lower(c.Args[1], s)
	if err != nil {
		return nil, s, err
	}
	pattern, s2, err := e.clauses.CompileAssignable(c.Args[0], s1)
	if err != nil {
		return nil, s, err
	}
	return &core.Match{Line: c.Line, Pattern: pattern, Value: value}, s2, nil
}

func (e *Engine) lowerBlock(c *syntax.Call, s Scope) (core.Node, Scope, error) {
	nodes, s1, err := e.LowerAll(c.Args, s)
	if err != nil {
		return nil, s, err
	}
	return bodyNode(c.Line, nodes), s1, nil
}
