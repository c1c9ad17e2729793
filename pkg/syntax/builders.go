package syntax

// Builder helpers for assembling surface forms in tests, macros, and the
// lowering engine's own desugarings.

// C builds a tagged call node.
func C(name string, line int, args ...Form) *Call {
	return &Call{Name: name, Line: line, Args: args}
}

// V builds a variable reference.
func V(name string, line int) Var {
	return Var{Name: name, Line: line}
}

// L builds a list form.
func L(elems ...Form) List {
	return List(elems)
}

// T builds a tuple form.
func T(elems ...Form) Tuple {
	return Tuple{Elems: elems}
}

// P builds one keyword pair.
func P(key string, value Form) Pair {
	return Pair{Key: Atom(key), Value: value}
}

// KW builds a keyword list.
func KW(pairs ...Pair) Keywords {
	return Keywords(pairs)
}

// DoBlock builds the common trailing [do: body] keyword block.
func DoBlock(body Form) Keywords {
	return KW(P("do", body))
}

// Arrow builds a -> match arm from a parameter list and a body.
func Arrow(line int, params List, body ...Form) *Call {
	args := make([]Form, 0, len(body)+1)
	args = append(args, params)
	args = append(args, body...)
	return C(ArrowName, line, args...)
}

// Guarded wraps a parameter with trailing when guards.
func Guarded(line int, param Form, guards ...Form) *Call {
	args := make([]Form, 0, len(guards)+1)
	args = append(args, param)
	args = append(args, guards...)
	return C(WhenName, line, args...)
}

// Block builds a sequential statement block.
func Block(line int, stmts ...Form) *Call {
	return C(BlockName, line, stmts...)
}
