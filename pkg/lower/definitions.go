package lower

import (
	"fmt"
	"sort"

	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/syntax"
)

// lowerModuleDef lowers defmodule(ref, do: body). The reference resolves in
// reference mode; when it yields a literal module identity, that identity is
// appended to the scheduled-module set of the returned scope. Body lowering
// is delegated to the module-transform collaborator.
func (e *Engine) lowerModuleDef(c *syntax.Call, s Scope) (core.Node, Scope, error) {
	leading, kw, ok := syntax.SplitTrailingKeywords(c.Args)
	if !ok || len(leading) != 1 || !kw.Has("do") {
		return nil, s, syntaxErrorf(c.Line, s.Filename, "defmodule", "missing do block")
	}

	refScope := s
	refScope.RefMode = true
	ref, s1, err := e.Lower(leading[0], refScope)
	if err != nil {
		return nil, s, err
	}
	s1.RefMode = s.RefMode
	if name, ok := core.AtomOf(ref); ok {
		s1 = s1.schedule(name)
	}

	body, _ := kw.Get("do")
	return e.modules.TransformModule(c.Line, ref, body, s1)
}

// lowerDefinition lowers def, defp, and defmacro. With a call signature and a
// body the definition is delegated to the registration collaborator and the
// input scope is returned unchanged (registration effects are process-wide,
// not scope-local). With only a call signature the form is a function
// reference and lowers to a literal (name, arity) tuple. Definitions are
// illegal inside a function body.
func (e *Engine) lowerDefinition(kind string, c *syntax.Call, s Scope) (core.Node, Scope, error) {
	if s.Function != "" {
		return nil, s, syntaxErrorf(c.Line, s.Filename, kind, "cannot invoke %s inside a function", kind)
	}

	switch len(c.Args) {
	case 2:
		call, ok := c.Args[0].(*syntax.Call)
		if !ok {
			return nil, s, syntaxErrorf(c.Line, s.Filename, kind, "invalid arguments for %s", kind)
		}
		kw, ok := c.Args[1].(syntax.Keywords)
		if !ok || !kw.Has("do") {
			return nil, s, syntaxErrorf(c.Line, s.Filename, kind, "invalid arguments for %s", kind)
		}
		node, err := e.defs.WrapDefinition(kind, c.Line, call, c.Args[1], s)
		if err != nil {
			return nil, s, err
		}
		return node, s, nil
	case 1:
		name, arity, err := signatureOf(c.Args[0])
		if err != nil {
			return nil, s, syntaxErrorf(c.Line, s.Filename, kind, "invalid arguments for %s", kind)
		}
		return &core.Tuple{Line: c.Line, Elems: []core.Node{
			&core.Literal{Line: c.Line, Value: syntax.Atom(name)},
			&core.Literal{Line: c.Line, Value: int64(arity)},
		}}, s, nil
	default:
		return nil, s, syntaxErrorf(c.Line, s.Filename, kind, "invalid arguments for %s", kind)
	}
}

// signatureOf extracts the name and parameter count from a definition head.
func signatureOf(head syntax.Form) (string, int, error) {
	switch h := head.(type) {
	case *syntax.Call:
		return h.Name, len(h.Args), nil
	case syntax.Var:
		return h.Name, 0, nil
	default:
		return "", 0, fmt.Errorf("lower: definition head %T has no signature", head)
	}
}

// definitionTable is the default definition-registration collaborator: it
// validates the signature, records name/arity per kind, and emits a
// definition marker node. Symbol-table and export bookkeeping beyond this
// belongs to the surrounding pipeline.
type definitionTable struct {
	registered map[string]map[string][]int
}

func newDefinitionTable() *definitionTable {
	return &definitionTable{registered: make(map[string]map[string][]int)}
}

func (dt *definitionTable) WrapDefinition(kind string, line int, call *syntax.Call, body syntax.Form, s Scope) (core.Node, error) {
	name, arity, err := signatureOf(call)
	if err != nil {
		return nil, syntaxErrorf(line, s.Filename, kind, "invalid arguments for %s", kind)
	}
	for _, param := range call.Args {
		switch param.(type) {
		case syntax.Var, syntax.Atom, syntax.Int, syntax.Float, syntax.Str, syntax.List, syntax.Tuple, *syntax.Call:
		default:
			return nil, syntaxErrorf(line, s.Filename, kind, "invalid parameter in %s %s", kind, name)
		}
	}
	byName := dt.registered[kind]
	if byName == nil {
		byName = make(map[string][]int)
		dt.registered[kind] = byName
	}
	byName[name] = append(byName[name], arity)
	return &core.Definition{Line: line, Kind: kind, Name: name, Arity: arity}, nil
}

// Registered lists the name/arity pairs recorded for a definition kind, in
// stable order.
func (dt *definitionTable) Registered(kind string) []string {
	byName := dt.registered[kind]
	out := make([]string, 0, len(byName))
	for name, arities := range byName {
		for _, arity := range arities {
			out = append(out, fmt.Sprintf("%s/%d", name, arity))
		}
	}
	sort.Strings(out)
	return out
}
