package lower

import (
	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/syntax"
)

// moduleTransformer is the default module-body collaborator: it lowers the
// body statements with the module context set and no enclosing function, and
// folds the inner scope back counter-only so module-local bindings never
// reach the surrounding scope.
type moduleTransformer struct {
	engine *Engine
}

func (mt *moduleTransformer) TransformModule(line int, ref core.Node, body syntax.Form, s Scope) (core.Node, Scope, error) {
	name, _ := core.AtomOf(ref)

	inner := s
	inner.Module = name
	inner.Function = ""
	nodes, innerOut, err := mt.engine.LowerAll(syntax.BlockToForms(body), inner)
	if err != nil {
		return nil, s, err
	}
	return &core.ModuleDef{Line: line, Name: name, Body: nodes}, s.counterMerge(innerOut), nil
}
