package lower

import (
	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/syntax"
)

// boolCheckFun names the runtime helper wrapped around comprehension filters
// so a non-boolean filter result is rejected at runtime instead of being
// truthy-coerced.
const (
	boolCheckModule = "cinder"
	boolCheckFun    = "bool_check"
)

// lowerComprehension lowers for/bitfor: the leading arguments are qualifiers,
// the trailing keyword block must be a single do body. Each qualifier is
// classified as a bitstring generator, a sequence generator, or a boolean
// filter; qualifiers thread scope left-to-right and the body lowers last.
func (e *Engine) lowerComprehension(kind core.ComprehensionKind, c *syntax.Call, s Scope) (core.Node, Scope, error) {
	token := "for"
	if kind == core.KindBitstring {
		token = "bitfor"
	}
	rawQuals, kw, ok := syntax.SplitTrailingKeywords(c.Args)
	if !ok || len(kw) != 1 || !kw.Has("do") {
		return nil, s, syntaxErrorf(c.Line, s.Filename, token, "missing do block")
	}

	qualifiers := make([]core.Qualifier, 0, len(rawQuals))
	current := s
	for _, raw := range rawQuals {
		qual, next, err := e.lowerQualifier(raw, current)
		if err != nil {
			return nil, s, err
		}
		qualifiers = append(qualifiers, qual)
		current = current.merge(next)
	}

	doBody, _ := kw.Get("do")
	bodyNodes, current, err := e.lowerBody(doBody, current)
	if err != nil {
		return nil, s, err
	}
	return &core.Comprehension{
		Line:       c.Line,
		Kind:       kind,
		Qualifiers: qualifiers,
		Body:       bodyNode(c.Line, bodyNodes),
	}, current, nil
}

// lowerQualifier classifies one comprehension qualifier. A generator whose
// left side is a bitstring pattern becomes a bitstring generator; in/inlist
// qualifiers become sequence generators; anything else lowers as a plain
// expression and is coerced into a boolean filter.
func (e *Engine) lowerQualifier(raw syntax.Form, s Scope) (core.Qualifier, Scope, error) {
	if call, ok := raw.(*syntax.Call); ok && len(call.Args) == 2 {
		switch call.Name {
		case "in":
			if isBitstringPattern(call.Args[0]) {
				return e.lowerGenerator(call, s, true)
			}
			return e.lowerGenerator(call, s, false)
		case "inlist":
			return e.lowerGenerator(call, s, false)
		}
	}

	cond, s1, err := e.Lower(raw, s)
	if err != nil {
		return nil, s, err
	}
	guarded := &core.RemoteCall{
		Line:   cond.Pos(),
		Module: boolCheckModule,
		Fun:    boolCheckFun,
		Args:   []core.Node{cond},
	}
	return core.Filter{Line: guarded.Line, Cond: guarded}, s1, nil
}

func (e *Engine) lowerGenerator(call *syntax.Call, s Scope, bits bool) (core.Qualifier, Scope, error) {
	pattern, s1, err := e.clauses.CompileAssignable(call.Args[0], s)
	if err != nil {
		return nil, s, err
	}
	source, s2, err := e.Lower(call.Args[1], s1)
	if err != nil {
		return nil, s, err
	}
	if bits {
		return core.BitGenerate{Line: call.Line, Pattern: pattern, Source: source}, s2, nil
	}
	return core.Generate{Line: call.Line, Pattern: pattern, Source: source}, s2, nil
}

func isBitstringPattern(form syntax.Form) bool {
	call, ok := form.(*syntax.Call)
	return ok && call.Name == "<<>>"
}
