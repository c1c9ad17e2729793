package lower

import (
	"fmt"

	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/syntax"
)

// The closed operator set: generic n-ary arithmetic, comparison, boolean,
// list concatenation, and the message-send arrow, plus the unary forms.
var binaryOperators = map[string]struct{}{
	"+": {}, "-": {}, "*": {}, "/": {},
	"++": {}, "--": {},
	"<": {}, ">": {}, "<=": {}, ">=": {},
	"==": {}, "!=": {}, "===": {}, "!==": {},
	"and": {}, "or": {},
	"<-": {},
}

var unaryOperators = map[string]struct{}{
	"+": {}, "-": {}, "not": {}, "!": {},
}

// operatorRenames substitutes operator symbols on the canonical path: the
// strict/loose (in)equality symbols and the message-send arrow map to their
// canonical target identities, everything else passes through unchanged.
var operatorRenames = map[string]string{
	"===": "=:=",
	"!==": "=/=",
	"!=":  "/=",
	"<=":  "=<",
	"<-":  "!",
}

func isOperator(name string) bool {
	if _, ok := binaryOperators[name]; ok {
		return true
	}
	_, ok := unaryOperators[name]
	return ok
}

// lowerOperator canonicalizes an operator form. Unary +/- on a numeric
// literal folds to the literal immediately; everything else is rewrapped into
// the internal canonical operator form and re-dispatched.
func (e *Engine) lowerOperator(c *syntax.Call, s Scope) (core.Node, Scope, error) {
	if len(c.Args) == 1 {
		if lit, ok := foldSignedLiteral(c.Name, c.Args[0]); ok {
			lit.Line = c.Line
			return lit, s, nil
		}
		if _, ok := unaryOperators[c.Name]; !ok {
			return nil, s, fmt.Errorf("lower: operator %s is not unary", c.Name)
		}
	}
	canonical := syntax.C(canonicalOpName, c.Line, append([]syntax.Form{syntax.Atom(c.Name)}, c.Args...)...)
	return e.Lower(canonical, s)
}

// lowerCanonicalOp lowers exactly one or two operands and emits the final
// operator core form with the renamed operator identity.
func (e *Engine) lowerCanonicalOp(c *syntax.Call, s Scope) (core.Node, Scope, error) {
	if len(c.Args) < 1 {
		return nil, s, fmt.Errorf("lower: malformed canonical operator form")
	}
	name, ok := c.Args[0].(syntax.Atom)
	if !ok {
		return nil, s, fmt.Errorf("lower: canonical operator form carries no operator name")
	}
	operands := c.Args[1:]
	if len(operands) != 1 && len(operands) != 2 {
		return nil, s, fmt.Errorf("lower: operator %s takes 1 or 2 operands, got %d", name, len(operands))
	}
	args, s1, err := e.LowerAll(operands, s)
	if err != nil {
		return nil, s, err
	}
	op := string(name)
	if renamed, ok := operatorRenames[op]; ok {
		op = renamed
	}
	return &core.OpCall{Line: c.Line, Op: op, Args: args}, s1, nil
}

// foldSignedLiteral performs the one constant-folding shortcut: unary +/-
// applied directly to a numeric literal yields the literal (or its negation)
// with no operator node.
func foldSignedLiteral(op string, operand syntax.Form) (*core.Literal, bool) {
	switch op {
	case "+":
		switch v := operand.(type) {
		case syntax.Int:
			return &core.Literal{Value: int64(v)}, true
		case syntax.Float:
			return &core.Literal{Value: float64(v)}, true
		}
	case "-":
		switch v := operand.(type) {
		case syntax.Int:
			return &core.Literal{Value: -int64(v)}, true
		case syntax.Float:
			return &core.Literal{Value: -float64(v)}, true
		}
	}
	return nil, false
}
