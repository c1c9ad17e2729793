package syntax

import "fmt"

// ArrowName tags a match arm: Call{Name: ArrowName, Args: [List(params), body...]}.
const ArrowName = "->"

// WhenName tags a guarded parameter: Call{Name: WhenName, Args: [param, guards...]}.
const WhenName = "when"

// BlockName tags a sequential statement block.
const BlockName = "__block__"

// ClauseForm is one normalized match arm prior to clause compilation: a
// parameter/pattern list (possibly carrying a trailing when guard) and a body
// sequence.
type ClauseForm struct {
	Line   int
	Params []Form
	Body   []Form
}

// NormalizeClauses normalizes a do-block body into match arms. A list of ->
// calls yields one arm per call, a single -> call yields one arm, and any
// other body becomes a single parameterless arm.
func NormalizeClauses(body Form) ([]*ClauseForm, error) {
	switch b := body.(type) {
	case List:
		if allArrows(b) {
			arms := make([]*ClauseForm, 0, len(b))
			for _, entry := range b {
				arm, err := arrowClause(entry.(*Call))
				if err != nil {
					return nil, err
				}
				arms = append(arms, arm)
			}
			return arms, nil
		}
	case *Call:
		if b.Name == ArrowName {
			arm, err := arrowClause(b)
			if err != nil {
				return nil, err
			}
			return []*ClauseForm{arm}, nil
		}
	}
	return []*ClauseForm{{Line: LineOf(body), Body: BlockToForms(body)}}, nil
}

// DecoupleClauses splits a keyword block into match-clause entries: every
// entry value must be a -> arm pairing a parameter/guard list with a body.
func DecoupleClauses(kw Keywords) ([]*ClauseForm, error) {
	arms := make([]*ClauseForm, 0, len(kw))
	for _, pair := range kw {
		call, ok := pair.Value.(*Call)
		if !ok || call.Name != ArrowName {
			return nil, fmt.Errorf("syntax: keyword entry %s is not a match clause", pair.Key)
		}
		arm, err := arrowClause(call)
		if err != nil {
			return nil, err
		}
		arms = append(arms, arm)
	}
	return arms, nil
}

// BlockToForms flattens a body form into its statement sequence. Explicit
// __block__ calls and lists unwrap; any other form is a single statement.
func BlockToForms(body Form) []Form {
	switch b := body.(type) {
	case nil:
		return nil
	case *Call:
		if b.Name == BlockName {
			return b.Args
		}
	case List:
		return b
	}
	return []Form{body}
}

func allArrows(forms List) bool {
	if len(forms) == 0 {
		return false
	}
	for _, f := range forms {
		call, ok := f.(*Call)
		if !ok || call.Name != ArrowName {
			return false
		}
	}
	return true
}

func arrowClause(call *Call) (*ClauseForm, error) {
	if len(call.Args) < 1 {
		return nil, fmt.Errorf("syntax: malformed clause on line %d", call.Line)
	}
	params, ok := call.Args[0].(List)
	if !ok {
		return nil, fmt.Errorf("syntax: clause on line %d is missing its parameter list", call.Line)
	}
	body := make([]Form, 0, len(call.Args)-1)
	for _, stmt := range call.Args[1:] {
		body = append(body, BlockToForms(stmt)...)
	}
	return &ClauseForm{Line: call.Line, Params: params, Body: body}, nil
}
