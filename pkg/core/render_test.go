package core

import (
	"testing"

	"cinder/compiler-go/pkg/syntax"
)

func TestRenderLiterals(t *testing.T) {
	cases := []struct {
		node Node
		want string
	}{
		{&Literal{Value: syntax.Atom("ok")}, ":ok"},
		{&Literal{Value: int64(-3)}, "-3"},
		{&Literal{Value: float64(2.5)}, "2.5"},
		{&Literal{Value: "a \"quoted\" string"}, `"a \"quoted\" string"`},
		{&VarRef{Name: "x"}, "x"},
	}
	for _, tc := range cases {
		if got := Render(tc.node); got != tc.want {
			t.Fatalf("Render(%#v) = %s, want %s", tc.node, got, tc.want)
		}
	}
}

func TestRenderCalls(t *testing.T) {
	one := &Literal{Value: int64(1)}
	two := &Literal{Value: int64(2)}
	x := &VarRef{Name: "x"}

	cases := []struct {
		node Node
		want string
	}{
		{&OpCall{Op: "+", Args: []Node{one, two}}, "(op + 1 2)"},
		{&Call{Fun: "f", Args: []Node{x}}, "(call f x)"},
		{&RemoteCall{Module: "Math", Fun: "add", Args: []Node{one, two}}, "(remote Math:add 1 2)"},
		{&Invoke{Target: x, Args: []Node{one}}, "(invoke x 1)"},
		{&Apply{Callee: x, Selector: &Literal{Value: syntax.Atom("f")}, Args: &ListNode{Elems: []Node{one}}},
			"(apply x :f (list 1))"},
		{&Match{Pattern: x, Value: one}, "(= x 1)"},
		{&Block{Exprs: []Node{one, two}}, "(block 1 2)"},
		{&Tuple{Elems: []Node{one, two}}, "(tuple 1 2)"},
		{&ListNode{}, "(list)"},
	}
	for _, tc := range cases {
		if got := Render(tc.node); got != tc.want {
			t.Fatalf("Render = %s, want %s", got, tc.want)
		}
	}
}

func TestRenderClauseForms(t *testing.T) {
	x := &VarRef{Name: "x"}
	guard := &OpCall{Op: ">", Args: []Node{x, &Literal{Value: int64(0)}}}
	clause := &Clause{Patterns: []Node{x}, Guards: []Node{guard}, Body: []Node{x}}

	caseNode := &Case{Expr: &VarRef{Name: "v"}, Clauses: []*Clause{clause}}
	if got := Render(caseNode); got != "(case v (clause (x) (when (op > x 0)) x))" {
		t.Fatalf("case = %s", got)
	}

	recv := &Receive{
		Clauses:     []*Clause{{Patterns: []Node{x}, Body: []Node{x}}},
		Timeout:     &Literal{Value: int64(50)},
		TimeoutBody: []Node{&Literal{Value: syntax.Atom("late")}},
	}
	if got := Render(recv); got != "(receive (clause (x) x) (after 50 :late))" {
		t.Fatalf("receive = %s", got)
	}

	try := &Try{
		Body:  []Node{x},
		Catch: []*Clause{{Patterns: []Node{&VarRef{Name: "e"}}, Body: []Node{&Literal{Value: syntax.Atom("no")}}}},
	}
	if got := Render(try); got != "(try (do x) (catch (clause (e) :no)))" {
		t.Fatalf("try = %s", got)
	}
}

func TestRenderComprehension(t *testing.T) {
	x := &VarRef{Name: "x"}
	comp := &Comprehension{
		Kind: KindSequence,
		Qualifiers: []Qualifier{
			Generate{Pattern: x, Source: &VarRef{Name: "xs"}},
			Filter{Cond: &RemoteCall{Module: "cinder", Fun: "bool_check", Args: []Node{x}}},
		},
		Body: x,
	}
	if got := Render(comp); got != "(for (gen x in xs) (filter (remote cinder:bool_check x)) (do x))" {
		t.Fatalf("for = %s", got)
	}

	comp.Kind = KindBitstring
	comp.Qualifiers = []Qualifier{BitGenerate{Pattern: x, Source: &VarRef{Name: "data"}}}
	if got := Render(comp); got != "(bitfor (bitgen x in data) (do x))" {
		t.Fatalf("bitfor = %s", got)
	}
}

func TestRenderDefinitionAndModule(t *testing.T) {
	def := &Definition{Kind: "def", Name: "add", Arity: 2}
	if got := Render(def); got != "(def add/2)" {
		t.Fatalf("definition = %s", got)
	}
	mod := &ModuleDef{Name: "Math", Body: []Node{def}}
	if got := Render(mod); got != "(module Math (def add/2))" {
		t.Fatalf("module = %s", got)
	}
}

func TestAtomOf(t *testing.T) {
	if name, ok := AtomOf(&Literal{Value: syntax.Atom("Math")}); !ok || name != "Math" {
		t.Fatalf("AtomOf = %q, %v", name, ok)
	}
	if _, ok := AtomOf(&Literal{Value: int64(1)}); ok {
		t.Fatal("AtomOf accepted a non-atom literal")
	}
	if _, ok := AtomOf(&VarRef{Name: "Math"}); ok {
		t.Fatal("AtomOf accepted a non-literal node")
	}
}
