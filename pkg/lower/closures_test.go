package lower

import (
	"strings"
	"testing"

	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/syntax"
)

func TestLowerFnSingleClause(t *testing.T) {
	e := New()
	form := syntax.C("fn", 1,
		syntax.V("x", 1),
		syntax.DoBlock(syntax.C("+", 1, syntax.V("x", 1), syntax.Int(1))))
	node, out := lowerOne(t, e, form, NewScope("test.cnd"))
	if got := core.Render(node); got != "(fn (clause (x) (op + x 1)))" {
		t.Fatalf("fn = %s", got)
	}
	if out.isBound("x") {
		t.Fatal("closure parameter leaked out of fn")
	}
}

func TestLowerFnMultiClause(t *testing.T) {
	e := New()
	form := syntax.C("fn", 1, syntax.KW(
		syntax.P("match", syntax.Arrow(1, syntax.L(syntax.Int(0)), syntax.Atom("zero"))),
		syntax.P("match", syntax.Arrow(2,
			syntax.L(syntax.Guarded(2, syntax.V("n", 2),
				syntax.C(">", 2, syntax.V("n", 2), syntax.Int(0)))),
			syntax.Atom("pos"))),
	))
	node, _ := lowerOne(t, e, form, NewScope("test.cnd"))
	want := "(fn (clause (0) :zero) (clause (n) (when (op > n 0)) :pos))"
	if got := core.Render(node); got != want {
		t.Fatalf("fn = %s\nwant %s", got, want)
	}
}

func TestLowerFnZeroParams(t *testing.T) {
	e := New()
	form := syntax.C("fn", 1, syntax.DoBlock(syntax.Atom("ok")))
	node, _ := lowerOne(t, e, form, NewScope("test.cnd"))
	if got := core.Render(node); got != "(fn (clause () :ok))" {
		t.Fatalf("parameterless fn = %s", got)
	}
}

func TestLowerFnClausesSeeOuterBindings(t *testing.T) {
	e := New()
	s := NewScope("test.cnd")
	forms := []syntax.Form{
		syntax.C("=", 1, syntax.V("y", 1), syntax.Int(10)),
		syntax.C("fn", 2, syntax.V("x", 2),
			syntax.DoBlock(syntax.C("y", 3, syntax.V("x", 3)))),
	}
	nodes, _, err := e.LowerAll(forms, s)
	if err != nil {
		t.Fatalf("LowerAll returned error: %v", err)
	}
	// Inside the closure body, y is a bound outer variable, so calling it
	// is a closure invocation.
	if got := core.Render(nodes[1]); got != "(fn (clause (x) (invoke y x)))" {
		t.Fatalf("fn capture = %s", got)
	}
}

func TestLowerFnMissingDo(t *testing.T) {
	e := New()
	_, _, err := e.Lower(syntax.C("fn", 2, syntax.V("x", 2)), NewScope("test.cnd"))
	if err == nil || !strings.Contains(err.Error(), "missing do block") {
		t.Fatalf("unexpected error: %v", err)
	}
}
