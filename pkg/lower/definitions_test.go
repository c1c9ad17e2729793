package lower

import (
	"strings"
	"testing"

	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/syntax"
)

func defForm(kind string, line int) *syntax.Call {
	return syntax.C(kind, line,
		syntax.C("add", line, syntax.V("a", line), syntax.V("b", line)),
		syntax.DoBlock(syntax.C("+", line+1, syntax.V("a", line+1), syntax.V("b", line+1))))
}

func TestLowerDefinitionRegistersAndEmitsMarker(t *testing.T) {
	for _, kind := range []string{"def", "defp", "defmacro"} {
		e := New()
		node, out := lowerOne(t, e, defForm(kind, 1), NewScope("test.cnd"))
		want := "(" + kind + " add/2)"
		if got := core.Render(node); got != want {
			t.Fatalf("%s = %s, want %s", kind, got, want)
		}
		if out.isBound("a") || out.isBound("b") {
			t.Fatalf("%s parameters leaked into the surrounding scope", kind)
		}
		table := e.defs.(*definitionTable)
		if got := table.Registered(kind); len(got) != 1 || got[0] != "add/2" {
			t.Fatalf("registered %s list = %v", kind, got)
		}
	}
}

func TestLowerDefinitionInsideFunction(t *testing.T) {
	for _, kind := range []string{"def", "defp", "defmacro"} {
		e := New()
		s := NewScope("test.cnd")
		s.Function = "outer"
		_, _, err := e.Lower(defForm(kind, 3), s)
		want := "cannot invoke " + kind + " inside a function"
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("%s inside function: unexpected error %v", kind, err)
		}
	}
}

func TestLowerDefinitionReference(t *testing.T) {
	e := New()
	form := syntax.C("def", 1, syntax.C("add", 1, syntax.V("a", 1), syntax.V("b", 1)))
	node, _ := lowerOne(t, e, form, NewScope("test.cnd"))
	if got := core.Render(node); got != "(tuple :add 2)" {
		t.Fatalf("definition reference = %s", got)
	}

	bare := syntax.C("def", 2, syntax.V("ready", 2))
	node, _ = lowerOne(t, e, bare, NewScope("test.cnd"))
	if got := core.Render(node); got != "(tuple :ready 0)" {
		t.Fatalf("zero-arity reference = %s", got)
	}
}

func TestLowerDefinitionBadArguments(t *testing.T) {
	e := New()
	_, _, err := e.Lower(syntax.C("def", 1), NewScope("test.cnd"))
	if err == nil || !strings.Contains(err.Error(), "invalid arguments for def") {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _, err = e.Lower(syntax.C("defp", 1, syntax.Int(3), syntax.DoBlock(syntax.Int(1))), NewScope("test.cnd"))
	if err == nil || !strings.Contains(err.Error(), "invalid arguments for defp") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLowerModuleDef(t *testing.T) {
	e := New()
	form := syntax.C("defmodule", 1,
		syntax.V("Math", 1),
		syntax.DoBlock(defForm("def", 2)))

	node, out := lowerOne(t, e, form, NewScope("test.cnd"))
	if got := core.Render(node); got != "(module Math (def add/2))" {
		t.Fatalf("defmodule = %s", got)
	}
	if len(out.Scheduled) != 1 || out.Scheduled[0] != "Math" {
		t.Fatalf("scheduled modules = %v, want [Math]", out.Scheduled)
	}
	if out.Module != "" {
		t.Fatalf("module context %q leaked past defmodule", out.Module)
	}
}

func TestLowerModuleDefIsolatesBodyBindings(t *testing.T) {
	e := New()
	form := syntax.C("defmodule", 1,
		syntax.V("Math", 1),
		syntax.DoBlock(syntax.C("=", 2, syntax.V("x", 2), syntax.Int(1))))
	_, out := lowerOne(t, e, form, NewScope("test.cnd"))
	if out.isBound("x") {
		t.Fatal("module-body binding leaked out of defmodule")
	}
}

func TestLowerModuleDefMissingDo(t *testing.T) {
	e := New()
	_, _, err := e.Lower(syntax.C("defmodule", 1, syntax.V("Math", 1)), NewScope("test.cnd"))
	if err == nil || !strings.Contains(err.Error(), "missing do block") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLowerNestedModulesScheduleBoth(t *testing.T) {
	e := New()
	inner := syntax.C("defmodule", 2, syntax.V("Inner", 2), syntax.DoBlock(syntax.Atom("ok")))
	form := syntax.C("defmodule", 1, syntax.V("Outer", 1), syntax.DoBlock(inner))
	_, out := lowerOne(t, e, form, NewScope("test.cnd"))
	if len(out.Scheduled) != 2 || out.Scheduled[0] != "Outer" || out.Scheduled[1] != "Inner" {
		t.Fatalf("scheduled modules = %v, want [Outer Inner]", out.Scheduled)
	}
}
