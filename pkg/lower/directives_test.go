package lower

import (
	"strings"
	"testing"

	"cinder/compiler-go/pkg/core"
	"cinder/compiler-go/pkg/syntax"
)

type mapRegistry map[string]bool

func (m mapRegistry) Known(module string) bool { return m[module] }

func moduleScope(module string) Scope {
	s := NewScope("test.cnd")
	s.Module = module
	return s
}

func TestLowerUseExpansion(t *testing.T) {
	e := New()
	form := syntax.C("defmodule", 1,
		syntax.V("Math", 1),
		syntax.DoBlock(syntax.C("use", 2, syntax.Atom("Helper"))))

	node, out := lowerOne(t, e, form, NewScope("test.cnd"))
	want := "(module Math (block :Helper (remote Helper:__using__ :Math)))"
	if got := core.Render(node); got != want {
		t.Fatalf("use expansion = %s\nwant %s", got, want)
	}
	if len(out.Scheduled) != 2 || out.Scheduled[0] != "Math" || out.Scheduled[1] != "Helper" {
		t.Fatalf("scheduled modules = %v, want [Math Helper]", out.Scheduled)
	}
}

func TestLowerUsePassesExtraArguments(t *testing.T) {
	e := New()
	form := syntax.C("defmodule", 1,
		syntax.V("Math", 1),
		syntax.DoBlock(syntax.C("use", 2, syntax.Atom("Helper"), syntax.Atom("opt"))))
	node, _ := lowerOne(t, e, form, NewScope("test.cnd"))
	if got := core.Render(node); !strings.Contains(got, "(remote Helper:__using__ :Math :opt)") {
		t.Fatalf("use with extra arguments = %s", got)
	}
}

func TestLowerUseOutsideModule(t *testing.T) {
	e := New()
	_, _, err := e.Lower(syntax.C("use", 3, syntax.Atom("Helper")), NewScope("test.cnd"))
	if err == nil || !strings.Contains(err.Error(), "cannot invoke use outside of a module") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLowerImportRecordsEdge(t *testing.T) {
	e := New()
	node, out, err := e.Lower(syntax.C("import", 2, syntax.Atom("List")), moduleScope("Math"))
	if err != nil {
		t.Fatalf("Lower returned error: %v", err)
	}
	if got := core.Render(node); got != ":List" {
		t.Fatalf("import = %s, want :List", got)
	}
	if len(out.Scheduled) != 1 || out.Scheduled[0] != "List" {
		t.Fatalf("scheduled modules = %v, want [List]", out.Scheduled)
	}
	table := e.imports.(*importTable)
	if got := table.Imports("Math"); len(got) != 1 || got[0] != "List" {
		t.Fatalf("import edges for Math = %v", got)
	}
}

func TestLowerImportLegality(t *testing.T) {
	e := New()

	_, _, err := e.Lower(syntax.C("import", 2, syntax.Atom("List")), NewScope("test.cnd"))
	if err == nil || !strings.Contains(err.Error(), "cannot invoke import outside of a module body") {
		t.Fatalf("top-level import: unexpected error %v", err)
	}

	s := moduleScope("Math")
	s.Function = "run"
	_, _, err = e.Lower(syntax.C("import", 2, syntax.Atom("List")), s)
	if err == nil || !strings.Contains(err.Error(), "cannot invoke import outside of a module body") {
		t.Fatalf("import inside function: unexpected error %v", err)
	}
}

func TestLowerImportOptionsMustBeKeywords(t *testing.T) {
	e := New()
	form := syntax.C("import", 2, syntax.Atom("List"), syntax.Int(1))
	_, _, err := e.Lower(form, moduleScope("Math"))
	if err == nil || !strings.Contains(err.Error(), "import options must be a keyword list") {
		t.Fatalf("unexpected error: %v", err)
	}

	ok := syntax.C("import", 3, syntax.Atom("List"),
		syntax.KW(syntax.P("only", syntax.L(syntax.T(syntax.Atom("sort"), syntax.Int(1))))))
	if _, _, err := e.Lower(ok, moduleScope("Math")); err != nil {
		t.Fatalf("keyword options rejected: %v", err)
	}
}

func TestLowerImportAgainstRegistry(t *testing.T) {
	e := New(WithImportRegistry(mapRegistry{"List": true}))

	if _, _, err := e.Lower(syntax.C("import", 2, syntax.Atom("List")), moduleScope("Math")); err != nil {
		t.Fatalf("known module rejected: %v", err)
	}
	_, _, err := e.Lower(syntax.C("import", 3, syntax.Atom("Enum")), moduleScope("Math"))
	if err == nil || !strings.Contains(err.Error(), "module Enum is not available") {
		t.Fatalf("unknown module: unexpected error %v", err)
	}
}

func TestLowerRequireSchedulesOnce(t *testing.T) {
	e := New()
	s := NewScope("test.cnd")

	node, s1, err := e.Lower(syntax.C("require", 1, syntax.V("Foo", 1)), s)
	if err != nil {
		t.Fatalf("Lower returned error: %v", err)
	}
	if got := core.Render(node); got != ":Foo" {
		t.Fatalf("require = %s, want :Foo", got)
	}
	if s1.RefMode {
		t.Fatal("reference mode leaked out of require")
	}

	_, s2, err := e.Lower(syntax.C("require", 2, syntax.V("Foo", 2)), s1)
	if err != nil {
		t.Fatalf("Lower returned error: %v", err)
	}
	if len(s2.Scheduled) != 1 || s2.Scheduled[0] != "Foo" {
		t.Fatalf("scheduled modules = %v, want [Foo]", s2.Scheduled)
	}
}

func TestLowerRequireBadArguments(t *testing.T) {
	e := New()
	_, _, err := e.Lower(syntax.C("require", 1), NewScope("test.cnd"))
	if err == nil || !strings.Contains(err.Error(), "invalid arguments for require") {
		t.Fatalf("unexpected error: %v", err)
	}
}
