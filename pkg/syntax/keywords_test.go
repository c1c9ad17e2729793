package syntax

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeClausesArrowList(t *testing.T) {
	body := L(
		Arrow(1, L(Int(0)), Atom("zero")),
		Arrow(2, L(V("n", 2)), V("n", 2)),
	)
	arms, err := NormalizeClauses(body)
	if err != nil {
		t.Fatalf("NormalizeClauses returned error: %v", err)
	}
	if len(arms) != 2 {
		t.Fatalf("expected 2 arms, got %d", len(arms))
	}
	if arms[0].Line != 1 || len(arms[0].Params) != 1 || len(arms[0].Body) != 1 {
		t.Fatalf("first arm = %#v", arms[0])
	}
}

func TestNormalizeClausesSingleArrow(t *testing.T) {
	arms, err := NormalizeClauses(Arrow(3, L(V("x", 3)), Atom("ok")))
	if err != nil {
		t.Fatalf("NormalizeClauses returned error: %v", err)
	}
	if len(arms) != 1 || len(arms[0].Params) != 1 {
		t.Fatalf("arms = %#v", arms)
	}
}

func TestNormalizeClausesPlainBody(t *testing.T) {
	arms, err := NormalizeClauses(Block(4, Atom("a"), Atom("b")))
	if err != nil {
		t.Fatalf("NormalizeClauses returned error: %v", err)
	}
	if len(arms) != 1 || len(arms[0].Params) != 0 {
		t.Fatalf("arms = %#v", arms)
	}
	if !reflect.DeepEqual(arms[0].Body, []Form{Atom("a"), Atom("b")}) {
		t.Fatalf("body = %#v", arms[0].Body)
	}
}

func TestNormalizeClausesMissingParamList(t *testing.T) {
	broken := C(ArrowName, 5, Atom("not_a_list"), Atom("body"))
	_, err := NormalizeClauses(broken)
	if err == nil || !strings.Contains(err.Error(), "clause on line 5 is missing its parameter list") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecoupleClauses(t *testing.T) {
	kw := KW(
		P("match", Arrow(1, L(Int(0)), Atom("zero"))),
		P("match", Arrow(2, L(V("n", 2)), V("n", 2))),
	)
	arms, err := DecoupleClauses(kw)
	if err != nil {
		t.Fatalf("DecoupleClauses returned error: %v", err)
	}
	if len(arms) != 2 {
		t.Fatalf("expected 2 arms, got %d", len(arms))
	}
}

func TestDecoupleClausesRejectsNonArrow(t *testing.T) {
	kw := KW(P("match", Atom("oops")))
	_, err := DecoupleClauses(kw)
	if err == nil || !strings.Contains(err.Error(), "keyword entry match is not a match clause") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSplitTrailingKeywords(t *testing.T) {
	args := []Form{Int(1), Int(2), DoBlock(Atom("ok"))}
	leading, kw, ok := SplitTrailingKeywords(args)
	if !ok || len(leading) != 2 || !kw.Has("do") {
		t.Fatalf("split = %#v %#v %v", leading, kw, ok)
	}

	leading, _, ok = SplitTrailingKeywords([]Form{Int(1)})
	if ok || len(leading) != 1 {
		t.Fatal("split claimed a keyword block where none exists")
	}
}

func TestBlockToForms(t *testing.T) {
	cases := []struct {
		body Form
		want []Form
	}{
		{Block(1, Atom("a"), Atom("b")), []Form{Atom("a"), Atom("b")}},
		{L(Atom("a"), Atom("b")), []Form{Atom("a"), Atom("b")}},
		{Atom("a"), []Form{Atom("a")}},
		{nil, nil},
	}
	for _, tc := range cases {
		if got := BlockToForms(tc.body); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("BlockToForms(%#v) = %#v, want %#v", tc.body, got, tc.want)
		}
	}
}

func TestArrowBodyFlattensNestedBlocks(t *testing.T) {
	arm := Arrow(2, L(V("x", 2)), Block(2, Atom("a"), Atom("b")))
	arms, err := NormalizeClauses(arm)
	if err != nil {
		t.Fatalf("NormalizeClauses returned error: %v", err)
	}
	if !reflect.DeepEqual(arms[0].Body, []Form{Atom("a"), Atom("b")}) {
		t.Fatalf("body = %#v", arms[0].Body)
	}
}
