package core

import (
	"fmt"
	"strconv"
	"strings"

	"cinder/compiler-go/pkg/syntax"
)

// Render prints a core form as a stable single-line s-expression. The CLI and
// the REPL use it as their output surface; tests use it to assert on lowered
// shapes without walking nodes by hand.
func Render(n Node) string {
	var b strings.Builder
	render(&b, n)
	return b.String()
}

func render(b *strings.Builder, n Node) {
	switch node := n.(type) {
	case nil:
		b.WriteString("nil")
	case *Literal:
		renderLiteral(b, node.Value)
	case *VarRef:
		b.WriteString(node.Name)
	case *OpCall:
		b.WriteString("(op ")
		b.WriteString(node.Op)
		renderArgs(b, node.Args)
		b.WriteByte(')')
	case *Call:
		b.WriteString("(call ")
		b.WriteString(node.Fun)
		renderArgs(b, node.Args)
		b.WriteByte(')')
	case *RemoteCall:
		b.WriteString("(remote ")
		b.WriteString(node.Module)
		b.WriteByte(':')
		b.WriteString(node.Fun)
		renderArgs(b, node.Args)
		b.WriteByte(')')
	case *Apply:
		b.WriteString("(apply ")
		render(b, node.Callee)
		b.WriteByte(' ')
		render(b, node.Selector)
		b.WriteByte(' ')
		render(b, node.Args)
		b.WriteByte(')')
	case *Invoke:
		b.WriteString("(invoke ")
		render(b, node.Target)
		renderArgs(b, node.Args)
		b.WriteByte(')')
	case *Match:
		b.WriteString("(= ")
		render(b, node.Pattern)
		b.WriteByte(' ')
		render(b, node.Value)
		b.WriteByte(')')
	case *Block:
		b.WriteString("(block")
		renderArgs(b, node.Exprs)
		b.WriteByte(')')
	case *Tuple:
		b.WriteString("(tuple")
		renderArgs(b, node.Elems)
		b.WriteByte(')')
	case *ListNode:
		b.WriteString("(list")
		renderArgs(b, node.Elems)
		b.WriteByte(')')
	case *Case:
		b.WriteString("(case ")
		render(b, node.Expr)
		renderClauses(b, node.Clauses)
		b.WriteByte(')')
	case *Try:
		b.WriteString("(try (do")
		renderArgs(b, node.Body)
		b.WriteByte(')')
		if len(node.Catch) > 0 {
			b.WriteString(" (catch")
			renderClauseList(b, node.Catch)
			b.WriteByte(')')
		}
		if len(node.After) > 0 {
			b.WriteString(" (after")
			renderArgs(b, node.After)
			b.WriteByte(')')
		}
		b.WriteByte(')')
	case *Receive:
		b.WriteString("(receive")
		renderClauses(b, node.Clauses)
		if node.Timeout != nil {
			b.WriteString(" (after ")
			render(b, node.Timeout)
			renderArgs(b, node.TimeoutBody)
			b.WriteByte(')')
		}
		b.WriteByte(')')
	case *Closure:
		b.WriteString("(fn")
		renderClauses(b, node.Clauses)
		b.WriteByte(')')
	case *Comprehension:
		if node.Kind == KindBitstring {
			b.WriteString("(bitfor")
		} else {
			b.WriteString("(for")
		}
		for _, q := range node.Qualifiers {
			b.WriteByte(' ')
			renderQualifier(b, q)
		}
		b.WriteString(" (do ")
		render(b, node.Body)
		b.WriteString("))")
	case *Definition:
		fmt.Fprintf(b, "(%s %s/%d)", node.Kind, node.Name, node.Arity)
	case *ModuleDef:
		b.WriteString("(module ")
		b.WriteString(node.Name)
		renderArgs(b, node.Body)
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "<%T>", n)
	}
}

func renderLiteral(b *strings.Builder, value any) {
	switch v := value.(type) {
	case syntax.Atom:
		b.WriteByte(':')
		b.WriteString(string(v))
	case int64:
		b.WriteString(strconv.FormatInt(v, 10))
	case float64:
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case string:
		b.WriteString(strconv.Quote(v))
	default:
		fmt.Fprintf(b, "%v", v)
	}
}

func renderArgs(b *strings.Builder, args []Node) {
	for _, arg := range args {
		b.WriteByte(' ')
		render(b, arg)
	}
}

func renderClauses(b *strings.Builder, clauses []*Clause) {
	renderClauseList(b, clauses)
}

func renderClauseList(b *strings.Builder, clauses []*Clause) {
	for _, clause := range clauses {
		b.WriteString(" (clause (")
		for idx, pat := range clause.Patterns {
			if idx > 0 {
				b.WriteByte(' ')
			}
			render(b, pat)
		}
		b.WriteByte(')')
		if len(clause.Guards) > 0 {
			b.WriteString(" (when")
			renderArgs(b, clause.Guards)
			b.WriteByte(')')
		}
		renderArgs(b, clause.Body)
		b.WriteByte(')')
	}
}

func renderQualifier(b *strings.Builder, q Qualifier) {
	switch qual := q.(type) {
	case Generate:
		b.WriteString("(gen ")
		render(b, qual.Pattern)
		b.WriteString(" in ")
		render(b, qual.Source)
		b.WriteByte(')')
	case BitGenerate:
		b.WriteString("(bitgen ")
		render(b, qual.Pattern)
		b.WriteString(" in ")
		render(b, qual.Source)
		b.WriteByte(')')
	case Filter:
		b.WriteString("(filter ")
		render(b, qual.Cond)
		b.WriteByte(')')
	}
}
