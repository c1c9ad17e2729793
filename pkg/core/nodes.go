package core

import "cinder/compiler-go/pkg/syntax"

// Node is the interface implemented by every core form.
type Node interface {
	node()
	Pos() int
}

// Literal is a compile-time constant. Value is one of syntax.Atom, int64,
// float64, or string.
type Literal struct {
	Line  int
	Value any
}

// VarRef references a lexical variable.
type VarRef struct {
	Line int
	Name string
}

// OpCall applies a canonical operator to one or two operands.
type OpCall struct {
	Line int
	Op   string
	Args []Node
}

// Call invokes a function in the enclosing module by name.
type Call struct {
	Line int
	Fun  string
	Args []Node
}

// RemoteCall invokes a statically resolved module:function target.
type RemoteCall struct {
	Line   int
	Module string
	Fun    string
	Args   []Node
}

// Apply is the fully dynamic dispatch shape: callee and selector are computed
// at runtime and Args evaluates to the argument sequence.
type Apply struct {
	Line     int
	Callee   Node
	Selector Node
	Args     Node
}

// Invoke calls a closure held in a variable.
type Invoke struct {
	Line   int
	Target *VarRef
	Args   []Node
}

// Match binds a compiled pattern against a value.
type Match struct {
	Line    int
	Pattern Node
	Value   Node
}

// Block is a sequential statement aggregate.
type Block struct {
	Line  int
	Exprs []Node
}

// Tuple is a fixed-size aggregate.
type Tuple struct {
	Line  int
	Elems []Node
}

// ListNode is an ordered sequence aggregate.
type ListNode struct {
	Line  int
	Elems []Node
}

// Clause is one compiled pattern/guard/body triple.
type Clause struct {
	Line     int
	Patterns []Node
	Guards   []Node
	Body     []Node
}

// Case branches on the first clause whose pattern matches Expr.
type Case struct {
	Line    int
	Expr    Node
	Clauses []*Clause
}

// Try guards Body with Catch clauses and an After sequence.
type Try struct {
	Line  int
	Body  []Node
	Catch []*Clause
	After []Node
}

// Receive waits for a message matching one of Clauses, falling through to
// TimeoutBody once Timeout elapses. Timeout is nil when no after section was
// written.
type Receive struct {
	Line        int
	Clauses     []*Clause
	Timeout     Node
	TimeoutBody []Node
}

// Closure is an anonymous function with one compiled clause per source arm.
type Closure struct {
	Line    int
	Clauses []*Clause
}

// ComprehensionKind distinguishes sequence from bitstring comprehensions.
type ComprehensionKind int

const (
	KindSequence ComprehensionKind = iota
	KindBitstring
)

// Qualifier is one comprehension qualifier.
type Qualifier interface {
	qualifier()
}

// Generate draws elements of Source, matching each against Pattern.
type Generate struct {
	Line    int
	Pattern Node
	Source  Node
}

// BitGenerate draws bitstring segments of Source against a bitstring Pattern.
type BitGenerate struct {
	Line    int
	Pattern Node
	Source  Node
}

// Filter keeps elements for which Cond evaluates to true. Cond carries the
// boolean-coercion guard installed by the lowering engine.
type Filter struct {
	Line int
	Cond Node
}

// Comprehension is the canonical comprehension form.
type Comprehension struct {
	Line       int
	Kind       ComprehensionKind
	Qualifiers []Qualifier
	Body       Node
}

// Definition marks a registered module function or macro definition.
type Definition struct {
	Line  int
	Kind  string
	Name  string
	Arity int
}

// ModuleDef is the transformed body of a defmodule form.
type ModuleDef struct {
	Line int
	Name string
	Body []Node
}

func (n *Literal) node()       {}
func (n *VarRef) node()        {}
func (n *OpCall) node()        {}
func (n *Call) node()          {}
func (n *RemoteCall) node()    {}
func (n *Apply) node()         {}
func (n *Invoke) node()        {}
func (n *Match) node()         {}
func (n *Block) node()         {}
func (n *Tuple) node()         {}
func (n *ListNode) node()      {}
func (n *Case) node()          {}
func (n *Try) node()           {}
func (n *Receive) node()       {}
func (n *Closure) node()       {}
func (n *Comprehension) node() {}
func (n *Definition) node()    {}
func (n *ModuleDef) node()     {}

func (n *Literal) Pos() int       { return n.Line }
func (n *VarRef) Pos() int        { return n.Line }
func (n *OpCall) Pos() int        { return n.Line }
func (n *Call) Pos() int          { return n.Line }
func (n *RemoteCall) Pos() int    { return n.Line }
func (n *Apply) Pos() int         { return n.Line }
func (n *Invoke) Pos() int        { return n.Line }
func (n *Match) Pos() int         { return n.Line }
func (n *Block) Pos() int         { return n.Line }
func (n *Tuple) Pos() int         { return n.Line }
func (n *ListNode) Pos() int      { return n.Line }
func (n *Case) Pos() int          { return n.Line }
func (n *Try) Pos() int           { return n.Line }
func (n *Receive) Pos() int       { return n.Line }
func (n *Closure) Pos() int       { return n.Line }
func (n *Comprehension) Pos() int { return n.Line }
func (n *Definition) Pos() int    { return n.Line }
func (n *ModuleDef) Pos() int     { return n.Line }

func (Generate) qualifier()    {}
func (BitGenerate) qualifier() {}
func (Filter) qualifier()      {}

// AtomOf extracts the atom identity of a literal node, if it holds one.
func AtomOf(n Node) (string, bool) {
	lit, ok := n.(*Literal)
	if !ok {
		return "", false
	}
	atom, ok := lit.Value.(syntax.Atom)
	if !ok {
		return "", false
	}
	return string(atom), true
}
