package syntax

// Form is the interface implemented by every surface-syntax node.
type Form interface {
	form()
}

// Atom is an interned symbolic constant such as :ok or a module identity.
type Atom string

// Int is an integer literal.
type Int int64

// Float is a floating-point literal.
type Float float64

// Str is a string literal.
type Str string

// Var references a lexical variable by name.
type Var struct {
	Name string
	Line int
}

// List is an ordered sequence of forms.
type List []Form

// Tuple is a fixed-size aggregate of forms.
type Tuple struct {
	Elems []Form
}

// Pair is one entry of a keyword list.
type Pair struct {
	Key   Atom
	Value Form
}

// Keywords is an ordered keyword list, used for trailing blocks such as
// do/catch/after and for option lists.
type Keywords []Pair

// Call is the tagged node at the heart of the surface syntax: Name identifies
// the construct (an operator symbol, a keyword such as case or fn, or an
// arbitrary call name) and Args holds its sub-forms, including an optional
// trailing keyword block.
type Call struct {
	Name string
	Line int
	Args []Form
}

func (Atom) form()     {}
func (Int) form()      {}
func (Float) form()    {}
func (Str) form()      {}
func (Var) form()      {}
func (List) form()     {}
func (Tuple) form()    {}
func (Pair) form()     {}
func (Keywords) form() {}
func (*Call) form()    {}

// LineOf reports the source line carried by the form, or 0 when the form kind
// has no position of its own.
func LineOf(f Form) int {
	switch n := f.(type) {
	case Var:
		return n.Line
	case *Call:
		return n.Line
	}
	return 0
}

// Get returns the value stored under key, if present.
func (k Keywords) Get(key string) (Form, bool) {
	for _, pair := range k {
		if string(pair.Key) == key {
			return pair.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present in the keyword list.
func (k Keywords) Has(key string) bool {
	_, ok := k.Get(key)
	return ok
}

// SplitTrailingKeywords separates a trailing keyword block from an argument
// list. It returns the leading arguments, the keyword block, and whether a
// block was present.
func SplitTrailingKeywords(args []Form) ([]Form, Keywords, bool) {
	if len(args) == 0 {
		return args, nil, false
	}
	kw, ok := args[len(args)-1].(Keywords)
	if !ok {
		return args, nil, false
	}
	return args[:len(args)-1], kw, true
}
