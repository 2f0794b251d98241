package expr

import (
	"strconv"
	"strings"
)

// Node is an expression AST node.
type Node interface {
	node()
	String() string
}

// Literal is a constant: number (float64), string, bool, Null or nil
// (undefined).
type Literal struct {
	Value any
}

// Ident is a free name resolved against the scope.
type Ident struct {
	Name string
}

// This is the `this` keyword.
type This struct{}

// Member is `Object.Name`.
type Member struct {
	Object Node
	Name   string
}

// Index is `Object[Index]`.
type Index struct {
	Object Node
	Index  Node
}

// CallExpr is `Callee(Args...)`.
type CallExpr struct {
	Callee Node
	Args   []Node
}

// Unary is a prefix operator applied to X.
type Unary struct {
	Op TokenType
	X  Node
}

// Binary is a binary operator, including the short-circuit ones.
type Binary struct {
	Op    TokenType
	Left  Node
	Right Node
}

// Conditional is `Test ? Then : Else`.
type Conditional struct {
	Test Node
	Then Node
	Else Node
}

// Property is one entry of an object literal.
type Property struct {
	Key   string
	Value Node
}

// Object is an object literal. Keys keep source order.
type Object struct {
	Props []Property
}

// Array is an array literal.
type Array struct {
	Elems []Node
}

func (*Literal) node()     {}
func (*Ident) node()       {}
func (*This) node()        {}
func (*Member) node()      {}
func (*Index) node()       {}
func (*CallExpr) node()    {}
func (*Unary) node()       {}
func (*Binary) node()      {}
func (*Conditional) node() {}
func (*Object) node()      {}
func (*Array) node()       {}

func (n *Literal) String() string {
	switch v := n.Value.(type) {
	case nil:
		return "undefined"
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return "null"
}

func (n *Ident) String() string  { return n.Name }
func (n *This) String() string   { return "this" }
func (n *Member) String() string { return n.Object.String() + "." + n.Name }
func (n *Index) String() string  { return n.Object.String() + "[" + n.Index.String() + "]" }

func (n *CallExpr) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return n.Callee.String() + "(" + strings.Join(args, ", ") + ")"
}

func (n *Unary) String() string { return "(" + n.Op.String() + n.X.String() + ")" }

func (n *Binary) String() string {
	return "(" + n.Left.String() + " " + n.Op.String() + " " + n.Right.String() + ")"
}

func (n *Conditional) String() string {
	return "(" + n.Test.String() + " ? " + n.Then.String() + " : " + n.Else.String() + ")"
}

func (n *Object) String() string {
	parts := make([]string, len(n.Props))
	for i, p := range n.Props {
		parts[i] = strconv.Quote(p.Key) + ": " + p.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (n *Array) String() string {
	parts := make([]string, len(n.Elems))
	for i, e := range n.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
