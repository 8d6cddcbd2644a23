package ast

import "iter"

// Visitor defines the interface for AST traversal. If Visit returns nil,
// children of the node are not visited. Otherwise, the returned Visitor
// is used to visit children.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses an AST in depth-first order. It starts by calling
// v.Visit(node); if the returned visitor w is not nil, Walk is invoked
// recursively with visitor w for each of the non-nil children of node.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range children(node) {
		Walk(v, child)
	}
}

// Inspect traverses an AST in depth-first order. It calls f(node) for each
// node; if f returns true, Inspect invokes f recursively for each of the
// non-nil children of node.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Preorder returns an iterator over all the nodes of the AST rooted at node
// in depth-first preorder.
func Preorder(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		var visit func(Node) bool
		visit = func(n Node) bool {
			if !yield(n) {
				return false
			}
			for _, child := range children(n) {
				if !visit(child) {
					return false
				}
			}
			return true
		}
		if root != nil {
			visit(root)
		}
	}
}

// children returns the non-nil direct children of node in source order.
func children(node Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, n := range nodes {
			if n != nil && !isNilNode(n) {
				out = append(out, n)
			}
		}
	}
	addExprs := func(exprs []Expr) {
		for _, e := range exprs {
			if e != nil {
				add(e)
			}
		}
	}
	switch n := node.(type) {
	case *Program:
		add(n.Body...)
	case *Block:
		add(n.Body...)

	// Statements
	case *Var:
		if n.Value != nil {
			add(n.Value)
		}
	case *ArrayVar:
		if n.Size != nil {
			add(n.Size)
		}
		addExprs(n.Items)
	case *If:
		if n.Cond != nil {
			add(n.Cond)
		}
		if n.Consequence != nil {
			add(n.Consequence)
		}
		if n.Alternative != nil {
			add(n.Alternative)
		}
	case *While:
		if n.Cond != nil {
			add(n.Cond)
		}
		if n.Body != nil {
			add(n.Body)
		}
	case *ForEach:
		if n.Iterable != nil {
			add(n.Iterable)
		}
		if n.Body != nil {
			add(n.Body)
		}
	case *Print:
		addExprs(n.Args)

	// Expressions
	case *Index:
		if n.Array != nil {
			add(n.Array)
		}
		if n.Index != nil {
			add(n.Index)
		}
	case *Assign:
		if n.Target != nil {
			add(n.Target)
		}
		if n.Value != nil {
			add(n.Value)
		}
	case *Unary:
		if n.Operand != nil {
			add(n.Operand)
		}
	case *Binary:
		if n.Left != nil {
			add(n.Left)
		}
		if n.Right != nil {
			add(n.Right)
		}
	case *Compare:
		if n.Left != nil {
			add(n.Left)
		}
		if n.Right != nil {
			add(n.Right)
		}
	case *Nary:
		addExprs(n.Args)
	case *Len:
		if n.Operand != nil {
			add(n.Operand)
		}
	}
	return out
}

// isNilNode reports whether n is a typed nil pointer for one of the
// container nodes that fields commonly leave unset.
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *Block:
		return v == nil
	case *Ident:
		return v == nil
	}
	return false
}
