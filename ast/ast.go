// Package ast defines the syntax tree that the compiler lowers. The set of
// node kinds is closed: every node implements an unexported marker method,
// so only the types in this package satisfy Node.
package ast

import "strings"

// Node represents a portion of the syntax tree.
type Node interface {
	// String returns a human friendly representation of the node.
	String() string
	node()
}

// Stmt represents a statement node. Statements cause side effects but
// do not evaluate to a value.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression node. Expressions evaluate to a value
// and may be embedded within other expressions.
type Expr interface {
	Node
	exprNode()
}

// Assignable is an expression that may appear on the left of an
// assignment.
type Assignable interface {
	Expr
	assignable()
}

// Program is the root of a syntax tree: a list of commands.
type Program struct {
	Body []Node
}

func (p *Program) node() {}

func (p *Program) String() string {
	return joinNodes(p.Body, "\n")
}

// Block is a list of commands that forms the body of a control-flow
// construct.
type Block struct {
	Body []Node
}

func (b *Block) node()     {}
func (b *Block) stmtNode() {}

func (b *Block) String() string {
	if len(b.Body) == 0 {
		return "{}"
	}
	return "{ " + joinNodes(b.Body, "; ") + " }"
}

func joinNodes(nodes []Node, sep string) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			parts = append(parts, "<nil>")
			continue
		}
		parts = append(parts, n.String())
	}
	return strings.Join(parts, sep)
}

func joinExprs(exprs []Expr, sep string) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		if e == nil {
			parts = append(parts, "<nil>")
			continue
		}
		parts = append(parts, e.String())
	}
	return strings.Join(parts, sep)
}
