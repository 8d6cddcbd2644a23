package ast

import (
	"fmt"

	"github.com/psyk-lang/psyk/op"
)

// Ident is a reference to a named variable.
type Ident struct {
	Name string
}

func (x *Ident) node()          {}
func (x *Ident) exprNode()      {}
func (x *Ident) assignable()    {}
func (x *Ident) String() string { return x.Name }

// Index is a reference to one element of an array variable.
type Index struct {
	Array *Ident
	Index Expr
}

func (x *Index) node()       {}
func (x *Index) exprNode()   {}
func (x *Index) assignable() {}

func (x *Index) String() string {
	return fmt.Sprintf("%s[%s]", x.Array, x.Index)
}

// Assign stores a value into a variable or array element. It evaluates to
// the target so assignments can be chained.
type Assign struct {
	Target Assignable
	Value  Expr
}

func (x *Assign) node()     {}
func (x *Assign) exprNode() {}

func (x *Assign) String() string {
	return fmt.Sprintf("%s = %s", x.Target, x.Value)
}

// Unary applies a math or logic operator to one operand.
type Unary struct {
	Op      op.UnaryOpType
	Operand Expr
}

func (x *Unary) node()     {}
func (x *Unary) exprNode() {}

func (x *Unary) String() string {
	if x.Op == op.Not {
		return fmt.Sprintf("(not %s)", x.Operand)
	}
	return fmt.Sprintf("(%s%s)", x.Op, x.Operand)
}

// Binary applies a math or logic operator to two operands.
type Binary struct {
	Op    op.BinaryOpType
	Left  Expr
	Right Expr
}

func (x *Binary) node()     {}
func (x *Binary) exprNode() {}

func (x *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", x.Left, x.Op, x.Right)
}

// Compare compares two operands and evaluates to a Bool.
type Compare struct {
	Op    op.CompareOpType
	Left  Expr
	Right Expr
}

func (x *Compare) node()     {}
func (x *Compare) exprNode() {}

func (x *Compare) String() string {
	return fmt.Sprintf("(%s %s %s)", x.Left, x.Op, x.Right)
}

// Nary folds a math or logic operator over two or more operands from left
// to right.
type Nary struct {
	Op   op.BinaryOpType
	Args []Expr
}

func (x *Nary) node()     {}
func (x *Nary) exprNode() {}

func (x *Nary) String() string {
	return fmt.Sprintf("%s(%s)", x.Op, joinExprs(x.Args, ", "))
}

// Len evaluates to the size of an array.
type Len struct {
	Operand Expr
}

func (x *Len) node()     {}
func (x *Len) exprNode() {}

func (x *Len) String() string { return fmt.Sprintf("len(%s)", x.Operand) }

// Random evaluates to a random integer.
type Random struct{}

func (x *Random) node()          {}
func (x *Random) exprNode()      {}
func (x *Random) String() string { return "random()" }

// ReadChar evaluates to the next character of input.
type ReadChar struct{}

func (x *ReadChar) node()          {}
func (x *ReadChar) exprNode()      {}
func (x *ReadChar) String() string { return "read()" }
