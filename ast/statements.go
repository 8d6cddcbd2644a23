package ast

import (
	"fmt"

	"github.com/psyk-lang/psyk/types"
)

// Var declares a variable with an optional initial value.
type Var struct {
	Name  string
	Type  types.Type
	Value Expr
}

func (s *Var) node()     {}
func (s *Var) stmtNode() {}

func (s *Var) String() string {
	if s.Value == nil {
		return fmt.Sprintf("var %s %s", s.Name, s.Type)
	}
	return fmt.Sprintf("var %s %s = %s", s.Name, s.Type, s.Value)
}

// ArrayVar declares an array of Size elements with optional initial items.
type ArrayVar struct {
	Name  string
	Type  types.Type
	Size  Expr
	Items []Expr
}

func (s *ArrayVar) node()     {}
func (s *ArrayVar) stmtNode() {}

func (s *ArrayVar) String() string {
	if len(s.Items) == 0 {
		return fmt.Sprintf("var %s %s[%s]", s.Name, s.Type, s.Size)
	}
	return fmt.Sprintf("var %s %s[%s] = [%s]", s.Name, s.Type, s.Size, joinExprs(s.Items, ", "))
}

// If runs Consequence when Cond is true and Alternative, if present,
// otherwise.
type If struct {
	Cond        Expr
	Consequence *Block
	Alternative *Block
}

func (s *If) node()     {}
func (s *If) stmtNode() {}

func (s *If) String() string {
	if s.Alternative == nil {
		return fmt.Sprintf("if %s %s", s.Cond, s.Consequence)
	}
	return fmt.Sprintf("if %s %s else %s", s.Cond, s.Consequence, s.Alternative)
}

// While runs Body for as long as Cond is true. Cond is evaluated before
// every iteration.
type While struct {
	Cond Expr
	Body *Block
}

func (s *While) node()     {}
func (s *While) stmtNode() {}

func (s *While) String() string {
	return fmt.Sprintf("while %s %s", s.Cond, s.Body)
}

// Break exits the innermost loop.
type Break struct{}

func (s *Break) node()          {}
func (s *Break) stmtNode()      {}
func (s *Break) String() string { return "break" }

// ForEach runs Body once per element of Iterable, with Name bound to the
// element.
type ForEach struct {
	Name     string
	Iterable Expr
	Body     *Block
}

func (s *ForEach) node()     {}
func (s *ForEach) stmtNode() {}

func (s *ForEach) String() string {
	return fmt.Sprintf("for %s in %s %s", s.Name, s.Iterable, s.Body)
}

// Print writes each argument to the output, followed by a newline when
// Newline is set.
type Print struct {
	Args    []Expr
	Newline bool
}

func (s *Print) node()     {}
func (s *Print) stmtNode() {}

func (s *Print) String() string {
	if s.Newline {
		return fmt.Sprintf("println(%s)", joinExprs(s.Args, ", "))
	}
	return fmt.Sprintf("print(%s)", joinExprs(s.Args, ", "))
}
