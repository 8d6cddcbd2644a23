package ast

import (
	"strconv"

	"github.com/psyk-lang/psyk/bytecode"
)

// Int is an integer literal.
type Int struct {
	Value int64
}

func (x *Int) node()     {}
func (x *Int) exprNode() {}

func (x *Int) String() string { return strconv.FormatInt(x.Value, 10) }

// Float is a floating point literal.
type Float struct {
	Value float64
}

func (x *Float) node()     {}
func (x *Float) exprNode() {}

func (x *Float) String() string { return bytecode.FormatFloat(x.Value) }

// Bool is a boolean literal.
type Bool struct {
	Value bool
}

func (x *Bool) node()     {}
func (x *Bool) exprNode() {}

func (x *Bool) String() string { return strconv.FormatBool(x.Value) }

// Char is a character literal.
type Char struct {
	Value rune
}

func (x *Char) node()     {}
func (x *Char) exprNode() {}

func (x *Char) String() string { return bytecode.QuoteChar(x.Value) }
