package vm

import (
	"math"

	"github.com/psyk-lang/psyk/bytecode"
	errz "github.com/psyk-lang/psyk/errors"
	"github.com/psyk-lang/psyk/op"
)

// arith applies a math opcode. Integer operands stay integers except for
// DIV, which always divides exactly and yields a float.
func arith(code op.Code, a, b bytecode.Value) (bytecode.Value, *errz.RuntimeError) {
	if !a.IsNumber() || !b.IsNumber() {
		return bytecode.Value{}, errz.MalformedInstruction("%s does not accept %s and %s operands", code, a.Kind, b.Kind)
	}
	switch code {
	case op.Div, op.IDiv, op.Mod:
		if b.IsZero() {
			return bytecode.Value{}, errz.DivisionByZero()
		}
	}
	if a.Kind == bytecode.IntKind && b.Kind == bytecode.IntKind {
		x, y := a.Int, b.Int
		switch code {
		case op.Add:
			return bytecode.IntValue(x + y), nil
		case op.Sub:
			return bytecode.IntValue(x - y), nil
		case op.Mul:
			return bytecode.IntValue(x * y), nil
		case op.Div:
			return bytecode.FloatValue(float64(x) / float64(y)), nil
		case op.IDiv:
			return bytecode.IntValue(floorDiv(x, y)), nil
		case op.Mod:
			return bytecode.IntValue(floorMod(x, y)), nil
		}
		return bytecode.Value{}, errz.MalformedInstruction("%s is not an arithmetic instruction", code)
	}
	x, y := a.AsFloat(), b.AsFloat()
	switch code {
	case op.Add:
		return bytecode.FloatValue(x + y), nil
	case op.Sub:
		return bytecode.FloatValue(x - y), nil
	case op.Mul:
		return bytecode.FloatValue(x * y), nil
	case op.Div:
		return bytecode.FloatValue(x / y), nil
	case op.IDiv:
		return bytecode.FloatValue(math.Floor(x / y)), nil
	case op.Mod:
		r := math.Mod(x, y)
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}
		return bytecode.FloatValue(r), nil
	}
	return bytecode.Value{}, errz.MalformedInstruction("%s is not an arithmetic instruction", code)
}

func floorDiv(x, y int64) int64 {
	q := x / y
	if x%y != 0 && (x < 0) != (y < 0) {
		q--
	}
	return q
}

// floorMod returns a remainder with the sign of the divisor.
func floorMod(x, y int64) int64 {
	r := x % y
	if r != 0 && (r < 0) != (y < 0) {
		r += y
	}
	return r
}

// compare applies a test opcode and reports the result as 1 or 0.
// Characters compare by code point with each other and are never equal to
// a number.
func compare(code op.Code, a, b bytecode.Value) (bytecode.Value, *errz.RuntimeError) {
	var cmp int
	switch {
	case a.Kind == bytecode.CharKind && b.Kind == bytecode.CharKind:
		cmp = compareOrdered(a.Char, b.Char)
	case a.Kind == bytecode.CharKind || b.Kind == bytecode.CharKind:
		switch code {
		case op.TestEqu:
			return bytecode.IntValue(0), nil
		case op.TestNequ:
			return bytecode.IntValue(1), nil
		}
		return bytecode.Value{}, errz.MalformedInstruction("%s cannot order %s and %s", code, a.Kind, b.Kind)
	case a.Kind == bytecode.IntKind && b.Kind == bytecode.IntKind:
		cmp = compareOrdered(a.Int, b.Int)
	default:
		x, y := a.AsFloat(), b.AsFloat()
		if math.IsNaN(x) || math.IsNaN(y) {
			return bytecode.Bool(code == op.TestNequ).Value, nil
		}
		cmp = compareOrdered(x, y)
	}
	var result bool
	switch code {
	case op.TestEqu:
		result = cmp == 0
	case op.TestNequ:
		result = cmp != 0
	case op.TestGtr:
		result = cmp > 0
	case op.TestLess:
		result = cmp < 0
	default:
		return bytecode.Value{}, errz.MalformedInstruction("%s is not a test instruction", code)
	}
	return bytecode.Bool(result).Value, nil
}

func compareOrdered[T int64 | float64 | rune](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
