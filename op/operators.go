package op

// BinaryOpType describes a binary math or logic operator of the source
// language. The compiler maps each onto one or more opcodes.
type BinaryOpType uint16

const (
	Plus      BinaryOpType = 1
	Minus     BinaryOpType = 2
	Times     BinaryOpType = 3
	Divide    BinaryOpType = 4
	IntDivide BinaryOpType = 5
	Modulo    BinaryOpType = 6
	Min       BinaryOpType = 7
	Max       BinaryOpType = 8
	And       BinaryOpType = 9
	Or        BinaryOpType = 10
	Xor       BinaryOpType = 11
)

// String returns a string representation of the binary operation.
// For example "+" for addition.
func (bop BinaryOpType) String() string {
	switch bop {
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Times:
		return "*"
	case Divide:
		return "/"
	case IntDivide:
		return "//"
	case Modulo:
		return "%"
	case Min:
		return "min"
	case Max:
		return "max"
	case And:
		return "and"
	case Or:
		return "or"
	case Xor:
		return "xor"
	default:
		return ""
	}
}

// IsLogic reports whether the operator works on booleans.
func (bop BinaryOpType) IsLogic() bool {
	return bop == And || bop == Or || bop == Xor
}

// ParseBinaryOp returns the operator with the given symbol.
func ParseBinaryOp(s string) (BinaryOpType, bool) {
	for bop := Plus; bop <= Xor; bop++ {
		if bop.String() == s {
			return bop, true
		}
	}
	return 0, false
}

// CompareOpType describes a comparison operation.
type CompareOpType uint16

const (
	LessThan    CompareOpType = 1
	Equal       CompareOpType = 2
	NotEqual    CompareOpType = 3
	GreaterThan CompareOpType = 4
)

// String returns a string representation of the comparison operation.
// For example "<" for less than.
func (cop CompareOpType) String() string {
	switch cop {
	case LessThan:
		return "<"
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case GreaterThan:
		return ">"
	default:
		return ""
	}
}

// IsEquality reports whether the comparison is == or !=.
func (cop CompareOpType) IsEquality() bool {
	return cop == Equal || cop == NotEqual
}

// ParseCompareOp returns the comparison with the given symbol.
func ParseCompareOp(s string) (CompareOpType, bool) {
	for cop := LessThan; cop <= GreaterThan; cop++ {
		if cop.String() == s {
			return cop, true
		}
	}
	return 0, false
}

// UnaryOpType describes a unary operation.
type UnaryOpType uint16

const (
	Negate UnaryOpType = 1
	Not    UnaryOpType = 2
)

// String returns a string representation of the unary operation.
func (uop UnaryOpType) String() string {
	switch uop {
	case Negate:
		return "-"
	case Not:
		return "not"
	default:
		return ""
	}
}

// ParseUnaryOp returns the unary operator with the given symbol.
func ParseUnaryOp(s string) (UnaryOpType, bool) {
	switch s {
	case "-":
		return Negate, true
	case "not":
		return Not, true
	}
	return 0, false
}
