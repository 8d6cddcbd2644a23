// Package op defines the opcodes of the instruction stream and the operator
// kinds that the compiler lowers onto them.
package op

// Code is an integer opcode that indicates an operation to execute.
type Code uint16

const (
	Invalid Code = 0

	// Pseudo instructions: lines of the stream that never execute
	Nop   Code = 1 // blank line
	Label Code = 2 // "name:" marker

	// Copy
	ValCopy Code = 10

	// Arithmetic
	Add  Code = 20
	Sub  Code = 21
	Mul  Code = 22
	Div  Code = 23
	IDiv Code = 24
	Mod  Code = 25

	// Tests
	TestEqu  Code = 30
	TestNequ Code = 31
	TestGtr  Code = 32
	TestLess Code = 33

	// Jump
	Jump      Code = 40
	JumpIf0   Code = 41
	JumpIfNe0 Code = 42

	// Input and output
	OutNum  Code = 50
	OutChar Code = 51
	InChar  Code = 52
	Random  Code = 53

	// Arrays
	ArGetSz  Code = 60
	ArSetSz  Code = 61
	ArGetNdx Code = 62
	ArSetNdx Code = 63
	ArCopy   Code = 64
)

// OperandKind describes what an instruction accepts in one operand
// position.
type OperandKind uint8

const (
	// Source is a literal or any address.
	Source OperandKind = iota + 1
	// Target is a scalar or array address that receives a result.
	Target
	// Array is an array address.
	Array
	// LabelName is the name of a label.
	LabelName
)

// String returns a short name for the operand kind.
func (k OperandKind) String() string {
	switch k {
	case Source:
		return "source"
	case Target:
		return "target"
	case Array:
		return "array"
	case LabelName:
		return "label"
	default:
		return "invalid"
	}
}

// Info contains information about an opcode.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
	Operands     []OperandKind
	Pseudo       bool
}

// HasResult reports whether the opcode writes its last operand.
func (i Info) HasResult() bool {
	n := len(i.Operands)
	return n > 0 && i.Operands[n-1] == Target
}

var (
	infos  = make([]Info, 256)
	byName = map[string]Info{}
)

func init() {
	type opInfo struct {
		op       Code
		name     string
		operands []OperandKind
	}
	binary := []OperandKind{Source, Source, Target}
	ops := []opInfo{
		{ValCopy, "VAL_COPY", []OperandKind{Source, Target}},
		{Add, "ADD", binary},
		{Sub, "SUB", binary},
		{Mul, "MUL", binary},
		{Div, "DIV", binary},
		{IDiv, "IDIV", binary},
		{Mod, "MOD", binary},
		{TestEqu, "TEST_EQU", binary},
		{TestNequ, "TEST_NEQU", binary},
		{TestGtr, "TEST_GTR", binary},
		{TestLess, "TEST_LESS", binary},
		{Jump, "JUMP", []OperandKind{LabelName}},
		{JumpIf0, "JUMP_IF_0", []OperandKind{Source, LabelName}},
		{JumpIfNe0, "JUMP_IF_NE0", []OperandKind{Source, LabelName}},
		{OutNum, "OUT_NUM", []OperandKind{Source}},
		{OutChar, "OUT_CHAR", []OperandKind{Source}},
		{InChar, "IN_CHAR", []OperandKind{Target}},
		{Random, "RANDOM", []OperandKind{Target}},
		{ArGetSz, "AR_GET_SZ", []OperandKind{Array, Target}},
		{ArSetSz, "AR_SET_SZ", []OperandKind{Array, Source}},
		{ArGetNdx, "AR_GET_NDX", []OperandKind{Array, Source, Target}},
		{ArSetNdx, "AR_SET_NDX", []OperandKind{Array, Source, Source}},
		{ArCopy, "AR_COPY", []OperandKind{Array, Array}},
	}
	for _, o := range ops {
		info := Info{
			Code:         o.op,
			Name:         o.name,
			OperandCount: len(o.operands),
			Operands:     o.operands,
		}
		infos[o.op] = info
		byName[o.name] = info
	}
	infos[Nop] = Info{Code: Nop, Name: "NOP", Pseudo: true}
	infos[Label] = Info{Code: Label, Name: "LABEL", OperandCount: 1, Operands: []OperandKind{LabelName}, Pseudo: true}
}

// GetInfo returns information about the given opcode.
func GetInfo(op Code) Info {
	return infos[op]
}

// Lookup returns the opcode with the given textual name. Pseudo opcodes
// have no textual name and are never returned.
func Lookup(name string) (Info, bool) {
	info, ok := byName[name]
	return info, ok
}

// String returns the textual name of the opcode.
func (c Code) String() string {
	if name := infos[c].Name; name != "" {
		return name
	}
	return "INVALID"
}
