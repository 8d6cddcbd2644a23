package bytecode

import (
	"strings"

	"github.com/psyk-lang/psyk/op"
)

// Instruction is one line of the stream.
type Instruction struct {
	Opcode   op.Code
	Operands []Operand
}

// NewInstruction returns an instruction with the given operands.
func NewInstruction(code op.Code, operands ...Operand) Instruction {
	return Instruction{Opcode: code, Operands: operands}
}

// LabelMarker returns the pseudo instruction that defines a label.
func LabelMarker(name string) Instruction {
	return Instruction{Opcode: op.Label, Operands: []Operand{Label(name)}}
}

// Blank returns an empty line.
func Blank() Instruction {
	return Instruction{Opcode: op.Nop}
}

// IsLabel reports whether the instruction defines a label.
func (i Instruction) IsLabel() bool {
	return i.Opcode == op.Label
}

// LabelName returns the label defined by a label marker, or the jump target
// of a jump instruction.
func (i Instruction) LabelName() (string, bool) {
	for _, o := range i.Operands {
		if l, ok := o.(Label); ok {
			return string(l), true
		}
	}
	return "", false
}

// String returns the line as it appears in the stream.
func (i Instruction) String() string {
	switch i.Opcode {
	case op.Nop:
		return ""
	case op.Label:
		name, _ := i.LabelName()
		return name + ":"
	}
	parts := make([]string, 0, len(i.Operands)+1)
	parts = append(parts, i.Opcode.String())
	for _, o := range i.Operands {
		parts = append(parts, o.String())
	}
	return strings.Join(parts, " ")
}
