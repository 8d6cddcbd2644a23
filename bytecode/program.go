package bytecode

import (
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/psyk-lang/psyk/errors"
	"github.com/psyk-lang/psyk/op"
)

// Program is an immutable, ordered list of instructions.
type Program struct {
	instructions []Instruction
}

// NewProgram creates a program from the given instructions. The slice is
// copied so later changes by the caller have no effect.
func NewProgram(instructions []Instruction) *Program {
	copied := make([]Instruction, len(instructions))
	copy(copied, instructions)
	return &Program{instructions: copied}
}

// InstructionCount returns the number of lines in the program.
func (p *Program) InstructionCount() int {
	return len(p.instructions)
}

// InstructionAt returns the instruction on the given zero-based line.
func (p *Program) InstructionAt(index int) Instruction {
	return p.instructions[index]
}

// String serializes the program: one line per instruction, each followed
// by a newline.
func (p *Program) String() string {
	var b strings.Builder
	for _, instr := range p.instructions {
		b.WriteString(instr.String())
		b.WriteString("\n")
	}
	return b.String()
}

// Labels maps every label name to the zero-based line that defines it. A
// label defined twice is an error.
func (p *Program) Labels() (map[string]int, error) {
	labels := map[string]int{}
	for i, instr := range p.instructions {
		if !instr.IsLabel() {
			continue
		}
		name, _ := instr.LabelName()
		if _, exists := labels[name]; exists {
			return nil, errors.MalformedInstruction("label %q defined more than once", name).At(i+1, instr.String())
		}
		labels[name] = i
	}
	return labels, nil
}

// Validate checks every instruction against its opcode's operand kinds and
// every jump against the defined labels. All problems are reported
// together.
func (p *Program) Validate() error {
	var result *multierror.Error
	labels := map[string]int{}
	for i, instr := range p.instructions {
		if err := checkOperands(instr); err != nil {
			result = multierror.Append(result, err.At(i+1, instr.String()))
			continue
		}
		if instr.IsLabel() {
			name, _ := instr.LabelName()
			if _, exists := labels[name]; exists {
				result = multierror.Append(result,
					errors.MalformedInstruction("label %q defined more than once", name).At(i+1, instr.String()))
			}
			labels[name] = i
		}
	}
	for i, instr := range p.instructions {
		if instr.IsLabel() {
			continue
		}
		if name, ok := instr.LabelName(); ok {
			if _, exists := labels[name]; !exists {
				result = multierror.Append(result, errors.UnknownLabel(name).At(i+1, instr.String()))
			}
		}
	}
	return result.ErrorOrNil()
}

func checkOperands(instr Instruction) *errors.RuntimeError {
	info := op.GetInfo(instr.Opcode)
	if info.Name == "" {
		return errors.MalformedInstruction("invalid opcode %d", instr.Opcode)
	}
	if len(instr.Operands) != info.OperandCount {
		return errors.MalformedInstruction("%s takes %d operands, got %d",
			info.Name, info.OperandCount, len(instr.Operands))
	}
	for i, operand := range instr.Operands {
		if !operandFits(info.Operands[i], operand) {
			return errors.MalformedInstruction("%s operand %d must be a %s, got %q",
				info.Name, i+1, info.Operands[i], operand.String())
		}
	}
	return nil
}

func operandFits(kind op.OperandKind, operand Operand) bool {
	switch o := operand.(type) {
	case Address:
		if o.IsElement() || o.IsZero() {
			return false
		}
		switch kind {
		case op.Source, op.Target:
			return true
		case op.Array:
			return o.Kind == ArrayKind
		}
	case Literal:
		return kind == op.Source
	case Label:
		return kind == op.LabelName && validLabel(string(o))
	}
	return false
}

func validLabel(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
