package bytecode

import (
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/psyk-lang/psyk/errors"
	"github.com/psyk-lang/psyk/op"
)

// Parse reads the textual form of a program. Every malformed line is
// reported; the returned error is a *multierror.Error whose entries are
// *errors.RuntimeError values with the MalformedInstruction code.
func Parse(text string) (*Program, error) {
	text = strings.TrimSuffix(text, "\n")
	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
	}
	var result *multierror.Error
	instructions := make([]Instruction, 0, len(lines))
	for i, line := range lines {
		instr, err := ParseLine(line)
		if err != nil {
			result = multierror.Append(result, err.At(i+1, strings.TrimSpace(line)))
			continue
		}
		instructions = append(instructions, instr)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return NewProgram(instructions), nil
}

// ParseLine decodes a single line of the stream.
func ParseLine(line string) (Instruction, *errors.RuntimeError) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Blank(), nil
	}
	fields, err := splitFields(line)
	if err != nil {
		return Instruction{}, err
	}
	if len(fields) == 1 && strings.HasSuffix(fields[0], ":") {
		name := strings.TrimSuffix(fields[0], ":")
		if !validLabel(name) {
			return Instruction{}, errors.MalformedInstruction("invalid label name %q", name)
		}
		return LabelMarker(name), nil
	}
	info, ok := op.Lookup(fields[0])
	if !ok {
		return Instruction{}, errors.MalformedInstruction("unknown opcode %q", fields[0])
	}
	args := fields[1:]
	if len(args) != info.OperandCount {
		return Instruction{}, errors.MalformedInstruction("%s takes %d operands, got %d",
			info.Name, info.OperandCount, len(args))
	}
	operands := make([]Operand, 0, len(args))
	for i, arg := range args {
		operand, perr := parseOperand(info.Operands[i], arg)
		if perr != nil {
			return Instruction{}, errors.MalformedInstruction("%s operand %d: %s", info.Name, i+1, perr.Error())
		}
		operands = append(operands, operand)
	}
	instr := NewInstruction(info.Code, operands...)
	if cerr := checkOperands(instr); cerr != nil {
		return Instruction{}, cerr
	}
	return instr, nil
}

func parseOperand(kind op.OperandKind, text string) (Operand, error) {
	if kind == op.LabelName {
		return Label(text), nil
	}
	if text[0] == byte(ScalarKind) || text[0] == byte(ArrayKind) {
		return ParseAddress(text)
	}
	v, err := ParseValue(text)
	if err != nil {
		return nil, err
	}
	return Literal{Value: v}, nil
}

// splitFields splits a line on whitespace, keeping quoted character
// literals such as ' ' or '%'' in one field.
func splitFields(line string) ([]string, *errors.RuntimeError) {
	var fields []string
	var cur strings.Builder
	inQuote := false
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuote:
			cur.WriteRune(r)
			if r == '%' && i+1 < len(runes) {
				i++
				cur.WriteRune(runes[i])
			} else if r == '\'' {
				inQuote = false
			}
		case r == '\'' && cur.Len() == 0:
			inQuote = true
			cur.WriteRune(r)
		case r == ' ' || r == '\t':
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if inQuote {
		return nil, errors.MalformedInstruction("unterminated character literal")
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields, nil
}
