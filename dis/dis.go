// Package dis renders instruction streams as tables for inspection.
package dis

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/psyk-lang/psyk/bytecode"
	"github.com/psyk-lang/psyk/op"
)

// Instruction is one row of a disassembly.
type Instruction struct {
	Line     int      `json:"line"`
	Opcode   string   `json:"opcode"`
	Operands []string `json:"operands,omitempty"`
	Info     string   `json:"info,omitempty"`
}

// Disassemble converts a program into rows. Blank lines are skipped; label
// markers are kept so jumps can be followed by eye.
func Disassemble(program *bytecode.Program) ([]Instruction, error) {
	labels, err := program.Labels()
	if err != nil {
		return nil, err
	}
	var rows []Instruction
	for i := 0; i < program.InstructionCount(); i++ {
		instr := program.InstructionAt(i)
		switch instr.Opcode {
		case op.Nop:
			continue
		case op.Label:
			name, _ := instr.LabelName()
			rows = append(rows, Instruction{Line: i + 1, Opcode: "LABEL", Operands: []string{name}})
			continue
		}
		operands := make([]string, 0, len(instr.Operands))
		for _, o := range instr.Operands {
			operands = append(operands, o.String())
		}
		rows = append(rows, Instruction{
			Line:     i + 1,
			Opcode:   instr.Opcode.String(),
			Operands: operands,
			Info:     info(instr, labels),
		})
	}
	return rows, nil
}

func info(instr bytecode.Instruction, labels map[string]int) string {
	if name, ok := instr.LabelName(); ok {
		if line, found := labels[name]; found {
			return fmt.Sprintf("-> line %d", line+2)
		}
		return "unknown label"
	}
	var notes []string
	for _, o := range instr.Operands {
		switch o := o.(type) {
		case bytecode.Literal:
			if o.Value.Kind == bytecode.CharKind {
				notes = append(notes, strconv.QuoteRune(o.Value.Char))
			}
		case bytecode.Address:
			if o.Kind == bytecode.ScalarKind && o.Slot == 0 {
				notes = append(notes, "heap")
			}
		}
	}
	return strings.Join(notes, " ")
}

var opcodeColor = color.New(color.FgCyan)

// Print writes the rows as a bordered table.
func Print(instructions []Instruction, writer io.Writer) {
	headers := []string{"LINE", "OPCODE", "OPERANDS", "INFO"}
	rows := make([][]string, 0, len(instructions))
	for _, instr := range instructions {
		rows = append(rows, []string{
			strconv.Itoa(instr.Line),
			instr.Opcode,
			strings.Join(instr.Operands, " "),
			instr.Info,
		})
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	var border strings.Builder
	border.WriteString("+")
	for _, w := range widths {
		border.WriteString(strings.Repeat("-", w+2))
		border.WriteString("+")
	}
	line := border.String()

	fmt.Fprintln(writer, line)
	var header strings.Builder
	header.WriteString("|")
	for i, h := range headers {
		header.WriteString(" " + center(h, widths[i]) + " |")
	}
	fmt.Fprintln(writer, header.String())
	fmt.Fprintln(writer, line)
	for _, row := range rows {
		var b strings.Builder
		b.WriteString("|")
		for i, cell := range row {
			b.WriteString(" ")
			switch i {
			case 0:
				b.WriteString(pad(cell, widths[i], true))
			case 1:
				b.WriteString(opcodeColor.Sprint(cell))
				b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)))
			default:
				b.WriteString(pad(cell, widths[i], false))
			}
			b.WriteString(" |")
		}
		fmt.Fprintln(writer, b.String())
	}
	fmt.Fprintln(writer, line)
}

func pad(s string, width int, right bool) string {
	fill := strings.Repeat(" ", width-utf8.RuneCountInString(s))
	if right {
		return fill + s
	}
	return s + fill
}

func center(s string, width int) string {
	total := width - utf8.RuneCountInString(s)
	left := total / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", total-left)
}
