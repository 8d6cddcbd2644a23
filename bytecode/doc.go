// Package bytecode defines the instruction stream that the compiler emits and
// the virtual machine executes.
//
// # Key Types
//
//   - [Address]: A scalar or array storage slot, optionally an array element
//   - [Value]: An integer, float or character held in one memory cell
//   - [Instruction]: One line of the stream: an opcode with operands, a
//     label marker, or a blank
//   - [Program]: An immutable, ordered list of instructions
//
// # Textual Form
//
// A program serializes to one line per instruction, newline terminated:
//
//	VAL_COPY 1000 s0
//	VAL_COPY 3 s1
//	while_start_1:
//	TEST_LESS s1 10 s2
//	JUMP_IF_0 s2 while_end_1
//	OUT_CHAR '%n'
//
// Operands are addresses (s7, a3), integer or float literals, character
// literals in single quotes, or label names. Character literals spell
// newline, tab, percent and apostrophe as %n, %t, %% and %'.
//
// [Parse] reads the textual form back. It reports every malformed line at
// once rather than stopping at the first.
package bytecode
