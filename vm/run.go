package vm

import (
	"context"

	"github.com/psyk-lang/psyk/bytecode"
)

// Run the given program in a new Virtual Machine and return its memory.
func Run(ctx context.Context, program *bytecode.Program, options ...Option) (*Memory, error) {
	machine := New(program, options...)
	if err := machine.Run(ctx); err != nil {
		return machine.Memory(), err
	}
	return machine.Memory(), nil
}

// RunText parses an instruction stream and runs it in a new Virtual
// Machine.
func RunText(ctx context.Context, text string, options ...Option) (*Memory, error) {
	program, err := bytecode.Parse(text)
	if err != nil {
		return nil, err
	}
	return Run(ctx, program, options...)
}
