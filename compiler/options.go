package compiler

import "github.com/rs/zerolog"

// Option is a configuration function for a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger that receives scope push and pop events at
// debug level. The default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithHeapBase sets the value the heap pointer is initialized to. It must
// match the heap base of the VM that runs the program.
func WithHeapBase(base int64) Option {
	return func(c *Compiler) {
		c.heapBase = base
	}
}
