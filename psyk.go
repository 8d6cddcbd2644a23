// Package psyk compiles programs of the psyk language into a textual
// instruction stream and runs that stream on a small virtual machine.
//
// The front end is not part of this module. Programs arrive as an
// *ast.Program built in memory or decoded from JSON with ast.Decode:
//
//	program, err := psyk.CompileJSON(data)
//	if err != nil {
//		return err
//	}
//	fmt.Print(program.String())
//	err = psyk.Run(ctx, program, psyk.WithOutput(os.Stdout))
package psyk

import (
	"context"
	"io"

	"github.com/psyk-lang/psyk/ast"
	"github.com/psyk-lang/psyk/bytecode"
	"github.com/psyk-lang/psyk/compiler"
	"github.com/psyk-lang/psyk/vm"
	"github.com/rs/zerolog"
)

// Option configures a compilation or execution.
type Option func(*options)

type options struct {
	heapBase             *int64
	logger               zerolog.Logger
	trace                bool
	input                io.Reader
	output               io.Writer
	seed                 *uint64
	randomRange          *[2]int64
	observer             vm.Observer
	contextCheckInterval *int
}

func collectOptions(opts ...Option) *options {
	o := &options{logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) compilerOpts() []compiler.Option {
	opts := []compiler.Option{compiler.WithLogger(o.logger)}
	if o.heapBase != nil {
		opts = append(opts, compiler.WithHeapBase(*o.heapBase))
	}
	return opts
}

func (o *options) vmOpts() []vm.Option {
	var opts []vm.Option
	if o.heapBase != nil {
		opts = append(opts, vm.WithHeapBase(*o.heapBase))
	}
	if o.input != nil {
		opts = append(opts, vm.WithInput(o.input))
	}
	if o.output != nil {
		opts = append(opts, vm.WithOutput(o.output))
	}
	if o.seed != nil {
		opts = append(opts, vm.WithSeed(*o.seed))
	}
	if o.randomRange != nil {
		opts = append(opts, vm.WithRandomRange(o.randomRange[0], o.randomRange[1]))
	}
	if o.contextCheckInterval != nil {
		opts = append(opts, vm.WithContextCheckInterval(*o.contextCheckInterval))
	}
	var observers vm.Observers
	if o.trace {
		observers = append(observers, vm.NewTraceObserver(o.logger))
	}
	if o.observer != nil {
		observers = append(observers, o.observer)
	}
	switch len(observers) {
	case 0:
	case 1:
		opts = append(opts, vm.WithObserver(observers[0]))
	default:
		opts = append(opts, vm.WithObserver(observers))
	}
	return opts
}

// WithHeapBase sets the initial heap pointer for both the compiler and the
// VM. The default is 1000.
func WithHeapBase(base int64) Option {
	return func(o *options) {
		o.heapBase = &base
	}
}

// WithLogger sets the logger that receives compiler debug events and, with
// WithTrace, one trace event per executed instruction.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTrace logs every executed instruction at trace level.
func WithTrace() Option {
	return func(o *options) {
		o.trace = true
	}
}

// WithInput sets the reader that character reads consume.
func WithInput(r io.Reader) Option {
	return func(o *options) {
		o.input = r
	}
}

// WithOutput sets the writer that prints go to. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithSeed makes random reads deterministic.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = &seed
	}
}

// WithRandomRange sets the inclusive bounds of random reads.
func WithRandomRange(low, high int64) Option {
	return func(o *options) {
		o.randomRange = &[2]int64{low, high}
	}
}

// WithObserver sets an observer for VM execution steps.
func WithObserver(observer vm.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithContextCheckInterval sets how many instructions run between checks
// for context cancellation.
func WithContextCheckInterval(interval int) Option {
	return func(o *options) {
		o.contextCheckInterval = &interval
	}
}

// Compile lowers a syntax tree into an instruction stream. Compilation stops
// at the first error and returns no program.
func Compile(program *ast.Program, opts ...Option) (*bytecode.Program, error) {
	o := collectOptions(opts...)
	return compiler.Compile(program, o.compilerOpts()...)
}

// CompileJSON decodes a syntax tree from its JSON interchange form and
// compiles it.
func CompileJSON(data []byte, opts ...Option) (*bytecode.Program, error) {
	program, err := ast.Decode(data)
	if err != nil {
		return nil, err
	}
	return Compile(program, opts...)
}

// Parse reads an instruction stream. Every malformed line is reported.
func Parse(text string) (*bytecode.Program, error) {
	return bytecode.Parse(text)
}

// Run executes an instruction stream. Each call starts with fresh memory,
// so the same program may be run concurrently.
func Run(ctx context.Context, program *bytecode.Program, opts ...Option) error {
	o := collectOptions(opts...)
	_, err := vm.Run(ctx, program, o.vmOpts()...)
	return err
}

// RunText parses an instruction stream and executes it.
func RunText(ctx context.Context, text string, opts ...Option) error {
	program, err := Parse(text)
	if err != nil {
		return err
	}
	return Run(ctx, program, opts...)
}

// Eval compiles a syntax tree and runs the result.
func Eval(ctx context.Context, program *ast.Program, opts ...Option) error {
	code, err := Compile(program, opts...)
	if err != nil {
		return err
	}
	return Run(ctx, code, opts...)
}

// EvalJSON decodes, compiles and runs a syntax tree in its JSON form.
func EvalJSON(ctx context.Context, data []byte, opts ...Option) error {
	code, err := CompileJSON(data, opts...)
	if err != nil {
		return err
	}
	return Run(ctx, code, opts...)
}
