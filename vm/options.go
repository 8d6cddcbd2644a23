package vm

import "io"

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithInput sets the source IN_CHAR reads from, one rune at a time. Readers
// that do not implement io.RuneReader are buffered. The default input is
// empty, so every IN_CHAR stores a newline.
func WithInput(r io.Reader) Option {
	return func(vm *VirtualMachine) {
		vm.input = r
	}
}

// WithOutput sets the destination of OUT_NUM and OUT_CHAR. The default is
// os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		vm.output = w
	}
}

// WithSeed makes RANDOM deterministic.
func WithSeed(seed uint64) Option {
	return func(vm *VirtualMachine) {
		vm.seed = &seed
	}
}

// WithRandomRange sets the inclusive bounds of the integers RANDOM
// produces. The default is [-100, 100]. Bounds given in the wrong order are
// swapped.
func WithRandomRange(low, high int64) Option {
	return func(vm *VirtualMachine) {
		if low > high {
			low, high = high, low
		}
		vm.randomLow = low
		vm.randomHigh = high
	}
}

// WithHeapBase sets the value s0 holds before the first instruction runs.
// It should match the heap base the program was compiled with.
func WithHeapBase(base int64) Option {
	return func(vm *VirtualMachine) {
		vm.heapBase = base
	}
}

// WithContextCheckInterval sets how often the VM checks ctx.Done() during
// execution. The interval is specified in number of instructions. A value of 0
// disables deterministic checking, relying only on the background goroutine
// that monitors the context. The default is DefaultContextCheckInterval (1000).
func WithContextCheckInterval(interval int) Option {
	return func(vm *VirtualMachine) {
		vm.contextCheckInterval = interval
	}
}

// WithObserver sets an observer that is called before every executed
// instruction. Returning false from OnStep halts execution with ErrHalted.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}
