// Package vm provides a VirtualMachine that executes instruction streams.
//
// Execution takes two passes over the program. The first pass indexes every
// label by its line. The second pass is the fetch-execute loop, which runs
// until the instruction pointer falls off the end of the program or an
// instruction fails. Output written before a failure stays written.
package vm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/psyk-lang/psyk/bytecode"
	errz "github.com/psyk-lang/psyk/errors"
	"github.com/psyk-lang/psyk/op"
)

const (
	// DefaultHeapBase is the value s0 holds when a run starts.
	DefaultHeapBase = 1000

	// DefaultRandomLow and DefaultRandomHigh bound what RANDOM produces.
	DefaultRandomLow  = -100
	DefaultRandomHigh = 100

	// DefaultContextCheckInterval is the number of instructions between
	// deterministic checks of ctx.Done(). Set to 0 to disable.
	DefaultContextCheckInterval = 1000
)

// ErrHalted is returned when an observer stops execution.
var ErrHalted = errors.New("execution halted by observer")

type VirtualMachine struct {
	ip         int // instruction pointer
	halt       int32
	steps      int64
	program    *bytecode.Program
	labels     map[string]int
	memory     *Memory
	running    bool
	runMutex   sync.Mutex
	input      io.Reader
	runes      io.RuneReader
	output     io.Writer
	rng        *rand.Rand
	seed       *uint64
	randomLow  int64
	randomHigh int64
	heapBase   int64

	// contextCheckInterval is the number of instructions between deterministic
	// checks of ctx.Done(). A value of 0 disables deterministic checking,
	// relying only on the background goroutine.
	contextCheckInterval int

	// observer is called before every executed instruction. If nil, no
	// callbacks are made.
	observer Observer
}

// New creates a new Virtual Machine for the given program.
func New(program *bytecode.Program, options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		program:              program,
		memory:               newMemory(),
		randomLow:            DefaultRandomLow,
		randomHigh:           DefaultRandomHigh,
		heapBase:             DefaultHeapBase,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range options {
		opt(vm)
	}
	if vm.input == nil {
		vm.input = strings.NewReader("")
	}
	if rr, ok := vm.input.(io.RuneReader); ok {
		vm.runes = rr
	} else {
		vm.runes = bufio.NewReader(vm.input)
	}
	if vm.output == nil {
		vm.output = os.Stdout
	}
	if vm.seed != nil {
		vm.rng = rand.New(rand.NewPCG(*vm.seed, *vm.seed))
	} else {
		vm.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return vm
}

// Memory returns the cells of the most recent run.
func (vm *VirtualMachine) Memory() *Memory {
	return vm.memory
}

// Steps returns the number of instructions the most recent run executed.
func (vm *VirtualMachine) Steps() int64 {
	return vm.steps
}

func (vm *VirtualMachine) start(ctx context.Context) (stop func(), err error) {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return nil, fmt.Errorf("vm is already running")
	}
	vm.running = true
	vm.halt = 0
	// Halt execution when the context is cancelled
	stopped := make(chan struct{})
	if doneChan := ctx.Done(); doneChan != nil {
		go func() {
			select {
			case <-doneChan:
				atomic.StoreInt32(&vm.halt, 1)
			case <-stopped:
			}
		}()
	}
	return func() {
		close(stopped)
		vm.runMutex.Lock()
		defer vm.runMutex.Unlock()
		vm.running = false
	}, nil
}

// Run executes the program from its first line with fresh memory. It
// returns nil when the instruction pointer runs off the end of the program.
func (vm *VirtualMachine) Run(ctx context.Context) (err error) {
	if vm.program == nil {
		return fmt.Errorf("no program available")
	}
	// Set up some guarantees:
	// 1. It is an error to call Run on a VM that is already running
	// 2. The running flag will always be set to false when Run returns
	// 3. Any panics are translated to errors and the VM is stopped
	stop, err := vm.start(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		stop()
	}()

	// Pass one: index the labels
	labels, err := vm.program.Labels()
	if err != nil {
		return err
	}
	vm.labels = labels
	vm.memory = newMemory()
	vm.memory.Store(0, bytecode.IntValue(vm.heapBase))
	vm.ip = 0
	vm.steps = 0

	// Pass two: execute
	return vm.eval(ctx)
}

func (vm *VirtualMachine) eval(ctx context.Context) error {
	// Instruction counter for deterministic context checking
	var instructionCount int
	checkInterval := vm.contextCheckInterval
	doneChan := ctx.Done()
	count := vm.program.InstructionCount()

	for vm.ip < count {

		if atomic.LoadInt32(&vm.halt) == 1 {
			return ctx.Err()
		}

		instr := vm.program.InstructionAt(vm.ip)
		if instr.Opcode == op.Nop || instr.Opcode == op.Label {
			vm.ip++
			continue
		}

		// Deterministic check of ctx.Done() every N instructions.
		// This guarantees responsiveness regardless of goroutine scheduling.
		if checkInterval > 0 && doneChan != nil {
			instructionCount++
			if instructionCount >= checkInterval {
				instructionCount = 0
				select {
				case <-doneChan:
					atomic.StoreInt32(&vm.halt, 1)
					return ctx.Err()
				default:
				}
			}
		}

		vm.steps++
		if vm.observer != nil {
			event := StepEvent{
				IP:          vm.ip,
				Line:        vm.ip + 1,
				Opcode:      instr.Opcode,
				OpcodeName:  instr.Opcode.String(),
				Instruction: instr,
				Step:        vm.steps,
			}
			if !vm.observer.OnStep(event) {
				return ErrHalted
			}
		}

		if err := vm.step(instr); err != nil {
			var rerr *errz.RuntimeError
			if errors.As(err, &rerr) {
				return rerr.At(vm.ip+1, instr.String())
			}
			return fmt.Errorf("line %d: %w", vm.ip+1, err)
		}
	}
	return nil
}

// step executes one instruction and advances the instruction pointer.
func (vm *VirtualMachine) step(instr bytecode.Instruction) error {
	info := op.GetInfo(instr.Opcode)
	if info.Name == "" || info.Pseudo {
		return errz.MalformedInstruction("invalid opcode %d", instr.Opcode)
	}
	if len(instr.Operands) != info.OperandCount {
		return errz.MalformedInstruction("%s takes %d operands, got %d",
			info.Name, info.OperandCount, len(instr.Operands))
	}
	args := instr.Operands
	next := vm.ip + 1

	switch instr.Opcode {
	case op.ValCopy:
		v, err := vm.resolve(args[0])
		if err != nil {
			return err
		}
		if err := vm.store(args[1], v); err != nil {
			return err
		}

	case op.Add, op.Sub, op.Mul, op.Div, op.IDiv, op.Mod:
		a, b, err := vm.resolvePair(args[0], args[1])
		if err != nil {
			return err
		}
		result, rerr := arith(instr.Opcode, a, b)
		if rerr != nil {
			return rerr
		}
		if err := vm.store(args[2], result); err != nil {
			return err
		}

	case op.TestEqu, op.TestNequ, op.TestGtr, op.TestLess:
		a, b, err := vm.resolvePair(args[0], args[1])
		if err != nil {
			return err
		}
		result, rerr := compare(instr.Opcode, a, b)
		if rerr != nil {
			return rerr
		}
		if err := vm.store(args[2], result); err != nil {
			return err
		}

	case op.Jump:
		target, err := vm.jumpTarget(args[0])
		if err != nil {
			return err
		}
		next = target

	case op.JumpIf0, op.JumpIfNe0:
		v, err := vm.resolve(args[0])
		if err != nil {
			return err
		}
		if v.IsZero() == (instr.Opcode == op.JumpIf0) {
			target, err := vm.jumpTarget(args[1])
			if err != nil {
				return err
			}
			next = target
		}

	case op.OutNum, op.OutChar:
		v, err := vm.resolve(args[0])
		if err != nil {
			return err
		}
		if _, err := io.WriteString(vm.output, v.String()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}

	case op.InChar:
		r, _, err := vm.runes.ReadRune()
		if errors.Is(err, io.EOF) {
			r = '\n'
		} else if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if err := vm.store(args[0], bytecode.CharValue(r)); err != nil {
			return err
		}

	case op.Random:
		n := vm.randomLow + vm.rng.Int64N(vm.randomHigh-vm.randomLow+1)
		if err := vm.store(args[0], bytecode.IntValue(n)); err != nil {
			return err
		}

	case op.ArGetSz:
		slot, err := vm.arraySlot(args[0])
		if err != nil {
			return err
		}
		ptr, rerr := vm.memory.pointer(slot)
		if rerr != nil {
			return rerr
		}
		size, rerr := vm.memory.Load(ptr)
		if rerr != nil {
			return rerr
		}
		if err := vm.store(args[1], size); err != nil {
			return err
		}

	case op.ArSetSz:
		slot, err := vm.arraySlot(args[0])
		if err != nil {
			return err
		}
		size, err := vm.resolve(args[1])
		if err != nil {
			return err
		}
		ptr, rerr := vm.memory.pointer(slot)
		if rerr != nil {
			return rerr
		}
		vm.memory.Store(ptr, size)

	case op.ArGetNdx:
		slot, err := vm.arraySlot(args[0])
		if err != nil {
			return err
		}
		idx, err := vm.resolve(args[1])
		if err != nil {
			return err
		}
		cell, rerr := vm.memory.element(slot, idx)
		if rerr != nil {
			return rerr
		}
		v, rerr := vm.memory.Load(cell)
		if rerr != nil {
			return rerr
		}
		if err := vm.store(args[2], v); err != nil {
			return err
		}

	case op.ArSetNdx:
		slot, err := vm.arraySlot(args[0])
		if err != nil {
			return err
		}
		idx, v, err := vm.resolvePair(args[1], args[2])
		if err != nil {
			return err
		}
		cell, rerr := vm.memory.element(slot, idx)
		if rerr != nil {
			return rerr
		}
		vm.memory.Store(cell, v)

	case op.ArCopy:
		if err := vm.arrayCopy(args[0], args[1]); err != nil {
			return err
		}

	default:
		return errz.MalformedInstruction("%s cannot be executed", info.Name)
	}

	vm.ip = next
	return nil
}

// resolve returns the value of a literal or the content of an address.
func (vm *VirtualMachine) resolve(operand bytecode.Operand) (bytecode.Value, error) {
	switch o := operand.(type) {
	case bytecode.Literal:
		return o.Value, nil
	case bytecode.Address:
		if o.IsZero() || o.IsElement() {
			return bytecode.Value{}, errz.MalformedInstruction("invalid source %s", o)
		}
		v, err := vm.memory.Load(o.Slot)
		if err != nil {
			return bytecode.Value{}, err
		}
		return v, nil
	}
	return bytecode.Value{}, errz.MalformedInstruction("invalid source %q", operand.String())
}

func (vm *VirtualMachine) resolvePair(a, b bytecode.Operand) (bytecode.Value, bytecode.Value, error) {
	x, err := vm.resolve(a)
	if err != nil {
		return bytecode.Value{}, bytecode.Value{}, err
	}
	y, err := vm.resolve(b)
	if err != nil {
		return bytecode.Value{}, bytecode.Value{}, err
	}
	return x, y, nil
}

// store writes a value to the cell named by a target operand.
func (vm *VirtualMachine) store(operand bytecode.Operand, v bytecode.Value) error {
	addr, ok := operand.(bytecode.Address)
	if !ok || addr.IsZero() || addr.IsElement() {
		return errz.MalformedInstruction("invalid target %q", operand.String())
	}
	vm.memory.Store(addr.Slot, v)
	return nil
}

func (vm *VirtualMachine) arraySlot(operand bytecode.Operand) (int, error) {
	addr, ok := operand.(bytecode.Address)
	if !ok || !addr.IsArray() {
		return 0, errz.MalformedInstruction("expected an array address, got %q", operand.String())
	}
	return addr.Slot, nil
}

func (vm *VirtualMachine) jumpTarget(operand bytecode.Operand) (int, error) {
	label, ok := operand.(bytecode.Label)
	if !ok {
		return 0, errz.MalformedInstruction("expected a label, got %q", operand.String())
	}
	line, ok := vm.labels[string(label)]
	if !ok {
		return 0, errz.UnknownLabel(string(label))
	}
	return line + 1, nil
}

// arrayCopy copies the size cell and every element of src into the
// storage dst points to.
func (vm *VirtualMachine) arrayCopy(srcOperand, dstOperand bytecode.Operand) error {
	src, err := vm.arraySlot(srcOperand)
	if err != nil {
		return err
	}
	dst, err := vm.arraySlot(dstOperand)
	if err != nil {
		return err
	}
	from, rerr := vm.memory.pointer(src)
	if rerr != nil {
		return rerr
	}
	to, rerr := vm.memory.pointer(dst)
	if rerr != nil {
		return rerr
	}
	size, rerr := vm.memory.Load(from)
	if rerr != nil {
		return rerr
	}
	if size.Kind != bytecode.IntKind {
		return errz.MalformedInstruction("array size must be an integer, got %s", size.Literal())
	}
	vm.memory.Store(to, size)
	for i := 1; i <= int(size.Int); i++ {
		v, rerr := vm.memory.Load(from + i)
		if rerr != nil {
			return rerr
		}
		vm.memory.Store(to+i, v)
	}
	return nil
}
