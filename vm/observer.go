package vm

import (
	"github.com/psyk-lang/psyk/bytecode"
	"github.com/psyk-lang/psyk/op"
	"github.com/rs/zerolog"
)

// Observer is an interface for observing VM execution. Implementations can
// be used for tracing, step limits or coverage without modifying the VM.
//
// OnStep is called synchronously before each executed instruction, so
// implementations should be fast. Label markers and blank lines are not
// reported.
type Observer interface {
	// OnStep returns false to halt execution immediately.
	OnStep(event StepEvent) bool
}

// StepEvent contains information about a single instruction step.
type StepEvent struct {
	// IP is the zero-based index of the instruction.
	IP int

	// Line is the one-based line of the instruction in the stream.
	Line int

	// Opcode is the operation being executed.
	Opcode op.Code

	// OpcodeName is the human-readable name of the opcode.
	OpcodeName string

	// Instruction is the full instruction about to run.
	Instruction bytecode.Instruction

	// Step counts executed instructions, starting at 1.
	Step int64
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(event StepEvent) bool

func (f ObserverFunc) OnStep(event StepEvent) bool { return f(event) }

// NoOpObserver is an Observer that never halts.
type NoOpObserver struct{}

func (NoOpObserver) OnStep(StepEvent) bool { return true }

// TraceObserver logs every step at trace level.
type TraceObserver struct {
	logger zerolog.Logger
}

// NewTraceObserver returns an observer that writes one trace event per
// executed instruction to logger.
func NewTraceObserver(logger zerolog.Logger) *TraceObserver {
	return &TraceObserver{logger: logger}
}

func (o *TraceObserver) OnStep(event StepEvent) bool {
	o.logger.Trace().
		Int("ip", event.IP).
		Str("op", event.OpcodeName).
		Int("line", event.Line).
		Int64("step", event.Step).
		Str("instruction", event.Instruction.String()).
		Msg("step")
	return true
}

// StepLimit halts execution after a fixed number of instructions.
type StepLimit int64

func (l StepLimit) OnStep(event StepEvent) bool {
	return event.Step <= int64(l)
}

// Observers fans a step out to several observers. Execution halts as soon
// as one of them returns false.
type Observers []Observer

func (o Observers) OnStep(event StepEvent) bool {
	for _, observer := range o {
		if !observer.OnStep(event) {
			return false
		}
	}
	return true
}

var (
	_ Observer = NoOpObserver{}
	_ Observer = (*TraceObserver)(nil)
	_ Observer = StepLimit(0)
	_ Observer = Observers(nil)
	_ Observer = ObserverFunc(nil)
)
