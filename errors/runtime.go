package errors

import (
	"fmt"
	"strings"
)

// RuntimeError is raised by the virtual machine or by the instruction
// stream parser. Line is the one-based number of the offending line and
// Source is its text, when known.
type RuntimeError struct {
	Code    ErrorCode
	Message string
	Line    int
	Source  string
	located bool
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString("runtime error: ")
	b.WriteString(e.Message)
	if e.located {
		fmt.Fprintf(&b, " (line %d", e.Line)
		if e.Source != "" {
			fmt.Fprintf(&b, ": %s", e.Source)
		}
		b.WriteString(")")
	}
	return b.String()
}

// Is reports whether target is a runtime error with the same code.
func (e *RuntimeError) Is(target error) bool {
	t, ok := target.(*RuntimeError)
	return ok && t.Code == e.Code
}

// HasLocation reports whether a line has been attached to the error.
func (e *RuntimeError) HasLocation() bool {
	return e.located
}

// At attaches a line location unless one is already present, and returns
// the error for chaining.
func (e *RuntimeError) At(line int, source string) *RuntimeError {
	if !e.located {
		e.Line = line
		e.Source = source
		e.located = true
	}
	return e
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *RuntimeError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *RuntimeError) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:    e.Code,
		Kind:    "runtime error",
		Message: e.Message,
	}
	if e.located {
		fe.Line = e.Line
		fe.HasLine = true
		fe.SourceLines = []SourceLineEntry{{Number: e.Line, Text: e.Source, IsMain: true}}
	}
	return fe
}

// Sentinels for matching with errors.Is.
var (
	ErrDivisionByZero       = &RuntimeError{Code: E3001, Message: E3001.Description()}
	ErrUninitializedAccess  = &RuntimeError{Code: E3002, Message: E3002.Description()}
	ErrUnknownLabel         = &RuntimeError{Code: E3003, Message: E3003.Description()}
	ErrMalformedInstruction = &RuntimeError{Code: E3004, Message: E3004.Description()}
)

// DivisionByZero reports a DIV, IDIV or MOD with a zero divisor.
func DivisionByZero() *RuntimeError {
	return &RuntimeError{Code: E3001, Message: "division by zero"}
}

// UninitializedAccess reports a read of a memory cell that was never
// written.
func UninitializedAccess(cell int) *RuntimeError {
	return &RuntimeError{
		Code:    E3002,
		Message: fmt.Sprintf("memory cell %d read before it was written", cell),
	}
}

// UnknownLabel reports a jump to a label that the program does not define.
func UnknownLabel(name string) *RuntimeError {
	return &RuntimeError{
		Code:    E3003,
		Message: fmt.Sprintf("unknown label %q", name),
	}
}

// MalformedInstruction reports a line that cannot be decoded.
func MalformedInstruction(format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Code:    E3004,
		Message: fmt.Sprintf(format, args...),
	}
}
