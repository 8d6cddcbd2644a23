package errors

import (
	"fmt"
	"strings"
)

// CompileError is raised while lowering a syntax tree. Any compile error
// aborts compilation and no instruction stream is produced.
type CompileError struct {
	Code        ErrorCode
	Message     string
	Expected    string // type name the context required, if any
	Actual      string // type name that was found, if any
	Coerce      bool   // whether coercion was allowed for the failed check
	Suggestions []Suggestion
	Note        string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString("compile error: ")
	b.WriteString(e.Message)
	if hint := FormatSuggestions(e.Suggestions); hint != "" {
		b.WriteString(" (")
		b.WriteString(hint)
		b.WriteString(")")
	}
	return b.String()
}

// Is reports whether target is a compile error with the same code. This
// lets callers match against the Err* sentinels with errors.Is.
func (e *CompileError) Is(target error) bool {
	t, ok := target.(*CompileError)
	return ok && t.Code == e.Code
}

// FriendlyErrorMessage returns a human-friendly error message.
func (e *CompileError) FriendlyErrorMessage() string {
	return NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts to the FormattedError type for display.
func (e *CompileError) ToFormatted() *FormattedError {
	return &FormattedError{
		Code:    e.Code,
		Kind:    "compile error",
		Message: e.Message,
		Hint:    FormatSuggestions(e.Suggestions),
		Note:    e.Note,
	}
}

// Sentinels for matching with errors.Is.
var (
	ErrUndeclaredVariable      = &CompileError{Code: E2001, Message: E2001.Description()}
	ErrTypeMismatch            = &CompileError{Code: E2002, Message: E2002.Description()}
	ErrNotAnArray              = &CompileError{Code: E2003, Message: E2003.Description()}
	ErrNoEnclosingLoop         = &CompileError{Code: E2004, Message: E2004.Description()}
	ErrInvalidArrayInitializer = &CompileError{Code: E2005, Message: E2005.Description()}
	ErrUnsupportedNode         = &CompileError{Code: E2006, Message: E2006.Description()}
)

// UndeclaredVariable reports a reference to a name that no enclosing scope
// declares. Candidates are the visible names used for suggestions.
func UndeclaredVariable(name string, candidates []string) *CompileError {
	return &CompileError{
		Code:        E2001,
		Message:     fmt.Sprintf("undeclared variable %q", name),
		Suggestions: SuggestSimilar(name, candidates),
	}
}

// NoValue reports a read of an address whose type has not been recorded
// yet, such as a disposed temporary.
func NoValue(what string) *CompileError {
	return &CompileError{
		Code:    E2001,
		Message: fmt.Sprintf("%s is read before it has a value", what),
	}
}

// TypeMismatch reports that a value of type from cannot be stored where a
// value of type to is expected.
func TypeMismatch(to, from string, coerce bool) *CompileError {
	e := &CompileError{
		Code:     E2002,
		Message:  fmt.Sprintf("%s is not assignable to %s", from, to),
		Expected: to,
		Actual:   from,
		Coerce:   coerce,
	}
	if coerce {
		e.Note = "checked with coercion allowed"
	} else {
		e.Note = "checked without coercion"
	}
	return e
}

// NotAnArray reports element or size access on a non-array value.
func NotAnArray(actual string) *CompileError {
	return &CompileError{
		Code:     E2003,
		Message:  fmt.Sprintf("%s is not an array", actual),
		Expected: "Array",
		Actual:   actual,
	}
}

// NoEnclosingLoop reports a break with no loop around it.
func NoEnclosingLoop() *CompileError {
	return &CompileError{
		Code:    E2004,
		Message: "break is not inside a loop",
	}
}

// InvalidArrayInitializer reports an initializer list that does not fit
// the declared array.
func InvalidArrayInitializer(format string, args ...any) *CompileError {
	return &CompileError{
		Code:    E2005,
		Message: "invalid array initializer: " + fmt.Sprintf(format, args...),
	}
}

// UnsupportedNode reports a syntax tree node the compiler cannot lower.
func UnsupportedNode(kind string) *CompileError {
	return &CompileError{
		Code:    E2006,
		Message: fmt.Sprintf("unsupported node: %s", kind),
	}
}
