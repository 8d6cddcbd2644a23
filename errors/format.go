package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Formatter formats errors with colors and professional styling.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool
}

// NewFormatter creates a new error formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

// Colors used for error formatting
var (
	colorError     = color.New(color.FgRed)
	colorErrorBold = color.New(color.FgHiRed, color.Bold)
	colorCode      = color.New(color.FgHiBlack)
	colorLocation  = color.New(color.FgCyan)
	colorPipe      = color.New(color.FgHiBlack)
	colorSource    = color.New(color.FgWhite)
	colorHint      = color.New(color.FgHiYellow)
	colorNote      = color.New(color.FgHiBlue)
)

// FormattedError represents an error ready for display.
type FormattedError struct {
	Code        ErrorCode
	Kind        string // "compile error", "runtime error", etc.
	Message     string
	Line        int
	HasLine     bool
	SourceLines []SourceLineEntry
	Hint        string // "Did you mean?" suggestion
	Note        string
}

// SourceLineEntry represents a line of the instruction stream with its
// number.
type SourceLineEntry struct {
	Number int
	Text   string
	IsMain bool
}

// FormattableError is an interface for errors that can be formatted with
// the formatter.
type FormattableError interface {
	Error() string
	ToFormatted() *FormattedError
}

func (f *Formatter) paint(c *color.Color, s string) string {
	if !f.UseColor {
		return s
	}
	return c.Sprint(s)
}

// Format formats the error as a string in a Rust-like style.
func (f *Formatter) Format(err *FormattedError) string {
	return f.FormatWithPrefix(err, "")
}

// FormatWithPrefix formats the error with an optional prefix like "1/5"
// shown in place of the error code.
func (f *Formatter) FormatWithPrefix(err *FormattedError, prefix string) string {
	var b strings.Builder

	width := 2
	for _, line := range err.SourceLines {
		if w := len(fmt.Sprintf("%d", line.Number)); w > width {
			width = w
		}
	}
	padding := strings.Repeat(" ", width)

	label := "error"
	if err.Kind != "" {
		label = err.Kind
	}
	b.WriteString(f.paint(colorErrorBold, label))
	switch {
	case prefix != "":
		b.WriteString(f.paint(colorCode, "["+prefix+"]"))
	case err.Code != "":
		b.WriteString(f.paint(colorCode, "["+string(err.Code)+"]"))
	}
	b.WriteString(f.paint(colorError, ": "))
	b.WriteString(err.Message)
	b.WriteString("\n")

	if err.HasLine {
		b.WriteString(padding)
		b.WriteString(f.paint(colorLocation, "-->"))
		b.WriteString(" ")
		b.WriteString(f.paint(colorLocation, fmt.Sprintf("line %d", err.Line)))
		b.WriteString("\n")
	}

	if len(err.SourceLines) > 0 {
		b.WriteString(padding)
		b.WriteString(f.paint(colorPipe, " |\n"))
		for _, line := range err.SourceLines {
			b.WriteString(f.paint(colorPipe, fmt.Sprintf("%*d | ", width, line.Number)))
			if line.IsMain {
				b.WriteString(f.paint(colorSource, line.Text))
			} else {
				b.WriteString(line.Text)
			}
			b.WriteString("\n")
		}
	}

	if err.Hint != "" {
		b.WriteString(padding)
		b.WriteString(f.paint(colorPipe, " = "))
		b.WriteString(f.paint(colorHint, "hint: "))
		b.WriteString(err.Hint)
		b.WriteString("\n")
	}
	if err.Note != "" {
		b.WriteString(padding)
		b.WriteString(f.paint(colorPipe, " = "))
		b.WriteString(f.paint(colorNote, "note: "))
		b.WriteString(err.Note)
		b.WriteString("\n")
	}
	return b.String()
}

// FormatMultiple formats multiple errors with consistent styling.
func (f *Formatter) FormatMultiple(errs []*FormattedError) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return f.Format(errs[0])
	}
	var b strings.Builder
	total := len(errs)
	for i, err := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.FormatWithPrefix(err, fmt.Sprintf("%d/%d", i+1, total)))
	}
	b.WriteString("\n")
	b.WriteString(f.paint(colorErrorBold, fmt.Sprintf("found %d errors", total)))
	b.WriteString("\n")
	return b.String()
}

// FormatError renders any error. Errors that know how to describe
// themselves are formatted in full; others are printed with a plain
// "error:" header.
func (f *Formatter) FormatError(err error) string {
	if fe, ok := err.(FormattableError); ok {
		return f.Format(fe.ToFormatted())
	}
	return f.paint(colorErrorBold, "error") + f.paint(colorError, ": ") + err.Error() + "\n"
}
