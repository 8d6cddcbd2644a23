// Package errors defines the compile-time and run-time error taxonomies and
// a formatter for presenting them.
package errors

// FriendlyError is an interface for errors that have a human friendly message
// in addition to the lower level default error message.
type FriendlyError interface {
	Error() string
	FriendlyErrorMessage() string
}

// Coded is implemented by every error defined in this package.
type Coded interface {
	error
	ErrorCode() ErrorCode
}

// ErrorCode returns the code of the compile error.
func (e *CompileError) ErrorCode() ErrorCode { return e.Code }

// ErrorCode returns the code of the runtime error.
func (e *RuntimeError) ErrorCode() ErrorCode { return e.Code }

// CodeOf returns the code of err if it is one of this package's errors, or
// an empty code otherwise.
func CodeOf(err error) ErrorCode {
	for err != nil {
		if c, ok := err.(Coded); ok {
			return c.ErrorCode()
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
