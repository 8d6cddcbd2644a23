package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E2xxx: Compile errors, raised while lowering a syntax tree
//   - E3xxx: Runtime errors, raised while the virtual machine executes
type ErrorCode string

const (
	// Compile errors (E2xxx)
	E2001 ErrorCode = "E2001" // Undeclared variable
	E2002 ErrorCode = "E2002" // Type mismatch
	E2003 ErrorCode = "E2003" // Not an array
	E2004 ErrorCode = "E2004" // Break outside of a loop
	E2005 ErrorCode = "E2005" // Invalid array initializer
	E2006 ErrorCode = "E2006" // Unsupported node

	// Runtime errors (E3xxx)
	E3001 ErrorCode = "E3001" // Division by zero
	E3002 ErrorCode = "E3002" // Uninitialized memory access
	E3003 ErrorCode = "E3003" // Unknown label
	E3004 ErrorCode = "E3004" // Malformed instruction
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E2001: "undeclared variable",
	E2002: "type mismatch",
	E2003: "not an array",
	E2004: "no enclosing loop",
	E2005: "invalid array initializer",
	E2006: "unsupported node",

	E3001: "division by zero",
	E3002: "uninitialized access",
	E3003: "unknown label",
	E3004: "malformed instruction",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '2':
		return "compile"
	case '3':
		return "runtime"
	default:
		return "unknown"
	}
}
