// Package diag carries positioned compile errors and renders them for the
// terminal.
package diag

import "fmt"

// Error is a fail-fast diagnostic tied to a source position.
// Kind is a sentinel that callers can match with errors.Is.
type Error struct {
	Line   int
	Column int
	Kind   error
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Column, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Errorf builds an Error at line:col classified by kind.
func Errorf(line, col int, kind error, format string, args ...any) *Error {
	return &Error{
		Line:   line,
		Column: col,
		Kind:   kind,
		Msg:    fmt.Sprintf(format, args...),
	}
}
