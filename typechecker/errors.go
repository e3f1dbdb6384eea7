package typechecker

import (
	"fmt"
	"strings"
)

// TypeError represents a value that does not match its declared type
type TypeError struct {
	// Expected is the display form of the declared type.
	Expected string
	// Found describes the runtime kind of the offending value.
	Found   string
	Context string
	Path    []string
}

func (e *TypeError) Error() string {
	return withPath(e.Path, e.Context)
}

// RangeError represents an integer outside the bounds of a fixed-width type
type RangeError struct {
	Expected string
	Value    any
	Min, Max int64
	Path     []string
}

func (e *RangeError) Error() string {
	return withPath(e.Path, fmt.Sprintf("value out of range for type '%s': expected [%d, %d], found %v",
		e.Expected, e.Min, e.Max, e.Value))
}

// FieldError represents a struct value carrying fields its type does not
// declare
type FieldError struct {
	Expected string
	Declared []string
	Found    []string
	Path     []string
}

func (e *FieldError) Error() string {
	return withPath(e.Path, fmt.Sprintf("type '%s' expected fields [%s], but found fields [%s]",
		e.Expected, strings.Join(e.Declared, ", "), strings.Join(e.Found, ", ")))
}

func withPath(path []string, msg string) string {
	if len(path) > 0 {
		return fmt.Sprintf("type error in %s: %s", FormatPath(path), msg)
	}
	return fmt.Sprintf("type error: %s", msg)
}

// FormatPath joins path components, attaching index components such as
// "[0]" to their parent without a separator.
func FormatPath(path []string) string {
	var b strings.Builder
	for i, p := range path {
		if i > 0 && !strings.HasPrefix(p, "[") {
			b.WriteByte('.')
		}
		b.WriteString(p)
	}
	return b.String()
}
