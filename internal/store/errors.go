package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a referenced record does not exist or is
// not visible under the requested scope.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write lost to a concurrent update or a
// uniqueness rule. The caller may retry.
var ErrConflict = errors.New("conflict")

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the set of field errors collected before any
// persistence attempt. A non-empty set means no write happened.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (v *ValidationErrors) add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure on the given column (table.column form).
func isUniqueViolation(err error, column string) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}

// isBusy reports whether err is a SQLite busy/locked error, which shows
// up when a write transaction loses to a concurrent writer.
func isBusy(err error) bool {
	return err != nil && strings.Contains(err.Error(), "SQLITE_BUSY")
}

// conflictf wraps ErrConflict with context.
func conflictf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}
