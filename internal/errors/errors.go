package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/viera97/calendar-appointments/internal/logger"
)

// Hinted is an error carrying a follow-up suggestion for the user.
type Hinted struct {
	Err  error
	Hint string
}

func (h *Hinted) Error() string { return h.Err.Error() }

func (h *Hinted) Unwrap() error { return h.Err }

// WithHint attaches a suggestion that Format prints on its own line.
func WithHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	return &Hinted{Err: err, Hint: hint}
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	var h *Hinted
	if stderrors.As(err, &h) && h.Hint != "" {
		msg += "\nHint: " + h.Hint
	}
	return msg
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, Format(err))
		os.Exit(1)
	}
}
