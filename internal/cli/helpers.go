package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/authflow/internal/logging"
)

// NewLogger configures the application logger.
// Debug mode writes to Stderr so it never mixes with run output on Stdout.
func NewLogger(opts Options) *slog.Logger {
	if !opts.Debug {
		return logging.NewNop()
	}
	format := logging.FormatText
	if opts.LogFormat == string(logging.FormatJSON) {
		format = logging.FormatJSON
	}
	return logging.NewWithOptions(logging.Options{Level: slog.LevelDebug, Format: format})
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// isInterrupted reports whether err only records that the user stopped the command.
func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// handleExecutionError maps interruptions to a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
