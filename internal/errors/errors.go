// Package errors holds the CLI-boundary error helpers. Commands return
// plain errors; main converts anything that escapes into one "Error: ..."
// line on stderr, mirrored into the log file, and a non-zero exit.
package errors

import (
	"fmt"
	"os"

	"github.com/jmorrow/cognitrack/internal/logger"
)

// Format renders err as the single user-facing error line. A nil error
// renders as an empty string.
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf is Format for a printf-style message instead of an error value.
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal prints err on stderr, records it in the log, and exits 1. A nil
// error is a no-op so callers can pass through unconditionally.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("Exiting on error", "error", err)
	fmt.Fprintln(os.Stderr, Format(err))
	os.Exit(1)
}

// Fatalf is Fatal for a printf-style message. Unlike Fatal it always exits.
func Fatalf(format string, args ...interface{}) {
	logger.Error("Exiting on error", "error", fmt.Sprintf(format, args...))
	fmt.Fprintln(os.Stderr, Formatf(format, args...))
	os.Exit(1)
}
