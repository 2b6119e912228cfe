package errors

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	if got := Format(nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty string", got)
	}

	base := errors.New("remote store unreachable")
	if got := Format(base); got != "Error: remote store unreachable" {
		t.Errorf("Format() = %q", got)
	}

	// Wrapped chains render flattened, the way fmt.Errorf produced them
	wrapped := fmt.Errorf("failed to migrate local data: %w", base)
	want := "Error: failed to migrate local data: remote store unreachable"
	if got := Format(wrapped); got != want {
		t.Errorf("Format(wrapped) = %q, want %q", got, want)
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("no habit named %q", "Meditate")
	if got != `Error: no habit named "Meditate"` {
		t.Errorf("Formatf() = %q", got)
	}

	if got := Formatf("cache not loaded"); got != "Error: cache not loaded" {
		t.Errorf("Formatf without args = %q", got)
	}
}

// Fatal and Fatalf exit the process, so they run in a re-executed copy of
// the test binary and the parent asserts on exit code and stderr.
func runFatalSubprocess(t *testing.T, testName, envKey string) (*exec.ExitError, string) {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run="+testName)
	cmd.Env = append(os.Environ(), envKey+"=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("subprocess did not exit with an error: %v", err)
	}
	return exitErr, stderr.String()
}

func TestFatal(t *testing.T) {
	if os.Getenv("COGNITRACK_TEST_FATAL") == "1" {
		Fatal(errors.New("cache file is unreadable"))
		return
	}

	exitErr, stderr := runFatalSubprocess(t, "TestFatal", "COGNITRACK_TEST_FATAL")
	if exitErr.ExitCode() != 1 {
		t.Errorf("exit code = %d, want 1", exitErr.ExitCode())
	}
	if !strings.Contains(stderr, "Error: cache file is unreadable") {
		t.Errorf("stderr = %q, want the formatted error line", stderr)
	}
}

func TestFatalNil(t *testing.T) {
	if os.Getenv("COGNITRACK_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0) // reached only if Fatal(nil) returned
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestFatalNil")
	cmd.Env = append(os.Environ(), "COGNITRACK_TEST_FATAL_NIL=1")
	if err := cmd.Run(); err != nil {
		t.Errorf("Fatal(nil) must be a no-op, subprocess exited with: %v", err)
	}
}

func TestFatalf(t *testing.T) {
	if os.Getenv("COGNITRACK_TEST_FATALF") == "1" {
		Fatalf("failed to open cache at %s", "/tmp/cognitrack.json")
		return
	}

	exitErr, stderr := runFatalSubprocess(t, "TestFatalf", "COGNITRACK_TEST_FATALF")
	if exitErr.ExitCode() != 1 {
		t.Errorf("exit code = %d, want 1", exitErr.ExitCode())
	}
	if !strings.Contains(stderr, "Error: failed to open cache at /tmp/cognitrack.json") {
		t.Errorf("stderr = %q, want the formatted error line", stderr)
	}
}
