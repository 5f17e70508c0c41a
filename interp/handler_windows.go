//go:build windows

package interp

import (
	"os"
	"os/exec"
)

// prepareCommand is a no-op on Windows.
func prepareCommand(cmd *exec.Cmd) {}

// interruptCommand kills the process with os.Kill; no process-group signal
// is sent.
func interruptCommand(cmd *exec.Cmd) error {
	return cmd.Process.Signal(os.Kill)
}

// killCommand kills the process with os.Kill; no process-group signal is
// sent.
func killCommand(cmd *exec.Cmd) error {
	return cmd.Process.Signal(os.Kill)
}

// signalOf is always 0 on Windows, which has no POSIX wait-status signal bits.
func signalOf(exitErr *exec.ExitError) int { return 0 }
