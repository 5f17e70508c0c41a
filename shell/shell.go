// Package shell is a small convenience wrapper over parser/expand/interp
// for embedders who just want to expand a string or source a file without
// touching the Interpreter facade directly (spec §4.6 convenience layer).
package shell

import (
	"fmt"
	"os"

	"github.com/flashsh/flash/interp"
)

// Expand performs shell word expansion on s using a throwaway Interpreter
// seeded from the current process environment, returning the expanded
// text. It does not execute s as a command.
func Expand(s string) (string, error) {
	it := interp.New("", nil)
	return it.ExpandVariables(s)
}

// SourceFile runs a script file's contents through the given Interpreter
// and returns its exit status. It is the "." / "source" builtin's logic,
// exposed for embedders driving an Interpreter programmatically rather
// than through cmd/flash.
func SourceFile(it *interp.Interpreter, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 1, fmt.Errorf("shell: could not read %s: %w", path, err)
	}
	return it.Execute(string(data))
}
