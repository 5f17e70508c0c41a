// flash is a POSIX/Bash-style shell built on top of the parser/expand/interp
// packages.
package main

import (
	"fmt"
	"os"
)

func main() {
	os.Exit(Execute())
}

// Execute builds and runs the root command, returning the process exit
// status (spec §6/§7). Kept separate from main so tests can call it without
// triggering os.Exit.
func Execute() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return lastExitCode
}
