//go:build windows

package fileutil

import "os"

// hasExecutePermission is a no-op on Windows: executability is determined
// by file extension, not mode bits, and flash targets Unix process
// semantics elsewhere (job control, process groups), so Windows support
// here is best-effort.
func hasExecutePermission(info os.FileInfo) bool {
	return true
}
