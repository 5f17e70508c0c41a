package fileutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
)

// LookPath resolves name to an executable path, honoring PATH exactly the
// way the `type`/`command`/exec-family builtins need (spec §4.5): a name
// containing a slash is resolved relative to cwd without consulting PATH,
// otherwise each PATH entry is tried in order and the first regular,
// executable match wins.
//
// Grounded on mvdan-sh's interp/handler.go LookPathDir, simplified to the
// Unix-only executable-bit semantics this module targets.
func LookPath(cwd, path, name string) (string, error) {
	if strings.ContainsRune(name, '/') {
		return checkExecutable(absIn(cwd, name))
	}
	list := filepath.SplitList(path)
	if len(list) == 0 {
		list = []string{""}
	}
	for _, dir := range list {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, name)
		if !filepath.IsAbs(candidate) {
			candidate = absIn(cwd, candidate)
		}
		if p, err := checkExecutable(candidate); err == nil {
			return p, nil
		}
	}
	return "", oops.Code("not_found").With("name", name).Errorf("%s: not found", name)
}

func absIn(cwd, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cwd, path)
}

func checkExecutable(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", oops.Code("not_found").Wrap(err)
	}
	if info.IsDir() {
		return "", oops.Code("not_found").Errorf("%s: is a directory", path)
	}
	if info.Mode()&0o111 == 0 || !hasExecutePermission(info) {
		return "", oops.Code("not_executable").With("path", path).Errorf("%s: permission denied", path)
	}
	return path, nil
}

// IsExecutable reports whether path exists, is a regular file, and has at
// least one executable bit set — used by the `-r`/`-w`/`-x` test operators
// (interp/eval.go).
func IsExecutable(path string) bool {
	_, err := checkExecutable(path)
	return err == nil
}
