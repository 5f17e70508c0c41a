//go:build !windows

package fileutil

import (
	"os"
	"os/user"
	"strconv"
	"syscall"
)

// hasExecutePermission reports whether the current user can execute a file
// with this mode, honoring owner/group/other bits against the real uid/gid
// rather than just checking that some execute bit is set anywhere.
func hasExecutePermission(info os.FileInfo) bool {
	st, _ := info.Sys().(*syscall.Stat_t)
	if st == nil {
		return info.Mode()&0o111 != 0
	}
	u, err := user.Current()
	if err != nil {
		return info.Mode()&0o111 != 0
	}
	perm := info.Mode().Perm()
	uid, _ := strconv.Atoi(u.Uid)
	gid, _ := strconv.Atoi(u.Gid)

	if perm&0o100 != 0 && st.Uid == uint32(uid) {
		return true
	}
	if perm&0o010 != 0 && st.Uid != uint32(uid) && st.Gid == uint32(gid) {
		return true
	}
	if perm&0o001 != 0 && st.Uid != uint32(uid) && st.Gid != uint32(gid) {
		return true
	}
	return false
}
