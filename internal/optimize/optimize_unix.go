//go:build unix

package optimize

import "os"

// setPermissive best-effort sets a scene file's permission bits to 0775 on
// POSIX after a successful optimize pass, matching the reference
// implementation; failures are non-fatal (optimization itself succeeded).
func setPermissive(path string) {
	_ = os.Chmod(path, 0o775)
}
