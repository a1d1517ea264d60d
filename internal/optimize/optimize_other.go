//go:build !unix

package optimize

// setPermissive is a no-op outside POSIX: 0775 has no meaning on Windows
// ACLs.
func setPermissive(path string) {}
