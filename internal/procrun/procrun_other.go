//go:build !unix

package procrun

import "os/exec"

// applyPlatformAttrs is a no-op outside POSIX: group-credential dropping has
// no Windows equivalent the renderer relies on.
func applyPlatformAttrs(cmd *exec.Cmd, opts SpawnOptions) {}
