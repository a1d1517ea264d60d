//go:build unix

package procrun

import (
	"os/exec"
	"os/user"
	"strconv"
	"syscall"
)

// applyPlatformAttrs sets the child's group id to opts.SetGroup when
// requested (Server mode runs the renderer under the shared "bender"
// group so uploaded-frame permissions line up across workers).
func applyPlatformAttrs(cmd *exec.Cmd, opts SpawnOptions) {
	if opts.SetGroup == "" {
		return
	}
	group, err := user.LookupGroup(opts.SetGroup)
	if err != nil {
		return
	}
	gid, err := strconv.Atoi(group.Gid)
	if err != nil {
		return
	}
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Credential = &syscall.Credential{Gid: uint32(gid)}
}
