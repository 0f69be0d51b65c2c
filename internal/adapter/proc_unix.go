//go:build unix

package adapter

import (
	"os/exec"
	"syscall"
	"time"
)

// RunInOwnProcessGroup places cmd in its own process group and makes
// context cancellation signal the whole group. Backends spawn their own
// subprocesses which inherit the output pipes; killing only the direct
// child leaves those descendants holding the pipes open, so a cancelled
// turn would block on reads until the whole tree exits on its own.
func RunInOwnProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = time.Second
}
