//go:build !unix

package adapter

import (
	"os/exec"
	"time"
)

// RunInOwnProcessGroup bounds how long Wait blocks on inherited pipes
// after cancellation. Process groups are not available here, so stray
// descendants are cut off by the pipe deadline instead of a group signal.
func RunInOwnProcessGroup(cmd *exec.Cmd) {
	cmd.WaitDelay = time.Second
}
