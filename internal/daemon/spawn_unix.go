//go:build !windows

package daemon

import (
	"os/exec"
	"syscall"
)

// detachDaemonProcess starts the child in its own session so it survives
// the spawning CLI process exiting (and is not a descendant subject to
// the CLI's own process-group signals).
func detachDaemonProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
