//go:build windows

package daemon

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// detachDaemonProcess starts the child in its own process group and
// detaches it from the spawning console, so closing the CLI's terminal
// does not send Ctrl-C/Ctrl-Break to the daemon.
func detachDaemonProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP | windows.DETACHED_PROCESS,
	}
}
