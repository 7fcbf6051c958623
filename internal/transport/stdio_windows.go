//go:build windows

package transport

import (
	"fmt"
	"os/exec"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// configureProcAttr launches the child in its own process group (so a
// CTRL_BREAK_EVENT can be targeted at it alone) and suppresses the console
// window for headless MCP servers.
func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP,
	}
}

// processGuard on Windows assigns the child to a job object configured with
// JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE. This is an OS handle discipline, not a
// memory-safety concern: closing the job handle guarantees the OS tears down
// the child (and anything it spawned) even if mcpmux itself is killed
// abnormally before it gets a chance to run graceful shutdown code
// (spec.md §5, §9 "Windows child-process kill-on-drop").
type processGuard struct {
	cmd *exec.Cmd
	job windows.Handle
}

func newProcessGuard(cmd *exec.Cmd) (processGuard, error) {
	job, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return processGuard{}, fmt.Errorf("CreateJobObject: %w", err)
	}

	info := windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION{
		BasicLimitInformation: windows.JOBOBJECT_BASIC_LIMIT_INFORMATION{
			LimitFlags: windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE,
		},
	}
	if _, err := windows.SetInformationJobObject(
		job,
		windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)),
	); err != nil {
		windows.CloseHandle(job)
		return processGuard{}, fmt.Errorf("SetInformationJobObject: %w", err)
	}

	handle := windows.Handle(cmd.Process.Pid)
	procHandle, err := windows.OpenProcess(windows.PROCESS_ALL_ACCESS, false, uint32(cmd.Process.Pid))
	if err != nil {
		windows.CloseHandle(job)
		return processGuard{}, fmt.Errorf("OpenProcess: %w", err)
	}
	defer windows.CloseHandle(procHandle)
	_ = handle

	if err := windows.AssignProcessToJobObject(job, procHandle); err != nil {
		windows.CloseHandle(job)
		return processGuard{}, fmt.Errorf("AssignProcessToJobObject: %w", err)
	}

	return processGuard{cmd: cmd, job: job}, nil
}

func (g processGuard) terminate(grace time.Duration) error {
	if g.cmd.Process == nil {
		windows.CloseHandle(g.job)
		return nil
	}

	windows.GenerateConsoleCtrlEvent(windows.CTRL_BREAK_EVENT, uint32(g.cmd.Process.Pid))

	done := make(chan error, 1)
	go func() { done <- g.cmd.Wait() }()

	select {
	case err := <-done:
		windows.CloseHandle(g.job)
		return err
	case <-time.After(grace):
		// Closing the job handle with KILL_ON_JOB_CLOSE set terminates the
		// whole job (the child and anything it spawned) immediately.
		windows.CloseHandle(g.job)
		<-done
		return nil
	}
}
