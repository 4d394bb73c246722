//go:build windows

package externalcmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"unsafe"

	"github.com/kballard/go-shellquote"
	"golang.org/x/sys/windows"
)

type process struct {
	cmd   *exec.Cmd
	group windows.Handle
}

// a job object kills all subprocesses when it is closed.
func createProcessGroup() (windows.Handle, error) {
	h, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return 0, err
	}

	info := windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION{
		BasicLimitInformation: windows.JOBOBJECT_BASIC_LIMIT_INFORMATION{
			LimitFlags: windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE,
		},
	}
	_, err = windows.SetInformationJobObject(
		h,
		windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)))
	if err != nil {
		windows.CloseHandle(h) //nolint:errcheck
		return 0, err
	}

	return h, nil
}

func addProcessToGroup(h windows.Handle, p *os.Process) error {
	access := uint32(windows.PROCESS_SET_QUOTA | windows.PROCESS_TERMINATE)

	processHandle, err := windows.OpenProcess(access, false, uint32(p.Pid))
	if err != nil {
		return fmt.Errorf("failed to open process: %w", err)
	}
	defer windows.CloseHandle(processHandle) //nolint:errcheck

	err = windows.AssignProcessToJobObject(h, processHandle)
	if err != nil {
		return fmt.Errorf("failed to assign process to job object: %w", err)
	}

	return nil
}

func startProcess(cmdstr string, dir string, env []string) (*process, error) {
	var cmd *exec.Cmd

	// cmd.exe has its own unquoting algorithm, therefore the command line
	// is passed as is.
	if strings.HasPrefix(cmdstr, "cmd ") || strings.HasPrefix(cmdstr, "cmd.exe ") {
		args := strings.TrimPrefix(strings.TrimPrefix(cmdstr, "cmd "), "cmd.exe ")

		cmd = exec.Command("cmd.exe")
		cmd.SysProcAttr = &syscall.SysProcAttr{
			CmdLine: args,
		}
	} else {
		cmdParts, err := shellquote.Split(cmdstr)
		if err != nil {
			return nil, err
		}

		if len(cmdParts) == 0 {
			return nil, fmt.Errorf("command is empty")
		}

		cmd = exec.Command(cmdParts[0], cmdParts[1:]...)
	}

	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	g, err := createProcessGroup()
	if err != nil {
		return nil, err
	}

	err = cmd.Start()
	if err != nil {
		windows.CloseHandle(g) //nolint:errcheck
		return nil, err
	}

	err = addProcessToGroup(g, cmd.Process)
	if err != nil {
		cmd.Process.Kill()     //nolint:errcheck
		cmd.Wait()             //nolint:errcheck
		windows.CloseHandle(g) //nolint:errcheck
		return nil, err
	}

	return &process{cmd: cmd, group: g}, nil
}

func (p *process) wait() int {
	err := p.cmd.Wait()
	if err == nil {
		return 0
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}

	return 0
}

func (p *process) kill() {
	windows.CloseHandle(p.group) //nolint:errcheck
	p.group = 0
}

func (p *process) release() {
	if p.group != 0 {
		windows.CloseHandle(p.group) //nolint:errcheck
	}
}
