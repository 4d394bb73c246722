//go:build !windows

package externalcmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/kballard/go-shellquote"
)

type process struct {
	cmd *exec.Cmd
}

func startProcess(cmdstr string, dir string, env []string) (*process, error) {
	cmdParts, err := shellquote.Split(cmdstr)
	if err != nil {
		return nil, err
	}

	if len(cmdParts) == 0 {
		return nil, fmt.Errorf("command is empty")
	}

	cmd := exec.Command(cmdParts[0], cmdParts[1:]...)

	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// set process group in order to allow killing subprocesses
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	err = cmd.Start()
	if err != nil {
		return nil, err
	}

	return &process{cmd: cmd}, nil
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
	// the minus is needed to kill all subprocesses
	syscall.Kill(-p.cmd.Process.Pid, syscall.SIGINT) //nolint:errcheck
}

func (p *process) release() {
}
