// Package externalcmd allows to launch external commands.
package externalcmd

import (
	"errors"
	"fmt"
	"os"
)

var errTerminated = errors.New("terminated")

// OnExitFunc is the prototype of OnExit.
type OnExitFunc func(error)

// Environment is a Cmd environment.
type Environment map[string]string

// Cmd is an external command.
type Cmd struct {
	Pool      *Pool
	CmdString string
	Dir       string
	Env       Environment

	// called when the command exits by itself.
	// It is not called when the command is closed.
	OnExit OnExitFunc

	pid int

	// in
	terminate chan struct{}

	// out
	done chan struct{}
}

// Start starts the command.
// Variables of Env are expanded in CmdString, in both Linux and Windows,
// in order to allow using the same commands on both of them.
func (e *Cmd) Start() error {
	cmdstr := os.Expand(e.CmdString, func(variable string) string {
		if value, ok := e.Env[variable]; ok {
			return value
		}
		return os.Getenv(variable)
	})

	if e.OnExit == nil {
		e.OnExit = func(_ error) {}
	}

	env := append([]string(nil), os.Environ()...)
	for key, val := range e.Env {
		env = append(env, key+"="+val)
	}

	err := e.Pool.add()
	if err != nil {
		return err
	}

	p, err := startProcess(cmdstr, e.Dir, env)
	if err != nil {
		e.Pool.remove()
		return err
	}

	e.pid = p.cmd.Process.Pid
	e.terminate = make(chan struct{})
	e.done = make(chan struct{})

	go e.run(p)

	return nil
}

// Close terminates the command and waits for it to exit.
func (e *Cmd) Close() {
	close(e.terminate)
	<-e.done
}

// PID returns the process ID.
func (e *Cmd) PID() int {
	return e.pid
}

// Done returns a channel that is closed when the command has exited.
func (e *Cmd) Done() <-chan struct{} {
	return e.done
}

func (e *Cmd) run(p *process) {
	defer e.Pool.remove()
	defer close(e.done)

	err := e.wait(p)
	if errors.Is(err, errTerminated) {
		return
	}

	e.OnExit(err)
}

func (e *Cmd) wait(p *process) error {
	waitDone := make(chan int)
	go func() {
		waitDone <- p.wait()
	}()

	select {
	case <-e.terminate:
		p.kill()
		<-waitDone
		p.release()
		return errTerminated

	case c := <-waitDone:
		p.release()
		if c != 0 {
			return fmt.Errorf("command exited with code %d", c)
		}
		return nil
	}
}
