package player

import (
	"errors"
	"os"
	"os/exec"
	"sync"
)

// Process is a started player command
type Process struct {
	cmd *exec.Cmd

	once sync.Once
	err  error
}

func newProcess(cmd *exec.Cmd) *Process {
	return &Process{cmd: cmd}
}

// Wait blocks until the player exits. It may be called more than once.
func (p *Process) Wait() error {
	p.once.Do(func() { p.err = p.cmd.Wait() })
	return p.err
}

// Kill ends the player
func (p *Process) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
