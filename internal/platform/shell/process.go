package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"sync"
	"sync/atomic"
)

const maxLineLength = 1024 * 1024

// CommandError reports a command that exited with a non-zero status.
type CommandError struct {
	Command  string
	ExitCode int
	Target   string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q on %s exited with status %d", e.Command, e.Target, e.ExitCode)
}

// exitStatus is what a target reports once its command has finished.
type exitStatus struct {
	code int
	err  error
}

// Process is a started command.
type Process struct {
	command string
	target  string
	out     io.ReadCloser
	done    <-chan exitStatus

	consumed atomic.Bool
	waitOnce sync.Once
	waitErr  error
}

func newProcess(target, command string, out io.ReadCloser, done <-chan exitStatus) *Process {
	return &Process{command: command, target: target, out: out, done: done}
}

// Lines returns the command's output as it is produced. The sequence ends
// when the command closes its output. It can be ranged over once; later
// iterations yield nothing.
func (p *Process) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !p.consumed.CompareAndSwap(false, true) {
			return
		}
		sc := bufio.NewScanner(p.out)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)
		for sc.Scan() {
			if !yield(strings.TrimRight(sc.Text(), "\r")) {
				return
			}
		}
	}
}

// Wait discards any unread output, waits for the command to finish and
// returns a *CommandError for a non-zero exit status.
func (p *Process) Wait() error {
	p.waitOnce.Do(func() {
		p.consumed.Store(true)
		_, _ = io.Copy(io.Discard, p.out)
		_ = p.out.Close()

		st := <-p.done
		switch {
		case st.err != nil:
			p.waitErr = fmt.Errorf("command %q on %s: %w", p.command, p.target, st.err)
		case st.code != 0:
			p.waitErr = &CommandError{Command: p.command, ExitCode: st.code, Target: p.target}
		}
	})
	return p.waitErr
}

// ExitCode extracts the exit status from an error returned by Wait, or -1
// when err does not carry one.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return -1
}
