package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// waitDelay bounds how long output is drained after the shell exits or is
// killed, in case a child process keeps the pipe open.
const waitDelay = 5 * time.Second

// Local runs commands through /bin/sh on this host.
type Local struct {
	// Dir is the working directory. Empty means the current one.
	Dir string
}

func (l Local) String() string {
	return "local"
}

// Start runs command with stdout and stderr merged into one stream.
func (l Local) Start(ctx context.Context, command string) (*Process, error) {
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	cmd.Dir = l.Dir
	cmd.WaitDelay = waitDelay

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		_ = pr.Close()
		return nil, fmt.Errorf("failed to start %q: %w", command, err)
	}

	done := make(chan exitStatus, 1)
	go func() {
		err := cmd.Wait()
		_ = pw.Close()
		done <- localStatus(ctx, err)
	}()

	return newProcess(l.String(), command, pr, done), nil
}

func localStatus(ctx context.Context, err error) exitStatus {
	if err == nil {
		return exitStatus{}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return exitStatus{code: -1, err: ctxErr}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitStatus{code: exitErr.ExitCode()}
	}
	return exitStatus{code: -1, err: err}
}
