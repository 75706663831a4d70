package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"syscall"
)

// Stdio binds the standard streams of a process. A nil Stdin reads from the
// null device and nil writers discard output.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Process describes an external command to launch.
type Process struct {
	// Path is the resolved executable.
	Path string
	// Args holds command line arguments, including the invoked name as Args[0].
	Args []string
	// Env is the child environment, nil inherits the shell's.
	Env []string

	Stdio

	// OnStart, if set, runs once the child is running and holds its own copies
	// of any file descriptors.
	OnStart func()
}

// SpawnError is returned when a process couldn't be started at all, as
// opposed to starting and exiting with a non-zero status.
type SpawnError struct {
	Name string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, describePathError(e.Err))
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Launch runs the process and waits for it to exit, returning its exit status.
// Processes killed by a signal report 128 plus the signal number. Canceling
// ctx kills the process.
func Launch(ctx context.Context, p Process) (int, error) {
	cmd := exec.CommandContext(ctx, p.Path)
	cmd.Args = p.Args
	cmd.Env = p.Env
	cmd.Stdin = p.Stdin
	cmd.Stdout = p.Stdout
	cmd.Stderr = p.Stderr

	name := p.Path
	if len(p.Args) > 0 {
		name = p.Args[0]
	}

	if err := cmd.Start(); err != nil {
		return 0, &SpawnError{Name: name, Err: err}
	}
	if p.OnStart != nil {
		p.OnStart()
	}

	return exitStatus(cmd, cmd.Wait())
}

func exitStatus(cmd *exec.Cmd, err error) (int, error) {
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal()), nil
		}
		return exitErr.ExitCode(), nil
	case cmd.ProcessState != nil:
		// The process exited but copying its output failed.
		return cmd.ProcessState.ExitCode(), err
	default:
		return 1, err
	}
}
