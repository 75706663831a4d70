package shell

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/josephlewis42/minish/core/logger"
	"golang.org/x/sync/errgroup"
)

// runPipeline runs every stage concurrently, each reading the output of the
// previous one, and waits for all of them. It returns the status of each
// stage; only the last stage writes to the shell's output.
func (s *Shell) runPipeline(ctx context.Context, stages []Stage) []int {
	ios, err := s.connectStages(len(stages))
	if err != nil {
		fmt.Fprintf(s.stderr, "minish: %v\n", err)
		return []int{1}
	}

	statuses := make([]int, len(stages))
	if len(stages) == 1 {
		statuses[0] = s.runStage(ctx, stages[0], ios[0], nil)
		return statuses
	}

	// Builtins share the shell's state, so they take turns in pipeline order
	// while external stages run concurrently.
	var g errgroup.Group
	var prev <-chan struct{}
	for i, stage := range stages {
		turn := &builtinTurn{after: prev}
		if _, ok := LookupBuiltin(stage.Name()); ok {
			turn.done = make(chan struct{})
			prev = turn.done
		}

		g.Go(func() error {
			defer turn.finish()
			statuses[i] = s.runStage(ctx, stage, ios[i], turn)
			return nil
		})
	}
	_ = g.Wait()

	return statuses
}

// builtinTurn orders the builtin stages of a pipeline. A nil turn means the
// stage runs alone.
type builtinTurn struct {
	// after is closed once the previous builtin stage has finished.
	after <-chan struct{}
	// done is closed when this stage finishes, nil for external stages.
	done chan struct{}
}

// wait blocks until the earlier builtin stages have finished.
func (t *builtinTurn) wait(ctx context.Context) error {
	if t == nil || t.after == nil {
		return nil
	}
	select {
	case <-t.after:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

func (t *builtinTurn) finish() {
	if t.done != nil {
		close(t.done)
	}
}

// connectStages creates n-1 pipes and assigns their ends to the stages.
func (s *Shell) connectStages(n int) ([]*stageIO, error) {
	ios := make([]*stageIO, n)
	for i := range ios {
		ios[i] = &stageIO{stdin: s.stdin, stdout: s.stdout, stderr: s.stderr}
	}

	for i := 0; i < n-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			for _, sio := range ios {
				sio.Close()
			}
			return nil, fmt.Errorf("pipe: %w", err)
		}
		ios[i].stdout = w
		ios[i].pipes = append(ios[i].pipes, w)
		ios[i+1].stdin = r
		ios[i+1].pipes = append(ios[i+1].pipes, r)
	}

	return ios, nil
}

// runStage runs one command and releases everything in sio before returning.
// turn is nil when the command isn't part of a pipeline.
func (s *Shell) runStage(ctx context.Context, stage Stage, sio *stageIO, turn *builtinTurn) int {
	defer sio.Close()

	if redirect := stage.Redirect; redirect != nil {
		fd, err := s.fs.OpenFile(redirect.Path, redirect.Flag(), 0644)
		if err != nil {
			fmt.Fprintf(s.stderr, "minish: %s: %v\n", redirect.Path, describePathError(err))
			return 1
		}
		sio.files = append(sio.files, fd)

		switch redirect.Stream {
		case Stdout:
			sio.stdout = fd
		case Stderr:
			sio.stderr = fd
		}
	}

	res, err := s.resolver.Resolve(stage.Name())
	if err != nil {
		// Close early so the neighbours see end-of-file right away.
		sio.closePipes()
		return s.reportUnresolved(stage, err)
	}

	if res.IsBuiltin() {
		sio.releaseStdin()
		if err := turn.wait(ctx); err != nil {
			return 130
		}

		status := s.runBuiltin(res.Builtin, execContext{
			stdin:      sio.stdin,
			stdout:     sio.stdout,
			stderr:     sio.stderr,
			args:       stage.Args,
			inPipeline: turn != nil,
		})
		s.record(&logger.RunCommand{Command: stage.Args, Builtin: true, ExitStatus: status})
		return status
	}

	status, err := Launch(ctx, Process{
		Path:  res.Path,
		Args:  stage.Args,
		Env:   s.env.Environ(),
		Stdio: Stdio{Stdin: sio.stdin, Stdout: sio.stdout, Stderr: sio.stderr},
		OnStart: func() {
			sio.closePipes()
		},
	})

	var spawnErr *SpawnError
	switch {
	case errors.As(err, &spawnErr):
		fmt.Fprintln(s.stderr, spawnErr)
		status = 126
	case err != nil:
		s.log.Printf("%s: %v", stage.Name(), err)
	}

	s.record(&logger.RunCommand{Command: stage.Args, ResolvedCommandPath: res.Path, ExitStatus: status})
	return status
}

// reportUnresolved prints why a command couldn't be found and returns its
// exit status.
func (s *Shell) reportUnresolved(stage Stage, err error) int {
	name := stage.Name()
	status := 127
	if errors.Is(err, ErrNotFound) {
		fmt.Fprintf(s.stderr, "%s: command not found\n", name)
		if alt := s.suggester.suggest(name); alt != "" {
			fmt.Fprintf(s.stderr, "minish: did you mean %q?\n", alt)
		}
	} else {
		fmt.Fprintf(s.stderr, "%s: %v\n", name, describePathError(err))
		status = 126
	}

	s.record(&logger.UnknownCommand{Command: stage.Args, ErrorMessage: err.Error(), ExitStatus: status})
	return status
}
