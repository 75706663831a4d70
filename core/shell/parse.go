package shell

import (
	"errors"
	"fmt"
)

// ErrRedirectNotLast is returned when a stage other than the last redirects
// its standard output; that output always feeds the next stage.
var ErrRedirectNotLast = errors.New("output redirection is only allowed on the last stage of a pipeline")

// ParseError reports a line that couldn't be turned into stages. It aborts the
// line but never the shell.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Stage is one command within a pipeline.
type Stage struct {
	// Args holds the command name followed by its arguments.
	Args []string
	// Redirect is the optional redirection for the stage.
	Redirect *Redirection
}

// Name returns the command name of the stage.
func (s Stage) Name() string {
	return s.Args[0]
}

// ParseLine converts a line into the stages of a pipeline. A blank line
// returns no stages and no error. All errors are of type *ParseError.
func ParseLine(line string) ([]Stage, error) {
	stages, err := parseLine(line)
	if err != nil {
		return nil, &ParseError{Line: line, Err: err}
	}
	return stages, nil
}

func parseLine(line string) ([]Stage, error) {
	// Tokenize the full line first so quoting errors are reported the same
	// way no matter where the pipe operators are.
	tokens, err := Tokenize(line)
	if err != nil || len(tokens) == 0 {
		return nil, err
	}

	rawStages, err := SplitStages(line)
	if err != nil {
		return nil, err
	}

	var out []Stage
	for i, raw := range rawStages {
		remainder, redirect, err := ExtractRedirection(raw)
		if err != nil {
			return nil, err
		}

		args, err := Tokenize(remainder)
		if err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("%w in stage %d", ErrEmptyCommand, i+1)
		}

		last := i == len(rawStages)-1
		if !last && redirect != nil && redirect.Stream == Stdout {
			return nil, ErrRedirectNotLast
		}

		out = append(out, Stage{Args: args, Redirect: redirect})
	}

	return out, nil
}
