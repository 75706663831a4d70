package shell

import (
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

var (
	// ErrSyntax is returned for lines the shell grammar can't parse.
	ErrSyntax = errors.New("syntax error")
	// ErrUnsupportedSyntax is returned for valid shell syntax this shell doesn't
	// implement such as lists, subshells or background jobs.
	ErrUnsupportedSyntax = errors.New("unsupported syntax")
	// ErrEmptyCommand is returned when a stage has no command to run.
	ErrEmptyCommand = errors.New("empty command")
)

// SplitStages splits a line on unquoted pipe operators and returns the raw
// text of each stage. A pipe inside quotes never splits the line.
func SplitStages(line string) ([]string, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(line), "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	switch len(file.Stmts) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("%w: command lists", ErrUnsupportedSyntax)
	}

	var stages []string
	if err := collectStages(line, file.Stmts[0], &stages); err != nil {
		return nil, err
	}
	return stages, nil
}

func collectStages(line string, stmt *syntax.Stmt, out *[]string) error {
	switch {
	case stmt.Background:
		return fmt.Errorf("%w: background jobs", ErrUnsupportedSyntax)
	case stmt.Negated:
		return fmt.Errorf("%w: negation", ErrUnsupportedSyntax)
	case stmt.Coprocess:
		return fmt.Errorf("%w: coprocesses", ErrUnsupportedSyntax)
	}

	switch cmd := stmt.Cmd.(type) {
	case nil:
		return ErrEmptyCommand

	case *syntax.BinaryCmd:
		if cmd.Op != syntax.Pipe {
			return fmt.Errorf("%w: %s", ErrUnsupportedSyntax, cmd.Op)
		}
		if len(stmt.Redirs) > 0 {
			return fmt.Errorf("%w: redirecting a whole pipeline", ErrUnsupportedSyntax)
		}
		if err := collectStages(line, cmd.X, out); err != nil {
			return err
		}
		return collectStages(line, cmd.Y, out)

	case *syntax.CallExpr:
		if len(cmd.Assigns) > 0 {
			return fmt.Errorf("%w: variable assignment", ErrUnsupportedSyntax)
		}

		// Stmt.End includes a trailing semicolon, so measure the command and
		// its redirections instead.
		start, end := stmt.Pos().Offset(), cmd.End().Offset()
		for _, redir := range stmt.Redirs {
			if err := checkRedirect(redir); err != nil {
				return err
			}
			if off := redir.Pos().Offset(); off < start {
				start = off
			}
			if off := redir.End().Offset(); off > end {
				end = off
			}
		}
		*out = append(*out, strings.TrimSpace(line[start:end]))
		return nil

	default:
		return fmt.Errorf("%w: compound commands", ErrUnsupportedSyntax)
	}
}

// checkRedirect accepts only output redirections to a file, optionally
// prefixed by stream 1 or 2.
func checkRedirect(redir *syntax.Redirect) error {
	if redir.Op != syntax.RdrOut && redir.Op != syntax.AppOut {
		return fmt.Errorf("%w: redirection %s", ErrUnsupportedSyntax, redir.Op)
	}
	if redir.N != nil && redir.N.Value != "1" && redir.N.Value != "2" {
		return fmt.Errorf("%w: redirecting file descriptor %s", ErrUnsupportedSyntax, redir.N.Value)
	}
	return nil
}
