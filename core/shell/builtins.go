package shell

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// builtinEcho writes its arguments separated by spaces.
func builtinEcho(ec execContext) int {
	fmt.Fprintln(ec.stdout, strings.Join(ec.args[1:], " "))
	return 0
}

func builtinPwd(ec execContext) int {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(ec.stderr, "%s: %v\n", ec.args[0], err)
		return 1
	}
	fmt.Fprintln(ec.stdout, dir)
	return 0
}

// builtinClear assumes VT100 compatibility.
func builtinClear(ec execContext) int {
	fmt.Fprint(ec.stdout, "\033[H\033[2J")
	return 0
}

func builtinHelp(ec execContext) int {
	fmt.Fprintln(ec.stdout, "These shell commands are defined internally.")
	fmt.Fprintln(ec.stdout)
	for _, name := range BuiltinNames() {
		b, _ := LookupBuiltin(name)
		fmt.Fprintf(ec.stdout, "  %s\n", b.Summary())
	}
	return 0
}

// builtinExit stops the shell after the current line. In a pipeline it only
// sets the status of its own stage.
func (s *Shell) builtinExit(ec execContext) int {
	code := 0
	if len(ec.args) > 1 {
		n, err := strconv.Atoi(ec.args[1])
		if err != nil {
			fmt.Fprintf(ec.stderr, "%s: %s: numeric argument required\n", ec.args[0], ec.args[1])
			code = 2
		} else {
			code = n
		}
	}

	if !ec.inPipeline {
		s.quit = true
	}
	return code
}

func (s *Shell) builtinCd(ec execContext) int {
	var target string
	switch len(ec.args) {
	case 1:
		target = "~"
	case 2:
		target = ec.args[1]
	default:
		fmt.Fprintf(ec.stderr, "%s: too many arguments\n", ec.args[0])
		return 1
	}

	dir := target
	if target == "~" || strings.HasPrefix(target, "~/") {
		home := s.env.Getenv(EnvHome)
		if home == "" {
			fmt.Fprintf(ec.stderr, "%s: HOME not set\n", ec.args[0])
			return 1
		}
		dir = filepath.Join(home, strings.TrimPrefix(target, "~"))
	}

	// Like exit, cd in a pipeline only affects its own stage: the target is
	// checked but the shell stays where it is.
	chdir := os.Chdir
	if ec.inPipeline {
		chdir = checkDir
	}

	if err := chdir(dir); err != nil {
		fmt.Fprintf(ec.stderr, "%s: %s: %s\n", ec.args[0], target, describeChdirError(err))
		return 1
	}
	return 0
}

// checkDir returns the error os.Chdir would return for dir without changing
// the working directory.
func checkDir(dir string) error {
	fd, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer fd.Close()

	info, err := fd.Stat()
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "chdir", Path: dir, Err: syscall.ENOTDIR}
	}
	return nil
}

func describeChdirError(err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "No such file or directory"
	case errors.Is(err, syscall.ENOTDIR):
		return "Not a directory"
	case errors.Is(err, fs.ErrPermission):
		return "Permission denied"
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}

// builtinType reports how each name would be run.
func (s *Shell) builtinType(ec execContext) int {
	if len(ec.args) < 2 {
		fmt.Fprintf(ec.stderr, "%s: usage: type NAME...\n", ec.args[0])
		return 2
	}

	status := 0
	for _, name := range ec.args[1:] {
		res, err := s.resolver.Resolve(name)
		switch {
		case err != nil:
			fmt.Fprintf(ec.stderr, "%s not found\n", name)
			status = 1
		case res.IsBuiltin():
			fmt.Fprintf(ec.stdout, "%s is a shell builtin\n", name)
		default:
			fmt.Fprintf(ec.stdout, "%s is %s\n", name, res.Path)
		}
	}
	return status
}

func (s *Shell) builtinRehash(ec execContext) int {
	s.completer.Rehash()
	s.suggester.reset()
	return 0
}
