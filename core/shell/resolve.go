package shell

import (
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotFound is the error resulting if a path search failed to find an
// executable file.
var ErrNotFound = exec.ErrNotFound

// Resolution is the result of resolving a command name, either a builtin or
// the path of an executable.
type Resolution struct {
	Builtin Builtin
	Path    string
}

// IsBuiltin returns true if the command is implemented by the shell.
func (r Resolution) IsBuiltin() bool {
	return r.Builtin != BuiltinNone
}

// Resolver maps command names to builtins or executables on the search path.
// Nothing is cached, so changes to PATH or to the directories on it are
// visible on the next call.
type Resolver struct {
	Env Env
}

// Resolve looks up a command. Builtins always shadow executables of the same
// name.
func (r *Resolver) Resolve(name string) (Resolution, error) {
	if builtin, ok := LookupBuiltin(name); ok {
		return Resolution{Builtin: builtin}, nil
	}

	path, err := r.LookPath(name)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Path: path}, nil
}

// LookPath searches for an executable named file in the directories named by
// the PATH environment variable. If file contains a slash, it is tried directly
// and the PATH is not consulted. Paths found on PATH are made absolute.
func (r *Resolver) LookPath(file string) (string, error) {
	if strings.ContainsRune(file, filepath.Separator) || strings.Contains(file, "/") {
		if err := findExecutable(file); err != nil {
			return "", err
		}
		return file, nil
	}

	for _, dir := range filepath.SplitList(r.Env.Getenv(EnvPath)) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs, nil
			}
			return path, nil
		}
	}
	return "", ErrNotFound
}

func findExecutable(file string) error {
	info, err := os.Stat(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case err != nil:
		return err
	}
	if !isExecutable(info) {
		return fs.ErrPermission
	}
	return nil
}

func isExecutable(info fs.FileInfo) bool {
	m := info.Mode()
	return m.IsRegular() && m.Perm()&0o111 != 0
}
