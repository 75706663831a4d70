package shell

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentScans bounds the number of PATH directories read at once.
const maxConcurrentScans = 8

// ExecutableIndex is a snapshot of the executable names on the search path.
// It's built on first use and kept until Invalidate is called.
type ExecutableIndex struct {
	env Env

	mu    sync.Mutex
	names []string
}

// NewExecutableIndex creates an index that scans the PATH in env.
func NewExecutableIndex(env Env) *ExecutableIndex {
	return &ExecutableIndex{env: env}
}

// Names returns the sorted, de-duplicated executable names.
func (x *ExecutableIndex) Names() []string {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.names == nil {
		x.names = scanPath(x.env.Getenv(EnvPath))
	}
	return x.names
}

// Invalidate drops the snapshot so the next call to Names rescans.
func (x *ExecutableIndex) Invalidate() {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.names = nil
}

func scanPath(path string) []string {
	dirs := filepath.SplitList(path)
	found := make([][]string, len(dirs))

	var g errgroup.Group
	g.SetLimit(maxConcurrentScans)
	for i, dir := range dirs {
		if dir == "" {
			dir = "."
		}
		g.Go(func() error {
			found[i] = scanDir(dir)
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]bool)
	names := []string{}
	for _, dirNames := range found {
		for _, name := range dirNames {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// scanDir lists the executables in a directory, unreadable directories are
// skipped.
func scanDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		// Stat rather than entry.Info() so symlinks are followed.
		info, err := os.Stat(filepath.Join(dir, entry.Name()))
		if err != nil || !isExecutable(info) {
			continue
		}
		out = append(out, entry.Name())
	}
	return out
}
