package shell

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/josephlewis42/minish/core/logger"
	"github.com/spf13/afero"
)

// syncBuffer is a bytes.Buffer safe for concurrent writers such as the
// stages of a pipeline.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// eventLog collects recorded events.
type eventLog struct {
	mu     sync.Mutex
	events []logger.LogType
}

func (e *eventLog) Record(event logger.LogType) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *eventLog) Events() []logger.LogType {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]logger.LogType(nil), e.events...)
}

type testShell struct {
	*Shell
	env    *MapEnv
	stdout *syncBuffer
	stderr *syncBuffer
	events *eventLog
}

// newTestShell creates a shell with an in-memory environment whose PATH holds
// pathDirs followed by the real PATH, or nothing when there are no pathDirs.
func newTestShell(t *testing.T, pathDirs ...string) *testShell {
	t.Helper()

	env := NewMapEnv()
	env.Setenv(EnvHome, t.TempDir())
	if len(pathDirs) > 0 {
		env.Setenv(EnvPath, joinPath(append(pathDirs, os.Getenv(EnvPath))...))
	}

	ts := &testShell{
		env:    env,
		stdout: &syncBuffer{},
		stderr: &syncBuffer{},
		events: &eventLog{},
	}
	ts.Shell = New(Options{
		Stdout: ts.stdout,
		Stderr: ts.stderr,
		Env:    env,
		Fs:     afero.NewOsFs(),
		Events: ts.events,
	})
	return ts
}

func joinPath(dirs ...string) string {
	var out string
	for i, d := range dirs {
		if i > 0 {
			out += string(filepath.ListSeparator)
		}
		out += d
	}
	return out
}

// writeScript creates an executable shell script in dir.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeFile creates a file in dir with the given permissions.
func writeFile(t *testing.T, dir, name string, perm os.FileMode) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, nil, perm); err != nil {
		t.Fatal(err)
	}
	return path
}

// requireCommands skips the test when the host is missing a program it
// runs.
func requireCommands(t *testing.T, names ...string) {
	t.Helper()

	for _, name := range append([]string{"/bin/sh"}, names...) {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not available: %v", name, err)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// scriptedLines is a LineReader that replays fixed input.
type scriptedLines struct {
	lines   []interface{}
	prompts []string
	saved   []string
}

var _ LineReader = (*scriptedLines)(nil)

func (s *scriptedLines) SetPrompt(prompt string) {
	s.prompts = append(s.prompts, prompt)
}

// Readline returns the next line, error items are returned as errors.
func (s *scriptedLines) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}

	next := s.lines[0]
	s.lines = s.lines[1:]
	switch v := next.(type) {
	case error:
		return "", v
	default:
		return v.(string), nil
	}
}

func (s *scriptedLines) SaveHistory(line string) error {
	s.saved = append(s.saved, line)
	return nil
}
