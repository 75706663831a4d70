package shell

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/josephlewis42/minish/core/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptDir holds helper programs used by the pipeline tests.
func scriptDir(t *testing.T) string {
	t.Helper()
	requireCommands(t, "cat")

	dir := t.TempDir()
	writeScript(t, dir, "brackets", `while read l; do echo "<$l>"; done`)
	writeScript(t, dir, "fail7", "exit 7")
	writeScript(t, dir, "warn", "echo oops >&2")
	writeScript(t, dir, "yes-forever", "while echo y 2>/dev/null; do :; done")
	if err := os.WriteFile(filepath.Join(dir, "badinterp"), []byte("#!/nonexistent-minish/interp\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestPipeline(t *testing.T) {
	dir := scriptDir(t)

	cases := map[string]struct {
		line       string
		wantStdout string
		wantStatus int
	}{
		"builtin to external":  {line: "echo hello | cat", wantStdout: "hello\n"},
		"three stages":         {line: "echo one | cat | brackets", wantStdout: "<one>\n"},
		"external to external": {line: "echo a b | cat | cat", wantStdout: "a b\n"},
		"quoted pipe":          {line: `echo "x | y" | cat`, wantStdout: "x | y\n"},
		"last status":          {line: "echo hi | fail7", wantStatus: 7},
		"earlier failure":      {line: "fail7 | echo ok", wantStdout: "ok\n"},
		"reader exits early":   {line: "yes-forever | echo done", wantStdout: "done\n"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			ts := newTestShell(t, dir)
			assert.Equal(t, tc.wantStatus, ts.RunCommand(tc.line))
			assert.Equal(t, tc.wantStdout, ts.stdout.String())
			assert.Empty(t, ts.stderr.String())
		})
	}
}

func TestPipeline_statuses(t *testing.T) {
	dir := scriptDir(t)
	ts := newTestShell(t, dir)

	stages, err := ParseLine("fail7 | doesnotexist-minish | echo x")
	require.NoError(t, err)

	done := make(chan []int)
	go func() {
		done <- ts.runPipeline(t.Context(), stages)
	}()

	select {
	case statuses := <-done:
		assert.Equal(t, []int{7, 127, 0}, statuses)
	case <-time.After(10 * time.Second):
		t.Fatal("pipeline didn't finish")
	}

	assert.Equal(t, "x\n", ts.stdout.String())
	assert.Equal(t, "doesnotexist-minish: command not found\n", ts.stderr.String())
}

func TestPipeline_notFound(t *testing.T) {
	ts := newTestShell(t, t.TempDir())

	assert.Equal(t, 0, ts.RunCommand("doesnotexist-minish | echo x"))
	assert.Equal(t, "x\n", ts.stdout.String())
	assert.Equal(t, "doesnotexist-minish: command not found\n", ts.stderr.String())

	ts.stdout.buf.Reset()
	ts.stderr.buf.Reset()
	assert.Equal(t, 127, ts.RunCommand("echo x | doesnotexist-minish"))
	assert.Empty(t, ts.stdout.String())

	assert.Contains(t, ts.events.Events(), &logger.UnknownCommand{
		Command:      []string{"doesnotexist-minish"},
		ErrorMessage: ErrNotFound.Error(),
		ExitStatus:   127,
	})
}

func TestPipeline_cannotExecute(t *testing.T) {
	dir := scriptDir(t)

	t.Run("bad interpreter", func(t *testing.T) {
		ts := newTestShell(t, dir)
		assert.Equal(t, 126, ts.RunCommand("badinterp"))
		assert.Equal(t, "badinterp: no such file or directory\n", ts.stderr.String())
	})

	t.Run("not executable", func(t *testing.T) {
		ts := newTestShell(t, dir)
		path := writeFile(t, t.TempDir(), "data", 0644)
		assert.Equal(t, 126, ts.RunCommand(path))
		assert.Equal(t, path+": permission denied\n", ts.stderr.String())
	})
}

func TestRedirection(t *testing.T) {
	dir := scriptDir(t)

	t.Run("truncate is idempotent", func(t *testing.T) {
		ts := newTestShell(t, dir)
		out := filepath.Join(t.TempDir(), "out.txt")

		for i := 0; i < 2; i++ {
			assert.Equal(t, 0, ts.RunCommand("echo hello > "+out))
			assert.Equal(t, "hello\n", readFile(t, out))
		}
		assert.Empty(t, ts.stdout.String())
	})

	t.Run("append", func(t *testing.T) {
		ts := newTestShell(t, dir)
		out := filepath.Join(t.TempDir(), "out.txt")

		assert.Equal(t, 0, ts.RunCommand("echo one >> "+out))
		assert.Equal(t, 0, ts.RunCommand("echo two 1>> "+out))
		assert.Equal(t, "one\ntwo\n", readFile(t, out))
	})

	t.Run("pwd", func(t *testing.T) {
		ts := newTestShell(t, dir)
		out := filepath.Join(t.TempDir(), "pwd.txt")
		wd, err := os.Getwd()
		require.NoError(t, err)

		assert.Equal(t, 0, ts.RunCommand("pwd > "+out))
		assert.Equal(t, 0, ts.RunCommand("pwd > "+out))
		assert.Equal(t, wd+"\n", readFile(t, out))

		assert.Equal(t, 0, ts.RunCommand("pwd >> "+out))
		assert.Equal(t, wd+"\n"+wd+"\n", readFile(t, out))
	})

	t.Run("external stdout", func(t *testing.T) {
		ts := newTestShell(t, dir)
		out := filepath.Join(t.TempDir(), "out.txt")

		assert.Equal(t, 0, ts.RunCommand("echo a | brackets > "+out))
		assert.Equal(t, "<a>\n", readFile(t, out))
		assert.Empty(t, ts.stdout.String())
	})

	t.Run("stderr", func(t *testing.T) {
		ts := newTestShell(t, dir)
		errFile := filepath.Join(t.TempDir(), "err.txt")

		assert.Equal(t, 0, ts.RunCommand("warn 2> "+errFile))
		assert.Equal(t, 0, ts.RunCommand("warn 2>> "+errFile))
		assert.Equal(t, "oops\noops\n", readFile(t, errFile))
		assert.Empty(t, ts.stderr.String())
	})

	t.Run("stderr mid pipeline", func(t *testing.T) {
		ts := newTestShell(t, dir)
		errFile := filepath.Join(t.TempDir(), "err.txt")

		assert.Equal(t, 0, ts.RunCommand("warn 2> "+errFile+" | echo after"))
		assert.Equal(t, "oops\n", readFile(t, errFile))
		assert.Equal(t, "after\n", ts.stdout.String())
	})

	t.Run("builtin stderr", func(t *testing.T) {
		ts := newTestShell(t, dir)
		errFile := filepath.Join(t.TempDir(), "err.txt")

		assert.Equal(t, 1, ts.RunCommand("cd /nonexistent-minish-dir 2> "+errFile))
		assert.Equal(t, "cd: /nonexistent-minish-dir: No such file or directory\n", readFile(t, errFile))
		assert.Empty(t, ts.stderr.String())
	})

	t.Run("target directory missing", func(t *testing.T) {
		ts := newTestShell(t, dir)
		assert.Equal(t, 1, ts.RunCommand("echo hi > /nonexistent-minish/out.txt"))
		assert.Equal(t, "minish: /nonexistent-minish/out.txt: no such file or directory\n", ts.stderr.String())
		assert.Empty(t, ts.stdout.String())
	})

	t.Run("opened before resolving", func(t *testing.T) {
		ts := newTestShell(t, dir)
		out := filepath.Join(t.TempDir(), "out.txt")

		assert.Equal(t, 127, ts.RunCommand("doesnotexist-minish > "+out))
		assert.Equal(t, "", readFile(t, out))
	})

	t.Run("unsupported operators", func(t *testing.T) {
		t.Chdir(t.TempDir())
		ts := newTestShell(t, dir)

		for _, line := range []string{"echo hi 2>&1", "echo hi >&2", "brackets < in.txt", "echo hi &> out.txt"} {
			ts.stderr.buf.Reset()
			assert.Equal(t, 2, ts.RunCommand(line), line)
			assert.Contains(t, ts.stderr.String(), "unsupported syntax", line)
		}
		assert.Empty(t, ts.stdout.String())

		entries, err := os.ReadDir(".")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestRunCommand_interrupt(t *testing.T) {
	requireCommands(t, "sleep")

	ts := newTestShell(t, t.TempDir())
	ts.interrupts = make(chan os.Signal, 1)
	go func() {
		time.Sleep(200 * time.Millisecond)
		ts.interrupts <- os.Interrupt
	}()

	start := time.Now()
	status := ts.RunCommand("sleep 10")
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 128+9, status)
	assert.Equal(t, "\n", ts.stderr.String())
	assert.False(t, ts.Quit())

	events := ts.events.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, &logger.Interrupt{Line: "sleep 10"}, events[len(events)-1])
}

func TestRunCommand_events(t *testing.T) {
	dir := scriptDir(t)
	ts := newTestShell(t, dir)

	ts.RunCommand("echo hi | fail7")
	ts.RunCommand(`echo "oops`)

	events := ts.events.Events()
	require.Len(t, events, 3)
	assert.Contains(t, events[:2], &logger.RunCommand{Command: []string{"echo", "hi"}, Builtin: true})
	assert.Contains(t, events[:2], &logger.RunCommand{
		Command:             []string{"fail7"},
		ResolvedCommandPath: filepath.Join(dir, "fail7"),
		ExitStatus:          7,
	})
	assert.Equal(t, &logger.ParseError{Line: `echo "oops`, Error: ErrUnterminatedQuote.Error()}, events[2])
}

func TestPipeline_builtinsTakeTurns(t *testing.T) {
	t.Run("clear then list", func(t *testing.T) {
		ts := newTestShell(t)
		for i := 0; i < 50; i++ {
			ts.History().Add("ls")
			ts.History().Add("pwd")

			assert.Equal(t, 0, ts.RunCommand("history -c | history 3"))
			assert.Empty(t, ts.stdout.String())
			assert.Empty(t, ts.History().Entries())
		}
	})

	t.Run("read then list", func(t *testing.T) {
		ts := newTestShell(t)
		path := filepath.Join(t.TempDir(), "hist")
		require.NoError(t, os.WriteFile(path, []byte("b\nc\n"), 0600))
		ts.History().Add("a")

		assert.Equal(t, 0, ts.RunCommand("history -r "+path+" | history"))
		assert.Equal(t, "    1  a\n    2  b\n    3  c\n", ts.stdout.String())
	})

	t.Run("cd stays in its stage", func(t *testing.T) {
		start := t.TempDir()
		t.Chdir(start)
		before := getwd(t)

		ts := newTestShell(t)
		assert.Equal(t, 0, ts.RunCommand("cd "+t.TempDir()+" | pwd"))
		wd, err := os.Getwd()
		require.NoError(t, err)
		assert.Equal(t, wd+"\n", ts.stdout.String())
		assert.Equal(t, before, getwd(t))

		assert.Equal(t, 0, ts.RunCommand("cd /nonexistent-minish-dir | echo x"))
		assert.Equal(t, "cd: /nonexistent-minish-dir: No such file or directory\n", ts.stderr.String())
		assert.Equal(t, before, getwd(t))
	})

	t.Run("full pipe between builtins", func(t *testing.T) {
		ts := newTestShell(t)
		for i := 0; i < 20000; i++ {
			ts.History().Add("echo a fairly long history line to fill the pipe buffer")
		}

		done := make(chan int)
		go func() {
			done <- ts.RunCommand("history | echo done")
		}()

		select {
		case status := <-done:
			assert.Equal(t, 0, status)
		case <-time.After(10 * time.Second):
			t.Fatal("pipeline didn't finish")
		}
		assert.Equal(t, "done\n", ts.stdout.String())
	})
}
