package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/abiosoft/readline"
)

// TerminalConfig describes the terminal the line editor is attached to.
type TerminalConfig struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	IsTerminal func() bool
}

// inputPauser is implemented by line editor inputs that can stop reading,
// see PausableStdin.
type inputPauser interface {
	Pause()
	Resume()
}

// NewReadline creates a line editor that completes command names with the
// shell's completer. History is saved by the shell, not the editor. If
// term.Stdin can be paused it is paused while each command runs.
func (s *Shell) NewReadline(term TerminalConfig) (*readline.Instance, error) {
	cfg := &readline.Config{
		Prompt:                 s.prompt,
		Stdin:                  readline.NewCancelableStdin(term.Stdin),
		Stdout:                 term.Stdout,
		Stderr:                 term.Stderr,
		HistoryLimit:           s.history.limit,
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
		EOFPrompt:              "exit",
		FuncIsTerminal:         term.IsTerminal,
		AutoComplete: &lineCompleter{
			completer: s.completer,
			out:       term.Stdout,
			prompt:    func() string { return s.prompt },
		},
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	if p, ok := term.Stdin.(inputPauser); ok {
		s.input = p
	}

	return readline.NewEx(cfg)
}

// lineCompleter adapts Completer to the line editor. Only the first word of
// the line is completed.
type lineCompleter struct {
	completer *Completer
	out       io.Writer
	prompt    func() string
}

var _ readline.AutoCompleter = (*lineCompleter)(nil)

// Do implements readline.AutoCompleter, it returns the text to insert at the
// cursor.
func (l *lineCompleter) Do(line []rune, pos int) ([][]rune, int) {
	input := string(line[:pos])
	if strings.ContainsAny(input, " \t") {
		return nil, 0
	}
	length := len([]rune(input))

	// Extending to a longer shared prefix isn't ambiguous, so it doesn't count
	// as an attempt.
	if candidates := l.completer.Candidates(input); len(candidates) > 1 {
		if lcp := longestCommonPrefix(candidates); len(lcp) > len(input) {
			return [][]rune{[]rune(lcp[len(input):])}, length
		}
	}

	candidates := l.completer.Complete(input)
	switch {
	case len(candidates) == 0:
		return nil, 0
	case len(candidates) == 1:
		return [][]rune{[]rune(candidates[0][len(input):] + " ")}, length
	case l.completer.Attempts() > 1:
		fmt.Fprintf(l.out, "\n%s\n%s%s", strings.Join(candidates, "  "), l.prompt(), input)
	}
	return nil, 0
}
