package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/minish/core/logger"
	"github.com/spf13/afero"
)

// DefaultPrompt is shown before each line when no other prompt is set.
const DefaultPrompt = "$ "

var errInterrupted = errors.New("interrupted")

// LineReader supplies interactive lines and keeps the editing history.
type LineReader interface {
	SetPrompt(prompt string)
	Readline() (string, error)
	SaveHistory(line string) error
}

var _ LineReader = (*readline.Instance)(nil)

// EventRecorder stores shell events in an external datastore.
type EventRecorder interface {
	Record(event logger.LogType) error
}

// Options configures a Shell. Zero values fall back to the process's own
// streams, environment and filesystem.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Env Env
	// Fs is used for redirection targets and history files.
	Fs afero.Fs

	Prompt string
	// HistoryFile is loaded on Run and new entries are appended when it ends.
	HistoryFile  string
	HistoryLimit int
	// Bell rings the terminal bell on ambiguous completions.
	Bell bool
	// SuggestCommands prints a close match after "command not found".
	SuggestCommands bool

	Events EventRecorder
	// Log receives diagnostics that aren't meant for the user.
	Log *log.Logger
}

// Shell is an interactive command interpreter.
type Shell struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	env    Env
	fs     afero.Fs
	prompt string

	resolver  *Resolver
	completer *Completer
	suggester *suggester

	history     *History
	historyFile string
	lines       LineReader
	// input is paused while a command runs, if the line editor's input
	// supports it.
	input inputPauser

	events EventRecorder
	log    *log.Logger

	lastStatus int
	// Set to true to quit the shell
	quit       bool
	interrupts chan os.Signal
}

// New creates a shell.
func New(opts Options) *Shell {
	s := &Shell{
		stdin:       opts.Stdin,
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		env:         opts.Env,
		fs:          opts.Fs,
		prompt:      opts.Prompt,
		history:     NewHistory(opts.HistoryLimit),
		historyFile: opts.HistoryFile,
		events:      opts.Events,
		log:         opts.Log,
	}

	if s.stdout == nil {
		s.stdout = os.Stdout
	}
	if s.stderr == nil {
		s.stderr = os.Stderr
	}
	if s.env == nil {
		s.env = OSEnv{}
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.prompt == "" {
		s.prompt = DefaultPrompt
	}
	if s.log == nil {
		s.log = log.New(io.Discard, "", 0)
	}

	var bellWriter io.Writer
	if opts.Bell {
		bellWriter = s.stdout
	}

	s.resolver = &Resolver{Env: s.env}
	s.completer = NewCompleter(NewExecutableIndex(s.env), bellWriter)
	s.suggester = &suggester{enabled: opts.SuggestCommands, completer: s.completer}

	return s
}

// Completer returns the command name completer used for interactive input.
func (s *Shell) Completer() *Completer {
	return s.completer
}

// History returns the shell's history list.
func (s *Shell) History() *History {
	return s.history
}

// Run reads and executes lines until the input ends or exit is called. It
// returns the shell's exit status.
func (s *Shell) Run(lines LineReader) int {
	s.lines = lines
	s.interrupts = make(chan os.Signal, 1)
	signal.Notify(s.interrupts, os.Interrupt)
	defer signal.Stop(s.interrupts)

	s.loadHistoryFile()
	defer s.saveHistoryFile()

	for !s.quit {
		lines.SetPrompt(s.prompt)
		line, err := lines.Readline()

		switch {
		case err == io.EOF:
			return s.lastStatus // Input closed, quit.

		case errors.Is(err, readline.ErrInterrupt):
			// Interrupt clears the line.
			continue

		case err != nil:
			s.log.Printf("Error readline: %v", err)
			return 1

		case strings.TrimSpace(line) == "":
			continue
		}

		s.addHistory(line)
		s.drainInterrupts()
		s.runForeground(line)
	}

	return s.lastStatus
}

// RunCommand parses and executes a single line and returns its exit status,
// the status of the last stage for pipelines.
func (s *Shell) RunCommand(line string) int {
	stages, err := ParseLine(line)
	if err != nil {
		fmt.Fprintf(s.stderr, "minish: %v\n", err)
		s.record(&logger.ParseError{Line: line, Error: err.Error()})
		s.lastStatus = 2
		return s.lastStatus
	}
	if len(stages) == 0 {
		return s.lastStatus
	}

	ctx, finish := s.watchInterrupts()
	statuses := s.runPipeline(ctx, stages)
	if finish() {
		fmt.Fprintln(s.stderr)
		s.record(&logger.Interrupt{Line: line})
	}

	s.lastStatus = statuses[len(statuses)-1]
	return s.lastStatus
}

// runForeground runs a line read by the line editor. The editor's input is
// paused meanwhile so commands reading the terminal get every keystroke.
func (s *Shell) runForeground(line string) int {
	if s.input != nil {
		s.input.Pause()
		defer s.input.Resume()
	}
	return s.RunCommand(line)
}

// Quit reports whether exit has been called.
func (s *Shell) Quit() bool {
	return s.quit
}

// watchInterrupts returns a context canceled by an interrupt signal and a
// function that stops watching and reports whether one arrived.
func (s *Shell) watchInterrupts() (context.Context, func() bool) {
	ctx, cancel := context.WithCancelCause(context.Background())
	done := make(chan struct{})
	go func() {
		select {
		case <-s.interrupts:
			cancel(errInterrupted)
		case <-done:
		}
	}()

	return ctx, func() bool {
		close(done)
		interrupted := errors.Is(context.Cause(ctx), errInterrupted)
		cancel(nil)
		return interrupted
	}
}

// drainInterrupts discards interrupts that arrived while at the prompt.
func (s *Shell) drainInterrupts() {
	for {
		select {
		case <-s.interrupts:
		default:
			return
		}
	}
}

func (s *Shell) addHistory(line string) {
	s.history.Add(line)
	s.saveLine(line)
}

// saveLine adds a line to the line editor's history for recall.
func (s *Shell) saveLine(line string) {
	if s.lines == nil {
		return
	}
	if err := s.lines.SaveHistory(line); err != nil {
		s.log.Printf("save history: %v", err)
	}
}

func (s *Shell) loadHistoryFile() {
	if s.historyFile == "" {
		return
	}

	read, err := s.history.ReadFile(s.fs, s.historyFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		fmt.Fprintf(s.stderr, "minish: %s: %v\n", s.historyFile, describePathError(err))
	}
	for _, line := range read {
		s.saveLine(line)
	}
	s.history.MarkAppended()
}

func (s *Shell) saveHistoryFile() {
	if s.historyFile == "" {
		return
	}
	if err := s.history.AppendFile(s.fs, s.historyFile); err != nil {
		fmt.Fprintf(s.stderr, "minish: %s: %v\n", s.historyFile, describePathError(err))
	}
}

func (s *Shell) record(event logger.LogType) {
	if s.events == nil {
		return
	}
	if err := s.events.Record(event); err != nil {
		s.log.Printf("event log: %v", err)
	}
}
