package logger

// LogEntry is a single recorded event. Exactly one of the event fields is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	RunCommand     *RunCommand     `json:"run_command,omitempty"`
	UnknownCommand *UnknownCommand `json:"unknown_command,omitempty"`
	ParseError     *ParseError     `json:"parse_error,omitempty"`
	Interrupt      *Interrupt      `json:"interrupt,omitempty"`
}

// LogType is implemented by every event that can be stored in a LogEntry.
type LogType interface {
	attach(le *LogEntry)
}

// GetLogType returns the event held by the entry or nil.
func (le *LogEntry) GetLogType() LogType {
	switch {
	case le.RunCommand != nil:
		return le.RunCommand
	case le.UnknownCommand != nil:
		return le.UnknownCommand
	case le.ParseError != nil:
		return le.ParseError
	case le.Interrupt != nil:
		return le.Interrupt
	default:
		return nil
	}
}

// RunCommand is logged when a builtin or an executable finishes.
type RunCommand struct {
	Command             []string `json:"command"`
	ResolvedCommandPath string   `json:"resolved_command_path,omitempty"`
	Builtin             bool     `json:"builtin,omitempty"`
	ExitStatus          int      `json:"exit_status"`
}

func (e *RunCommand) attach(le *LogEntry) { le.RunCommand = e }

// UnknownCommand is logged when a command name couldn't be resolved.
type UnknownCommand struct {
	Command      []string `json:"command"`
	ErrorMessage string   `json:"error_message"`
	ExitStatus   int      `json:"exit_status"`
}

func (e *UnknownCommand) attach(le *LogEntry) { le.UnknownCommand = e }

// ParseError is logged when a line couldn't be parsed.
type ParseError struct {
	Line  string `json:"line"`
	Error string `json:"error"`
}

func (e *ParseError) attach(le *LogEntry) { le.ParseError = e }

// Interrupt is logged when the user interrupts a running line.
type Interrupt struct {
	Line string `json:"line"`
}

func (e *Interrupt) attach(le *LogEntry) { le.Interrupt = e }
