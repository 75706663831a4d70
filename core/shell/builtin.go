package shell

import (
	"fmt"
	"io"
	"sort"
)

// Builtin identifies a command implemented inside the shell process.
type Builtin int

const (
	BuiltinNone Builtin = iota
	BuiltinCd
	BuiltinClear
	BuiltinEcho
	BuiltinExit
	BuiltinHelp
	BuiltinHistory
	BuiltinPwd
	BuiltinRehash
	BuiltinType
)

var builtinsByName = map[string]Builtin{
	"cd":      BuiltinCd,
	"clear":   BuiltinClear,
	"echo":    BuiltinEcho,
	"exit":    BuiltinExit,
	"help":    BuiltinHelp,
	"history": BuiltinHistory,
	"pwd":     BuiltinPwd,
	"rehash":  BuiltinRehash,
	"type":    BuiltinType,
}

var builtinSummaries = map[Builtin]string{
	BuiltinCd:      "cd [DIR]: change the working directory",
	BuiltinClear:   "clear: clear the terminal screen",
	BuiltinEcho:    "echo [ARG]...: write arguments to standard output",
	BuiltinExit:    "exit [N]: exit the shell with status N",
	BuiltinHelp:    "help: show this list",
	BuiltinHistory: "history [N] | -c | -r FILE | -w FILE | -a FILE: display or manipulate the history list",
	BuiltinPwd:     "pwd: print the working directory",
	BuiltinRehash:  "rehash: forget the cached list of executables",
	BuiltinType:    "type NAME...: describe how each NAME would be run",
}

// LookupBuiltin returns the builtin with the given name.
func LookupBuiltin(name string) (Builtin, bool) {
	b, ok := builtinsByName[name]
	return b, ok
}

// BuiltinNames returns the sorted names of all builtins.
func BuiltinNames() []string {
	var names []string
	for name := range builtinsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b Builtin) String() string {
	for name, v := range builtinsByName {
		if v == b {
			return name
		}
	}
	return fmt.Sprintf("Builtin(%d)", int(b))
}

// Summary returns a one line description of the builtin.
func (b Builtin) Summary() string {
	return builtinSummaries[b]
}

// execContext holds the streams and arguments of a single command.
type execContext struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// args contains the CLI arguments for the command, args[0] is its name.
	args []string

	// inPipeline is set when the command is one stage of several, builtins
	// that would end the shell only end their stage.
	inPipeline bool
}

// runBuiltin executes a builtin and returns its exit status.
func (s *Shell) runBuiltin(b Builtin, ec execContext) int {
	switch b {
	case BuiltinCd:
		return s.builtinCd(ec)
	case BuiltinClear:
		return builtinClear(ec)
	case BuiltinEcho:
		return builtinEcho(ec)
	case BuiltinExit:
		return s.builtinExit(ec)
	case BuiltinHelp:
		return builtinHelp(ec)
	case BuiltinHistory:
		return s.builtinHistory(ec)
	case BuiltinPwd:
		return builtinPwd(ec)
	case BuiltinRehash:
		return s.builtinRehash(ec)
	case BuiltinType:
		return s.builtinType(ec)
	default:
		panic(fmt.Sprintf("unknown builtin: %v", b))
	}
}
