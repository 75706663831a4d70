package shell

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrMissingRedirectTarget is returned when an operator has no file after it.
	ErrMissingRedirectTarget = errors.New("missing redirection target")
	// ErrAmbiguousRedirect is returned when the redirection target isn't a
	// single word.
	ErrAmbiguousRedirect = errors.New("ambiguous redirect")
)

// Stream is a standard stream that can be redirected.
type Stream int

const (
	Stdout Stream = iota + 1
	Stderr
)

func (s Stream) String() string {
	switch s {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return fmt.Sprintf("Stream(%d)", int(s))
	}
}

// Mode is how a redirection target is opened.
type Mode int

const (
	Truncate Mode = iota
	Append
)

func (m Mode) String() string {
	if m == Append {
		return "append"
	}
	return "truncate"
}

// Redirection rebinds one stream of a command to a file.
type Redirection struct {
	Stream Stream
	Mode   Mode
	Path   string
}

// Flag returns the os.OpenFile flags for the redirection target.
func (r *Redirection) Flag() int {
	flag := os.O_CREATE | os.O_WRONLY
	if r.Mode == Append {
		return flag | os.O_APPEND
	}
	return flag | os.O_TRUNC
}

// Longest operators come first so ">>" is never read as two ">".
var redirectOperators = []struct {
	op     string
	stream Stream
	mode   Mode
}{
	{"2>>", Stderr, Append},
	{"1>>", Stdout, Append},
	{">>", Stdout, Append},
	{"2>", Stderr, Truncate},
	{"1>", Stdout, Truncate},
	{">", Stdout, Truncate},
}

// ExtractRedirection removes a single redirection from the raw text of a
// command. The first operator found, in priority order, decides the stream and
// mode; the text before it is the remaining command and the text after it is
// the target file. Operators inside quotes are ignored.
//
// If no operator is present the input is returned unchanged with a nil
// Redirection.
func ExtractRedirection(text string) (string, *Redirection, error) {
	for _, candidate := range redirectOperators {
		idx := indexUnquoted(text, candidate.op)
		if idx < 0 {
			continue
		}

		remainder := strings.TrimSpace(text[:idx])
		rawTarget := strings.TrimSpace(text[idx+len(candidate.op):])
		if indexUnquoted(rawTarget, ">") >= 0 {
			return "", nil, fmt.Errorf("%w: only one redirection is supported", ErrAmbiguousRedirect)
		}

		target, err := Tokenize(rawTarget)
		switch {
		case err != nil:
			return "", nil, err
		case len(target) == 0:
			return "", nil, fmt.Errorf("%w after %q", ErrMissingRedirectTarget, candidate.op)
		case len(target) > 1:
			return "", nil, fmt.Errorf("%w: %s", ErrAmbiguousRedirect, rawTarget)
		}

		return remainder, &Redirection{
			Stream: candidate.stream,
			Mode:   candidate.mode,
			Path:   target[0],
		}, nil
	}

	return text, nil, nil
}

// indexUnquoted is like strings.Index but skips matches inside quotes or
// directly after a backslash.
func indexUnquoted(s, substr string) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote == '\'':
			if c == '\'' {
				quote = 0
			}
		case c == '\\':
			i++
		case quote == '"':
			if c == '"' {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case strings.HasPrefix(s[i:], substr):
			return i
		}
	}
	return -1
}
