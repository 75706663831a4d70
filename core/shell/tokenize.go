package shell

import (
	"errors"

	"github.com/anmitsu/go-shlex"
)

var (
	// ErrUnterminatedQuote is returned when a quote is opened but never closed.
	ErrUnterminatedQuote = errors.New("unterminated quote")
	// ErrTrailingEscape is returned when the line ends with a lone backslash.
	ErrTrailingEscape = errors.New("unexpected end of line after backslash")
)

// Tokenize splits a line into words the way a POSIX shell does before
// expansion. Unquoted whitespace separates words, quotes are removed and
// adjacent quoted and unquoted fragments join into a single word, so
// a"b c"d becomes "ab cd".
//
// Empty or blank input returns no tokens and no error.
func Tokenize(line string) ([]string, error) {
	tokens, err := shlex.Split(line, true)
	switch {
	case errors.Is(err, shlex.ErrNoClosing):
		return nil, ErrUnterminatedQuote
	case errors.Is(err, shlex.ErrNoEscaped):
		return nil, ErrTrailingEscape
	case err != nil:
		return nil, err
	}

	return tokens, nil
}
