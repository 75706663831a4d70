package shell

import (
	"io"
	"sort"
	"strings"
)

// bell is the terminal alert character.
const bell = "\a"

// Completer completes command names from the builtins and an executable
// index. It remembers the last partial word it was asked about so a repeated
// request for an ambiguous word can be told apart from the first one.
type Completer struct {
	index *ExecutableIndex
	// Bell receives one alert character when a word is ambiguous the first
	// time it's completed. A nil Bell disables alerts.
	Bell io.Writer

	lastQuery string
	attempts  int
}

// NewCompleter creates a completer backed by the given index.
func NewCompleter(index *ExecutableIndex, bell io.Writer) *Completer {
	return &Completer{index: index, Bell: bell}
}

// Candidates returns the sorted command names starting with partial without
// touching the completion state.
func (c *Completer) Candidates(partial string) []string {
	seen := make(map[string]bool)
	out := []string{}
	add := func(name string) {
		if strings.HasPrefix(name, partial) && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	for _, name := range BuiltinNames() {
		add(name)
	}
	if c.index != nil {
		for _, name := range c.index.Names() {
			add(name)
		}
	}

	sort.Strings(out)
	return out
}

// Complete returns the sorted candidates for partial and advances the
// completion state. The first request for an ambiguous word rings the bell;
// displaying the candidates on a repeated request is up to the caller.
func (c *Completer) Complete(partial string) []string {
	if c.attempts == 0 || partial != c.lastQuery {
		c.lastQuery = partial
		c.attempts = 1
	} else {
		c.attempts++
	}

	candidates := c.Candidates(partial)
	if c.attempts == 1 && len(candidates) > 1 && c.Bell != nil {
		io.WriteString(c.Bell, bell)
	}
	return candidates
}

// Attempts returns how many times in a row the last word was completed.
func (c *Completer) Attempts() int {
	return c.attempts
}

// Rehash drops the cached executable index and the completion state.
func (c *Completer) Rehash() {
	if c.index != nil {
		c.index.Invalidate()
	}
	c.lastQuery = ""
	c.attempts = 0
}

// longestCommonPrefix returns the prefix shared by every string in strs.
func longestCommonPrefix(strs []string) string {
	if len(strs) == 0 {
		return ""
	}

	prefix := strs[0]
	for _, s := range strs[1:] {
		i := 0
		for i < len(prefix) && i < len(s) && prefix[i] == s[i] {
			i++
		}
		prefix = prefix[:i]
		if prefix == "" {
			break
		}
	}
	return prefix
}
