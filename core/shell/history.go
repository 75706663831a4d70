package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// History is the in-memory list of submitted lines.
type History struct {
	limit   int
	entries []string
	// appended counts the leading entries already written by AppendFile.
	appended int
}

// NewHistory creates a history that keeps at most limit entries, zero means
// unlimited.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Add appends a line to the history.
func (h *History) Add(line string) {
	h.entries = append(h.entries, line)
	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		h.entries = h.entries[drop:]
		h.appended = max(0, h.appended-drop)
	}
}

// Entries returns every entry, oldest first.
func (h *History) Entries() []string {
	return h.entries
}

// Clear removes every entry.
func (h *History) Clear() {
	h.entries = nil
	h.appended = 0
}

// Read appends one entry per non-empty line of r and returns the entries read.
func (h *History) Read(r io.Reader) ([]string, error) {
	var read []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		h.Add(line)
		read = append(read, line)
	}
	return read, scanner.Err()
}

// ReadFile loads entries from a history file.
func (h *History) ReadFile(fs afero.Fs, path string) ([]string, error) {
	fd, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	return h.Read(fd)
}

// WriteFile replaces the file with every entry.
func (h *History) WriteFile(fs afero.Fs, path string) error {
	if err := h.writeEntries(fs, path, os.O_TRUNC, h.entries); err != nil {
		return err
	}
	h.appended = len(h.entries)
	return nil
}

// AppendFile appends the entries added since the last call.
func (h *History) AppendFile(fs afero.Fs, path string) error {
	if err := h.writeEntries(fs, path, os.O_APPEND, h.entries[h.appended:]); err != nil {
		return err
	}
	h.appended = len(h.entries)
	return nil
}

// MarkAppended records that every current entry is already in the history
// file.
func (h *History) MarkAppended() {
	h.appended = len(h.entries)
}

func (h *History) writeEntries(fs afero.Fs, path string, mode int, entries []string) error {
	fd, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|mode, 0600)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(fd)
	for _, entry := range entries {
		fmt.Fprintln(w, entry)
	}
	if err := w.Flush(); err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}
