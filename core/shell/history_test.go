package shell

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_limit(t *testing.T) {
	h := NewHistory(2)
	h.Add("a")
	h.Add("b")
	h.Add("c")
	assert.Equal(t, []string{"b", "c"}, h.Entries())

	unlimited := NewHistory(0)
	for i := 0; i < 100; i++ {
		unlimited.Add("x")
	}
	assert.Len(t, unlimited.Entries(), 100)
}

func TestHistory_Read(t *testing.T) {
	h := NewHistory(0)
	read, err := h.Read(strings.NewReader("ls\n\n  \r\npwd\r\necho 'a b'\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ls", "pwd", "echo 'a b'"}, read)
	assert.Equal(t, read, h.Entries())
}

func TestHistory_files(t *testing.T) {
	fs := afero.NewMemMapFs()
	h := NewHistory(0)
	h.Add("one")
	h.Add("two")

	require.NoError(t, h.WriteFile(fs, "/hist"))
	assertFile(t, fs, "/hist", "one\ntwo\n")

	// Nothing new to append.
	require.NoError(t, h.AppendFile(fs, "/hist"))
	assertFile(t, fs, "/hist", "one\ntwo\n")

	h.Add("three")
	require.NoError(t, h.AppendFile(fs, "/hist"))
	assertFile(t, fs, "/hist", "one\ntwo\nthree\n")

	// Write replaces the file.
	h.Clear()
	h.Add("four")
	require.NoError(t, h.WriteFile(fs, "/hist"))
	assertFile(t, fs, "/hist", "four\n")

	loaded := NewHistory(0)
	read, err := loaded.ReadFile(fs, "/hist")
	require.NoError(t, err)
	assert.Equal(t, []string{"four"}, read)

	_, err = loaded.ReadFile(fs, "/missing")
	assert.Error(t, err)
}

func TestHistory_appendAfterTrim(t *testing.T) {
	fs := afero.NewMemMapFs()
	h := NewHistory(2)
	h.Add("a")
	h.Add("b")
	h.MarkAppended()

	h.Add("c")
	require.NoError(t, h.AppendFile(fs, "/hist"))
	assertFile(t, fs, "/hist", "c\n")
}

func assertFile(t *testing.T, fs afero.Fs, path, want string) {
	t.Helper()

	got, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, want, string(got))
}
