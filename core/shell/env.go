package shell

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// EnvPath, EnvHome and EnvHistFile are the environment variables the shell
// reads.
const (
	EnvPath     = "PATH"
	EnvHome     = "HOME"
	EnvHistFile = "HISTFILE"
)

// Env provides access to environment variables.
type Env interface {
	Getenv(key string) string
	// Environ returns the environment passed to child processes, nil means
	// the child inherits the shell's own.
	Environ() []string
}

// OSEnv reads the process environment.
type OSEnv struct{}

var _ Env = OSEnv{}

// Getenv implements Env.Getenv.
func (OSEnv) Getenv(key string) string {
	return os.Getenv(key)
}

// Environ implements Env.Environ.
func (OSEnv) Environ() []string {
	return nil
}

// NewMapEnv creates a new environment backed by a map.
func NewMapEnv() *MapEnv {
	return &MapEnv{}
}

// NewMapEnvFromEnvList creates an environment from KEY=value pairs.
func NewMapEnvFromEnvList(environ []string) *MapEnv {
	out := &MapEnv{}

	for _, e := range environ {
		key, value, _ := strings.Cut(e, "=")
		out.Setenv(key, value)
	}

	return out
}

// MapEnv is an in-memory Env, child processes only see its variables.
type MapEnv struct {
	rw  sync.RWMutex
	env map[string]string
}

var _ Env = (*MapEnv)(nil)

// Setenv sets a variable.
func (m *MapEnv) Setenv(key, value string) {
	m.rw.Lock()
	defer m.rw.Unlock()

	if m.env == nil {
		m.env = make(map[string]string)
	}
	m.env[key] = value
}

// LookupEnv gets a variable and whether it was set.
func (m *MapEnv) LookupEnv(key string) (string, bool) {
	m.rw.RLock()
	defer m.rw.RUnlock()

	val, ok := m.env[key]
	return val, ok
}

// Getenv implements Env.Getenv.
func (m *MapEnv) Getenv(key string) string {
	val, _ := m.LookupEnv(key)
	return val
}

// Environ implements Env.Environ.
func (m *MapEnv) Environ() []string {
	m.rw.RLock()
	defer m.rw.RUnlock()

	env := []string{}
	for k, v := range m.env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(env)

	return env
}
