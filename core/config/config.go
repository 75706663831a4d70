package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	DefaultDirName    = ".minish"
)

// Color settings.
const (
	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"
)

type Configuration struct {
	configFs  afero.Fs
	configDir string

	Prompt          string   `json:"prompt" validate:"required"`
	Color           string   `json:"color" validate:"oneof=always auto never"`
	HistoryFile     string   `json:"history_file"`
	HistoryLimit    int      `json:"history_limit" validate:"gte=0"`
	Bell            bool     `json:"bell"`
	SuggestCommands bool     `json:"suggest_commands"`
	EventLog        string   `json:"event_log"`
	EnvFiles        []string `json:"env_files" validate:"dive,required"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		return afero.NewOsFs()
	}
	return c.configFs
}

// resolve makes paths relative to the configuration directory.
func (c *Configuration) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.configDir, path)
}

// HistoryPath returns the history file to use, HISTFILE takes precedence over
// the configured one. A leading ~/ is replaced by home.
func (c *Configuration) HistoryPath(getenv func(string) string, home string) string {
	path := c.HistoryFile
	if env := getenv("HISTFILE"); env != "" {
		path = env
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// OpenEventLog opens the event log in an append only state.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	return c.fs().OpenFile(c.resolve(c.EventLog), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the event log for reading.
func (c *Configuration) ReadEventLog() (afero.File, error) {
	return c.fs().OpenFile(c.resolve(c.EventLog), os.O_RDONLY, 0600)
}

// ReadEnvFiles parses the configured dotenv files. Later files override
// earlier ones, missing files are skipped.
func (c *Configuration) ReadEnvFiles() (map[string]string, error) {
	out := make(map[string]string)
	for _, name := range c.EnvFiles {
		fd, err := c.fs().Open(c.resolve(name))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}

		envs, err := godotenv.Parse(fd)
		fd.Close()
		if err != nil {
			return nil, err
		}
		for k, v := range envs {
			out[k] = v
		}
	}
	return out, nil
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// DefaultConfigData returns the contents of the default configuration file.
func DefaultConfigData() []byte {
	return defaultConfigData
}
