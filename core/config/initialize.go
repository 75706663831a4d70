package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Initialize writes the default configuration into dir if there isn't one
// already and returns the loaded configuration.
func Initialize(fsys afero.Fs, dir string, logger *log.Logger) (*Configuration, error) {
	if err := fsys.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	configPath := filepath.Join(dir, ConfigurationName)
	exists, err := afero.Exists(fsys, configPath)
	switch {
	case err != nil:
		return nil, err
	case exists:
		logger.Printf("Using existing configuration %s\n", configPath)
	default:
		logger.Printf("Writing default configuration to %s\n", configPath)
		if err := afero.WriteFile(fsys, configPath, defaultConfigData, os.FileMode(0600)); err != nil {
			return nil, err
		}
	}

	return Load(fsys, dir)
}
