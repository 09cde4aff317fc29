package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ProjectFileNames are the settings files looked up next to a document.
var ProjectFileNames = []string{".plaintasks.toml", ".plaintasks.yaml", ".plaintasks.yml"}

// DefaultPaths returns the settings layers for a document in dir: the user
// file first, then the project files. Later layers override earlier ones.
func DefaultPaths(dir string) []string {
	var paths []string
	if base, err := os.UserConfigDir(); err == nil {
		paths = append(paths,
			filepath.Join(base, "plaintasks", "config.toml"),
			filepath.Join(base, "plaintasks", "config.yaml"),
		)
	}
	for _, name := range ProjectFileNames {
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths
}

// Load applies every existing file in paths over the defaults, in order,
// and validates the result. Missing files are skipped.
func Load(paths ...string) (Settings, error) {
	s := Default()
	for _, p := range paths {
		if err := LoadFile(p, &s); err != nil {
			if errors.Is(err, ErrFileNotFound) {
				continue
			}
			return Default(), err
		}
	}
	if err := s.Validate(); err != nil {
		return Default(), err
	}
	return s, nil
}

// LoadFile decodes the file at path over s. Only keys present in the file
// are changed.
func LoadFile(path string, s *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", path, ErrFileNotFound)
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return decode(path, data, s)
}

func decode(path string, data []byte, s *Settings) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, s); err != nil {
			pe := &ParseError{Path: path, Message: err.Error(), Err: err}
			var de *toml.DecodeError
			if errors.As(err, &de) {
				pe.Line, _ = de.Position()
			}
			return pe
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, s); err != nil {
			return &ParseError{Path: path, Message: err.Error(), Err: err}
		}
	default:
		return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	return nil
}
