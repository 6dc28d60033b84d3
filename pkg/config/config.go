// Package config loads the optional ralph.toml settings file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// FileName is the settings file searched for when no path is given
const FileName = "ralph.toml"

// Color modes for [diagnostics].color
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
)

// Config holds every setting the file can carry
type Config struct {
	Diagnostics Diagnostics `toml:"diagnostics"`
	Dump        Dump        `toml:"dump"`
}

// Diagnostics controls how errors are shown
type Diagnostics struct {
	Color string `toml:"color"`
}

// Dump controls the -dparse output
type Dump struct {
	// Types annotates each printed statement with its expression's type.
	Types bool `toml:"types"`
	// Locals lists every function's locals before its body.
	Locals bool `toml:"locals"`
}

// Default returns the settings used when no file is found
func Default() Config {
	return Config{Diagnostics: Diagnostics{Color: ColorAuto}}
}

// Find looks for FileName in startDir and each of its parents
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Load decodes the file at path over the defaults. Keys the file sets that
// Config does not know are rejected rather than ignored.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads the file at path, or when path is empty the nearest
// FileName above dir. It returns the defaults when there is no file.
func Resolve(path, dir string) (Config, error) {
	if path == "" {
		found, ok, err := Find(dir)
		if err != nil {
			return Config{}, err
		}
		if !ok {
			return Default(), nil
		}
		path = found
	}
	return Load(path)
}

// Validate checks values the TOML decoder cannot
func (c Config) Validate() error {
	switch c.Diagnostics.Color {
	case ColorAuto, ColorAlways, ColorNever:
		return nil
	}
	return fmt.Errorf("%w: [diagnostics].color = %q (want auto, always or never)", ErrInvalidValue, c.Diagnostics.Color)
}

// UseColor reports whether diagnostics written to w should be colored.
// In auto mode that needs w to be a terminal and color not to be disabled
// through the environment.
func (d Diagnostics) UseColor(w io.Writer) bool {
	switch d.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
