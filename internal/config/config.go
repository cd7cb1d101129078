package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/petems/soundswitch-tray/internal/match"
)

// FileName is the config file looked up in every search location
const FileName = "config.toml"

// DefaultThreshold is the Levenshtein acceptance threshold used when the
// config does not set one
const DefaultThreshold = 0.6

type Config struct {
	LogLevel            string          `toml:"log-level"`
	FuzzyMatch          bool            `toml:"fuzzy-match"`
	FuzzyMatchAlgorithm string          `toml:"fuzzy-match-algorithm"`
	FuzzyMatchThreshold *float64        `toml:"fuzzy-match-threshold"`
	Hotkeys             []HotkeyMapping `toml:"hotkeys"`

	// Path is the file the config was read from
	Path string `toml:"-"`

	algorithm match.Algorithm
}

// HotkeyMapping binds a key combination to an output device and,
// optionally, an input device
type HotkeyMapping struct {
	Keys            string `toml:"keys"`
	DeviceName      string `toml:"device-name"`
	InputDeviceName string `toml:"input-device-name"`
}

// HasInput reports whether the mapping also switches the input device
func (m HotkeyMapping) HasInput() bool {
	return m.InputDeviceName != ""
}

// ErrNotFound is returned when no config file exists in any search location
var ErrNotFound = errors.New("config file not found")

// Load finds and parses the config file. A non-empty explicit path is the
// only location tried; otherwise the file is looked up next to the
// executable, then in the working directory, then in the XDG config dirs.
func Load(explicit string) (*Config, error) {
	if explicit != "" {
		return loadFrom([]string{explicit})
	}
	return loadFrom(SearchPaths())
}

// SearchPaths returns the default config locations in lookup order
func SearchPaths() []string {
	var paths []string
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), FileName))
	}
	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(wd, FileName))
	}
	paths = append(paths, filepath.Join(xdg.ConfigHome, "soundswitch", FileName))
	for _, dir := range xdg.ConfigDirs {
		paths = append(paths, filepath.Join(dir, "soundswitch", FileName))
	}
	return paths
}

func loadFrom(paths []string) (*Config, error) {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
		}

		cfg, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg.Path = path
		return cfg, nil
	}

	var b strings.Builder
	b.WriteString("searched in:")
	for i, path := range paths {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, path)
	}
	b.WriteString("\ncreate a config.toml in one of these locations")
	return nil, fmt.Errorf("%w: %s", ErrNotFound, b.String())
}

// Parse decodes and validates TOML config data
func Parse(data []byte) (*Config, error) {
	cfg := &Config{LogLevel: "info"}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges and required mapping fields
func (c *Config) Validate() error {
	algorithm, err := match.ParseAlgorithm(c.FuzzyMatchAlgorithm)
	if err != nil {
		return err
	}
	c.algorithm = algorithm

	if t := c.FuzzyMatchThreshold; t != nil && (*t < 0 || *t > 1) {
		return fmt.Errorf("fuzzy-match-threshold must be between 0 and 1, got %v", *t)
	}

	for i, m := range c.Hotkeys {
		if strings.TrimSpace(m.Keys) == "" {
			return fmt.Errorf("hotkeys[%d]: keys is required", i)
		}
		if strings.TrimSpace(m.DeviceName) == "" {
			return fmt.Errorf("hotkeys[%d] (%s): device-name is required", i, m.Keys)
		}
	}
	return nil
}

// Threshold returns the configured Levenshtein threshold or the default
func (c *Config) Threshold() float64 {
	if c.FuzzyMatchThreshold == nil {
		return DefaultThreshold
	}
	return *c.FuzzyMatchThreshold
}

// Policy returns the device matching policy described by the config
func (c *Config) Policy() match.Policy {
	return match.Policy{
		FuzzyEnabled: c.FuzzyMatch,
		Algorithm:    c.algorithm,
		Threshold:    c.Threshold(),
	}
}
