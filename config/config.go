// Package config loads the pakman home configuration.
//
// The configuration lives in <home>/pakman.toml. A missing file is not an
// error; every value has a default. A handful of environment variables
// override the file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lex00/pakman/errs"
	"github.com/sirupsen/logrus"
)

// Filename is the name of the configuration file inside the home directory.
const Filename = "pakman.toml"

// Environment variables read by Load.
const (
	EnvHome     = "PAKMAN_HOME"
	EnvCPUCount = "PAKMAN_CPU_COUNT"
	EnvLogLevel = "PAKMAN_LOG_LEVEL"
	EnvNoColor  = "PAKMAN_NO_COLOR"
)

// Config is the pakman home configuration.
type Config struct {
	// Home is the directory holding pakman.toml, the log and the editables db.
	Home    string  `toml:"-"`
	General General `toml:"general"`
	Log     Log     `toml:"log"`
}

// General holds the [general] table.
type General struct {
	// CPUCount is the number of parallel jobs handed to collaborators.
	// Zero means the number of CPUs.
	CPUCount int  `toml:"cpu_count"`
	Color    bool `toml:"color"`
}

// Log holds the [log] table.
type Log struct {
	Level string `toml:"level"`
	// File is relative to the home directory. Empty disables the log.
	File       string `toml:"file"`
	Format     string `toml:"format"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Default returns the configuration used when no file exists.
func Default(home string) *Config {
	return &Config{
		Home: home,
		General: General{
			Color: true,
		},
		Log: Log{
			Level:      "info",
			File:       filepath.Join("logs", "pakman.log"),
			Format:     "text",
			MaxSizeMB:  16,
			MaxBackups: 3,
			MaxAgeDays: 30,
		},
	}
}

// HomeDir returns $PAKMAN_HOME, or ~/.pakman.
func HomeDir(getenv func(string) string) (string, error) {
	if h := getenv(EnvHome); h != "" {
		return filepath.Abs(h)
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", errs.Wrap(errs.KindInvalidConfiguration, err, "failed to locate home directory")
	}
	return filepath.Join(userHome, ".pakman"), nil
}

// Load reads the configuration using the process environment.
func Load() (*Config, error) {
	home, err := HomeDir(os.Getenv)
	if err != nil {
		return nil, err
	}
	return LoadFrom(home, os.Getenv)
}

// LoadFrom reads <home>/pakman.toml and applies the environment overrides
// returned by getenv.
func LoadFrom(home string, getenv func(string) string) (*Config, error) {
	cfg := Default(home)

	path := filepath.Join(home, Filename)
	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrapf(errs.KindInvalidConfiguration, err, "failed to parse %s", path)
	}

	if v := getenv(EnvCPUCount); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, errs.InvalidConfigurationf("%s: invalid integer %q", EnvCPUCount, v)
		}
		cfg.General.CPUCount = n
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if getenv(EnvNoColor) != "" {
		cfg.General.Color = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.General.CPUCount < 0 {
		return errs.InvalidConfigurationf("general.cpu_count must not be negative, got %d", c.General.CPUCount)
	}
	if c.Log.Level != "" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			return errs.InvalidConfigurationf("log.level: unknown level %q", c.Log.Level)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return errs.InvalidConfigurationf("log.format: unsupported format %q (supported: text, json)", c.Log.Format)
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return errs.InvalidConfiguration("log rotation limits must not be negative")
	}
	return nil
}

// CPUCount is the thread-count knob passed to collaborators.
func (c *Config) CPUCount() int {
	if c.General.CPUCount > 0 {
		return c.General.CPUCount
	}
	return runtime.NumCPU()
}

// LogFile returns the absolute log path, or "" when logging is disabled.
func (c *Config) LogFile() string {
	if c.Log.File == "" {
		return ""
	}
	if filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(c.Home, c.Log.File)
}

// EditablesDB returns the path of the editable packages database.
func (c *Config) EditablesDB() string {
	return filepath.Join(c.Home, "editables.db")
}
