package perfmon

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dylandreimerink/perfmon/events"
)

// Environment variables read by LoadConfig.
const (
	// EnvEvents holds the delimited list of event names, it overrides the events of the config file
	EnvEvents = "PERF_EVENTS"
	// EnvDelimiter overrides the delimiter of EnvEvents
	EnvDelimiter = "PERF_EVENTS_DELIMITER"
	// EnvConfig is the path of an optional YAML config file
	EnvConfig = "PERFMON_CONFIG"
	// EnvLogLevel sets the log level of the C library
	EnvLogLevel = "PERFMON_LOG_LEVEL"
)

// Config selects the events to measure and how to measure them.
type Config struct {
	Events    []string `yaml:"events"`
	Delimiter string   `yaml:"delimiter"`
	// PrivilegeLevel is one of user, kernel, user+kernel or all
	PrivilegeLevel string `yaml:"privilege_level"`
	// LogLevel is one of debug, info, warn or error
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the config used when nothing is configured. It has no events.
func DefaultConfig() Config {
	return Config{
		Delimiter:      DefaultDelimiter,
		PrivilegeLevel: "user",
		LogLevel:       "warn",
	}
}

// LoadConfig builds a config from the defaults, the YAML file named by PERFMON_CONFIG and the environment, in that
// order of precedence.
func LoadConfig() (Config, error) {
	return loadConfig(os.LookupEnv, os.ReadFile)
}

func loadConfig(lookup func(string) (string, bool), readFile func(string) ([]byte, error)) (Config, error) {
	cfg := DefaultConfig()

	if path, ok := lookup(EnvConfig); ok && path != "" {
		contents, err := readFile(path)
		if err != nil {
			return cfg, opError(ErrConfig, "load config", err)
		}

		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return cfg, opError(ErrConfig, "load config", fmt.Errorf("parse %s: %w", path, err))
		}
	}

	if delim, ok := lookup(EnvDelimiter); ok && delim != "" {
		cfg.Delimiter = delim
	}
	if level, ok := lookup(EnvLogLevel); ok && level != "" {
		cfg.LogLevel = level
	}

	if list, ok := lookup(EnvEvents); ok {
		// An empty PERF_EVENTS is kept as no events rather than falling back to the file
		cfg.Events = nil
		if names, err := ParseEventList(list, cfg.Delimiter); err == nil {
			cfg.Events = names
		}
	}

	return cfg, nil
}

// EventNames returns the configured events with empty names removed.
func (c Config) EventNames() ([]string, error) {
	return ParseEventList(strings.Join(c.Events, "\x00"), "\x00")
}

// PLM returns the privilege level mask of the configured privilege level.
func (c Config) PLM() (events.PLM, error) {
	plm, err := events.ParsePLM(c.PrivilegeLevel)
	if err != nil {
		return 0, opError(ErrConfig, "privilege level", err)
	}
	return plm, nil
}

// SlogLevel returns the configured log level, warn if unset.
func (c Config) SlogLevel() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn, opError(ErrConfig, "log level", err)
	}
	return level, nil
}
