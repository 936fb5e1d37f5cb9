package models

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Dependency defaulting policies. See PipelineSettings.DependencyDefaults.
const (
	DependencyDefaultsResolved = "resolved"
	DependencyDefaultsLiteral  = "literal"
)

// Settings represents the application configuration
type Settings struct {
	API      APISettings      `yaml:"api"`
	Daemon   DaemonSettings   `yaml:"daemon"`
	Pipeline PipelineSettings `yaml:"pipeline"`
	UI       UISettings       `yaml:"ui"`
	Log      LogSettings      `yaml:"log"`
}

// APISettings points the dashboard at the API server that fronts the daemon
type APISettings struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"` // 0 disables the client timeout
}

// DaemonSettings holds daemon connection defaults
type DaemonSettings struct {
	Address string `yaml:"address"`
}

// PipelineSettings controls pipeline editing behavior
type PipelineSettings struct {
	// DependencyDefaults is "resolved" (fill missing src/version from the
	// loaded component with that name) or "literal" (only attempt defaulting
	// when the name does not resolve).
	DependencyDefaults string `yaml:"dependency_defaults"`
}

// UISettings controls UI preferences
type UISettings struct {
	ShowDescriptions bool `yaml:"show_descriptions"`
	WrapWidth        int  `yaml:"wrap_width"`
}

// LogSettings controls structured logging
type LogSettings struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// DefaultSettings returns the default configuration
func DefaultSettings() *Settings {
	return &Settings{
		API: APISettings{
			URL: "http://localhost:8080/api",
		},
		Daemon: DaemonSettings{
			Address: "tcp://localhost:30020",
		},
		Pipeline: PipelineSettings{
			DependencyDefaults: DependencyDefaultsResolved,
		},
		UI: UISettings{
			ShowDescriptions: true,
			WrapWidth:        60,
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// Validate checks enumerated settings values
func (s *Settings) Validate() error {
	switch s.Pipeline.DependencyDefaults {
	case DependencyDefaultsResolved, DependencyDefaultsLiteral:
	default:
		return fmt.Errorf("invalid pipeline.dependency_defaults %q (want %q or %q)",
			s.Pipeline.DependencyDefaults, DependencyDefaultsResolved, DependencyDefaultsLiteral)
	}
	if _, err := ParseLogLevel(s.Log.Level); err != nil {
		return err
	}
	if s.API.URL == "" {
		return fmt.Errorf("api.url cannot be empty")
	}
	return nil
}

// ParseLogLevel maps a settings log level to a slog level
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log.level %q", level)
	}
}
