package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pluqqy/crux-terminal/pkg/daemon"
	"github.com/pluqqy/crux-terminal/pkg/files"
	"github.com/pluqqy/crux-terminal/pkg/models"
	"github.com/pluqqy/crux-terminal/pkg/session"
)

// CommandContext carries what every command needs: settings, a logger and a
// dashboard session.
type CommandContext struct {
	Settings *models.Settings
	Logger   *slog.Logger

	logFile *os.File
}

// NewCommandContext loads settings (falling back to defaults when they
// cannot be read) and applies the --api override. Logs go to logOut unless
// the settings name a log file.
func NewCommandContext(logOut io.Writer) (*CommandContext, error) {
	c := &CommandContext{}
	c.LoadSettingsWithDefault()

	if apiURL != "" {
		c.Settings.API.URL = apiURL
	}

	logger, err := c.newLogger(logOut)
	if err != nil {
		return nil, err
	}
	c.Logger = logger
	return c, nil
}

// LoadSettingsWithDefault loads settings or returns default if error
func (c *CommandContext) LoadSettingsWithDefault() *models.Settings {
	if c.Settings != nil {
		return c.Settings
	}

	settings, err := files.ReadSettings()
	if err != nil {
		PrintWarning("Using default settings: %v", err)
		settings = models.DefaultSettings()
	}

	c.Settings = settings
	return settings
}

func (c *CommandContext) newLogger(out io.Writer) (*slog.Logger, error) {
	level, err := models.ParseLogLevel(c.Settings.Log.Level)
	if err != nil {
		return nil, err
	}

	if c.Settings.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.Settings.Log.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(c.Settings.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		c.logFile = f
		out = f
	}
	if out == nil {
		out = io.Discard
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), nil
}

// NewSession creates a dashboard session talking to the configured API
func (c *CommandContext) NewSession() (*session.Session, error) {
	client, err := daemon.New(daemon.Config{
		BaseURL: c.Settings.API.URL,
		Timeout: c.Settings.API.Timeout,
		Logger:  c.Logger,
	})
	if err != nil {
		return nil, err
	}

	return session.New(session.Config{
		API:                client,
		DependencyDefaults: c.Settings.Pipeline.DependencyDefaults,
		Logger:             c.Logger,
	}), nil
}

// Close releases the log file, if one was opened
func (c *CommandContext) Close() error {
	if c.logFile != nil {
		return c.logFile.Close()
	}
	return nil
}
