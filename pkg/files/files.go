package files

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pluqqy/crux-terminal/pkg/models"
)

const (
	CruxDir      = ".crux"
	SettingsFile = "settings.yaml"
	ScriptsDir   = "scripts"
	LogsDir      = "logs"
)

// InitProjectStructure creates the .crux folder structure in the current
// directory and writes default settings if none exist yet.
func InitProjectStructure() error {
	dirs := []string{
		CruxDir,
		filepath.Join(CruxDir, ScriptsDir),
		filepath.Join(CruxDir, LogsDir),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if _, err := os.Stat(SettingsPath()); os.IsNotExist(err) {
		if err := WriteSettings(models.DefaultSettings()); err != nil {
			return err
		}
	}

	return nil
}

// SettingsPath returns the settings file location
func SettingsPath() string {
	return filepath.Join(CruxDir, SettingsFile)
}

// ReadSettings reads .crux/settings.yaml. A missing file yields the
// defaults; keys absent from the file keep their default values.
func ReadSettings() (*models.Settings, error) {
	settings := models.DefaultSettings()

	content, err := os.ReadFile(SettingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := yaml.Unmarshal(content, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", SettingsPath(), err)
	}

	return settings, nil
}

// WriteSettings writes settings to .crux/settings.yaml
func WriteSettings(settings *models.Settings) error {
	if err := os.MkdirAll(CruxDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory for settings: %w", err)
	}

	content, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings to YAML: %w", err)
	}

	if err := os.WriteFile(SettingsPath(), content, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}

// ReadScript reads a pipeline operation script. Relative paths that do not
// exist as given are looked up in .crux/scripts.
func ReadScript(path string) (*models.Script, error) {
	resolved := path
	if _, err := os.Stat(resolved); os.IsNotExist(err) && !filepath.IsAbs(path) {
		resolved = ScriptPath(path)
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}

	var script models.Script
	if err := yaml.Unmarshal(content, &script); err != nil {
		return nil, fmt.Errorf("failed to parse script YAML %s: %w", path, err)
	}

	return &script, nil
}

// ScriptPath returns where a script file named filename is stored
func ScriptPath(filename string) string {
	return filepath.Join(CruxDir, ScriptsDir, filename)
}

// WriteScript writes a pipeline operation script to .crux/scripts
func WriteScript(filename string, script *models.Script) error {
	content, err := yaml.Marshal(script)
	if err != nil {
		return fmt.Errorf("failed to marshal script: %w", err)
	}
	return WriteFile(ScriptPath(filename), content)
}

// WriteFile writes content to a file
func WriteFile(path string, content []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}
