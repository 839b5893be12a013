package project

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// AppConfig holds the user's defaults for the command line tool.
type AppConfig struct {
	MachinesDir          string   `json:"machines_dir"`
	MacroDir             string   `json:"macro_dir"`
	OutputDir            string   `json:"output_dir"`
	DefaultPostProcessor string   `json:"default_post_processor"`
	RecentJobs           []string `json:"recent_jobs"`
}

// maxRecentJobs bounds the recent job list.
const maxRecentJobs = 10

// DefaultAppConfig returns the configuration used when none is saved.
func DefaultAppConfig() AppConfig {
	machines, err := DefaultMachinesDir()
	if err != nil {
		machines = filepath.Join(DefaultConfigDir(), "machines")
	}
	return AppConfig{
		MachinesDir:          machines,
		DefaultPostProcessor: "generic",
		RecentJobs:           []string{},
	}
}

// AddRecentJob moves path to the front of the recent job list.
func (c *AppConfig) AddRecentJob(path string) {
	jobs := []string{path}
	for _, p := range c.RecentJobs {
		if p != path {
			jobs = append(jobs, p)
		}
	}
	if len(jobs) > maxRecentJobs {
		jobs = jobs[:maxRecentJobs]
	}
	c.RecentJobs = jobs
}

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.postcut/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".postcut")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from the given path.
// If the file does not exist, it returns DefaultAppConfig with no error.
func LoadAppConfig(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultAppConfig(), nil
		}
		return AppConfig{}, err
	}
	config := DefaultAppConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return AppConfig{}, &ParseError{Path: path, Format: "json", Err: err}
	}
	// Ensure RecentJobs is never nil
	if config.RecentJobs == nil {
		config.RecentJobs = []string{}
	}
	return config, nil
}
