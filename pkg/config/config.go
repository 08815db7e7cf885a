package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultIterations is the iteration count used when the config file does
// not set one.
const DefaultIterations = 3

// Config represents the benchmark configuration
type Config struct {
	HistoryPath     string `yaml:"history"`
	ArchivePath     string `yaml:"archive"`
	ToolCommand     string `yaml:"tool"`
	BaselineCommand string `yaml:"baseline"`
	Iterations      int    `yaml:"iterations"`
	RemoteBase      string `yaml:"remote_base"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		HistoryPath:     filepath.Join("~", ".syncbench", "history.jsonl"),
		ArchivePath:     filepath.Join("~", ".syncbench", "archive.db"),
		ToolCommand:     "dsync",
		BaselineCommand: "rsync",
		Iterations:      DefaultIterations,
		RemoteBase:      "/tmp/syncbench",
	}
}

// Load loads configuration from file and environment variables
// Priority: environment variables > config file > defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := GetConfigPath()
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			// Config file is optional, so we just skip if not found
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	// Override with environment variables
	if history := os.Getenv("SYNCBENCH_HISTORY"); history != "" {
		cfg.HistoryPath = history
	}
	if archive := os.Getenv("SYNCBENCH_ARCHIVE"); archive != "" {
		cfg.ArchivePath = archive
	}
	if tool := os.Getenv("SYNCBENCH_TOOL"); tool != "" {
		cfg.ToolCommand = tool
	}
	if baseline := os.Getenv("SYNCBENCH_BASELINE"); baseline != "" {
		cfg.BaselineCommand = baseline
	}
	if base := os.Getenv("SYNCBENCH_REMOTE_BASE"); base != "" {
		cfg.RemoteBase = base
	}

	if cfg.Iterations < 1 {
		cfg.Iterations = DefaultIterations
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// Save saves the configuration to a file
func (cfg *Config) Save(path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	configPath := os.Getenv("SYNCBENCH_CONFIG")
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			configPath = filepath.Join(homeDir, ".syncbench.yaml")
		} else {
			configPath = ".syncbench.yaml"
		}
	}
	return configPath
}

// HistoryFile returns the history path, expanding ~/ if needed
func (cfg *Config) HistoryFile() string {
	return expandHome(cfg.HistoryPath)
}

// ArchiveFile returns the archive path, expanding ~/ if needed
func (cfg *Config) ArchiveFile() string {
	return expandHome(cfg.ArchivePath)
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == os.PathSeparator {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
