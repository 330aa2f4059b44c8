// Package config provides configuration loading and structs for the Omiai server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool            `yaml:"debug"`
	Server     ServerConfig    `yaml:"server"`
	Storage    StorageConfig   `yaml:"storage"`
	Vocabulary []string        `yaml:"vocabulary"`
	Training   TrainingConfig  `yaml:"training"`
	Recommend  RecommendConfig `yaml:"recommend"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database, job index, and model artifacts.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	JobIndexPath string `yaml:"job_index_path"`
	ArtifactDir  string `yaml:"artifact_dir"`
}

// TrainingConfig holds classifier training settings.
// HiredStatuses is the exact set of outcome statuses treated as a positive
// label (matched case-insensitively after normalization, not by substring).
type TrainingConfig struct {
	HiredStatuses []string `yaml:"hired_statuses"`
	Epochs        int      `yaml:"epochs"`
	LearningRate  float64  `yaml:"learning_rate"`
}

// RecommendConfig holds recommendation serving settings.
type RecommendConfig struct {
	DefaultTopN int `yaml:"default_top_n"`
	MaxTopN     int `yaml:"max_top_n"`
	// MaxApplicants caps the applicant pool per request (presentation mode).
	// 0 disables the cap.
	MaxApplicants  int `yaml:"max_applicants"`
	JobSearchLimit int `yaml:"job_search_limit"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.JobIndexPath = expandPath(cfg.Storage.JobIndexPath, configDir)
	cfg.Storage.ArtifactDir = expandPath(cfg.Storage.ArtifactDir, configDir)

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
