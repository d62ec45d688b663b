// Package config provides unified configuration for the STAATS pipeline.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the full pipeline configuration.
type Config struct {
	// DataDir is the base directory for all working files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Project configuration
	Project ProjectConfig `json:"project" yaml:"project"`

	// Input configuration
	Input InputConfig `json:"input" yaml:"input"`

	// Output configuration
	Output OutputConfig `json:"output" yaml:"output"`

	// Tabulation configuration
	Tabulation TabulationConfig `json:"tabulation" yaml:"tabulation"`

	// Storage configuration
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// ProjectConfig locates the project catalog.
type ProjectConfig struct {
	// Path is the project catalog database path
	Path string `json:"path" yaml:"path"`
}

// InputConfig describes the response data source.
type InputConfig struct {
	// Type is the input type: csv, sqlite
	Type string `json:"type" yaml:"type"`

	// Path is the input file path
	Path string `json:"path" yaml:"path"`

	// Table is the table to read (sqlite type only)
	Table string `json:"table" yaml:"table"`
}

// OutputConfig describes where and how run outputs are written.
type OutputConfig struct {
	// Dir is the run output directory
	Dir string `json:"dir" yaml:"dir"`

	// Display selects the percentage layout: vertical, horizontal, both
	Display string `json:"display" yaml:"display"`

	// Archive controls whether a run archive is written
	Archive bool `json:"archive" yaml:"archive"`
}

// TabulationConfig tunes the tabulation engine.
type TabulationConfig struct {
	// Alpha is the two-tailed significance level (0 < alpha < 1)
	Alpha float64 `json:"alpha" yaml:"alpha"`

	// Concurrency is the number of tables generated in parallel
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// StorageConfig holds publishing configuration.
type StorageConfig struct {
	// Type is the publishing target: none, local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local publishing path (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 publishing configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/staats",
		Input: InputConfig{
			Type:  "csv",
			Table: "responses",
		},
		Output: OutputConfig{
			Display: "vertical",
			Archive: true,
		},
		Tabulation: TabulationConfig{
			Alpha:       0.05,
			Concurrency: 4,
		},
		Storage: StorageConfig{
			Type: "none",
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/staats"
	}
	if c.Project.Path == "" {
		c.Project.Path = filepath.Join(c.DataDir, "project.db")
	}
	if c.Output.Dir == "" {
		c.Output.Dir = filepath.Join(c.DataDir, "runs")
	}
	if c.Storage.Type == "local" && c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.DataDir, "published")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	switch c.Input.Type {
	case "csv", "sqlite":
	default:
		return fmt.Errorf("invalid input type: %s (must be csv or sqlite)", c.Input.Type)
	}
	if c.Input.Path == "" {
		return fmt.Errorf("input.path is required")
	}
	if c.Input.Type == "sqlite" && c.Input.Table == "" {
		return fmt.Errorf("input.table is required when input type is sqlite")
	}

	switch c.Output.Display {
	case "vertical", "horizontal", "both":
	default:
		return fmt.Errorf("invalid output display: %s (must be vertical, horizontal, or both)", c.Output.Display)
	}

	if c.Tabulation.Alpha <= 0 || c.Tabulation.Alpha >= 1 {
		return fmt.Errorf("tabulation.alpha must be between 0 and 1, got %g", c.Tabulation.Alpha)
	}
	if c.Tabulation.Concurrency < 1 {
		return fmt.Errorf("tabulation.concurrency must be at least 1, got %d", c.Tabulation.Concurrency)
	}

	switch c.Storage.Type {
	case "none", "local", "s3":
	default:
		return fmt.Errorf("invalid storage type: %s (must be none, local, or s3)", c.Storage.Type)
	}
	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when storage type is s3")
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the STAATS_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("STAATS_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("STAATS_PROJECT_PATH"); v != "" {
		cfg.Project.Path = v
	}

	// Input configuration
	if v := os.Getenv("STAATS_INPUT_TYPE"); v != "" {
		cfg.Input.Type = v
	}
	if v := os.Getenv("STAATS_INPUT_PATH"); v != "" {
		cfg.Input.Path = v
	}
	if v := os.Getenv("STAATS_INPUT_TABLE"); v != "" {
		cfg.Input.Table = v
	}

	// Output configuration
	if v := os.Getenv("STAATS_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("STAATS_OUTPUT_DISPLAY"); v != "" {
		cfg.Output.Display = v
	}
	if v := os.Getenv("STAATS_OUTPUT_ARCHIVE"); v != "" {
		cfg.Output.Archive = v == "true" || v == "1"
	}

	// Tabulation configuration
	if v := os.Getenv("STAATS_TABULATION_ALPHA"); v != "" {
		fmt.Sscanf(v, "%g", &cfg.Tabulation.Alpha)
	}
	if v := os.Getenv("STAATS_TABULATION_CONCURRENCY"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Tabulation.Concurrency)
	}

	// Storage configuration
	if v := os.Getenv("STAATS_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("STAATS_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("STAATS_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("STAATS_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("STAATS_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		c.Output.Dir,
		c.Storage.Path,
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
