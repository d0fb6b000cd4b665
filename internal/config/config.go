package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel   string           `json:"log_level" yaml:"log_level"`
	LogFormat  string           `json:"log_format" yaml:"log_format"`
	Input      InputConfig      `json:"input" yaml:"input"`
	Clustering ClusteringConfig `json:"clustering" yaml:"clustering"`
	Summary    SummaryConfig    `json:"summary" yaml:"summary"`
	Storage    StorageConfig    `json:"storage" yaml:"storage"`
	Publish    PublishConfig    `json:"publish" yaml:"publish"`
}

type InputConfig struct {
	Path     string `json:"path" yaml:"path"`
	Timezone string `json:"timezone" yaml:"timezone"`
}

type ClusteringConfig struct {
	// ThresholdSeconds is the maximum gap between one observation's span end
	// and the next observation's start for both to stay in one event.
	ThresholdSeconds int `json:"threshold_seconds" yaml:"threshold_seconds"`
	// IDLength is the number of hex characters kept from the sha256 digest.
	// Changing it changes every issued event ID.
	IDLength int `json:"id_length" yaml:"id_length"`
}

type SummaryConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}

type StorageConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Driver  string `json:"driver" yaml:"driver"`
	DSN     string `json:"dsn" yaml:"dsn"`
}

type PublishConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Input: InputConfig{
			Timezone: "UTC",
		},
		Clustering: ClusteringConfig{
			ThresholdSeconds: 180,
			IDLength:         8,
		},
		Summary: SummaryConfig{Enabled: false},
		Storage: StorageConfig{Enabled: false, Driver: "sqlite", DSN: "file:camtrap.db?_pragma=busy_timeout(5000)"},
		Publish: PublishConfig{Enabled: false, Topic: "camtrap.events"},
	}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	trimmed := strings.TrimSpace(string(content))
	if len(trimmed) == 0 {
		return nil, errors.New("config file is empty")
	}
	var decodeErr error
	if looksLikeJSON(trimmed) {
		decodeErr = json.Unmarshal([]byte(trimmed), cfg)
	} else {
		decodeErr = yaml.Unmarshal([]byte(trimmed), cfg)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if path == "" || cfg == nil {
		return errors.New("config path or config is empty")
	}
	var data []byte
	var err error
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func looksLikeJSON(s string) bool {
	for _, ch := range s {
		if ch == '{' || ch == '[' {
			return true
		}
		if ch > ' ' {
			return false
		}
	}
	return false
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.Input.Timezone == "" {
		cfg.Input.Timezone = "UTC"
	}
	if cfg.Clustering.ThresholdSeconds == 0 {
		cfg.Clustering.ThresholdSeconds = 180
	}
	if cfg.Clustering.IDLength == 0 {
		cfg.Clustering.IDLength = 8
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Publish.Topic == "" {
		cfg.Publish.Topic = "camtrap.events"
	}
}

func Validate(cfg *Config) error {
	if cfg.Clustering.ThresholdSeconds < 0 {
		return errors.New("clustering.threshold_seconds must be >= 0")
	}
	if cfg.Clustering.IDLength < 4 || cfg.Clustering.IDLength > 64 {
		return fmt.Errorf("clustering.id_length must be between 4 and 64, got %d", cfg.Clustering.IDLength)
	}
	if cfg.Summary.Enabled && cfg.Summary.Path == "" {
		return errors.New("summary.path required when summary.enabled is true")
	}
	if cfg.Storage.Enabled {
		switch strings.ToLower(cfg.Storage.Driver) {
		case "sqlite", "postgres", "postgresql":
		default:
			return fmt.Errorf("storage.driver %q is not supported", cfg.Storage.Driver)
		}
	}
	if cfg.Publish.Enabled {
		if len(cfg.Publish.Brokers) == 0 || cfg.Publish.Topic == "" {
			return errors.New("publish requires brokers and topic")
		}
	}
	return nil
}

func ResolvePath(path string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(cwd, path)
}
