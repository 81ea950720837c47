// Package config loads the YAML application configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`

	Services struct {
		VAD struct {
			URL string `yaml:"url"`
		} `yaml:"vad"`
		Diarization struct {
			URL string `yaml:"url"`
		} `yaml:"diarization"`
	} `yaml:"services"`

	Whisper struct {
		Model    string `yaml:"model"`
		Language string `yaml:"language"`
	} `yaml:"whisper"`

	Workers struct {
		Count int `yaml:"count"`
	} `yaml:"workers"`

	Storage struct {
		TempDir    string `yaml:"temp_dir"`
		ResultsDir string `yaml:"results_dir"`
		Database   string `yaml:"database"`
	} `yaml:"storage"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
	} `yaml:"cleanup"`

	Jobs struct {
		// TimeoutMinutes is the wall-clock budget for one full
		// multi-window processing run.
		TimeoutMinutes int `yaml:"timeout_minutes"`
	} `yaml:"jobs"`

	LogLevel string `yaml:"log_level"`
}

// Load reads the configuration from a YAML file and applies defaults.
func Load(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	if config.Server.Port == 0 {
		config.Server.Port = 8000
	}
	if config.Workers.Count == 0 {
		config.Workers.Count = 1
	}
	if config.Storage.TempDir == "" {
		config.Storage.TempDir = "temp"
	}
	if config.Storage.ResultsDir == "" {
		config.Storage.ResultsDir = "results"
	}
	if config.Storage.Database == "" {
		config.Storage.Database = "pipeline.db"
	}
	if config.Jobs.TimeoutMinutes == 0 {
		config.Jobs.TimeoutMinutes = 60
	}
	if config.Whisper.Model == "" {
		config.Whisper.Model = "small"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	return &config, nil
}
