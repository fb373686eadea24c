package api

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds everything the client needs to reach the DPR backend.
type Config struct {
	BaseURL    string `yaml:"api_url"`
	AuthToken  string `yaml:"auth_token"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	MaxRetries int    `yaml:"max_retries"`
	PageSize   int    `yaml:"page_size"`
	// Author is the name shown on comments posted from this client.
	Author   string `yaml:"author"`
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a Config pointing at a local stand-in backend.
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://localhost:8089",
		TimeoutMs:  10000,
		MaxRetries: 1,
		PageSize:   20,
		Author:     "You",
		LogLevel:   "warn",
	}
}

// LoadConfig builds the effective configuration: defaults, then the YAML
// file named by DPR_CONFIG (or ~/.dpr/config.yaml when present), then
// environment variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	path, explicit := configPath()
	if path != "" {
		if err := mergeFile(&cfg, path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return cfg, err
			}
		}
	}

	applyEnv(&cfg)
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}

func configPath() (path string, explicit bool) {
	if v := os.Getenv("DPR_CONFIG"); v != "" {
		return v, true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, ".dpr", "config.yaml"), false
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	if fileCfg.BaseURL != "" {
		cfg.BaseURL = fileCfg.BaseURL
	}
	if fileCfg.AuthToken != "" {
		cfg.AuthToken = fileCfg.AuthToken
	}
	if fileCfg.TimeoutMs > 0 {
		cfg.TimeoutMs = fileCfg.TimeoutMs
	}
	if fileCfg.MaxRetries > 0 {
		cfg.MaxRetries = fileCfg.MaxRetries
	}
	if fileCfg.PageSize > 0 {
		cfg.PageSize = fileCfg.PageSize
	}
	if fileCfg.Author != "" {
		cfg.Author = fileCfg.Author
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DPR_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("DPR_AUTH_TOKEN"); v != "" {
		cfg.AuthToken = v
	}
	if v := os.Getenv("DPR_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("DPR_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("DPR_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PageSize = n
		}
	}
	if v := os.Getenv("DPR_AUTHOR"); v != "" {
		cfg.Author = v
	}
	if v := os.Getenv("DPR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
