package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the client settings.
type Config struct {
	Host        string
	HistorySize int
	FPS         float64
	RetryDelay  time.Duration
	LogFile     string
	LogLevel    string
	MetricsAddr string
}

const (
	defaultConfigPath  = "~/.config/fsrmon/config.toml"
	defaultLogFile     = "~/.local/state/fsrmon/fsrmon.log"
	defaultHost        = "localhost:5000"
	defaultHistorySize = 1000
	defaultFPS         = 60.1
	defaultRetryDelay  = time.Second
	defaultLogLevel    = "info"
)

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		Host:        defaultHost,
		HistorySize: defaultHistorySize,
		FPS:         defaultFPS,
		RetryDelay:  defaultRetryDelay,
		LogFile:     mustExpand(defaultLogFile),
		LogLevel:    defaultLogLevel,
	}
}

// Load reads the config file, falling back to defaults when it is missing.
// Empty or non-positive values also fall back to their defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Host        string  `toml:"host"`
		HistorySize int     `toml:"history_size"`
		FPS         float64 `toml:"fps"`
		RetryDelay  string  `toml:"retry_delay"`
		LogFile     string  `toml:"log_file"`
		LogLevel    string  `toml:"log_level"`
		MetricsAddr string  `toml:"metrics_addr"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if host := strings.TrimSpace(raw.Host); host != "" {
		cfg.Host = host
	}
	if raw.HistorySize > 0 {
		cfg.HistorySize = raw.HistorySize
	}
	if raw.FPS > 0 {
		cfg.FPS = raw.FPS
	}
	if delay := strings.TrimSpace(raw.RetryDelay); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: retry_delay: %w", err)
		}
		if d > 0 {
			cfg.RetryDelay = d
		}
	}
	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		cfg.LogFile = mustExpand(logFile)
	}
	if level := strings.TrimSpace(raw.LogLevel); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)

	return cfg, nil
}

// ExpandPath resolves a leading tilde and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
