// Package config loads settings for the command-line tools from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	isoenc "github.com/rstms/disc-kit/pkg/iso9660/encoding"
	"github.com/rstms/disc-kit/pkg/logging"
	"github.com/rstms/disc-kit/pkg/option"
)

const (
	ENV_OUTPUT_DIR     = "DISCKIT_OUTPUT_DIR"
	ENV_LOG_LEVEL      = "DISCKIT_LOG_LEVEL"
	ENV_NAME_ENCODING  = "DISCKIT_NAME_ENCODING"
	ENV_MMAP           = "DISCKIT_MMAP"
	ENV_WATCH_DEBOUNCE = "DISCKIT_WATCH_DEBOUNCE"

	outputDir     = "./extracted"
	logLevel      = "info"
	nameEncoding  = "shift_jis"
	watchDebounce = 500 * time.Millisecond
)

type Config struct {
	OutputDir     string        `json:"output_dir"`
	LogLevel      string        `json:"log_level"`
	NameEncoding  string        `json:"name_encoding"`
	UseMmap       bool          `json:"use_mmap"`
	WatchDebounce time.Duration `json:"watch_debounce"`
}

// LoadConfig reads .env files (missing ones are ignored) and then the DISCKIT_* variables, falling back to
// defaults for anything unset.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := &Config{
		OutputDir:     os.Getenv(ENV_OUTPUT_DIR),
		LogLevel:      os.Getenv(ENV_LOG_LEVEL),
		NameEncoding:  os.Getenv(ENV_NAME_ENCODING),
		WatchDebounce: parseDurationOrDefault(os.Getenv(ENV_WATCH_DEBOUNCE), watchDebounce),
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = outputDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}
	if cfg.NameEncoding == "" {
		cfg.NameEncoding = nameEncoding
	}
	if s := strings.TrimSpace(os.Getenv(ENV_MMAP)); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", ENV_MMAP, s, err)
		}
		cfg.UseMmap = b
	}
	if _, err := isoenc.ByName(cfg.NameEncoding); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Level returns the logging verbosity for LogLevel.
func (c *Config) Level() int {
	return logging.ParseLevel(c.LogLevel)
}

// Options converts the configuration into open options. The logger is appended by the caller.
func (c *Config) Options() []option.OpenOption {
	enc, _ := isoenc.ByName(c.NameEncoding)
	return []option.OpenOption{
		option.WithNameEncoding(enc),
		option.WithMmap(c.UseMmap),
		option.WithWatchDebounce(c.WatchDebounce),
	}
}

func parseDurationOrDefault(s string, defaultValue time.Duration) time.Duration {
	if s == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}
