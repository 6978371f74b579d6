// Package config loads shramba's settings. Later sources override earlier
// ones: built-in defaults, the YAML file, the .env file, then the process
// environment. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/erazemk/shramba/internal/expiry"
	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/query"
)

const (
	// DefaultFile is the YAML file read when no path is given.
	DefaultFile = "shramba.yaml"
	// DefaultEnvFile is the dotenv file read when no path is given.
	DefaultEnvFile = ".env"
	// DefaultDB is the database path used when nothing else is set.
	DefaultDB = "shramba.db"
)

// Config holds the runtime settings.
type Config struct {
	// DB is the SQLite database path.
	DB string `yaml:"db"`
	// Log is an optional file that receives every log record.
	Log string `yaml:"log"`
	// ThresholdDays is the "expiring soon" window.
	ThresholdDays int `yaml:"threshold_days"`
	// MergeOnAdd folds a new item into a matching row at the same location.
	MergeOnAdd bool `yaml:"merge_on_add"`
	// ShowZero lists items whose quantity is 0.
	ShowZero bool   `yaml:"show_zero"`
	Sort     string `yaml:"sort"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DB:            DefaultDB,
		ThresholdDays: expiry.DefaultThresholdDays,
		MergeOnAdd:    true,
		Sort:          string(query.SortDate),
	}
}

// Load reads the YAML file at path and the dotenv file at envFile on top of
// the defaults, then applies SHRAMBA_* environment variables. Missing files
// are skipped.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if err := cfg.readFile(path); err != nil {
		return Config{}, err
	}

	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("reading %s: %w", envFile, err)
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: parsing %s: %v", model.ErrValidation, path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("SHRAMBA_DB"); ok && v != "" {
		c.DB = v
	}
	if v, ok := lookup("SHRAMBA_LOG"); ok {
		c.Log = v
	}
	if v, ok := lookup("SHRAMBA_SORT"); ok && v != "" {
		c.Sort = v
	}
	if v, ok := lookup("SHRAMBA_THRESHOLD_DAYS"); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: SHRAMBA_THRESHOLD_DAYS: %v", model.ErrValidation, err)
		}
		c.ThresholdDays = n
	}

	bools := []struct {
		key    string
		target *bool
	}{
		{"SHRAMBA_MERGE_ON_ADD", &c.MergeOnAdd},
		{"SHRAMBA_SHOW_ZERO", &c.ShowZero},
	}
	for _, b := range bools {
		v, ok := lookup(b.key)
		if !ok || v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", model.ErrValidation, b.key, err)
		}
		*b.target = parsed
	}
	return nil
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.DB == "" {
		return fmt.Errorf("%w: database path must not be empty", model.ErrValidation)
	}
	if c.ThresholdDays < 0 {
		return fmt.Errorf("%w: threshold days must not be negative", model.ErrValidation)
	}
	if _, err := query.ParseSort(c.Sort); err != nil {
		return err
	}
	return nil
}

// SortKey returns the configured default sort.
func (c Config) SortKey() query.SortKey {
	k, err := query.ParseSort(c.Sort)
	if err != nil {
		return query.SortDate
	}
	return k
}
