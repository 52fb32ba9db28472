// Package config resolves runtime settings.
//
// Sources, lowest precedence first:
//  1. built-in defaults
//  2. YAML file ($NETRUNNER_CONFIG, then ./netrunner.yaml)
//  3. NETRUNNER_* environment variables
//  4. command-line flags (applied by the caller)
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath  = "NETRUNNER_CONFIG"
	ConfigFileName = "netrunner.yaml"
)

type Config struct {
	SavePath         string   `yaml:"save_path"`
	LegacySavePath   string   `yaml:"legacy_save_path"`
	ArchivePath      string   `yaml:"archive_path"`
	ArchiveEnabled   bool     `yaml:"archive_enabled"`
	LogDir           string   `yaml:"log_dir"`
	Handle           string   `yaml:"handle"`
	Seed             int64    `yaml:"seed"`
	AutosaveInterval Duration `yaml:"autosave_interval"`
}

// Duration wraps time.Duration for YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func DefaultConfig() *Config {
	return &Config{
		SavePath:         "netrunner_save.json.lz4",
		LegacySavePath:   "netrunner_save.json",
		ArchivePath:      "./data/netrunner.db",
		ArchiveEnabled:   true,
		LogDir:           "./logs",
		Handle:           "ghost",
		AutosaveInterval: Duration(30 * time.Second),
	}
}

// Load reads the config file if one exists and applies the environment.
// It returns the path of the file it read, or "".
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		cfg := DefaultConfig()
		if err := cfg.applyEnv(); err != nil {
			return nil, "", err
		}
		return cfg, "", nil
	}
	return LoadFromPath(path)
}

func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// FindConfigPath returns the first config file that exists, or "".
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" && fileExists(path) {
		return path
	}
	if fileExists(ConfigFileName) {
		return ConfigFileName
	}
	return ""
}

// applyDefaults restores values a config file blanked out.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.SavePath == "" {
		c.SavePath = d.SavePath
	}
	if c.LegacySavePath == "" {
		c.LegacySavePath = d.LegacySavePath
	}
	if c.ArchivePath == "" {
		c.ArchivePath = d.ArchivePath
	}
	if c.LogDir == "" {
		c.LogDir = d.LogDir
	}
	if c.Handle == "" {
		c.Handle = d.Handle
	}
	if c.AutosaveInterval <= 0 {
		c.AutosaveInterval = d.AutosaveInterval
	}
}

func (c *Config) applyEnv() error {
	c.SavePath = getEnv("NETRUNNER_SAVE_PATH", c.SavePath)
	c.LegacySavePath = getEnv("NETRUNNER_LEGACY_SAVE_PATH", c.LegacySavePath)
	c.ArchivePath = getEnv("NETRUNNER_ARCHIVE_PATH", c.ArchivePath)
	c.LogDir = getEnv("NETRUNNER_LOG_DIR", c.LogDir)
	c.Handle = getEnv("NETRUNNER_HANDLE", c.Handle)

	if v, ok := os.LookupEnv("NETRUNNER_SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("NETRUNNER_SEED: %w", err)
		}
		c.Seed = seed
	}
	if v, ok := os.LookupEnv("NETRUNNER_AUTOSAVE_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("NETRUNNER_AUTOSAVE_INTERVAL: %w", err)
		}
		c.AutosaveInterval = Duration(d)
	}
	// Enabled unless explicitly disabled
	if os.Getenv("NETRUNNER_ARCHIVE") == "false" {
		c.ArchiveEnabled = false
	}
	c.applyDefaults()
	return nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
