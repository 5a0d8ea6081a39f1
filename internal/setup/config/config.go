// Package config loads the static application configuration and the
// denylist used by the lexical matcher. The dynamic moderation policies
// live in the document store, not here.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
)

// CurrentVersion of the config file.
const CurrentVersion = 1

// Storage backend names accepted in the config file.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config represents the entire application configuration.
type Config struct {
	// Version of the config file.
	Version int     `koanf:"version"`
	Discord Discord `koanf:"discord"`
	Storage Storage `koanf:"storage"`
	Redis   Redis   `koanf:"redis"`
	Logging Logging `koanf:"logging"`
}

// Discord contains the gateway connection settings.
type Discord struct {
	// Bot token.
	Token string `koanf:"token"`
}

// Storage selects where the moderation documents are persisted.
type Storage struct {
	// Backend is "file" or "redis".
	Backend string `koanf:"backend"`
	// DataDir holds the JSON documents when the file backend is used.
	DataDir string `koanf:"data_dir"`
}

// Redis contains the Redis connection settings, used when the redis
// storage backend is selected.
type Redis struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// Logging contains the log output settings.
type Logging struct {
	Dir           string `koanf:"dir"`
	Level         string `koanf:"level"`
	MaxLogsToKeep int    `koanf:"max_logs_to_keep"`
}

// LoadConfig loads the configuration from the first config path containing
// a config.toml and returns it along with the path used.
func LoadConfig() (*Config, string, error) {
	k := koanf.New(".")

	configPaths, err := searchPaths()
	if err != nil {
		return nil, "", err
	}

	var usedConfigPath string

	for _, path := range configPaths {
		configPath := fmt.Sprintf("%s/config.toml", path)
		if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
			usedConfigPath = path
			break
		}
	}

	if usedConfigPath == "" {
		return nil, "", fmt.Errorf("%w: config.toml", ErrConfigFileNotFound)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := checkConfigVersion(config.Version, CurrentVersion); err != nil {
		return nil, "", err
	}

	applyDefaults(&config)

	return &config, usedConfigPath, nil
}

// searchPaths lists the directories probed for configuration files, most
// specific first.
func searchPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return []string{
		".straznik",
		homeDir + "/.straznik/config",
		"/etc/straznik/config",
		"/app/config",
		"config",
		".",
	}, nil
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: config.toml", ErrConfigVersionMissing)
	}

	if current != expected {
		return fmt.Errorf("%w: config.toml (got: %d, expected: %d)",
			ErrConfigVersionMismatch, current, expected)
	}

	return nil
}

func applyDefaults(config *Config) {
	if config.Storage.Backend == "" {
		config.Storage.Backend = BackendFile
	}

	if config.Storage.DataDir == "" {
		config.Storage.DataDir = "data"
	}

	if config.Logging.Dir == "" {
		config.Logging.Dir = "logs"
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	if config.Logging.MaxLogsToKeep == 0 {
		config.Logging.MaxLogsToKeep = 10
	}

	if config.Redis.Port == 0 {
		config.Redis.Port = 6379
	}
}
