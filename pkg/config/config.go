/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/saveslot/pkg/provider"
)

// Store path modes
const (
	ModeRuntime     = "runtime"
	ModeDevelopment = "development"
)

// Config represents the saveslot configuration
type Config struct {
	StorePath string    `yaml:"store_path"`
	Extension string    `yaml:"extension"`
	Mode      string    `yaml:"mode"`
	Defaults  Defaults  `yaml:"defaults"`
	Providers Providers `yaml:"providers"`
	Archive   Archive   `yaml:"archive"`
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
}

// Defaults holds the transforms applied when a save does not choose them
type Defaults struct {
	Encrypt  bool `yaml:"encrypt"`
	Compress bool `yaml:"compress"`
}

// Providers names the crypto and compression strategies
type Providers struct {
	Crypto      string `yaml:"crypto"`
	Compression string `yaml:"compression"`
}

// Archive configures the snapshot archive
type Archive struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Server contains HTTP inspection server configuration
type Server struct {
	Bind   string `yaml:"bind"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		StorePath: "",
		Extension: "sav",
		Mode:      ModeRuntime,
		Defaults: Defaults{
			Encrypt:  true,
			Compress: false,
		},
		Providers: Providers{
			Crypto:      provider.CryptoAES,
			Compression: provider.CompressDeflate,
		},
		Archive: Archive{
			Enabled: false,
		},
		Server: Server{
			Bind: "127.0.0.1",
			Port: 9300,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Validate checks that the configuration can be used to build a store
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeRuntime, ModeDevelopment:
	default:
		return fmt.Errorf("invalid mode %q: expected %s or %s", c.Mode, ModeRuntime, ModeDevelopment)
	}

	if strings.ContainsAny(strings.TrimPrefix(c.Extension, "."), `/\`) {
		return fmt.Errorf("invalid extension %q", c.Extension)
	}

	if _, err := provider.CryptoByName(c.Providers.Crypto); err != nil {
		return err
	}
	if _, err := provider.CompressionByName(c.Providers.Compression); err != nil {
		return err
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	return nil
}

// DefaultStorePath returns the store directory used when none is configured.
// Development mode keeps saves next to the working directory; runtime mode
// uses the per-user application data directory.
func DefaultStorePath(mode string) string {
	if mode == ModeDevelopment {
		cwd, err := os.Getwd()
		if err != nil {
			return "Saves"
		}
		return filepath.Join(cwd, "Saves")
	}

	dataDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "saves")
	}
	return filepath.Join(dataDir, "saveslot", "saves")
}

// ResolveStorePath returns the configured store path or the mode default
func (c *Config) ResolveStorePath() string {
	if c.StorePath != "" {
		return c.StorePath
	}
	return DefaultStorePath(c.Mode)
}

// ResolveArchivePath returns the configured archive path or a directory
// inside the store path
func (c *Config) ResolveArchivePath() string {
	if c.Archive.Path != "" {
		return c.Archive.Path
	}
	return filepath.Join(c.ResolveStorePath(), ".snapshots")
}

// LoadConfig loads configuration from the specified path. Fields missing
// from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes a default configuration for the given store path
func BootstrapConfig(configPath, storePath, mode string) (*Config, error) {
	config := DefaultConfig()
	if storePath != "" {
		config.StorePath = storePath
	}
	if mode != "" {
		config.Mode = mode
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./saveslot.yaml"
	}

	// For Linux/macOS, use ~/.config/saveslot/config.yaml
	return filepath.Join(homeDir, ".config", "saveslot", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
