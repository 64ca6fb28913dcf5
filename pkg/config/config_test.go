package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "", config.StorePath)
	assert.Equal(t, "sav", config.Extension)
	assert.Equal(t, ModeRuntime, config.Mode)
	assert.True(t, config.Defaults.Encrypt)
	assert.False(t, config.Defaults.Compress)
	assert.Equal(t, "aes", config.Providers.Crypto)
	assert.Equal(t, "deflate", config.Providers.Compression)
	assert.False(t, config.Archive.Enabled)
	assert.Equal(t, "127.0.0.1", config.Server.Bind)
	assert.Equal(t, 9300, config.Server.Port)
	assert.Equal(t, "info", config.Logging.Level)
	assert.NoError(t, config.Validate())
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"bad mode", func(c *Config) { c.Mode = "editor" }, "invalid mode"},
		{"bad extension", func(c *Config) { c.Extension = "a/b" }, "invalid extension"},
		{"unknown crypto", func(c *Config) { c.Providers.Crypto = "rot13" }, "unknown provider"},
		{"unknown compression", func(c *Config) { c.Providers.Compression = "lzma" }, "unknown provider"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(config)
			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestStorePathResolution(t *testing.T) {
	t.Run("explicit path wins", func(t *testing.T) {
		config := DefaultConfig()
		config.StorePath = "/games/saves"
		assert.Equal(t, "/games/saves", config.ResolveStorePath())
		assert.Equal(t, filepath.Join("/games/saves", ".snapshots"), config.ResolveArchivePath())
	})

	t.Run("development mode uses working directory", func(t *testing.T) {
		cwd, err := os.Getwd()
		require.NoError(t, err)

		config := DefaultConfig()
		config.Mode = ModeDevelopment
		assert.Equal(t, filepath.Join(cwd, "Saves"), config.ResolveStorePath())
	})

	t.Run("runtime mode uses user data directory", func(t *testing.T) {
		path := DefaultStorePath(ModeRuntime)
		assert.Equal(t, "saves", filepath.Base(path))
		assert.NotEqual(t, DefaultStorePath(ModeDevelopment), path)
	})

	t.Run("explicit archive path", func(t *testing.T) {
		config := DefaultConfig()
		config.Archive.Path = "/backups"
		assert.Equal(t, "/backups", config.ResolveArchivePath())
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("load existing config", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		expectedConfig := &Config{
			StorePath: "/custom/saves",
			Extension: "dat",
			Mode:      ModeDevelopment,
			Defaults:  Defaults{Encrypt: false, Compress: true},
			Providers: Providers{Crypto: "aes-gcm", Compression: "zstd"},
			Archive:   Archive{Enabled: true, Path: "/custom/archive"},
			Server:    Server{Bind: "0.0.0.0", Port: 9400, APIKey: "secret"},
			Logging:   Logging{Level: "debug"},
		}

		require.NoError(t, SaveConfig(expectedConfig, configPath))

		loadedConfig, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, expectedConfig, loadedConfig)
	})

	t.Run("partial config keeps defaults", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("store_path: /partial\n"), 0600))

		loadedConfig, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, "/partial", loadedConfig.StorePath)
		assert.Equal(t, "sav", loadedConfig.Extension)
		assert.True(t, loadedConfig.Defaults.Encrypt)
		assert.Equal(t, "info", loadedConfig.Logging.Level)
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := LoadConfig("/non/existent/config.yaml")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "config file does not exist")
	})

	t.Run("load invalid yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "invalid.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644))

		_, err := LoadConfig(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("load invalid values", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("mode: editor\n"), 0600))

		_, err := LoadConfig(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config file")
	})
}

func TestSaveConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	config := DefaultConfig()

	require.NoError(t, SaveConfig(config, configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loadedConfig, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config, loadedConfig)
}

func TestBootstrapConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	config, err := BootstrapConfig(configPath, "/custom/saves", ModeDevelopment)
	require.NoError(t, err)

	assert.Equal(t, "/custom/saves", config.StorePath)
	assert.Equal(t, ModeDevelopment, config.Mode)
	assert.True(t, ConfigExists(configPath))

	loadedConfig, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config, loadedConfig)

	_, err = BootstrapConfig(configPath, "", "editor")
	assert.Error(t, err)
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()
	assert.NotEmpty(t, path)
	assert.Contains(t, path, "saveslot")
	assert.Contains(t, path, ".yaml")
}

func TestConfigExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingPath := filepath.Join(tmpDir, "exists.yaml")
	require.NoError(t, os.WriteFile(existingPath, []byte("test"), 0644))

	assert.True(t, ConfigExists(existingPath))
	assert.False(t, ConfigExists(filepath.Join(tmpDir, "does-not-exist.yaml")))
}

func TestConfigYAMLKeys(t *testing.T) {
	data, err := yaml.Marshal(DefaultConfig())
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &raw))

	for _, key := range []string{"store_path", "extension", "mode", "defaults", "providers", "archive", "server", "logging"} {
		assert.Contains(t, raw, key)
	}
}

func TestSaveConfigErrorHandling(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	err := SaveConfig(DefaultConfig(), filepath.Join(blocker, "config.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create config directory")
}
