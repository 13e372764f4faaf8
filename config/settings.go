package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const userConfigFile = "config.toml"

func LoadSystemConfig() (*SystemConfig, error) {
	cfg := DefaultSystemConfig()
	settingsPath := GetSettingsFilePath()

	if !FileExists(settingsPath) {
		if err := CreateDefaultSystemConfig(); err != nil {
			return nil, fmt.Errorf("failed to create system config: %w", err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(settingsPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}

	return cfg, nil
}

func LoadUserConfig(dataDir string) (*UserConfig, error) {
	cfg := DefaultUserConfig()
	userConfigPath := filepath.Join(dataDir, userConfigFile)

	if !FileExists(userConfigPath) {
		if err := CreateDefaultUserConfig(dataDir); err != nil {
			return nil, fmt.Errorf("failed to create user config: %w", err)
		}
		return cfg, nil
	}

	// Decode over the defaults so keys missing from the file keep them
	meta, err := toml.DecodeFile(userConfigPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 && DebugLog != nil {
		DebugLog.Printf("[Config] ignoring unknown keys in %s: %v", userConfigPath, undecoded)
	}

	return cfg, nil
}

func SaveUserConfig(cfg *UserConfig, dataDir string) error {
	if err := EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	userConfigPath := filepath.Join(dataDir, userConfigFile)
	f, err := os.OpenFile(userConfigPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create user config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode user config: %w", err)
	}

	return nil
}

func CreateDefaultSystemConfig() error {
	if err := EnsureDir(GetConfigDir()); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	settingsPath := GetSettingsFilePath()
	if FileExists(settingsPath) {
		return nil
	}

	if err := os.WriteFile(settingsPath, []byte(GenerateSystemConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("failed to write system config: %w", err)
	}

	return nil
}

func CreateDefaultUserConfig(dataDir string) error {
	if err := EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	userConfigPath := filepath.Join(dataDir, userConfigFile)
	if FileExists(userConfigPath) {
		return nil
	}

	if err := os.WriteFile(userConfigPath, []byte(GenerateUserConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}

	return nil
}
