package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

const (
	EnvAgentURL = "SLIDECHAT_AGENT_URL"
	EnvDataDir  = "SLIDECHAT_DATA_DIR"
	EnvDebug    = "SLIDECHAT_DEBUG"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type AgentConfig struct {
	URL         string   `toml:"url"`
	SearchTools []string `toml:"search_tools"`
}

type UserConfig struct {
	Agent AgentConfig `toml:"agent"`
}

type Config struct {
	DataDirectory string
	AgentURL      string
	SearchTools   []string
	Keybindings   *KeyBindingsConfig
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv(EnvAgentURL); url != "" {
		c.AgentURL = url
	}
	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		c.DataDirectory = dataDir
	}
}

func (c *Config) applyUserConfig(userCfg *UserConfig) {
	if userCfg.Agent.URL != "" {
		c.AgentURL = userCfg.Agent.URL
	}
	if len(userCfg.Agent.SearchTools) > 0 {
		c.SearchTools = userCfg.Agent.SearchTools
	}
}

func CheckDebug() bool {
	debug := os.Getenv(EnvDebug)
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: the log may contain prompts and answers
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (%s=%s) ===", EnvDebug, os.Getenv(EnvDebug))
	DebugLog.Printf("Log path: %s", logPath)
}

func HasAllEnvVars() bool {
	return os.Getenv(EnvAgentURL) != "" && os.Getenv(EnvDataDir) != ""
}

func HasAnyEnvVar() bool {
	return os.Getenv(EnvAgentURL) != "" || os.Getenv(EnvDataDir) != ""
}

func GetMissingEnvVar() string {
	if os.Getenv(EnvAgentURL) == "" {
		return EnvAgentURL
	}
	if os.Getenv(EnvDataDir) == "" {
		return EnvDataDir
	}
	return ""
}

// Load builds the runtime config from the settings files. When both
// environment variables are set and no settings file exists yet, the files
// are skipped entirely.
func Load() (*Config, error) {
	cfg := &Config{
		DataDirectory: DefaultDataDirectory,
		AgentURL:      DefaultAgentURL,
		SearchTools:   append([]string(nil), DefaultSearchTools...),
	}

	if !FileExists(GetSettingsFilePath()) && HasAllEnvVars() {
		cfg.applyEnvOverrides()
	} else {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		if systemCfg.DataDirectory != "" {
			cfg.DataDirectory = systemCfg.DataDirectory
		}

		userCfg, err := LoadUserConfig(cfg.DataDir())
		if err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
		cfg.applyUserConfig(userCfg)

		// The agent URL may still be pointed elsewhere for one run
		if url := os.Getenv(EnvAgentURL); url != "" {
			cfg.AgentURL = url
		}
	}

	cfg.AgentURL = strings.TrimSpace(cfg.AgentURL)

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	kb, err := LoadKeybindings(dataDir)
	if err != nil {
		return nil, err
	}
	if ok, warning := kb.Validate(); !ok {
		return nil, fmt.Errorf("invalid keybindings: %s", warning)
	}
	cfg.Keybindings = kb

	return cfg, nil
}
