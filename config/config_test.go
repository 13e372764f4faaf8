package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at a temp dir and clears the app's env vars.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv(EnvAgentURL, "")
	t.Setenv(EnvDataDir, "")
	return home
}

func TestLoadCreatesDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultAgentURL, cfg.AgentURL)
	assert.Equal(t, DefaultSearchTools, cfg.SearchTools)
	assert.Equal(t, filepath.Join(home, ".local", "share", "slidechat"), cfg.DataDir())

	assert.FileExists(t, filepath.Join(home, ".config", "slidechat", "settings.toml"))
	assert.FileExists(t, filepath.Join(cfg.DataDir(), "config.toml"))
	assert.FileExists(t, filepath.Join(cfg.DataDir(), "keybindings.toml"))
	require.NotNil(t, cfg.Keybindings)
	assert.Equal(t, "alt+x", cfg.Keybindings.GetActionKey("clear_chat"))

	info, err := os.Stat(cfg.DataDir())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestLoadReadsUserConfig(t *testing.T) {
	home := isolate(t)
	dataDir := filepath.Join(home, "data")

	require.NoError(t, EnsureDir(GetConfigDir()))
	require.NoError(t, os.WriteFile(GetSettingsFilePath(), []byte(`data_directory = "`+dataDir+`"`), 0600))
	require.NoError(t, EnsureDir(dataDir))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte(`
[agent]
url = "https://slides.example.com/api/agent-chat"
search_tools = ["slides.search", "platform.core.search"]
`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, dataDir, cfg.DataDir())
	assert.Equal(t, "https://slides.example.com/api/agent-chat", cfg.AgentURL)
	assert.Equal(t, []string{"slides.search", "platform.core.search"}, cfg.SearchTools)

	t.Setenv(EnvAgentURL, "http://override:3000/api/agent-chat")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "http://override:3000/api/agent-chat", cfg.AgentURL)
}

func TestLoadFromEnvOnly(t *testing.T) {
	home := isolate(t)
	dataDir := filepath.Join(home, "envdata")
	t.Setenv(EnvAgentURL, "http://env:3000/api/agent-chat")
	t.Setenv(EnvDataDir, dataDir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://env:3000/api/agent-chat", cfg.AgentURL)
	assert.Equal(t, dataDir, cfg.DataDir())
	assert.NoFileExists(t, GetSettingsFilePath())
}

func TestLoadRejectsBadToml(t *testing.T) {
	isolate(t)
	require.NoError(t, EnsureDir(GetConfigDir()))
	require.NoError(t, os.WriteFile(GetSettingsFilePath(), []byte("data_directory = ["), 0600))

	_, err := Load()
	assert.ErrorContains(t, err, "failed to load system config")
}

func TestEnvVarHelpers(t *testing.T) {
	isolate(t)
	assert.False(t, HasAnyEnvVar())
	assert.False(t, HasAllEnvVars())
	assert.Equal(t, EnvAgentURL, GetMissingEnvVar())

	t.Setenv(EnvAgentURL, "http://x")
	assert.True(t, HasAnyEnvVar())
	assert.False(t, HasAllEnvVars())
	assert.Equal(t, EnvDataDir, GetMissingEnvVar())

	t.Setenv(EnvDataDir, "/tmp/x")
	assert.True(t, HasAllEnvVars())
	assert.Empty(t, GetMissingEnvVar())
}

func TestSaveUserConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := &UserConfig{Agent: AgentConfig{URL: "http://saved", SearchTools: []string{"a"}}}
	require.NoError(t, SaveUserConfig(in, dir))

	out, err := LoadUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("SLIDES_ROOT", "/srv/slides")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, "/home/tester/data", ExpandPath("~/data"))
	assert.Equal(t, "/srv/slides/chat", ExpandPath("$SLIDES_ROOT/chat/"))
}

func TestInitDebugLog(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { Debug = false; DebugLog = nil })

	t.Setenv(EnvDebug, "")
	InitDebugLog(dir)
	assert.Nil(t, DebugLog)

	t.Setenv(EnvDebug, "1")
	InitDebugLog(dir)
	require.NotNil(t, DebugLog)
	assert.True(t, Debug)

	info, err := os.Stat(filepath.Join(dir, "debug.log"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadProxyConfig(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "")
	t.Setenv("KIBANA_URL", "https://kibana.example.com/")
	t.Setenv("ELASTICSEARCH_API_KEY", "")
	t.Setenv("AGENT_ID", "")
	t.Setenv("UPSTREAM_TIMEOUT_SECONDS", "90")

	cfg := LoadProxyConfig()
	assert.Equal(t, DefaultProxyPort, cfg.Port)
	assert.Equal(t, "https://kibana.example.com", cfg.KibanaURL)
	assert.Equal(t, DefaultAgentID, cfg.AgentID)
	assert.Equal(t, 90*time.Second, cfg.UpstreamTimeout)
	assert.False(t, cfg.Configured())

	t.Setenv("ELASTICSEARCH_API_KEY", "secret")
	assert.True(t, LoadProxyConfig().Configured())
}

func TestLoadProxyConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AGENT_ID=lecture-agent\n"), 0600))
	t.Setenv("AGENT_ID", "")
	os.Unsetenv("AGENT_ID")

	assert.Equal(t, "lecture-agent", LoadProxyConfig().AgentID)
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{"parses integer", "42", 42},
		{"uses default for empty", "", 10},
		{"uses default for non-numeric", "abc", 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("SLIDECHAT_TEST_INT", tc.value)
			assert.Equal(t, tc.expected, getEnvAsIntOrDefault("SLIDECHAT_TEST_INT", 10))
		})
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
