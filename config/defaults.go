package config

const (
	DefaultDataDirectory = "~/.local/share/slidechat"
	DefaultAgentURL      = "http://localhost:3000/api/agent-chat"
	DefaultAgentID       = "slides-agent"
	DefaultProxyPort     = "3000"
)

var DefaultSearchTools = []string{"platform.core.search"}

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: DefaultDataDirectory,
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Agent: AgentConfig{
			URL:         DefaultAgentURL,
			SearchTools: append([]string(nil), DefaultSearchTools...),
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# slidechat System Configuration
# Location: ~/.config/slidechat/settings.toml
# This file uses TOML format: https://toml.io

# Directory where the user config, keybindings and debug log are stored
data_directory = "~/.local/share/slidechat"
`
}

func GenerateUserConfigTemplate() string {
	return `# slidechat User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[agent]
# Chat endpoint (the slidechat-proxy route, or any server speaking the same protocol)
url = "http://localhost:3000/api/agent-chat"

# Tool ids whose calls are shown as "Searching: <query>"
search_tools = ["platform.core.search"]
`
}
