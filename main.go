package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"slidechat/agent"
	"slidechat/agentstream"
	"slidechat/config"
	"slidechat/ui"
)

const (
	Version = "v0.1.0"
	License = "Apache-2.0"
)

func showError(title, message string) {
	p := tea.NewProgram(ui.NewErrorModal(title, message), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func main() {
	// A data dir from the environment is only honoured together with the agent URL
	if config.HasAnyEnvVar() && config.GetMissingEnvVar() == config.EnvAgentURL {
		showError("Configuration Error", fmt.Sprintf(
			"Missing environment variable: %s\n\n"+
				"%s is only used when both are set:\n"+
				"  • %s\n"+
				"  • %s\n\n"+
				"Set the missing variable before launching slidechat.",
			config.EnvAgentURL, config.EnvDataDir, config.EnvAgentURL, config.EnvDataDir))
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	config.InitDebugLog(cfg.DataDir())
	if config.DebugLog != nil {
		config.DebugLog.Printf("slidechat %s starting - agent %s, search tools %v", Version, cfg.AgentURL, cfg.SearchTools)
	}

	client, err := agent.NewClient(cfg.AgentURL,
		agentstream.WithSearchTools(cfg.SearchTools...),
		agentstream.WithLogger(config.DebugLog),
	)
	if err != nil {
		showError("Invalid Agent URL", fmt.Sprintf(
			"%v\n\nFix [agent] url in %s/config.toml\nor set %s.",
			err, cfg.DataDir(), config.EnvAgentURL))
		os.Exit(1)
	}

	p := tea.NewProgram(
		ui.NewAppView(cfg, client, Version, License),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running slidechat: %v\n", err)
		os.Exit(1)
	}
}
