package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const keybindingsFile = "keybindings.toml"

// KeyBindingsConfig holds modifier customization and optional per-action overrides
type KeyBindingsConfig struct {
	Modifiers ModifierConfig    `toml:"modifiers"`
	Actions   map[string]string `toml:"actions"`
}

type ModifierConfig struct {
	Primary   string `toml:"primary"`   // e.g., "alt", "ctrl", "meta", "super"
	Secondary string `toml:"secondary"` // e.g., "alt+shift", "ctrl+shift"
}

type actionDef struct {
	modifier string // "primary", "secondary", or "none"
	key      string
}

// actionRegistry maps action names to their default keybindings
var actionRegistry = map[string]actionDef{
	"help":            {"primary", "h"},
	"quit":            {"primary", "q"},
	"clear_chat":      {"primary", "x"},
	"search_messages": {"primary", "f"},

	"yank_last_response": {"primary", "y"},
	"yank_conversation":  {"primary", "c"},

	"scroll_down":      {"primary", "j"},
	"scroll_up":        {"primary", "k"},
	"half_page_down":   {"secondary", "j"},
	"half_page_up":     {"secondary", "k"},
	"page_down":        {"none", "pgdown"},
	"page_up":          {"none", "pgup"},
	"scroll_to_top":    {"primary", "g"},
	"scroll_to_bottom": {"secondary", "g"},

	"search_next":     {"primary", "j"},
	"search_previous": {"primary", "k"},
}

// Actions lists every configurable action name in a stable order.
func Actions() []string {
	return []string{
		"help", "quit", "clear_chat", "search_messages",
		"yank_last_response", "yank_conversation",
		"scroll_down", "scroll_up", "half_page_down", "half_page_up",
		"page_down", "page_up", "scroll_to_top", "scroll_to_bottom",
		"search_next", "search_previous",
	}
}

func DefaultKeybindings() *KeyBindingsConfig {
	return &KeyBindingsConfig{
		Modifiers: ModifierConfig{
			Primary:   "alt",
			Secondary: "alt+shift",
		},
	}
}

// LoadKeybindings loads keybindings from data directory, creating the
// default file on first run.
func LoadKeybindings(dataDir string) (*KeyBindingsConfig, error) {
	cfg := DefaultKeybindings()
	path := filepath.Join(dataDir, keybindingsFile)

	if !FileExists(path) {
		if err := CreateDefaultKeybindings(dataDir); err != nil {
			return nil, fmt.Errorf("failed to create keybindings: %w", err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse keybindings: %w", err)
	}

	if cfg.Modifiers.Primary == "" {
		cfg.Modifiers.Primary = "alt"
	}
	if cfg.Modifiers.Secondary == "" {
		cfg.Modifiers.Secondary = "alt+shift"
	}

	return cfg, nil
}

func CreateDefaultKeybindings(dataDir string) error {
	if err := EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dataDir, keybindingsFile)
	if FileExists(path) {
		return nil
	}

	return writeFile0600(path, GenerateKeybindingsTemplate())
}

func GenerateKeybindingsTemplate() string {
	return `# slidechat Keybindings Configuration
# Location: <data_directory>/keybindings.toml
# This file uses TOML format: https://toml.io

[modifiers]
primary = "alt"          # Options: alt, ctrl, meta, super
secondary = "alt+shift"

# For tmux users (Alt may conflict):
#   primary = "ctrl"
#   secondary = "ctrl+shift"

[actions]
# Override single actions here. Available actions:
#   help, quit, clear_chat, search_messages, yank_last_response,
#   yank_conversation, scroll_down, scroll_up, half_page_down, half_page_up,
#   page_down, page_up, scroll_to_top, scroll_to_bottom,
#   search_next, search_previous
#
# Examples:
#   clear_chat = "ctrl+l"
#   quit = "ctrl+shift+q"
`
}

func (kb *KeyBindingsConfig) Primary() string {
	if kb.Modifiers.Primary == "" {
		return "alt"
	}
	return kb.Modifiers.Primary
}

func (kb *KeyBindingsConfig) Secondary() string {
	if kb.Modifiers.Secondary == "" {
		return "alt+shift"
	}
	return kb.Modifiers.Secondary
}

// PrimaryKey builds a keybinding string with primary modifier
// Example: PrimaryKey("s") returns "alt+s"
func (kb *KeyBindingsConfig) PrimaryKey(key string) string {
	return kb.Primary() + "+" + key
}

// SecondaryKey builds a keybinding string with secondary modifier. A shift
// modifier on a single lowercase letter becomes the uppercase letter, which
// is what terminals report.
// Example: SecondaryKey("s") returns "alt+S" (not "alt+shift+s")
func (kb *KeyBindingsConfig) SecondaryKey(key string) string {
	secondary := kb.Secondary()

	if strings.Contains(strings.ToLower(secondary), "shift") && len(key) == 1 && key[0] >= 'a' && key[0] <= 'z' {
		var mods []string
		for _, part := range strings.Split(secondary, "+") {
			if strings.ToLower(part) != "shift" {
				mods = append(mods, part)
			}
		}
		if len(mods) > 0 {
			return strings.Join(mods, "+") + "+" + strings.ToUpper(key)
		}
		return strings.ToUpper(key)
	}

	return secondary + "+" + key
}

// GetActionKey returns the keybinding for an action: the user override if
// present, else the registry default, else "".
func (kb *KeyBindingsConfig) GetActionKey(action string) string {
	if override, ok := kb.Actions[action]; ok && override != "" {
		return override
	}

	def, ok := actionRegistry[action]
	if !ok {
		return ""
	}
	switch def.modifier {
	case "primary":
		return kb.PrimaryKey(def.key)
	case "secondary":
		return kb.SecondaryKey(def.key)
	default:
		return def.key
	}
}

// DisplayActionKey returns a display-friendly version of an action's keybinding
// Example: "alt+J" -> "Alt+Shift+J"
func (kb *KeyBindingsConfig) DisplayActionKey(action string) string {
	key := kb.GetActionKey(action)
	if key == "" {
		return ""
	}
	return capitalizeKeybinding(key)
}

func capitalizeKeybinding(key string) string {
	parts := strings.Split(key, "+")

	hasShift := false
	for _, p := range parts {
		if strings.ToLower(p) == "shift" {
			hasShift = true
		}
	}

	var result []string
	for i, part := range parts {
		if part == "" {
			continue
		}
		// A lone uppercase letter means Shift was held
		if len(part) == 1 && part[0] >= 'A' && part[0] <= 'Z' {
			if !hasShift && i > 0 {
				result = append(result, "Shift")
			}
			result = append(result, part)
			continue
		}
		result = append(result, strings.ToUpper(part[:1])+part[1:])
	}

	return strings.Join(result, "+")
}

// Validate checks if the configuration is valid
// Returns (isValid, warningMessage)
func (kb *KeyBindingsConfig) Validate() (bool, string) {
	primary := kb.Primary()
	secondary := kb.Secondary()

	if primary == "shift" || secondary == "shift" {
		return false, "Shift alone conflicts with typing"
	}

	if strings.Contains(primary, "ctrl") || strings.Contains(secondary, "ctrl") {
		return true, "Warning: Ctrl may conflict with terminal shortcuts (Ctrl+C, Ctrl+Z, Ctrl+D)"
	}

	return true, ""
}
