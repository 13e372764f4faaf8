package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ProxyConfig configures the slidechat-proxy server. It comes from the
// environment only, optionally seeded from a .env file.
type ProxyConfig struct {
	Port      string
	KibanaURL string
	APIKey    string
	AgentID   string

	// Upper bound for one upstream conversation, 0 for none
	UpstreamTimeout time.Duration
}

// LoadProxyConfig reads the proxy settings. Missing Kibana credentials are
// not an error here; the route reports them per request.
func LoadProxyConfig() *ProxyConfig {
	// Load .env file if it exists
	godotenv.Load()

	return &ProxyConfig{
		Port:            getEnvOrDefault("PORT", DefaultProxyPort),
		KibanaURL:       strings.TrimRight(os.Getenv("KIBANA_URL"), "/"),
		APIKey:          os.Getenv("ELASTICSEARCH_API_KEY"),
		AgentID:         getEnvOrDefault("AGENT_ID", DefaultAgentID),
		UpstreamTimeout: time.Duration(getEnvAsIntOrDefault("UPSTREAM_TIMEOUT_SECONDS", 0)) * time.Second,
	}
}

// Configured reports whether the upstream URL and API key are both set.
func (c *ProxyConfig) Configured() bool {
	return c.KibanaURL != "" && c.APIKey != ""
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
