package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/vkb-viewer/pkg/validation"
)

// Config is the server configuration, loaded from an optional YAML
// file then overridden by environment variables and flags
type Config struct {
	Port       int      `yaml:"port"`
	StaticDir  string   `yaml:"staticDir"`
	PrefsPath  string   `yaml:"prefsPath"`
	GatewayURL string   `yaml:"gatewayURL"`
	DataSource string   `yaml:"dataSource"`
	Teams      []string `yaml:"teams"`
	HubDegree  int      `yaml:"hubDegree"`
	LoadFile   string   `yaml:"loadFile"`
	LogLevel   string   `yaml:"logLevel"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Port:       8080,
		DataSource: "combined",
		HubDegree:  3,
		LogLevel:   "info",
	}
}

// LoadConfig reads a YAML config file into the defaults
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnv overrides config values from the environment
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("VKB_DATA_SOURCE"); v != "" {
		c.DataSource = v
	}
	if v := os.Getenv("KNOWLEDGE_VIEW"); v != "" {
		c.Teams = splitTeams(v)
	}
	if v := os.Getenv("VKB_GATEWAY_URL"); v != "" {
		c.GatewayURL = v
	}
	if v := os.Getenv("VKB_STATIC_DIR"); v != "" {
		c.StaticDir = v
	}
	if v := os.Getenv("VKB_PREFS_PATH"); v != "" {
		c.PrefsPath = v
	}
}

// Validate checks the configuration for usable values
func (c *Config) Validate() error {
	return validation.NewConfigValidator("server").
		RangeInt("port", c.Port, 1, 65535).
		Positive("hubDegree", c.HubDegree).
		OneOf("dataSource", c.DataSource, "batch", "online", "combined").
		Err()
}

func splitTeams(s string) []string {
	parts := strings.Split(s, ",")
	teams := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			teams = append(teams, p)
		}
	}
	return teams
}
