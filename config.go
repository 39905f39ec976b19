package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the YAML-tunable server configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Match  MatchTuning  `yaml:"match"`
}

// ServerConfig holds process-level settings
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	ClientDir string `yaml:"client_dir"`
	DBPath    string `yaml:"db_path"`
}

// MatchTuning overrides the default match rules. Zero values mean
// "keep the default".
type MatchTuning struct {
	TimeLimit   float64 `yaml:"time_limit"`
	BotCount    int     `yaml:"bot_count"`
	MaxPlayers  int     `yaml:"max_players"`
	MaxGuns     int     `yaml:"max_guns"`
	SpawnStart  float64 `yaml:"spawn_start"`
	SpawnMin    float64 `yaml:"spawn_min"`
	SpawnShrink float64 `yaml:"spawn_shrink"`
}

// DefaultServerConfig returns the built-in settings
func DefaultServerConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:      ":8080",
			ClientDir: "../client",
			DBPath:    "arena.db",
		},
	}
}

// LoadConfig reads a YAML config file. Search order: customPath,
// ./arena.yaml, built-in defaults.
func LoadConfig(customPath string) (Config, error) {
	cfg := DefaultServerConfig()

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	if data, err := os.ReadFile("arena.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse arena.yaml: %w", err)
		}
	}
	return cfg, nil
}

// MatchConfig folds the tuning overrides into the default match rules
func (c Config) MatchConfig() MatchConfig {
	mc := DefaultConfig()
	if c.Match.TimeLimit > 0 {
		mc.TimeLimit = c.Match.TimeLimit
	}
	if c.Match.BotCount > 0 {
		mc.BotCount = c.Match.BotCount
	}
	if c.Match.MaxPlayers > 0 {
		mc.MaxPlayers = c.Match.MaxPlayers
	}
	if c.Match.MaxGuns > 0 {
		mc.MaxGuns = c.Match.MaxGuns
	}
	if c.Match.SpawnStart > 0 {
		mc.SpawnStart = c.Match.SpawnStart
	}
	if c.Match.SpawnMin > 0 {
		mc.SpawnMin = c.Match.SpawnMin
	}
	if c.Match.SpawnShrink > 0 {
		mc.SpawnShrink = c.Match.SpawnShrink
	}
	return mc
}
