// Package config loads the application configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Broker selects and parameterizes the message bus.
type Broker struct {
	// Kind is "redis" or "memory".
	Kind     string `yaml:"kind"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Config is the top-level application configuration.
type Config struct {
	Broker     Broker `yaml:"broker"`
	BaseTopic  string `yaml:"base_topic"`
	Theme      string `yaml:"theme"`
	QueueDepth int    `yaml:"queue_depth"`
	HTTPPort   int    `yaml:"http_port"`
	LogLevel   string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Broker:     Broker{Kind: "memory", Address: "localhost:6379"},
		Theme:      "dark",
		QueueDepth: 256,
		HTTPPort:   8080,
		LogLevel:   "info",
	}
}

// Load reads a YAML configuration file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = Default().QueueDepth
	}
	return cfg, nil
}
