package config

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	StrategyFirstFit = "first_fit"
	StrategyRemote   = "remote"
)

// ParseJSON parses a configuration from JSON bytes and validates it
func ParseJSON(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate applies defaults and runs full validation on a configuration
// assembled in code or decoded from a request body
func (c *Config) Validate() error {
	applyDefaults(c)
	return validate(c)
}

// ParseYAML parses a configuration from YAML bytes and validates it
func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Broker.Strategy == "" {
		cfg.Broker.Strategy = StrategyFirstFit
	}
	for i := range cfg.ResourceTypes {
		if cfg.ResourceTypes[i].OvercommitmentProcessors == 0 {
			cfg.ResourceTypes[i].OvercommitmentProcessors = 1.0
		}
	}
	for i := range cfg.Tasks {
		if cfg.Tasks[i].ProcessorUtilization == 0 {
			cfg.Tasks[i].ProcessorUtilization = 1.0
		}
		if cfg.Tasks[i].MemoryUtilization == 0 {
			cfg.Tasks[i].MemoryUtilization = 1.0
		}
	}
	if cfg.Allocator != nil && cfg.Allocator.TimeoutMs == 0 {
		cfg.Allocator.TimeoutMs = 2000
	}
}
