package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validJSON() string {
	return `{
  "simulation": {"max_time": 100, "update_interval": 1},
  "broker": {"poll_interval": 5},
  "network": {"total_bandwidth": 10000},
  "resource_types": [
    {
      "type": 0,
      "num_resources": 10,
      "total_processors": 16,
      "total_memory": 64,
      "total_storage": 10,
      "total_accelerators": 0,
      "comp_cap_per_proc": 1000000,
      "comp_cap_per_acc": 0,
      "overcommitment_processors": 2.0,
      "power": {"idle_power": 100, "peak_power_cpu": 300, "peak_power_acc": 0}
    }
  ],
  "tasks": [
    {
      "processors_per_vm": 2,
      "memory_per_vm": 4,
      "network_bandwidth": 100,
      "storage_per_vm": 0.1,
      "accelerators_per_vm": 0,
      "num_vms": 1,
      "total_instructions": 5000000,
      "processor_utilization": 1.0,
      "memory_utilization": 1.0,
      "storage_utilization": 0.0,
      "accelerator_utilization": 0.0,
      "available_implementations": [0],
      "arrival_time": 0
    }
  ]
}`
}

func TestParseJSONValid(t *testing.T) {
	cfg, err := ParseJSON([]byte(validJSON()))
	if err != nil {
		t.Fatalf("ParseJSON error: %v", err)
	}
	if cfg.Simulation.MaxTime != 100 {
		t.Errorf("max_time = %v, want 100", cfg.Simulation.MaxTime)
	}
	if cfg.Broker.Strategy != StrategyFirstFit {
		t.Errorf("default strategy = %q, want %q", cfg.Broker.Strategy, StrategyFirstFit)
	}
	if len(cfg.ResourceTypes) != 1 || cfg.ResourceTypes[0].OvercommitmentProcessors != 2.0 {
		t.Errorf("resource types parsed incorrectly: %+v", cfg.ResourceTypes)
	}
	if len(cfg.Tasks) != 1 || cfg.Tasks[0].NumVMs != 1 {
		t.Errorf("tasks parsed incorrectly: %+v", cfg.Tasks)
	}
}

func TestParseYAMLValid(t *testing.T) {
	data := `
simulation:
  max_time: 50
  update_interval: 1
broker:
  poll_interval: 2
network:
  total_bandwidth: 500
resource_types:
  - type: 0
    num_resources: 2
    total_processors: 8
    total_memory: 32
    total_storage: 5
    total_accelerators: 0
    comp_cap_per_proc: 100
    comp_cap_per_acc: 0
    overcommitment_processors: 1.0
    power:
      idle_power: 50
      peak_power_cpu: 200
      peak_power_acc: 0
tasks: []
`
	cfg, err := ParseYAML([]byte(data))
	if err != nil {
		t.Fatalf("ParseYAML error: %v", err)
	}
	if cfg.Simulation.MaxTime != 50 {
		t.Errorf("max_time = %v, want 50", cfg.Simulation.MaxTime)
	}
	if cfg.Network.TotalBandwidth != 500 {
		t.Errorf("total_bandwidth = %v, want 500", cfg.Network.TotalBandwidth)
	}
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			"zero max_time",
			func(c *Config) { c.Simulation.MaxTime = 0 },
			"max_time",
		},
		{
			"zero update_interval",
			func(c *Config) { c.Simulation.UpdateInterval = 0 },
			"update_interval",
		},
		{
			"zero poll_interval",
			func(c *Config) { c.Broker.PollInterval = 0 },
			"poll_interval",
		},
		{
			"bad strategy",
			func(c *Config) { c.Broker.Strategy = "best_fit" },
			"strategy",
		},
		{
			"remote without endpoint",
			func(c *Config) { c.Broker.Strategy = StrategyRemote },
			"allocator.endpoint",
		},
		{
			"no resource types",
			func(c *Config) { c.ResourceTypes = nil },
			"resource type",
		},
		{
			"overcommitment below one",
			func(c *Config) { c.ResourceTypes[0].OvercommitmentProcessors = 0.5 },
			"overcommitment",
		},
		{
			"negative bandwidth",
			func(c *Config) { c.Network.TotalBandwidth = -1 },
			"total_bandwidth",
		},
		{
			"unknown implementation",
			func(c *Config) { c.Tasks[0].AvailableImplementations = []int{9} },
			"unknown resource type",
		},
		{
			"empty implementations",
			func(c *Config) { c.Tasks[0].AvailableImplementations = nil },
			"available_implementations",
		},
		{
			"utilization out of range",
			func(c *Config) { c.Tasks[0].ProcessorUtilization = 1.5 },
			"processor_utilization",
		},
		{
			"zero num_vms",
			func(c *Config) { c.Tasks[0].NumVMs = 0 },
			"num_vms",
		},
		{
			"zero instructions",
			func(c *Config) { c.Tasks[0].TotalInstructions = 0 },
			"total_instructions",
		},
		{
			"non-monotonic power bins",
			func(c *Config) {
				c.ResourceTypes[0].Power.CPUUtilizationBins = []float64{0, 0.5, 0.5}
				c.ResourceTypes[0].Power.CPUPowerValues = []float64{100, 200, 300}
			},
			"strictly increasing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseJSON([]byte(validJSON()))
			if err != nil {
				t.Fatalf("baseline config invalid: %v", err)
			}
			tt.mutate(cfg)
			err = validate(cfg)
			if err == nil {
				t.Fatalf("expected validation error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadPicksCodecByExtension(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(jsonPath, []byte(validJSON()), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(jsonPath); err != nil {
		t.Errorf("Load(json) error: %v", err)
	}

	yamlPath := filepath.Join(dir, "config.yaml")
	yamlData := `
simulation: {max_time: 10, update_interval: 1}
broker: {poll_interval: 1}
network: {total_bandwidth: 100}
resource_types:
  - {type: 0, num_resources: 1, total_processors: 4, total_memory: 8, total_storage: 1,
     total_accelerators: 0, comp_cap_per_proc: 10, comp_cap_per_acc: 0,
     overcommitment_processors: 1.0,
     power: {idle_power: 10, peak_power_cpu: 100, peak_power_acc: 0}}
`
	if err := os.WriteFile(yamlPath, []byte(yamlData), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(yamlPath); err != nil {
		t.Errorf("Load(yaml) error: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.json"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
