package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads and parses a configuration file. The codec is chosen by file
// extension: .yaml/.yml are parsed as YAML, everything else as JSON (the
// simulator's native input format).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = ParseYAML(data)
	default:
		cfg, err = ParseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validate performs fail-fast validation; the simulation never starts on a
// malformed configuration.
func validate(cfg *Config) error {
	if cfg.Simulation.MaxTime <= 0 {
		return fmt.Errorf("simulation.max_time must be positive, got %v", cfg.Simulation.MaxTime)
	}
	if cfg.Simulation.UpdateInterval <= 0 {
		return fmt.Errorf("simulation.update_interval must be positive, got %v", cfg.Simulation.UpdateInterval)
	}
	if cfg.Broker.PollInterval <= 0 {
		return fmt.Errorf("broker.poll_interval must be positive, got %v", cfg.Broker.PollInterval)
	}
	if cfg.Broker.Strategy != StrategyFirstFit && cfg.Broker.Strategy != StrategyRemote {
		return fmt.Errorf("broker.strategy must be %q or %q, got %q", StrategyFirstFit, StrategyRemote, cfg.Broker.Strategy)
	}
	if cfg.Broker.Strategy == StrategyRemote {
		if cfg.Allocator == nil || cfg.Allocator.Endpoint == "" {
			return fmt.Errorf("broker.strategy %q requires allocator.endpoint", StrategyRemote)
		}
	}
	if cfg.Network.TotalBandwidth <= 0 {
		return fmt.Errorf("network.total_bandwidth must be positive, got %v", cfg.Network.TotalBandwidth)
	}

	if len(cfg.ResourceTypes) == 0 {
		return fmt.Errorf("at least one resource type must be defined")
	}
	types := make(map[int]bool)
	for _, rt := range cfg.ResourceTypes {
		if types[rt.Type] {
			return fmt.Errorf("duplicate resource type: %d", rt.Type)
		}
		types[rt.Type] = true
		if rt.NumResources <= 0 {
			return fmt.Errorf("resource type %d: num_resources must be positive, got %d", rt.Type, rt.NumResources)
		}
		if rt.TotalProcessors <= 0 {
			return fmt.Errorf("resource type %d: total_processors must be positive, got %v", rt.Type, rt.TotalProcessors)
		}
		if rt.TotalMemory <= 0 {
			return fmt.Errorf("resource type %d: total_memory must be positive, got %v", rt.Type, rt.TotalMemory)
		}
		if rt.TotalStorage < 0 {
			return fmt.Errorf("resource type %d: total_storage cannot be negative, got %v", rt.Type, rt.TotalStorage)
		}
		if rt.TotalAccelerators < 0 {
			return fmt.Errorf("resource type %d: total_accelerators cannot be negative, got %d", rt.Type, rt.TotalAccelerators)
		}
		if rt.CompCapPerProc <= 0 {
			return fmt.Errorf("resource type %d: comp_cap_per_proc must be positive, got %v", rt.Type, rt.CompCapPerProc)
		}
		if rt.OvercommitmentProcessors < 1.0 {
			return fmt.Errorf("resource type %d: overcommitment_processors must be at least 1.0, got %v", rt.Type, rt.OvercommitmentProcessors)
		}
		if err := validatePower(rt.Type, rt.Power); err != nil {
			return err
		}
	}

	for i, task := range cfg.Tasks {
		if err := validateTask(i, task, types); err != nil {
			return err
		}
	}

	if cfg.Workload != nil {
		if err := validateWorkload(cfg.Workload, types); err != nil {
			return err
		}
	}

	return nil
}

func validatePower(rt int, p Power) error {
	if p.IdlePower < 0 {
		return fmt.Errorf("resource type %d: power.idle_power cannot be negative, got %v", rt, p.IdlePower)
	}
	if p.PeakPowerCPU < p.IdlePower {
		return fmt.Errorf("resource type %d: power.peak_power_cpu %v is below idle_power %v", rt, p.PeakPowerCPU, p.IdlePower)
	}
	if len(p.CPUUtilizationBins) != len(p.CPUPowerValues) {
		return fmt.Errorf("resource type %d: cpu_utilization_bins and cpu_power_values must have equal length", rt)
	}
	if len(p.CPUUtilizationBins) == 1 {
		return fmt.Errorf("resource type %d: power curve needs at least two breakpoints", rt)
	}
	for i := 1; i < len(p.CPUUtilizationBins); i++ {
		if p.CPUUtilizationBins[i] <= p.CPUUtilizationBins[i-1] {
			return fmt.Errorf("resource type %d: cpu_utilization_bins must be strictly increasing", rt)
		}
	}
	return nil
}

func validateTask(i int, task Task, types map[int]bool) error {
	if task.NumVMs <= 0 {
		return fmt.Errorf("task %d: num_vms must be positive, got %d", i, task.NumVMs)
	}
	if task.ProcessorsPerVM < 0 || task.MemoryPerVM < 0 || task.StoragePerVM < 0 ||
		task.AcceleratorsPerVM < 0 || task.NetworkBandwidth < 0 {
		return fmt.Errorf("task %d: resource demands cannot be negative", i)
	}
	if task.TotalInstructions <= 0 {
		return fmt.Errorf("task %d: total_instructions must be positive, got %v", i, task.TotalInstructions)
	}
	if task.ArrivalTime < 0 {
		return fmt.Errorf("task %d: arrival_time cannot be negative, got %v", i, task.ArrivalTime)
	}
	for name, u := range map[string]float64{
		"processor_utilization":   task.ProcessorUtilization,
		"memory_utilization":      task.MemoryUtilization,
		"storage_utilization":     task.StorageUtilization,
		"accelerator_utilization": task.AcceleratorUtilization,
	} {
		if u < 0 || u > 1 {
			return fmt.Errorf("task %d: %s must be between 0 and 1, got %v", i, name, u)
		}
	}
	if len(task.AvailableImplementations) == 0 {
		return fmt.Errorf("task %d: available_implementations cannot be empty", i)
	}
	for _, impl := range task.AvailableImplementations {
		if !types[impl] {
			return fmt.Errorf("task %d: available_implementations references unknown resource type %d", i, impl)
		}
	}
	return nil
}

func validateWorkload(w *Workload, types map[int]bool) error {
	if w.NumTasks <= 0 {
		return fmt.Errorf("workload.num_tasks must be positive, got %d", w.NumTasks)
	}
	if w.Arrival != "uniform" && w.Arrival != "poisson" {
		return fmt.Errorf("workload.arrival must be uniform or poisson, got %q", w.Arrival)
	}
	if w.RatePerS <= 0 {
		return fmt.Errorf("workload.rate_per_s must be positive, got %v", w.RatePerS)
	}
	if len(w.Classes) == 0 {
		return fmt.Errorf("workload needs at least one task class")
	}
	for i, c := range w.Classes {
		if c.MinVMs <= 0 || c.MaxVMs < c.MinVMs {
			return fmt.Errorf("workload class %d: invalid vm range [%d, %d]", i, c.MinVMs, c.MaxVMs)
		}
		if c.MinInstructions <= 0 || c.MaxInstructions < c.MinInstructions {
			return fmt.Errorf("workload class %d: invalid instruction range", i)
		}
		if len(c.AvailableImplementations) == 0 {
			return fmt.Errorf("workload class %d: available_implementations cannot be empty", i)
		}
		for _, impl := range c.AvailableImplementations {
			if !types[impl] {
				return fmt.Errorf("workload class %d: unknown resource type %d", i, impl)
			}
		}
	}
	return nil
}
