// Package workload turns configuration into the task stream a run consumes:
// explicit task lists, synthetic generation from class envelopes, or both.
package workload

import (
	"sort"

	"github.com/kostasthomson/cloud-simulator/pkg/config"
	"github.com/kostasthomson/cloud-simulator/pkg/models"
	"github.com/kostasthomson/cloud-simulator/pkg/utils"
)

// FromConfig builds the full task stream: explicit tasks first, then
// synthetic ones when a workload section is present. Tasks come back sorted
// by arrival time with ties broken by id, which is the order the simulator
// feeds them to the broker.
func FromConfig(cfg *config.Config) []*models.Task {
	tasks := make([]*models.Task, 0, len(cfg.Tasks))
	for i, tc := range cfg.Tasks {
		tasks = append(tasks, fromTaskConfig(i, tc))
	}
	if cfg.Workload != nil {
		tasks = append(tasks, Generate(cfg.Workload, len(tasks))...)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].ArrivalTime != tasks[j].ArrivalTime {
			return tasks[i].ArrivalTime < tasks[j].ArrivalTime
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks
}

// Generate synthesizes tasks from the workload's class envelopes. Ids start
// at firstID; a fixed seed reproduces the same stream.
func Generate(wl *config.Workload, firstID int) []*models.Task {
	rng := utils.NewRandSource(wl.Seed)
	tasks := make([]*models.Task, 0, wl.NumTasks)

	arrival := 0.0
	for i := 0; i < wl.NumTasks; i++ {
		switch wl.Arrival {
		case "poisson":
			arrival += rng.ExpFloat64(wl.RatePerS)
		default: // uniform
			arrival += 1.0 / wl.RatePerS
		}

		class := wl.Classes[rng.Intn(len(wl.Classes))]
		tasks = append(tasks, sample(firstID+i, arrival, class, rng))
	}
	return tasks
}

func sample(id int, arrival float64, c config.WorkloadClass, rng *utils.RandSource) *models.Task {
	numVMs := c.MinVMs
	if c.MaxVMs > c.MinVMs {
		numVMs += rng.Intn(c.MaxVMs - c.MinVMs + 1)
	}

	impls := make([]int, len(c.AvailableImplementations))
	copy(impls, c.AvailableImplementations)

	return &models.Task{
		ID:     id,
		NumVMs: numVMs,
		DemandPerVM: models.Demand{
			Processors:   rng.UniformFloat64(c.MinProcessorsPerVM, c.MaxProcessorsPerVM),
			Memory:       rng.UniformFloat64(c.MinMemoryPerVM, c.MaxMemoryPerVM),
			Storage:      rng.UniformFloat64(c.MinStoragePerVM, c.MaxStoragePerVM),
			Accelerators: float64(c.AcceleratorsPerVM),
		},
		NetworkBandwidth: rng.UniformFloat64(c.MinNetworkBandwidth, c.MaxNetworkBandwidth),
		Utilization: models.Utilization{
			Processors:   c.ProcessorUtilization,
			Memory:       c.MemoryUtilization,
			Storage:      c.StorageUtilization,
			Accelerators: c.AcceleratorUtilization,
		},
		AvailableImplementations: impls,
		TotalInstructions:        rng.UniformFloat64(c.MinInstructions, c.MaxInstructions),
		ArrivalTime:              arrival,
	}
}

func fromTaskConfig(id int, tc config.Task) *models.Task {
	impls := make([]int, len(tc.AvailableImplementations))
	copy(impls, tc.AvailableImplementations)

	return &models.Task{
		ID:     id,
		NumVMs: tc.NumVMs,
		DemandPerVM: models.Demand{
			Processors:   tc.ProcessorsPerVM,
			Memory:       tc.MemoryPerVM,
			Storage:      tc.StoragePerVM,
			Accelerators: float64(tc.AcceleratorsPerVM),
		},
		NetworkBandwidth: tc.NetworkBandwidth,
		Utilization: models.Utilization{
			Processors:   tc.ProcessorUtilization,
			Memory:       tc.MemoryUtilization,
			Storage:      tc.StorageUtilization,
			Accelerators: tc.AcceleratorUtilization,
		},
		AvailableImplementations: impls,
		TotalInstructions:        tc.TotalInstructions,
		ArrivalTime:              tc.ArrivalTime,
	}
}
