package workload

import (
	"testing"

	"github.com/kostasthomson/cloud-simulator/pkg/config"
)

func testWorkload(seed int64) *config.Workload {
	return &config.Workload{
		Seed:     seed,
		NumTasks: 50,
		Arrival:  "poisson",
		RatePerS: 2.0,
		Classes: []config.WorkloadClass{
			{
				MinVMs: 1, MaxVMs: 4,
				MinInstructions: 1e6, MaxInstructions: 1e8,
				MinProcessorsPerVM: 1, MaxProcessorsPerVM: 8,
				MinMemoryPerVM: 2, MaxMemoryPerVM: 16,
				MinStoragePerVM: 0.1, MaxStoragePerVM: 1,
				MinNetworkBandwidth: 10, MaxNetworkBandwidth: 100,
				ProcessorUtilization:     0.9,
				AvailableImplementations: []int{1},
			},
			{
				MinVMs: 1, MaxVMs: 2,
				MinInstructions: 1e8, MaxInstructions: 1e10,
				MinProcessorsPerVM: 4, MaxProcessorsPerVM: 16,
				MinMemoryPerVM: 16, MaxMemoryPerVM: 64,
				MinStoragePerVM: 1, MaxStoragePerVM: 4,
				MinNetworkBandwidth: 100, MaxNetworkBandwidth: 500,
				AcceleratorsPerVM:        2,
				ProcessorUtilization:     0.7,
				AcceleratorUtilization:   0.9,
				AvailableImplementations: []int{2},
			},
		},
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	a := Generate(testWorkload(42), 0)
	b := Generate(testWorkload(42), 0)

	if len(a) != 50 || len(b) != 50 {
		t.Fatalf("expected 50 tasks each, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ArrivalTime != b[i].ArrivalTime || a[i].DemandPerVM != b[i].DemandPerVM ||
			a[i].NumVMs != b[i].NumVMs || a[i].TotalInstructions != b[i].TotalInstructions {
			t.Fatalf("task %d differs between identically seeded runs", i)
		}
	}
}

func TestGenerateRespectsEnvelopes(t *testing.T) {
	tasks := Generate(testWorkload(7), 100)
	prev := 0.0
	for _, task := range tasks {
		if task.ID < 100 {
			t.Errorf("task id %d below firstID", task.ID)
		}
		if task.ArrivalTime <= prev {
			t.Errorf("arrival times must be strictly increasing, got %f after %f",
				task.ArrivalTime, prev)
		}
		prev = task.ArrivalTime

		if task.NumVMs < 1 || task.NumVMs > 4 {
			t.Errorf("num_vms %d outside any class envelope", task.NumVMs)
		}
		d := task.DemandPerVM
		if d.Processors < 1 || d.Processors > 16 {
			t.Errorf("processors %f outside any class envelope", d.Processors)
		}
		if len(task.AvailableImplementations) == 0 {
			t.Error("generated task without implementations")
		}
	}
}

func TestFromConfigMergesAndSorts(t *testing.T) {
	cfg := &config.Config{
		Tasks: []config.Task{
			{NumVMs: 1, ProcessorsPerVM: 2, TotalInstructions: 1e6,
				AvailableImplementations: []int{1}, ArrivalTime: 30.0},
			{NumVMs: 1, ProcessorsPerVM: 2, TotalInstructions: 1e6,
				AvailableImplementations: []int{1}, ArrivalTime: 0.5},
		},
		Workload: testWorkload(42),
	}

	tasks := FromConfig(cfg)
	if len(tasks) != 52 {
		t.Fatalf("expected 52 tasks, got %d", len(tasks))
	}
	for i := 1; i < len(tasks); i++ {
		if tasks[i].ArrivalTime < tasks[i-1].ArrivalTime {
			t.Fatalf("tasks not sorted by arrival at index %d", i)
		}
	}

	// Ids must stay unique across explicit and generated tasks.
	seen := make(map[int]bool)
	for _, task := range tasks {
		if seen[task.ID] {
			t.Fatalf("duplicate task id %d", task.ID)
		}
		seen[task.ID] = true
	}
}
