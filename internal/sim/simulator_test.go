package sim

import (
	"context"
	"testing"

	"github.com/kostasthomson/cloud-simulator/internal/broker"
	"github.com/kostasthomson/cloud-simulator/pkg/config"
	"github.com/kostasthomson/cloud-simulator/pkg/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Simulation: config.Simulation{MaxTime: 1000, UpdateInterval: 1},
		Broker:     config.Broker{PollInterval: 5, Strategy: config.StrategyFirstFit},
		Network:    config.Network{TotalBandwidth: 10000},
		ResourceTypes: []config.ResourceType{
			{
				Type:                     1,
				NumResources:             2,
				TotalProcessors:          16,
				TotalMemory:              64,
				TotalStorage:             10,
				CompCapPerProc:           1000,
				OvercommitmentProcessors: 1.0,
				Power:                    config.Power{IdlePower: 100, PeakPowerCPU: 250},
			},
		},
	}
}

func quickTask(arrival float64) config.Task {
	return config.Task{
		NumVMs:                   1,
		ProcessorsPerVM:          4,
		MemoryPerVM:              8,
		StoragePerVM:             1,
		NetworkBandwidth:         100,
		TotalInstructions:        4000, // one second at 4 procs x 1000
		ProcessorUtilization:     1.0,
		AvailableImplementations: []int{1},
		ArrivalTime:              arrival,
	}
}

func TestRunToCompletion(t *testing.T) {
	cfg := testConfig()
	cfg.Tasks = []config.Task{quickTask(0.5), quickTask(1.5)}

	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.Summary.TasksSubmitted != 2 {
		t.Errorf("expected 2 submitted, got %d", result.Summary.TasksSubmitted)
	}
	if result.Summary.TasksAccepted != 2 || result.Summary.TasksCompleted != 2 {
		t.Errorf("expected 2 accepted and completed, got %d/%d",
			result.Summary.TasksAccepted, result.Summary.TasksCompleted)
	}
	if result.Summary.AcceptanceRate != 1.0 {
		t.Errorf("expected acceptance rate 1.0, got %f", result.Summary.AcceptanceRate)
	}
	if result.Summary.EnergyKWh <= 0 {
		t.Error("expected positive energy consumption")
	}
	if result.TasksRunning != 0 || result.TasksInQueue != 0 {
		t.Errorf("expected drained system, got running=%d queued=%d",
			result.TasksRunning, result.TasksInQueue)
	}
}

func TestCompletionReleasesAllCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.Tasks = []config.Task{quickTask(0.5), quickTask(0.5), quickTask(2.5)}

	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	for _, cell := range result.FinalState.Cells {
		for _, pool := range cell.Pools {
			for _, srv := range pool.Servers {
				if srv.Available != srv.Total {
					t.Errorf("server %d not fully released: %+v of %+v",
						srv.ID, srv.Available, srv.Total)
				}
			}
		}
		if cell.Network.Available != cell.Network.Total {
			t.Errorf("network not fully released: %+v", cell.Network)
		}
	}
}

func TestOversizedTaskRejected(t *testing.T) {
	cfg := testConfig()
	big := quickTask(0.5)
	big.ProcessorsPerVM = 100
	cfg.Tasks = []config.Task{big, quickTask(0.5)}

	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.Summary.TasksRejected != 1 {
		t.Fatalf("expected 1 rejection, got %d", result.Summary.TasksRejected)
	}
	if result.Summary.RejectionReasons[broker.ReasonCapacity] != 1 {
		t.Errorf("expected capacity rejection, got %v", result.Summary.RejectionReasons)
	}
	if result.Summary.TasksCompleted != 1 {
		t.Errorf("expected the small task to complete, got %d", result.Summary.TasksCompleted)
	}
}

func TestZeroArrivalAdmittedAtTimeZero(t *testing.T) {
	cfg := testConfig()
	cfg.Tasks = []config.Task{quickTask(0)}

	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.Summary.TasksCompleted != 1 {
		t.Fatalf("expected 1 completion, got %d", result.Summary.TasksCompleted)
	}
	// The first step runs at t=0, so an arrival at t=0 never waits.
	if got := result.Summary.WaitTime.Mean; got != 0 {
		t.Errorf("expected zero wait, got %f", got)
	}
	// 4000 instructions at 4 procs x 1000, admitted at t=0.
	if got := result.Summary.ResponseTime.Mean; got != 1.0 {
		t.Errorf("expected response time 1.0, got %f", got)
	}
}

func TestPowerReflectsTaskUtilization(t *testing.T) {
	run := func(util float64) Summary {
		cfg := testConfig()
		task := quickTask(0)
		task.ProcessorUtilization = util
		cfg.Tasks = []config.Task{task}

		s, err := New(cfg)
		if err != nil {
			t.Fatal(err)
		}
		result, err := s.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return result.Summary
	}

	// 4 busy procs of 16: 100 + 0.25*150 = 137.5 W plus one idle server.
	if got := run(1.0).PeakPowerW; got != 237.5 {
		t.Errorf("expected peak 237.5 W at full utilization, got %f", got)
	}
	// 2 busy procs of 16: 100 + 0.125*150 = 118.75 W plus one idle server.
	if got := run(0.5).PeakPowerW; got != 218.75 {
		t.Errorf("expected peak 218.75 W at half utilization, got %f", got)
	}
}

func TestEmptyWorkloadStillSamplesPower(t *testing.T) {
	cfg := testConfig()
	cfg.Tasks = nil

	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.Steps != 1 {
		t.Fatalf("expected exactly one step for an empty workload, got %d", result.Steps)
	}
	if result.EndTime != cfg.Simulation.UpdateInterval {
		t.Errorf("expected end time %f, got %f", cfg.Simulation.UpdateInterval, result.EndTime)
	}
	if result.Summary.EnergyKWh <= 0 {
		t.Error("expected idle energy to be accounted")
	}
}

func TestIdleSimulationBurnsIdlePower(t *testing.T) {
	cfg := testConfig()
	cfg.Simulation.MaxTime = 10
	cfg.Tasks = nil
	// A single far-future arrival keeps the run alive until max_time.
	cfg.Tasks = []config.Task{quickTask(1e6)}

	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// Two idle servers at 100 W each.
	if result.Summary.MeanPowerW != 200 {
		t.Errorf("expected mean power 200 W, got %f", result.Summary.MeanPowerW)
	}
	if result.EndTime != 10 {
		t.Errorf("expected run to stop at max_time, got %f", result.EndTime)
	}
}

func TestDeterministicWithSeededWorkload(t *testing.T) {
	build := func() *config.Config {
		cfg := testConfig()
		cfg.Simulation.MaxTime = 200
		cfg.Workload = &config.Workload{
			Seed:     1234,
			NumTasks: 40,
			Arrival:  "poisson",
			RatePerS: 1.0,
			Classes: []config.WorkloadClass{
				{
					MinVMs: 1, MaxVMs: 3,
					MinInstructions: 1000, MaxInstructions: 50000,
					MinProcessorsPerVM: 1, MaxProcessorsPerVM: 8,
					MinMemoryPerVM: 2, MaxMemoryPerVM: 16,
					MinStoragePerVM: 0.1, MaxStoragePerVM: 1,
					MinNetworkBandwidth: 10, MaxNetworkBandwidth: 200,
					ProcessorUtilization:     1.0,
					AvailableImplementations: []int{1},
				},
			},
		}
		return cfg
	}

	run := func() Summary {
		s, err := New(build())
		if err != nil {
			t.Fatal(err)
		}
		result, err := s.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return result.Summary
	}

	a, b := run(), run()
	if a.TasksAccepted != b.TasksAccepted || a.TasksRejected != b.TasksRejected ||
		a.TasksCompleted != b.TasksCompleted || a.EnergyKWh != b.EnergyKWh ||
		a.WaitTime.Mean != b.WaitTime.Mean || a.ResponseTime.P95 != b.ResponseTime.P95 {
		t.Errorf("identically seeded runs diverged:\n%+v\n%+v", a, b)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	cfg := testConfig()
	cfg.Tasks = []config.Task{quickTask(1e6)} // keeps Done() false

	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := s.Run(ctx)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil {
		t.Fatal("expected a partial result on cancellation")
	}
}

func TestRemoteStrategyRequiresAllocator(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Strategy = config.StrategyRemote
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for remote strategy without allocator config")
	}
}

func TestCompletionQueueOrdering(t *testing.T) {
	cq := newCompletionQueue()
	mk := func(id int, at float64) broker.Admission {
		return broker.Admission{Task: &models.Task{ID: id}, CompletionTime: at}
	}
	cq.Schedule(mk(3, 5.0))
	cq.Schedule(mk(1, 2.0))
	cq.Schedule(mk(2, 5.0))

	if adm := cq.PopDue(1.0); adm != nil {
		t.Fatalf("nothing should be due at t=1, got task %d", adm.Task.ID)
	}
	order := []int{}
	for {
		adm := cq.PopDue(10.0)
		if adm == nil {
			break
		}
		order = append(order, adm.Task.ID)
	}
	want := []int{1, 2, 3}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected release order %v, got %v", want, order)
		}
	}
}
