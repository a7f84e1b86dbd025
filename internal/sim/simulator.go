// Package sim drives the discrete-time loop: it advances the clock in fixed
// steps, feeds arrivals to the broker, releases finished tasks, and samples
// power draw along the way.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/kostasthomson/cloud-simulator/internal/alloc"
	"github.com/kostasthomson/cloud-simulator/internal/broker"
	"github.com/kostasthomson/cloud-simulator/internal/cloud"
	"github.com/kostasthomson/cloud-simulator/internal/workload"
	"github.com/kostasthomson/cloud-simulator/pkg/config"
	"github.com/kostasthomson/cloud-simulator/pkg/logger"
	"github.com/kostasthomson/cloud-simulator/pkg/models"
	"github.com/kostasthomson/cloud-simulator/pkg/utils"
)

// Simulator owns one run: the cells, the broker, the task stream, and the
// clock. It is not safe for concurrent use; each run gets its own instance.
type Simulator struct {
	cfg    *config.Config
	cells  []*cloud.Cell
	broker *broker.Broker
	stats  *Statistics

	tasks       []*models.Task
	nextArrival int

	completions *completionQueue

	now   float64
	steps int
}

// New builds a simulator from a validated configuration
func New(cfg *config.Config) (*Simulator, error) {
	cells := []*cloud.Cell{cloud.NewCellFromConfig(0, cfg)}

	strategy, err := buildStrategy(cfg)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:         cfg,
		cells:       cells,
		broker:      broker.New(cells, strategy, cfg.Broker.PollInterval),
		stats:       NewStatistics(),
		tasks:       workload.FromConfig(cfg),
		completions: newCompletionQueue(),
	}
	return s, nil
}

func buildStrategy(cfg *config.Config) (broker.Strategy, error) {
	switch cfg.Broker.Strategy {
	case config.StrategyRemote:
		if cfg.Allocator == nil {
			return nil, fmt.Errorf("remote strategy requires an allocator section")
		}
		timeout := time.Duration(cfg.Allocator.TimeoutMs) * time.Millisecond
		client := alloc.NewClient(cfg.Allocator.Endpoint, timeout)
		return broker.NewRemote(client, alloc.HardwareCatalog(cfg)), nil
	default:
		return broker.NewFirstFit(), nil
	}
}

// Now returns the current simulation time in seconds
func (s *Simulator) Now() float64 {
	return s.now
}

// Statistics exposes the run's accumulator
func (s *Simulator) Statistics() *Statistics {
	return s.stats
}

// Step executes one update interval at the current clock: release what
// finished, submit what arrived, let the broker decide, sample power draw
// over the interval, and only then advance the clock. A task arriving at
// t=0 is therefore admitted at t=0, not one interval later.
func (s *Simulator) Step(ctx context.Context) {
	for {
		adm := s.completions.PopDue(s.now)
		if adm == nil {
			break
		}
		if err := s.broker.Release(adm.Task.ID); err != nil {
			logger.Error("release failed", "task_id", adm.Task.ID, "error", err)
			continue
		}
		s.stats.RecordCompletion(adm.Task, adm.CompletionTime-adm.Task.ArrivalTime)
	}

	for s.nextArrival < len(s.tasks) && s.tasks[s.nextArrival].ArrivalTime <= s.now {
		task := s.tasks[s.nextArrival]
		s.nextArrival++
		s.stats.RecordSubmission(task)
		s.broker.Enqueue(task)
	}

	for _, adm := range s.broker.Tick(ctx, s.now, s.stats) {
		s.completions.Schedule(adm)
	}

	s.stats.RecordPowerSample(s.samplePower(), s.cfg.Simulation.UpdateInterval)

	s.now += s.cfg.Simulation.UpdateInterval
	s.steps++
}

// samplePower sums the instantaneous draw of every server from its busy
// quantities: a VM allocated at utilization 0.5 burns half the dynamic
// watts of one running flat out. Idle servers still burn their idle watts;
// accelerators draw their idle watts per allocated unit plus dynamic watts
// scaled by the hosted tasks' accelerator utilization.
func (s *Simulator) samplePower() float64 {
	total := 0.0
	for _, cell := range s.cells {
		for _, t := range cell.Types() {
			pool, err := cell.Pool(t)
			if err != nil {
				continue
			}
			rt := pool.Type()
			accIdle := rt.PowerModel.AccPower(0)
			accDyn := rt.PowerModel.AccPower(1.0) - accIdle
			for _, srv := range pool.Servers() {
				busy := srv.Utilized()
				u := 0.0
				if rt.PhysicalProcessors > 0 {
					u = utils.ClampFloat64(busy.Processors/rt.PhysicalProcessors, 0, 1)
				}
				total += rt.PowerModel.CPUPower(u)
				total += srv.Allocated().Accelerators*accIdle + busy.Accelerators*accDyn
			}
		}
	}
	return total
}

// Done reports whether the run has nothing further to simulate: either the
// clock ran out or the task stream is exhausted with no work in flight
func (s *Simulator) Done() bool {
	if s.now >= s.cfg.Simulation.MaxTime {
		return true
	}
	return s.nextArrival >= len(s.tasks) &&
		s.broker.QueueLength() == 0 &&
		s.broker.Running() == 0
}

// Run steps the simulation to completion, honoring cancellation between
// steps
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	logger.Info("simulation started",
		"max_time", s.cfg.Simulation.MaxTime,
		"update_interval", s.cfg.Simulation.UpdateInterval,
		"tasks", len(s.tasks))

	// Even an empty workload executes one interval so the run reports its
	// idle power draw instead of an all-zero summary.
	for {
		select {
		case <-ctx.Done():
			logger.Warn("simulation cancelled", "time", s.now)
			return s.Result(), ctx.Err()
		default:
		}
		s.Step(ctx)
		if s.Done() {
			break
		}
	}

	result := s.Result()
	logger.Info("simulation finished",
		"time", s.now, "steps", s.steps,
		"accepted", result.Summary.TasksAccepted,
		"rejected", result.Summary.TasksRejected,
		"energy_kwh", result.Summary.EnergyKWh)
	return result, nil
}

// Result snapshots the run's outcome at the current clock
func (s *Simulator) Result() *Result {
	return &Result{
		Config:       s.cfg,
		EndTime:      s.now,
		Steps:        s.steps,
		TasksInQueue: s.broker.QueueLength(),
		TasksRunning: s.broker.Running(),
		Summary:      s.stats.Summarize(),
		FinalState:   cloud.Snapshot(s.cells, s.now),
	}
}
