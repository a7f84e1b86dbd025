package broker

import (
	"context"
	"fmt"

	"github.com/kostasthomson/cloud-simulator/internal/cloud"
	"github.com/kostasthomson/cloud-simulator/pkg/logger"
	"github.com/kostasthomson/cloud-simulator/pkg/models"
)

// Recorder receives terminal admission-control outcomes
type Recorder interface {
	RecordAdmission(task *models.Task, waitTime float64)
	RecordRejection(task *models.Task, reason string)
}

// nopRecorder is used when the caller passes no recorder
type nopRecorder struct{}

func (nopRecorder) RecordAdmission(*models.Task, float64) {}
func (nopRecorder) RecordRejection(*models.Task, string)  {}

// Admission is one committed task with its fixed completion time
type Admission struct {
	Task           *models.Task
	Placement      *models.Placement
	AdmittedAt     float64
	CompletionTime float64
}

// Broker admits tasks against a periodically refreshed snapshot of the
// cells. Between refreshes every decision is made on the stale cached view,
// so two tasks admitted inside one poll interval may both claim capacity
// that only one of them would see after a refresh. Commits therefore debit
// ground truth unconditionally; transient oversubscription is the modeled
// cost of polling instead of watching.
type Broker struct {
	cells    []*cloud.Cell
	cellByID map[int]*cloud.Cell
	strategy Strategy

	pollInterval float64
	lastPoll     float64
	cache        *cloud.View

	queue      []*models.Task
	states     map[int]models.TaskState
	placements map[int]commitRecord
}

// commitRecord is what Release needs to credit ground truth back
type commitRecord struct {
	placement *models.Placement
	demandVM  models.Demand
	usageVM   models.Demand
}

// New creates a broker over the given cells and takes the initial snapshot
// at time zero
func New(cells []*cloud.Cell, strategy Strategy, pollInterval float64) *Broker {
	b := &Broker{
		cells:        cells,
		cellByID:     make(map[int]*cloud.Cell, len(cells)),
		strategy:     strategy,
		pollInterval: pollInterval,
		states:       make(map[int]models.TaskState),
		placements:   make(map[int]commitRecord),
	}
	for _, c := range cells {
		b.cellByID[c.ID()] = c
	}
	b.cache = cloud.Snapshot(cells, 0)
	return b
}

// Enqueue appends a task to the tail of the FIFO admission queue
func (b *Broker) Enqueue(task *models.Task) {
	b.states[task.ID] = models.TaskStateQueued
	b.queue = append(b.queue, task)
}

// QueueLength returns the number of tasks awaiting an admission decision
func (b *Broker) QueueLength() int {
	return len(b.queue)
}

// TaskState returns the last known lifecycle state of a task
func (b *Broker) TaskState(taskID int) (models.TaskState, bool) {
	s, ok := b.states[taskID]
	return s, ok
}

// View returns the broker's current cached snapshot
func (b *Broker) View() *cloud.View {
	return b.cache
}

// Refresh replaces the cached view with a fresh snapshot of ground truth
func (b *Broker) Refresh(now float64) {
	b.cache = cloud.Snapshot(b.cells, now)
	b.lastPoll = now
	logger.Debug("broker cache refreshed", "time", now)
}

// Tick runs one admission pass at time now: refresh the cache if a poll
// boundary was crossed, then drain the queue front to back. Every queued
// task gets a terminal decision this pass; nothing is retried later.
func (b *Broker) Tick(ctx context.Context, now float64, rec Recorder) []Admission {
	if rec == nil {
		rec = nopRecorder{}
	}
	if now-b.lastPoll >= b.pollInterval {
		b.Refresh(now)
	}

	var admitted []Admission
	for _, task := range b.queue {
		b.states[task.ID] = models.TaskStateAllocating

		scratch := b.cache.Clone()
		d := b.strategy.Decide(ctx, task, scratch)
		if !d.Accepted() {
			b.states[task.ID] = models.TaskStateRejected
			rec.RecordRejection(task, d.Reason)
			logger.Info("task rejected",
				"task_id", task.ID, "reason", d.Reason, "time", now)
			continue
		}

		adm := b.commit(task, d.Placement, now)
		admitted = append(admitted, adm)
		rec.RecordAdmission(task, now-task.ArrivalTime)
		logger.Info("task admitted",
			"task_id", task.ID, "cell", d.Placement.CellID,
			"vms", len(d.Placement.VMs), "completion", adm.CompletionTime)
	}
	b.queue = b.queue[:0]
	return admitted
}

// commit applies a placement to ground truth. Debits are unchecked: the
// decision was taken on the cached view and stands even when ground truth
// has since moved under it.
func (b *Broker) commit(task *models.Task, p *models.Placement, now float64) Admission {
	cell := b.cellByID[p.CellID]
	usageVM := task.Utilization.Of(task.DemandPerVM)
	for _, vm := range p.VMs {
		pool, err := cell.Pool(vm.ResourceType)
		if err != nil {
			continue
		}
		_ = pool.Apply(vm.ServerID, task.DemandPerVM)
		_ = pool.ApplyUsage(vm.ServerID, usageVM)
	}
	cell.Network().Apply(p.NetworkBandwidth)

	b.placements[task.ID] = commitRecord{placement: p, demandVM: task.DemandPerVM, usageVM: usageVM}
	b.states[task.ID] = models.TaskStateRunning

	completion := now
	if rate := b.throughput(task, p); rate > 0 {
		completion = now + task.TotalInstructions/rate
	}
	return Admission{Task: task, Placement: p, AdmittedAt: now, CompletionTime: completion}
}

// throughput computes the task's aggregate instruction rate from ground
// truth right after commit. Each VM runs at the compute capacity of its
// slice, degraded by the hosting server's processor overload; the task
// advances at the pace of its slowest VM.
func (b *Broker) throughput(task *models.Task, p *models.Placement) float64 {
	cell := b.cellByID[p.CellID]
	slowest := 0.0
	for i, vm := range p.VMs {
		pool, err := cell.Pool(vm.ResourceType)
		if err != nil {
			return 0
		}
		srv, err := pool.Server(vm.ServerID)
		if err != nil {
			return 0
		}
		rt := pool.Type()

		factor := 1.0
		if load := srv.CPULoad(rt.PhysicalProcessors); load > 1.0 {
			factor = 1.0 / load
		}
		rate := rt.CompCapPerProc*task.DemandPerVM.Processors*task.Utilization.Processors*factor +
			rt.CompCapPerAcc*task.DemandPerVM.Accelerators*task.Utilization.Accelerators
		if i == 0 || rate < slowest {
			slowest = rate
		}
	}
	return slowest * float64(task.NumVMs)
}

// Release credits a committed placement back to ground truth. Each task is
// released at most once; releasing an unknown task is an error.
func (b *Broker) Release(taskID int) error {
	rec, ok := b.placements[taskID]
	if !ok {
		return fmt.Errorf("task %d has no committed placement", taskID)
	}
	delete(b.placements, taskID)

	p := rec.placement
	cell := b.cellByID[p.CellID]
	for _, vm := range p.VMs {
		pool, err := cell.Pool(vm.ResourceType)
		if err != nil {
			continue
		}
		_ = pool.Release(vm.ServerID, rec.demandVM)
		_ = pool.ReleaseUsage(vm.ServerID, rec.usageVM)
	}
	cell.Network().Release(p.NetworkBandwidth)
	b.states[taskID] = models.TaskStateCompleted
	return nil
}

// Running returns the number of tasks holding a committed placement
func (b *Broker) Running() int {
	return len(b.placements)
}
