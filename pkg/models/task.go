package models

// TaskState represents the lifecycle state of a task
type TaskState string

const (
	TaskStateQueued     TaskState = "queued"
	TaskStateAllocating TaskState = "allocating"
	TaskStateRunning    TaskState = "running"
	TaskStateCompleted  TaskState = "completed"
	TaskStateRejected   TaskState = "rejected"
)

// Demand is a per-VM resource requirement across all capacity dimensions.
// Accelerators are counted in whole units but carried as float64 so that
// ledger arithmetic is uniform across dimensions.
type Demand struct {
	Processors   float64 `json:"processors"`
	Memory       float64 `json:"memory"`
	Storage      float64 `json:"storage"`
	Accelerators float64 `json:"accelerators"`
}

// Add returns d + other per dimension
func (d Demand) Add(other Demand) Demand {
	return Demand{
		Processors:   d.Processors + other.Processors,
		Memory:       d.Memory + other.Memory,
		Storage:      d.Storage + other.Storage,
		Accelerators: d.Accelerators + other.Accelerators,
	}
}

// Sub returns d - other per dimension
func (d Demand) Sub(other Demand) Demand {
	return Demand{
		Processors:   d.Processors - other.Processors,
		Memory:       d.Memory - other.Memory,
		Storage:      d.Storage - other.Storage,
		Accelerators: d.Accelerators - other.Accelerators,
	}
}

// Scale returns d multiplied by n per dimension
func (d Demand) Scale(n float64) Demand {
	return Demand{
		Processors:   d.Processors * n,
		Memory:       d.Memory * n,
		Storage:      d.Storage * n,
		Accelerators: d.Accelerators * n,
	}
}

// Covers reports whether every dimension of d is at least the
// corresponding dimension of other
func (d Demand) Covers(other Demand) bool {
	return d.Processors >= other.Processors &&
		d.Memory >= other.Memory &&
		d.Storage >= other.Storage &&
		d.Accelerators >= other.Accelerators
}

// Utilization holds per-dimension utilization fractions of a task (0.0-1.0).
// These feed the power/energy model, not admission control.
type Utilization struct {
	Processors   float64 `json:"processors"`
	Memory       float64 `json:"memory"`
	Storage      float64 `json:"storage"`
	Accelerators float64 `json:"accelerators"`
}

// Of returns the portion of d actually busy at these fractions, per
// dimension. This is what the power model bills, as opposed to the full
// allocation the admission ledger debits.
func (u Utilization) Of(d Demand) Demand {
	return Demand{
		Processors:   d.Processors * u.Processors,
		Memory:       d.Memory * u.Memory,
		Storage:      d.Storage * u.Storage,
		Accelerators: d.Accelerators * u.Accelerators,
	}
}

// Task is an immutable multi-VM workload descriptor
type Task struct {
	ID                       int         `json:"id"`
	NumVMs                   int         `json:"num_vms"`
	DemandPerVM              Demand      `json:"demand_per_vm"`
	NetworkBandwidth         float64     `json:"network_bandwidth"`
	Utilization              Utilization `json:"utilization"`
	AvailableImplementations []int       `json:"available_implementations"`
	TotalInstructions        float64     `json:"total_instructions"`
	ArrivalTime              float64     `json:"arrival_time"`
}

// Compatible reports whether the task may run on the given resource type
func (t *Task) Compatible(resourceType int) bool {
	for _, impl := range t.AvailableImplementations {
		if impl == resourceType {
			return true
		}
	}
	return false
}

// VMPlacement binds one VM slot to a server of a resource type
type VMPlacement struct {
	ResourceType int `json:"resource_type"`
	ServerID     int `json:"server_id"`
}

// Placement is a committed mapping from a task's VM slots to servers of
// exactly one cell, plus the task-level network reservation. It is owned by
// the broker from commit until release.
type Placement struct {
	TaskID           int           `json:"task_id"`
	CellID           int           `json:"cell_id"`
	VMs              []VMPlacement `json:"vms"`
	NetworkBandwidth float64       `json:"network_bandwidth"`
}
