// Package alloc defines the JSON protocol between the simulator and an
// external allocation service, plus the built-in energy-aware allocator that
// speaks it.
package alloc

// HardwareType describes one class of server to the allocator, power
// profile included so the service can price candidate placements.
type HardwareType struct {
	TypeID                int       `json:"hw_type_id"`
	NumServers            int       `json:"num_servers"`
	ProcessorsPerServer   float64   `json:"processors_per_server"`
	MemoryPerServer       float64   `json:"memory_per_server"`
	StoragePerServer      float64   `json:"storage_per_server"`
	AcceleratorsPerServer float64   `json:"accelerators_per_server"`
	CompCapPerProc        float64   `json:"comp_cap_per_proc"`
	CompCapPerAcc         float64   `json:"comp_cap_per_acc"`
	CPUUtilizationBins    []float64 `json:"cpu_utilization_bins"`
	CPUPowerValues        []float64 `json:"cpu_power_values"`
	AcceleratorPeakPower  float64   `json:"accelerator_peak_power"`
}

// ResourceAvailability is aggregate headroom of one hardware type in a cell
type ResourceAvailability struct {
	Processors   float64 `json:"cpu"`
	Memory       float64 `json:"memory"`
	Storage      float64 `json:"storage"`
	Accelerators float64 `json:"accelerators"`
}

// ResourceUtilization is the allocated fraction of one hardware type's
// aggregate capacity in a cell, per dimension (0.0-1.0)
type ResourceUtilization struct {
	Processors   float64 `json:"cpu"`
	Memory       float64 `json:"memory"`
	Storage      float64 `json:"storage"`
	Accelerators float64 `json:"accelerators"`
}

// CellStatus is the allocator's view of one cell
type CellStatus struct {
	CellID           int                          `json:"cell_id"`
	NetworkAvailable float64                      `json:"network_available"`
	HardwareTypes    []HardwareType               `json:"hw_types"`
	Available        map[int]ResourceAvailability `json:"available_resources"`
	Utilization      map[int]ResourceUtilization  `json:"current_utilization"`
}

// TaskRequirements describes the task awaiting an allocation decision
type TaskRequirements struct {
	TaskID                   int     `json:"task_id"`
	NumVMs                   int     `json:"num_vms"`
	ProcessorsPerVM          float64 `json:"vcpus_per_vm"`
	MemoryPerVM              float64 `json:"memory_per_vm"`
	StoragePerVM             float64 `json:"storage_per_vm"`
	AcceleratorsPerVM        float64 `json:"accelerators_per_vm"`
	NetworkBandwidth         float64 `json:"network_bandwidth"`
	ProcessorUtilization     float64 `json:"processor_utilization"`
	AcceleratorUtilization   float64 `json:"accelerator_utilization"`
	AvailableImplementations []int   `json:"available_implementations"`
	EstimatedDuration        float64 `json:"estimated_duration,omitempty"`
}

// AllocationRequest is the body of POST /v1/allocate
type AllocationRequest struct {
	Timestamp float64          `json:"timestamp"`
	Cells     []CellStatus     `json:"cells"`
	Task      TaskRequirements `json:"task"`
}

// AllocationDecision is the allocator's answer: a target cell and hardware
// type, or a rejection with a reason. Server-level placement stays with the
// caller.
type AllocationDecision struct {
	Success            bool    `json:"success"`
	CellID             int     `json:"cell_id,omitempty"`
	TypeID             int     `json:"hw_type_id,omitempty"`
	EstimatedEnergyKWh float64 `json:"estimated_energy_cost,omitempty"`
	Reason             string  `json:"reason,omitempty"`
	Method             string  `json:"allocation_method"`
	Timestamp          float64 `json:"timestamp"`
}

// Compatible reports whether the task may run on the given hardware type
func (t *TaskRequirements) Compatible(typeID int) bool {
	for _, impl := range t.AvailableImplementations {
		if impl == typeID {
			return true
		}
	}
	return false
}
