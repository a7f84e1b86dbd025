package config

// Config is the root simulation configuration
type Config struct {
	Simulation    Simulation     `json:"simulation" yaml:"simulation"`
	Broker        Broker         `json:"broker" yaml:"broker"`
	Network       Network        `json:"network" yaml:"network"`
	ResourceTypes []ResourceType `json:"resource_types" yaml:"resource_types"`
	Tasks         []Task         `json:"tasks" yaml:"tasks"`
	Workload      *Workload      `json:"workload,omitempty" yaml:"workload,omitempty"`
	Allocator     *Allocator     `json:"allocator,omitempty" yaml:"allocator,omitempty"`
	LogLevel      string         `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// Simulation holds clock parameters, in simulated seconds
type Simulation struct {
	MaxTime        float64 `json:"max_time" yaml:"max_time"`
	UpdateInterval float64 `json:"update_interval" yaml:"update_interval"`
}

// Broker holds admission-control parameters
type Broker struct {
	// PollInterval is the period between refreshes of the broker's cached
	// resource view. Decisions between refreshes run against a stale snapshot.
	PollInterval float64 `json:"poll_interval" yaml:"poll_interval"`
	// Strategy selects the allocation policy: "first_fit" (default) or "remote"
	Strategy string `json:"strategy,omitempty" yaml:"strategy,omitempty"`
}

// Network holds the cell-shared bandwidth pool size
type Network struct {
	TotalBandwidth float64 `json:"total_bandwidth" yaml:"total_bandwidth"`
}

// Power describes the power curve of a resource type. IdlePower and
// PeakPowerCPU define the default two-breakpoint curve; a full piecewise
// table may be given instead via CPUUtilizationBins/CPUPowerValues.
type Power struct {
	IdlePower          float64   `json:"idle_power" yaml:"idle_power"`
	PeakPowerCPU       float64   `json:"peak_power_cpu" yaml:"peak_power_cpu"`
	PeakPowerAcc       float64   `json:"peak_power_acc" yaml:"peak_power_acc"`
	CPUUtilizationBins []float64 `json:"cpu_utilization_bins,omitempty" yaml:"cpu_utilization_bins,omitempty"`
	CPUPowerValues     []float64 `json:"cpu_power_values,omitempty" yaml:"cpu_power_values,omitempty"`
}

// ResourceType is one immutable class of server
type ResourceType struct {
	Type                     int     `json:"type" yaml:"type"`
	NumResources             int     `json:"num_resources" yaml:"num_resources"`
	TotalProcessors          float64 `json:"total_processors" yaml:"total_processors"`
	TotalMemory              float64 `json:"total_memory" yaml:"total_memory"`
	TotalStorage             float64 `json:"total_storage" yaml:"total_storage"`
	TotalAccelerators        int     `json:"total_accelerators" yaml:"total_accelerators"`
	CompCapPerProc           float64 `json:"comp_cap_per_proc" yaml:"comp_cap_per_proc"`
	CompCapPerAcc            float64 `json:"comp_cap_per_acc" yaml:"comp_cap_per_acc"`
	OvercommitmentProcessors float64 `json:"overcommitment_processors" yaml:"overcommitment_processors"`
	Power                    Power   `json:"power" yaml:"power"`
}

// Task is one workload descriptor from the input file
type Task struct {
	ProcessorsPerVM          float64 `json:"processors_per_vm" yaml:"processors_per_vm"`
	MemoryPerVM              float64 `json:"memory_per_vm" yaml:"memory_per_vm"`
	NetworkBandwidth         float64 `json:"network_bandwidth" yaml:"network_bandwidth"`
	StoragePerVM             float64 `json:"storage_per_vm" yaml:"storage_per_vm"`
	AcceleratorsPerVM        int     `json:"accelerators_per_vm" yaml:"accelerators_per_vm"`
	NumVMs                   int     `json:"num_vms" yaml:"num_vms"`
	TotalInstructions        float64 `json:"total_instructions" yaml:"total_instructions"`
	ProcessorUtilization     float64 `json:"processor_utilization" yaml:"processor_utilization"`
	MemoryUtilization        float64 `json:"memory_utilization" yaml:"memory_utilization"`
	StorageUtilization       float64 `json:"storage_utilization" yaml:"storage_utilization"`
	AcceleratorUtilization   float64 `json:"accelerator_utilization" yaml:"accelerator_utilization"`
	AvailableImplementations []int   `json:"available_implementations" yaml:"available_implementations"`
	ArrivalTime              float64 `json:"arrival_time" yaml:"arrival_time"`
}

// WorkloadClass is a min/max demand envelope for synthetic task generation
type WorkloadClass struct {
	MinVMs                   int     `json:"min_vms" yaml:"min_vms"`
	MaxVMs                   int     `json:"max_vms" yaml:"max_vms"`
	MinInstructions          float64 `json:"min_instructions" yaml:"min_instructions"`
	MaxInstructions          float64 `json:"max_instructions" yaml:"max_instructions"`
	MinProcessorsPerVM       float64 `json:"min_processors_per_vm" yaml:"min_processors_per_vm"`
	MaxProcessorsPerVM       float64 `json:"max_processors_per_vm" yaml:"max_processors_per_vm"`
	MinMemoryPerVM           float64 `json:"min_memory_per_vm" yaml:"min_memory_per_vm"`
	MaxMemoryPerVM           float64 `json:"max_memory_per_vm" yaml:"max_memory_per_vm"`
	MinStoragePerVM          float64 `json:"min_storage_per_vm" yaml:"min_storage_per_vm"`
	MaxStoragePerVM          float64 `json:"max_storage_per_vm" yaml:"max_storage_per_vm"`
	MinNetworkBandwidth      float64 `json:"min_network_bandwidth" yaml:"min_network_bandwidth"`
	MaxNetworkBandwidth      float64 `json:"max_network_bandwidth" yaml:"max_network_bandwidth"`
	AcceleratorsPerVM        int     `json:"accelerators_per_vm" yaml:"accelerators_per_vm"`
	ProcessorUtilization     float64 `json:"processor_utilization" yaml:"processor_utilization"`
	MemoryUtilization        float64 `json:"memory_utilization" yaml:"memory_utilization"`
	StorageUtilization       float64 `json:"storage_utilization" yaml:"storage_utilization"`
	AcceleratorUtilization   float64 `json:"accelerator_utilization" yaml:"accelerator_utilization"`
	AvailableImplementations []int   `json:"available_implementations" yaml:"available_implementations"`
}

// Workload configures synthetic task generation in place of an explicit
// task list
type Workload struct {
	Seed     int64           `json:"seed" yaml:"seed"`
	NumTasks int             `json:"num_tasks" yaml:"num_tasks"`
	Arrival  string          `json:"arrival" yaml:"arrival"` // "uniform" or "poisson"
	RatePerS float64         `json:"rate_per_s" yaml:"rate_per_s"`
	Classes  []WorkloadClass `json:"classes" yaml:"classes"`
}

// Allocator configures the remote allocation strategy endpoint
type Allocator struct {
	Endpoint  string  `json:"endpoint" yaml:"endpoint"`
	TimeoutMs float64 `json:"timeout_ms" yaml:"timeout_ms"`
}
