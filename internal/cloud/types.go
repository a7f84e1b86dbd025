// Package cloud holds the ground-truth capacity model: resource type
// catalog, server ledgers, the shared network pool, and cells.
package cloud

import (
	"errors"

	"github.com/kostasthomson/cloud-simulator/internal/power"
	"github.com/kostasthomson/cloud-simulator/pkg/config"
	"github.com/kostasthomson/cloud-simulator/pkg/models"
)

var (
	// ErrInsufficientCapacity is returned when a server lacks headroom in at
	// least one dimension. Expected condition, never fatal.
	ErrInsufficientCapacity = errors.New("insufficient capacity")

	// ErrInsufficientBandwidth is returned when the network pool lacks
	// headroom. Expected condition, never fatal.
	ErrInsufficientBandwidth = errors.New("insufficient bandwidth")

	// ErrUnknownServer is returned for an out-of-range server id
	ErrUnknownServer = errors.New("unknown server")
)

// ResourceType is an immutable catalog entry describing one class of server
type ResourceType struct {
	ID         int
	NumServers int

	// Capacity is the per-server allocatable total. Processors are virtual:
	// physical processors scaled by the overcommitment ratio.
	Capacity models.Demand

	// PhysicalProcessors is the unscaled processor count of one server
	PhysicalProcessors float64

	CompCapPerProc float64 // instructions/sec per virtual processor
	CompCapPerAcc  float64 // instructions/sec per accelerator
	Overcommitment float64 // >= 1.0

	PowerModel *power.Model
}

// NewResourceType builds a catalog entry from its configuration
func NewResourceType(cfg config.ResourceType) *ResourceType {
	var pm *power.Model
	if len(cfg.Power.CPUUtilizationBins) >= 2 {
		pm = power.New(cfg.Power.CPUUtilizationBins, cfg.Power.CPUPowerValues,
			0, cfg.Power.PeakPowerAcc)
	} else {
		pm = power.NewLinear(cfg.Power.IdlePower, cfg.Power.PeakPowerCPU,
			0, cfg.Power.PeakPowerAcc)
	}

	return &ResourceType{
		ID:         cfg.Type,
		NumServers: cfg.NumResources,
		Capacity: models.Demand{
			Processors:   cfg.TotalProcessors * cfg.OvercommitmentProcessors,
			Memory:       cfg.TotalMemory,
			Storage:      cfg.TotalStorage,
			Accelerators: float64(cfg.TotalAccelerators),
		},
		PhysicalProcessors: cfg.TotalProcessors,
		CompCapPerProc:     cfg.CompCapPerProc,
		CompCapPerAcc:      cfg.CompCapPerAcc,
		Overcommitment:     cfg.OvercommitmentProcessors,
		PowerModel:         pm,
	}
}
