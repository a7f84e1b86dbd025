package alloc

import (
	"github.com/kostasthomson/cloud-simulator/internal/power"
	"github.com/kostasthomson/cloud-simulator/pkg/logger"
)

const (
	// MethodHeuristic identifies the built-in energy-aware strategy
	MethodHeuristic = "heuristic_energy_aware"

	// defaultDuration prices a task with no duration estimate at one hour
	defaultDuration = 3600.0

	// defaultCPUUtilization is assumed when the task reports none
	defaultCPUUtilization = 0.8
)

// HeuristicAllocator scores every compatible (cell, hardware type) pair by
// estimated energy cost weighted against how loaded the pool already is,
// and picks the cheapest. Lower score wins; ties go to the earliest
// candidate in cell order.
type HeuristicAllocator struct {
	allocations int
	rejections  int
}

// NewHeuristicAllocator returns a fresh allocator with zeroed counters
func NewHeuristicAllocator() *HeuristicAllocator {
	return &HeuristicAllocator{}
}

type candidate struct {
	cellID    int
	typeID    int
	energyKWh float64
	score     float64
}

// Allocate implements the decision logic for one request
func (a *HeuristicAllocator) Allocate(req *AllocationRequest) AllocationDecision {
	a.allocations++

	var best *candidate
	for ci := range req.Cells {
		cell := &req.Cells[ci]
		if cell.NetworkAvailable < req.Task.NetworkBandwidth {
			continue
		}
		for hi := range cell.HardwareTypes {
			hw := &cell.HardwareTypes[hi]
			if !req.Task.Compatible(hw.TypeID) {
				continue
			}
			avail, ok := cell.Available[hw.TypeID]
			if !ok || !sufficient(&req.Task, avail) {
				continue
			}

			energy := estimateEnergy(&req.Task, hw)
			efficiency := efficiencyScore(hw, avail)
			c := candidate{
				cellID:    cell.CellID,
				typeID:    hw.TypeID,
				energyKWh: energy,
				score:     energy * (2.0 - efficiency),
			}
			if best == nil || c.score < best.score {
				best = &c
			}
		}
	}

	if best == nil {
		a.rejections++
		logger.Warn("allocation rejected", "task_id", req.Task.TaskID)
		return AllocationDecision{
			Success:   false,
			Reason:    "no suitable resources available in any cell",
			Method:    MethodHeuristic,
			Timestamp: req.Timestamp,
		}
	}

	logger.Info("allocation decided",
		"task_id", req.Task.TaskID, "cell", best.cellID,
		"type", best.typeID, "energy_kwh", best.energyKWh)
	return AllocationDecision{
		Success:            true,
		CellID:             best.cellID,
		TypeID:             best.typeID,
		EstimatedEnergyKWh: best.energyKWh,
		Method:             MethodHeuristic,
		Timestamp:          req.Timestamp,
	}
}

// Statistics returns lifetime counters of the allocator
func (a *HeuristicAllocator) Statistics() map[string]any {
	success := 0.0
	if a.allocations > 0 {
		success = float64(a.allocations-a.rejections) / float64(a.allocations) * 100.0
	}
	return map[string]any{
		"total_allocations": a.allocations,
		"rejections":        a.rejections,
		"success_rate":      success,
	}
}

// sufficient checks aggregate headroom against the task's total demand.
// Aggregates can accept what per-server placement later refuses; the caller
// owns that final check.
func sufficient(task *TaskRequirements, avail ResourceAvailability) bool {
	n := float64(task.NumVMs)
	return avail.Processors >= n*task.ProcessorsPerVM &&
		avail.Memory >= n*task.MemoryPerVM &&
		avail.Storage >= n*task.StoragePerVM &&
		avail.Accelerators >= n*task.AcceleratorsPerVM
}

// estimateEnergy prices the task on the given hardware in kWh
func estimateEnergy(task *TaskRequirements, hw *HardwareType) float64 {
	duration := task.EstimatedDuration
	if duration <= 0 {
		duration = defaultDuration
	}
	cpuUtil := task.ProcessorUtilization
	if cpuUtil <= 0 {
		cpuUtil = defaultCPUUtilization
	}

	watts := power.Interpolate(cpuUtil, hw.CPUUtilizationBins, hw.CPUPowerValues)
	if task.AcceleratorsPerVM > 0 {
		watts += task.AcceleratorUtilization * hw.AcceleratorPeakPower
	}
	return power.EnergyKWh(watts, duration)
}

// efficiencyScore rates a pool by its availability ratios: CPU and memory
// weighted equally, with a 40/40/20 split when the hardware carries
// accelerators. Higher means emptier.
func efficiencyScore(hw *HardwareType, avail ResourceAvailability) float64 {
	n := float64(hw.NumServers)
	totalCPU := n * hw.ProcessorsPerServer
	totalMem := n * hw.MemoryPerServer
	totalAcc := n * hw.AcceleratorsPerServer

	cpuRatio := ratio(avail.Processors, totalCPU)
	memRatio := ratio(avail.Memory, totalMem)

	if totalAcc > 0 {
		accRatio := ratio(avail.Accelerators, totalAcc)
		return 0.4*cpuRatio + 0.4*memRatio + 0.2*accRatio
	}
	return (cpuRatio + memRatio) / 2.0
}

func ratio(avail, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return avail / total
}
