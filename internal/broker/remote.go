package broker

import (
	"context"

	"github.com/kostasthomson/cloud-simulator/internal/alloc"
	"github.com/kostasthomson/cloud-simulator/internal/cloud"
	"github.com/kostasthomson/cloud-simulator/pkg/logger"
	"github.com/kostasthomson/cloud-simulator/pkg/models"
)

// Remote delegates the cell and hardware-type choice to an external
// allocation service, then pins the task's VMs to servers of that choice
// with the same first-fit scan the local strategy uses. Any transport
// failure rejects the task as "allocator unavailable"; there is no retry
// and no local fallback.
type Remote struct {
	client  *alloc.Client
	catalog []alloc.HardwareType
}

// NewRemote builds the remote strategy around a client and the hardware
// catalog advertised to the service
func NewRemote(client *alloc.Client, catalog []alloc.HardwareType) *Remote {
	return &Remote{client: client, catalog: catalog}
}

// Decide implements Strategy
func (r *Remote) Decide(ctx context.Context, task *models.Task, view *cloud.View) Decision {
	decision, err := r.client.Allocate(ctx, r.buildRequest(task, view))
	if err != nil {
		logger.Warn("remote allocator call failed", "task_id", task.ID, "error", err)
		return Reject(ReasonAllocator)
	}
	if !decision.Success {
		return Reject(ReasonCapacity)
	}

	cell := view.Cell(decision.CellID)
	if cell == nil || cell.Pool(decision.TypeID) == nil {
		logger.Warn("remote allocator chose unknown target",
			"task_id", task.ID, "cell", decision.CellID, "type", decision.TypeID)
		return Reject(ReasonCapacity)
	}
	if !task.Compatible(decision.TypeID) {
		return Reject(ReasonIncompatible)
	}
	if cell.Network.Available < task.NetworkBandwidth {
		return Reject(ReasonNetwork)
	}

	p := placeInCell(cell, []int{decision.TypeID}, task)
	if p == nil {
		// The service reasons about aggregates; per-server packing can
		// still come up short.
		return Reject(ReasonCapacity)
	}
	return Accept(p)
}

// allocatedFraction maps headroom to the allocated share of capacity
func allocatedFraction(available, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return (total - available) / total
}

// buildRequest projects the cached view and the task onto the wire types
func (r *Remote) buildRequest(task *models.Task, view *cloud.View) *alloc.AllocationRequest {
	cells := make([]alloc.CellStatus, 0, len(view.Cells))
	for ci := range view.Cells {
		cs := &view.Cells[ci]
		status := alloc.CellStatus{
			CellID:           cs.CellID,
			NetworkAvailable: cs.Network.Available,
			Available:        make(map[int]alloc.ResourceAvailability, len(cs.Pools)),
			Utilization:      make(map[int]alloc.ResourceUtilization, len(cs.Pools)),
		}
		for pi := range cs.Pools {
			pool := &cs.Pools[pi]
			var avail, total alloc.ResourceAvailability
			for si := range pool.Servers {
				a := pool.Servers[si].Available
				avail.Processors += a.Processors
				avail.Memory += a.Memory
				avail.Storage += a.Storage
				avail.Accelerators += a.Accelerators
				t := pool.Servers[si].Total
				total.Processors += t.Processors
				total.Memory += t.Memory
				total.Storage += t.Storage
				total.Accelerators += t.Accelerators
			}
			status.Available[pool.Type] = avail
			status.Utilization[pool.Type] = alloc.ResourceUtilization{
				Processors:   allocatedFraction(avail.Processors, total.Processors),
				Memory:       allocatedFraction(avail.Memory, total.Memory),
				Storage:      allocatedFraction(avail.Storage, total.Storage),
				Accelerators: allocatedFraction(avail.Accelerators, total.Accelerators),
			}
			for _, hw := range r.catalog {
				if hw.TypeID == pool.Type {
					status.HardwareTypes = append(status.HardwareTypes, hw)
					break
				}
			}
		}
		cells = append(cells, status)
	}

	return &alloc.AllocationRequest{
		Timestamp: view.Timestamp,
		Cells:     cells,
		Task: alloc.TaskRequirements{
			TaskID:                   task.ID,
			NumVMs:                   task.NumVMs,
			ProcessorsPerVM:          task.DemandPerVM.Processors,
			MemoryPerVM:              task.DemandPerVM.Memory,
			StoragePerVM:             task.DemandPerVM.Storage,
			AcceleratorsPerVM:        task.DemandPerVM.Accelerators,
			NetworkBandwidth:         task.NetworkBandwidth,
			ProcessorUtilization:     task.Utilization.Processors,
			AcceleratorUtilization:   task.Utilization.Accelerators,
			AvailableImplementations: task.AvailableImplementations,
		},
	}
}
