package broker

import (
	"context"

	"github.com/kostasthomson/cloud-simulator/internal/cloud"
	"github.com/kostasthomson/cloud-simulator/pkg/models"
)

// FirstFit scans cells in ascending id order and inside each cell places
// every VM on the first compatible server with headroom, lowest resource
// type first, lowest server id first. All VMs of a task land in the same
// cell; the cell's network bandwidth is checked before any server is
// considered. Failing one cell falls through to the next; failing them all
// rejects the task.
type FirstFit struct{}

// NewFirstFit returns the default allocation strategy
func NewFirstFit() *FirstFit {
	return &FirstFit{}
}

// Decide implements Strategy
func (f *FirstFit) Decide(_ context.Context, task *models.Task, view *cloud.View) Decision {
	reason := ReasonIncompatible
	for ci := range view.Cells {
		cell := &view.Cells[ci]
		types := compatibleTypes(cell, task)
		if len(types) == 0 {
			continue
		}
		if reason == ReasonIncompatible {
			reason = ReasonNetwork
		}
		if cell.Network.Available < task.NetworkBandwidth {
			continue
		}
		reason = ReasonCapacity
		if p := placeInCell(cell, types, task); p != nil {
			return Accept(p)
		}
	}
	return Reject(reason)
}

// placeInCell stages the whole task against the scratch cell state. On
// success the scratch debits stand and the placement is returned; on
// failure every staged debit is credited back and nil is returned.
func placeInCell(cell *cloud.CellState, types []int, task *models.Task) *models.Placement {
	cell.Network.Available -= task.NetworkBandwidth

	vms := make([]models.VMPlacement, 0, task.NumVMs)
	for vm := 0; vm < task.NumVMs; vm++ {
		placed := false
		for _, t := range types {
			pool := cell.Pool(t)
			for si := range pool.Servers {
				s := &pool.Servers[si]
				if !s.Available.Covers(task.DemandPerVM) {
					continue
				}
				s.Available = s.Available.Sub(task.DemandPerVM)
				vms = append(vms, models.VMPlacement{ResourceType: t, ServerID: s.ID})
				placed = true
				break
			}
			if placed {
				break
			}
		}
		if !placed {
			// Roll back everything staged in this cell, network included.
			for _, v := range vms {
				pool := cell.Pool(v.ResourceType)
				for si := range pool.Servers {
					if pool.Servers[si].ID == v.ServerID {
						pool.Servers[si].Available = pool.Servers[si].Available.Add(task.DemandPerVM)
						break
					}
				}
			}
			cell.Network.Available += task.NetworkBandwidth
			return nil
		}
	}
	return &models.Placement{
		TaskID:           task.ID,
		CellID:           cell.CellID,
		VMs:              vms,
		NetworkBandwidth: task.NetworkBandwidth,
	}
}
