// Package broker implements the admission-control state machine: FIFO queue,
// polling cache, pluggable allocation strategies, and all-or-nothing commit
// with rollback.
package broker

import (
	"context"

	"github.com/kostasthomson/cloud-simulator/internal/cloud"
	"github.com/kostasthomson/cloud-simulator/pkg/models"
)

// Rejection reasons. All rejections are terminal for a task.
const (
	ReasonIncompatible = "incompatible implementation"
	ReasonNetwork      = "insufficient network bandwidth"
	ReasonCapacity     = "insufficient capacity"
	ReasonAllocator    = "allocator unavailable"
)

// Decision is the outcome of one allocation attempt
type Decision struct {
	Placement *models.Placement
	Reason    string
}

// Accepted reports whether the decision carries a placement
func (d Decision) Accepted() bool {
	return d.Placement != nil
}

// Accept wraps a placement into an accepting decision
func Accept(p *models.Placement) Decision {
	return Decision{Placement: p}
}

// Reject builds a rejecting decision with the given reason
func Reject(reason string) Decision {
	return Decision{Reason: reason}
}

// Strategy decides where a task's VMs go. The view is a scratch copy of the
// broker's cached snapshot: a strategy stages tentative reservations by
// debiting it and may leave it in any state, the broker discards it after
// the attempt. Ground truth is never touched by a strategy.
type Strategy interface {
	Decide(ctx context.Context, task *models.Task, view *cloud.View) Decision
}

// compatibleTypes returns the cell's resource types present in the task's
// available implementations, ascending
func compatibleTypes(cell *cloud.CellState, task *models.Task) []int {
	var out []int
	for _, p := range cell.Pools {
		if task.Compatible(p.Type) {
			out = append(out, p.Type)
		}
	}
	return out
}
