package sim

import (
	"container/heap"

	"github.com/kostasthomson/cloud-simulator/internal/broker"
)

// completionQueue orders running tasks by their committed completion time,
// ties broken by task id for a deterministic release order
type completionQueue struct {
	items []broker.Admission
}

func newCompletionQueue() *completionQueue {
	cq := &completionQueue{}
	heap.Init(cq)
	return cq
}

func (cq *completionQueue) Len() int { return len(cq.items) }

func (cq *completionQueue) Less(i, j int) bool {
	if cq.items[i].CompletionTime != cq.items[j].CompletionTime {
		return cq.items[i].CompletionTime < cq.items[j].CompletionTime
	}
	return cq.items[i].Task.ID < cq.items[j].Task.ID
}

func (cq *completionQueue) Swap(i, j int) {
	cq.items[i], cq.items[j] = cq.items[j], cq.items[i]
}

func (cq *completionQueue) Push(x any) {
	cq.items = append(cq.items, x.(broker.Admission))
}

func (cq *completionQueue) Pop() any {
	old := cq.items
	n := len(old)
	item := old[n-1]
	cq.items = old[:n-1]
	return item
}

// Schedule adds a committed admission to the queue
func (cq *completionQueue) Schedule(adm broker.Admission) {
	heap.Push(cq, adm)
}

// PopDue removes and returns the next admission completing at or before
// now, or nil when none is due
func (cq *completionQueue) PopDue(now float64) *broker.Admission {
	if cq.Len() == 0 || cq.items[0].CompletionTime > now {
		return nil
	}
	adm := heap.Pop(cq).(broker.Admission)
	return &adm
}
