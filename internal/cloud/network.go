package cloud

import "sync"

// NetworkPool is the single bandwidth counter shared by a cell. Bandwidth is
// reserved once per task, not per VM.
type NetworkPool struct {
	mu sync.RWMutex

	total     float64
	allocated float64
}

// NewNetworkPool creates a pool with the given total bandwidth
func NewNetworkPool(total float64) *NetworkPool {
	return &NetworkPool{total: total}
}

// Total returns the pool's total bandwidth
func (n *NetworkPool) Total() float64 {
	return n.total
}

// Available returns total minus allocated bandwidth
func (n *NetworkPool) Available() float64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.total - n.allocated
}

// Allocated returns the allocated bandwidth
func (n *NetworkPool) Allocated() float64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.allocated
}

// Reserve debits amount if headroom exists
func (n *NetworkPool) Reserve(amount float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.total-n.allocated < amount {
		return ErrInsufficientBandwidth
	}
	n.allocated += amount
	return nil
}

// Apply debits amount without a headroom check
func (n *NetworkPool) Apply(amount float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.allocated += amount
}

// Release credits amount back to the pool
func (n *NetworkPool) Release(amount float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.allocated -= amount
}
