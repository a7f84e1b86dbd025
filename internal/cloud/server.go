package cloud

import (
	"sync"

	"github.com/kostasthomson/cloud-simulator/pkg/models"
)

// Server is one server instance with a per-dimension capacity ledger.
// Invariant under checked operation: 0 <= allocated <= total per dimension.
// Apply bypasses the headroom check: a broker working from a stale snapshot
// may commit more than a fresh view would admit, and that oversubscription
// is modeled cost, not an error.
type Server struct {
	mu sync.RWMutex

	id        int
	total     models.Demand
	allocated models.Demand
	utilized  models.Demand

	runningVMs int
}

// NewServer creates a server with the given id and capacity
func NewServer(id int, total models.Demand) *Server {
	return &Server{id: id, total: total}
}

// ID returns the server id
func (s *Server) ID() int {
	return s.id
}

// Total returns the per-dimension capacity
func (s *Server) Total() models.Demand {
	return s.total
}

// Available returns total minus allocated per dimension
func (s *Server) Available() models.Demand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total.Sub(s.allocated)
}

// Allocated returns the per-dimension allocation
func (s *Server) Allocated() models.Demand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allocated
}

// RunningVMs returns the number of VMs placed on this server
func (s *Server) RunningVMs() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runningVMs
}

// Active reports whether at least one VM is placed here
func (s *Server) Active() bool {
	return s.RunningVMs() > 0
}

// Fits reports whether every dimension has headroom for demand
func (s *Server) Fits(demand models.Demand) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total.Sub(s.allocated).Covers(demand)
}

// Reserve debits demand for one VM if every dimension has headroom. The
// reservation is atomic: either all dimensions are debited or none.
func (s *Server) Reserve(demand models.Demand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.total.Sub(s.allocated).Covers(demand) {
		return ErrInsufficientCapacity
	}
	s.allocated = s.allocated.Add(demand)
	s.runningVMs++
	return nil
}

// Apply debits demand for one VM without a headroom check
func (s *Server) Apply(demand models.Demand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allocated = s.allocated.Add(demand)
	s.runningVMs++
}

// Release credits demand of one VM back to the ledger
func (s *Server) Release(demand models.Demand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allocated = s.allocated.Sub(demand)
	if s.runningVMs > 0 {
		s.runningVMs--
	}
}

// Utilized returns the per-dimension quantities actually busy, as opposed
// to Allocated which includes the idle headroom of each VM
func (s *Server) Utilized() models.Demand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.utilized
}

// ApplyUsage credits one VM's busy quantities to the utilization ledger
func (s *Server) ApplyUsage(usage models.Demand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.utilized = s.utilized.Add(usage)
}

// ReleaseUsage debits one VM's busy quantities from the utilization ledger
func (s *Server) ReleaseUsage(usage models.Demand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.utilized = s.utilized.Sub(usage)
}

// CPULoad returns allocated virtual processors over physical processors.
// Values above 1.0 mean the server runs overcommitted.
func (s *Server) CPULoad(physicalProcessors float64) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if physicalProcessors <= 0 {
		return 0
	}
	return s.allocated.Processors / physicalProcessors
}
