package cloud

import (
	"fmt"

	"github.com/kostasthomson/cloud-simulator/pkg/models"
)

// ResourcePool is the set of server instances of one resource type
type ResourcePool struct {
	resourceType *ResourceType
	servers      []*Server
}

// NewResourcePool creates numServers identical servers of the given type
func NewResourcePool(rt *ResourceType) *ResourcePool {
	servers := make([]*Server, rt.NumServers)
	for i := range servers {
		servers[i] = NewServer(i, rt.Capacity)
	}
	return &ResourcePool{resourceType: rt, servers: servers}
}

// Type returns the pool's resource type
func (p *ResourcePool) Type() *ResourceType {
	return p.resourceType
}

// Servers returns the pool's servers in ascending id order
func (p *ResourcePool) Servers() []*Server {
	return p.servers
}

// Server returns the server with the given id
func (p *ResourcePool) Server(id int) (*Server, error) {
	if id < 0 || id >= len(p.servers) {
		return nil, fmt.Errorf("%w: type %d server %d", ErrUnknownServer, p.resourceType.ID, id)
	}
	return p.servers[id], nil
}

// Reserve debits demand on the given server if it has headroom
func (p *ResourcePool) Reserve(serverID int, demand models.Demand) error {
	s, err := p.Server(serverID)
	if err != nil {
		return err
	}
	return s.Reserve(demand)
}

// Apply debits demand on the given server without a headroom check
func (p *ResourcePool) Apply(serverID int, demand models.Demand) error {
	s, err := p.Server(serverID)
	if err != nil {
		return err
	}
	s.Apply(demand)
	return nil
}

// Release credits demand back to the given server
func (p *ResourcePool) Release(serverID int, demand models.Demand) error {
	s, err := p.Server(serverID)
	if err != nil {
		return err
	}
	s.Release(demand)
	return nil
}

// ApplyUsage credits busy quantities to the given server's utilization ledger
func (p *ResourcePool) ApplyUsage(serverID int, usage models.Demand) error {
	s, err := p.Server(serverID)
	if err != nil {
		return err
	}
	s.ApplyUsage(usage)
	return nil
}

// ReleaseUsage debits busy quantities from the given server's utilization ledger
func (p *ResourcePool) ReleaseUsage(serverID int, usage models.Demand) error {
	s, err := p.Server(serverID)
	if err != nil {
		return err
	}
	s.ReleaseUsage(usage)
	return nil
}

// Totals returns the summed allocated and total capacity over all servers
func (p *ResourcePool) Totals() (allocated, total models.Demand) {
	for _, s := range p.servers {
		allocated = allocated.Add(s.Allocated())
		total = total.Add(s.Total())
	}
	return allocated, total
}

// ActiveServers returns the number of servers hosting at least one VM
func (p *ResourcePool) ActiveServers() int {
	n := 0
	for _, s := range p.servers {
		if s.Active() {
			n++
		}
	}
	return n
}

// RunningVMs returns the number of VMs across all servers
func (p *ResourcePool) RunningVMs() int {
	n := 0
	for _, s := range p.servers {
		n += s.RunningVMs()
	}
	return n
}
