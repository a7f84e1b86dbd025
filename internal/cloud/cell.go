package cloud

import (
	"fmt"
	"sort"

	"github.com/kostasthomson/cloud-simulator/pkg/config"
)

// Cell aggregates resource pools and one shared network pool. A task's VMs
// may span servers but never cells.
type Cell struct {
	id      int
	network *NetworkPool
	pools   map[int]*ResourcePool
	types   []int // pool resource type ids, ascending
}

// NewCell builds a cell with one pool per resource type
func NewCell(id int, network *NetworkPool, pools []*ResourcePool) *Cell {
	c := &Cell{
		id:      id,
		network: network,
		pools:   make(map[int]*ResourcePool, len(pools)),
	}
	for _, p := range pools {
		c.pools[p.Type().ID] = p
		c.types = append(c.types, p.Type().ID)
	}
	sort.Ints(c.types)
	return c
}

// NewCellFromConfig builds a cell with its pools and network from config
func NewCellFromConfig(id int, cfg *config.Config) *Cell {
	pools := make([]*ResourcePool, 0, len(cfg.ResourceTypes))
	for _, rtCfg := range cfg.ResourceTypes {
		pools = append(pools, NewResourcePool(NewResourceType(rtCfg)))
	}
	return NewCell(id, NewNetworkPool(cfg.Network.TotalBandwidth), pools)
}

// ID returns the cell id
func (c *Cell) ID() int {
	return c.id
}

// Network returns the cell's shared network pool
func (c *Cell) Network() *NetworkPool {
	return c.network
}

// Types returns the cell's resource type ids in ascending order
func (c *Cell) Types() []int {
	return c.types
}

// Pool returns the pool of the given resource type
func (c *Cell) Pool(resourceType int) (*ResourcePool, error) {
	p, ok := c.pools[resourceType]
	if !ok {
		return nil, fmt.Errorf("cell %d has no resource type %d", c.id, resourceType)
	}
	return p, nil
}

// HasType reports whether the cell hosts the given resource type
func (c *Cell) HasType(resourceType int) bool {
	_, ok := c.pools[resourceType]
	return ok
}
