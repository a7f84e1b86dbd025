package cloud

import (
	"github.com/kostasthomson/cloud-simulator/pkg/models"
)

// ServerState is the capacity of one server as seen at snapshot time
type ServerState struct {
	ID        int           `json:"id"`
	Available models.Demand `json:"available"`
	Total     models.Demand `json:"total"`
}

// PoolState is the snapshot of one resource pool
type PoolState struct {
	Type    int           `json:"type"`
	Servers []ServerState `json:"servers"`
}

// NetworkState is the snapshot of a network pool
type NetworkState struct {
	Available float64 `json:"available"`
	Total     float64 `json:"total"`
}

// CellState is the snapshot of one cell, pools ordered by ascending type id
type CellState struct {
	CellID  int          `json:"cell_id"`
	Network NetworkState `json:"network"`
	Pools   []PoolState  `json:"pools"`
}

// Pool returns the pool state of the given resource type, or nil
func (c *CellState) Pool(resourceType int) *PoolState {
	for i := range c.Pools {
		if c.Pools[i].Type == resourceType {
			return &c.Pools[i]
		}
	}
	return nil
}

// View is a timestamped snapshot of every cell's capacity, distinct from
// ground truth. The broker refreshes it only at poll boundaries and reasons
// about the stale copy in between; that staleness is deliberate.
type View struct {
	Timestamp float64     `json:"timestamp"`
	Cells     []CellState `json:"cells"`
}

// Snapshot captures ground truth of the given cells at time now. Cells are
// assumed ordered by ascending id; ordering inside the view follows the
// caller's ordering.
func Snapshot(cells []*Cell, now float64) *View {
	v := &View{Timestamp: now, Cells: make([]CellState, 0, len(cells))}
	for _, cell := range cells {
		cs := CellState{
			CellID: cell.ID(),
			Network: NetworkState{
				Available: cell.Network().Available(),
				Total:     cell.Network().Total(),
			},
		}
		for _, t := range cell.Types() {
			pool, err := cell.Pool(t)
			if err != nil {
				continue
			}
			ps := PoolState{Type: t, Servers: make([]ServerState, 0, len(pool.Servers()))}
			for _, s := range pool.Servers() {
				ps.Servers = append(ps.Servers, ServerState{
					ID:        s.ID(),
					Available: s.Available(),
					Total:     s.Total(),
				})
			}
			cs.Pools = append(cs.Pools, ps)
		}
		v.Cells = append(v.Cells, cs)
	}
	return v
}

// Clone returns a deep copy of the view for per-attempt scratch staging
func (v *View) Clone() *View {
	out := &View{Timestamp: v.Timestamp, Cells: make([]CellState, len(v.Cells))}
	for i, c := range v.Cells {
		cc := CellState{CellID: c.CellID, Network: c.Network, Pools: make([]PoolState, len(c.Pools))}
		for j, p := range c.Pools {
			pp := PoolState{Type: p.Type, Servers: make([]ServerState, len(p.Servers))}
			copy(pp.Servers, p.Servers)
			cc.Pools[j] = pp
		}
		out.Cells[i] = cc
	}
	return out
}

// Cell returns the state of the given cell id, or nil
func (v *View) Cell(cellID int) *CellState {
	for i := range v.Cells {
		if v.Cells[i].CellID == cellID {
			return &v.Cells[i]
		}
	}
	return nil
}
