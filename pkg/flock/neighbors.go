package flock

import (
	"math"
	"slices"
)

// NeighborQuery finds the agents around a given one in a tick snapshot.
//
// Rebuild is called once per tick with the snapshot, before any query.
// Neighbors appends to dst the snapshot indices of every agent other than
// snapshot[self] whose distance to it is <= radius, in ascending order.
// Queries must not mutate anything and must be safe for concurrent use
// between two Rebuild calls.
type NeighborQuery interface {
	Rebuild(snapshot []Agent)
	Neighbors(snapshot []Agent, self int, radius float64, dst []int) []int
}

// BruteForce scans every pair. Good enough for tens to low hundreds of agents.
type BruteForce struct{}

func (BruteForce) Rebuild([]Agent) {}

func (BruteForce) Neighbors(snapshot []Agent, self int, radius float64, dst []int) []int {
	me := snapshot[self]
	radiusSq := radius * radius
	for j := range snapshot {
		if snapshot[j].ID == me.ID {
			continue
		}
		if me.Position.DistanceSquaredTo(snapshot[j].Position) <= radiusSq {
			dst = append(dst, j)
		}
	}
	return dst
}

type gridKey struct {
	x, y int
}

// Grid is a uniform spatial hash over the snapshot. Any query radius works:
// the scan covers every cell the radius can reach.
type Grid struct {
	CellSize float64
	cells    map[gridKey][]int
}

// NewGrid creates a grid. The largest rule radius is a good cell size.
func NewGrid(cellSize float64) *Grid {
	return &Grid{
		// Clamp to a minimum of 10 to avoid tiny grids or div by zero
		CellSize: math.Max(cellSize, 10),
		cells:    make(map[gridKey][]int),
	}
}

func (g *Grid) cellOf(x, y float64) gridKey {
	return gridKey{x: int(math.Floor(x / g.CellSize)), y: int(math.Floor(y / g.CellSize))}
}

// Rebuild re-buckets the snapshot. Slices are reset to length 0 and keep their
// capacity, so a steady population allocates almost nothing per tick.
func (g *Grid) Rebuild(snapshot []Agent) {
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
	for i := range snapshot {
		key := g.cellOf(snapshot[i].Position.X, snapshot[i].Position.Y)
		g.cells[key] = append(g.cells[key], i)
	}
}

func (g *Grid) Neighbors(snapshot []Agent, self int, radius float64, dst []int) []int {
	me := snapshot[self]
	radiusSq := radius * radius
	lo := g.cellOf(me.Position.X-radius, me.Position.Y-radius)
	hi := g.cellOf(me.Position.X+radius, me.Position.Y+radius)

	start := len(dst)
	for gx := lo.x; gx <= hi.x; gx++ {
		for gy := lo.y; gy <= hi.y; gy++ {
			for _, j := range g.cells[gridKey{x: gx, y: gy}] {
				if snapshot[j].ID == me.ID {
					continue
				}
				if me.Position.DistanceSquaredTo(snapshot[j].Position) <= radiusSq {
					dst = append(dst, j)
				}
			}
		}
	}
	// Same order as BruteForce, so rule sums do not depend on the query.
	slices.Sort(dst[start:])
	return dst
}
