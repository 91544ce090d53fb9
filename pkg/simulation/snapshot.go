package simulation

import (
	"github.com/lao-tseu-is-alive/go-boids/pkg/flock"
	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
	"github.com/paulmach/orb"
)

// WorldSnapshot is a detached copy of one tick, safe to hand to the UI.
type WorldSnapshot struct {
	Tick   uint64
	Agents []flock.Agent
	Bounds orb.Bound
	Walls  []orb.Bound // empty unless ray avoidance is active
}

// Summary reduces the snapshot to a few numbers.
func (s *WorldSnapshot) Summary() Summary {
	sum := Summary{Tick: s.Tick, Population: len(s.Agents)}
	var mean geometry.Vector2D
	for i := range s.Agents {
		if s.Agents[i].Avoiding {
			sum.Avoiding++
		}
		mean = mean.Add(s.Agents[i].Heading)
	}
	if len(s.Agents) > 0 {
		sum.Polarization = mean.Div(float64(len(s.Agents))).Len()
	}
	return sum
}

// Find returns the index of agent id in Agents, or -1.
func (s *WorldSnapshot) Find(id flock.AgentID) int {
	for i := range s.Agents {
		if s.Agents[i].ID == id {
			return i
		}
	}
	return -1
}
