package flock

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func lineOfAgents() []Agent {
	// Agents on the X axis at 0, 5, 10, 15, 30
	xs := []float64{0, 5, 10, 15, 30}
	agents := make([]Agent, len(xs))
	for i, x := range xs {
		agents[i] = newTestAgent(AgentID(i), x, 0, 0, 10)
	}
	return agents
}

func TestNeighbors_RadiusIsInclusive(t *testing.T) {
	queries := map[string]NeighborQuery{
		"brute": BruteForce{},
		"grid":  NewGrid(10),
	}
	for name, q := range queries {
		t.Run(name, func(t *testing.T) {
			agents := lineOfAgents()
			q.Rebuild(agents)

			got := q.Neighbors(agents, 0, 10, nil)
			// 5 and exactly 10 away are in, 15 and 30 are out, self is skipped
			want := []int{1, 2}
			if !slices.Equal(got, want) {
				t.Errorf("Expected neighbors %v, got %v", want, got)
			}
		})
	}
}

func TestNeighbors_NoNeighbors(t *testing.T) {
	agents := lineOfAgents()
	got := BruteForce{}.Neighbors(agents, 4, 5, nil)
	if len(got) != 0 {
		t.Errorf("Expected no neighbors for the isolated agent, got %v", got)
	}
}

func TestNeighbors_Idempotent(t *testing.T) {
	agents := lineOfAgents()
	before := slices.Clone(agents)
	g := NewGrid(10)
	g.Rebuild(agents)

	first := g.Neighbors(agents, 2, 12, nil)
	second := g.Neighbors(agents, 2, 12, nil)

	if !slices.Equal(first, second) {
		t.Errorf("Expected identical neighbor sets, got %v then %v", first, second)
	}
	if !slices.Equal(before, agents) {
		t.Error("Expected the snapshot to be left untouched by queries")
	}
}

func TestGrid_MatchesBruteForce(t *testing.T) {
	// Negative coordinates included: cells must floor, not truncate.
	rng := rand.New(rand.NewPCG(1, 2))
	agents := make([]Agent, 200)
	for i := range agents {
		agents[i] = newTestAgent(AgentID(i), rng.Float64()*400-200, rng.Float64()*400-200, 0, 30)
	}

	grid := NewGrid(30)
	grid.Rebuild(agents)

	for _, radius := range []float64{5, 30, 75} {
		for i := range agents {
			want := BruteForce{}.Neighbors(agents, i, radius, nil)
			got := grid.Neighbors(agents, i, radius, nil)
			if !slices.Equal(got, want) {
				t.Fatalf("radius %v agent %d: grid %v, brute force %v", radius, i, got, want)
			}
		}
	}
}

func TestGrid_RebuildReusesCells(t *testing.T) {
	agents := lineOfAgents()
	g := NewGrid(10)
	g.Rebuild(agents)

	// Move everybody far away and rebuild: the old cells must be empty.
	for i := range agents {
		agents[i].Position.X += 1000
	}
	g.Rebuild(agents)

	if got := g.cells[gridKey{x: 0, y: 0}]; len(got) != 0 {
		t.Errorf("Expected cell 0,0 to be empty after rebuild, got %v", got)
	}
	if got := g.Neighbors(agents, 0, 10, nil); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("Expected neighbors [1 2] after rebuild, got %v", got)
	}
}

func BenchmarkBruteForce_Neighbors(b *testing.B) {
	agents := make([]Agent, 500)
	for i := range agents {
		agents[i] = newTestAgent(AgentID(i), float64(i%50)*10, float64(i/50)*10, 0, 30)
	}
	var dst []int
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dst = BruteForce{}.Neighbors(agents, i%len(agents), 30, dst[:0])
	}
}

func BenchmarkGrid_Neighbors(b *testing.B) {
	agents := make([]Agent, 500)
	for i := range agents {
		agents[i] = newTestAgent(AgentID(i), float64(i%50)*10, float64(i/50)*10, 0, 30)
	}
	g := NewGrid(30)
	g.Rebuild(agents)
	var dst []int
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dst = g.Neighbors(agents, i%len(agents), 30, dst[:0])
	}
}
