package simulation

import (
	"math/rand/v2"
	"testing"

	"github.com/lao-tseu-is-alive/go-boids/pkg/flock"
	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
	"github.com/paulmach/orb"
)

func TestTileWorld(t *testing.T) {
	bounds := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{600, 300}}

	tests := []struct {
		name  string
		n     int
		first geometry.Vector2D
		last  geometry.Vector2D
	}{
		{"Single agent still uses a 2x2 grid", 1, geometry.Vector2D{X: 150, Y: 75}, geometry.Vector2D{X: 150, Y: 75}},
		{"Perfect square", 4, geometry.Vector2D{X: 150, Y: 75}, geometry.Vector2D{X: 450, Y: 225}},
		{"Partial last row", 5, geometry.Vector2D{X: 100, Y: 50}, geometry.Vector2D{X: 300, Y: 150}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TileWorld(bounds, tt.n)
			if len(got) != tt.n {
				t.Fatalf("Expected %d positions, got %d", tt.n, len(got))
			}
			if !got[0].Eq(tt.first) {
				t.Errorf("Expected first tile at %v, got %v", tt.first, got[0])
			}
			if !got[len(got)-1].Eq(tt.last) {
				t.Errorf("Expected last tile at %v, got %v", tt.last, got[len(got)-1])
			}
		})
	}

	if got := TileWorld(bounds, 0); got != nil {
		t.Errorf("Expected no positions for n=0, got %v", got)
	}
}

func TestTileWorld_DistinctAndInside(t *testing.T) {
	bounds := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1000, 800}}
	positions := TileWorld(bounds, 97)

	seen := make(map[geometry.Vector2D]bool)
	for _, p := range positions {
		if seen[p] {
			t.Errorf("Duplicate position %v", p)
		}
		seen[p] = true
		if !bounds.Contains(orb.Point{p.X, p.Y}) {
			t.Errorf("Position %v outside %v", p, bounds)
		}
	}
}

func TestPopulate(t *testing.T) {
	cfg := DefaultConfig()
	f, err := cfg.NewFlock()
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewPCG(1, 2))

	next, err := Populate(f, TileWorld(cfg.Bounds(), 9), cfg.Settings(), rng, 100)
	if err != nil {
		t.Fatalf("Populate returned error: %v", err)
	}
	if next != 109 {
		t.Errorf("Expected next id 109, got %d", next)
	}
	if f.Len() != 9 {
		t.Errorf("Expected 9 agents, got %d", f.Len())
	}
	for id := flock.AgentID(100); id < 109; id++ {
		a, ok := f.Agent(id)
		if !ok {
			t.Fatalf("Expected agent %d", id)
		}
		if a.Speed != cfg.Speed || a.Cohesion.Radius != cfg.Cohesion.Radius {
			t.Errorf("agent %d: expected configured motion and rules, got %+v", id, a)
		}
		if !a.Heading.Eq(a.Heading.Normalize()) {
			t.Errorf("agent %d: heading is not a unit vector: %v", id, a.Heading)
		}
	}
}

func TestRandomPositions_StayInsideMargin(t *testing.T) {
	bounds := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{200, 100}}
	inner := orb.Bound{Min: orb.Point{20, 20}, Max: orb.Point{180, 80}}
	rng := rand.New(rand.NewPCG(3, 4))

	for _, p := range randomPositions(bounds, 20, 500, rng) {
		if !inner.Contains(orb.Point{p.X, p.Y}) {
			t.Fatalf("Position %v outside the inner box %v", p, inner)
		}
	}
}
