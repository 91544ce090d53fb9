package simulation

import (
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-boids/pkg/flock"
	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
	"github.com/paulmach/orb"
)

// TileWorld lays a square grid of side max(2, ceil(sqrt(n))) over bounds and
// returns the centers of the first n cells, row by row. No two positions
// coincide.
func TileWorld(bounds orb.Bound, n int) []geometry.Vector2D {
	if n <= 0 {
		return nil
	}
	side := max(2, int(math.Ceil(math.Sqrt(float64(n)))))
	cellW := (bounds.Right() - bounds.Left()) / float64(side)
	cellH := (bounds.Top() - bounds.Bottom()) / float64(side)

	positions := make([]geometry.Vector2D, 0, n)
	for i := 0; i < n; i++ {
		col, row := i%side, i/side
		positions = append(positions, geometry.Vector2D{
			X: bounds.Left() + (float64(col)+0.5)*cellW,
			Y: bounds.Bottom() + (float64(row)+0.5)*cellH,
		})
	}
	return positions
}

// newAgent builds an agent with the current settings, a random heading and a
// random initial target heading.
func newAgent(id flock.AgentID, pos geometry.Vector2D, s Settings, rng *rand.Rand) flock.Agent {
	angle := rng.Float64() * 2 * math.Pi
	return flock.Agent{
		ID:            id,
		Position:      pos,
		Heading:       geometry.FromAngle(angle),
		TargetHeading: rng.Float64() * 2 * math.Pi,
		Speed:         s.Speed,
		MaxTurnRate:   s.MaxTurnRate,
		Separation:    s.Separation.params(),
		Alignment:     s.Alignment.params(),
		Cohesion:      s.Cohesion.params(),
	}
}

// Populate spawns one agent per tile with ids starting at firstID, and
// returns the next free id.
func Populate(f *flock.Flock, positions []geometry.Vector2D, s Settings, rng *rand.Rand, firstID flock.AgentID) (flock.AgentID, error) {
	id := firstID
	for _, pos := range positions {
		if err := f.Spawn(newAgent(id, pos, s, rng)); err != nil {
			return id, err
		}
		id++
	}
	return id, nil
}

// randomPositions returns n points drawn uniformly inside bounds shrunk by
// margin on every side.
func randomPositions(bounds orb.Bound, margin float64, n int, rng *rand.Rand) []geometry.Vector2D {
	inner := bounds.Pad(-margin)
	if inner.IsEmpty() || inner.Left() > inner.Right() || inner.Bottom() > inner.Top() {
		inner = bounds
	}
	positions := make([]geometry.Vector2D, n)
	for i := range positions {
		positions[i] = geometry.Vector2D{
			X: inner.Left() + rng.Float64()*(inner.Right()-inner.Left()),
			Y: inner.Bottom() + rng.Float64()*(inner.Top()-inner.Bottom()),
		}
	}
	return positions
}
