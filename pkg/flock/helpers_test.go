package flock

import (
	"math"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

// newTestAgent builds a valid agent heading along angle, with uniform radius
// and weight 1 for every rule.
func newTestAgent(id AgentID, x, y, angle, radius float64) Agent {
	rule := RuleParams{Radius: radius, Weight: 1}
	return Agent{
		ID:            id,
		Position:      geometry.Vector2D{X: x, Y: y},
		Heading:       geometry.FromAngle(angle),
		TargetHeading: angle,
		Speed:         10,
		MaxTurnRate:   math.Pi,
		Separation:    rule,
		Alignment:     rule,
		Cohesion:      rule,
	}
}
