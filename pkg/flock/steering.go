package flock

import (
	"math"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

// AlignedEpsilon is the angle (radians) under which a heading counts as aligned
// with its target.
const AlignedEpsilon = 1e-9

// Combine merges the rule vectors into a target heading.
//
// Every non-zero vector is normalized and the unit vectors are summed, so each
// active rule weighs the same regardless of magnitude. When the sum has no
// direction (nothing active, or vectors cancelling out) previous is returned
// with ok == false.
func Combine(rules RuleVectors, previous float64) (angle float64, ok bool) {
	var sum geometry.Vector2D
	for _, v := range [...]geometry.Vector2D{rules.Separation, rules.Alignment, rules.Cohesion} {
		sum = sum.Add(v.Normalize())
	}
	if sum.IsNaN() || sum.IsZero() {
		return previous, false
	}
	return sum.Angle(), true
}

// TurnToward rotates the unit heading toward target by at most maxStep
// radians, never past it. The turn direction follows the sign of the cross
// product; an exactly opposite target turns counter-clockwise.
func TurnToward(heading, target geometry.Vector2D, maxStep float64) geometry.Vector2D {
	delta := heading.SignedAngleTo(target)
	remaining := math.Abs(delta)
	if remaining < AlignedEpsilon || maxStep <= 0 {
		return heading
	}
	if remaining >= maxStep {
		if delta < 0 {
			return heading.Rotate(-maxStep).Normalize()
		}
		return heading.Rotate(maxStep).Normalize()
	}
	// Within reach: land exactly on the target.
	return target
}

// Integrate turns the agent toward its target heading at its bounded rate,
// then moves it along the new heading. Both are scaled by dt seconds.
func Integrate(a *Agent, dt float64) {
	if dt <= 0 {
		return
	}
	target := geometry.FromAngle(a.TargetHeading)
	a.Heading = TurnToward(a.Heading, target, a.MaxTurnRate*dt)
	a.Position = a.Position.Add(a.Heading.Mul(a.Speed * dt))
}
