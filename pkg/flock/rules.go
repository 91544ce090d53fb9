package flock

import "github.com/lao-tseu-is-alive/go-boids/pkg/geometry"

// Separation steers away from crowding neighbors.
//
// Each neighbor pushes along (self - neighbor), normalized, with a linear
// falloff (radius - distance) / radius and scaled by the agent speed. The
// pushes are averaged and multiplied by the rule weight. A neighbor exactly
// on the radius counts in the average but pushes with zero strength.
func Separation(snapshot []Agent, self int, neighbors []int) geometry.Vector2D {
	me := &snapshot[self]
	p := me.Separation
	if len(neighbors) == 0 || p.Radius <= 0 {
		return geometry.Zero
	}

	var sum geometry.Vector2D
	for _, j := range neighbors {
		away := me.Position.Sub(snapshot[j].Position)
		weight := (p.Radius - away.Len()) / p.Radius
		if weight < 0 {
			weight = 0
		}
		// Two agents on the same spot have no "away" direction: Normalize gives zero.
		sum = sum.Add(away.Normalize().Mul(weight * me.Speed))
	}

	return sum.Div(float64(len(neighbors))).Mul(p.Weight)
}

// Alignment matches the neighbors' headings: the plain, unweighted average of
// their heading vectors, multiplied by the rule weight.
func Alignment(snapshot []Agent, self int, neighbors []int) geometry.Vector2D {
	me := &snapshot[self]
	if len(neighbors) == 0 {
		return geometry.Zero
	}

	var sum geometry.Vector2D
	for _, j := range neighbors {
		sum = sum.Add(snapshot[j].Heading)
	}

	return sum.Div(float64(len(neighbors))).Mul(me.Alignment.Weight)
}

// Cohesion steers toward the centroid of the neighbors: the unit vector from
// the agent to the centroid, multiplied by the rule weight. No distance falloff
// is applied.
func Cohesion(snapshot []Agent, self int, neighbors []int) geometry.Vector2D {
	me := &snapshot[self]
	if len(neighbors) == 0 {
		return geometry.Zero
	}

	var centroid geometry.Vector2D
	for _, j := range neighbors {
		centroid = centroid.Add(snapshot[j].Position)
	}
	centroid = centroid.Div(float64(len(neighbors)))

	return centroid.Sub(me.Position).Normalize().Mul(me.Cohesion.Weight)
}

// evaluate computes the three rule vectors of snapshot[self].
// scratch is reused between the three queries and returned for the next call.
func evaluate(q NeighborQuery, snapshot []Agent, self int, scratch []int) (RuleVectors, []int) {
	me := &snapshot[self]
	var out RuleVectors

	scratch = q.Neighbors(snapshot, self, me.Separation.Radius, scratch[:0])
	out.Separation = Separation(snapshot, self, scratch)

	scratch = q.Neighbors(snapshot, self, me.Alignment.Radius, scratch[:0])
	out.Alignment = Alignment(snapshot, self, scratch)

	scratch = q.Neighbors(snapshot, self, me.Cohesion.Radius, scratch[:0])
	out.Cohesion = Cohesion(snapshot, self, scratch)

	return out, scratch
}
