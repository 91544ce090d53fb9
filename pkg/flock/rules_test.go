package flock

import (
	"math"
	"testing"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

func TestRules_EmptyNeighborhoodIsZero(t *testing.T) {
	agents := []Agent{newTestAgent(0, 0, 0, 0, 10)}

	if got := Separation(agents, 0, nil); got != geometry.Zero {
		t.Errorf("Expected zero separation, got %v", got)
	}
	if got := Alignment(agents, 0, nil); got != geometry.Zero {
		t.Errorf("Expected zero alignment, got %v", got)
	}
	if got := Cohesion(agents, 0, nil); got != geometry.Zero {
		t.Errorf("Expected zero cohesion, got %v", got)
	}

	rules, _ := evaluate(BruteForce{}, agents, 0, nil)
	if rules != (RuleVectors{}) {
		t.Errorf("Expected all-zero rule vectors for an isolated agent, got %+v", rules)
	}
}

func TestSeparation_PushesAway(t *testing.T) {
	// Me at 0,0, friend at 1,0: pushed toward negative X
	agents := []Agent{
		newTestAgent(0, 0, 0, 0, 10),
		newTestAgent(1, 1, 0, 0, 10),
	}

	got := Separation(agents, 0, []int{1})
	// (10 - 1) / 10 * speed 10 * weight 1
	want := geometry.Vector2D{X: -9, Y: 0}
	if !got.Eq(want) {
		t.Errorf("Expected separation %v, got %v", want, got)
	}
}

func TestSeparation_MonotonicFalloff(t *testing.T) {
	const radius = 10.0
	prev := math.Inf(1)
	for d := 0.5; d <= radius; d += 0.5 {
		agents := []Agent{
			newTestAgent(0, 0, 0, 0, radius),
			newTestAgent(1, d, 0, 0, radius),
		}
		mag := Separation(agents, 0, []int{1}).Len()
		if mag > prev {
			t.Errorf("Expected non-increasing magnitude, at distance %v got %v after %v", d, mag, prev)
		}
		prev = mag
	}
	if prev != 0 {
		t.Errorf("Expected zero separation exactly at the radius, got %v", prev)
	}
}

func TestSeparation_OverlappingAgentsStayFinite(t *testing.T) {
	agents := []Agent{
		newTestAgent(0, 3, 3, 0, 10),
		newTestAgent(1, 3, 3, 0, 10),
	}
	got := Separation(agents, 0, []int{1})
	if got.IsNaN() {
		t.Fatalf("Expected a finite separation for overlapping agents, got %v", got)
	}
	if got != geometry.Zero {
		t.Errorf("Expected zero separation without an away direction, got %v", got)
	}
}

func TestSeparation_WeightScales(t *testing.T) {
	agents := []Agent{
		newTestAgent(0, 0, 0, 0, 10),
		newTestAgent(1, 2, 0, 0, 10),
	}
	full := Separation(agents, 0, []int{1})

	agents[0].Separation.Weight = 0.25
	quarter := Separation(agents, 0, []int{1})
	if !quarter.Eq(full.Mul(0.25)) {
		t.Errorf("Expected weight to scale linearly: %v vs %v", quarter, full.Mul(0.25))
	}

	agents[0].Separation.Weight = 0
	if got := Separation(agents, 0, []int{1}); got != geometry.Zero {
		t.Errorf("Expected weight 0 to disable the rule, got %v", got)
	}
}

func TestAlignment_UnweightedAverage(t *testing.T) {
	agents := []Agent{
		newTestAgent(0, 0, 0, 0, 50),
		newTestAgent(1, 1, 0, 0, 50),           // heading +X, close
		newTestAgent(2, 40, 0, math.Pi/2, 50), // heading +Y, far
	}
	got := Alignment(agents, 0, []int{1, 2})
	want := geometry.Vector2D{X: 0.5, Y: 0.5}
	if !got.Eq(want) {
		t.Errorf("Expected alignment %v regardless of distance, got %v", want, got)
	}
}

func TestCohesion_TowardCentroid(t *testing.T) {
	// Me at 0,0. Friends at 10,0 and 10,10: centroid 10,5
	agents := []Agent{
		newTestAgent(0, 0, 0, 0, 50),
		newTestAgent(1, 10, 0, 0, 50),
		newTestAgent(2, 10, 10, 0, 50),
	}
	agents[0].Cohesion.Weight = 0.5

	got := Cohesion(agents, 0, []int{1, 2})
	want := geometry.Vector2D{X: 10, Y: 5}.Normalize().Mul(0.5)
	if !got.Eq(want) {
		t.Errorf("Expected cohesion %v, got %v", want, got)
	}
}

func TestRules_EquilateralTriangle(t *testing.T) {
	// Three agents on an equilateral triangle of side 10 centred on the origin,
	// all heading +X, every radius large enough to see both others.
	r := 10 / math.Sqrt(3)
	var agents []Agent
	for i := 0; i < 3; i++ {
		theta := math.Pi/2 + float64(i)*2*math.Pi/3
		a := newTestAgent(AgentID(i), r*math.Cos(theta), r*math.Sin(theta), 0, 20)
		a.Alignment.Weight = 0.8
		agents = append(agents, a)
	}

	for i := range agents {
		rules, _ := evaluate(BruteForce{}, agents, i, nil)

		wantAlign := geometry.Vector2D{X: 0.8, Y: 0}
		if !rules.Alignment.Eq(wantAlign) {
			t.Errorf("agent %d: expected alignment %v, got %v", i, wantAlign, rules.Alignment)
		}

		if rules.Separation.IsZero() {
			t.Fatalf("agent %d: expected a non-zero separation", i)
		}
		outward := agents[i].Position.Normalize()
		dir := rules.Separation.Normalize()
		if math.Abs(dir.Cross(outward)) > 1e-9 || dir.Dot(outward) <= 0 {
			t.Errorf("agent %d: expected separation %v to point outward along %v", i, dir, outward)
		}

		// Cohesion points back at the centroid of the other two, i.e. inward.
		if rules.Cohesion.Dot(outward) >= 0 {
			t.Errorf("agent %d: expected cohesion %v to point inward", i, rules.Cohesion)
		}
	}
}
