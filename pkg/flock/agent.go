// Package flock implements the boids steering core: neighbor queries, the
// separation, alignment and cohesion rules, their combination into a target
// heading, rate-limited turning and the boundary policies.
//
// The package is engine agnostic. A host creates a Flock, spawns agents and
// calls Step once per fixed simulation tick, then reads positions, headings
// and the last rule vectors back for drawing.
package flock

import (
	"math"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

// AgentID is a stable lookup key, unique among live agents.
type AgentID int

// RuleKind selects one of the three flocking rules.
type RuleKind int

const (
	RuleSeparation RuleKind = iota
	RuleAlignment
	RuleCohesion
)

func (k RuleKind) String() string {
	switch k {
	case RuleSeparation:
		return "separation"
	case RuleAlignment:
		return "alignment"
	case RuleCohesion:
		return "cohesion"
	default:
		return "unknown"
	}
}

// RuleParams holds the per-agent settings of one rule.
type RuleParams struct {
	Radius float64 `json:"radius"` // neighbor-detection distance
	Weight float64 `json:"weight"` // 0 disables the rule, usually in [0,1]
}

// RuleVectors are the most recent rule outputs, zero when no neighbor qualified.
type RuleVectors struct {
	Separation geometry.Vector2D
	Alignment  geometry.Vector2D
	Cohesion   geometry.Vector2D
}

// Agent is a single boid.
type Agent struct {
	ID            AgentID
	Position      geometry.Vector2D
	Heading       geometry.Vector2D // always unit length
	TargetHeading float64           // radians
	Speed         float64           // world units per second
	MaxTurnRate   float64           // radians per second

	Separation RuleParams
	Alignment  RuleParams
	Cohesion   RuleParams

	Rules RuleVectors

	// Avoiding is set by a boundary policy that picked an escape heading.
	// The combiner leaves TargetHeading alone while it is set.
	Avoiding bool
}

// Rule returns the parameters of the given rule.
func (a *Agent) Rule(kind RuleKind) RuleParams {
	switch kind {
	case RuleSeparation:
		return a.Separation
	case RuleAlignment:
		return a.Alignment
	default:
		return a.Cohesion
	}
}

// SetRule replaces the parameters of the given rule.
func (a *Agent) SetRule(kind RuleKind, p RuleParams) {
	switch kind {
	case RuleSeparation:
		a.Separation = p
	case RuleAlignment:
		a.Alignment = p
	default:
		a.Cohesion = p
	}
}

// Angle returns the current heading in radians.
func (a *Agent) Angle() float64 {
	return a.Heading.Angle()
}

func validateRule(kind RuleKind, p RuleParams) error {
	if !(p.Radius > 0) || math.IsInf(p.Radius, 0) {
		return configErr(kind.String()+".radius", p.Radius, "must be a positive finite distance")
	}
	if math.IsNaN(p.Weight) || math.IsInf(p.Weight, 0) {
		return configErr(kind.String()+".weight", p.Weight, "must be finite")
	}
	return nil
}

// validate checks the invariants an agent must satisfy before joining a flock,
// and normalizes its heading.
func (a *Agent) validate(requireMotion bool) error {
	for _, kind := range []RuleKind{RuleSeparation, RuleAlignment, RuleCohesion} {
		if err := validateRule(kind, a.Rule(kind)); err != nil {
			return err
		}
	}
	if a.Speed < 0 || math.IsNaN(a.Speed) || math.IsInf(a.Speed, 0) {
		return configErr("speed", a.Speed, "must be a non-negative finite value")
	}
	if requireMotion && a.Speed == 0 {
		return configErr("speed", a.Speed, "must be positive when ray avoidance is enabled")
	}
	if a.MaxTurnRate < 0 || math.IsNaN(a.MaxTurnRate) || math.IsInf(a.MaxTurnRate, 0) {
		return configErr("maxTurnRate", a.MaxTurnRate, "must be a non-negative finite rate")
	}
	if a.Position.IsNaN() {
		return configErr("position", a.Position, "must not be NaN")
	}
	h := a.Heading.Normalize()
	if h.IsZero() {
		return configErr("heading", a.Heading, "must have a direction")
	}
	a.Heading = h
	if math.IsNaN(a.TargetHeading) || math.IsInf(a.TargetHeading, 0) {
		a.TargetHeading = h.Angle()
	}
	return nil
}
