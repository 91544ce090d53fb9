package simulation

import (
	"fmt"
	"math"
	"time"

	"github.com/lao-tseu-is-alive/go-boids/pkg/flock"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The World actor speaks protobuf well-known types only:
//
//	*durationpb.Duration    advance the simulation by dt
//	*structpb.Struct        apply Settings
//	*wrapperspb.UInt32Value spawn that many agents
//	*wrapperspb.Int64Value  despawn an agent, a negative id picks the newest
//	*emptypb.Empty          ask for a summary of the current tick

// Settings are the values the UI can change while the simulation runs.
type Settings struct {
	Separation  RuleConfig
	Alignment   RuleConfig
	Cohesion    RuleConfig
	Speed       float64
	MaxTurnRate float64 // radians per second
}

func (s Settings) validate(requireMotion bool) error {
	for _, r := range []struct {
		kind flock.RuleKind
		cfg  RuleConfig
	}{
		{flock.RuleSeparation, s.Separation},
		{flock.RuleAlignment, s.Alignment},
		{flock.RuleCohesion, s.Cohesion},
	} {
		if !(r.cfg.Radius > 0) || !finite(r.cfg.Radius) {
			return invalid(r.kind.String()+".radius", r.cfg.Radius, "must be a positive finite distance")
		}
		if !finite(r.cfg.Weight) {
			return invalid(r.kind.String()+".weight", r.cfg.Weight, "must be finite")
		}
	}
	if !(s.Speed >= 0) || !finite(s.Speed) {
		return invalid("speed", s.Speed, "must be a non-negative finite value")
	}
	if requireMotion && s.Speed == 0 {
		return invalid("speed", s.Speed, "must be positive when ray avoidance is enabled")
	}
	if !(s.MaxTurnRate >= 0) || !finite(s.MaxTurnRate) {
		return invalid("maxTurnRate", s.MaxTurnRate, "must be a non-negative finite rate")
	}
	return nil
}

func NewTickMessage(dt time.Duration) *durationpb.Duration {
	return durationpb.New(dt)
}

func NewSettingsMessage(s Settings) *structpb.Struct {
	// Only numbers: NewStruct cannot fail.
	msg, _ := structpb.NewStruct(map[string]interface{}{
		"separation.radius": s.Separation.Radius,
		"separation.weight": s.Separation.Weight,
		"alignment.radius":  s.Alignment.Radius,
		"alignment.weight":  s.Alignment.Weight,
		"cohesion.radius":   s.Cohesion.Radius,
		"cohesion.weight":   s.Cohesion.Weight,
		"speed":             s.Speed,
		"maxTurnRate":       s.MaxTurnRate,
	})
	return msg
}

// ParseSettings is the inverse of NewSettingsMessage. Every key is required.
func ParseSettings(msg *structpb.Struct) (Settings, error) {
	fields := msg.GetFields()
	var err error
	number := func(key string) float64 {
		if err != nil {
			return 0
		}
		v, ok := fields[key]
		if !ok {
			err = fmt.Errorf("settings: missing %q", key)
			return 0
		}
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			err = fmt.Errorf("settings: %q is not a number", key)
			return 0
		}
		return n.NumberValue
	}

	s := Settings{
		Separation:  RuleConfig{Radius: number("separation.radius"), Weight: number("separation.weight")},
		Alignment:   RuleConfig{Radius: number("alignment.radius"), Weight: number("alignment.weight")},
		Cohesion:    RuleConfig{Radius: number("cohesion.radius"), Weight: number("cohesion.weight")},
		Speed:       number("speed"),
		MaxTurnRate: number("maxTurnRate"),
	}
	return s, err
}

func NewSpawnMessage(n int) *wrapperspb.UInt32Value {
	return wrapperspb.UInt32(uint32(max(n, 0)))
}

// NewDespawnMessage asks for agent id to be removed. A negative id removes the
// most recently spawned live agent.
func NewDespawnMessage(id flock.AgentID) *wrapperspb.Int64Value {
	return wrapperspb.Int64(int64(id))
}

func NewSnapshotRequest() *emptypb.Empty {
	return &emptypb.Empty{}
}

// Summary is the answer to a snapshot request.
type Summary struct {
	Tick         uint64
	Population   int
	Avoiding     int
	Polarization float64 // length of the mean heading, 1 when all agents agree
}

func (s Summary) String() string {
	return fmt.Sprintf("tick %d | agents %d | avoiding %d | polarization %.2f",
		s.Tick, s.Population, s.Avoiding, s.Polarization)
}

func (s Summary) toStruct() *structpb.Struct {
	msg, _ := structpb.NewStruct(map[string]interface{}{
		"tick":         float64(s.Tick),
		"population":   s.Population,
		"avoiding":     s.Avoiding,
		"polarization": s.Polarization,
	})
	return msg
}

// ParseSummary decodes the reply to NewSnapshotRequest.
func ParseSummary(msg *structpb.Struct) Summary {
	f := msg.GetFields()
	pol := f["polarization"].GetNumberValue()
	if math.IsNaN(pol) {
		pol = 0
	}
	return Summary{
		Tick:         uint64(f["tick"].GetNumberValue()),
		Population:   int(f["population"].GetNumberValue()),
		Avoiding:     int(f["avoiding"].GetNumberValue()),
		Polarization: pol,
	}
}
