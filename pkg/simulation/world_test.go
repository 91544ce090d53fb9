package simulation

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/lao-tseu-is-alive/go-boids/pkg/flock"
	"github.com/paulmach/orb"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
)

const tick = time.Second / 60

func smallConfig() *Config {
	cfg := DefaultConfig()
	cfg.WorldWidth = 400
	cfg.WorldHeight = 300
	cfg.Population = 16
	return cfg
}

func newTestWorld(t *testing.T, cfg *Config) *World {
	t.Helper()
	w, err := NewWorld(cfg, log.DiscardLogger)
	if err != nil {
		t.Fatalf("NewWorld returned error: %v", err)
	}
	if err := w.Populate(); err != nil {
		t.Fatalf("Populate returned error: %v", err)
	}
	return w
}

func TestNewWorld_RejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Alignment.Radius = 0
	if _, err := NewWorld(cfg, nil); !errors.Is(err, flock.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestWorld_PopulateAndWalls(t *testing.T) {
	rays := newTestWorld(t, smallConfig())
	snap := rays.Snapshot()
	if len(snap.Agents) != 16 {
		t.Errorf("Expected 16 agents, got %d", len(snap.Agents))
	}
	if len(snap.Walls) != 4 {
		t.Errorf("Expected 4 walls with ray avoidance, got %d", len(snap.Walls))
	}

	cfg := smallConfig()
	cfg.Boundary.Policy = PolicyWrap
	wrap := newTestWorld(t, cfg)
	if n := len(wrap.Snapshot().Walls); n != 0 {
		t.Errorf("Expected no walls when wrapping, got %d", n)
	}
}

func TestWorld_StepKeepsAgentsInside(t *testing.T) {
	w := newTestWorld(t, smallConfig())
	for i := 0; i < 600; i++ {
		w.Step(tick)
	}
	snap := w.Snapshot()
	if snap.Tick != 600 {
		t.Errorf("Expected tick 600, got %d", snap.Tick)
	}
	for _, a := range snap.Agents {
		if !snap.Bounds.Contains(orb.Point{a.Position.X, a.Position.Y}) {
			t.Errorf("agent %d escaped to %v", a.ID, a.Position)
		}
		if a.Heading.IsNaN() || a.Position.IsNaN() {
			t.Errorf("agent %d went NaN: %+v", a.ID, a)
		}
	}
}

func TestWorld_Deterministic(t *testing.T) {
	a := newTestWorld(t, smallConfig())
	b := newTestWorld(t, smallConfig())
	for i := 0; i < 100; i++ {
		a.Step(tick)
		b.Step(tick)
	}
	if !slices.Equal(a.Snapshot().Agents, b.Snapshot().Agents) {
		t.Error("Expected two worlds with the same seed to evolve identically")
	}
}

func TestWorld_SpawnAndDespawn(t *testing.T) {
	w := newTestWorld(t, smallConfig())

	if err := w.Spawn(5); err != nil {
		t.Fatalf("Spawn returned error: %v", err)
	}
	if got := w.flock.Len(); got != 21 {
		t.Errorf("Expected 21 agents, got %d", got)
	}
	if _, ok := w.flock.Agent(20); !ok {
		t.Error("Expected the new agents to take ids 16..20")
	}

	if !w.Despawn(-1) {
		t.Fatal("Expected Despawn(-1) to remove the newest agent")
	}
	if _, ok := w.flock.Agent(20); ok {
		t.Error("Expected agent 20 to be gone")
	}
	if !w.Despawn(3) || w.Despawn(3) {
		t.Error("Expected Despawn(3) to succeed exactly once")
	}
	if got := w.flock.Len(); got != 19 {
		t.Errorf("Expected 19 agents, got %d", got)
	}
}

func TestWorld_SpawnOverCapacity(t *testing.T) {
	cfg := smallConfig()
	cfg.Capacity = 18
	w := newTestWorld(t, cfg)

	err := w.Spawn(5)
	if !errors.Is(err, flock.ErrCapacityExceeded) {
		t.Errorf("Expected ErrCapacityExceeded, got %v", err)
	}
	if got := w.flock.Len(); got != 18 {
		t.Errorf("Expected the flock to fill up to 18, got %d", got)
	}
}

func TestWorld_Apply(t *testing.T) {
	w := newTestWorld(t, smallConfig())

	bad := w.settings
	bad.Speed = 0
	if err := w.Apply(bad); !errors.Is(err, flock.ErrInvalidConfig) {
		t.Errorf("Expected a stopped flock to be rejected under ray avoidance, got %v", err)
	}

	good := w.settings
	good.Alignment = RuleConfig{Radius: 33, Weight: 0.1}
	good.Speed = 90
	if err := w.Apply(good); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	for _, a := range w.flock.Agents() {
		if a.Alignment.Radius != 33 || a.Speed != 90 {
			t.Errorf("agent %d: expected new settings, got %+v", a.ID, a)
		}
	}

	// Later spawns use the new settings too.
	_ = w.Spawn(1)
	if a, _ := w.flock.Agent(16); a.Speed != 90 {
		t.Errorf("Expected the new agent to move at 90, got %v", a.Speed)
	}
}

func TestWorldActor_Handlers(t *testing.T) {
	ch := make(chan *WorldSnapshot, 1)
	cfg := smallConfig()
	w := NewWorldActor(ch, cfg)
	w.world = newTestWorld(t, cfg)

	w.handleTick(durationpb.New(tick))
	select {
	case snap := <-ch:
		if snap.Tick != 1 {
			t.Errorf("Expected tick 1, got %d", snap.Tick)
		}
	default:
		t.Fatal("Expected a snapshot after a tick")
	}

	// The channel is full: the next snapshot is dropped, never blocks.
	ch <- &WorldSnapshot{}
	w.handleTick(durationpb.New(tick))
	if w.world.flock.Ticks() != 2 {
		t.Errorf("Expected the world to keep stepping, got tick %d", w.world.flock.Ticks())
	}

	// Out of range durations are ignored.
	w.handleTick(&durationpb.Duration{Seconds: 1, Nanos: -1})
	if w.world.flock.Ticks() != 2 {
		t.Errorf("Expected an invalid duration to be ignored, got tick %d", w.world.flock.Ticks())
	}

	s := cfg.Settings()
	s.Cohesion.Weight = 0.3
	if err := w.handleSettings(NewSettingsMessage(s)); err != nil {
		t.Errorf("handleSettings returned error: %v", err)
	}
	empty, _ := structpb.NewStruct(nil)
	if err := w.handleSettings(empty); err == nil {
		t.Error("Expected an empty settings message to be rejected")
	}
}

func BenchmarkWorld_Step(b *testing.B) {
	cfg := DefaultConfig()
	cfg.Population = 500
	w, err := NewWorld(cfg, log.DiscardLogger)
	if err != nil {
		b.Fatal(err)
	}
	_ = w.Populate()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Step(tick)
	}
}
