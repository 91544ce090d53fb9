package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/lao-tseu-is-alive/go-boids/pkg/flock"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/structpb"
)

// Engine is what the Game drives once per tick. Snapshot returns the latest
// known state and never blocks.
type Engine interface {
	Step(dt time.Duration)
	Snapshot() *WorldSnapshot
	Apply(s Settings) error
	Spawn(n int) error
	Despawn(id flock.AgentID) error
}

// LocalEngine runs the World on the caller's goroutine.
type LocalEngine struct {
	world *World
	last  *WorldSnapshot
}

// NewLocalEngine builds and populates a world.
func NewLocalEngine(cfg *Config, logger log.Logger) (*LocalEngine, error) {
	w, err := NewWorld(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := w.Populate(); err != nil {
		return nil, err
	}
	return &LocalEngine{world: w, last: w.Snapshot()}, nil
}

func (e *LocalEngine) Step(dt time.Duration) {
	e.world.Step(dt)
	e.last = e.world.Snapshot()
}

func (e *LocalEngine) Snapshot() *WorldSnapshot { return e.last }

func (e *LocalEngine) Apply(s Settings) error { return e.world.Apply(s) }

func (e *LocalEngine) Spawn(n int) error {
	err := e.world.Spawn(n)
	e.last = e.world.Snapshot()
	return err
}

func (e *LocalEngine) Despawn(id flock.AgentID) error {
	if !e.world.Despawn(id) {
		return fmt.Errorf("no live agent %d", id)
	}
	e.last = e.world.Snapshot()
	return nil
}

// ActorEngine forwards everything to a WorldActor. Commands are fire and
// forget: validation errors are logged by the actor.
type ActorEngine struct {
	ctx        context.Context
	pid        *actor.PID
	snapshotCh chan *WorldSnapshot
	last       *WorldSnapshot
}

// NewActorEngine spawns the world actor under name in system.
func NewActorEngine(ctx context.Context, system actor.ActorSystem, name string, cfg *Config) (*ActorEngine, error) {
	// Buffer to avoid blocking
	snapshotCh := make(chan *WorldSnapshot, 10)
	pid, err := system.Spawn(ctx, name, NewWorldActor(snapshotCh, cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}
	return &ActorEngine{
		ctx:        ctx,
		pid:        pid,
		snapshotCh: snapshotCh,
		last:       &WorldSnapshot{Bounds: cfg.Bounds()},
	}, nil
}

func (e *ActorEngine) Step(dt time.Duration) {
	_ = actor.Tell(e.ctx, e.pid, NewTickMessage(dt))
}

// Snapshot drains the channel and keeps the newest snapshot.
func (e *ActorEngine) Snapshot() *WorldSnapshot {
	for {
		select {
		case snap := <-e.snapshotCh:
			e.last = snap
		default:
			return e.last
		}
	}
}

func (e *ActorEngine) Apply(s Settings) error {
	return actor.Tell(e.ctx, e.pid, NewSettingsMessage(s))
}

func (e *ActorEngine) Spawn(n int) error {
	return actor.Tell(e.ctx, e.pid, NewSpawnMessage(n))
}

func (e *ActorEngine) Despawn(id flock.AgentID) error {
	return actor.Tell(e.ctx, e.pid, NewDespawnMessage(id))
}

// Summary asks the world for a summary of its current tick.
func (e *ActorEngine) Summary(timeout time.Duration) (Summary, error) {
	reply, err := actor.Ask(e.ctx, e.pid, NewSnapshotRequest(), timeout)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to query world: %w", err)
	}
	msg, ok := reply.(*structpb.Struct)
	if !ok {
		return Summary{}, fmt.Errorf("unexpected world reply %T", reply)
	}
	return ParseSummary(msg), nil
}
