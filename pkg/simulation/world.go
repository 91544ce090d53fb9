package simulation

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/lao-tseu-is-alive/go-boids/pkg/flock"
	"github.com/paulmach/orb"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// World owns the flock and everything needed to grow or shrink it.
// It is not safe for concurrent use: either one goroutine drives it directly
// (LocalEngine) or it lives inside a WorldActor.
type World struct {
	cfg      *Config
	flock    *flock.Flock
	settings Settings
	walls    []orb.Bound
	rng      *rand.Rand
	nextID   flock.AgentID
	logger   log.Logger
}

// NewWorld validates cfg and builds an empty world.
func NewWorld(cfg *Config, logger log.Logger) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f, err := cfg.NewFlock()
	if err != nil {
		return nil, err
	}
	w := &World{
		cfg:      cfg,
		flock:    f,
		settings: cfg.Settings(),
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		logger:   logger,
	}
	if w.logger == nil {
		w.logger = log.DiscardLogger
	}
	if cfg.Boundary.Policy == PolicyRays {
		ray, err := cfg.rayAvoidance()
		if err != nil {
			return nil, err
		}
		walls := ray.Walls()
		w.walls = walls[:]
	}
	return w, nil
}

// Populate tiles the configured population over the world.
func (w *World) Populate() error {
	next, err := Populate(w.flock, TileWorld(w.cfg.Bounds(), w.cfg.Population), w.settings, w.rng, w.nextID)
	w.nextID = next
	if err != nil {
		return fmt.Errorf("failed to populate world: %w", err)
	}
	w.logger.Infof("World populated with %d agents", w.flock.Len())
	return nil
}

// Spawn adds n agents at random positions clear of the walls.
func (w *World) Spawn(n int) error {
	margin := w.cfg.Boundary.WallThickness + w.cfg.Boundary.BodySize
	if w.cfg.Boundary.Policy != PolicyRays {
		margin = 0
	}
	next, err := Populate(w.flock, randomPositions(w.cfg.Bounds(), margin, n, w.rng), w.settings, w.rng, w.nextID)
	spawned := int(next - w.nextID)
	w.nextID = next
	if err != nil {
		w.logger.Warnf("Spawned %d of %d agents: %v", spawned, n, err)
		return err
	}
	w.logger.Debugf("Spawned %d agents, population %d", n, w.flock.Len())
	return nil
}

// Despawn removes agent id, or the newest live agent when id is negative.
func (w *World) Despawn(id flock.AgentID) bool {
	if id < 0 {
		agents := w.flock.Agents()
		if len(agents) == 0 {
			return false
		}
		id = agents[0].ID
		for _, a := range agents[1:] {
			id = max(id, a.ID)
		}
	}
	ok := w.flock.Despawn(id)
	if ok {
		w.logger.Debugf("Despawned agent %d, population %d", id, w.flock.Len())
	}
	return ok
}

// Apply pushes new settings to every live agent and to future spawns.
func (w *World) Apply(s Settings) error {
	if err := s.validate(w.cfg.Boundary.Policy == PolicyRays); err != nil {
		return err
	}
	for _, r := range []struct {
		kind flock.RuleKind
		cfg  RuleConfig
	}{
		{flock.RuleSeparation, s.Separation},
		{flock.RuleAlignment, s.Alignment},
		{flock.RuleCohesion, s.Cohesion},
	} {
		if err := w.flock.SetRule(r.kind, r.cfg.params()); err != nil {
			return err
		}
	}
	if err := w.flock.SetMotion(s.Speed, s.MaxTurnRate); err != nil {
		return err
	}
	w.settings = s
	return nil
}

// Step advances the flock by dt.
func (w *World) Step(dt time.Duration) {
	w.flock.Step(dt.Seconds())
}

func (w *World) Snapshot() *WorldSnapshot {
	return &WorldSnapshot{
		Tick:   w.flock.Ticks(),
		Agents: w.flock.Agents(),
		Bounds: w.cfg.Bounds(),
		Walls:  w.walls,
	}
}

// WorldActor hosts a World inside the actor system. The game loop drives it
// with Tell and reads snapshots back from a channel.
type WorldActor struct {
	cfg        *Config
	world      *World
	snapshotCh chan<- *WorldSnapshot

	// --- Benchmark Stats ---
	ticks       int
	msgRecv     int
	lastLogTime time.Time
}

var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor creates the world logic unit. snapshotCh may be nil.
func NewWorldActor(snapshotCh chan<- *WorldSnapshot, cfg *Config) *WorldActor {
	return &WorldActor{
		cfg:         cfg,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	world, err := NewWorld(w.cfg, ctx.ActorSystem().Logger())
	if err != nil {
		return err
	}
	w.world = world
	w.world.flock.Subscribe(flock.ObserverFunc(func(uint64, []flock.Agent) { w.ticks++ }))
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	w.msgRecv++
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Info("World Started. Spawning flock...")
		if err := w.world.Populate(); err != nil {
			ctx.Logger().Error(err)
		}
		w.pushSnapshot()

	case *durationpb.Duration:
		w.handleTick(msg)
		w.logBenchmarks(ctx.Logger())

	case *structpb.Struct:
		if err := w.handleSettings(msg); err != nil {
			ctx.Logger().Warnf("Settings rejected: %v", err)
		}

	case *wrapperspb.UInt32Value:
		_ = w.world.Spawn(int(msg.GetValue()))

	case *wrapperspb.Int64Value:
		w.world.Despawn(flock.AgentID(msg.GetValue()))

	case *emptypb.Empty:
		ctx.Response(w.world.Snapshot().Summary().toStruct())

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) handleTick(msg *durationpb.Duration) {
	if err := msg.CheckValid(); err != nil {
		return
	}
	w.world.Step(msg.AsDuration())
	w.pushSnapshot()
}

func (w *WorldActor) handleSettings(msg *structpb.Struct) error {
	s, err := ParseSettings(msg)
	if err != nil {
		return err
	}
	return w.world.Apply(s)
}

func (w *WorldActor) logBenchmarks(logger log.Logger) {
	if time.Since(w.lastLogTime) >= time.Second {
		logger.Infof("📊 TICK RATE: %d/sec (msgs: %d) | Agents: %d", w.ticks, w.msgRecv, w.world.flock.Len())
		w.ticks = 0
		w.msgRecv = 0
		w.lastLogTime = time.Now()
	}
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- w.world.Snapshot():
	default:
		// UI busy, skip frame
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("World is shutdown...")
	return nil
}
