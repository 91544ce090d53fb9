package flock

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// Observer is notified after every tick with the post-tick state.
// The slice is only valid during the call.
type Observer interface {
	OnTick(tick uint64, agents []Agent)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(tick uint64, agents []Agent)

func (f ObserverFunc) OnTick(tick uint64, agents []Agent) { f(tick, agents) }

// Params configures a Flock.
type Params struct {
	// Boundary defaults to no boundary at all.
	Boundary BoundaryPolicy
	// Neighbors defaults to BruteForce.
	Neighbors NeighborQuery
	// Capacity limits the population, 0 means unbounded.
	Capacity int
	// Workers > 1 evaluates the rules of disjoint agent ranges in parallel.
	Workers int
}

// Flock runs the steering pipeline over a population of agents.
//
// Each Step reads a snapshot of the previous tick and writes into the store,
// so no stage ever sees a half-updated neighbor.
type Flock struct {
	store     *Store
	boundary  BoundaryPolicy
	neighbors NeighborQuery
	workers   int
	observers []Observer

	snapshot []Agent
	scratch  [][]int
	ticks    uint64
}

// New creates an empty flock.
func New(p Params) (*Flock, error) {
	if p.Capacity < 0 {
		return nil, configErr("capacity", p.Capacity, "must not be negative")
	}
	if p.Workers < 0 {
		return nil, configErr("workers", p.Workers, "must not be negative")
	}
	if p.Neighbors == nil {
		p.Neighbors = BruteForce{}
	}
	workers := max(p.Workers, 1)
	return &Flock{
		store:     NewStore(p.Capacity),
		boundary:  p.Boundary,
		neighbors: p.Neighbors,
		workers:   workers,
		scratch:   make([][]int, workers),
	}, nil
}

func (f *Flock) requiresMotion() bool {
	_, ok := f.boundary.(*RayAvoidance)
	return ok
}

// Spawn validates an agent and adds it to the flock.
func (f *Flock) Spawn(a Agent) error {
	if err := a.validate(f.requiresMotion()); err != nil {
		return fmt.Errorf("spawn agent %d: %w", a.ID, err)
	}
	a.Avoiding = false
	a.Rules = RuleVectors{}
	return f.store.Add(a)
}

// Despawn removes an agent and reports whether it was live.
func (f *Flock) Despawn(id AgentID) bool {
	return f.store.Remove(id)
}

// Len returns the population size.
func (f *Flock) Len() int { return f.store.Len() }

// Ticks returns the number of completed steps.
func (f *Flock) Ticks() uint64 { return f.ticks }

// Agent returns a copy of one agent.
func (f *Flock) Agent(id AgentID) (Agent, bool) { return f.store.Get(id) }

// Agents returns a copy of every agent.
func (f *Flock) Agents() []Agent { return f.store.CopyTo(nil) }

// Subscribe registers an observer called at the end of every Step.
func (f *Flock) Subscribe(o Observer) {
	f.observers = append(f.observers, o)
}

// SetRule applies rule parameters to every agent.
func (f *Flock) SetRule(kind RuleKind, p RuleParams) error {
	if err := validateRule(kind, p); err != nil {
		return err
	}
	agents := f.store.Agents()
	for i := range agents {
		agents[i].SetRule(kind, p)
	}
	return nil
}

// SetMotion applies speed and turn rate to every agent.
func (f *Flock) SetMotion(speed, maxTurnRate float64) error {
	if !(speed >= 0) || math.IsInf(speed, 0) || (speed == 0 && f.requiresMotion()) {
		return configErr("speed", speed, "must be positive and finite")
	}
	if !(maxTurnRate >= 0) || math.IsInf(maxTurnRate, 0) {
		return configErr("maxTurnRate", maxTurnRate, "must be a non-negative finite rate")
	}
	agents := f.store.Agents()
	for i := range agents {
		agents[i].Speed = speed
		agents[i].MaxTurnRate = maxTurnRate
	}
	return nil
}

// Step advances the simulation by dt seconds.
func (f *Flock) Step(dt float64) {
	agents := f.store.Agents()

	// 1. Snapshot the previous tick and index it
	f.snapshot = f.store.CopyTo(f.snapshot)
	f.neighbors.Rebuild(f.snapshot)

	// 2. Rules: read the snapshot, write only the agent's own slot
	f.evaluateRules(agents)

	// 3. Combine and move
	for i := range agents {
		a := &agents[i]
		if !a.Avoiding {
			a.TargetHeading, _ = Combine(a.Rules, a.TargetHeading)
		}
		Integrate(a, dt)
	}

	// 4. Boundary, against the moved positions
	if f.boundary != nil {
		f.snapshot = f.store.CopyTo(f.snapshot)
		for i := range agents {
			f.boundary.Apply(&agents[i], f.snapshot, i)
		}
	}

	f.ticks++
	for _, o := range f.observers {
		o.OnTick(f.ticks, agents)
	}
}

func (f *Flock) evaluateRules(agents []Agent) {
	n := len(agents)
	if f.workers == 1 || n < 2*f.workers {
		for i := range agents {
			agents[i].Rules, f.scratch[0] = evaluate(f.neighbors, f.snapshot, i, f.scratch[0])
		}
		return
	}

	chunk := (n + f.workers - 1) / f.workers
	var g errgroup.Group
	for w := 0; w < f.workers; w++ {
		lo, hi := w*chunk, min((w+1)*chunk, n)
		if lo >= hi {
			break
		}
		g.Go(func() error {
			scratch := f.scratch[w]
			for i := lo; i < hi; i++ {
				agents[i].Rules, scratch = evaluate(f.neighbors, f.snapshot, i, scratch)
			}
			f.scratch[w] = scratch
			return nil
		})
	}
	// Barrier: all rule vectors are written before anyone integrates.
	_ = g.Wait()
}
