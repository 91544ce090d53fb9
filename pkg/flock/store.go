package flock

import "fmt"

// Store holds the live agents in a dense slice, with an id to slot index.
// Capacity 0 means unbounded.
type Store struct {
	agents   []Agent
	index    map[AgentID]int
	capacity int
}

// NewStore creates an empty store.
func NewStore(capacity int) *Store {
	return &Store{
		agents:   make([]Agent, 0, max(capacity, 0)),
		index:    make(map[AgentID]int),
		capacity: capacity,
	}
}

// Len returns the number of live agents.
func (s *Store) Len() int { return len(s.agents) }

// Capacity returns the configured limit, 0 when unbounded.
func (s *Store) Capacity() int { return s.capacity }

// Add appends an agent.
func (s *Store) Add(a Agent) error {
	if _, ok := s.index[a.ID]; ok {
		return fmt.Errorf("agent %d: %w", a.ID, ErrDuplicateID)
	}
	if s.capacity > 0 && len(s.agents) >= s.capacity {
		return fmt.Errorf("agent %d (capacity %d): %w", a.ID, s.capacity, ErrCapacityExceeded)
	}
	s.index[a.ID] = len(s.agents)
	s.agents = append(s.agents, a)
	return nil
}

// Remove deletes an agent by moving the last slot into its place.
// It reports whether the id was live.
func (s *Store) Remove(id AgentID) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	last := len(s.agents) - 1
	if i != last {
		s.agents[i] = s.agents[last]
		s.index[s.agents[i].ID] = i
	}
	s.agents = s.agents[:last]
	delete(s.index, id)
	return true
}

// Get returns a copy of the agent with the given id.
func (s *Store) Get(id AgentID) (Agent, bool) {
	i, ok := s.index[id]
	if !ok {
		return Agent{}, false
	}
	return s.agents[i], true
}

// MustIndex returns the slot of a live agent. An unknown id inside a tick is a
// sequencing bug, so it panics.
func (s *Store) MustIndex(id AgentID) int {
	i, ok := s.index[id]
	if !ok {
		panic(fmt.Sprintf("flock: agent %d is not in the store", id))
	}
	return i
}

// Agents exposes the live slots. Callers outside the package must not keep it
// across a Step.
func (s *Store) Agents() []Agent { return s.agents }

// CopyTo copies all agents into dst, reusing its capacity.
func (s *Store) CopyTo(dst []Agent) []Agent {
	return append(dst[:0], s.agents...)
}
