package ai

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/lixenwraith/chimera-mind/clock"
	"github.com/lixenwraith/chimera-mind/logger"
	"github.com/lixenwraith/chimera-mind/memory"
	"github.com/lixenwraith/chimera-mind/neural"
	"github.com/lixenwraith/chimera-mind/parameter"
)

// System is the decision-and-memory core facade. Single-threaded,
// tick-driven: the host calls Decide per entity and Update once per sweep;
// nothing here blocks, sleeps, or touches wall time directly.
type System struct {
	clk clock.Clock
	mem *memory.Manager
	rng *rand.Rand

	entities map[string]*Entity

	cooldown     time.Duration
	mutationRate float64
	epsilon      float64

	decisionsMade  int
	learningEvents int
}

// Options tunes a System at construction. Zero values take documented
// defaults.
type Options struct {
	// Cooldown between accepted decisions per entity
	Cooldown time.Duration

	// MutationRate for evolutionary scorer mutation
	MutationRate float64

	// Epsilon is the reinforcement exploration probability
	Epsilon float64

	// Seed for the rng; 0 draws a random PCG seed
	Seed uint64
}

// NewSystem creates a system bound to a clock and a memory manager.
// The manager carries the session's shared bank; injecting the same manager
// into multiple systems is not supported.
func NewSystem(clk clock.Clock, mem *memory.Manager, opts Options) *System {
	if opts.Cooldown <= 0 {
		opts.Cooldown = parameter.DecisionCooldown
	}
	if opts.MutationRate <= 0 {
		opts.MutationRate = parameter.MutationRate
	}
	if opts.Epsilon <= 0 {
		opts.Epsilon = parameter.ExplorationEpsilon
	}

	var rng *rand.Rand
	if opts.Seed == 0 {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	} else {
		rng = rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	}

	return &System{
		clk:          clk,
		mem:          mem,
		rng:          rng,
		entities:     make(map[string]*Entity),
		cooldown:     opts.Cooldown,
		mutationRate: opts.MutationRate,
		epsilon:      opts.Epsilon,
	}
}

// Memory returns the memory manager backing this system
func (s *System) Memory() *memory.Manager {
	return s.mem
}

// CreateEntity registers an entity with the given strategy and initial
// state. Idempotent for an existing id. Neural-family strategies get a
// freshly initialized scorer.
func (s *System) CreateEntity(entityID string, kind StrategyKind, initial State) *Entity {
	if e, ok := s.entities[entityID]; ok {
		return e
	}
	if initial == "" {
		initial = StateIdle
	}

	e := &Entity{
		ID:       entityID,
		Strategy: kind,
		State:    initial,
		Cooldown: s.cooldown,
		strategy: newStrategy(kind),
	}
	if kind.UsesScorer() {
		e.Scorer = neural.New(s.rng)
	}

	s.entities[entityID] = e
	s.mem.InitializeEntity(entityID, memory.ArchetypeFromID(entityID))

	logger.Debug("entity created", "entity", entityID, "strategy", string(kind))
	return e
}

// RemoveEntity drops an entity and its memory. Persist first if the state
// should survive.
func (s *System) RemoveEntity(entityID string) {
	delete(s.entities, entityID)
	s.mem.RemoveEntity(entityID)
}

// Entity returns the decision state for an id
func (s *System) Entity(entityID string) (*Entity, bool) {
	e, ok := s.entities[entityID]
	return e, ok
}

// EntityIDs returns all registered ids in unspecified order
func (s *System) EntityIDs() []string {
	ids := make([]string, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	return ids
}

// entity fetches or lazily creates decision state. Unknown entities get the
// default state-machine strategy; resilience over strictness on the hot
// path.
func (s *System) entity(entityID string) *Entity {
	e, ok := s.entities[entityID]
	if !ok {
		e = s.CreateEntity(entityID, StrategyStateMachine, StateIdle)
	}
	return e
}

// Decide produces at most one action for the entity this tick. Returns
// (_, false) when the cooldown gate holds, or when the strategy fails —
// failures are contained here, logged, and leave the cooldown bookkeeping
// untouched so the next tick can retry.
func (s *System) Decide(entityID string, snap Snapshot) (action Action, ok bool) {
	e := s.entity(entityID)
	now := s.clk.Now()

	if !e.LastDecisionTime.IsZero() && now.Sub(e.LastDecisionTime) < e.Cooldown {
		return "", false
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("decision panicked", "entity", entityID, "cause", fmt.Sprint(r))
			action, ok = "", false
		}
	}()

	a, err := e.strategy.decide(s, e, snap)
	if err != nil {
		logger.Warn("decision failed", "entity", entityID, "error", err)
		return "", false
	}

	e.LastDecisionTime = now
	e.DecisionCount++
	s.decisionsMade++

	if e.Strategy.RecordsSamples() {
		e.recordSample(now, snap, a)
	}

	return a, true
}

// Update runs one consolidation/decay sweep over every entity's memory and
// the shared bank
func (s *System) Update(dt time.Duration) {
	s.mem.Update(dt)
}

// DecisionsMade returns the total accepted decisions, for observability
func (s *System) DecisionsMade() int {
	return s.decisionsMade
}

// LearningEvents returns the total learning feedback calls processed
func (s *System) LearningEvents() int {
	return s.learningEvents
}
