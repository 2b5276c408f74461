package memory

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lixenwraith/chimera-mind/clock"
	"github.com/lixenwraith/chimera-mind/logger"
	"github.com/lixenwraith/chimera-mind/parameter"
)

// Manager owns every per-entity store plus the session's shared bank.
// All operations are synchronous and non-blocking; the host drives
// consolidation and decay through Update(dt) once per tick.
type Manager struct {
	clk    clock.Clock
	stores map[string]*Store
	bank   *SharedBank
	tuning Tuning
}

// Tuning overrides the built-in memory timing constants. Zero values keep
// the defaults; changing tuning mid-session affects only future entries and
// passes.
type Tuning struct {
	DefaultDecayRate       float64
	ConsolidationInterval  time.Duration
	ConsolidationThreshold float64
}

func (t Tuning) withDefaults() Tuning {
	if t.DefaultDecayRate <= 0 {
		t.DefaultDecayRate = parameter.MemoryDefaultDecayRate
	}
	if t.ConsolidationInterval <= 0 {
		t.ConsolidationInterval = parameter.MemoryConsolidationInterval
	}
	if t.ConsolidationThreshold <= 0 {
		t.ConsolidationThreshold = parameter.MemoryConsolidationThreshold
	}
	return t
}

// NewManager creates a manager bound to a clock. A nil bank gets a fresh
// isolated one; hosts share banks across managers by injecting the same
// instance.
func NewManager(clk clock.Clock, bank *SharedBank) *Manager {
	if bank == nil {
		bank = NewSharedBank()
	}
	return &Manager{
		clk:    clk,
		stores: make(map[string]*Store),
		bank:   bank,
		tuning: Tuning{}.withDefaults(),
	}
}

// SetTuning replaces the manager's tuning, filling unset fields with
// defaults
func (m *Manager) SetTuning(t Tuning) {
	m.tuning = t.withDefaults()
}

// Bank returns the shared bank this manager feeds
func (m *Manager) Bank() *SharedBank {
	return m.bank
}

// InitializeEntity registers an entity with an explicit archetype.
// Idempotent: an existing store is left untouched.
func (m *Manager) InitializeEntity(entityID string, archetype Archetype) {
	if _, ok := m.stores[entityID]; ok {
		return
	}
	m.stores[entityID] = newStore(entityID, archetype, m.clk.Now())
	logger.Debug("memory store initialized", "entity", entityID, "archetype", string(archetype))
}

// RemoveEntity drops an entity's store. The shared bank keeps whatever the
// entity contributed.
func (m *Manager) RemoveEntity(entityID string) {
	delete(m.stores, entityID)
}

// Known reports whether an entity has a store
func (m *Manager) Known(entityID string) bool {
	_, ok := m.stores[entityID]
	return ok
}

// store fetches or lazily creates an entity's store, inferring the
// archetype from the id prefix. Memory operations never fail on unknown
// entities; hot-path resilience wins over strictness here.
func (m *Manager) store(entityID string) *Store {
	s, ok := m.stores[entityID]
	if !ok {
		s = newStore(entityID, ArchetypeFromID(entityID), m.clk.Now())
		m.stores[entityID] = s
	}
	return s
}

// AddMemory appends a new entry to the entity's short-term memory and
// returns its id. An importance <= 0 takes the default. Non-player
// archetypes additionally contribute a rate-weighted copy to the shared
// bank.
func (m *Manager) AddMemory(entityID string, category Category, payload map[string]any, importance float64) string {
	s := m.store(entityID)
	now := m.clk.Now()

	if importance <= 0 {
		importance = parameter.MemoryDefaultImportance
	}

	e := &Entry{
		ID:           uuid.NewString(),
		OwnerID:      entityID,
		Category:     category,
		Payload:      payload,
		Importance:   importance,
		CreatedAt:    now,
		LastAccessed: now,
		DecayRate:    m.tuning.DefaultDecayRate,
	}

	s.add(e)

	if !s.Archetype.IsPlayer() {
		m.bank.Contribute(e, s.Archetype.Rate())
	}

	return e.ID
}

// GetMemories returns the entity's most relevant entries. Pass CategoryAny
// for no filter and limit <= 0 for the default. Returned entries have their
// access metadata refreshed.
func (m *Manager) GetMemories(entityID string, category Category, limit int) []*Entry {
	s, ok := m.stores[entityID]
	if !ok {
		return nil
	}
	return s.get(category, limit, m.clk.Now())
}

// SharedMemories reads from the shared bank with the same touch semantics
func (m *Manager) SharedMemories(category Category, limit int) []*Entry {
	return m.bank.Get(category, limit, m.clk.Now())
}

// RecentCount returns how many entries of a category the entity holds,
// capped at limit, without touching access metadata
func (m *Manager) RecentCount(entityID string, category Category, limit int) int {
	s, ok := m.stores[entityID]
	if !ok {
		return 0
	}
	return s.countRecent(category, limit)
}

// Consolidate runs one consolidation pass for an entity, returning the
// number of promoted entries. No-op inside the consolidation interval.
func (m *Manager) Consolidate(entityID string) int {
	s, ok := m.stores[entityID]
	if !ok {
		return 0
	}
	promoted := s.consolidate(m.clk.Now(), m.tuning)
	if promoted > 0 {
		logger.Debug("memories consolidated", "entity", entityID, "promoted", promoted)
	}
	return promoted
}

// Decay ages one entity's memories by dt
func (m *Manager) Decay(entityID string, dt time.Duration) {
	if s, ok := m.stores[entityID]; ok {
		s.decay(dt)
	}
}

// Update runs consolidation then decay for every entity in stable id order,
// then ages the shared bank. Consolidation precedes decay, so an entry
// promoted this pass still decays at its original rate within the pass.
func (m *Manager) Update(dt time.Duration) {
	ids := make([]string, 0, len(m.stores))
	for id := range m.stores {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		s := m.stores[id]
		s.consolidate(m.clk.Now(), m.tuning)
		s.decay(dt)
	}

	m.bank.Decay(dt)
}

// RecordPattern stores a learning pattern on the entity. Non-player
// archetypes share the pattern with the bank, mirroring the entry
// contribution path.
func (m *Manager) RecordPattern(entityID string, p LearningPattern) {
	s := m.store(entityID)
	s.recordPattern(p)
	if !s.Archetype.IsPlayer() {
		m.bank.RecordPattern(p)
	}
}

// AddExperience grows the entity's accumulated experience outside of
// AddMemory, for reward attribution
func (m *Manager) AddExperience(entityID string, amount float64) {
	m.store(entityID).TotalExperience += amount
}

// Level derives the entity's memory level: players level from their own
// experience, everyone else from the shared bank accumulator
func (m *Manager) Level(entityID string) int {
	s, ok := m.stores[entityID]
	if !ok {
		return 1
	}
	if s.Archetype.IsPlayer() {
		return capInt(1+int(s.TotalExperience/parameter.PlayerLevelDivisor), parameter.PlayerLevelCap)
	}
	return capInt(1+int(m.bank.TotalLearningExperience()/parameter.SharedLevelDivisor), parameter.SharedLevelCap)
}

// RefreshStage recomputes the entity's evolution stage and reports whether
// it advanced
func (m *Manager) RefreshStage(entityID string) bool {
	s, ok := m.stores[entityID]
	if !ok {
		return false
	}
	var stage int
	if s.Archetype.IsPlayer() {
		stage = capInt(1+int(s.TotalExperience/parameter.PlayerStageDivisor), parameter.PlayerStageCap)
	} else {
		stage = capInt(1+int(m.bank.TotalLearningExperience()/parameter.SharedStageDivisor), parameter.SharedStageCap)
	}
	if stage > s.EvolutionStage {
		s.EvolutionStage = stage
		logger.Info("entity evolved", "entity", entityID, "stage", stage)
		return true
	}
	return false
}

// Stats summarizes one entity's memory state
type Stats struct {
	ShortTermCount    int
	LongTermCount     int
	LearningRate      float64
	TotalExperience   float64
	EvolutionStage    int
	LastConsolidation time.Time
}

// GetStats returns memory statistics for an entity, or zero stats if unknown
func (m *Manager) GetStats(entityID string) Stats {
	s, ok := m.stores[entityID]
	if !ok {
		return Stats{}
	}
	return Stats{
		ShortTermCount:    len(s.shortTerm),
		LongTermCount:     len(s.longTerm),
		LearningRate:      s.Archetype.Rate(),
		TotalExperience:   s.TotalExperience,
		EvolutionStage:    s.EvolutionStage,
		LastConsolidation: s.lastConsolidation,
	}
}

// StoreState is a detached copy of one entity's memory, used by the
// persistence gateway
type StoreState struct {
	OwnerID           string
	Archetype         Archetype
	ShortTerm         []Entry
	LongTerm          []Entry
	Patterns          []LearningPattern
	TotalExperience   float64
	EvolutionStage    int
	LastConsolidation time.Time
}

// Export returns a detached copy of an entity's memory state
func (m *Manager) Export(entityID string) (StoreState, bool) {
	s, ok := m.stores[entityID]
	if !ok {
		return StoreState{}, false
	}
	st := StoreState{
		OwnerID:           s.OwnerID,
		Archetype:         s.Archetype,
		ShortTerm:         make([]Entry, len(s.shortTerm)),
		LongTerm:          make([]Entry, len(s.longTerm)),
		Patterns:          append([]LearningPattern(nil), s.patterns...),
		TotalExperience:   s.TotalExperience,
		EvolutionStage:    s.EvolutionStage,
		LastConsolidation: s.lastConsolidation,
	}
	for i, e := range s.shortTerm {
		st.ShortTerm[i] = *e
	}
	for i, e := range s.longTerm {
		st.LongTerm[i] = *e
	}
	return st, true
}

// Restore replaces an entity's memory state wholesale. The previous store,
// if any, is discarded only after the new one is fully built.
func (m *Manager) Restore(state StoreState) {
	// A saved consolidation timestamp can postdate a new session's simulated
	// clock, which would hold the interval gate shut until the new clock
	// overtakes the old one. Clamp so the first interval starts counting now.
	last := state.LastConsolidation
	if now := m.clk.Now(); last.After(now) {
		last = now
	}
	s := newStore(state.OwnerID, state.Archetype, last)
	s.TotalExperience = state.TotalExperience
	s.EvolutionStage = state.EvolutionStage
	s.patterns = append([]LearningPattern(nil), state.Patterns...)
	s.shortTerm = make([]*Entry, len(state.ShortTerm))
	for i := range state.ShortTerm {
		e := state.ShortTerm[i]
		s.shortTerm[i] = &e
	}
	s.longTerm = make([]*Entry, len(state.LongTerm))
	for i := range state.LongTerm {
		e := state.LongTerm[i]
		s.longTerm[i] = &e
	}
	m.stores[state.OwnerID] = s
}

func capInt(v, max int) int {
	if v > max {
		return max
	}
	return v
}
