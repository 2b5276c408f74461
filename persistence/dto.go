package persistence

import (
	"fmt"
	"time"

	"github.com/lixenwraith/chimera-mind/ai"
	"github.com/lixenwraith/chimera-mind/memory"
	"github.com/lixenwraith/chimera-mind/neural"
)

// EntityDocument is the serializable decision-and-memory state of one entity
type EntityDocument struct {
	EntityID  string      `json:"entity_id"`
	Archetype string      `json:"archetype"`
	Metadata  MetadataDTO `json:"metadata"`

	ShortTerm []EntryDTO   `json:"short_term"`
	LongTerm  []EntryDTO   `json:"long_term"`
	Patterns  []PatternDTO `json:"learning_patterns,omitempty"`

	TotalExperience   float64   `json:"total_experience"`
	EvolutionStage    int       `json:"evolution_stage"`
	LastConsolidation time.Time `json:"last_consolidation"`

	Scorer *ScorerDTO `json:"scorer,omitempty"`
}

// MetadataDTO carries the decision-side entity state
type MetadataDTO struct {
	Strategy   string  `json:"strategy"`
	State      string  `json:"state"`
	TargetID   string  `json:"target_id,omitempty"`
	Fitness    float64 `json:"fitness"`
	Generation int     `json:"generation"`
}

// EntryDTO is a serializable memory entry
type EntryDTO struct {
	ID           string         `json:"id"`
	Category     string         `json:"category"`
	Payload      map[string]any `json:"payload,omitempty"`
	Importance   float64        `json:"importance"`
	CreatedAt    time.Time      `json:"created_at"`
	LastAccessed time.Time      `json:"last_accessed"`
	AccessCount  int            `json:"access_count"`
	DecayRate    float64        `json:"decay_rate"`
	Consolidated bool           `json:"consolidated,omitempty"`
}

// PatternDTO is a serializable learning pattern
type PatternDTO struct {
	ID          string         `json:"id"`
	PatternType string         `json:"pattern_type"`
	Conditions  map[string]any `json:"conditions,omitempty"`
	Actions     []string       `json:"actions,omitempty"`
	SuccessRate float64        `json:"success_rate"`
	UsageCount  int            `json:"usage_count"`
	LastUsed    time.Time      `json:"last_used"`
}

// ScorerDTO is a serializable scorer. float64 JSON round-trips exactly for
// every weight a mutation can produce.
type ScorerDTO struct {
	InputSize  int `json:"input_size"`
	HiddenSize int `json:"hidden_size"`
	OutputSize int `json:"output_size"`

	WeightsInHidden  [][]float64 `json:"weights_in_hidden"`
	WeightsHiddenOut [][]float64 `json:"weights_hidden_out"`
	BiasHidden       []float64   `json:"bias_hidden"`
	BiasOut          []float64   `json:"bias_out"`
}

// SharedDocument is the serializable shared-bank state
type SharedDocument struct {
	Entries                 []EntryDTO   `json:"entries"`
	Patterns                []PatternDTO `json:"learning_patterns,omitempty"`
	TotalLearningExperience float64      `json:"total_learning_experience"`
}

func fromEntry(e memory.Entry) EntryDTO {
	return EntryDTO{
		ID:           e.ID,
		Category:     string(e.Category),
		Payload:      e.Payload,
		Importance:   e.Importance,
		CreatedAt:    e.CreatedAt,
		LastAccessed: e.LastAccessed,
		AccessCount:  e.AccessCount,
		DecayRate:    e.DecayRate,
		Consolidated: e.Consolidated,
	}
}

func (dto EntryDTO) toEntry(ownerID string) memory.Entry {
	return memory.Entry{
		ID:           dto.ID,
		OwnerID:      ownerID,
		Category:     memory.Category(dto.Category),
		Payload:      dto.Payload,
		Importance:   dto.Importance,
		CreatedAt:    dto.CreatedAt,
		LastAccessed: dto.LastAccessed,
		AccessCount:  dto.AccessCount,
		DecayRate:    dto.DecayRate,
		Consolidated: dto.Consolidated,
	}
}

func fromPattern(p memory.LearningPattern) PatternDTO {
	return PatternDTO{
		ID:          p.ID,
		PatternType: p.PatternType,
		Conditions:  p.Conditions,
		Actions:     p.Actions,
		SuccessRate: p.SuccessRate,
		UsageCount:  p.UsageCount,
		LastUsed:    p.LastUsed,
	}
}

func (dto PatternDTO) toPattern(ownerID string) memory.LearningPattern {
	return memory.LearningPattern{
		ID:          dto.ID,
		OwnerID:     ownerID,
		PatternType: dto.PatternType,
		Conditions:  dto.Conditions,
		Actions:     dto.Actions,
		SuccessRate: dto.SuccessRate,
		UsageCount:  dto.UsageCount,
		LastUsed:    dto.LastUsed,
	}
}

func fromScorer(n *neural.Network) *ScorerDTO {
	if n == nil {
		return nil
	}
	c := n.Clone()
	return &ScorerDTO{
		InputSize:        c.InputSize,
		HiddenSize:       c.HiddenSize,
		OutputSize:       c.OutputSize,
		WeightsInHidden:  c.WeightsInHidden,
		WeightsHiddenOut: c.WeightsHiddenOut,
		BiasHidden:       c.BiasHidden,
		BiasOut:          c.BiasOut,
	}
}

// toScorer validates dimensions before building the network; a truncated or
// hand-edited document fails here instead of panicking mid-decision
func (dto *ScorerDTO) toScorer() (*neural.Network, error) {
	if dto == nil {
		return nil, nil
	}
	if len(dto.WeightsInHidden) != dto.InputSize ||
		len(dto.WeightsHiddenOut) != dto.HiddenSize ||
		len(dto.BiasHidden) != dto.HiddenSize ||
		len(dto.BiasOut) != dto.OutputSize {
		return nil, fmt.Errorf("scorer dimensions inconsistent with %d-%d-%d topology",
			dto.InputSize, dto.HiddenSize, dto.OutputSize)
	}
	for i, row := range dto.WeightsInHidden {
		if len(row) != dto.HiddenSize {
			return nil, fmt.Errorf("weights_in_hidden row %d has %d columns, want %d", i, len(row), dto.HiddenSize)
		}
	}
	for i, row := range dto.WeightsHiddenOut {
		if len(row) != dto.OutputSize {
			return nil, fmt.Errorf("weights_hidden_out row %d has %d columns, want %d", i, len(row), dto.OutputSize)
		}
	}

	n := neural.NewSized(dto.InputSize, dto.HiddenSize, dto.OutputSize, nil)
	for i := range dto.WeightsInHidden {
		copy(n.WeightsInHidden[i], dto.WeightsInHidden[i])
	}
	for i := range dto.WeightsHiddenOut {
		copy(n.WeightsHiddenOut[i], dto.WeightsHiddenOut[i])
	}
	copy(n.BiasHidden, dto.BiasHidden)
	copy(n.BiasOut, dto.BiasOut)
	return n, nil
}

// FromEntity builds a document from live system state. The memory copies are
// detached; mutating the system afterwards does not change the document.
func FromEntity(sys *ai.System, entityID string) (*EntityDocument, error) {
	e, ok := sys.Entity(entityID)
	if !ok {
		return nil, fmt.Errorf("entity %q not registered", entityID)
	}
	state, ok := sys.Memory().Export(entityID)
	if !ok {
		return nil, fmt.Errorf("entity %q has no memory store", entityID)
	}

	doc := &EntityDocument{
		EntityID:  entityID,
		Archetype: string(state.Archetype),
		Metadata: MetadataDTO{
			Strategy:   string(e.Strategy),
			State:      string(e.State),
			TargetID:   e.TargetID,
			Fitness:    e.Fitness,
			Generation: e.Generation,
		},
		ShortTerm:         make([]EntryDTO, len(state.ShortTerm)),
		LongTerm:          make([]EntryDTO, len(state.LongTerm)),
		Patterns:          make([]PatternDTO, len(state.Patterns)),
		TotalExperience:   state.TotalExperience,
		EvolutionStage:    state.EvolutionStage,
		LastConsolidation: state.LastConsolidation,
		Scorer:            fromScorer(e.Scorer),
	}
	for i, entry := range state.ShortTerm {
		doc.ShortTerm[i] = fromEntry(entry)
	}
	for i, entry := range state.LongTerm {
		doc.LongTerm[i] = fromEntry(entry)
	}
	for i, p := range state.Patterns {
		doc.Patterns[i] = fromPattern(p)
	}
	return doc, nil
}

// FromShared builds a document from the shared bank
func FromShared(bank *memory.SharedBank) *SharedDocument {
	entries, patterns, total := bank.Snapshot()

	doc := &SharedDocument{
		Entries:                 make([]EntryDTO, len(entries)),
		Patterns:                make([]PatternDTO, len(patterns)),
		TotalLearningExperience: total,
	}
	for i, e := range entries {
		doc.Entries[i] = fromEntry(e)
	}
	for i, p := range patterns {
		doc.Patterns[i] = fromPattern(p)
	}
	return doc
}
