package ai

import (
	"github.com/google/uuid"

	"github.com/lixenwraith/chimera-mind/logger"
	"github.com/lixenwraith/chimera-mind/memory"
)

// Experience carries gameplay feedback into the learning path
type Experience struct {
	Type       string
	Conditions map[string]any
	Actions    []string

	SuccessRate      float64
	ExperienceGained float64

	// Reward attributes to the most recent pending decision sample
	// (reinforcement strategies)
	Reward float64

	// FitnessDelta accumulates into the running fitness score
	// (evolutionary strategies)
	FitnessDelta float64
}

// Evolve applies a fitness score to an entity. Evolutionary strategies
// additionally mutate their scorer and advance a generation — strictly
// outside any decision call. Other strategies just record the score.
func (s *System) Evolve(entityID string, fitness float64) {
	e := s.entity(entityID)
	e.Fitness = fitness

	if e.Strategy != StrategyEvolutionary || e.Scorer == nil {
		return
	}

	e.Scorer.Mutate(s.mutationRate)
	e.Generation++
	logger.Debug("scorer mutated", "entity", entityID, "generation", e.Generation, "fitness", fitness)
}

// LearnFromExperience routes gameplay feedback into the entity's learning
// state. Never fails: unknown entities auto-initialize, and strategies
// without a learning path record the pattern and move on.
func (s *System) LearnFromExperience(entityID string, exp Experience) {
	e := s.entity(entityID)

	s.mem.RecordPattern(entityID, memory.LearningPattern{
		ID:          uuid.NewString(),
		OwnerID:     entityID,
		PatternType: exp.Type,
		Conditions:  exp.Conditions,
		Actions:     exp.Actions,
		SuccessRate: exp.SuccessRate,
		LastUsed:    s.clk.Now(),
	})

	switch e.Strategy {
	case StrategyReinforcement:
		// Attribute the reward to the newest pending sample
		for i := len(e.samples) - 1; i >= 0; i-- {
			if !e.samples[i].Rewarded {
				e.samples[i].Reward = exp.Reward
				e.samples[i].Rewarded = true
				break
			}
		}
	case StrategyEvolutionary:
		e.Fitness += exp.FitnessDelta
	}

	s.mem.AddExperience(entityID, exp.ExperienceGained)
	s.mem.RefreshStage(entityID)
	s.learningEvents++
}
