package parameter

import "time"

// Memory - Store Capacities
const (
	// MemoryShortTermCapacity caps the per-entity FIFO short-term list
	MemoryShortTermCapacity = 50

	// MemoryLongTermCapacity caps the per-entity long-term list and the shared bank
	MemoryLongTermCapacity = 1000
)

// Memory - Consolidation
const (
	// MemoryConsolidationThreshold is the minimum strength for long-term promotion
	MemoryConsolidationThreshold = 0.7

	// MemoryConsolidationInterval is the minimum simulated time between
	// consolidation passes for one entity
	MemoryConsolidationInterval = 60 * time.Second

	// MemoryAccessStrengthWeight scales access count in the strength formula:
	// strength = (importance + accessCount*weight) / 2
	MemoryAccessStrengthWeight = 0.1
)

// Memory - Decay
const (
	// MemoryDefaultDecayRate is importance lost per second of simulated time
	MemoryDefaultDecayRate = 0.01

	// MemoryPruneFloor removes any entry whose importance decays to or below it
	MemoryPruneFloor = 0.1

	// MemoryDefaultImportance is assigned when a caller does not specify one
	MemoryDefaultImportance = 0.5
)

// Memory - Retrieval
const (
	// MemoryDefaultRetrievalLimit bounds GetMemories results when unspecified
	MemoryDefaultRetrievalLimit = 10
)

// Learning rates per archetype. Fixed at compile time, never mutated at
// runtime; bosses learn slowest individually but still feed the shared bank.
const (
	LearnRatePlayer     = 1.0
	LearnRateBasicEnemy = 0.05
	LearnRateChimera    = 0.02
	LearnRateBoss       = 0.01
)

// Progression - derived level and evolution-stage divisors
const (
	PlayerLevelDivisor    = 100.0
	PlayerLevelCap        = 10
	SharedLevelDivisor    = 500.0
	SharedLevelCap        = 5
	PlayerStageDivisor    = 1000.0
	PlayerStageCap        = 10
	SharedStageDivisor    = 2000.0
	SharedStageCap        = 5
	LearningPatternsLimit = 100
)
