package parameter

import "time"

// Decision Engine
const (
	// DecisionCooldown is the minimum simulated time between accepted
	// decisions for one entity
	DecisionCooldown = 100 * time.Millisecond

	// ExplorationEpsilon is the random-action probability for the
	// reinforcement strategy
	ExplorationEpsilon = 0.1

	// LearningLogLimit caps the per-entity recorded decision samples
	LearningLogLimit = 1000
)

// State Machine - distance thresholds (world units)
const (
	// AttackRange: closer than this, chase commits to attack
	AttackRange = 2.0

	// LoseTargetRange: farther than this, chase gives up and searches
	LoseTargetRange = 10.0
)

// Evolution
const (
	// MutationRate is the default per-weight mutation probability
	MutationRate = 0.05
)

// Snapshot normalization
const (
	// SnapshotEnemyDistanceScale normalizes enemy distance into [0,1]
	SnapshotEnemyDistanceScale = 20.0

	// SnapshotVitalScale normalizes health-like values into [0,1]
	SnapshotVitalScale = 100.0

	// SnapshotRecentMemoryWindow is the combat-memory count feeding one
	// input signal, capped at 1.0 after division
	SnapshotRecentMemoryWindow = 3
)
