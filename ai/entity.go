package ai

import (
	"time"

	"github.com/lixenwraith/chimera-mind/neural"
	"github.com/lixenwraith/chimera-mind/parameter"
)

// Entity is the per-entity decision state. Created at spawn, removed at
// despawn; target references are plain ids resolved by the host, never
// owning pointers.
type Entity struct {
	ID       string
	Strategy StrategyKind
	State    State

	// TargetID is the id of the currently tracked target, "" when none
	TargetID string

	LastDecisionTime time.Time
	Cooldown         time.Duration

	Fitness    float64
	Generation int

	// DecisionCount is observability only; it never gates behavior
	DecisionCount int

	// Scorer is present for neural-family strategies, nil otherwise
	Scorer *neural.Network

	samples  []Sample
	strategy strategy
}

// Sample is one recorded decision awaiting reward attribution
type Sample struct {
	Time     time.Time
	Snapshot Snapshot
	Action   Action

	// Reward is meaningful only once Rewarded is set; zero is a valid
	// attributed reward
	Reward   float64
	Rewarded bool
}

// Samples returns the recorded learning log
func (e *Entity) Samples() []Sample {
	return e.samples
}

// recordSample appends a pending decision sample, capped at the log limit
func (e *Entity) recordSample(now time.Time, snap Snapshot, action Action) {
	e.samples = append(e.samples, Sample{Time: now, Snapshot: snap, Action: action})
	if len(e.samples) > parameter.LearningLogLimit {
		e.samples = e.samples[len(e.samples)-parameter.LearningLogLimit:]
	}
}
