package ai

import "fmt"

// Action is one discrete command emitted toward the external
// action-executor. Closed 8-element vocabulary; the neural scorer's output
// indices map onto ActionVocabulary in order.
type Action string

const (
	ActionIdle     Action = "idle"
	ActionPatrol   Action = "patrol"
	ActionChase    Action = "chase"
	ActionAttack   Action = "attack"
	ActionFlee     Action = "flee"
	ActionSearch   Action = "search"
	ActionGuard    Action = "guard"
	ActionInteract Action = "interact"
)

// ActionVocabulary is the fixed index-to-action mapping for scorer outputs
var ActionVocabulary = [8]Action{
	ActionIdle,
	ActionPatrol,
	ActionChase,
	ActionAttack,
	ActionFlee,
	ActionSearch,
	ActionGuard,
	ActionInteract,
}

// State is an entity's current behavioral state
type State string

const (
	StateIdle     State = "idle"
	StatePatrol   State = "patrol"
	StateChase    State = "chase"
	StateAttack   State = "attack"
	StateFlee     State = "flee"
	StateSearch   State = "search"
	StateGuard    State = "guard"
	StateInteract State = "interact"
)

// StrategyKind selects the decision strategy. Bound once at entity
// creation, never switched implicitly.
type StrategyKind string

const (
	StrategyStateMachine  StrategyKind = "state_machine"
	StrategyNeural        StrategyKind = "neural"
	StrategyReinforcement StrategyKind = "reinforcement"
	StrategyEvolutionary  StrategyKind = "evolutionary"
)

// ParseStrategy validates a strategy name coming from a document or config
func ParseStrategy(s string) (StrategyKind, error) {
	switch k := StrategyKind(s); k {
	case StrategyStateMachine, StrategyNeural, StrategyReinforcement, StrategyEvolutionary:
		return k, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// UsesScorer reports whether the strategy requires a neural scorer
func (k StrategyKind) UsesScorer() bool {
	switch k {
	case StrategyNeural, StrategyReinforcement, StrategyEvolutionary:
		return true
	}
	return false
}

// RecordsSamples reports whether accepted decisions are logged for later
// reward attribution
func (k StrategyKind) RecordsSamples() bool {
	return k == StrategyReinforcement || k == StrategyEvolutionary
}
