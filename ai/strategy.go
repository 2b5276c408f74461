package ai

import (
	"errors"

	"github.com/lixenwraith/chimera-mind/memory"
	"github.com/lixenwraith/chimera-mind/parameter"
)

// strategy is the decision capability bound to an entity at creation.
// Implementations may mutate the entity's behavioral state and target, but
// never its scorer weights and never the cooldown bookkeeping — the system
// owns those.
type strategy interface {
	decide(sys *System, e *Entity, snap Snapshot) (Action, error)
}

var errNoScorer = errors.New("strategy requires a scorer but entity has none")

// --- State Machine ---

// stateMachine is the deterministic transition table over
// {idle, patrol, chase, attack, search}. It retains the entity's target id
// across calls; flee/guard/interact are reachable only by the scorer-based
// strategies.
type stateMachine struct{}

func (stateMachine) decide(sys *System, e *Entity, snap Snapshot) (Action, error) {
	enemy := snap.NearestEnemy

	switch e.State {
	case StateIdle:
		if enemy != nil {
			e.State = StateChase
			e.TargetID = enemy.ID
			return ActionChase, nil
		}
		e.State = StatePatrol
		return ActionPatrol, nil

	case StatePatrol:
		if enemy != nil {
			e.State = StateChase
			e.TargetID = enemy.ID
			return ActionChase, nil
		}
		return ActionPatrol, nil

	case StateChase:
		if enemy == nil {
			e.State = StateSearch
			return ActionSearch, nil
		}
		switch {
		case enemy.Distance < parameter.AttackRange:
			e.State = StateAttack
			return ActionAttack, nil
		case enemy.Distance > parameter.LoseTargetRange:
			e.State = StateSearch
			return ActionSearch, nil
		}
		return ActionChase, nil

	case StateAttack:
		if enemy == nil || enemy.Health <= 0 {
			e.State = StateIdle
			e.TargetID = ""
			return ActionIdle, nil
		}
		return ActionAttack, nil

	case StateSearch:
		if enemy != nil && enemy.Distance <= parameter.LoseTargetRange {
			e.State = StateChase
			e.TargetID = enemy.ID
			return ActionChase, nil
		}
		return ActionSearch, nil
	}

	// Foreign state (e.g. restored from an older save): fall back to idle
	e.State = StateIdle
	return ActionIdle, nil
}

// --- Neural ---

// neuralPolicy picks the argmax action from the scorer's preference vector.
// Deterministic given identical weights and inputs.
type neuralPolicy struct{}

func (neuralPolicy) decide(sys *System, e *Entity, snap Snapshot) (Action, error) {
	return scorerAction(sys, e, snap)
}

// --- Reinforcement ---

// reinforcement is the neural policy with epsilon-greedy exploration.
// Sample recording happens in the system after acceptance.
type reinforcement struct{}

func (reinforcement) decide(sys *System, e *Entity, snap Snapshot) (Action, error) {
	if sys.rng.Float64() < sys.epsilon {
		return ActionVocabulary[sys.rng.IntN(len(ActionVocabulary))], nil
	}
	return scorerAction(sys, e, snap)
}

// --- Evolutionary ---

// evolutionary shares the neural forward pass; its weights change only
// through System.Evolve, never inside a decision
type evolutionary struct{}

func (evolutionary) decide(sys *System, e *Entity, snap Snapshot) (Action, error) {
	return scorerAction(sys, e, snap)
}

// scorerAction runs the shared forward pass and maps the best output index
// onto the action vocabulary
func scorerAction(sys *System, e *Entity, snap Snapshot) (Action, error) {
	if e.Scorer == nil {
		return "", errNoScorer
	}

	inputs := normalizeSnapshot(sys, e, snap)
	outputs, err := e.Scorer.Forward(inputs)
	if err != nil {
		return "", err
	}

	best := 0
	for i := 1; i < len(outputs); i++ {
		if outputs[i] > outputs[best] {
			best = i
		}
	}
	return ActionVocabulary[best], nil
}

// normalizeSnapshot flattens a snapshot into the fixed 20-element input
// vector. Layout is load-bearing for saved scorers:
//
//	[0..2]  position x,y,z
//	[3]     health / 100
//	[4..8]  enemy distance/20, enemy health/100, enemy x,y,z — or the
//	        no-enemy sentinel 1,1,0,0,0
//	[9]     time of day
//	[10]    weather intensity
//	[11]    recent combat memories / 3, capped at 1
//	[12..]  zero padding
//
// The memory-count signal goes through regular retrieval, so building the
// vector bumps access metadata on the entries it counts, exactly like every
// other read.
func normalizeSnapshot(sys *System, e *Entity, snap Snapshot) []float64 {
	inputs := make([]float64, 0, parameter.NeuralInputSize)

	inputs = append(inputs, snap.Position[0], snap.Position[1], snap.Position[2])
	inputs = append(inputs, snap.Health/parameter.SnapshotVitalScale)

	if enemy := snap.NearestEnemy; enemy != nil {
		inputs = append(inputs,
			enemy.Distance/parameter.SnapshotEnemyDistanceScale,
			enemy.Health/parameter.SnapshotVitalScale,
			enemy.Position[0], enemy.Position[1], enemy.Position[2])
	} else {
		inputs = append(inputs, 1, 1, 0, 0, 0)
	}

	inputs = append(inputs, snap.TimeOfDay, snap.WeatherIntensity)

	recent := sys.mem.GetMemories(e.ID, memory.CategoryCombat, parameter.SnapshotRecentMemoryWindow)
	signal := float64(len(recent)) / float64(parameter.SnapshotRecentMemoryWindow)
	if signal > 1 {
		signal = 1
	}
	inputs = append(inputs, signal)

	for len(inputs) < parameter.NeuralInputSize {
		inputs = append(inputs, 0)
	}
	return inputs[:parameter.NeuralInputSize]
}

// newStrategy binds a kind to its implementation
func newStrategy(kind StrategyKind) strategy {
	switch kind {
	case StrategyNeural:
		return neuralPolicy{}
	case StrategyReinforcement:
		return reinforcement{}
	case StrategyEvolutionary:
		return evolutionary{}
	}
	return stateMachine{}
}
