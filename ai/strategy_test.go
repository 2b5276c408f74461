package ai

import (
	"testing"
	"time"
)

func decideAt(t *testing.T, sys *System, clk interface{ Advance(time.Duration) }, id string, snap Snapshot) Action {
	t.Helper()
	clk.Advance(time.Second)
	a, ok := sys.Decide(id, snap)
	if !ok {
		t.Fatal("decision unexpectedly rejected")
	}
	return a
}

func enemyAt(dist, health float64) Snapshot {
	snap := DefaultSnapshot()
	snap.NearestEnemy = &EnemySummary{ID: "foe", Distance: dist, Health: health}
	return snap
}

func TestStateMachine_IdleToPatrol(t *testing.T) {
	sys, clk := testSystem(1)
	e := sys.CreateEntity("e1", StrategyStateMachine, StateIdle)

	if a := decideAt(t, sys, clk, "e1", DefaultSnapshot()); a != ActionPatrol {
		t.Errorf("idle with no enemy = %v, want patrol", a)
	}
	if e.State != StatePatrol {
		t.Errorf("state = %v, want patrol", e.State)
	}
}

func TestStateMachine_EnemyContactStartsChase(t *testing.T) {
	sys, clk := testSystem(1)
	e := sys.CreateEntity("e1", StrategyStateMachine, StateIdle)

	if a := decideAt(t, sys, clk, "e1", enemyAt(8, 100)); a != ActionChase {
		t.Fatalf("idle with enemy = %v, want chase", a)
	}
	if e.State != StateChase || e.TargetID != "foe" {
		t.Errorf("state=%v target=%q, want chase/foe", e.State, e.TargetID)
	}

	// Same from patrol
	e2 := sys.CreateEntity("e2", StrategyStateMachine, StatePatrol)
	if a := decideAt(t, sys, clk, "e2", enemyAt(8, 100)); a != ActionChase {
		t.Errorf("patrol with enemy = %v, want chase", a)
	}
	if e2.TargetID != "foe" {
		t.Error("target not retained on contact from patrol")
	}
}

func TestStateMachine_ChaseTransitions(t *testing.T) {
	cases := []struct {
		name   string
		snap   Snapshot
		action Action
		state  State
	}{
		{"in attack range", enemyAt(1.5, 100), ActionAttack, StateAttack},
		{"still closing", enemyAt(5, 100), ActionChase, StateChase},
		{"target escaped", enemyAt(15, 100), ActionSearch, StateSearch},
		{"target vanished", DefaultSnapshot(), ActionSearch, StateSearch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sys, clk := testSystem(1)
			e := sys.CreateEntity("e1", StrategyStateMachine, StateChase)
			if a := decideAt(t, sys, clk, "e1", tc.snap); a != tc.action {
				t.Errorf("action = %v, want %v", a, tc.action)
			}
			if e.State != tc.state {
				t.Errorf("state = %v, want %v", e.State, tc.state)
			}
		})
	}
}

func TestStateMachine_AttackUntilTargetDead(t *testing.T) {
	sys, clk := testSystem(1)
	e := sys.CreateEntity("e1", StrategyStateMachine, StateAttack)
	e.TargetID = "foe"

	if a := decideAt(t, sys, clk, "e1", enemyAt(1, 40)); a != ActionAttack {
		t.Errorf("attack with live target = %v, want attack", a)
	}

	if a := decideAt(t, sys, clk, "e1", enemyAt(1, 0)); a != ActionIdle {
		t.Errorf("attack with dead target = %v, want idle", a)
	}
	if e.State != StateIdle || e.TargetID != "" {
		t.Errorf("state=%v target=%q after kill, want idle/cleared", e.State, e.TargetID)
	}
}

func TestStateMachine_SearchReacquires(t *testing.T) {
	sys, clk := testSystem(1)
	e := sys.CreateEntity("e1", StrategyStateMachine, StateSearch)

	if a := decideAt(t, sys, clk, "e1", DefaultSnapshot()); a != ActionSearch {
		t.Errorf("search with nothing found = %v, want search", a)
	}
	if a := decideAt(t, sys, clk, "e1", enemyAt(7, 100)); a != ActionChase {
		t.Errorf("search with enemy in range = %v, want chase", a)
	}
	if e.TargetID != "foe" {
		t.Error("target not set on reacquire")
	}
}

func TestStateMachine_ForeignStateFallsBackToIdle(t *testing.T) {
	sys, clk := testSystem(1)
	e := sys.CreateEntity("e1", StrategyStateMachine, State("berserk"))

	if a := decideAt(t, sys, clk, "e1", DefaultSnapshot()); a != ActionIdle {
		t.Errorf("foreign state = %v, want idle", a)
	}
	if e.State != StateIdle {
		t.Errorf("state = %v, want idle", e.State)
	}
}

func TestNormalizeSnapshot_Layout(t *testing.T) {
	sys, _ := testSystem(1)
	e := sys.CreateEntity("n1", StrategyNeural, StateIdle)

	snap := Snapshot{
		Position:         [3]float64{1, 2, 3},
		Health:           50,
		TimeOfDay:        0.25,
		WeatherIntensity: 0.8,
		NearestEnemy:     &EnemySummary{ID: "foe", Distance: 10, Health: 60, Position: [3]float64{4, 5, 6}},
	}

	got := normalizeSnapshot(sys, e, snap)
	want := []float64{1, 2, 3, 0.5, 0.5, 0.6, 4, 5, 6, 0.25, 0.8, 0, 0, 0, 0, 0, 0, 0, 0, 0}

	if len(got) != 20 {
		t.Fatalf("input vector length = %d, want 20", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("input[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNormalizeSnapshot_NoEnemySentinel(t *testing.T) {
	sys, _ := testSystem(1)
	e := sys.CreateEntity("n1", StrategyNeural, StateIdle)

	got := normalizeSnapshot(sys, e, DefaultSnapshot())
	want := []float64{1, 1, 0, 0, 0}
	for i, v := range want {
		if got[4+i] != v {
			t.Errorf("sentinel slot %d = %v, want %v", 4+i, got[4+i], v)
		}
	}
}

func TestNormalizeSnapshot_CombatMemorySignal(t *testing.T) {
	sys, _ := testSystem(1)
	e := sys.CreateEntity("n1", StrategyNeural, StateIdle)

	for i := 0; i < 5; i++ {
		sys.Memory().AddMemory("n1", "combat", nil, 0.9)
	}

	got := normalizeSnapshot(sys, e, DefaultSnapshot())
	if got[11] != 1 {
		t.Errorf("combat signal = %v, want capped at 1", got[11])
	}

	// The signal read counts as an access
	top := sys.Memory().GetMemories("n1", "combat", 1)
	if len(top) == 0 || top[0].AccessCount < 2 {
		t.Error("building the input vector should touch the counted entries")
	}
}
