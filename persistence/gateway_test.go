package persistence

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lixenwraith/chimera-mind/ai"
	"github.com/lixenwraith/chimera-mind/clock"
	"github.com/lixenwraith/chimera-mind/memory"
)

func testGateway(t *testing.T) (*Gateway, *ai.System, *clock.Mock) {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	clk := clock.NewMock(time.Unix(5000, 0))
	sys := ai.NewSystem(clk, memory.NewManager(clk, nil), ai.Options{Seed: 11})
	return NewGateway(sys, db), sys, clk
}

func TestGateway_EntityRoundTrip(t *testing.T) {
	g, sys, clk := testGateway(t)

	e := sys.CreateEntity("boss_1", ai.StrategyEvolutionary, ai.StateGuard)
	e.TargetID = "player_1"
	sys.Memory().AddMemory("boss_1", memory.CategoryCombat, map[string]any{"hit": true}, 0.8)
	clk.Advance(time.Second)
	sys.Memory().AddMemory("boss_1", memory.CategoryMovement, nil, 0.4)
	sys.Decide("boss_1", ai.DefaultSnapshot())
	sys.Evolve("boss_1", 3.5)
	sys.LearnFromExperience("boss_1", ai.Experience{
		Type:             "ambush",
		Actions:          []string{"guard", "attack"},
		SuccessRate:      0.75,
		ExperienceGained: 25,
	})

	if err := g.SaveEntity("boss_1"); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Restore into a fresh system sharing the same database
	clk2 := clock.NewMock(time.Unix(9000, 0))
	sys2 := ai.NewSystem(clk2, memory.NewManager(clk2, nil), ai.Options{Seed: 99})
	g2 := NewGateway(sys2, g.db)
	if err := g2.LoadEntity("boss_1"); err != nil {
		t.Fatalf("load: %v", err)
	}

	r, ok := sys2.Entity("boss_1")
	if !ok {
		t.Fatal("entity missing after load")
	}
	if r.Strategy != ai.StrategyEvolutionary || r.State != ai.StateGuard {
		t.Errorf("strategy/state = %v/%v", r.Strategy, r.State)
	}
	if r.TargetID != "player_1" {
		t.Errorf("target = %q, want player_1", r.TargetID)
	}
	if r.Fitness != 3.5 || r.Generation != 1 {
		t.Errorf("fitness/generation = %v/%d, want 3.5/1", r.Fitness, r.Generation)
	}
	if !r.LastDecisionTime.IsZero() {
		t.Error("restored entity should start with a clear cooldown")
	}

	// Scorer weights must round-trip bit for bit
	for i, row := range e.Scorer.WeightsInHidden {
		for j, w := range row {
			if r.Scorer.WeightsInHidden[i][j] != w {
				t.Fatalf("weight [%d][%d] changed across round trip", i, j)
			}
		}
	}
	for i, b := range e.Scorer.BiasOut {
		if r.Scorer.BiasOut[i] != b {
			t.Fatalf("output bias %d changed across round trip", i)
		}
	}

	stats := sys2.Memory().GetStats("boss_1")
	if stats.ShortTermCount != 2 {
		t.Errorf("short-term count = %d, want 2", stats.ShortTermCount)
	}
	if stats.TotalExperience == 0 {
		t.Error("experience not restored")
	}

	got := sys2.Memory().GetMemories("boss_1", memory.CategoryCombat, 1)
	if len(got) != 1 || got[0].Importance != 0.8 {
		t.Fatalf("combat memory not restored: %+v", got)
	}
	if v, ok := got[0].Payload["hit"].(bool); !ok || !v {
		t.Error("payload not restored")
	}

	restored, _ := sys2.Memory().Export("boss_1")
	if len(restored.Patterns) != 1 {
		t.Fatalf("patterns = %d after load, want 1", len(restored.Patterns))
	}
	if p := restored.Patterns[0]; p.PatternType != "ambush" || p.SuccessRate != 0.75 ||
		len(p.Actions) != 2 {
		t.Errorf("pattern mutated across round trip: %+v", p)
	}
}

func TestGateway_SharedRoundTrip(t *testing.T) {
	g, sys, _ := testGateway(t)

	sys.Memory().AddMemory("goblin_1", memory.CategoryCombat, nil, 0.9)
	sys.Memory().AddMemory("goblin_2", memory.CategoryCombat, nil, 0.6)
	total := sys.Memory().Bank().TotalLearningExperience()
	if total == 0 {
		t.Fatal("setup: bank accumulator empty")
	}

	if err := g.SaveShared(); err != nil {
		t.Fatalf("save shared: %v", err)
	}

	clk2 := clock.NewMock(time.Unix(9000, 0))
	sys2 := ai.NewSystem(clk2, memory.NewManager(clk2, nil), ai.Options{Seed: 1})
	g2 := NewGateway(sys2, g.db)
	if err := g2.LoadShared(); err != nil {
		t.Fatalf("load shared: %v", err)
	}

	bank := sys2.Memory().Bank()
	if bank.Len() != 2 {
		t.Errorf("bank entries = %d, want 2", bank.Len())
	}
	if bank.TotalLearningExperience() != total {
		t.Errorf("accumulator = %v, want %v", bank.TotalLearningExperience(), total)
	}
}

func TestGateway_LoadMissingEntity(t *testing.T) {
	g, _, _ := testGateway(t)

	err := g.LoadEntity("nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGateway_ApplyRejectsBadDocument(t *testing.T) {
	g, sys, _ := testGateway(t)
	sys.CreateEntity("e1", ai.StrategyStateMachine, ai.StateIdle)

	cases := []struct {
		name string
		doc  EntityDocument
	}{
		{"missing id", EntityDocument{Metadata: MetadataDTO{Strategy: "neural"}}},
		{"unknown strategy", EntityDocument{EntityID: "e1", Metadata: MetadataDTO{Strategy: "psychic"}}},
		{"scorer missing", EntityDocument{EntityID: "e1", Metadata: MetadataDTO{Strategy: "neural"}}},
		{"scorer truncated", EntityDocument{
			EntityID: "e1",
			Metadata: MetadataDTO{Strategy: "neural"},
			Scorer: &ScorerDTO{
				InputSize: 20, HiddenSize: 16, OutputSize: 8,
				WeightsInHidden: make([][]float64, 3),
			},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := g.Apply(&tc.doc); err == nil {
				t.Fatal("bad document accepted")
			}
			// Existing entity untouched by failed loads against its id
			if e, ok := sys.Entity("e1"); !ok || e.Strategy != ai.StrategyStateMachine {
				t.Error("failed apply mutated live state")
			}
		})
	}
}

func TestGateway_SaveAllAndList(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "saves", "world.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	clk := clock.NewMock(time.Unix(0, 0))
	sys := ai.NewSystem(clk, memory.NewManager(clk, nil), ai.Options{Seed: 2})
	g := NewGateway(sys, db)

	sys.CreateEntity("player_1", ai.StrategyStateMachine, ai.StateIdle)
	sys.CreateEntity("chimera_1", ai.StrategyNeural, ai.StateIdle)

	if err := g.SaveAll(); err != nil {
		t.Fatalf("save all: %v", err)
	}

	ids, err := g.SavedEntityIDs()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "chimera_1" || ids[1] != "player_1" {
		t.Errorf("ids = %v", ids)
	}

	// Saving again overwrites rather than duplicating
	if err := g.SaveAll(); err != nil {
		t.Fatalf("second save: %v", err)
	}
	ids, _ = g.SavedEntityIDs()
	if len(ids) != 2 {
		t.Errorf("ids after resave = %v", ids)
	}
}
