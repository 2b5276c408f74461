package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/chimera-mind/ai"
	"github.com/lixenwraith/chimera-mind/clock"
	"github.com/lixenwraith/chimera-mind/config"
	"github.com/lixenwraith/chimera-mind/logger"
	"github.com/lixenwraith/chimera-mind/memory"
	"github.com/lixenwraith/chimera-mind/persistence"
)

var (
	flagConfig string
	flagDB     string
)

func main() {
	root := &cobra.Command{
		Use:   "chimera-sim",
		Short: "Headless driver for the chimera decision-and-memory core",
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "tuning.yaml", "config file path")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "database path (overrides config)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newInspectCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDB != "" {
		cfg.Database.Path = flagDB
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

func newRunCmd() *cobra.Command {
	var (
		ticks    int
		entities int
		seed     uint64
		tickStep time.Duration
		resume   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate a population for a number of ticks and save the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := persistence.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			// Simulated time: the clock only moves when the loop says so
			clk := clock.NewMock(time.Unix(0, 0))
			mem := memory.NewManager(clk, nil)
			mem.SetTuning(memory.Tuning{
				DefaultDecayRate:       cfg.Memory.DecayRate,
				ConsolidationInterval:  cfg.Memory.ConsolidationInterval,
				ConsolidationThreshold: cfg.Memory.ConsolidationThreshold,
			})
			sys := ai.NewSystem(clk, mem, ai.Options{
				Cooldown:     cfg.Decision.Cooldown,
				MutationRate: cfg.Decision.MutationRate,
				Epsilon:      cfg.Decision.Epsilon,
				Seed:         seed,
			})
			gw := persistence.NewGateway(sys, db)

			if resume {
				if err := restorePopulation(gw); err != nil {
					return err
				}
			}
			if len(sys.EntityIDs()) == 0 {
				spawnPopulation(sys, entities)
			}

			watcher, err := config.Watch(flagConfig, func(c config.Config) {
				logger.SetLevel(logger.ParseLevel(c.LogLevel))
				mem.SetTuning(memory.Tuning{
					DefaultDecayRate:       c.Memory.DecayRate,
					ConsolidationInterval:  c.Memory.ConsolidationInterval,
					ConsolidationThreshold: c.Memory.ConsolidationThreshold,
				})
			})
			if err == nil {
				defer watcher.Close()
			}

			runLoop(sys, clk, ticks, tickStep, seed)

			if err := gw.SaveAll(); err != nil {
				return err
			}
			logger.Info("simulation saved",
				"path", db.Path,
				"entities", len(sys.EntityIDs()),
				"decisions", sys.DecisionsMade(),
				"learning_events", sys.LearningEvents(),
				"shared_experience", mem.Bank().TotalLearningExperience())
			return nil
		},
	}

	cmd.Flags().IntVar(&ticks, "ticks", 1000, "number of simulation ticks")
	cmd.Flags().IntVar(&entities, "entities", 12, "population size for a fresh run")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "rng seed (0 for random)")
	cmd.Flags().DurationVar(&tickStep, "tick-step", 200*time.Millisecond, "simulated time per tick")
	cmd.Flags().BoolVar(&resume, "resume", false, "restore the saved population before running")
	return cmd
}

// spawnPopulation creates a mixed population: one player, one boss, a
// couple of chimeras, the rest basic enemies cycling through strategies
func spawnPopulation(sys *ai.System, n int) {
	sys.CreateEntity("player_1", ai.StrategyStateMachine, ai.StateIdle)
	sys.CreateEntity("boss_1", ai.StrategyEvolutionary, ai.StateGuard)
	sys.CreateEntity("chimera_1", ai.StrategyNeural, ai.StateIdle)
	sys.CreateEntity("chimera_2", ai.StrategyReinforcement, ai.StateIdle)

	kinds := []ai.StrategyKind{
		ai.StrategyStateMachine,
		ai.StrategyNeural,
		ai.StrategyReinforcement,
		ai.StrategyEvolutionary,
	}
	for i := 4; i < n; i++ {
		id := fmt.Sprintf("grunt_%d", i-3)
		sys.CreateEntity(id, kinds[i%len(kinds)], ai.StateIdle)
	}
}

func restorePopulation(gw *persistence.Gateway) error {
	ids, err := gw.SavedEntityIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := gw.LoadEntity(id); err != nil {
			return err
		}
	}
	if err := gw.LoadShared(); err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return err
	}
	logger.Info("population restored", "entities", len(ids))
	return nil
}

// runLoop drives the core: each tick advances simulated time, synthesizes a
// snapshot per entity, asks for decisions, feeds back combat outcomes, and
// sweeps memory. Every few hundred ticks the population evolves on fitness.
func runLoop(sys *ai.System, clk *clock.Mock, ticks int, step time.Duration, seed uint64) {
	rng := rand.New(rand.NewPCG(seed+1, seed+1))
	fitness := make(map[string]float64)

	for tick := 0; tick < ticks; tick++ {
		clk.Advance(step)

		for _, id := range sys.EntityIDs() {
			snap := synthesizeSnapshot(rng, tick)
			action, ok := sys.Decide(id, snap)
			if !ok {
				continue
			}

			switch action {
			case ai.ActionAttack:
				won := rng.Float64() < 0.6
				reward := -0.5
				outcome := "combat_loss"
				if won {
					reward = 1.0
					outcome = "combat_win"
					fitness[id] += 1
				}
				sys.Memory().AddMemory(id, memory.CategoryCombat,
					map[string]any{"outcome": outcome, "tick": tick}, 0.7)
				sys.LearnFromExperience(id, ai.Experience{
					Type:             outcome,
					Actions:          []string{string(action)},
					SuccessRate:      0.6,
					ExperienceGained: 5,
					Reward:           reward,
					FitnessDelta:     reward,
				})
			case ai.ActionPatrol, ai.ActionSearch:
				// Light ambient observations, capped so patrols don't flood
				// short-term memory
				if rng.Float64() < 0.05 &&
					sys.Memory().RecentCount(id, memory.CategoryEnvironment, 5) < 5 {
					sys.Memory().AddMemory(id, memory.CategoryEnvironment,
						map[string]any{"tick": tick}, 0.3)
				}
			}
		}

		sys.Update(step)

		if tick > 0 && tick%300 == 0 {
			for id, score := range fitness {
				sys.Evolve(id, score)
			}
		}
	}
}

func synthesizeSnapshot(rng *rand.Rand, tick int) ai.Snapshot {
	snap := ai.DefaultSnapshot()
	snap.Position = [3]float64{rng.Float64() * 10, rng.Float64() * 10, 0}
	snap.TimeOfDay = float64(tick%1000) / 1000
	snap.WeatherIntensity = rng.Float64()

	// Roughly a third of ticks have a contact in range
	if rng.Float64() < 0.35 {
		snap.NearestEnemy = &ai.EnemySummary{
			ID:       "player_1",
			Distance: rng.Float64() * 12,
			Health:   rng.Float64() * 100,
			Position: snap.Position,
		}
	}
	return snap
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "List saved entities",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := persistence.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			clk := clock.NewMock(time.Unix(0, 0))
			sys := ai.NewSystem(clk, memory.NewManager(clk, nil), ai.Options{})
			gw := persistence.NewGateway(sys, db)

			ids, err := gw.SavedEntityIDs()
			if err != nil {
				return err
			}
			for _, id := range ids {
				if err := gw.LoadEntity(id); err != nil {
					return err
				}
				e, _ := sys.Entity(id)
				stats := sys.Memory().GetStats(id)
				fmt.Printf("%-14s strategy=%-14s state=%-8s fitness=%6.2f gen=%d stm=%d ltm=%d stage=%d\n",
					id, e.Strategy, e.State, e.Fitness, e.Generation,
					stats.ShortTermCount, stats.LongTermCount, stats.EvolutionStage)
			}
			return nil
		},
	}
}
