package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/chimera-mind/parameter"
)

// Config holds the runtime tuning knobs. Every field has a default; a
// missing file or a partially filled one is fine.
type Config struct {
	Decision DecisionConfig `yaml:"decision"`
	Memory   MemoryConfig   `yaml:"memory"`
	Database DatabaseConfig `yaml:"database"`
	LogLevel string         `yaml:"log_level"`
}

type DecisionConfig struct {
	// Cooldown between accepted decisions per entity
	Cooldown time.Duration `yaml:"cooldown"`

	// MutationRate for evolutionary scorer mutation, in (0, 1]
	MutationRate float64 `yaml:"mutation_rate"`

	// Epsilon is the reinforcement exploration probability, in [0, 1)
	Epsilon float64 `yaml:"epsilon"`
}

type MemoryConfig struct {
	// DecayRate in importance units per simulated second
	DecayRate float64 `yaml:"decay_rate"`

	// ConsolidationInterval between consolidation passes, simulated time
	ConsolidationInterval time.Duration `yaml:"consolidation_interval"`

	// ConsolidationThreshold on the strength score, in (0, 1]
	ConsolidationThreshold float64 `yaml:"consolidation_threshold"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Default returns a Config carrying the built-in tuning
func Default() Config {
	return Config{
		Decision: DecisionConfig{
			Cooldown:     parameter.DecisionCooldown,
			MutationRate: parameter.MutationRate,
			Epsilon:      parameter.ExplorationEpsilon,
		},
		Memory: MemoryConfig{
			DecayRate:              parameter.MemoryDefaultDecayRate,
			ConsolidationInterval:  parameter.MemoryConsolidationInterval,
			ConsolidationThreshold: parameter.MemoryConsolidationThreshold,
		},
		Database: DatabaseConfig{
			Path: "chimera.db",
		},
		LogLevel: "info",
	}
}

// Load reads a YAML config file over the defaults. A missing file returns
// the defaults without error; a malformed or invalid one fails.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values that would break decision or memory semantics
func (c Config) Validate() error {
	if c.Decision.Cooldown < 0 {
		return errors.New("decision.cooldown must not be negative")
	}
	if c.Decision.MutationRate <= 0 || c.Decision.MutationRate > 1 {
		return fmt.Errorf("decision.mutation_rate %v outside (0, 1]", c.Decision.MutationRate)
	}
	if c.Decision.Epsilon < 0 || c.Decision.Epsilon >= 1 {
		return fmt.Errorf("decision.epsilon %v outside [0, 1)", c.Decision.Epsilon)
	}
	if c.Memory.DecayRate <= 0 {
		return errors.New("memory.decay_rate must be positive")
	}
	if c.Memory.ConsolidationInterval <= 0 {
		return errors.New("memory.consolidation_interval must be positive")
	}
	if c.Memory.ConsolidationThreshold <= 0 || c.Memory.ConsolidationThreshold > 1 {
		return fmt.Errorf("memory.consolidation_threshold %v outside (0, 1]", c.Memory.ConsolidationThreshold)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
