package memory

import (
	"strings"
	"time"

	"github.com/lixenwraith/chimera-mind/parameter"
)

// Category classifies a memory entry. Closed set; persistence documents
// store the string values.
type Category string

const (
	CategoryCombat      Category = "combat"
	CategoryMovement    Category = "movement"
	CategorySkillUsage  Category = "skill_usage"
	CategoryItemUsage   Category = "item_usage"
	CategoryEnvironment Category = "environment"
	CategorySocial      Category = "social"
	CategoryLearning    Category = "learning"

	// CategoryAny matches every category in retrieval filters
	CategoryAny Category = ""
)

// SharedOwnerID is the sentinel owner for entries living in the shared bank
const SharedOwnerID = "shared"

// Entry is one memory record. Owned exclusively by its Store or by the
// SharedBank; callers receive pointers for read/touch but must not retain
// them across decay passes.
type Entry struct {
	ID           string
	OwnerID      string
	Category     Category
	Payload      map[string]any
	Importance   float64
	CreatedAt    time.Time
	LastAccessed time.Time
	AccessCount  int
	DecayRate    float64
	Consolidated bool
}

// strength is the consolidation gate score
func (e *Entry) strength() float64 {
	return (e.Importance + float64(e.AccessCount)*parameter.MemoryAccessStrengthWeight) / 2
}

// touch records a retrieval. Retrieval is deliberately not read-only:
// access metadata feeds the consolidation strength formula.
func (e *Entry) touch(now time.Time) {
	e.AccessCount++
	e.LastAccessed = now
}

// Archetype categorizes entities for learning-rate purposes
type Archetype string

const (
	ArchetypePlayer     Archetype = "player"
	ArchetypeBasicEnemy Archetype = "basic_enemy"
	ArchetypeBoss       Archetype = "boss"
	ArchetypeChimera    Archetype = "chimera"
)

// Rate returns the archetype's fixed learning rate
func (a Archetype) Rate() float64 {
	switch a {
	case ArchetypePlayer:
		return parameter.LearnRatePlayer
	case ArchetypeBasicEnemy:
		return parameter.LearnRateBasicEnemy
	case ArchetypeBoss:
		return parameter.LearnRateBoss
	case ArchetypeChimera:
		return parameter.LearnRateChimera
	}
	return 0
}

// IsPlayer reports whether the archetype is excluded from shared-bank feeding
func (a Archetype) IsPlayer() bool {
	return a == ArchetypePlayer
}

// ArchetypeFromID infers an archetype from an entity id prefix. Used on the
// auto-initialization path when an entity was never registered explicitly.
func ArchetypeFromID(entityID string) Archetype {
	switch {
	case strings.HasPrefix(entityID, "player"):
		return ArchetypePlayer
	case strings.HasPrefix(entityID, "boss"):
		return ArchetypeBoss
	case strings.HasPrefix(entityID, "chimera"):
		return ArchetypeChimera
	}
	return ArchetypeBasicEnemy
}

// LearningPattern is a condition/action association recorded by the
// learning feedback path
type LearningPattern struct {
	ID          string
	OwnerID     string
	PatternType string
	Conditions  map[string]any
	Actions     []string
	SuccessRate float64
	UsageCount  int
	LastUsed    time.Time
}
