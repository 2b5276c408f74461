package memory

import (
	"sort"
	"time"

	"github.com/lixenwraith/chimera-mind/parameter"
)

// Store holds one entity's hierarchical memory. All temporal gating uses
// the simulated clock owned by the Manager; the store itself never reads
// wall time.
type Store struct {
	OwnerID   string
	Archetype Archetype

	shortTerm []*Entry
	longTerm  []*Entry
	patterns  []LearningPattern

	lastConsolidation time.Time

	// TotalExperience accumulates the importance of every added entry
	TotalExperience float64

	// EvolutionStage is recomputed by the learning feedback path
	EvolutionStage int
}

func newStore(ownerID string, archetype Archetype, now time.Time) *Store {
	return &Store{
		OwnerID:           ownerID,
		Archetype:         archetype,
		lastConsolidation: now,
		EvolutionStage:    1,
	}
}

// add appends to short-term with FIFO eviction past capacity
func (s *Store) add(e *Entry) {
	s.shortTerm = append(s.shortTerm, e)
	if len(s.shortTerm) > parameter.MemoryShortTermCapacity {
		s.shortTerm = s.shortTerm[1:]
	}
	s.TotalExperience += e.Importance
}

// get returns up to limit entries across both tiers, filtered by category,
// ordered by (importance desc, last-accessed desc). Every returned entry is
// touched.
func (s *Store) get(category Category, limit int, now time.Time) []*Entry {
	if limit <= 0 {
		limit = parameter.MemoryDefaultRetrievalLimit
	}

	matches := make([]*Entry, 0, len(s.shortTerm)+len(s.longTerm))
	for _, e := range s.shortTerm {
		if category == CategoryAny || e.Category == category {
			matches = append(matches, e)
		}
	}
	for _, e := range s.longTerm {
		if category == CategoryAny || e.Category == category {
			matches = append(matches, e)
		}
	}

	sortByRelevance(matches)

	if len(matches) > limit {
		matches = matches[:limit]
	}
	for _, e := range matches {
		e.touch(now)
	}
	return matches
}

// countRecent returns how many entries of a category exist without touching
// access metadata. Used for snapshot normalization signals.
func (s *Store) countRecent(category Category, limit int) int {
	count := 0
	for _, e := range s.shortTerm {
		if e.Category == category {
			count++
			if count >= limit {
				return count
			}
		}
	}
	for _, e := range s.longTerm {
		if e.Category == category {
			count++
			if count >= limit {
				return count
			}
		}
	}
	return count
}

// consolidate promotes strong short-term entries to long-term. No-op until
// the consolidation interval has elapsed since the last pass. Returns the
// number of promoted entries.
func (s *Store) consolidate(now time.Time, t Tuning) int {
	if now.Sub(s.lastConsolidation) < t.ConsolidationInterval {
		return 0
	}

	kept := s.shortTerm[:0]
	promoted := 0
	for _, e := range s.shortTerm {
		if e.strength() >= t.ConsolidationThreshold {
			e.Consolidated = true
			s.longTerm = append(s.longTerm, e)
			promoted++
		} else {
			kept = append(kept, e)
		}
	}
	s.shortTerm = kept

	s.longTerm = evictWeakest(s.longTerm, parameter.MemoryLongTermCapacity)
	s.lastConsolidation = now
	return promoted
}

// decay reduces importance across both tiers and prunes entries at or
// below the floor
func (s *Store) decay(dt time.Duration) {
	seconds := dt.Seconds()
	s.shortTerm = decayList(s.shortTerm, seconds)
	s.longTerm = decayList(s.longTerm, seconds)
}

// recordPattern appends a learning pattern, keeping only the most recent
func (s *Store) recordPattern(p LearningPattern) {
	s.patterns = append(s.patterns, p)
	if len(s.patterns) > parameter.LearningPatternsLimit {
		s.patterns = s.patterns[len(s.patterns)-parameter.LearningPatternsLimit:]
	}
}

// sortByRelevance orders entries by (importance desc, last-accessed desc)
func sortByRelevance(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Importance != entries[j].Importance {
			return entries[i].Importance > entries[j].Importance
		}
		return entries[i].LastAccessed.After(entries[j].LastAccessed)
	})
}

// evictWeakest trims a list to capacity by dropping ascending
// (importance, creation time) — the least important, oldest entries go first
func evictWeakest(entries []*Entry, capacity int) []*Entry {
	if len(entries) <= capacity {
		return entries
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Importance != entries[j].Importance {
			return entries[i].Importance < entries[j].Importance
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries[len(entries)-capacity:]
}

// decayList applies time-proportional importance loss and prunes in place
func decayList(entries []*Entry, seconds float64) []*Entry {
	kept := entries[:0]
	for _, e := range entries {
		e.Importance -= e.DecayRate * seconds
		if e.Importance > parameter.MemoryPruneFloor {
			kept = append(kept, e)
		}
	}
	// Drop trailing pointers so pruned entries can be collected
	for i := len(kept); i < len(entries); i++ {
		entries[i] = nil
	}
	return kept
}
