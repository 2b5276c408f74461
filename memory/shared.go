package memory

import (
	"sync"
	"time"

	"github.com/lixenwraith/chimera-mind/parameter"
)

// SharedBank is the single cross-entity memory pool fed by non-player
// archetypes. It is owned by the Manager (or injected into one) rather than
// being package-global, so tests and parallel sessions get isolated banks.
//
// Contribution and accumulator update form one atomic unit under the mutex;
// a single-threaded host pays only an uncontended lock.
type SharedBank struct {
	mu sync.Mutex

	entries  []*Entry
	patterns []LearningPattern

	// TotalLearningExperience only ever grows. Decay and eviction of the
	// underlying entries never decrement it; the session's difficulty ramp
	// reads this value.
	totalLearningExperience float64
}

// NewSharedBank creates an empty bank
func NewSharedBank() *SharedBank {
	return &SharedBank{}
}

// Contribute appends a rate-weighted copy of an entity's entry and grows
// the accumulator by the same amount
func (b *SharedBank) Contribute(e *Entry, rate float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	weighted := e.Importance * rate

	copied := &Entry{
		ID:           e.ID,
		OwnerID:      SharedOwnerID,
		Category:     e.Category,
		Payload:      e.Payload,
		Importance:   weighted,
		CreatedAt:    e.CreatedAt,
		LastAccessed: e.LastAccessed,
		AccessCount:  e.AccessCount,
		DecayRate:    e.DecayRate,
		Consolidated: e.Consolidated,
	}

	b.entries = append(b.entries, copied)
	b.totalLearningExperience += weighted

	b.entries = evictWeakest(b.entries, parameter.MemoryLongTermCapacity)
}

// Get returns up to limit entries filtered by category, ordered by
// (importance desc, last-accessed desc). Same read-touches-state semantics
// as per-entity retrieval.
func (b *SharedBank) Get(category Category, limit int, now time.Time) []*Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	if limit <= 0 {
		limit = parameter.MemoryDefaultRetrievalLimit
	}

	matches := make([]*Entry, 0, len(b.entries))
	for _, e := range b.entries {
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

// Decay ages every bank entry and prunes at the floor. The accumulator is
// untouched.
func (b *SharedBank) Decay(dt time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = decayList(b.entries, dt.Seconds())
}

// RecordPattern stores a pattern shared across the bank's contributors
func (b *SharedBank) RecordPattern(p LearningPattern) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.patterns = append(b.patterns, p)
	if len(b.patterns) > parameter.LearningPatternsLimit {
		b.patterns = b.patterns[len(b.patterns)-parameter.LearningPatternsLimit:]
	}
}

// TotalLearningExperience returns the monotonic accumulator
func (b *SharedBank) TotalLearningExperience() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalLearningExperience
}

// Len returns the current entry count
func (b *SharedBank) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Snapshot returns copies of the bank's entries, patterns and accumulator
// for persistence. The returned entries are detached copies.
func (b *SharedBank) Snapshot() ([]Entry, []LearningPattern, float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := make([]Entry, len(b.entries))
	for i, e := range b.entries {
		entries[i] = *e
	}
	patterns := append([]LearningPattern(nil), b.patterns...)
	return entries, patterns, b.totalLearningExperience
}

// Restore replaces the bank's state wholesale. Used by the persistence
// gateway; not valid during a tick sweep.
func (b *SharedBank) Restore(entries []Entry, patterns []LearningPattern, total float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = make([]*Entry, len(entries))
	for i := range entries {
		e := entries[i]
		b.entries[i] = &e
	}
	b.patterns = append([]LearningPattern(nil), patterns...)
	b.totalLearningExperience = total
}
