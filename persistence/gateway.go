package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lixenwraith/chimera-mind/ai"
	"github.com/lixenwraith/chimera-mind/logger"
	"github.com/lixenwraith/chimera-mind/memory"
)

// ErrNotFound marks a missing document
var ErrNotFound = errors.New("persistence: document not found")

// Gateway moves entity and shared-bank state between a live system and the
// database. Load is all-or-nothing: a document that fails validation leaves
// the in-memory state exactly as it was.
type Gateway struct {
	sys *ai.System
	db  *DB
}

// NewGateway binds a gateway to a system and an open database
func NewGateway(sys *ai.System, db *DB) *Gateway {
	return &Gateway{sys: sys, db: db}
}

// SaveEntity writes one entity's document, replacing any previous save
func (g *Gateway) SaveEntity(entityID string) error {
	doc, err := FromEntity(g.sys, entityID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal entity %q: %w", entityID, err)
	}

	_, err = g.db.Exec(`
INSERT INTO entity_docs (entity_id, archetype, doc, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(entity_id) DO UPDATE SET
    archetype  = excluded.archetype,
    doc        = excluded.doc,
    updated_at = excluded.updated_at`,
		entityID, doc.Archetype, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save entity %q: %w", entityID, err)
	}

	logger.Debug("entity saved", "entity", entityID, "bytes", len(data))
	return nil
}

// LoadEntity reads one entity's document and applies it
func (g *Gateway) LoadEntity(entityID string) error {
	var data []byte
	err := g.db.QueryRow(`SELECT doc FROM entity_docs WHERE entity_id = ?`, entityID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: entity %q", ErrNotFound, entityID)
	}
	if err != nil {
		return fmt.Errorf("load entity %q: %w", entityID, err)
	}

	var doc EntityDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal entity %q: %w", entityID, err)
	}
	return g.Apply(&doc)
}

// Apply installs a document into the live system. Every validation happens
// before the first mutation; the decision cooldown timestamp is reset so the
// restored entity may decide on its first tick in the new session.
func (g *Gateway) Apply(doc *EntityDocument) error {
	if doc.EntityID == "" {
		return errors.New("document missing entity id")
	}

	kind, err := ai.ParseStrategy(doc.Metadata.Strategy)
	if err != nil {
		return fmt.Errorf("entity %q: %w", doc.EntityID, err)
	}

	scorer, err := doc.Scorer.toScorer()
	if err != nil {
		return fmt.Errorf("entity %q: %w", doc.EntityID, err)
	}
	if kind.UsesScorer() && scorer == nil {
		return fmt.Errorf("entity %q: strategy %s requires a scorer document", doc.EntityID, kind)
	}

	state := memory.StoreState{
		OwnerID:           doc.EntityID,
		Archetype:         memory.Archetype(doc.Archetype),
		ShortTerm:         make([]memory.Entry, len(doc.ShortTerm)),
		LongTerm:          make([]memory.Entry, len(doc.LongTerm)),
		Patterns:          make([]memory.LearningPattern, len(doc.Patterns)),
		TotalExperience:   doc.TotalExperience,
		EvolutionStage:    doc.EvolutionStage,
		LastConsolidation: doc.LastConsolidation,
	}
	for i, dto := range doc.ShortTerm {
		state.ShortTerm[i] = dto.toEntry(doc.EntityID)
	}
	for i, dto := range doc.LongTerm {
		state.LongTerm[i] = dto.toEntry(doc.EntityID)
	}
	for i, dto := range doc.Patterns {
		state.Patterns[i] = dto.toPattern(doc.EntityID)
	}

	// Validation done; mutate from here on
	g.sys.RemoveEntity(doc.EntityID)
	e := g.sys.CreateEntity(doc.EntityID, kind, ai.State(doc.Metadata.State))
	e.TargetID = doc.Metadata.TargetID
	e.Fitness = doc.Metadata.Fitness
	e.Generation = doc.Metadata.Generation
	if scorer != nil {
		e.Scorer = scorer
	}
	g.sys.Memory().Restore(state)

	logger.Debug("entity restored", "entity", doc.EntityID, "strategy", doc.Metadata.Strategy)
	return nil
}

// SaveShared writes the shared-bank document
func (g *Gateway) SaveShared() error {
	doc := FromShared(g.sys.Memory().Bank())

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal shared bank: %w", err)
	}

	_, err = g.db.Exec(`
INSERT INTO shared_doc (id, doc, updated_at)
VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    doc        = excluded.doc,
    updated_at = excluded.updated_at`,
		data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save shared bank: %w", err)
	}
	return nil
}

// LoadShared reads and applies the shared-bank document
func (g *Gateway) LoadShared() error {
	var data []byte
	err := g.db.QueryRow(`SELECT doc FROM shared_doc WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: shared bank", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load shared bank: %w", err)
	}

	var doc SharedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal shared bank: %w", err)
	}

	entries := make([]memory.Entry, len(doc.Entries))
	for i, dto := range doc.Entries {
		entries[i] = dto.toEntry(memory.SharedOwnerID)
	}
	patterns := make([]memory.LearningPattern, len(doc.Patterns))
	for i, dto := range doc.Patterns {
		patterns[i] = dto.toPattern(memory.SharedOwnerID)
	}

	g.sys.Memory().Bank().Restore(entries, patterns, doc.TotalLearningExperience)
	return nil
}

// SaveAll saves every registered entity plus the shared bank. The first
// failure aborts; earlier writes stay.
func (g *Gateway) SaveAll() error {
	for _, id := range g.sys.EntityIDs() {
		if err := g.SaveEntity(id); err != nil {
			return err
		}
	}
	return g.SaveShared()
}

// SavedEntityIDs lists the entity ids present in the database
func (g *Gateway) SavedEntityIDs() ([]string, error) {
	rows, err := g.db.Query(`SELECT entity_id FROM entity_docs ORDER BY entity_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
