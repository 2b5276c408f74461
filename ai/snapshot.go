package ai

// Snapshot is the read-only, point-in-time view of simulation state handed
// to one decision call. Version 1. Hosts should start from DefaultSnapshot
// and override what they know; a zero-valued field is taken at face value,
// so omitting DefaultSnapshot means "everything is zero", not "unknown".
type Snapshot struct {
	Version int

	Position [3]float64

	Health     float64
	MaxHealth  float64
	Mana       float64
	MaxMana    float64
	Stamina    float64
	MaxStamina float64

	// NearestEnemy is nil when no enemy is in perception range
	NearestEnemy *EnemySummary

	// TimeOfDay in [0,1], 0.5 = midday
	TimeOfDay float64

	// WeatherIntensity in [0,1]
	WeatherIntensity float64

	AvailableSkills []string
	InventoryItems  map[string]int
}

// EnemySummary describes the nearest hostile as perceived by the entity
type EnemySummary struct {
	ID       string
	Distance float64
	Health   float64
	Position [3]float64
}

// SnapshotVersion is the current snapshot schema version
const SnapshotVersion = 1

// DefaultSnapshot returns a snapshot with the documented field defaults:
// full vitals at 100, midday, clear weather, no enemy
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Version:    SnapshotVersion,
		Health:     100,
		MaxHealth:  100,
		Mana:       100,
		MaxMana:    100,
		Stamina:    100,
		MaxStamina: 100,
		TimeOfDay:  0.5,
	}
}
