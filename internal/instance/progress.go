package instance

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

// Position is an integer 3D coordinate in the game world.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// PlayerProgress tracks one player's progression within one instance. A
// player accumulates a separate record per instance visited; records are
// created lazily on first join and live as long as the owning instance.
//
// Progress records are owned by their instance and must only be mutated
// while the registry coordinates access.
type PlayerProgress struct {
	playerID   string
	instanceID string

	// Level only ever increases; AddExperience recomputes it from the
	// level curve and raises it when the curve passes the stored value.
	Level      int
	Experience int

	LastPosition Position
	DeathCount   int
	ZombieKills  int
	PlayerKills  int

	// InventoryData is an opaque serialized blob managed by the host game.
	InventoryData string

	firstJoin  time.Time
	lastAccess time.Time
	playTime   time.Duration

	skills map[string]int
	custom map[string]Value
}

// NewPlayerProgress creates a fresh record for a player joining an instance
// for the first time.
func NewPlayerProgress(playerID, instanceID string) *PlayerProgress {
	now := time.Now()
	return &PlayerProgress{
		playerID:   playerID,
		instanceID: instanceID,
		Level:      1,
		firstJoin:  now,
		lastAccess: now,
		skills:     map[string]int{},
		custom:     map[string]Value{},
	}
}

func (p *PlayerProgress) PlayerID() string     { return p.playerID }
func (p *PlayerProgress) InstanceID() string   { return p.instanceID }
func (p *PlayerProgress) FirstJoin() time.Time { return p.firstJoin }
func (p *PlayerProgress) LastAccess() time.Time { return p.lastAccess }

// TouchAccess marks the record as accessed now. Called on spawn, disconnect,
// and save events.
func (p *PlayerProgress) TouchAccess() {
	p.lastAccess = time.Now()
}

// levelForExperience is the level curve: floor(sqrt(exp/100)) + 1.
func levelForExperience(exp int) int {
	if exp <= 0 {
		return 1
	}
	return int(math.Sqrt(float64(exp)/100)) + 1
}

// AddExperience adds experience and raises the level when the curve passes
// the stored value. Experience is add-only through this method; amounts of
// zero or less are ignored. The level never decreases.
func (p *PlayerProgress) AddExperience(amount int) {
	if amount <= 0 {
		return
	}

	p.Experience += amount

	if lvl := levelForExperience(p.Experience); lvl > p.Level {
		p.Level = lvl
		slog.Info("player leveled up", "player", p.playerID, "instance", p.instanceID, "level", lvl)
	}
}

// RecordDeath increments the death counter.
func (p *PlayerProgress) RecordDeath() {
	p.DeathCount++
}

// RecordZombieKill increments the NPC kill counter.
func (p *PlayerProgress) RecordZombieKill() {
	p.ZombieKills++
}

// RecordPlayerKill increments the PvP kill counter.
func (p *PlayerProgress) RecordPlayerKill() {
	p.PlayerKills++
}

// UpdateSkill sets a named skill level. Empty names are ignored.
func (p *PlayerProgress) UpdateSkill(name string, level int) {
	if name == "" {
		return
	}
	p.skills[name] = level
}

// GetSkillLevel returns the level for a named skill, or 0 when the skill has
// never been set.
func (p *PlayerProgress) GetSkillLevel(name string) int {
	return p.skills[name]
}

// SetCustomData stores a value under key. Empty keys are ignored.
func (p *PlayerProgress) SetCustomData(key string, v Value) {
	if key == "" {
		return
	}
	p.custom[key] = v
}

// GetCustomData returns the raw value stored under key.
func (p *PlayerProgress) GetCustomData(key string) (Value, bool) {
	v, ok := p.custom[key]
	return v, ok
}

// CustomString returns the string stored under key, or def when the key is
// absent or holds a different kind.
func (p *PlayerProgress) CustomString(key, def string) string {
	if v, ok := p.custom[key]; ok {
		if s, ok := v.AsString(); ok {
			return s
		}
	}
	return def
}

// CustomInt returns the int stored under key, or def when the key is absent
// or holds a different kind.
func (p *PlayerProgress) CustomInt(key string, def int) int {
	if v, ok := p.custom[key]; ok {
		if i, ok := v.AsInt(); ok {
			return i
		}
	}
	return def
}

// CustomBool returns the bool stored under key, or def when the key is
// absent or holds a different kind.
func (p *PlayerProgress) CustomBool(key string, def bool) bool {
	if v, ok := p.custom[key]; ok {
		if b, ok := v.AsBool(); ok {
			return b
		}
	}
	return def
}

// CustomFloat returns the float stored under key, or def when the key is
// absent or holds a different kind.
func (p *PlayerProgress) CustomFloat(key string, def float64) float64 {
	if v, ok := p.custom[key]; ok {
		if f, ok := v.AsFloat(); ok {
			return f
		}
	}
	return def
}

// AddPlayTime accrues time spent in the instance. Non-positive durations are
// ignored.
func (p *PlayerProgress) AddPlayTime(d time.Duration) {
	if d <= 0 {
		return
	}
	p.playTime += d
}

// PlayTimeMinutes returns the whole minutes of accrued play time.
func (p *PlayerProgress) PlayTimeMinutes() int {
	return int(p.playTime / time.Minute)
}

// Stats renders a human-readable summary for console output.
func (p *PlayerProgress) Stats() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Player Data for Instance %s:\n", p.instanceID)
	fmt.Fprintf(&sb, "  Player ID: %s\n", p.playerID)
	fmt.Fprintf(&sb, "  Level: %d (XP: %d)\n", p.Level, p.Experience)
	fmt.Fprintf(&sb, "  Play Time: %d minutes\n", p.PlayTimeMinutes())
	fmt.Fprintf(&sb, "  Deaths: %d\n", p.DeathCount)
	fmt.Fprintf(&sb, "  Zombie Kills: %d\n", p.ZombieKills)
	fmt.Fprintf(&sb, "  Player Kills: %d\n", p.PlayerKills)
	fmt.Fprintf(&sb, "  First Join: %s UTC\n", p.firstJoin.UTC().Format(time.DateTime))
	fmt.Fprintf(&sb, "  Last Access: %s UTC", p.lastAccess.UTC().Format(time.DateTime))
	return sb.String()
}
