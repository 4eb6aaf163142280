package instance

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Default settings applied to every new instance.
const (
	SettingAllowPvP           = "AllowPvP"
	SettingSharedLoot         = "SharedLoot"
	SettingIsolateProgression = "IsolateProgression"
	SettingPersistentWorld    = "PersistentWorld"
)

func defaultSettings() map[string]Value {
	return map[string]Value{
		SettingAllowPvP:           BoolValue(true),
		SettingSharedLoot:         BoolValue(false),
		SettingIsolateProgression: BoolValue(true),
		SettingPersistentWorld:    BoolValue(true),
	}
}

// Instance is one named partition of the shared world. It owns the set of
// players currently present and each player's progression record for this
// partition.
//
// An Instance does not lock itself; the registry serializes all mutation.
// Name uniqueness across live instances is enforced by the registry at
// creation time.
type Instance struct {
	id   string
	name string

	Description string
	OwnerID     string

	// MaxPlayers caps the active player count; 0 means unbounded.
	MaxPlayers int
	Active     bool

	created    time.Time
	lastAccess time.Time

	active   map[string]struct{}
	progress map[string]*PlayerProgress
	settings map[string]Value
}

func newInstance(id, name, ownerID string) *Instance {
	now := time.Now()
	return &Instance{
		id:         id,
		name:       name,
		OwnerID:    ownerID,
		Active:     true,
		created:    now,
		lastAccess: now,
		active:     map[string]struct{}{},
		progress:   map[string]*PlayerProgress{},
		settings:   defaultSettings(),
	}
}

func (i *Instance) ID() string            { return i.id }
func (i *Instance) Name() string          { return i.name }
func (i *Instance) Created() time.Time    { return i.created }
func (i *Instance) LastAccess() time.Time { return i.lastAccess }

// AddPlayer adds a player to the active set, lazily creating a progress
// record on first join. Adding an already-present player succeeds without
// touching their progress. Returns false for an empty id or when the
// instance is full.
func (i *Instance) AddPlayer(playerID string) bool {
	if playerID == "" {
		return false
	}

	if _, present := i.active[playerID]; !present && i.MaxPlayers > 0 && len(i.active) >= i.MaxPlayers {
		slog.Warn("instance is full", "instance", i.name, "players", len(i.active), "max", i.MaxPlayers)
		return false
	}

	i.active[playerID] = struct{}{}
	i.lastAccess = time.Now()

	if _, ok := i.progress[playerID]; !ok {
		i.progress[playerID] = NewPlayerProgress(playerID, i.id)
	}

	return true
}

// RemovePlayer drops a player from the active set. The player's progress
// record is kept so it survives leave/rejoin. Returns true if the player
// was present.
func (i *Instance) RemovePlayer(playerID string) bool {
	if _, present := i.active[playerID]; !present {
		return false
	}

	delete(i.active, playerID)
	i.lastAccess = time.Now()
	return true
}

// HasPlayer reports whether a player is currently present.
func (i *Instance) HasPlayer(playerID string) bool {
	_, present := i.active[playerID]
	return present
}

// GetPlayerData returns the player's progress record, or nil when the player
// has never been recorded in this instance.
func (i *Instance) GetPlayerData(playerID string) *PlayerProgress {
	return i.progress[playerID]
}

// PlayerCount returns the number of currently-present players.
func (i *Instance) PlayerCount() int {
	return len(i.active)
}

// ActivePlayers returns a sorted copy of the present player ids.
func (i *Instance) ActivePlayers() []string {
	ids := make([]string, 0, len(i.active))
	for id := range i.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Reset clears the active set and all progress records, keeping identity,
// description, settings, and capacity. Destructive and irreversible.
func (i *Instance) Reset() {
	i.active = map[string]struct{}{}
	i.progress = map[string]*PlayerProgress{}
	i.lastAccess = time.Now()
	slog.Warn("instance has been reset", "instance", i.name)
}

// Setting returns the named setting.
func (i *Instance) Setting(name string) (Value, bool) {
	v, ok := i.settings[name]
	return v, ok
}

// SetSetting stores a named setting. Empty names are ignored.
func (i *Instance) SetSetting(name string, v Value) {
	if name == "" {
		return
	}
	i.settings[name] = v
}

// BoolSetting returns the named setting as a bool, or def when the setting
// is absent or holds a different kind.
func (i *Instance) BoolSetting(name string, def bool) bool {
	if v, ok := i.settings[name]; ok {
		if b, ok := v.AsBool(); ok {
			return b
		}
	}
	return def
}

// Stats renders a human-readable summary for console output.
func (i *Instance) Stats() string {
	status := "Active"
	if !i.Active {
		status = "Inactive"
	}

	players := fmt.Sprintf("%d", len(i.active))
	if i.MaxPlayers > 0 {
		players = fmt.Sprintf("%d/%d", len(i.active), i.MaxPlayers)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Instance: %s\n", i.name)
	fmt.Fprintf(&sb, "  ID: %s\n", i.id)
	fmt.Fprintf(&sb, "  Active Players: %s\n", players)
	fmt.Fprintf(&sb, "  Total Player Data: %d\n", len(i.progress))
	fmt.Fprintf(&sb, "  Created: %s UTC\n", i.created.UTC().Format(time.DateTime))
	fmt.Fprintf(&sb, "  Last Access: %s UTC\n", i.lastAccess.UTC().Format(time.DateTime))
	fmt.Fprintf(&sb, "  Status: %s", status)
	return sb.String()
}
