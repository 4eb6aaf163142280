package instance

import (
	"context"
	"log/slog"
	"time"
)

// SpawnReason describes why a player (re)entered the world.
type SpawnReason int

const (
	SpawnReasonJoin SpawnReason = iota
	SpawnReasonRespawn
	SpawnReasonTeleport
)

func (s SpawnReason) String() string {
	switch s {
	case SpawnReasonJoin:
		return "join"
	case SpawnReasonRespawn:
		return "respawn"
	case SpawnReasonTeleport:
		return "teleport"
	default:
		return "unknown"
	}
}

// EventType classifies registry lifecycle events.
type EventType string

const (
	EventInstanceCreated EventType = "created"
	EventInstanceDeleted EventType = "deleted"
	EventInstanceReset   EventType = "reset"
	EventPlayerAssigned  EventType = "player_assigned"
	EventPlayerRemoved   EventType = "player_removed"
)

// Event is a registry lifecycle notification. Publishing is fire-and-forget;
// the registry never blocks on a subscriber.
type Event struct {
	Type         EventType `json:"type"`
	InstanceID   string    `json:"instance_id"`
	InstanceName string    `json:"instance_name,omitempty"`
	PlayerID     string    `json:"player_id,omitempty"`
	Time         time.Time `json:"time"`
}

// EventPublisher receives registry lifecycle events. Implementations must
// not call back into the registry.
type EventPublisher interface {
	PublishEvent(Event)
}

// Start runs the registry as a service worker: it signals game start, then
// blocks until shutdown and flushes the directory through the store.
func (r *Registry) Start(ctx context.Context) error {
	r.OnGameStarted()
	<-ctx.Done()
	r.OnGameShutdown()
	return nil
}

// OnGameStarted is called when the host game has fully started.
func (r *Registry) OnGameStarted() {
	slog.Info("game started, instance system active")
}

// OnGameShutdown is the synchronous persistence trigger on shutdown.
func (r *Registry) OnGameShutdown() {
	slog.Info("game shutting down, saving all instance data")

	r.mu.Lock()
	snap := r.snapshotLocked()
	r.mu.Unlock()
	r.save(snap)
}

// OnPlayerSpawned auto-assigns unassigned players to the default instance
// and records their position and access time. Players spawning back into an
// instance they are assigned to rejoin its active set.
func (r *Registry) OnPlayerSpawned(playerID string, reason SpawnReason, pos Position) {
	if playerID == "" {
		return
	}

	r.mu.Lock()
	instanceID, assigned := r.assignments[playerID]
	if assigned {
		if inst := r.instances[instanceID]; inst != nil {
			inst.AddPlayer(playerID)
		}
	}
	r.mu.Unlock()
	if !assigned {
		r.AssignPlayerToInstance(playerID, DefaultInstanceID)
	}

	if pp := r.GetPlayerData(playerID); pp != nil {
		pp.LastPosition = pos
		pp.TouchAccess()
	}

	slog.Debug("player spawned", "player", playerID, "reason", reason.String())
}

// OnPlayerDisconnected touches the player's access time and drops them from
// their instance's active set. The assignment itself is kept so the player
// returns to the same instance when they reconnect.
func (r *Registry) OnPlayerDisconnected(playerID string, shuttingDown bool) {
	if playerID == "" {
		return
	}

	if pp := r.GetPlayerData(playerID); pp != nil {
		pp.TouchAccess()
	}

	r.mu.Lock()
	if instanceID, ok := r.assignments[playerID]; ok {
		if inst := r.instances[instanceID]; inst != nil {
			inst.RemovePlayer(playerID)
		}
	}
	r.mu.Unlock()
}

// OnSavePlayerData is called before the host game flushes a player's data
// file. The handle is opaque to the registry.
func (r *Registry) OnSavePlayerData(playerID string, file any) {
	if playerID == "" || file == nil {
		return
	}

	if pp := r.GetPlayerData(playerID); pp != nil {
		pp.TouchAccess()
		// TODO: write instance-scoped progress into the save handle once the
		// host exposes a writable format.
	}
}
