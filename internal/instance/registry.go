package instance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pixil98/go-log"
)

// DefaultInstanceID is the fixed id of the always-present fallback instance.
// Players with no explicit assignment resolve to it and it can never be
// deleted.
const DefaultInstanceID = "default"

// Registry is the process-wide directory of instances and the single-instance
// assignment of every known player. One mutex guards the instance map, the
// assignment map, and all cross-instance state; instance-internal state is
// only touched while it is held.
type Registry struct {
	mu sync.Mutex

	instances   map[string]*Instance
	assignments map[string]string // player id -> instance id

	defaultInstance *Instance
	initialized     bool

	store  Store
	events EventPublisher

	defaultName string
	defaultDesc string

	lastTick time.Time
}

type RegistryOpt func(*Registry)

// WithStore plugs in a persistence collaborator. Defaults to NoopStore.
func WithStore(s Store) RegistryOpt {
	return func(r *Registry) {
		r.store = s
	}
}

// WithEventPublisher plugs in a lifecycle event sink.
func WithEventPublisher(p EventPublisher) RegistryOpt {
	return func(r *Registry) {
		r.events = p
	}
}

// WithDefaultInstanceName overrides the display name of the default instance.
func WithDefaultInstanceName(name string) RegistryOpt {
	return func(r *Registry) {
		if name != "" {
			r.defaultName = name
		}
	}
}

// WithDefaultInstanceDescription overrides the default instance description.
func WithDefaultInstanceDescription(desc string) RegistryOpt {
	return func(r *Registry) {
		if desc != "" {
			r.defaultDesc = desc
		}
	}
}

func NewRegistry(opts ...RegistryOpt) *Registry {
	r := &Registry{
		instances:   map[string]*Instance{},
		assignments: map[string]string{},
		store:       NoopStore{},
		defaultName: "Default Instance",
		defaultDesc: "Default instance for all players",
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Initialize creates and registers the default instance and triggers the
// load hook. Calling it a second time logs a warning and does nothing.
func (r *Registry) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		slog.Warn("instance registry already initialized")
		return nil
	}

	def := newInstance(DefaultInstanceID, r.defaultName, "system")
	def.Description = r.defaultDesc
	r.defaultInstance = def
	r.instances[def.id] = def

	loaded, err := r.store.LoadInstances()
	if err != nil {
		return fmt.Errorf("loading instances: %w", err)
	}
	for _, inst := range loaded {
		if _, exists := r.instances[inst.id]; exists {
			slog.Warn("skipping loaded instance with duplicate id", "id", inst.id)
			continue
		}
		if r.findByName(inst.name) != nil {
			slog.Warn("skipping loaded instance with duplicate name", "name", inst.name)
			continue
		}
		r.instances[inst.id] = inst
	}

	r.initialized = true
	slog.Info("instance registry initialized", "instances", len(r.instances))
	return nil
}

// DefaultInstance returns the fallback instance. Nil before Initialize.
func (r *Registry) DefaultInstance() *Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.defaultInstance
}

// InstanceCount returns the total number of registered instances.
func (r *Registry) InstanceCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}

// CreateInstance registers a new instance. Returns nil when the name is
// empty or already taken (case-insensitive). The generated id is derived
// from the normalized name plus a high-resolution timestamp.
func (r *Registry) CreateInstance(name, ownerID, description string) *Instance {
	if name == "" {
		return nil
	}

	r.mu.Lock()
	if r.findByName(name) != nil {
		r.mu.Unlock()
		slog.Warn("instance name already exists", "name", name)
		return nil
	}

	inst := newInstance(r.generateID(name), name, ownerID)
	inst.Description = description
	r.instances[inst.id] = inst
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.save(snap)
	r.publish(Event{Type: EventInstanceCreated, InstanceID: inst.id, InstanceName: name})
	slog.Info("created instance", "name", name, "id", inst.id)
	return inst
}

// GetInstance returns the instance with the given id, the default instance
// when id is empty, or nil when the id is unknown.
func (r *Registry) GetInstance(id string) *Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolve(id)
}

// GetInstanceByName returns the instance with the given name, matched
// case-insensitively, or nil.
func (r *Registry) GetInstanceByName(name string) *Instance {
	if name == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findByName(name)
}

// GetAllInstances returns all registered instances. Order is not
// significant.
func (r *Registry) GetAllInstances() []*Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// DeleteInstance removes an instance. The default instance is permanently
// protected. Every player assigned to the deleted instance loses their
// assignment and falls back to the default instance lazily on the next
// lookup; they are not added to the default instance's active set here.
func (r *Registry) DeleteInstance(id string) bool {
	if id == "" {
		return false
	}
	if id == DefaultInstanceID {
		slog.Warn("cannot delete default instance")
		return false
	}

	r.mu.Lock()
	inst, ok := r.instances[id]
	if !ok {
		r.mu.Unlock()
		return false
	}

	var evicted []string
	for playerID, instanceID := range r.assignments {
		if instanceID == id {
			delete(r.assignments, playerID)
			evicted = append(evicted, playerID)
		}
	}
	for _, playerID := range inst.ActivePlayers() {
		inst.RemovePlayer(playerID)
	}

	delete(r.instances, id)
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.save(snap)
	for _, playerID := range evicted {
		r.publish(Event{Type: EventPlayerRemoved, InstanceID: id, PlayerID: playerID})
	}
	r.publish(Event{Type: EventInstanceDeleted, InstanceID: id, InstanceName: inst.name})
	slog.Info("deleted instance", "name", inst.name, "id", id)
	return true
}

// AssignPlayerToInstance moves a player into the target instance as one
// critical section: resolve the target, remove the player from their current
// instance, then attempt the capacity-checked add. The assignment is only
// recorded when the add succeeds; when the target is full the player is left
// unassigned (and so resolves to the default instance) despite having been
// removed from their old instance.
func (r *Registry) AssignPlayerToInstance(playerID, instanceID string) bool {
	if playerID == "" {
		return false
	}

	r.mu.Lock()
	target := r.resolve(instanceID)
	if target == nil {
		r.mu.Unlock()
		slog.Warn("instance not found", "id", instanceID)
		return false
	}

	if current, ok := r.assignments[playerID]; ok {
		if ci := r.instances[current]; ci != nil {
			ci.RemovePlayer(playerID)
		}
		delete(r.assignments, playerID)
	}

	if !target.AddPlayer(playerID) {
		r.mu.Unlock()
		return false
	}
	r.assignments[playerID] = target.id
	r.mu.Unlock()

	r.publish(Event{Type: EventPlayerAssigned, InstanceID: target.id, PlayerID: playerID})
	return true
}

// RemovePlayerFromInstance drops the player's assignment and active
// membership. Returns false when the player had no assignment.
func (r *Registry) RemovePlayerFromInstance(playerID string) bool {
	if playerID == "" {
		return false
	}

	r.mu.Lock()
	instanceID, ok := r.assignments[playerID]
	if !ok {
		r.mu.Unlock()
		return false
	}
	if inst := r.instances[instanceID]; inst != nil {
		inst.RemovePlayer(playerID)
	}
	delete(r.assignments, playerID)
	r.mu.Unlock()

	r.publish(Event{Type: EventPlayerRemoved, InstanceID: instanceID, PlayerID: playerID})
	return true
}

// GetPlayerInstance returns the instance the player is assigned to, falling
// back to the default instance. Never returns nil once initialized.
func (r *Registry) GetPlayerInstance(playerID string) *Instance {
	r.mu.Lock()
	defer r.mu.Unlock()

	if playerID == "" {
		return r.defaultInstance
	}
	if instanceID, ok := r.assignments[playerID]; ok {
		if inst := r.instances[instanceID]; inst != nil {
			return inst
		}
	}
	return r.defaultInstance
}

// GetPlayerData returns the player's progress in their effective instance:
// their current assignment, or the default instance when unassigned.
func (r *Registry) GetPlayerData(playerID string) *PlayerProgress {
	return r.GetPlayerDataIn(playerID, "")
}

// GetPlayerDataIn returns the player's progress in a specific instance. An
// empty instance id resolves to the player's current assignment, then the
// default instance.
func (r *Registry) GetPlayerDataIn(playerID, instanceID string) *PlayerProgress {
	if playerID == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if instanceID == "" {
		instanceID = r.assignments[playerID]
	}
	inst := r.resolve(instanceID)
	if inst == nil {
		return nil
	}
	return inst.GetPlayerData(playerID)
}

// ResetInstance clears an instance's members and progress while keeping its
// identity and settings. Returns false for an unknown id.
func (r *Registry) ResetInstance(id string) bool {
	if id == "" {
		return false
	}

	r.mu.Lock()
	inst, ok := r.instances[id]
	if !ok {
		r.mu.Unlock()
		return false
	}
	inst.Reset()
	r.mu.Unlock()

	r.publish(Event{Type: EventInstanceReset, InstanceID: id, InstanceName: inst.Name()})
	return true
}

// Tick accrues play time for every player currently present in their
// assigned instance. Driven by the shard driver.
func (r *Registry) Tick(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if !r.lastTick.IsZero() {
		elapsed := now.Sub(r.lastTick)
		for playerID, instanceID := range r.assignments {
			inst := r.instances[instanceID]
			if inst == nil || !inst.HasPlayer(playerID) {
				continue
			}
			if pp := inst.GetPlayerData(playerID); pp != nil {
				pp.AddPlayTime(elapsed)
			}
		}
	}
	r.lastTick = now

	log.GetLogger(ctx).Debugf("registry tick: %d instances, %d assigned players",
		len(r.instances), len(r.assignments))
	return nil
}

// resolve maps an instance id to its instance, treating the empty id as the
// default instance. Callers must hold the registry mutex.
func (r *Registry) resolve(id string) *Instance {
	if id == "" {
		return r.defaultInstance
	}
	return r.instances[id]
}

// findByName does a case-insensitive name lookup. Callers must hold the
// registry mutex.
func (r *Registry) findByName(name string) *Instance {
	for _, inst := range r.instances {
		if strings.EqualFold(inst.name, name) {
			return inst
		}
	}
	return nil
}

// generateID derives a unique id from the normalized name plus a
// high-resolution timestamp, with a counter suffix guarding against
// collisions. Callers must hold the registry mutex.
func (r *Registry) generateID(name string) string {
	base := strings.ReplaceAll(strings.ToLower(name), " ", "_")
	id := fmt.Sprintf("%s_%d", base, time.Now().UnixNano())

	final := id
	for counter := 1; ; counter++ {
		if _, exists := r.instances[final]; !exists {
			return final
		}
		final = fmt.Sprintf("%s_%d", id, counter)
	}
}

// snapshotLocked copies the instance list for persistence and listing.
// Callers must hold the registry mutex.
func (r *Registry) snapshotLocked() []*Instance {
	snap := make([]*Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		snap = append(snap, inst)
	}
	return snap
}

func (r *Registry) save(snap []*Instance) {
	if err := r.store.SaveInstances(snap); err != nil {
		slog.Error("saving instances", "error", err)
	}
}

func (r *Registry) publish(ev Event) {
	if r.events == nil {
		return
	}
	ev.Time = time.Now()
	r.events.PublishEvent(ev)
}
