package instance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

// recordingStore counts persistence hook calls.
type recordingStore struct {
	loaded    []*Instance
	loadErr   error
	saveCalls int
	lastSave  []*Instance
}

func (s *recordingStore) LoadInstances() ([]*Instance, error) {
	return s.loaded, s.loadErr
}

func (s *recordingStore) SaveInstances(instances []*Instance) error {
	s.saveCalls++
	s.lastSave = instances
	return nil
}

// recordingPublisher captures emitted events.
type recordingPublisher struct {
	events []Event
}

func (p *recordingPublisher) PublishEvent(ev Event) {
	p.events = append(p.events, ev)
}

func newTestRegistry(t *testing.T, opts ...RegistryOpt) *Registry {
	t.Helper()
	r := NewRegistry(opts...)
	if err := r.Initialize(); err != nil {
		t.Fatalf("initializing registry: %v", err)
	}
	return r
}

// assertConsistent checks the bidirectional consistency invariant: every
// assignment names a live instance, and each instance's active set matches
// the assignments pointing at it.
func assertConsistent(t *testing.T, r *Registry) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()

	for playerID, instanceID := range r.assignments {
		inst, ok := r.instances[instanceID]
		if !ok {
			t.Errorf("player %s assigned to missing instance %s", playerID, instanceID)
			continue
		}
		if !inst.HasPlayer(playerID) {
			t.Errorf("player %s assigned to %s but not in its active set", playerID, instanceID)
		}
	}
	for id, inst := range r.instances {
		for _, playerID := range inst.ActivePlayers() {
			if r.assignments[playerID] != id {
				t.Errorf("instance %s holds %s without a matching assignment", id, playerID)
			}
		}
	}
}

func TestInitialize_Idempotent(t *testing.T) {
	r := NewRegistry()

	if err := r.Initialize(); err != nil {
		t.Fatalf("first initialize: %v", err)
	}
	if err := r.Initialize(); err != nil {
		t.Fatalf("second initialize: %v", err)
	}

	testutil.AssertEqual(t, "instance count", r.InstanceCount(), 1)
	def := r.DefaultInstance()
	if def == nil {
		t.Fatal("expected a default instance")
	}
	testutil.AssertEqual(t, "default id", def.ID(), DefaultInstanceID)
	testutil.AssertEqual(t, "default unbounded", def.MaxPlayers, 0)
}

func TestInitialize_LoadsStoredInstances(t *testing.T) {
	stored := newInstance("camp_1", "Camp", "owner")
	store := &recordingStore{loaded: []*Instance{stored}}
	r := newTestRegistry(t, WithStore(store))

	testutil.AssertEqual(t, "instance count", r.InstanceCount(), 2)
	testutil.AssertEqual(t, "lookup by name", r.GetInstanceByName("camp"), stored, cmpAllowUnexported)
}

func TestInitialize_LoadError(t *testing.T) {
	store := &recordingStore{loadErr: errors.New("disk gone")}
	r := NewRegistry(WithStore(store))

	err := r.Initialize()
	testutil.AssertErrorContains(t, err, "loading instances")
}

func TestCreateInstance(t *testing.T) {
	tests := map[string]struct {
		existing []string
		name     string
		expNil   bool
	}{
		"simple create":               {name: "Arena"},
		"empty name rejected":         {name: "", expNil: true},
		"duplicate name rejected":     {existing: []string{"Camp"}, name: "Camp", expNil: true},
		"case-insensitive duplicate":  {existing: []string{"Camp"}, name: "camp", expNil: true},
		"distinct name ok":            {existing: []string{"Camp"}, name: "Fort"},
		"default name is also taken":  {name: "Default Instance", expNil: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := newTestRegistry(t)
			for _, n := range tt.existing {
				if r.CreateInstance(n, "owner", "") == nil {
					t.Fatalf("failed to seed instance %s", n)
				}
			}

			inst := r.CreateInstance(tt.name, "owner", "a place")
			if tt.expNil {
				if inst != nil {
					t.Fatalf("expected nil, got instance %s", inst.ID())
				}
				return
			}
			if inst == nil {
				t.Fatal("expected an instance")
			}
			testutil.AssertEqual(t, "name", inst.Name(), tt.name)
			testutil.AssertEqual(t, "description", inst.Description, "a place")
			testutil.AssertEqual(t, "lookup by id", r.GetInstance(inst.ID()), inst, cmpAllowUnexported)
		})
	}
}

func TestCreateInstance_PersistsAndPublishes(t *testing.T) {
	store := &recordingStore{}
	pub := &recordingPublisher{}
	r := newTestRegistry(t, WithStore(store), WithEventPublisher(pub))

	inst := r.CreateInstance("Arena", "owner", "")
	if inst == nil {
		t.Fatal("expected an instance")
	}

	testutil.AssertEqual(t, "save calls", store.saveCalls, 1)
	testutil.AssertEqual(t, "event count", len(pub.events), 1)
	testutil.AssertEqual(t, "event type", pub.events[0].Type, EventInstanceCreated)
	testutil.AssertEqual(t, "event instance", pub.events[0].InstanceID, inst.ID())
}

func TestGetInstance_EmptyIDFallsBackToDefault(t *testing.T) {
	r := newTestRegistry(t)

	testutil.AssertEqual(t, "empty id", r.GetInstance(""), r.DefaultInstance(), cmpAllowUnexported)
	if r.GetInstance("nope") != nil {
		t.Error("unknown id should return nil")
	}
	if r.GetInstanceByName("") != nil {
		t.Error("empty name should return nil")
	}
}

func TestDeleteInstance_DefaultProtected(t *testing.T) {
	r := newTestRegistry(t)

	testutil.AssertEqual(t, "delete default", r.DeleteInstance(DefaultInstanceID), false)
	testutil.AssertEqual(t, "delete empty id", r.DeleteInstance(""), false)
	testutil.AssertEqual(t, "delete unknown", r.DeleteInstance("ghost"), false)
	testutil.AssertEqual(t, "default intact", r.InstanceCount(), 1)
}

func TestDeleteInstance_EvictsLazily(t *testing.T) {
	r := newTestRegistry(t)
	arena := r.CreateInstance("Arena", "owner", "")
	r.AssignPlayerToInstance("p1", arena.ID())
	r.AssignPlayerToInstance("p2", arena.ID())

	// p2 goes offline first: assigned but no longer in the active set.
	r.OnPlayerDisconnected("p2", false)

	testutil.AssertEqual(t, "delete", r.DeleteInstance(arena.ID()), true)
	testutil.AssertEqual(t, "instance gone", r.InstanceCount(), 1)

	// Evicted players resolve to the default instance, but deletion does
	// not eagerly add them to the default active set. They join it on their
	// next explicit assignment or spawn.
	def := r.DefaultInstance()
	testutil.AssertEqual(t, "p1 resolves to default", r.GetPlayerInstance("p1"), def, cmpAllowUnexported)
	testutil.AssertEqual(t, "p2 resolves to default", r.GetPlayerInstance("p2"), def, cmpAllowUnexported)
	testutil.AssertEqual(t, "default active set untouched", def.PlayerCount(), 0)
	assertConsistent(t, r)
}

func TestAssignPlayerToInstance(t *testing.T) {
	r := newTestRegistry(t)
	arena := r.CreateInstance("Arena", "owner", "")

	testutil.AssertEqual(t, "empty player", r.AssignPlayerToInstance("", arena.ID()), false)
	testutil.AssertEqual(t, "unknown instance", r.AssignPlayerToInstance("p1", "ghost"), false)

	testutil.AssertEqual(t, "assign", r.AssignPlayerToInstance("p1", arena.ID()), true)
	testutil.AssertEqual(t, "player instance", r.GetPlayerInstance("p1").Name(), "Arena")
	testutil.AssertEqual(t, "active in arena", arena.HasPlayer("p1"), true)
	assertConsistent(t, r)

	// Moving to the default instance clears the arena membership.
	testutil.AssertEqual(t, "move to default", r.AssignPlayerToInstance("p1", DefaultInstanceID), true)
	testutil.AssertEqual(t, "arena emptied", arena.HasPlayer("p1"), false)
	testutil.AssertEqual(t, "now in default", r.GetPlayerInstance("p1").ID(), DefaultInstanceID)
	assertConsistent(t, r)
}

func TestAssignPlayerToInstance_EmptyIDTargetsDefault(t *testing.T) {
	r := newTestRegistry(t)

	testutil.AssertEqual(t, "assign to empty id", r.AssignPlayerToInstance("p1", ""), true)
	testutil.AssertEqual(t, "in default", r.DefaultInstance().HasPlayer("p1"), true)
	assertConsistent(t, r)
}

func TestAssignPlayerToInstance_CapacityFailurePath(t *testing.T) {
	r := newTestRegistry(t)
	duo := r.CreateInstance("Duo", "owner", "")
	duo.MaxPlayers = 2
	arena := r.CreateInstance("Arena", "owner", "")

	testutil.AssertEqual(t, "p1 joins duo", r.AssignPlayerToInstance("p1", duo.ID()), true)
	testutil.AssertEqual(t, "p2 joins duo", r.AssignPlayerToInstance("p2", duo.ID()), true)
	testutil.AssertEqual(t, "p3 rejected", r.AssignPlayerToInstance("p3", duo.ID()), false)
	testutil.AssertEqual(t, "duo stays at capacity", duo.PlayerCount(), 2)

	// A failed move evicts the player from their old instance without
	// recording a new assignment: they fall back to the default instance.
	r.AssignPlayerToInstance("p4", arena.ID())
	testutil.AssertEqual(t, "p4 move rejected", r.AssignPlayerToInstance("p4", duo.ID()), false)
	testutil.AssertEqual(t, "p4 out of arena", arena.HasPlayer("p4"), false)
	testutil.AssertEqual(t, "p4 falls back to default", r.GetPlayerInstance("p4").ID(), DefaultInstanceID)
	assertConsistent(t, r)
}

func TestRemovePlayerFromInstance(t *testing.T) {
	r := newTestRegistry(t)
	arena := r.CreateInstance("Arena", "owner", "")

	testutil.AssertEqual(t, "unassigned player", r.RemovePlayerFromInstance("p1"), false)

	r.AssignPlayerToInstance("p1", arena.ID())
	testutil.AssertEqual(t, "remove", r.RemovePlayerFromInstance("p1"), true)
	testutil.AssertEqual(t, "arena emptied", arena.HasPlayer("p1"), false)
	testutil.AssertEqual(t, "falls back to default", r.GetPlayerInstance("p1").ID(), DefaultInstanceID)
	assertConsistent(t, r)
}

func TestGetPlayerInstance_NeverNil(t *testing.T) {
	r := newTestRegistry(t)

	if r.GetPlayerInstance("") == nil {
		t.Error("empty player id should resolve to the default instance")
	}
	if r.GetPlayerInstance("stranger") == nil {
		t.Error("unknown player should resolve to the default instance")
	}
}

func TestGetPlayerData(t *testing.T) {
	r := newTestRegistry(t)
	arena := r.CreateInstance("Arena", "owner", "")
	r.AssignPlayerToInstance("p1", arena.ID())

	if r.GetPlayerData("") != nil {
		t.Error("empty player id should have no data")
	}
	if r.GetPlayerData("stranger") != nil {
		t.Error("unknown player should have no data")
	}

	pp := r.GetPlayerData("p1")
	if pp == nil {
		t.Fatal("expected progress for assigned player")
	}
	testutil.AssertEqual(t, "instance id", pp.InstanceID(), arena.ID())

	// A player keeps a separate record per instance visited.
	r.AssignPlayerToInstance("p1", DefaultInstanceID)
	defData := r.GetPlayerData("p1")
	if defData == nil {
		t.Fatal("expected progress in default instance")
	}
	testutil.AssertEqual(t, "default record", defData.InstanceID(), DefaultInstanceID)
	testutil.AssertEqual(t, "arena record still there", r.GetPlayerDataIn("p1", arena.ID()), pp, cmpAllowUnexported)
}

func TestEndToEnd_ArenaScenario(t *testing.T) {
	r := newTestRegistry(t)

	arena := r.CreateInstance("Arena", "owner", "")
	if arena == nil {
		t.Fatal("expected arena instance")
	}

	testutil.AssertEqual(t, "assign", r.AssignPlayerToInstance("P1", arena.ID()), true)
	testutil.AssertEqual(t, "in arena", r.GetPlayerInstance("P1").Name(), "Arena")

	testutil.AssertEqual(t, "remove", r.RemovePlayerFromInstance("P1"), true)
	testutil.AssertEqual(t, "back to default", r.GetPlayerInstance("P1").ID(), DefaultInstanceID)
}

func TestEndToEnd_DuoCapacity(t *testing.T) {
	r := newTestRegistry(t)

	duo := r.CreateInstance("Duo", "owner", "")
	duo.MaxPlayers = 2

	testutil.AssertEqual(t, "P1", r.AssignPlayerToInstance("P1", duo.ID()), true)
	testutil.AssertEqual(t, "P2", r.AssignPlayerToInstance("P2", duo.ID()), true)
	testutil.AssertEqual(t, "P3 rejected", r.AssignPlayerToInstance("P3", duo.ID()), false)
	testutil.AssertEqual(t, "count", duo.PlayerCount(), 2)
}

func TestResetInstance(t *testing.T) {
	r := newTestRegistry(t)
	arena := r.CreateInstance("Arena", "owner", "")
	r.AssignPlayerToInstance("p1", arena.ID())

	testutil.AssertEqual(t, "unknown id", r.ResetInstance("ghost"), false)
	testutil.AssertEqual(t, "reset", r.ResetInstance(arena.ID()), true)
	testutil.AssertEqual(t, "members cleared", arena.PlayerCount(), 0)
}

func TestOnPlayerSpawned_AutoAssignsToDefault(t *testing.T) {
	r := newTestRegistry(t)

	r.OnPlayerSpawned("p1", SpawnReasonJoin, Position{X: 10, Y: 64, Z: -3})

	def := r.DefaultInstance()
	testutil.AssertEqual(t, "in default", def.HasPlayer("p1"), true)

	pp := r.GetPlayerData("p1")
	if pp == nil {
		t.Fatal("expected progress after spawn")
	}
	testutil.AssertEqual(t, "position", pp.LastPosition, Position{X: 10, Y: 64, Z: -3})
	assertConsistent(t, r)
}

func TestOnPlayerSpawned_KeepsExistingAssignment(t *testing.T) {
	r := newTestRegistry(t)
	arena := r.CreateInstance("Arena", "owner", "")
	r.AssignPlayerToInstance("p1", arena.ID())

	// A disconnect drops the player from the active set; respawning into
	// the same assignment restores it.
	r.OnPlayerDisconnected("p1", false)
	r.OnPlayerSpawned("p1", SpawnReasonRespawn, Position{X: 1, Y: 2, Z: 3})

	testutil.AssertEqual(t, "still in arena", r.GetPlayerInstance("p1"), arena, cmpAllowUnexported)
	testutil.AssertEqual(t, "active again", arena.HasPlayer("p1"), true)
	testutil.AssertEqual(t, "position updated", r.GetPlayerData("p1").LastPosition, Position{X: 1, Y: 2, Z: 3})
	assertConsistent(t, r)
}

func TestOnPlayerDisconnected_KeepsAssignment(t *testing.T) {
	r := newTestRegistry(t)
	arena := r.CreateInstance("Arena", "owner", "")
	r.AssignPlayerToInstance("p1", arena.ID())

	r.OnPlayerDisconnected("p1", false)

	// Off the active roster, but still assigned for the next reconnect.
	testutil.AssertEqual(t, "not active", arena.HasPlayer("p1"), false)
	testutil.AssertEqual(t, "assignment kept", r.GetPlayerInstance("p1"), arena, cmpAllowUnexported)
}

func TestOnGameShutdown_TriggersSave(t *testing.T) {
	store := &recordingStore{}
	r := newTestRegistry(t, WithStore(store))
	r.CreateInstance("Arena", "owner", "")
	saves := store.saveCalls

	r.OnGameShutdown()

	testutil.AssertEqual(t, "save on shutdown", store.saveCalls, saves+1)
	testutil.AssertEqual(t, "snapshot size", len(store.lastSave), 2)
}

func TestTick_AccruesPlayTime(t *testing.T) {
	r := newTestRegistry(t)
	arena := r.CreateInstance("Arena", "owner", "")
	r.AssignPlayerToInstance("p1", arena.ID())

	ctx := context.Background()
	if err := r.Tick(ctx); err != nil {
		t.Fatalf("first tick: %v", err)
	}

	// Backdate the last tick so the second tick observes elapsed time.
	r.mu.Lock()
	r.lastTick = r.lastTick.Add(-2 * time.Minute)
	r.mu.Unlock()

	if err := r.Tick(ctx); err != nil {
		t.Fatalf("second tick: %v", err)
	}

	testutil.AssertEqual(t, "minutes accrued", r.GetPlayerData("p1").PlayTimeMinutes(), 2)

	// Disconnected players stop accruing.
	r.OnPlayerDisconnected("p1", false)
	r.mu.Lock()
	r.lastTick = r.lastTick.Add(-5 * time.Minute)
	r.mu.Unlock()
	if err := r.Tick(ctx); err != nil {
		t.Fatalf("third tick: %v", err)
	}
	testutil.AssertEqual(t, "no accrual while offline", r.GetPlayerData("p1").PlayTimeMinutes(), 2)
}
