package instance

import "log/slog"

// Store is the persistence collaborator for the instance directory. The
// registry calls it on initialize, create, delete, and shutdown; whether a
// real backing store exists is the collaborator's concern.
type Store interface {
	LoadInstances() ([]*Instance, error)
	SaveInstances([]*Instance) error
}

// NoopStore satisfies Store without any backing storage. It is the default
// when no persistence layer is plugged in.
type NoopStore struct{}

func (NoopStore) LoadInstances() ([]*Instance, error) {
	slog.Debug("instance store: nothing to load (no backing store)")
	return nil, nil
}

func (NoopStore) SaveInstances(instances []*Instance) error {
	slog.Debug("instance store: save skipped (no backing store)", "count", len(instances))
	return nil
}
