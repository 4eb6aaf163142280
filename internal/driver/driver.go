package driver

import (
	"context"
	"time"
)

const (
	// DefaultTickLength paces play time accrual; sub-minute totals are
	// rounded by the progress records, so a minute is plenty.
	DefaultTickLength = time.Minute
)

type Manager interface {
	Tick(context.Context) error
}

// ShardDriver ticks every registered manager on a fixed cadence.
type ShardDriver struct {
	tickLength time.Duration
	managers   []Manager
}

func NewShardDriver(managers []Manager, opts ...ShardDriverOpt) *ShardDriver {
	d := &ShardDriver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *ShardDriver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

func (d *ShardDriver) Tick(ctx context.Context) error {
	for _, m := range d.managers {
		if err := m.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}
