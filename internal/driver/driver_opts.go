package driver

import "time"

type ShardDriverOpt func(*ShardDriver)

func WithTickLength(tickLength time.Duration) ShardDriverOpt {
	return func(d *ShardDriver) {
		d.tickLength = tickLength
	}
}
