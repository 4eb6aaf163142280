package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-service"
	"github.com/pixil98/go-shard/internal/commands"
	"github.com/pixil98/go-shard/internal/console"
	"github.com/pixil98/go-shard/internal/driver"
	"github.com/pixil98/go-shard/internal/listener"
	"github.com/pixil98/go-shard/internal/messaging"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Embedded message broker for the instance event stream
	natsServer, err := cfg.Nats.BuildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// Create the instance registry with events flowing to the broker
	registry := cfg.Registry.BuildRegistry(messaging.NewEventPublisher(natsServer))
	if err := registry.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing registry: %w", err)
	}

	// Admin console sessions share one command handler
	handler := commands.NewHandler(registry, cfg.Registry.Admins)
	connManager := listener.NewConnectionManager(console.NewManager(handler, natsServer))

	// Create Listeners
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		lst, err := l.BuildListener(connManager)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = lst
	}

	// Setup the shard driver
	var driverOpts []driver.ShardDriverOpt
	if cfg.TickInterval != "" {
		d, err := time.ParseDuration(cfg.TickInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing tick_interval: %w", err)
		}
		driverOpts = append(driverOpts, driver.WithTickLength(d))
	}
	shardDriver := driver.NewShardDriver([]driver.Manager{
		registry,
	}, driverOpts...)

	// Create a worker list
	return service.WorkerList{
		"nats":      natsServer,
		"registry":  registry,
		"driver":    shardDriver,
		"listeners": &listeners,
	}, nil
}
