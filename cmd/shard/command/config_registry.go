package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-shard/internal/instance"
)

type RegistryConfig struct {
	DefaultName        string   `json:"default_name"`
	DefaultDescription string   `json:"default_description"`
	Admins             []string `json:"admins"`
}

func (c *RegistryConfig) Validate() error {
	el := errors.NewErrorList()

	for i, a := range c.Admins {
		if a == "" {
			el.Add(fmt.Errorf("admin %d: id cannot be empty", i))
		}
	}

	return el.Err()
}

func (c *RegistryConfig) BuildRegistry(events instance.EventPublisher) *instance.Registry {
	opts := []instance.RegistryOpt{}
	if events != nil {
		opts = append(opts, instance.WithEventPublisher(events))
	}
	if c.DefaultName != "" {
		opts = append(opts, instance.WithDefaultInstanceName(c.DefaultName))
	}
	if c.DefaultDescription != "" {
		opts = append(opts, instance.WithDefaultInstanceDescription(c.DefaultDescription))
	}
	return instance.NewRegistry(opts...)
}
