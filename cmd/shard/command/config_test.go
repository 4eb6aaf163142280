package command

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestConfigValidate(t *testing.T) {
	tests := map[string]struct {
		config Config
		expErr string
	}{
		"empty config is valid": {
			config: Config{},
		},
		"full config": {
			config: Config{
				TickInterval: "1m",
				Listeners:    []ListenerConfig{{Protocol: ListenerTypeTelnet, Port: 2323}},
				Nats:         NatsConfig{Port: 4222, StartTimeout: "10s"},
				Registry:     RegistryConfig{DefaultName: "Overworld", Admins: []string{"op1"}},
			},
		},
		"bad tick interval": {
			config: Config{TickInterval: "soon"},
			expErr: "parsing tick_interval",
		},
		"sub-second tick interval": {
			config: Config{TickInterval: "500ms"},
			expErr: "tick_interval must be at least 1 second",
		},
		"listener without port": {
			config: Config{Listeners: []ListenerConfig{{Protocol: ListenerTypeSSH}}},
			expErr: "listener 0: port must be set",
		},
		"bad nats start timeout": {
			config: Config{Nats: NatsConfig{StartTimeout: "whenever"}},
			expErr: "parsing start_timeout",
		},
		"empty admin id": {
			config: Config{Registry: RegistryConfig{Admins: []string{"op1", ""}}},
			expErr: "admin 1: id cannot be empty",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestListenerTypeUnmarshalText(t *testing.T) {
	var lt ListenerType
	if err := lt.UnmarshalText([]byte("ssh")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "ssh", lt, ListenerTypeSSH)

	if err := lt.UnmarshalText([]byte("telnet")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "telnet", lt, ListenerTypeTelnet)

	testutil.AssertErrorContains(t, lt.UnmarshalText([]byte("carrier-pigeon")), "unknown listener type")
}
