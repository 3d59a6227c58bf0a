package lifecycle

import (
	"github.com/opencode-ai/runhost/internal/command"
	"github.com/opencode-ai/runhost/internal/event"
)

// Option configures a Starter.
type Option func(*Starter)

// WithBus publishes lifecycle events to bus. command.stopping is delivered
// synchronously from Stop; its subscribers must not call the Starter.
func WithBus(bus *event.Bus) Option {
	return func(s *Starter) { s.bus = bus }
}

// WithVersion sets the version reported in the startup banner.
func WithVersion(version string) Option {
	return func(s *Starter) { s.version = version }
}

// WithRegistry resolves commands from an existing registry instead of a
// private one.
func WithRegistry(registry *command.Registry) Option {
	return func(s *Starter) { s.registry = registry }
}
