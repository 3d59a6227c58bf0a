package command

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/opencode-ai/runhost/internal/args"
	"github.com/opencode-ai/runhost/internal/binder"
)

// Command is a runnable command body. Execute must return once ctx is done;
// cancellation is cooperative.
type Command interface {
	Execute(ctx context.Context) error
}

// Func adapts a function to the Command interface.
type Func func(ctx context.Context) error

func (f Func) Execute(ctx context.Context) error { return f(ctx) }

// Factory constructs a command from its bound configuration.
type Factory[C any] func(cfg *C) (Command, error)

// Registration is a named, type-erased command definition.
type Registration struct {
	Name        string
	Description string

	newConfig func() any
	bind      func(cfg any, dict *args.Dictionary) error
	build     func(cfg any) (Command, error)
	usage     func(w io.Writer, width int) error

	// err records a Define misuse; Register refuses the registration.
	err error
}

// Option customizes a registration created by Define.
type Option func(*options)

type options struct {
	description string
	defaults    any
}

// WithDescription sets the one-line description shown in command listings.
func WithDescription(text string) Option {
	return func(o *options) { o.description = text }
}

// WithDefaults pre-populates every fresh configuration before binding. fn
// must take a pointer to the configuration type of the registration, or
// Register rejects the registration.
func WithDefaults[C any](fn func(*C)) Option {
	return func(o *options) { o.defaults = fn }
}

// Define creates a registration for a command whose configuration type is C.
func Define[C any](name string, table *binder.Table[C], factory Factory[C], opts ...Option) Registration {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	defaults, ok := o.defaults.(func(*C))
	var err error
	if o.defaults != nil && !ok {
		err = fmt.Errorf("command %s: defaults of type %T do not match configuration %T", name, o.defaults, new(C))
	}

	return Registration{
		Name:        name,
		Description: o.description,
		newConfig: func() any {
			cfg := new(C)
			if defaults != nil {
				defaults(cfg)
			}
			return cfg
		},
		bind: func(cfg any, dict *args.Dictionary) error {
			return table.Bind(cfg.(*C), dict)
		},
		build: func(cfg any) (Command, error) {
			return factory(cfg.(*C))
		},
		usage: table.Usage,
		err:   err,
	}
}

// Bind creates a fresh configuration and binds dict onto it. The returned
// value is a pointer to the registration's configuration type.
func (r *Registration) Bind(dict *args.Dictionary) (any, error) {
	cfg := r.newConfig()
	if err := r.bind(cfg, dict); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Build constructs the command for a configuration returned by Bind.
func (r *Registration) Build(cfg any) (Command, error) {
	cmd, err := r.build(cfg)
	if err != nil {
		return nil, fmt.Errorf("construct command %s: %w", r.Name, err)
	}
	if cmd == nil {
		return nil, fmt.Errorf("construct command %s: factory returned nil", r.Name)
	}
	return cmd, nil
}

// Usage prints the argument table of the command.
func (r *Registration) Usage(w io.Writer, width int) error {
	return r.usage(w, width)
}

// NameOf derives a command name from the dynamic type of v by stripping the
// last "Command" from the type name: *EchoCommand becomes "Echo". Type names
// without "Command" are returned unchanged.
func NameOf(v any) string {
	name := fmt.Sprintf("%T", v)
	name = strings.TrimLeft(name, "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "Command"); i >= 0 {
		return name[:i]
	}
	return name
}
