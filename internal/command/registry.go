package command

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/opencode-ai/runhost/internal/args"
)

var (
	// ErrNoCommand is returned when no command name was given.
	ErrNoCommand = args.ErrNoCommand

	// ErrUnknownCommand is matched by every UnknownCommandError.
	ErrUnknownCommand = errors.New("unknown command")
)

// UnknownCommandError reports a command name that is not registered. Known
// lists the registered names in registration order; Suggestion is the
// closest of them when one is within suggestDistance edits.
type UnknownCommandError struct {
	Name       string
	Known      []string
	Suggestion string
}

func (e *UnknownCommandError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown command: %s (no commands registered)", e.Name)
	}
	msg := fmt.Sprintf("unknown command: %s (supported: %s)", e.Name, strings.Join(e.Known, ", "))
	if e.Suggestion != "" {
		msg += fmt.Sprintf("; did you mean %s?", e.Suggestion)
	}
	return msg
}

func (e *UnknownCommandError) Is(target error) bool { return target == ErrUnknownCommand }

const suggestDistance = 2

// suggest returns the known name closest to name, ignoring case. Ties go to
// the earliest registered name.
func suggest(name string, known []string) string {
	target := strings.ToLower(name)
	best, bestDist := "", suggestDistance+1
	for _, candidate := range known {
		dist := levenshtein.ComputeDistance(target, strings.ToLower(candidate))
		if dist < bestDist && dist < len(target) {
			best, bestDist = candidate, dist
		}
	}
	return best
}

// Registry maps case-insensitive command names to registrations.
type Registry struct {
	mu   sync.RWMutex
	cmds *orderedmap.OrderedMap[string, Registration]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{cmds: orderedmap.New[string, Registration]()}
}

// Register adds registrations. A name that is already registered, in any
// case, is replaced and keeps its original listing position.
func (r *Registry) Register(regs ...Registration) error {
	for _, reg := range regs {
		if strings.TrimSpace(reg.Name) == "" {
			return errors.New("command name cannot be empty")
		}
		if reg.newConfig == nil {
			return fmt.Errorf("command %s was not created with Define", reg.Name)
		}
		if reg.err != nil {
			return reg.err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range regs {
		r.cmds.Set(strings.ToLower(reg.Name), reg)
	}
	return nil
}

// Resolve returns the registration for name.
func (r *Registry) Resolve(name string) (*Registration, error) {
	if name == "" {
		return nil, ErrNoCommand
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.cmds.Get(strings.ToLower(name))
	if !ok {
		known := r.namesLocked()
		return nil, &UnknownCommandError{Name: name, Known: known, Suggestion: suggest(name, known)}
	}
	return &reg, nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

// List returns the registrations in registration order.
func (r *Registry) List() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Registration, 0, r.cmds.Len())
	for pair := r.cmds.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cmds.Len()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, r.cmds.Len())
	for pair := r.cmds.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Value.Name)
	}
	return names
}
