// Package registry provides the named-definition stores backing intent
// resolution. A registry owns its definitions, change listeners, and optional
// file watcher; reloads replace the definition map wholesale and atomically,
// never leaving a half-applied state behind.
package registry

import (
	"sort"
	"sync"

	apperrors "github.com/jonesrussell/north-cloud/intent-resolver/errors"
	"github.com/jonesrussell/north-cloud/intent-resolver/events"
	"github.com/jonesrussell/north-cloud/intent-resolver/logger"
)

// Definition is implemented by every type a registry can store.
type Definition interface {
	// DefinitionName returns the unique registry key.
	DefinitionName() string
	// Validate checks the definition's structural invariants.
	Validate() error
}

// parser turns raw file bytes into definitions.
type parser[T Definition] func(data []byte) ([]T, error)

// checker runs extra per-definition checks beyond Definition.Validate, such
// as compiling the definition's schema. May be nil.
type checker[T Definition] func(def T, log logger.Logger) error

// warner returns non-fatal per-definition messages logged at load time. May
// be nil.
type warner[T Definition] func(def T) []string

// Registry is a concurrency-safe store of named definitions. Reads are
// lock-cheap and frequent; writes replace or mutate the map under a writer
// lock.
type Registry[T Definition] struct {
	kind  string
	path  string
	parse parser[T]
	check checker[T]
	warn  warner[T]
	log   logger.Logger

	mu   sync.RWMutex
	defs map[string]T

	listenerMu   sync.Mutex
	listeners    map[int]func(events.Event)
	nextListener int

	watchMu   sync.Mutex
	watchStop chan struct{}
}

// Get returns the definition stored under name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// GetAll returns all definitions sorted by name.
func (r *Registry[T]) GetAll() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]T, 0, len(r.defs))
	for _, def := range r.defs {
		all = append(all, def)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].DefinitionName() < all[j].DefinitionName()
	})
	return all
}

// Len returns the number of stored definitions.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Add validates a definition and inserts it, firing change listeners
// synchronously on success.
func (r *Registry[T]) Add(def T) error {
	if err := r.validateOne(def); err != nil {
		return err
	}

	r.mu.Lock()
	r.defs[def.DefinitionName()] = def
	r.mu.Unlock()

	r.notify(events.New(events.DefinitionAdded, r.kind, def.DefinitionName(), 0))
	return nil
}

// Remove deletes the definition stored under name and fires change listeners.
// Removing an unknown name is a no-op.
func (r *Registry[T]) Remove(name string) bool {
	r.mu.Lock()
	_, existed := r.defs[name]
	delete(r.defs, name)
	r.mu.Unlock()

	if existed {
		r.notify(events.New(events.DefinitionRemoved, r.kind, name, 0))
	}
	return existed
}

// Reload re-reads the backing file and atomically replaces the definition
// map. The current definitions stay authoritative when the reload fails.
// Registries constructed from in-memory definitions have no backing file and
// reload as a no-op.
func (r *Registry[T]) Reload() error {
	if r.path == "" {
		return nil
	}

	defs, err := r.loadFile(r.path)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.defs = defs
	count := len(defs)
	r.mu.Unlock()

	r.notify(events.New(events.RegistryReloaded, r.kind, "", count))
	return nil
}

// OnChange registers a listener fired synchronously after every change. The
// returned function unsubscribes it. Listener panics are caught and logged,
// never propagated to the caller that triggered the change.
func (r *Registry[T]) OnChange(listener func(events.Event)) func() {
	r.listenerMu.Lock()
	id := r.nextListener
	r.nextListener++
	r.listeners[id] = listener
	r.listenerMu.Unlock()

	return func() {
		r.listenerMu.Lock()
		delete(r.listeners, id)
		r.listenerMu.Unlock()
	}
}

// Close stops file watching and drops all listeners.
func (r *Registry[T]) Close() error {
	r.DisableFileWatching()

	r.listenerMu.Lock()
	r.listeners = make(map[int]func(events.Event))
	r.listenerMu.Unlock()
	return nil
}

func (r *Registry[T]) notify(evt events.Event) {
	r.listenerMu.Lock()
	listeners := make([]func(events.Event), 0, len(r.listeners))
	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}
	r.listenerMu.Unlock()

	for _, listener := range listeners {
		r.callListener(listener, evt)
	}
}

func (r *Registry[T]) callListener(listener func(events.Event), evt events.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("registry change listener panicked",
				logger.String("registry", r.kind),
				logger.Any("panic", rec))
		}
	}()
	listener(evt)
}

// validateOne runs structural validation plus the registry's extra checks,
// wrapping failures so they name the offending definition.
func (r *Registry[T]) validateOne(def T) error {
	name := def.DefinitionName()
	if err := def.Validate(); err != nil {
		return &apperrors.ConfigurationError{Definition: name, Err: err}
	}
	if r.check != nil {
		if err := r.check(def, r.log); err != nil {
			return &apperrors.ConfigurationError{Definition: name, Err: err}
		}
	}
	if r.warn != nil {
		for _, w := range r.warn(def) {
			r.log.Warn("definition warning",
				logger.String("registry", r.kind),
				logger.String("name", name),
				logger.String("warning", w))
		}
	}
	return nil
}

// buildMap validates every definition into a scratch map. The scratch map is
// only swapped into the live slot by callers after full success.
func (r *Registry[T]) buildMap(defs []T) (map[string]T, error) {
	m := make(map[string]T, len(defs))
	for _, def := range defs {
		if err := r.validateOne(def); err != nil {
			return nil, err
		}
		name := def.DefinitionName()
		if _, dup := m[name]; dup {
			return nil, &apperrors.ConfigurationError{
				Definition: name,
				Reason:     "duplicate definition name",
			}
		}
		m[name] = def
	}
	return m, nil
}
