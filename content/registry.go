package content

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	apperrors "github.com/jonesrussell/north-cloud/intent-resolver/errors"
	"github.com/jonesrussell/north-cloud/intent-resolver/logger"
	"github.com/jonesrussell/north-cloud/intent-resolver/metrics"
	"github.com/jonesrussell/north-cloud/intent-resolver/schema"
)

// Limits applied when a source or request leaves them unset.
const (
	defaultLimit = 100
	maxLimit     = 1000
	// minWindow is the smallest accepted rate-limit window.
	minWindow = time.Second
)

// cacheEntry holds one cached handler result.
type cacheEntry struct {
	result    *HandlerResult
	expiresAt time.Time
}

// sourceState carries a source's runtime bookkeeping. Each source owns its
// cache and rate window under its own lock; no lock ever spans sources.
type sourceState struct {
	source Source

	mu          sync.Mutex
	cache       map[string]*cacheEntry
	windowStart time.Time
	windowCount int
}

// Registry stores content-source adapters and aggregates their results.
type Registry struct {
	log   logger.Logger
	stats *metrics.Metrics

	mu      sync.RWMutex
	sources map[string]*sourceState
}

// NewRegistry creates an empty source registry.
func NewRegistry(log logger.Logger, stats *metrics.Metrics) *Registry {
	if log == nil {
		log = logger.NewNop()
	}
	if stats == nil {
		stats = metrics.New()
	}
	return &Registry{
		log:     log,
		stats:   stats,
		sources: make(map[string]*sourceState),
	}
}

// Register validates a source's schema and config, applies pagination
// defaults, and stores the source under its unique name.
func (r *Registry) Register(src Source) error {
	if err := validateSource(&src); err != nil {
		return &apperrors.ConfigurationError{Definition: src.Name, Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sources[src.Name]; exists {
		return &apperrors.ConfigurationError{
			Definition: src.Name,
			Reason:     "source already registered",
		}
	}

	r.sources[src.Name] = &sourceState{
		source: src,
		cache:  make(map[string]*cacheEntry),
	}
	r.log.Info("content source registered",
		logger.String("source", src.Name),
		logger.String("version", src.Version))
	return nil
}

// Unregister removes a source and purges its cache entries and rate-limit
// counters. Unknown names are a no-op.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	_, existed := r.sources[name]
	delete(r.sources, name)
	r.mu.Unlock()

	if existed {
		r.log.Info("content source unregistered", logger.String("source", name))
	}
	return existed
}

// Get returns the registered source under name.
func (r *Registry) Get(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.sources[name]
	if !ok {
		return Source{}, false
	}
	return state.source, true
}

// Names returns all registered source names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validateSource(src *Source) error {
	if src.Name == "" {
		return errors.New("name is required")
	}
	if src.Handler == nil {
		return errors.New("handler is required")
	}
	if err := validateSourceSchema(src.Schema); err != nil {
		return err
	}
	if err := validateSourceConfig(&src.Config); err != nil {
		return err
	}
	return nil
}

// validateSourceSchema is stricter than the schema compiler: a source schema
// must declare a recognized type for every property so response checking can
// say something useful about every field.
func validateSourceSchema(s *schema.Schema) error {
	if s == nil {
		return errors.New("schema is required")
	}
	if !s.IsObject() {
		return fmt.Errorf("schema top-level type must be %q, got %q", "object", s.Type)
	}
	for name, prop := range s.Properties {
		if prop == nil {
			return fmt.Errorf("property %q has no schema", name)
		}
		switch prop.Type {
		case "string", "number", "integer", "boolean", "array", "object":
		default:
			return fmt.Errorf("property %q has unrecognized type %q", name, prop.Type)
		}
	}
	for _, required := range s.Required {
		if _, ok := s.Properties[required]; !ok {
			return fmt.Errorf("required field %q is not a declared property", required)
		}
	}
	return nil
}

func validateSourceConfig(cfg *SourceConfig) error {
	if cfg.Pagination.MaxLimit == 0 {
		cfg.Pagination.MaxLimit = defaultLimit
	}
	if cfg.Pagination.DefaultLimit == 0 {
		cfg.Pagination.DefaultLimit = cfg.Pagination.MaxLimit
	}
	if cfg.Pagination.DefaultLimit < 0 || cfg.Pagination.MaxLimit < 0 {
		return errors.New("pagination limits must be positive")
	}
	if cfg.Pagination.DefaultLimit > cfg.Pagination.MaxLimit {
		return fmt.Errorf("defaultLimit %d exceeds maxLimit %d",
			cfg.Pagination.DefaultLimit, cfg.Pagination.MaxLimit)
	}
	if cfg.Cache.Enabled && cfg.Cache.TTLSeconds <= 0 {
		return errors.New("cache.ttlSeconds must be positive when cache is enabled")
	}
	if cfg.RateLimit.Requests > 0 {
		if time.Duration(cfg.RateLimit.WindowMS)*time.Millisecond < minWindow {
			return fmt.Errorf("rateLimit.windowMs must be at least %d", minWindow.Milliseconds())
		}
	}
	return nil
}
