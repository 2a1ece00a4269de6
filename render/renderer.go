// Package render produces placeholder render payloads for resolved
// components. Actual hydration belongs to the consuming frontend; the
// payload carries everything it needs to mount the remote module.
package render

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/jonesrussell/north-cloud/intent-resolver/errors"
	"github.com/jonesrussell/north-cloud/intent-resolver/events"
	"github.com/jonesrussell/north-cloud/intent-resolver/logger"
	"github.com/jonesrussell/north-cloud/intent-resolver/registry"
)

// DefaultCacheTTL bounds how long a rendered payload may be served from
// cache.
const DefaultCacheTTL = 5 * time.Minute

// Payload is a placeholder render result for one component instance.
type Payload struct {
	RenderID   uuid.UUID      `json:"renderId"`
	Component  string         `json:"component"`
	Framework  string         `json:"framework"`
	ModuleURL  string         `json:"moduleUrl"`
	ExportName string         `json:"exportName"`
	Props      map[string]any `json:"props"`
	HTML       string         `json:"html"`
	RenderedAt time.Time      `json:"renderedAt"`
}

type cacheEntry struct {
	payload   *Payload
	expiresAt time.Time
}

// Renderer builds and caches placeholder payloads from the component
// registry.
type Renderer struct {
	components *registry.ComponentRegistry
	ttl        time.Duration
	log        logger.Logger

	mu    sync.Mutex
	cache map[string]*cacheEntry

	unsubscribe func()
}

// NewRenderer creates a Renderer over the component registry. A zero ttl
// uses DefaultCacheTTL.
func NewRenderer(components *registry.ComponentRegistry, ttl time.Duration, log logger.Logger) *Renderer {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = logger.NewNop()
	}
	r := &Renderer{
		components: components,
		ttl:        ttl,
		log:        log,
		cache:      make(map[string]*cacheEntry),
	}
	// Cached payloads embed definition fields; drop them when definitions
	// change.
	r.unsubscribe = components.OnChange(func(events.Event) {
		r.mu.Lock()
		r.cache = make(map[string]*cacheEntry)
		r.mu.Unlock()
	})
	return r
}

// Close detaches the renderer from registry change notifications.
func (r *Renderer) Close() error {
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	return nil
}

// Render returns the placeholder payload for a component with the given
// props, serving repeats from cache until the entry expires.
func (r *Renderer) Render(name string, props map[string]any) (*Payload, error) {
	def, ok := r.components.Get(name)
	if !ok {
		return nil, &apperrors.NotFoundError{Kind: "component", Name: name}
	}

	key := cacheKey(name, props)
	now := time.Now()

	r.mu.Lock()
	if entry, hit := r.cache[key]; hit && now.Before(entry.expiresAt) {
		r.mu.Unlock()
		r.log.Debug("render cache hit", logger.String("component", name))
		return entry.payload, nil
	}
	r.mu.Unlock()

	payload := &Payload{
		RenderID:   uuid.New(),
		Component:  def.Name,
		Framework:  def.Framework,
		ModuleURL:  def.ModuleURL,
		ExportName: def.ExportName,
		Props:      props,
		HTML: fmt.Sprintf(
			`<div data-component=%q data-export=%q data-framework=%q></div>`,
			def.Name, def.ExportName, def.Framework),
		RenderedAt: now,
	}

	r.mu.Lock()
	r.cache[key] = &cacheEntry{payload: payload, expiresAt: now.Add(r.ttl)}
	r.mu.Unlock()
	return payload, nil
}

func cacheKey(name string, props map[string]any) string {
	serialized, err := json.Marshal(props)
	if err != nil {
		return name
	}
	return name + ":" + string(serialized)
}
