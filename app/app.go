// Package app wires the resolver core together from configuration: logger,
// definition registries, intent resolver, content source registry, and
// component renderer, with a single teardown.
package app

import (
	"fmt"

	"github.com/jonesrussell/north-cloud/intent-resolver/config"
	"github.com/jonesrussell/north-cloud/intent-resolver/content"
	"github.com/jonesrussell/north-cloud/intent-resolver/intent"
	"github.com/jonesrussell/north-cloud/intent-resolver/logger"
	"github.com/jonesrussell/north-cloud/intent-resolver/metrics"
	"github.com/jonesrussell/north-cloud/intent-resolver/registry"
	"github.com/jonesrussell/north-cloud/intent-resolver/render"
)

// App holds the wired resolver core.
type App struct {
	Log        logger.Logger
	Intents    *registry.IntentRegistry
	Components *registry.ComponentRegistry
	Resolver   *intent.Resolver
	Content    *content.Registry
	Renderer   *render.Renderer
	Metrics    *metrics.Metrics
}

// Option configures the App beyond its config file.
type Option func(*App)

// WithDataProvider installs the external data-provider hook on the resolver.
func WithDataProvider(p intent.DataProvider) Option {
	return func(a *App) {
		if a.Resolver != nil {
			_ = a.Resolver.Close()
		}
		a.Resolver = intent.NewResolver(a.Intents, a.Components,
			intent.WithDataProvider(p),
			intent.WithLogger(a.Log),
			intent.WithMetrics(a.Metrics))
	}
}

// New builds the core from a loaded configuration.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	intents, err := registry.NewIntentsFromFile(cfg.Definitions.IntentsPath, log)
	if err != nil {
		return nil, err
	}
	components, err := registry.NewComponentsFromFile(cfg.Definitions.ComponentsPath, log)
	if err != nil {
		return nil, err
	}

	if cfg.Definitions.Watch {
		if err := intents.EnableFileWatching(); err != nil {
			return nil, fmt.Errorf("watch intents: %w", err)
		}
		if err := components.EnableFileWatching(); err != nil {
			return nil, fmt.Errorf("watch components: %w", err)
		}
	}

	stats := metrics.New()
	a := &App{
		Log:        log,
		Intents:    intents,
		Components: components,
		Metrics:    stats,
		Content:    content.NewRegistry(log, stats),
		Renderer:   render.NewRenderer(components, cfg.Render.CacheTTL, log),
		Resolver: intent.NewResolver(intents, components,
			intent.WithLogger(log),
			intent.WithMetrics(stats)),
	}
	for _, opt := range opts {
		opt(a)
	}

	log.Info("intent resolver core ready",
		logger.Int("intents", intents.Len()),
		logger.Int("components", components.Len()))
	return a, nil
}

// Close tears down watchers, listeners, and caches.
func (a *App) Close() error {
	if a.Resolver != nil {
		_ = a.Resolver.Close()
	}
	if a.Renderer != nil {
		_ = a.Renderer.Close()
	}
	if a.Intents != nil {
		_ = a.Intents.Close()
	}
	if a.Components != nil {
		_ = a.Components.Close()
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
	return nil
}
