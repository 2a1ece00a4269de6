// Package intent resolves named intents plus parameters into validated
// component descriptors.
package intent

import (
	"context"
	"sync"

	apperrors "github.com/jonesrussell/north-cloud/intent-resolver/errors"
	"github.com/jonesrussell/north-cloud/intent-resolver/events"
	"github.com/jonesrussell/north-cloud/intent-resolver/logger"
	"github.com/jonesrussell/north-cloud/intent-resolver/metrics"
	"github.com/jonesrussell/north-cloud/intent-resolver/models"
	"github.com/jonesrussell/north-cloud/intent-resolver/registry"
	"github.com/jonesrussell/north-cloud/intent-resolver/retry"
	"github.com/jonesrussell/north-cloud/intent-resolver/schema"
)

// Request is an incoming intent resolution request.
type Request struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

// Descriptor is the resolved output of an intent: enough information to
// fetch and instantiate a component with validated properties.
type Descriptor struct {
	ModuleURL  string                      `json:"moduleUrl"`
	ExportName string                      `json:"exportName"`
	Props      map[string]any              `json:"props"`
	TTLSeconds int                         `json:"ttlSeconds"`
	Component  *models.ComponentDefinition `json:"componentDefinition"`
}

// DataProvider supplies extra data merged on top of validated parameters.
// Provider failures are logged and absorbed; resolution proceeds without the
// extra data.
type DataProvider func(ctx context.Context, req Request, renderOptions map[string]any) (map[string]any, error)

// Resolver resolves intents against the intent and component registries.
type Resolver struct {
	intents    *registry.IntentRegistry
	components *registry.ComponentRegistry
	provider   DataProvider
	retryCfg   retry.Config
	log        logger.Logger
	stats      *metrics.Metrics

	// validators caches compiled parameter and props validators per
	// definition name. Registry changes drop the whole cache.
	validatorMu sync.Mutex
	paramCache  map[string]*schema.Validator
	propsCache  map[string]*schema.Validator
	unsubscribe []func()
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDataProvider installs the external data-provider hook.
func WithDataProvider(p DataProvider) Option {
	return func(r *Resolver) { r.provider = p }
}

// WithLogger sets the resolver's logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// WithMetrics sets the resolver's metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.stats = m }
}

// WithProviderRetry overrides the retry policy used for the data provider.
func WithProviderRetry(cfg retry.Config) Option {
	return func(r *Resolver) { r.retryCfg = cfg }
}

// NewResolver creates a Resolver over the given registries.
func NewResolver(intents *registry.IntentRegistry, components *registry.ComponentRegistry, opts ...Option) *Resolver {
	r := &Resolver{
		intents:    intents,
		components: components,
		retryCfg:   retry.DefaultConfig(),
		log:        logger.NewNop(),
		stats:      metrics.New(),
		paramCache: make(map[string]*schema.Validator),
		propsCache: make(map[string]*schema.Validator),
	}
	for _, opt := range opts {
		opt(r)
	}

	// Compiled validators are only valid for the definitions they were
	// compiled from; drop them whenever a registry changes.
	r.unsubscribe = append(r.unsubscribe,
		intents.OnChange(func(events.Event) { r.dropValidators() }),
		components.OnChange(func(events.Event) { r.dropValidators() }),
	)
	return r
}

// Close detaches the resolver from registry change notifications.
func (r *Resolver) Close() error {
	for _, unsub := range r.unsubscribe {
		unsub()
	}
	r.unsubscribe = nil
	return nil
}

// Resolve executes the resolution pipeline: intent lookup, parameter
// validation, component lookup, optional external data merge, TTL
// computation, descriptor assembly.
func (r *Resolver) Resolve(ctx context.Context, req Request, renderOptions map[string]any) (*Descriptor, error) {
	intentDef, ok := r.intents.Get(req.Name)
	if !ok {
		r.stats.RecordNotFound()
		return nil, &apperrors.NotFoundError{Kind: "intent", Name: req.Name}
	}
	if intentDef.Deprecated {
		r.log.Warn("resolving deprecated intent",
			logger.String("intent", intentDef.Name),
			logger.String("version", intentDef.Version))
	}

	params, err := r.validateParameters(intentDef, req.Parameters)
	if err != nil {
		r.stats.RecordValidationFailure()
		return nil, err
	}

	componentDef, ok := r.components.Get(intentDef.Component)
	if !ok {
		r.stats.RecordNotFound()
		return nil, &apperrors.NotFoundError{Kind: "component", Name: intentDef.Component}
	}
	if componentDef.Deprecated {
		r.log.Warn("resolving deprecated component",
			logger.String("component", componentDef.Name),
			logger.String("version", componentDef.Version))
	}

	resolved := r.mergeProviderData(ctx, req, renderOptions, params)

	props := make(map[string]any, len(resolved)+len(renderOptions))
	for k, v := range resolved {
		props[k] = v
	}
	for k, v := range renderOptions {
		props[k] = v
	}

	r.stats.RecordResolution()
	return &Descriptor{
		ModuleURL:  componentDef.ModuleURL,
		ExportName: componentDef.ExportName,
		Props:      props,
		TTLSeconds: computeTTL(intentDef, componentDef),
		Component:  componentDef,
	}, nil
}

// ValidateComponentProps checks props against a component's props schema. It
// raises PropsValidationError, a distinct kind from parameter validation.
func (r *Resolver) ValidateComponentProps(def *models.ComponentDefinition, props map[string]any) (map[string]any, error) {
	v, err := r.propsValidator(def)
	if err != nil {
		return nil, err
	}
	coerced, fieldErrs := v.Validate(props)
	if len(fieldErrs) > 0 {
		r.stats.RecordValidationFailure()
		return nil, &apperrors.PropsValidationError{Component: def.Name, Fields: fieldErrs}
	}
	return coerced, nil
}

func (r *Resolver) validateParameters(def *models.IntentDefinition, params map[string]any) (map[string]any, error) {
	v, err := r.paramValidator(def)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]any{}
	}
	coerced, fieldErrs := v.Validate(params)
	if len(fieldErrs) > 0 {
		return nil, &apperrors.ValidationError{Fields: fieldErrs}
	}
	return coerced, nil
}

// mergeProviderData invokes the data-provider hook and merges its result on
// top of the validated parameters, hook keys winning on collision. Hook
// failures leave the validated parameters untouched.
func (r *Resolver) mergeProviderData(ctx context.Context, req Request, renderOptions, params map[string]any) map[string]any {
	if r.provider == nil {
		return params
	}

	var extra map[string]any
	err := retry.Do(ctx, r.retryCfg, func(ctx context.Context) error {
		var provErr error
		extra, provErr = r.provider(ctx, req, renderOptions)
		return provErr
	})
	if err != nil {
		r.log.Warn("data provider failed, proceeding with validated parameters",
			logger.String("intent", req.Name),
			logger.Error(err))
		return params
	}

	merged := make(map[string]any, len(params)+len(extra))
	for k, v := range params {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

func (r *Resolver) paramValidator(def *models.IntentDefinition) (*schema.Validator, error) {
	r.validatorMu.Lock()
	defer r.validatorMu.Unlock()
	if v, ok := r.paramCache[def.Name]; ok {
		return v, nil
	}
	v, err := schema.Compile(def.Parameters, r.log)
	if err != nil {
		return nil, &apperrors.ConfigurationError{Definition: def.Name, Err: err}
	}
	r.paramCache[def.Name] = v
	return v, nil
}

func (r *Resolver) propsValidator(def *models.ComponentDefinition) (*schema.Validator, error) {
	r.validatorMu.Lock()
	defer r.validatorMu.Unlock()
	if v, ok := r.propsCache[def.Name]; ok {
		return v, nil
	}
	v, err := schema.Compile(def.Props, r.log)
	if err != nil {
		return nil, &apperrors.ConfigurationError{Definition: def.Name, Err: err}
	}
	r.propsCache[def.Name] = v
	return v, nil
}

func (r *Resolver) dropValidators() {
	r.validatorMu.Lock()
	r.paramCache = make(map[string]*schema.Validator)
	r.propsCache = make(map[string]*schema.Validator)
	r.validatorMu.Unlock()
}
