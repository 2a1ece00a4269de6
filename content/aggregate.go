package content

import (
	"context"
	"fmt"
	"sort"
	"time"

	apperrors "github.com/jonesrussell/north-cloud/intent-resolver/errors"
	"github.com/jonesrussell/north-cloud/intent-resolver/logger"
	"github.com/jonesrussell/north-cloud/intent-resolver/models"
	"github.com/jonesrussell/north-cloud/intent-resolver/schema"
)

// GetContent aggregates items across the selected sources into one feed.
// Sources are processed sequentially so each source's cache and rate state
// stays free of cross-source races. A source that is over its rate budget or
// whose handler fails is skipped and logged, never failing the call.
func (r *Registry) GetContent(ctx context.Context, opts Options) (*Feed, error) {
	selected := r.selectSources(opts)
	limit := clampLimit(opts.Limit)
	now := time.Now()

	handlerOpts := HandlerOptions{
		Cursor:      opts.Cursor,
		Fields:      opts.Fields,
		LastUpdated: opts.LastUpdated,
	}

	var (
		items       []models.ContentItem
		contributed []string
		anyHasMore  bool
		totalKnown  bool
		total       int
		nextCursor  string
	)

	for _, state := range selected {
		name := state.source.Name

		if !state.allow(now) {
			r.stats.RecordRateLimitedSkip()
			r.log.Warn("source over rate budget, skipping for this call",
				logger.String("source", name))
			continue
		}

		perSource := handlerOpts
		perSource.Limit = sourceLimit(limit, state.source.Config.Pagination)

		result, err := r.fetch(ctx, state, perSource, now)
		if err != nil {
			r.stats.RecordSourceError()
			r.log.Error("source handler failed, omitting its contribution",
				logger.Error(&apperrors.SourceError{Source: name, Err: err}))
			continue
		}

		r.checkItems(state.source, result.Data)

		for i, raw := range result.Data {
			items = append(items, normalizeItem(name, i, raw))
		}
		contributed = append(contributed, name)

		if result.Pagination.HasMore {
			anyHasMore = true
		}
		if result.Pagination.Total > 0 {
			totalKnown = true
			total += result.Pagination.Total
		}
		// A combined cursor across sources is not representable; propagate
		// the cursor only when a single source contributed.
		if result.Pagination.NextCursor != "" {
			nextCursor = result.Pagination.NextCursor
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].LastUpdated.After(items[j].LastUpdated)
	})

	preTruncation := len(items)
	if preTruncation > limit {
		items = items[:limit]
	}
	if items == nil {
		items = []models.ContentItem{}
	}
	if !totalKnown {
		total = len(items)
	}
	if len(contributed) != 1 {
		nextCursor = ""
	}

	feed := &Feed{
		Contents: items,
		Pagination: PageInfo{
			NextCursor: nextCursor,
			HasMore:    anyHasMore || preTruncation > limit,
			Total:      total,
		},
		LastUpdated: now,
	}
	if opts.IncludeMetadata {
		feed.Metadata = r.buildMetadata(contributed)
	}
	return feed, nil
}

// selectSources resolves the explicit name list, or every source not
// explicitly disabled when no names are given. Unknown explicit names are
// logged and skipped.
func (r *Registry) selectSources(opts Options) []*sourceState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := opts.Sources
	if opts.Source != "" {
		names = []string{opts.Source}
	}

	var selected []*sourceState
	if len(names) > 0 {
		for _, name := range names {
			state, ok := r.sources[name]
			if !ok {
				r.log.Warn("requested source is not registered",
					logger.String("source", name))
				continue
			}
			selected = append(selected, state)
		}
		return selected
	}

	allNames := make([]string, 0, len(r.sources))
	for name := range r.sources {
		allNames = append(allNames, name)
	}
	sort.Strings(allNames)
	for _, name := range allNames {
		state := r.sources[name]
		if !state.source.Config.IsEnabled() {
			continue
		}
		selected = append(selected, state)
	}
	return selected
}

// fetch serves the handler result from the source cache when possible, and
// invokes the handler on a miss.
func (r *Registry) fetch(ctx context.Context, state *sourceState, opts HandlerOptions, now time.Time) (*HandlerResult, error) {
	key := cacheKey(state.source.Name, opts)

	if result, ok := state.cached(key, now); ok {
		r.stats.RecordCacheHit()
		r.log.Debug("content cache hit", logger.String("source", state.source.Name))
		return result, nil
	}
	r.stats.RecordCacheMiss()

	result, err := state.source.Handler(ctx, opts)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("handler returned no result")
	}

	state.store(key, result, now)
	return result, nil
}

// checkItems validates raw items against the source schema. Missing required
// fields and type mismatches produce logged warnings only; items are never
// dropped for failing the check.
func (r *Registry) checkItems(src Source, items []map[string]any) {
	for i, item := range items {
		for _, required := range src.Schema.Required {
			if _, ok := item[required]; !ok {
				r.log.Warn("item is missing a required field",
					logger.String("source", src.Name),
					logger.Int("item", i),
					logger.String("field", required))
			}
		}
		for name, prop := range src.Schema.Properties {
			value, ok := item[name]
			if !ok || prop == nil {
				continue
			}
			if msg := typeMismatch(prop.Type, value); msg != "" {
				r.log.Warn("item field does not match the source schema",
					logger.String("source", src.Name),
					logger.Int("item", i),
					logger.String("field", name),
					logger.String("mismatch", msg))
			}
		}
	}
}

func typeMismatch(declared string, value any) string {
	ok := true
	switch declared {
	case "string":
		_, ok = value.(string)
	case "number", "integer":
		switch value.(type) {
		case float64, float32, int, int64:
		default:
			ok = false
		}
	case "boolean":
		_, ok = value.(bool)
	case "array":
		_, ok = value.([]any)
	case "object":
		_, ok = value.(map[string]any)
	}
	if !ok {
		return fmt.Sprintf("expected %s, got %T", declared, value)
	}
	return ""
}

// buildMetadata captures contributing sources and the union of their schemas.
func (r *Registry) buildMetadata(contributed []string) *Metadata {
	combined := &schema.Schema{
		Type:       "object",
		Properties: make(map[string]*schema.Schema),
	}
	requiredSet := make(map[string]bool)

	r.mu.RLock()
	for _, name := range contributed {
		state, ok := r.sources[name]
		if !ok {
			continue
		}
		for prop, propSchema := range state.source.Schema.Properties {
			if _, exists := combined.Properties[prop]; !exists {
				combined.Properties[prop] = propSchema
			}
		}
		for _, req := range state.source.Schema.Required {
			requiredSet[req] = true
		}
	}
	r.mu.RUnlock()

	for req := range requiredSet {
		combined.Required = append(combined.Required, req)
	}
	sort.Strings(combined.Required)

	return &Metadata{
		Sources:        contributed,
		SourceCount:    len(contributed),
		CombinedSchema: combined,
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// sourceLimit clamps the requested limit to the source's own maximum.
func sourceLimit(requested int, p PaginationConfig) int {
	if p.MaxLimit > 0 && requested > p.MaxLimit {
		return p.MaxLimit
	}
	return requested
}
