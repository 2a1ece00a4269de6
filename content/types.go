// Package content aggregates heterogeneous external content sources into one
// paginated, cached feed. Sources are pluggable adapters: the package
// orchestrates caller-supplied handlers and performs no network I/O itself.
package content

import (
	"context"
	"time"

	"github.com/jonesrussell/north-cloud/intent-resolver/models"
	"github.com/jonesrussell/north-cloud/intent-resolver/schema"
)

// HandlerOptions is passed to a source handler on every live fetch.
type HandlerOptions struct {
	Limit       int      `json:"limit"`
	Cursor      string   `json:"cursor,omitempty"`
	Fields      []string `json:"fields,omitempty"`
	LastUpdated string   `json:"lastUpdated,omitempty"`
}

// PageInfo reports a handler's pagination state.
type PageInfo struct {
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
	Total      int    `json:"total,omitempty"`
}

// HandlerResult is the raw, source-shaped page a handler returns.
type HandlerResult struct {
	Data       []map[string]any `json:"data"`
	Pagination PageInfo         `json:"pagination"`
}

// Handler fetches one page of raw items from a source.
type Handler func(ctx context.Context, opts HandlerOptions) (*HandlerResult, error)

// PaginationConfig bounds the page sizes a source serves.
type PaginationConfig struct {
	DefaultLimit int `json:"defaultLimit" yaml:"defaultLimit"`
	MaxLimit     int `json:"maxLimit"     yaml:"maxLimit"`
}

// CacheConfig controls per-source result caching.
type CacheConfig struct {
	Enabled    bool `json:"enabled"    yaml:"enabled"`
	TTLSeconds int  `json:"ttlSeconds" yaml:"ttlSeconds"`
}

// RateLimitConfig is a fixed-window budget: at most Requests fetches per
// WindowMS milliseconds. A zero Requests disables limiting.
type RateLimitConfig struct {
	Requests int `json:"requests" yaml:"requests"`
	WindowMS int `json:"windowMs" yaml:"windowMs"`
}

// SourceConfig is a source's operational policy.
type SourceConfig struct {
	// Enabled defaults to true when nil; only an explicit false disables
	// the source.
	Enabled      *bool            `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Pagination   PaginationConfig `json:"pagination"        yaml:"pagination"`
	Cache        CacheConfig      `json:"cache"             yaml:"cache"`
	RateLimit    RateLimitConfig  `json:"rateLimit"         yaml:"rateLimit"`
	AuthRequired bool             `json:"authRequired"      yaml:"authRequired"`
}

// IsEnabled reports whether the source participates in implicit selection.
func (c SourceConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Source is a registered content-source adapter.
type Source struct {
	Name    string         `json:"name"`
	Schema  *schema.Schema `json:"schema"`
	Version string         `json:"version"`
	Handler Handler        `json:"-"`
	Config  SourceConfig   `json:"config"`
}

// Options selects and shapes an aggregation request.
type Options struct {
	// Source selects a single source by name.
	Source string `json:"source,omitempty"`
	// Sources selects multiple sources by name. Ignored when Source is set.
	Sources []string `json:"sources,omitempty"`
	// Cursor resumes pagination.
	Cursor string `json:"cursor,omitempty"`
	// Limit bounds the combined result, 1..1000, default 100.
	Limit int `json:"limit,omitempty"`
	// Fields restricts the fields handlers are asked for.
	Fields []string `json:"fields,omitempty"`
	// LastUpdated filters items changed since this ISO-8601 instant.
	LastUpdated string `json:"lastUpdated,omitempty"`
	// IncludeMetadata attaches aggregation metadata to the feed.
	IncludeMetadata bool `json:"includeMetadata,omitempty"`
}

// Metadata describes how a feed was assembled.
type Metadata struct {
	Sources        []string       `json:"sources"`
	SourceCount    int            `json:"sourceCount"`
	CombinedSchema *schema.Schema `json:"combinedSchema,omitempty"`
}

// Feed is the aggregated, normalized, paginated result.
type Feed struct {
	Contents    []models.ContentItem `json:"contents"`
	Pagination  PageInfo             `json:"pagination"`
	LastUpdated time.Time            `json:"lastUpdated"`
	Metadata    *Metadata            `json:"metadata,omitempty"`
}

// Enabled is a convenience for building SourceConfig literals.
func Enabled(v bool) *bool {
	return &v
}
