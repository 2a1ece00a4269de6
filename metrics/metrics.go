// Package metrics provides counters for intent resolution and content
// aggregation, safe for concurrent use.
package metrics

import (
	"sync"
	"time"
)

// Metrics holds the resolution and aggregation counters.
type Metrics struct {
	mu sync.Mutex

	resolvedCount      int64
	validationFailures int64
	notFoundCount      int64
	cacheHits          int64
	cacheMisses        int64
	rateLimitedSkips   int64
	sourceErrors       int64
	lastResolvedTime   time.Time
	startTime          time.Time
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	ResolvedCount      int64
	ValidationFailures int64
	NotFoundCount      int64
	CacheHits          int64
	CacheMisses        int64
	RateLimitedSkips   int64
	SourceErrors       int64
	LastResolvedTime   time.Time
	StartTime          time.Time
}

// New creates a Metrics instance.
func New() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordResolution records a completed intent resolution.
func (m *Metrics) RecordResolution() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolvedCount++
	m.lastResolvedTime = time.Now()
}

// RecordValidationFailure records a parameter or props validation failure.
func (m *Metrics) RecordValidationFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validationFailures++
}

// RecordNotFound records an unknown intent or component lookup.
func (m *Metrics) RecordNotFound() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notFoundCount++
}

// RecordCacheHit records a content cache hit.
func (m *Metrics) RecordCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits++
}

// RecordCacheMiss records a content cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMisses++
}

// RecordRateLimitedSkip records a source skipped because its window budget
// was spent.
func (m *Metrics) RecordRateLimitedSkip() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateLimitedSkips++
}

// RecordSourceError records a source handler failure.
func (m *Metrics) RecordSourceError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sourceErrors++
}

// Reset zeroes all counters and restarts the collection clock.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolvedCount = 0
	m.validationFailures = 0
	m.notFoundCount = 0
	m.cacheHits = 0
	m.cacheMisses = 0
	m.rateLimitedSkips = 0
	m.sourceErrors = 0
	m.lastResolvedTime = time.Time{}
	m.startTime = time.Now()
}

// Get returns a copy of the current counters.
func (m *Metrics) Get() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		ResolvedCount:      m.resolvedCount,
		ValidationFailures: m.validationFailures,
		NotFoundCount:      m.notFoundCount,
		CacheHits:          m.cacheHits,
		CacheMisses:        m.cacheMisses,
		RateLimitedSkips:   m.rateLimitedSkips,
		SourceErrors:       m.sourceErrors,
		LastResolvedTime:   m.lastResolvedTime,
		StartTime:          m.startTime,
	}
}
