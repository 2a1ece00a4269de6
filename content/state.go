package content

import (
	"encoding/json"
	"time"
)

// allow consumes one request from the source's fixed rate window. The
// counter resets when the window elapses.
func (s *sourceState) allow(now time.Time) bool {
	limit := s.source.Config.RateLimit
	if limit.Requests <= 0 {
		return true
	}

	window := time.Duration(limit.WindowMS) * time.Millisecond

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.windowStart.IsZero() || now.Sub(s.windowStart) >= window {
		s.windowStart = now
		s.windowCount = 0
	}
	if s.windowCount >= limit.Requests {
		return false
	}
	s.windowCount++
	return true
}

// cached returns the unexpired cache entry for key, if any.
func (s *sourceState) cached(key string, now time.Time) (*HandlerResult, bool) {
	if !s.source.Config.Cache.Enabled {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[key]
	if !ok {
		return nil, false
	}
	if now.After(entry.expiresAt) {
		delete(s.cache, key)
		return nil, false
	}
	return entry.result, true
}

// store caches a handler result under key, honoring the source TTL.
func (s *sourceState) store(key string, result *HandlerResult, now time.Time) {
	cfg := s.source.Config.Cache
	if !cfg.Enabled {
		return
	}

	s.mu.Lock()
	s.cache[key] = &cacheEntry{
		result:    result,
		expiresAt: now.Add(time.Duration(cfg.TTLSeconds) * time.Second),
	}
	s.mu.Unlock()
}

// cacheKey serializes the request options that shape a handler call. Entries
// are keyed per (source, options) pair.
func cacheKey(source string, opts HandlerOptions) string {
	serialized, err := json.Marshal(opts)
	if err != nil {
		return source
	}
	return source + ":" + string(serialized)
}
