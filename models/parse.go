package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// ParseSize parses a human-readable byte size with a unit suffix, e.g.
// "200KB" or "1.5MB", into bytes.
func ParseSize(s string) (uint64, error) {
	size, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", s, err)
	}
	return size, nil
}

// ParseMillis parses a duration with a unit suffix ("1500ms", "1.5s") into
// milliseconds. Bare numbers are read as milliseconds so stored budgets are
// always parseable by clients.
func ParseMillis(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("duration is empty")
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("duration %q is negative", s)
		}
		return d.Milliseconds(), nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n >= 0 {
		return n, nil
	}
	return 0, fmt.Errorf("parse duration %q", s)
}

