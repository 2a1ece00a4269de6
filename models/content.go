package models

import "time"

// ContentItem is the normalized representation of one item returned by
// content aggregation, regardless of originating source.
type ContentItem struct {
	Type        string         `json:"type"`
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	LastUpdated time.Time      `json:"lastUpdated"`
	Source      string         `json:"source"`
	URL         string         `json:"url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}
