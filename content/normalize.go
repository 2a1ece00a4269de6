package content

import (
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/intent-resolver/models"
)

// Field-name fallbacks tried in order when normalizing raw items. Different
// origins name the same concept differently; the first present key wins.
var (
	idFields          = []string{"id", "_id", "guid", "key", "slug"}
	titleFields       = []string{"title", "name", "headline", "subject"}
	descriptionFields = []string{"description", "summary", "excerpt", "intro"}
	updatedFields     = []string{"lastUpdated", "last_updated", "updatedAt", "updated_at", "publishedAt", "published_at", "date", "timestamp"}
	urlFields         = []string{"url", "link", "href", "permalink"}
)

// timeLayouts are the accepted timestamp shapes, most specific first.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// normalizeItem converts one raw source item into a ContentItem. Fields the
// fallbacks do not consume are preserved under Metadata.
func normalizeItem(source string, index int, raw map[string]any) models.ContentItem {
	consumed := make(map[string]bool)

	item := models.ContentItem{
		Source:      source,
		ID:          pickString(raw, idFields, consumed),
		Title:       pickString(raw, titleFields, consumed),
		Description: pickString(raw, descriptionFields, consumed),
		URL:         pickString(raw, urlFields, consumed),
		LastUpdated: pickTime(raw, consumed),
	}

	if t, ok := raw["type"].(string); ok {
		item.Type = t
		consumed["type"] = true
	} else {
		item.Type = source
	}
	if item.ID == "" {
		item.ID = fmt.Sprintf("%s-%d", source, index)
	}

	for key, value := range raw {
		if consumed[key] {
			continue
		}
		if item.Metadata == nil {
			item.Metadata = make(map[string]any)
		}
		item.Metadata[key] = value
	}
	return item
}

func pickString(raw map[string]any, keys []string, consumed map[string]bool) string {
	for _, key := range keys {
		value, ok := raw[key]
		if !ok {
			continue
		}
		consumed[key] = true
		switch v := value.(type) {
		case string:
			return v
		case float64, int, int64, bool:
			return fmt.Sprint(v)
		default:
			return ""
		}
	}
	return ""
}

func pickTime(raw map[string]any, consumed map[string]bool) time.Time {
	for _, key := range updatedFields {
		value, ok := raw[key]
		if !ok {
			continue
		}
		consumed[key] = true
		switch v := value.(type) {
		case time.Time:
			return v
		case string:
			for _, layout := range timeLayouts {
				if t, err := time.Parse(layout, v); err == nil {
					return t
				}
			}
		case float64:
			// Unix seconds.
			return time.Unix(int64(v), 0).UTC()
		}
		return time.Time{}
	}
	return time.Time{}
}
