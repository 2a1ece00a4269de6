package content_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/intent-resolver/content"
)

// mixedSource is a source whose items exercise normalization rather than
// schema checks; schema warnings go to the nop logger.
func mixedSource() content.Source {
	return content.Source{
		Name:    "mixed",
		Version: "1.0.0",
		Schema:  articleSchema(),
	}
}

func fetchOne(t *testing.T, raw map[string]any) content.Feed {
	t.Helper()

	src := mixedSource()
	src.Handler = staticHandler([]map[string]any{raw}, content.PageInfo{})

	reg := content.NewRegistry(nil, nil)
	require.NoError(t, reg.Register(src))

	feed, err := reg.GetContent(context.Background(), content.Options{})
	require.NoError(t, err)
	require.Len(t, feed.Contents, 1)
	return *feed
}

func TestNormalize_FieldFallbacks(t *testing.T) {
	t.Parallel()

	feed := fetchOne(t, map[string]any{
		"guid":      "g-1",
		"headline":  "Breaking news",
		"summary":   "Short version",
		"permalink": "https://example.com/breaking",
		"updatedAt": "2026-08-15T08:30:00Z",
	})

	item := feed.Contents[0]
	assert.Equal(t, "g-1", item.ID)
	assert.Equal(t, "Breaking news", item.Title)
	assert.Equal(t, "Short version", item.Description)
	assert.Equal(t, "https://example.com/breaking", item.URL)
	assert.Equal(t, time.Date(2026, 8, 15, 8, 30, 0, 0, time.UTC), item.LastUpdated.UTC())
}

func TestNormalize_MissingIDFallsBackToSourceIndex(t *testing.T) {
	t.Parallel()

	feed := fetchOne(t, map[string]any{"title": "Untracked"})
	assert.Equal(t, "mixed-0", feed.Contents[0].ID)
}

func TestNormalize_TypeDefaultsToSourceName(t *testing.T) {
	t.Parallel()

	feed := fetchOne(t, map[string]any{"id": "x", "title": "Plain"})
	assert.Equal(t, "mixed", feed.Contents[0].Type)

	feed = fetchOne(t, map[string]any{"id": "x", "title": "Typed", "type": "video"})
	assert.Equal(t, "video", feed.Contents[0].Type)
}

func TestNormalize_UnixSecondsTimestamp(t *testing.T) {
	t.Parallel()

	feed := fetchOne(t, map[string]any{
		"id":        "x",
		"title":     "Epoch",
		"timestamp": float64(1_756_500_000),
	})
	assert.Equal(t, time.Unix(1_756_500_000, 0).UTC(), feed.Contents[0].LastUpdated)
}

func TestNormalize_LeftoversLandInMetadata(t *testing.T) {
	t.Parallel()

	feed := fetchOne(t, map[string]any{
		"id":     "x",
		"title":  "With extras",
		"author": "jdoe",
		"tags":   []any{"go", "feeds"},
	})

	item := feed.Contents[0]
	require.NotNil(t, item.Metadata)
	assert.Equal(t, "jdoe", item.Metadata["author"])
	assert.Equal(t, []any{"go", "feeds"}, item.Metadata["tags"])
	assert.NotContains(t, item.Metadata, "id")
	assert.NotContains(t, item.Metadata, "title")
}

func TestNormalize_NumericIDStringified(t *testing.T) {
	t.Parallel()

	feed := fetchOne(t, map[string]any{"id": float64(7), "title": "Numbered"})
	assert.Equal(t, "7", feed.Contents[0].ID)
}
