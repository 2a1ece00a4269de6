package render_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jonesrussell/north-cloud/intent-resolver/errors"
	"github.com/jonesrussell/north-cloud/intent-resolver/logger"
	"github.com/jonesrussell/north-cloud/intent-resolver/models"
	"github.com/jonesrussell/north-cloud/intent-resolver/registry"
	"github.com/jonesrussell/north-cloud/intent-resolver/render"
	"github.com/jonesrussell/north-cloud/intent-resolver/schema"
)

func componentRegistry(t *testing.T) *registry.ComponentRegistry {
	t.Helper()

	reg, err := registry.NewComponentsFromValues([]*models.ComponentDefinition{
		{
			Name:       "WeatherCard",
			Framework:  "react",
			ModuleURL:  "https://cdn.example.com/weather-card.js",
			ExportName: "WeatherCard",
			Version:    "1.0.0",
			Props:      &schema.Schema{Type: "object"},
		},
	}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })
	return reg
}

func TestRender_BuildsPayload(t *testing.T) {
	t.Parallel()

	r := render.NewRenderer(componentRegistry(t), 0, nil)
	defer r.Close()

	payload, err := r.Render("WeatherCard", map[string]any{"city": "Boston"})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, payload.RenderID)
	assert.Equal(t, "WeatherCard", payload.Component)
	assert.Equal(t, "react", payload.Framework)
	assert.Equal(t, "https://cdn.example.com/weather-card.js", payload.ModuleURL)
	assert.Equal(t, "WeatherCard", payload.ExportName)
	assert.Equal(t, "Boston", payload.Props["city"])
	assert.Contains(t, payload.HTML, `data-component="WeatherCard"`)
	assert.Contains(t, payload.HTML, `data-framework="react"`)
	assert.False(t, payload.RenderedAt.IsZero())
}

func TestRender_UnknownComponent(t *testing.T) {
	t.Parallel()

	r := render.NewRenderer(componentRegistry(t), 0, nil)
	defer r.Close()

	_, err := r.Render("NoSuchCard", nil)
	require.Error(t, err)

	var nfErr *apperrors.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "component", nfErr.Kind)
	assert.Equal(t, "NoSuchCard", nfErr.Name)
}

func TestRender_CacheHitReturnsSamePayload(t *testing.T) {
	t.Parallel()

	r := render.NewRenderer(componentRegistry(t), time.Minute, nil)
	defer r.Close()

	first, err := r.Render("WeatherCard", map[string]any{"city": "Boston"})
	require.NoError(t, err)
	second, err := r.Render("WeatherCard", map[string]any{"city": "Boston"})
	require.NoError(t, err)
	assert.Equal(t, first.RenderID, second.RenderID)

	// Different props produce a fresh payload.
	third, err := r.Render("WeatherCard", map[string]any{"city": "Chicago"})
	require.NoError(t, err)
	assert.NotEqual(t, first.RenderID, third.RenderID)
}

func TestRender_CacheInvalidatedOnRegistryChange(t *testing.T) {
	t.Parallel()

	reg := componentRegistry(t)
	r := render.NewRenderer(reg, time.Minute, nil)
	defer r.Close()

	first, err := r.Render("WeatherCard", map[string]any{"city": "Boston"})
	require.NoError(t, err)

	def, ok := reg.Get("WeatherCard")
	require.True(t, ok)
	updated := *def
	updated.Version = "1.1.0"
	require.NoError(t, reg.Add(&updated))

	second, err := r.Render("WeatherCard", map[string]any{"city": "Boston"})
	require.NoError(t, err)
	assert.NotEqual(t, first.RenderID, second.RenderID)
}
