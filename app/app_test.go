package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/intent-resolver/app"
	"github.com/jonesrussell/north-cloud/intent-resolver/config"
	"github.com/jonesrussell/north-cloud/intent-resolver/intent"
	"github.com/jonesrussell/north-cloud/intent-resolver/logger"
)

const intentsJSON = `{
  "intents": [
    {
      "name": "get_weather",
      "description": "Current weather for a city",
      "component": "WeatherCard",
      "version": "1.0.0",
      "parameters": {
        "type": "object",
        "properties": {"city": {"type": "string"}},
        "required": ["city"]
      }
    }
  ]
}`

const componentsJSON = `{
  "components": {
    "WeatherCard": {
      "framework": "react",
      "moduleUrl": "https://cdn.example.com/weather-card.js",
      "exportName": "WeatherCard",
      "version": "1.0.0",
      "props": {
        "type": "object",
        "properties": {"city": {"type": "string"}}
      }
    }
  }
}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	intentsPath := filepath.Join(dir, "intents.json")
	componentsPath := filepath.Join(dir, "components.json")
	require.NoError(t, os.WriteFile(intentsPath, []byte(intentsJSON), 0o644))
	require.NoError(t, os.WriteFile(componentsPath, []byte(componentsJSON), 0o644))

	return &config.Config{
		Logging: logger.Config{Level: "error"},
		Definitions: config.DefinitionsConfig{
			IntentsPath:    intentsPath,
			ComponentsPath: componentsPath,
		},
	}
}

func TestNew_WiresResolverEndToEnd(t *testing.T) {
	t.Parallel()

	a, err := app.New(testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	desc, err := a.Resolver.Resolve(context.Background(), intent.Request{
		Name:       "get_weather",
		Parameters: map[string]any{"city": "Boston"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Boston", desc.Props["city"])

	payload, err := a.Renderer.Render("WeatherCard", desc.Props)
	require.NoError(t, err)
	assert.Equal(t, "WeatherCard", payload.Component)

	assert.Equal(t, int64(1), a.Metrics.Get().ResolvedCount)
}

func TestNew_MissingDefinitionsFile(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Definitions.IntentsPath = filepath.Join(t.TempDir(), "absent.json")
	_, err := app.New(cfg)
	require.Error(t, err)
}

func TestNew_WithDataProvider(t *testing.T) {
	t.Parallel()

	provider := func(context.Context, intent.Request, map[string]any) (map[string]any, error) {
		return map[string]any{"temperature": 18.0}, nil
	}

	a, err := app.New(testConfig(t), app.WithDataProvider(provider))
	require.NoError(t, err)
	defer a.Close()

	desc, err := a.Resolver.Resolve(context.Background(), intent.Request{
		Name:       "get_weather",
		Parameters: map[string]any{"city": "Boston"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 18.0, desc.Props["temperature"])
}

func TestNew_WatchReloadsDefinitions(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Definitions.Watch = true

	a, err := app.New(cfg)
	require.NoError(t, err)
	defer a.Close()

	updated := `{
  "intents": [
    {
      "name": "get_forecast",
      "description": "Five day forecast",
      "component": "WeatherCard",
      "version": "2.0.0",
      "parameters": {"type": "object"}
    }
  ]
}`
	require.NoError(t, os.WriteFile(cfg.Definitions.IntentsPath, []byte(updated), 0o644))

	require.Eventually(t, func() bool {
		_, ok := a.Intents.Get("get_forecast")
		return ok
	}, 5*time.Second, 10*time.Millisecond)
}
