package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jonesrussell/north-cloud/intent-resolver/errors"
	"github.com/jonesrussell/north-cloud/intent-resolver/events"
	"github.com/jonesrussell/north-cloud/intent-resolver/logger"
	"github.com/jonesrussell/north-cloud/intent-resolver/models"
	"github.com/jonesrussell/north-cloud/intent-resolver/registry"
	"github.com/jonesrussell/north-cloud/intent-resolver/schema"
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
    },
    {
      "name": "list_articles",
      "description": "Recent articles",
      "component": "ArticleList",
      "version": "1.0.0",
      "parameters": {"type": "object"}
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

func writeTempFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func sampleIntent(name string) *models.IntentDefinition {
	return &models.IntentDefinition{
		Name:        name,
		Description: "sample",
		Component:   "WeatherCard",
		Version:     "1.0.0",
		Parameters:  &schema.Schema{Type: "object"},
	}
}

func TestNewIntentsFromFile(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "intents.json", intentsJSON)
	reg, err := registry.NewIntentsFromFile(path, logger.NewNop())
	require.NoError(t, err)
	defer reg.Close()

	assert.Equal(t, 2, reg.Len())

	def, ok := reg.Get("get_weather")
	require.True(t, ok)
	assert.Equal(t, "WeatherCard", def.Component)
	assert.Equal(t, []string{"city"}, def.Parameters.Required)

	all := reg.GetAll()
	require.Len(t, all, 2)
	assert.Equal(t, "get_weather", all[0].Name)
	assert.Equal(t, "list_articles", all[1].Name)
}

func TestNewIntentsFromFile_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := registry.NewIntentsFromFile(filepath.Join(t.TempDir(), "absent.json"), logger.NewNop())
	require.Error(t, err)

	var cfgErr *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "read intent definitions file")
}

func TestNewIntentsFromFile_InvalidDefinitionNamesOffender(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "intents.json", `{
  "intents": [
    {
      "name": "broken_intent",
      "description": "missing component",
      "version": "1.0.0",
      "parameters": {"type": "object"}
    }
  ]
}`)

	_, err := registry.NewIntentsFromFile(path, logger.NewNop())
	require.Error(t, err)

	var cfgErr *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "broken_intent", cfgErr.Definition)
}

func TestNewIntentsFromFile_MissingTopLevelKey(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "intents.json", `{"definitions": []}`)
	_, err := registry.NewIntentsFromFile(path, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"intents"`)
}

func TestNewComponentsFromFile(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "components.json", componentsJSON)
	reg, err := registry.NewComponentsFromFile(path, logger.NewNop())
	require.NoError(t, err)
	defer reg.Close()

	def, ok := reg.Get("WeatherCard")
	require.True(t, ok)
	// The map key fills in the definition name.
	assert.Equal(t, "WeatherCard", def.Name)
	assert.Equal(t, "https://cdn.example.com/weather-card.js", def.ModuleURL)
}

func TestNewComponentsFromFile_KeyNameMismatch(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "components.json", `{
  "components": {
    "WeatherCard": {
      "name": "SomethingElse",
      "framework": "react",
      "moduleUrl": "https://cdn.example.com/weather-card.js",
      "exportName": "WeatherCard",
      "version": "1.0.0",
      "props": {"type": "object"}
    }
  }
}`)

	_, err := registry.NewComponentsFromFile(path, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestNewIntentsFromValues_Maps(t *testing.T) {
	t.Parallel()

	values := []map[string]any{
		{
			"name":        "get_weather",
			"description": "Current weather for a city",
			"component":   "WeatherCard",
			"version":     "1.0.0",
			"parameters": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"city": map[string]any{"type": "string"},
				},
				"required": []any{"city"},
			},
		},
	}

	reg, err := registry.NewIntentsFromValues(values, logger.NewNop())
	require.NoError(t, err)
	defer reg.Close()

	def, ok := reg.Get("get_weather")
	require.True(t, ok)
	assert.Equal(t, []string{"city"}, def.Parameters.Required)
}

func TestNewIntentsFromValues_DuplicateNames(t *testing.T) {
	t.Parallel()

	_, err := registry.NewIntentsFromValues([]*models.IntentDefinition{
		sampleIntent("get_weather"),
		sampleIntent("get_weather"),
	}, logger.NewNop())
	require.Error(t, err)

	var cfgErr *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "get_weather", cfgErr.Definition)
	assert.Contains(t, cfgErr.Reason, "duplicate")
}

func TestRegistry_AddRemoveFiresListeners(t *testing.T) {
	t.Parallel()

	reg, err := registry.NewIntentsFromValues([]*models.IntentDefinition{}, logger.NewNop())
	require.NoError(t, err)
	defer reg.Close()

	var got []events.Event
	unsubscribe := reg.OnChange(func(evt events.Event) {
		got = append(got, evt)
	})

	require.NoError(t, reg.Add(sampleIntent("get_weather")))
	assert.True(t, reg.Remove("get_weather"))
	assert.False(t, reg.Remove("get_weather"))

	require.Len(t, got, 2)
	assert.Equal(t, events.DefinitionAdded, got[0].Type)
	assert.Equal(t, "get_weather", got[0].Name)
	assert.Equal(t, "intent", got[0].Registry)
	assert.Equal(t, events.DefinitionRemoved, got[1].Type)

	unsubscribe()
	require.NoError(t, reg.Add(sampleIntent("get_weather")))
	assert.Len(t, got, 2)
}

func TestRegistry_AddRejectsInvalidDefinition(t *testing.T) {
	t.Parallel()

	reg, err := registry.NewIntentsFromValues([]*models.IntentDefinition{}, logger.NewNop())
	require.NoError(t, err)
	defer reg.Close()

	bad := sampleIntent("bad_intent")
	bad.Component = ""
	err = reg.Add(bad)
	require.Error(t, err)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_ListenerPanicIsContained(t *testing.T) {
	t.Parallel()

	reg, err := registry.NewIntentsFromValues([]*models.IntentDefinition{}, logger.NewNop())
	require.NoError(t, err)
	defer reg.Close()

	reg.OnChange(func(events.Event) { panic("listener exploded") })

	called := false
	reg.OnChange(func(events.Event) { called = true })

	require.NoError(t, reg.Add(sampleIntent("get_weather")))
	assert.True(t, called)
}

func TestRegistry_ReloadReplacesDefinitions(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "intents.json", intentsJSON)
	reg, err := registry.NewIntentsFromFile(path, logger.NewNop())
	require.NoError(t, err)
	defer reg.Close()

	var reloaded []events.Event
	reg.OnChange(func(evt events.Event) {
		if evt.Type == events.RegistryReloaded {
			reloaded = append(reloaded, evt)
		}
	})

	require.NoError(t, os.WriteFile(path, []byte(`{
  "intents": [
    {
      "name": "get_forecast",
      "description": "Five day forecast",
      "component": "ForecastPanel",
      "version": "2.0.0",
      "parameters": {"type": "object"}
    }
  ]
}`), 0o644))

	require.NoError(t, reg.Reload())
	assert.Equal(t, 1, reg.Len())

	_, ok := reg.Get("get_weather")
	assert.False(t, ok)
	_, ok = reg.Get("get_forecast")
	assert.True(t, ok)

	require.Len(t, reloaded, 1)
	assert.Equal(t, 1, reloaded[0].Count)
}

func TestRegistry_FailedReloadKeepsCurrentDefinitions(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "intents.json", intentsJSON)
	reg, err := registry.NewIntentsFromFile(path, logger.NewNop())
	require.NoError(t, err)
	defer reg.Close()

	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))
	require.Error(t, reg.Reload())

	// Previous definitions survive the bad reload untouched.
	assert.Equal(t, 2, reg.Len())
	_, ok := reg.Get("get_weather")
	assert.True(t, ok)
}

func TestRegistry_ReloadIsAtomicAcrossDefinitions(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "intents.json", intentsJSON)
	reg, err := registry.NewIntentsFromFile(path, logger.NewNop())
	require.NoError(t, err)
	defer reg.Close()

	// One valid definition followed by one invalid; neither may land.
	require.NoError(t, os.WriteFile(path, []byte(`{
  "intents": [
    {
      "name": "get_forecast",
      "description": "Five day forecast",
      "component": "ForecastPanel",
      "version": "2.0.0",
      "parameters": {"type": "object"}
    },
    {
      "name": "broken_intent",
      "description": "missing component",
      "version": "1.0.0",
      "parameters": {"type": "object"}
    }
  ]
}`), 0o644))

	err = reg.Reload()
	require.Error(t, err)

	var cfgErr *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "broken_intent", cfgErr.Definition)

	// Not half-replaced: the valid new definition did not sneak in and the
	// old set is intact.
	_, ok := reg.Get("get_forecast")
	assert.False(t, ok)
	assert.Equal(t, 2, reg.Len())
	_, ok = reg.Get("get_weather")
	assert.True(t, ok)
}

func TestRegistry_ReloadWithoutBackingFileIsNoop(t *testing.T) {
	t.Parallel()

	reg, err := registry.NewIntentsFromValues([]*models.IntentDefinition{
		sampleIntent("get_weather"),
	}, logger.NewNop())
	require.NoError(t, err)
	defer reg.Close()

	require.NoError(t, reg.Reload())
	assert.Equal(t, 1, reg.Len())
}
