package events_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/north-cloud/intent-resolver/events"
)

func TestNew(t *testing.T) {
	t.Parallel()

	evt := events.New(events.DefinitionAdded, "intent", "get_weather", 0)
	assert.NotEqual(t, uuid.Nil, evt.EventID)
	assert.Equal(t, events.DefinitionAdded, evt.Type)
	assert.Equal(t, "intent", evt.Registry)
	assert.Equal(t, "get_weather", evt.Name)
	assert.False(t, evt.Timestamp.IsZero())

	other := events.New(events.RegistryReloaded, "component", "", 7)
	assert.Equal(t, 7, other.Count)
	assert.NotEqual(t, evt.EventID, other.EventID)
}
