// Package events provides the event envelopes emitted by definition
// registries when their contents change.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type represents the kind of registry change.
type Type string

const (
	// DefinitionAdded indicates a definition was added.
	DefinitionAdded Type = "DEFINITION_ADDED"
	// DefinitionRemoved indicates a definition was removed.
	DefinitionRemoved Type = "DEFINITION_REMOVED"
	// RegistryReloaded indicates the whole registry was replaced from its
	// backing source.
	RegistryReloaded Type = "REGISTRY_RELOADED"
)

// Event is the envelope delivered to registry change listeners.
type Event struct {
	EventID   uuid.UUID `json:"event_id"`
	Type      Type      `json:"type"`
	Registry  string    `json:"registry"`
	Name      string    `json:"name,omitempty"`
	Count     int       `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// New builds an event envelope with a fresh ID and the current time.
func New(eventType Type, registry, name string, count int) Event {
	return Event{
		EventID:   uuid.New(),
		Type:      eventType,
		Registry:  registry,
		Name:      name,
		Count:     count,
		Timestamp: time.Now(),
	}
}
