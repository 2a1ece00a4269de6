package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"

	apperrors "github.com/jonesrussell/north-cloud/intent-resolver/errors"
	"github.com/jonesrussell/north-cloud/intent-resolver/events"
	"github.com/jonesrussell/north-cloud/intent-resolver/logger"
	"github.com/jonesrussell/north-cloud/intent-resolver/models"
	"github.com/jonesrussell/north-cloud/intent-resolver/schema"
)

// IntentRegistry stores intent definitions.
type IntentRegistry = Registry[*models.IntentDefinition]

// ComponentRegistry stores component definitions.
type ComponentRegistry = Registry[*models.ComponentDefinition]

// NewIntentsFromFile loads an intent registry from a JSON file with a
// top-level {"intents": [...]} shape.
func NewIntentsFromFile(path string, log logger.Logger) (*IntentRegistry, error) {
	r := newIntentRegistry(log)
	r.path = path
	defs, err := r.loadFile(path)
	if err != nil {
		return nil, err
	}
	r.defs = defs
	return r, nil
}

// NewIntentsFromValues loads an intent registry from an in-memory structure:
// a slice of definitions or an equivalent slice of maps.
func NewIntentsFromValues(values any, log logger.Logger) (*IntentRegistry, error) {
	r := newIntentRegistry(log)
	defs, err := decodeDefinitions[*models.IntentDefinition](values)
	if err != nil {
		return nil, &apperrors.ConfigurationError{Reason: "decode intent definitions", Err: err}
	}
	m, err := r.buildMap(defs)
	if err != nil {
		return nil, err
	}
	r.defs = m
	return r, nil
}

// NewComponentsFromFile loads a component registry from a JSON file with a
// top-level {"components": {name: definition}} shape.
func NewComponentsFromFile(path string, log logger.Logger) (*ComponentRegistry, error) {
	r := newComponentRegistry(log)
	r.path = path
	defs, err := r.loadFile(path)
	if err != nil {
		return nil, err
	}
	r.defs = defs
	return r, nil
}

// NewComponentsFromValues loads a component registry from an in-memory
// structure: a slice of definitions or an equivalent slice of maps.
func NewComponentsFromValues(values any, log logger.Logger) (*ComponentRegistry, error) {
	r := newComponentRegistry(log)
	defs, err := decodeDefinitions[*models.ComponentDefinition](values)
	if err != nil {
		return nil, &apperrors.ConfigurationError{Reason: "decode component definitions", Err: err}
	}
	m, err := r.buildMap(defs)
	if err != nil {
		return nil, err
	}
	r.defs = m
	return r, nil
}

func newIntentRegistry(log logger.Logger) *IntentRegistry {
	if log == nil {
		log = logger.NewNop()
	}
	return &IntentRegistry{
		kind:      "intent",
		parse:     parseIntentsFile,
		check:     compileIntentSchema,
		log:       log,
		defs:      make(map[string]*models.IntentDefinition),
		listeners: make(map[int]func(events.Event)),
	}
}

func newComponentRegistry(log logger.Logger) *ComponentRegistry {
	if log == nil {
		log = logger.NewNop()
	}
	return &ComponentRegistry{
		kind:      "component",
		parse:     parseComponentsFile,
		check:     compileComponentSchema,
		warn:      componentWarnings,
		log:       log,
		defs:      make(map[string]*models.ComponentDefinition),
		listeners: make(map[int]func(events.Event)),
	}
}

// loadFile reads and parses the backing file, then validates every parsed
// definition into a scratch map. The caller swaps the map in on success.
func (r *Registry[T]) loadFile(path string) (map[string]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperrors.ConfigurationError{
			Reason: fmt.Sprintf("read %s definitions file %s", r.kind, path),
			Err:    err,
		}
	}

	defs, err := r.parse(data)
	if err != nil {
		return nil, &apperrors.ConfigurationError{
			Reason: fmt.Sprintf("parse %s definitions file %s", r.kind, path),
			Err:    err,
		}
	}

	return r.buildMap(defs)
}

func parseIntentsFile(data []byte) ([]*models.IntentDefinition, error) {
	var doc struct {
		Intents []*models.IntentDefinition `json:"intents"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Intents == nil {
		return nil, errors.New(`missing top-level "intents" array`)
	}
	return doc.Intents, nil
}

func parseComponentsFile(data []byte) ([]*models.ComponentDefinition, error) {
	var doc struct {
		Components map[string]*models.ComponentDefinition `json:"components"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Components == nil {
		return nil, errors.New(`missing top-level "components" object`)
	}

	defs := make([]*models.ComponentDefinition, 0, len(doc.Components))
	for name, def := range doc.Components {
		if def == nil {
			return nil, fmt.Errorf("component %q is null", name)
		}
		if def.Name == "" {
			def.Name = name
		}
		if def.Name != name {
			return nil, fmt.Errorf("component key %q does not match name %q", name, def.Name)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func compileIntentSchema(def *models.IntentDefinition, log logger.Logger) error {
	_, err := schema.Compile(def.Parameters, log)
	return err
}

func compileComponentSchema(def *models.ComponentDefinition, log logger.Logger) error {
	_, err := schema.Compile(def.Props, log)
	return err
}

func componentWarnings(def *models.ComponentDefinition) []string {
	return def.BudgetWarnings()
}

// decodeDefinitions accepts a []T directly or decodes a generic structure
// (e.g. []map[string]any) into definitions.
func decodeDefinitions[T Definition](values any) ([]T, error) {
	if defs, ok := values.([]T); ok {
		return defs, nil
	}

	var defs []T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &defs,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(values); err != nil {
		return nil, err
	}
	return defs, nil
}
