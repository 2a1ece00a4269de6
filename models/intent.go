// Package models defines the definition and content types shared by the
// registries, the resolver, and the content aggregation engine.
package models

import (
	"errors"
	"fmt"

	"github.com/jonesrussell/north-cloud/intent-resolver/schema"
)

// IntentDefinition is a named, versioned request type with a declared
// parameter schema and a target component.
type IntentDefinition struct {
	Name        string         `json:"name"                 yaml:"name"                 mapstructure:"name"`
	Description string         `json:"description"          yaml:"description"          mapstructure:"description"`
	Parameters  *schema.Schema `json:"parameters"           yaml:"parameters"           mapstructure:"parameters"`
	Component   string         `json:"component"            yaml:"component"            mapstructure:"component"`
	Version     string         `json:"version"              yaml:"version"              mapstructure:"version"`
	Crawlable   bool           `json:"crawlable,omitempty"  yaml:"crawlable,omitempty"  mapstructure:"crawlable"`
	Deprecated  bool           `json:"deprecated,omitempty" yaml:"deprecated,omitempty" mapstructure:"deprecated"`
}

// DefinitionName returns the unique registry key.
func (d *IntentDefinition) DefinitionName() string {
	return d.Name
}

// Validate checks the structural invariants of an intent definition.
func (d *IntentDefinition) Validate() error {
	if d.Name == "" {
		return errors.New("name is required")
	}
	if d.Description == "" {
		return errors.New("description is required")
	}
	if d.Component == "" {
		return errors.New("component is required")
	}
	if d.Version == "" {
		return errors.New("version is required")
	}
	if d.Parameters == nil {
		return errors.New("parameters schema is required")
	}
	if !d.Parameters.IsObject() {
		return fmt.Errorf("parameters schema top-level type must be %q, got %q",
			"object", d.Parameters.Type)
	}
	return nil
}

// ParameterSchema returns the schema validated parameters are checked against.
func (d *IntentDefinition) ParameterSchema() *schema.Schema {
	return d.Parameters
}
