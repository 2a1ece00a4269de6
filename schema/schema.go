// Package schema compiles declarative object schemas into reusable
// validators. A schema is a small tagged tree of field kinds; compiling it
// once produces a validator that can be applied to any number of inputs.
package schema

import (
	"sort"
)

// Schema describes the expected shape of a value. Top-level schemas handed to
// Compile must declare type "object".
type Schema struct {
	Type        string             `json:"type"                  yaml:"type"                  mapstructure:"type"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Properties  map[string]*Schema `json:"properties,omitempty"  yaml:"properties,omitempty"  mapstructure:"properties"`
	Required    []string           `json:"required,omitempty"    yaml:"required,omitempty"    mapstructure:"required"`

	// String constraints.
	Enum      []string `json:"enum,omitempty"      yaml:"enum,omitempty"      mapstructure:"enum"`
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty" mapstructure:"minLength"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty" mapstructure:"maxLength"`
	Pattern   string   `json:"pattern,omitempty"   yaml:"pattern,omitempty"   mapstructure:"pattern"`

	// Numeric constraints, shared by number and integer kinds.
	Minimum *float64 `json:"minimum,omitempty" yaml:"minimum,omitempty" mapstructure:"minimum"`
	Maximum *float64 `json:"maximum,omitempty" yaml:"maximum,omitempty" mapstructure:"maximum"`

	// Array constraints. Element types are unconstrained.
	MinItems *int `json:"minItems,omitempty" yaml:"minItems,omitempty" mapstructure:"minItems"`
	MaxItems *int `json:"maxItems,omitempty" yaml:"maxItems,omitempty" mapstructure:"maxItems"`
}

// Kind identifies the variant a declared field type compiles to.
type Kind int

const (
	// KindString validates strings with optional enum, length, and pattern rules.
	KindString Kind = iota
	// KindNumber validates numeric values with optional min/max.
	KindNumber
	// KindInteger validates whole numbers with optional min/max.
	KindInteger
	// KindBoolean validates booleans.
	KindBoolean
	// KindArray validates arrays with optional item-count bounds.
	KindArray
	// KindObject validates nested objects, recursing when the nested schema
	// declares its own properties.
	KindObject
	// KindUnknown is the permissive fallback for unrecognized type names.
	// Values pass through unvalidated.
	KindUnknown
)

// kindOf maps a declared type name onto its validator variant.
func kindOf(typeName string) Kind {
	switch typeName {
	case "string":
		return KindString
	case "number":
		return KindNumber
	case "integer":
		return KindInteger
	case "boolean":
		return KindBoolean
	case "array":
		return KindArray
	case "object":
		return KindObject
	default:
		return KindUnknown
	}
}

// IsObject reports whether the schema declares top-level type "object".
func (s *Schema) IsObject() bool {
	return s != nil && s.Type == "object"
}

// HasRequired reports whether the named field appears in this level's own
// required list. Nested required lists never affect the parent level.
func (s *Schema) HasRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// propertyNames returns the declared property names in sorted order so
// validation errors are reported deterministically.
func (s *Schema) propertyNames() []string {
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
