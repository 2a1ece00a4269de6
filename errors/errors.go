// Package errors provides the shared error kinds raised by the intent
// resolver core. Callers map these onto transport-level responses:
// NotFoundError is 404-equivalent, ValidationError and PropsValidationError
// are 400-equivalent, and ConfigurationError is fatal to registry
// construction or reload.
package errors

import (
	"fmt"
	"strings"
)

// FieldError describes a single schema violation at a dotted field path.
type FieldError struct {
	// Path is the dotted path to the offending field, e.g. "address.city".
	Path string
	// Message describes the violation.
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ConfigurationError indicates a bad or missing definition file, or a
// definition that failed validation at load time. It always names the
// offending definition when one is known.
type ConfigurationError struct {
	// Definition is the name of the offending definition, if known.
	Definition string
	// Reason describes what was wrong.
	Reason string
	// Err is the underlying error, if any.
	Err error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	if e.Definition != "" {
		fmt.Fprintf(&b, " in definition %q", e.Definition)
	}
	if e.Reason != "" {
		b.WriteString(": " + e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NotFoundError indicates an unknown intent, component, or source name.
type NotFoundError struct {
	// Kind is the definition kind, e.g. "intent" or "component".
	Kind string
	// Name is the looked-up name.
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}

// ValidationError carries the ordered list of per-field schema violations
// found while validating intent parameters.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return "parameter validation failed: " + joinFields(e.Fields)
}

// PropsValidationError carries schema violations found while validating
// component props. Kept distinct from ValidationError so callers can tell
// parameter failures from props failures.
type PropsValidationError struct {
	// Component is the component whose props failed validation.
	Component string
	Fields    []FieldError
}

func (e *PropsValidationError) Error() string {
	return fmt.Sprintf("props validation failed for component %q: %s",
		e.Component, joinFields(e.Fields))
}

// SourceError wraps a failure from a content source handler. It is logged and
// absorbed inside aggregation, never surfaced to the caller.
type SourceError struct {
	// Source is the failing source name.
	Source string
	// Err is the handler failure.
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %q failed: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func joinFields(fields []FieldError) string {
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f.Error())
	}
	return strings.Join(msgs, "; ")
}
