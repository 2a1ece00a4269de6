package schema

import (
	"fmt"
	"regexp"

	apperrors "github.com/jonesrussell/north-cloud/intent-resolver/errors"
	"github.com/jonesrussell/north-cloud/intent-resolver/logger"
)

// fieldValidator checks one field value and returns the coerced value plus
// any violations. Validators never stop at the first violation.
type fieldValidator func(path string, value any) (any, []apperrors.FieldError)

// Validator is a compiled schema, reusable across inputs.
type Validator struct {
	schema *Schema
	// names holds the declared property names in sorted order.
	names  []string
	fields map[string]fieldValidator
}

// Compile builds a Validator from an object schema. It fails when the schema
// is missing, does not declare type "object", or carries an invalid pattern.
// Fields with an unrecognized type compile to a permissive pass-through and
// log a warning instead of failing closed.
func Compile(s *Schema, log logger.Logger) (*Validator, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if s == nil {
		return nil, fmt.Errorf("schema is required")
	}
	if !s.IsObject() {
		return nil, fmt.Errorf("schema top-level type must be %q, got %q", "object", s.Type)
	}

	v := &Validator{
		schema: s,
		names:  s.propertyNames(),
		fields: make(map[string]fieldValidator, len(s.Properties)),
	}

	for _, name := range v.names {
		fv, err := compileField(name, s.Properties[name], log)
		if err != nil {
			return nil, err
		}
		v.fields[name] = fv
	}

	return v, nil
}

// Validate applies the compiled schema to an input map. It returns the
// coerced value tree and the ordered list of violations. The two are mutually
// exclusive: a non-empty error list means the returned map is nil.
func (v *Validator) Validate(input map[string]any) (map[string]any, []apperrors.FieldError) {
	var errs []apperrors.FieldError
	out := make(map[string]any, len(input))

	for _, name := range v.names {
		value, present := input[name]
		if !present {
			if v.schema.HasRequired(name) {
				errs = append(errs, apperrors.FieldError{
					Path:    name,
					Message: "required field is missing",
				})
			}
			continue
		}

		coerced, fieldErrs := v.fields[name](name, value)
		if len(fieldErrs) > 0 {
			errs = append(errs, fieldErrs...)
			continue
		}
		out[name] = coerced
	}

	// Undeclared fields pass through untouched.
	for name, value := range input {
		if _, declared := v.fields[name]; !declared {
			out[name] = value
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func compileField(name string, s *Schema, log logger.Logger) (fieldValidator, error) {
	if s == nil {
		return passThrough, nil
	}

	switch kindOf(s.Type) {
	case KindString:
		return compileString(s)
	case KindNumber:
		return compileNumber(s, false), nil
	case KindInteger:
		return compileNumber(s, true), nil
	case KindBoolean:
		return validateBoolean, nil
	case KindArray:
		return compileArray(s), nil
	case KindObject:
		return compileObject(s, log)
	default:
		// Permissive fallback, not an accidental default: unrecognized type
		// names degrade to a pass-through so new schema vocabulary added
		// upstream does not break older deployments.
		log.Warn("unrecognized schema type, treating field as unvalidated",
			logger.String("field", name),
			logger.String("type", s.Type))
		return passThrough, nil
	}
}

func passThrough(_ string, value any) (any, []apperrors.FieldError) {
	return value, nil
}

func compileString(s *Schema) (fieldValidator, error) {
	var pattern *regexp.Regexp
	if s.Pattern != "" {
		var err error
		pattern, err = regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", s.Pattern, err)
		}
	}

	return func(path string, value any) (any, []apperrors.FieldError) {
		str, ok := value.(string)
		if !ok {
			return nil, []apperrors.FieldError{{
				Path:    path,
				Message: fmt.Sprintf("expected string, got %T", value),
			}}
		}

		var errs []apperrors.FieldError
		if len(s.Enum) > 0 && !containsString(s.Enum, str) {
			errs = append(errs, apperrors.FieldError{
				Path:    path,
				Message: fmt.Sprintf("value %q is not one of %v", str, s.Enum),
			})
		}
		if s.MinLength != nil && len(str) < *s.MinLength {
			errs = append(errs, apperrors.FieldError{
				Path:    path,
				Message: fmt.Sprintf("length %d is below minimum %d", len(str), *s.MinLength),
			})
		}
		if s.MaxLength != nil && len(str) > *s.MaxLength {
			errs = append(errs, apperrors.FieldError{
				Path:    path,
				Message: fmt.Sprintf("length %d exceeds maximum %d", len(str), *s.MaxLength),
			})
		}
		if pattern != nil && !pattern.MatchString(str) {
			errs = append(errs, apperrors.FieldError{
				Path:    path,
				Message: fmt.Sprintf("value does not match pattern %q", s.Pattern),
			})
		}
		return str, errs
	}, nil
}

func compileNumber(s *Schema, wholeOnly bool) fieldValidator {
	return func(path string, value any) (any, []apperrors.FieldError) {
		num, ok := toFloat64(value)
		if !ok {
			return nil, []apperrors.FieldError{{
				Path:    path,
				Message: fmt.Sprintf("expected number, got %T", value),
			}}
		}

		var errs []apperrors.FieldError
		if wholeOnly && num != float64(int64(num)) {
			errs = append(errs, apperrors.FieldError{
				Path:    path,
				Message: fmt.Sprintf("expected integer, got %v", num),
			})
		}
		if s.Minimum != nil && num < *s.Minimum {
			errs = append(errs, apperrors.FieldError{
				Path:    path,
				Message: fmt.Sprintf("value %v is below minimum %v", num, *s.Minimum),
			})
		}
		if s.Maximum != nil && num > *s.Maximum {
			errs = append(errs, apperrors.FieldError{
				Path:    path,
				Message: fmt.Sprintf("value %v exceeds maximum %v", num, *s.Maximum),
			})
		}
		if len(errs) > 0 {
			return nil, errs
		}

		if wholeOnly {
			return int64(num), nil
		}
		return num, nil
	}
}

func validateBoolean(path string, value any) (any, []apperrors.FieldError) {
	b, ok := value.(bool)
	if !ok {
		return nil, []apperrors.FieldError{{
			Path:    path,
			Message: fmt.Sprintf("expected boolean, got %T", value),
		}}
	}
	return b, nil
}

func compileArray(s *Schema) fieldValidator {
	return func(path string, value any) (any, []apperrors.FieldError) {
		arr, ok := value.([]any)
		if !ok {
			return nil, []apperrors.FieldError{{
				Path:    path,
				Message: fmt.Sprintf("expected array, got %T", value),
			}}
		}

		var errs []apperrors.FieldError
		if s.MinItems != nil && len(arr) < *s.MinItems {
			errs = append(errs, apperrors.FieldError{
				Path:    path,
				Message: fmt.Sprintf("item count %d is below minimum %d", len(arr), *s.MinItems),
			})
		}
		if s.MaxItems != nil && len(arr) > *s.MaxItems {
			errs = append(errs, apperrors.FieldError{
				Path:    path,
				Message: fmt.Sprintf("item count %d exceeds maximum %d", len(arr), *s.MaxItems),
			})
		}
		return arr, errs
	}
}

func compileObject(s *Schema, log logger.Logger) (fieldValidator, error) {
	// Without declared properties the field is an open pass-through map.
	if len(s.Properties) == 0 {
		return func(path string, value any) (any, []apperrors.FieldError) {
			m, ok := value.(map[string]any)
			if !ok {
				return nil, []apperrors.FieldError{{
					Path:    path,
					Message: fmt.Sprintf("expected object, got %T", value),
				}}
			}
			return m, nil
		}, nil
	}

	nested, err := Compile(&Schema{
		Type:       "object",
		Properties: s.Properties,
		Required:   s.Required,
	}, log)
	if err != nil {
		return nil, err
	}

	return func(path string, value any) (any, []apperrors.FieldError) {
		m, ok := value.(map[string]any)
		if !ok {
			return nil, []apperrors.FieldError{{
				Path:    path,
				Message: fmt.Sprintf("expected object, got %T", value),
			}}
		}

		coerced, nestedErrs := nested.Validate(m)
		if len(nestedErrs) > 0 {
			prefixed := make([]apperrors.FieldError, len(nestedErrs))
			for i, fe := range nestedErrs {
				prefixed[i] = apperrors.FieldError{
					Path:    path + "." + fe.Path,
					Message: fe.Message,
				}
			}
			return nil, prefixed
		}
		return coerced, nil
	}, nil
}

func toFloat64(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
