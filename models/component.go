package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jonesrussell/north-cloud/intent-resolver/schema"
)

// Security policy defaults applied when a component omits its policy.
const (
	DefaultMaxBundleSize = "200KB"
)

// Performance budget ceilings. Exceeding them is a warning, not an error.
const (
	DefaultBundleSizeGzipped = "200KB"
	DefaultTimeToInteractive = "1500ms"
)

// cspAllowedDirectives is the closed set of content-security-policy directive
// names a component may declare.
var cspAllowedDirectives = map[string]bool{
	"default-src": true,
	"script-src":  true,
	"style-src":   true,
	"img-src":     true,
	"connect-src": true,
	"font-src":    true,
	"frame-src":   true,
	"media-src":   true,
	"object-src":  true,
	"worker-src":  true,
}

// SecurityPolicy controls how a component's remote module may be executed.
type SecurityPolicy struct {
	AllowEval     bool   `json:"allowEval"     yaml:"allowEval"     mapstructure:"allowEval"`
	Sandboxed     bool   `json:"sandboxed"     yaml:"sandboxed"     mapstructure:"sandboxed"`
	MaxBundleSize string `json:"maxBundleSize" yaml:"maxBundleSize" mapstructure:"maxBundleSize"`
}

// DefaultSecurityPolicy is the deny-leaning policy used when a component
// declares none.
func DefaultSecurityPolicy() *SecurityPolicy {
	return &SecurityPolicy{
		AllowEval:     false,
		Sandboxed:     true,
		MaxBundleSize: DefaultMaxBundleSize,
	}
}

// PerformanceBudget declares the component's size and interactivity budget.
// Values carry unit suffixes, e.g. "45KB" and "800ms".
type PerformanceBudget struct {
	BundleSizeGzipped string `json:"bundleSizeGzipped,omitempty" yaml:"bundleSizeGzipped,omitempty" mapstructure:"bundleSizeGzipped"`
	TimeToInteractive string `json:"timeToInteractive,omitempty" yaml:"timeToInteractive,omitempty" mapstructure:"timeToInteractive"`
}

// ComponentDefinition is a named, versioned descriptor of a remote UI module.
type ComponentDefinition struct {
	Name           string              `json:"name"                      yaml:"name"                      mapstructure:"name"`
	Framework      string              `json:"framework"                 yaml:"framework"                 mapstructure:"framework"`
	ModuleURL      string              `json:"moduleUrl"                 yaml:"moduleUrl"                 mapstructure:"moduleUrl"`
	ExportName     string              `json:"exportName"                yaml:"exportName"                mapstructure:"exportName"`
	Props          *schema.Schema      `json:"props"                     yaml:"props"                     mapstructure:"props"`
	Version        string              `json:"version"                   yaml:"version"                   mapstructure:"version"`
	AllowedOrigins []string            `json:"allowedOrigins"            yaml:"allowedOrigins"            mapstructure:"allowedOrigins"`
	Security       *SecurityPolicy     `json:"security,omitempty"        yaml:"security,omitempty"        mapstructure:"security"`
	Performance    *PerformanceBudget  `json:"performance,omitempty"     yaml:"performance,omitempty"     mapstructure:"performance"`
	CSP            map[string][]string `json:"csp,omitempty"             yaml:"csp,omitempty"             mapstructure:"csp"`
	Deprecated     bool                `json:"deprecated,omitempty"      yaml:"deprecated,omitempty"      mapstructure:"deprecated"`
}

// DefinitionName returns the unique registry key.
func (d *ComponentDefinition) DefinitionName() string {
	return d.Name
}

// Validate checks the structural invariants of a component definition and
// applies the default security policy when none is declared. AllowedOrigins
// stays empty (deny) when absent.
func (d *ComponentDefinition) Validate() error {
	if d.Name == "" {
		return errors.New("name is required")
	}
	if d.Framework == "" {
		return errors.New("framework is required")
	}
	if d.ExportName == "" {
		return errors.New("exportName is required")
	}
	if d.Version == "" {
		return errors.New("version is required")
	}
	if d.ModuleURL == "" {
		return errors.New("moduleUrl is required")
	}
	if _, err := url.ParseRequestURI(d.ModuleURL); err != nil {
		return fmt.Errorf("moduleUrl is not a valid URL: %w", err)
	}
	if d.Props == nil {
		return errors.New("props schema is required")
	}
	if !d.Props.IsObject() {
		return fmt.Errorf("props schema top-level type must be %q, got %q",
			"object", d.Props.Type)
	}
	if err := d.validateCSP(); err != nil {
		return err
	}
	if d.Performance != nil {
		if err := d.validateBudget(); err != nil {
			return err
		}
	}

	if d.AllowedOrigins == nil {
		d.AllowedOrigins = []string{}
	}
	if d.Security == nil {
		d.Security = DefaultSecurityPolicy()
	}
	return nil
}

func (d *ComponentDefinition) validateCSP() error {
	for directive, sources := range d.CSP {
		if !cspAllowedDirectives[directive] {
			return fmt.Errorf("csp directive %q is not allowed", directive)
		}
		if directive == "script-src" {
			for _, src := range sources {
				if strings.Trim(src, "'") == "unsafe-eval" {
					return errors.New("csp script-src must not include unsafe-eval")
				}
			}
		}
	}
	return nil
}

func (d *ComponentDefinition) validateBudget() error {
	if d.Performance.BundleSizeGzipped != "" {
		if _, err := ParseSize(d.Performance.BundleSizeGzipped); err != nil {
			return fmt.Errorf("performance.bundleSizeGzipped: %w", err)
		}
	}
	if d.Performance.TimeToInteractive != "" {
		if _, err := ParseMillis(d.Performance.TimeToInteractive); err != nil {
			return fmt.Errorf("performance.timeToInteractive: %w", err)
		}
	}
	return nil
}

// BudgetWarnings returns human-readable warnings for budget values exceeding
// the default ceilings. Exceeding a budget never fails validation.
func (d *ComponentDefinition) BudgetWarnings() []string {
	if d.Performance == nil {
		return nil
	}

	var warnings []string
	if d.Performance.BundleSizeGzipped != "" {
		size, err := ParseSize(d.Performance.BundleSizeGzipped)
		limit, _ := ParseSize(DefaultBundleSizeGzipped)
		if err == nil && size > limit {
			warnings = append(warnings, fmt.Sprintf(
				"bundle size %s exceeds budget %s",
				d.Performance.BundleSizeGzipped, DefaultBundleSizeGzipped))
		}
	}
	if d.Performance.TimeToInteractive != "" {
		tti, err := ParseMillis(d.Performance.TimeToInteractive)
		limit, _ := ParseMillis(DefaultTimeToInteractive)
		if err == nil && tti > limit {
			warnings = append(warnings, fmt.Sprintf(
				"time to interactive %s exceeds budget %s",
				d.Performance.TimeToInteractive, DefaultTimeToInteractive))
		}
	}
	return warnings
}

// BundleSizeBytes returns the declared gzipped bundle size in bytes, or zero
// when the component declares no budget or the value does not parse.
func (d *ComponentDefinition) BundleSizeBytes() uint64 {
	if d.Performance == nil || d.Performance.BundleSizeGzipped == "" {
		return 0
	}
	size, err := ParseSize(d.Performance.BundleSizeGzipped)
	if err != nil {
		return 0
	}
	return size
}

// PropsSchema returns the schema component props are checked against.
func (d *ComponentDefinition) PropsSchema() *schema.Schema {
	return d.Props
}
