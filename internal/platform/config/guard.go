package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// Guard validates the process environment against a policy, exactly once,
// before any listener binds. A failed guard halts the process: the service
// must never serve traffic with missing or weak secrets.
type Guard struct {
	policy []Rule
}

// Report is the outcome of one guard run. Errors are fatal; Warnings are
// logged and ignored.
type Report struct {
	Valid    bool
	Errors   []string
	Warnings []string

	policy   []Rule
	resolved map[string]string
}

func NewGuard(policy []Rule) *Guard {
	return &Guard{policy: policy}
}

// Validate checks environ against the policy. It is pure over its input:
// defaults are applied to the returned report's view, never written back
// to the process environment.
func (g *Guard) Validate(environ map[string]string) *Report {
	report := &Report{
		policy:   g.policy,
		resolved: make(map[string]string, len(g.policy)),
	}

	for _, rule := range g.policy {
		value, present := environ[rule.Name]

		if !present || value == "" {
			if rule.Required {
				report.Errors = append(report.Errors, fmt.Sprintf("%s is required (%s)", rule.Name, rule.Purpose))
				continue
			}
			report.resolved[rule.Name] = rule.Default
			continue
		}
		report.resolved[rule.Name] = value

		if rule.MinLength > 0 && len(value) < rule.MinLength {
			report.Errors = append(report.Errors,
				fmt.Sprintf("%s must be at least %d characters, got %d", rule.Name, rule.MinLength, len(value)))
			continue
		}
		if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
			report.Errors = append(report.Errors,
				fmt.Sprintf("%s does not match expected format %s", rule.Name, rule.Pattern))
			continue
		}
		if len(rule.Enum) > 0 && !slices.Contains(rule.Enum, value) {
			report.Errors = append(report.Errors,
				fmt.Sprintf("%s must be one of [%s]", rule.Name, strings.Join(rule.Enum, ", ")))
			continue
		}
		if rule.Sensitive && WeakSecret(value) {
			report.Errors = append(report.Errors,
				fmt.Sprintf("%s looks like a weak or placeholder value; generate a real one, e.g. %s", rule.Name, SuggestSecret()))
			continue
		}
	}

	if isProduction(environ) {
		report.Warnings = append(report.Warnings, g.productionWarnings(report.resolved)...)
	}

	report.Valid = len(report.Errors) == 0
	return report
}

// productionWarnings flags URL variables that still point at development
// hosts. Warnings only: a staging setup behind a tunnel is legitimate.
func (g *Guard) productionWarnings(resolved map[string]string) []string {
	var warnings []string
	for _, rule := range g.policy {
		if !rule.URL {
			continue
		}
		value := resolved[rule.Name]
		if value != "" && devHost(value) {
			warnings = append(warnings, fmt.Sprintf("%s points at a development host in production: %s", rule.Name, value))
		}
	}
	return warnings
}

func devHost(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, marker := range []string{"localhost", "127.0.0.1", ".local", ".test"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func isProduction(environ map[string]string) bool {
	return environ["APP_ENV"] == "production"
}

// MaskForDisplay renders a variable for the boot report: "[not set]" when
// absent, the full value for non-sensitive variables, a masked form
// otherwise. Display only, never a security decision.
func (r *Report) MaskForDisplay(name string) string {
	value := r.resolved[name]
	if value == "" {
		return "[not set]"
	}

	for _, rule := range r.policy {
		if rule.Name == name && rule.Sensitive {
			return maskValue(value)
		}
	}
	return value
}

func maskValue(value string) string {
	if len(value) < 8 {
		return "****"
	}
	return value[:2] + "…" + value[len(value)-2:]
}

// ValidateOrExit runs the guard against the real environment, logs the
// redacted report, and terminates with exit code 1 on any error. Called
// once from main, strictly before the listener binds.
func (g *Guard) ValidateOrExit() *Report {
	environ := environMap()
	report := g.Validate(environ)

	for _, rule := range g.policy {
		slog.Info("config", "name", rule.Name, "value", report.MaskForDisplay(rule.Name))
	}
	for _, warning := range report.Warnings {
		slog.Warn("config warning", "detail", warning)
	}

	if !report.Valid {
		for _, msg := range report.Errors {
			slog.Error("config error", "detail", msg)
		}
		slog.Error("refusing to start with invalid configuration", "errors", len(report.Errors))
		os.Exit(1)
	}

	return report
}

func environMap() map[string]string {
	environ := make(map[string]string)
	for _, kv := range os.Environ() {
		if name, value, ok := strings.Cut(kv, "="); ok {
			environ[name] = value
		}
	}
	return environ
}
