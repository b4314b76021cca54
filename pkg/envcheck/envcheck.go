// Package envcheck validates deployment environment variables against a
// YAML schema: required variables per environment, recommended variables,
// length and pattern rules, weak secret values and secrets leaked through
// public (browser-exposed) variables.
package envcheck

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed schema.yaml
var defaultSchema []byte

// DefaultEnvironment is used when the requested environment is unknown.
const DefaultEnvironment = "development"

// Rule constrains one variable's value.
type Rule struct {
	MinLength   int    `yaml:"min_length"`
	Pattern     string `yaml:"pattern"`
	Description string `yaml:"description"`

	re *regexp.Regexp
}

// Environment lists the variables one deployment target needs.
type Environment struct {
	Required []string `yaml:"required"`
}

// Schema is the parsed YAML document.
type Schema struct {
	Environments         map[string]Environment `yaml:"environments"`
	Recommended          []string               `yaml:"recommended"`
	Rules                map[string]*Rule       `yaml:"rules"`
	WeakValues           []string               `yaml:"weak_values"`
	PublicPrefix         string                 `yaml:"public_prefix"`
	PublicAllowedMarkers []string               `yaml:"public_allowed_markers"`
}

// ParseSchema decodes and compiles a schema.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse env schema: %w", err)
	}
	if _, ok := s.Environments[DefaultEnvironment]; !ok {
		return nil, fmt.Errorf("env schema must define the %q environment", DefaultEnvironment)
	}

	for name, rule := range s.Rules {
		if rule == nil {
			return nil, fmt.Errorf("rule %s is empty", name)
		}
		if rule.Pattern == "" {
			continue
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: invalid pattern: %w", name, err)
		}
		rule.re = re
	}
	return &s, nil
}

// DefaultSchema returns the embedded schema.
func DefaultSchema() *Schema {
	s, err := ParseSchema(defaultSchema)
	if err != nil {
		panic(err)
	}
	return s
}

// LoadVars merges environ with the given dotenv files. Later files override
// earlier ones and files override environ. Missing files are skipped.
func LoadVars(environ []string, files ...string) (map[string]string, []string, error) {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	var loaded []string
	for _, f := range files {
		fileVars, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
		loaded = append(loaded, f)
	}
	return vars, loaded, nil
}

// Report is the outcome of Check.
type Report struct {
	Environment        string
	Missing            []string
	Invalid            []string
	SecurityIssues     []string
	MissingRecommended []string
	Valid              []string
}

// OK is false when any required variable is missing or invalid, or a security issue was found.
func (r Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Invalid) == 0 && len(r.SecurityIssues) == 0
}

// Check validates vars for environment.
func (s *Schema) Check(environment string, vars map[string]string) Report {
	env, ok := s.Environments[environment]
	if !ok {
		environment = DefaultEnvironment
		env = s.Environments[DefaultEnvironment]
	}
	r := Report{Environment: environment}

	for _, name := range env.Required {
		value := vars[name]
		if value == "" {
			r.Missing = append(r.Missing, name)
			continue
		}
		if msg, bad := s.violates(name, value); bad {
			r.Invalid = append(r.Invalid, fmt.Sprintf("%s: %s", name, msg))
			continue
		}
		r.Valid = append(r.Valid, name)
	}

	for _, name := range s.Recommended {
		if vars[name] == "" {
			r.MissingRecommended = append(r.MissingRecommended, name)
		}
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		lower := strings.ToLower(key)
		value := strings.ToLower(vars[key])

		if strings.Contains(lower, "secret") || strings.Contains(lower, "password") {
			if slices.ContainsFunc(s.WeakValues, func(w string) bool { return strings.Contains(value, w) }) {
				r.SecurityIssues = append(r.SecurityIssues, key+" appears to contain a weak value")
			}
		}

		if s.PublicPrefix != "" && strings.HasPrefix(key, s.PublicPrefix) &&
			(strings.Contains(lower, "secret") || strings.Contains(lower, "key")) &&
			!slices.ContainsFunc(s.PublicAllowedMarkers, func(m string) bool { return strings.Contains(key, m) }) {
			r.SecurityIssues = append(r.SecurityIssues, key+" appears to expose a secret in a public variable")
		}
	}

	return r
}

func (s *Schema) violates(name, value string) (string, bool) {
	rule, ok := s.Rules[name]
	if !ok {
		return "", false
	}
	if rule.MinLength > 0 && len(value) < rule.MinLength {
		return rule.Description, true
	}
	if rule.re != nil && !rule.re.MatchString(value) {
		return rule.Description, true
	}
	return "", false
}
