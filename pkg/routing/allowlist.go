// Package routing classifies request paths by exposure, from config/routing/allowlist.yaml.
package routing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const allowlistRelPath = "config/routing/allowlist.yaml"

type RouteClass string

const (
	RouteClassPublicAPI RouteClass = "public_api"
	RouteClassAdmin     RouteClass = "admin"
	RouteClassOps       RouteClass = "ops"
	RouteClassOther     RouteClass = "other"
)

func (c RouteClass) Valid() bool {
	switch c {
	case RouteClassPublicAPI, RouteClassAdmin, RouteClassOps, RouteClassOther:
		return true
	}
	return false
}

// Guarded reports whether the ops guard protects routes of this class.
func (c RouteClass) Guarded() bool {
	return c == RouteClassAdmin || c == RouteClassOps
}

var ErrAllowlistNotFound = errors.New("routing allowlist not found")

type AllowlistRule struct {
	Prefix string     `yaml:"prefix"`
	Class  RouteClass `yaml:"class"`
}

func (r AllowlistRule) validate() error {
	switch {
	case r.Prefix == "":
		return errors.New("empty prefix")
	case !strings.HasPrefix(r.Prefix, "/"):
		return fmt.Errorf("prefix must start with '/': %q", r.Prefix)
	case !r.Class.Valid():
		return fmt.Errorf("unknown class: %q", r.Class)
	}
	return nil
}

// DefaultRules mirror config/routing/allowlist.yaml for binaries started outside the
// repository.
func DefaultRules() []AllowlistRule {
	return []AllowlistRule{
		{Prefix: "/api/health", Class: RouteClassPublicAPI},
		{Prefix: "/api", Class: RouteClassPublicAPI},
		{Prefix: "/api/subprojects", Class: RouteClassPublicAPI},
		{Prefix: "/api/cache", Class: RouteClassAdmin},
		{Prefix: "/api/warmup", Class: RouteClassAdmin},
		{Prefix: "/debug/prometheus", Class: RouteClassOps},
	}
}

// DefaultAllowlistPath honours ROUTING_ALLOWLIST_PATH, then looks for the file under
// the nearest directory holding a go.mod.
func DefaultAllowlistPath() string {
	if p := strings.TrimSpace(os.Getenv("ROUTING_ALLOWLIST_PATH")); p != "" {
		return p
	}
	if wd, err := os.Getwd(); err == nil {
		for dir := wd; ; dir = filepath.Dir(dir) {
			if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
				candidate := filepath.Join(dir, filepath.FromSlash(allowlistRelPath))
				if _, err := os.Stat(candidate); err == nil {
					return candidate
				}
				break
			}
			if filepath.Dir(dir) == dir {
				break
			}
		}
	}
	return filepath.FromSlash(allowlistRelPath)
}

// RulesFor loads the allowlist of entrypoint, falling back to DefaultRules when no
// allowlist file exists. Malformed files are still an error.
func RulesFor(path, entrypoint string) ([]AllowlistRule, error) {
	rules, err := LoadAllowlist(path, entrypoint)
	if errors.Is(err, ErrAllowlistNotFound) {
		return DefaultRules(), nil
	}
	return rules, err
}

// LoadAllowlist reads the rules of entrypoint ("server" when empty) from path, or from
// DefaultAllowlistPath when path is empty.
func LoadAllowlist(path, entrypoint string) ([]AllowlistRule, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultAllowlistPath()
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrAllowlistNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	return parseAllowlist(raw, entrypoint)
}

func parseAllowlist(raw []byte, entrypoint string) ([]AllowlistRule, error) {
	var doc struct {
		Version     int                        `yaml:"version"`
		Entrypoints map[string][]AllowlistRule `yaml:"entrypoints"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse allowlist: %w", err)
	}
	if doc.Version != 1 {
		return nil, fmt.Errorf("unsupported allowlist version: %d", doc.Version)
	}

	if entrypoint = strings.TrimSpace(entrypoint); entrypoint == "" {
		entrypoint = "server"
	}
	rules, ok := doc.Entrypoints[entrypoint]
	if !ok {
		return nil, fmt.Errorf("entrypoint %q not found in allowlist", entrypoint)
	}
	for i := range rules {
		rules[i].Prefix = strings.TrimSpace(rules[i].Prefix)
		if err := rules[i].validate(); err != nil {
			return nil, fmt.Errorf("allowlist rule[%d]: %w", i, err)
		}
	}
	return rules, nil
}
