package routing

import (
	"slices"
	"strings"
)

// Classifier maps request paths to route classes; the longest matching prefix wins.
type Classifier struct {
	rules []AllowlistRule
}

func NewClassifier(rules []AllowlistRule) *Classifier {
	sorted := make([]AllowlistRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Prefix = strings.TrimSpace(rule.Prefix); rule.Prefix != "" {
			sorted = append(sorted, rule)
		}
	}
	slices.SortStableFunc(sorted, func(a, b AllowlistRule) int {
		return len(b.Prefix) - len(a.Prefix)
	})
	return &Classifier{rules: sorted}
}

// MatchAllowlist returns the class of the longest rule covering path.
func (c *Classifier) MatchAllowlist(path string) (RouteClass, bool) {
	for _, rule := range c.rules {
		if HasPathPrefixOnBoundary(path, rule.Prefix) {
			return rule.Class, true
		}
	}
	return "", false
}

// ClassifyPath falls back to public_api under /api and to other elsewhere.
func (c *Classifier) ClassifyPath(path string) RouteClass {
	if class, ok := c.MatchAllowlist(path); ok {
		return class
	}
	if HasPathPrefixOnBoundary(path, "/api") {
		return RouteClassPublicAPI
	}
	return RouteClassOther
}

// IsAPI reports whether errors on path are answered with JSON envelopes.
func (c *Classifier) IsAPI(path string) bool {
	class := c.ClassifyPath(path)
	return class == RouteClassPublicAPI || class == RouteClassAdmin
}

// HasPathPrefixOnBoundary matches prefix only at a segment boundary: /api/cache covers
// /api/cache/prune but not /api/cachefoo.
func HasPathPrefixOnBoundary(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	return path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/")
}
