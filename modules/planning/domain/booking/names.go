package booking

import (
	"strconv"
	"strings"
)

// Generic labels the upstream uses when nobody named the assignment.
var placeholderLabels = []string{
	"display",
	"planningpersonell",
	"planning personnel",
}

// IsPlaceholder reports whether name contains one of the known generic upstream labels.
func IsPlaceholder(name string) bool {
	lower := strings.ToLower(name)
	for _, label := range placeholderLabels {
		if strings.Contains(lower, label) {
			return true
		}
	}
	return false
}

// Candidate produces one possible display name; "" means "no answer, try the next one".
type Candidate func() string

// Value is a candidate that always answers s.
func Value(s string) Candidate {
	return func() string { return s }
}

// NonPlaceholder drops s when it is a generic upstream label.
func NonPlaceholder(s string) Candidate {
	return func() string {
		if IsPlaceholder(s) {
			return ""
		}
		return s
	}
}

// FirstName evaluates candidates in priority order and returns the first non-blank answer.
func FirstName(candidates ...Candidate) string {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if v := strings.TrimSpace(c()); v != "" {
			return v
		}
	}
	return ""
}

// SynthesizedProjectName is the last resort of the project-name chain.
func SynthesizedProjectName(projectID int) string {
	if projectID <= 0 {
		return "Project #unknown"
	}
	return "Project #" + strconv.Itoa(projectID)
}

// ProjectNameChain lists, in order: resolved project name, resolved function name,
// the assignment's own display name (unless a placeholder), and a synthesized name.
func ProjectNameChain(projectName, functionName, displayName string, projectID int) []Candidate {
	return []Candidate{
		Value(projectName),
		Value(functionName),
		NonPlaceholder(displayName),
		Value(SynthesizedProjectName(projectID)),
	}
}

// Role defaults to the function name and falls back to the final project name.
func Role(functionName, projectName string) string {
	return FirstName(Value(functionName), Value(projectName))
}
