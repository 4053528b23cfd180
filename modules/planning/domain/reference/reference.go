package reference

import (
	"strconv"
	"strings"
)

// Upstream collections referenced by planning records.
const (
	Crew             = "crew"
	Vehicles         = "vehicles"
	Projects         = "projects"
	ProjectFunctions = "projectfunctions"
	Contacts         = "contacts"
	Statuses         = "statuses"
)

// Reference points at an upstream entity, e.g. "/projects/123".
// The zero value is the unresolved reference.
type Reference struct {
	collection string
	id         int
}

// Unresolved is returned for absent or malformed references.
var Unresolved = Reference{}

func New(collection string, id int) Reference {
	if collection == "" || id <= 0 {
		return Unresolved
	}
	return Reference{collection: collection, id: id}
}

// Parse never fails: anything that is not "/<collection>/<positive int>" is Unresolved.
// Trailing segments ("/crew/12/appointments") are rejected.
func Parse(raw string) Reference {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "/") {
		return Unresolved
	}
	parts := strings.Split(strings.TrimPrefix(raw, "/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		return Unresolved
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil || id <= 0 {
		return Unresolved
	}
	return Reference{collection: parts[0], id: id}
}

// ParseIn parses raw and additionally requires the given collection.
func ParseIn(raw, collection string) Reference {
	ref := Parse(raw)
	if ref.collection != collection {
		return Unresolved
	}
	return ref
}

func (r Reference) Collection() string { return r.collection }
func (r Reference) ID() int            { return r.id }
func (r Reference) Resolved() bool     { return r.id > 0 && r.collection != "" }

// Path renders the reference back into its upstream form, "" when unresolved.
func (r Reference) Path() string {
	if !r.Resolved() {
		return ""
	}
	return "/" + r.collection + "/" + strconv.Itoa(r.id)
}

func (r Reference) String() string {
	if !r.Resolved() {
		return "unresolved"
	}
	return r.Path()
}

// IDSet is an insertion-ordered set of entity IDs.
type IDSet struct {
	order []int
	seen  map[int]struct{}
}

func NewIDSet() *IDSet {
	return &IDSet{seen: make(map[int]struct{})}
}

// Add records the ID of a resolved reference and ignores unresolved ones.
func (s *IDSet) Add(ref Reference) {
	if !ref.Resolved() {
		return
	}
	s.AddID(ref.ID())
}

func (s *IDSet) AddID(id int) {
	if id <= 0 {
		return
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *IDSet) Has(id int) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *IDSet) Len() int { return len(s.order) }

// IDs returns the members in insertion order.
func (s *IDSet) IDs() []int {
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}
