package services

import (
	"sort"
	"sync"
)

// Failure records one upstream lookup that could not be completed. Failures degrade
// results; they are never returned as errors.
type Failure struct {
	Collection string `json:"collection"`
	ID         int    `json:"id,omitempty"`
	SubjectID  int    `json:"subjectId,omitempty"`
	Error      string `json:"error"`
}

type Diagnostics struct {
	mu       sync.Mutex
	failures []Failure
}

func (d *Diagnostics) Add(f Failure) {
	d.mu.Lock()
	d.failures = append(d.failures, f)
	d.mu.Unlock()
}

func (d *Diagnostics) Merge(fs []Failure) {
	d.mu.Lock()
	d.failures = append(d.failures, fs...)
	d.mu.Unlock()
}

// Failures returns a copy ordered by collection, subject and id.
func (d *Diagnostics) Failures() []Failure {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := append([]Failure(nil), d.failures...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Collection != out[j].Collection {
			return out[i].Collection < out[j].Collection
		}
		if out[i].SubjectID != out[j].SubjectID {
			return out[i].SubjectID < out[j].SubjectID
		}
		return out[i].ID < out[j].ID
	})
	return out
}
