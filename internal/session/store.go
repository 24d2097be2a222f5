// Package session owns the per-browser state: the current meeting collection
// and the operator's annotations on it. Nothing here outlives the session.
package session

import (
	"sync"

	"github.com/gavelak/gavel-exporter/internal/models"
)

// Store holds one session's meeting collection and annotations. The two are
// replaced as a unit on every successful fetch so stale annotations can never
// leak into an export.
type Store struct {
	mu          sync.RWMutex
	meetings    []models.Meeting
	rangeLabel  string
	annotations map[string]models.Annotation
}

// Update is a partial annotation change; nil fields are left untouched.
type Update struct {
	Selected       *bool
	Encoder        *string
	RuntimeMinutes *int
}

// NewStore builds an empty session store.
func NewStore() *Store {
	return &Store{annotations: make(map[string]models.Annotation)}
}

// ReplaceMeetings swaps in a freshly fetched collection and discards every
// prior annotation in the same critical section. rangeLabel describes the
// fetched window (used for export filenames).
func (s *Store) ReplaceMeetings(meetings []models.Meeting, rangeLabel string) {
	copied := make([]models.Meeting, len(meetings))
	copy(copied, meetings)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.meetings = copied
	s.rangeLabel = rangeLabel
	s.annotations = make(map[string]models.Annotation)
}

// RangeLabel returns the label of the window the current collection came from.
func (s *Store) RangeLabel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rangeLabel
}

// Meetings returns a snapshot of the current collection in fetch order.
func (s *Store) Meetings() []models.Meeting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Meeting, len(s.meetings))
	copy(out, s.meetings)
	return out
}

// SetAnnotation merges a partial update into the annotation for meetingID,
// creating a default one when none exists yet. The store does not validate
// encoder names; that is the export engine's job at render time.
func (s *Store) SetAnnotation(meetingID string, upd Update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.annotations[meetingID]
	if upd.Selected != nil {
		a.Selected = *upd.Selected
	}
	if upd.Encoder != nil {
		a.Encoder = *upd.Encoder
	}
	if upd.RuntimeMinutes != nil {
		a.RuntimeMinutes = *upd.RuntimeMinutes
	}
	s.annotations[meetingID] = a
}

// Annotation returns the current annotation for meetingID, or the default
// (unselected, no encoder, zero runtime) when none was ever set.
func (s *Store) Annotation(meetingID string) models.Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.annotations[meetingID]
}

// Annotations returns a copy of every annotation keyed by meeting ID.
func (s *Store) Annotations() map[string]models.Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.Annotation, len(s.annotations))
	for id, a := range s.annotations {
		out[id] = a
	}
	return out
}

// ClearAnnotations drops all annotations but keeps the meeting collection.
func (s *Store) ClearAnnotations() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations = make(map[string]models.Annotation)
}
