package models

import "time"

// Meeting is the canonical record every BASIS payload variant is normalized into.
// ID and Date are always present; every other field degrades to its zero value
// so that CSV rendering never has to deal with nulls.
type Meeting struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"` // "15:04:05", empty when the source omits it
	EndTime     string    `json:"end_time"`
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Status      string    `json:"status"` // opaque source status, passed through
	Description string    `json:"description"`
	Bills       []Bill    `json:"bills"`
}

// Bill is a bill reference nested inside a meeting agenda. Bills have no
// lifecycle of their own; they are re-fetched with their meeting.
type Bill struct {
	Number string `json:"bill_number"` // e.g. "HB 101"
	Title  string `json:"title"`
}

// Annotation carries the operator-supplied broadcast metadata for one meeting,
// keyed by Meeting.ID. Zero value doubles as the default annotation.
type Annotation struct {
	Selected       bool   `json:"selected"`
	Encoder        string `json:"encoder"`
	RuntimeMinutes int    `json:"runtime_minutes"`
}
