// Package export renders the two CSV artifacts: the generic meeting dump and
// the Invintus broadcast schedule. Both renders are pure functions of their
// inputs.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"github.com/gavelak/gavel-exporter/internal/models"
)

// billJoin separates joined bill numbers and titles in the standard export.
const billJoin = "; "

// StandardHeader is the fixed column set of the generic dump.
var StandardHeader = []string{
	"date", "start_time", "end_time", "location", "status", "description",
	"bill_numbers", "bill_titles",
}

// InvintusHeader is the fixed schema the downstream broadcast scheduler
// ingests. Column names and order must not change.
var InvintusHeader = []string{
	"title", "customID", "startDateTime", "description", "encoder",
	"category", "location", "estRuntime", "liveToBreak",
}

// ValidationError blocks an Invintus export when a selected meeting is
// missing required scheduling metadata. The standard export is never blocked.
type ValidationError struct {
	MeetingID string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("meeting %s: %s", e.MeetingID, e.Reason)
}

// Standard renders one row per meeting, in collection order. Zero meetings
// still produce the header row.
func Standard(meetings []models.Meeting) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(StandardHeader); err != nil {
		return nil, err
	}
	for _, m := range meetings {
		numbers := make([]string, 0, len(m.Bills))
		titles := make([]string, 0, len(m.Bills))
		for _, b := range m.Bills {
			numbers = append(numbers, b.Number)
			titles = append(titles, b.Title)
		}
		row := []string{
			m.Date.Format("2006-01-02"),
			m.StartTime,
			m.EndTime,
			m.Location,
			m.Status,
			m.Description,
			join(numbers),
			join(titles),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// InvintusOptions carries the externally configured pieces of the broadcast
// schedule render.
type InvintusOptions struct {
	// Encoders is the configured roster; a selected meeting whose encoder is
	// not on it fails validation. Empty roster disables the roster check.
	Encoders []string
	// LiveToBreak sets the liveToBreak column for every row.
	LiveToBreak bool
}

// Invintus renders only meetings whose annotation is selected, ordered by
// date, then start time, then ID. Every selected meeting must carry a
// non-empty configured encoder and a positive runtime; otherwise the render
// fails with *ValidationError before any row is written.
func Invintus(meetings []models.Meeting, annotations map[string]models.Annotation, opts InvintusOptions) ([]byte, error) {
	roster := make(map[string]struct{}, len(opts.Encoders))
	for _, e := range opts.Encoders {
		roster[e] = struct{}{}
	}

	selected := make([]models.Meeting, 0, len(meetings))
	for _, m := range meetings {
		a := annotations[m.ID]
		if !a.Selected {
			continue
		}
		if a.Encoder == "" {
			return nil, &ValidationError{MeetingID: m.ID, Reason: "selected meeting has no encoder assigned"}
		}
		if len(roster) > 0 {
			if _, ok := roster[a.Encoder]; !ok {
				return nil, &ValidationError{MeetingID: m.ID, Reason: fmt.Sprintf("encoder %q is not in the configured roster", a.Encoder)}
			}
		}
		if a.RuntimeMinutes <= 0 {
			return nil, &ValidationError{MeetingID: m.ID, Reason: "selected meeting has no positive runtime estimate"}
		}
		selected = append(selected, m)
	}

	// Broadcast systems schedule chronologically; ID breaks ties so the
	// output is stable across renders.
	sort.SliceStable(selected, func(i, j int) bool {
		a, b := selected[i], selected[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})

	liveToBreak := "FALSE"
	if opts.LiveToBreak {
		liveToBreak = "TRUE"
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(InvintusHeader); err != nil {
		return nil, err
	}
	for _, m := range selected {
		a := annotations[m.ID]
		row := []string{
			m.Title,
			m.ID,
			startDateTime(m),
			m.Description,
			a.Encoder,
			category(m),
			m.Location,
			estRuntime(a.RuntimeMinutes),
			liveToBreak,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func join(values []string) string {
	return strings.Join(values, billJoin)
}

func startDateTime(m models.Meeting) string {
	clock := m.StartTime
	if clock == "" {
		clock = "00:00:00"
	}
	return m.Date.Format("2006-01-02") + " " + clock
}

func category(m models.Meeting) string {
	if m.Title == "" {
		return "Gavel Alaska"
	}
	return "Gavel Alaska, " + m.Title
}

// estRuntime renders integer minutes as the HH:MM the scheduler expects.
func estRuntime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
