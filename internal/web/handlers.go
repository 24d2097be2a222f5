package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gavelak/gavel-exporter/internal/config"
	"github.com/gavelak/gavel-exporter/internal/daterange"
	"github.com/gavelak/gavel-exporter/internal/export"
	"github.com/gavelak/gavel-exporter/internal/models"
	"github.com/gavelak/gavel-exporter/internal/session"
)

type indexPage struct {
	Today    string
	Tomorrow string
	Error    string
}

type meetingRow struct {
	Meeting    models.Meeting
	Annotation models.Annotation
	Date       string
	Time       string
	Bills      string
}

type dateGroup struct {
	Heading string
	Rows    []meetingRow
}

type failureRow struct {
	Date    string
	Message string
}

type meetingsPage struct {
	RangeLabel string
	Groups     []dateGroup
	Total      int
	Failures   []failureRow
	Dropped    int
	Encoders   []config.Encoder
	Error      string
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	s.render(w, http.StatusOK, "index.html", indexPage{
		Today:    now.Format(daterange.Layout),
		Tomorrow: now.AddDate(0, 0, 1).Format(daterange.Layout),
	})
}

// handleMeetings fetches when date parameters are present and otherwise shows
// the session's current collection. A successful fetch replaces the
// collection and clears all annotations as one unit.
func (s *Server) handleMeetings(w http.ResponseWriter, r *http.Request) {
	store := s.store(w, r)

	q := r.URL.Query()
	single := strings.TrimSpace(q.Get("date"))
	start := strings.TrimSpace(q.Get("start"))
	end := strings.TrimSpace(q.Get("end"))

	if single == "" && start == "" && end == "" {
		s.render(w, http.StatusOK, "meetings.html", s.buildMeetingsPage(store, nil, 0, ""))
		return
	}

	var (
		dates []time.Time
		label string
		err   error
	)
	if single != "" {
		dates, err = daterange.Resolve(single)
		label = single
	} else {
		dates, err = daterange.ResolveRange(start, end, s.cfg.MaxRangeDays)
		label = start + "_to_" + end
		if start == end {
			label = start
		}
	}
	if err != nil {
		var invalid *daterange.InvalidDateError
		if errors.As(err, &invalid) {
			now := time.Now()
			s.render(w, http.StatusBadRequest, "index.html", indexPage{
				Today:    now.Format(daterange.Layout),
				Tomorrow: now.AddDate(0, 0, 1).Format(daterange.Layout),
				Error:    invalid.Error(),
			})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result := s.runner.Run(r.Context(), dates)
	store.ReplaceMeetings(result.Meetings, label)

	s.log.Info("fetched meetings",
		slog.String("range", label),
		slog.Int("meetings", len(result.Meetings)),
		slog.Int("failed_dates", len(result.Failed)),
		slog.Int("dropped_records", len(result.Dropped)),
	)

	failures := make([]failureRow, 0, len(result.Failed))
	for _, f := range result.Failed {
		failures = append(failures, failureRow{
			Date:    f.Date.Format(daterange.Layout),
			Message: f.Err.Error(),
		})
	}

	s.render(w, http.StatusOK, "meetings.html", s.buildMeetingsPage(store, failures, len(result.Dropped), ""))
}

// handleAnnotate merges the posted selection, encoder, and runtime values
// into the session's annotations and sends the operator back to the list.
func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	store := s.store(w, r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	for _, m := range store.Meetings() {
		selected := r.PostForm.Get("selected_"+m.ID) != ""
		upd := session.Update{Selected: &selected}

		if enc, ok := postValue(r, "encoder_"+m.ID); ok {
			upd.Encoder = &enc
		}
		if raw, ok := postValue(r, "runtime_"+m.ID); ok {
			if minutes, err := strconv.Atoi(raw); err == nil {
				upd.RuntimeMinutes = &minutes
			}
		}

		store.SetAnnotation(m.ID, upd)
	}

	http.Redirect(w, r, "/meetings", http.StatusSeeOther)
}

func (s *Server) handleExportStandard(w http.ResponseWriter, r *http.Request) {
	store := s.store(w, r)

	data, err := export.Standard(store.Meetings())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeCSV(w, data, csvFilename("meetings", store.RangeLabel()))
}

func (s *Server) handleExportInvintus(w http.ResponseWriter, r *http.Request) {
	store := s.store(w, r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	liveToBreak := r.PostForm.Get("live_to_break") != ""

	data, err := export.Invintus(store.Meetings(), store.Annotations(), export.InvintusOptions{
		Encoders:    s.encoders.IDs(),
		LiveToBreak: liveToBreak,
	})
	if err != nil {
		var invalid *export.ValidationError
		if errors.As(err, &invalid) {
			page := s.buildMeetingsPage(store, nil, 0, invalid.Error())
			s.render(w, http.StatusUnprocessableEntity, "meetings.html", page)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeCSV(w, data, csvFilename("invintus_meetings", store.RangeLabel()))
}

func (s *Server) buildMeetingsPage(store *session.Store, failures []failureRow, dropped int, errMsg string) meetingsPage {
	meetings := store.Meetings()

	var groups []dateGroup
	for _, m := range meetings {
		heading := m.Date.Format("Monday January 2, 2006")
		if len(groups) == 0 || groups[len(groups)-1].Heading != heading {
			groups = append(groups, dateGroup{Heading: heading})
		}

		numbers := make([]string, 0, len(m.Bills))
		for _, b := range m.Bills {
			numbers = append(numbers, b.Number)
		}

		g := &groups[len(groups)-1]
		g.Rows = append(g.Rows, meetingRow{
			Meeting:    m,
			Annotation: store.Annotation(m.ID),
			Date:       m.Date.Format("01/02/06"),
			Time:       formatClock(m.StartTime),
			Bills:      strings.Join(numbers, ", "),
		})
	}

	return meetingsPage{
		RangeLabel: store.RangeLabel(),
		Groups:     groups,
		Total:      len(meetings),
		Failures:   failures,
		Dropped:    dropped,
		Encoders:   s.encoders.Encoder,
		Error:      errMsg,
	}
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("render template", slog.String("template", name), slog.Any("err", err))
	}
}

func postValue(r *http.Request, key string) (string, bool) {
	if _, ok := r.PostForm[key]; !ok {
		return "", false
	}
	return strings.TrimSpace(r.PostForm.Get(key)), true
}

func writeCSV(w http.ResponseWriter, data []byte, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func csvFilename(prefix, label string) string {
	if label == "" {
		label = "current"
	}
	return prefix + "_" + label + ".csv"
}

func formatClock(raw string) string {
	if raw == "" {
		return ""
	}
	if t, err := time.Parse("15:04:05", raw); err == nil {
		return t.Format("3:04 PM")
	}
	return raw
}
