// Package web is the operator-facing HTTP layer: the date-selection and
// meeting pages, annotation updates, and the two CSV downloads.
package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gavelak/gavel-exporter/internal/config"
	"github.com/gavelak/gavel-exporter/internal/pipeline"
	"github.com/gavelak/gavel-exporter/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionCookie = "gavel_session"

// Runner is the slice of the fetch pipeline the handlers need.
type Runner interface {
	Run(ctx context.Context, dates []time.Time) pipeline.Result
}

// Server wires the router, the pipeline, and the session manager together.
type Server struct {
	log      *slog.Logger
	cfg      *config.Server
	encoders *config.Encoders
	runner   Runner
	sessions *session.Manager
	tmpl     *template.Template
}

// NewServer builds the web server. Panics only on a broken embedded template
// set, which is a build defect.
func NewServer(cfg *config.Server, encoders *config.Encoders, runner Runner, sessions *session.Manager, log *slog.Logger) *Server {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/*.html"))
	return &Server{
		log:      log,
		cfg:      cfg,
		encoders: encoders,
		runner:   runner,
		sessions: sessions,
		tmpl:     tmpl,
	}
}

// Router builds the chi route table.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleIndex)
	r.Get("/meetings", s.handleMeetings)
	r.Post("/annotate", s.handleAnnotate)
	r.Get("/export/standard", s.handleExportStandard)
	r.Post("/export/invintus", s.handleExportInvintus)

	return r
}

// store resolves the request's session, minting a fresh one (and cookie)
// when the browser has none or it expired.
func (s *Server) store(w http.ResponseWriter, r *http.Request) *session.Store {
	var current string
	if c, err := r.Cookie(sessionCookie); err == nil {
		current = c.Value
	}

	id, store := s.sessions.GetOrCreate(current)
	if id != current {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return store
}
