// Package server hosts the form and live preview over HTTP. Each browser
// session owns one in-memory profile store.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"github.com/nikogura/cv-builder/pkg/export"
	"github.com/nikogura/cv-builder/pkg/profile"
	"github.com/nikogura/cv-builder/pkg/render"
	"github.com/nikogura/cv-builder/pkg/summary"
)

const maxFormSize = 1 << 20 // 1MB

// Deps are the collaborators the server needs. Generator and Exporter may be
// nil, in which case the matching actions answer 503.
type Deps struct {
	Registry          *render.Registry
	Exporter          *export.Exporter
	Generator         summary.Generator
	GenerationTimeout time.Duration
	SessionTTL        time.Duration
	DefaultLanguage   string
	DefaultTemplate   string
	Logger            *slog.Logger
}

// Server is the web surface.
type Server struct {
	deps     Deps
	sessions *Sessions
	log      *slog.Logger
}

// New creates a server.
func New(deps Deps) (srv *Server) {
	if deps.Registry == nil {
		deps.Registry = render.DefaultRegistry()
	}
	if deps.DefaultLanguage == "" {
		deps.DefaultLanguage = profile.DefaultLanguage
	}
	if deps.DefaultTemplate == "" {
		deps.DefaultTemplate = deps.Registry.Default()
	}
	if deps.SessionTTL <= 0 {
		deps.SessionTTL = DefaultSessionTTL
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv = &Server{
		deps:     deps,
		sessions: NewSessions(),
		log:      logger,
	}
	return srv
}

// Sessions exposes the session table.
func (s *Server) Sessions() (sessions *Sessions) {
	sessions = s.sessions
	return sessions
}

// ExpireSessions evicts idle sessions until ctx is done. It always returns nil
// so it can run alongside the HTTP server in an errgroup.
func (s *Server) ExpireSessions(ctx context.Context) (err error) {
	s.sessions.Expire(ctx, s.deps.SessionTTL, func(n int) {
		s.log.Debug("sessions expired", "count", n, "live", s.sessions.Len())
	})
	return err
}

// Router returns the HTTP handler.
func (s *Server) Router() (handler http.Handler) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", handleHealth)
	r.Get("/", s.handleNewSession)

	r.Route("/s/{id}", func(r chi.Router) {
		r.Get("/", s.handlePage)
		r.Get("/preview", s.handlePreview)
		r.Get("/state", s.handleState)
		r.Get("/events", s.handleEvents)
		r.Get("/export", s.handleExport)
		r.Post("/fields/{field}", s.handleSetField)
		r.Post("/language", s.handleSetLanguage)
		r.Post("/template", s.handleSetTemplate)
		r.Post("/generate", s.handleGenerate)
	})

	handler = r
	return handler
}

func (s *Server) requestLogger(next http.Handler) (handler http.Handler) {
	handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
	return handler
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	lang := s.deps.DefaultLanguage
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		if parsed, err := render.ParseLanguage(accept); err == nil {
			lang = string(parsed)
		}
	}

	id, _ := s.sessions.Create(
		profile.WithLanguage(lang),
		profile.WithTemplate(s.deps.DefaultTemplate),
	)
	s.log.Info("session created", "session", id.String(), "language", lang)

	http.Redirect(w, r, "/s/"+id.String()+"/", http.StatusSeeOther)
}

// session resolves the {id} URL parameter, answering 404 when it is unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (store *profile.Store, ok bool) {
	store, ok = s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		httpError(w, http.StatusNotFound, "unknown session")
	}
	return store, ok
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	store, ok := s.session(w, r)
	if !ok {
		return
	}

	page := newPageData("/s/"+chi.URLParam(r, "id"), store.Snapshot(), s.deps.Registry)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, page); err != nil {
		s.log.Error("rendering page", "error", err)
	}
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	store, ok := s.session(w, r)
	if !ok {
		return
	}

	doc, err := s.deps.Registry.RenderState(store.Snapshot())
	if err != nil {
		httpError(w, http.StatusInternalServerError, "rendering preview: %v", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(doc.HTML)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	store, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, store.Snapshot())
}

func (s *Server) handleSetField(w http.ResponseWriter, r *http.Request) {
	store, ok := s.session(w, r)
	if !ok {
		return
	}

	field, err := profile.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		httpError(w, http.StatusBadRequest, "%v", err)
		return
	}

	value, ok := formValue(w, r)
	if !ok {
		return
	}

	if err := store.SetField(field, value); err != nil {
		httpError(w, http.StatusBadRequest, "%v", err)
		return
	}

	writeJSON(w, http.StatusOK, store.Snapshot())
}

func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	store, ok := s.session(w, r)
	if !ok {
		return
	}

	value, ok := formValue(w, r)
	if !ok {
		return
	}

	lang, err := render.ParseLanguage(value)
	if err != nil {
		httpError(w, http.StatusBadRequest, "%v", err)
		return
	}

	store.SetLanguage(string(lang))
	writeJSON(w, http.StatusOK, store.Snapshot())
}

func (s *Server) handleSetTemplate(w http.ResponseWriter, r *http.Request) {
	store, ok := s.session(w, r)
	if !ok {
		return
	}

	value, ok := formValue(w, r)
	if !ok {
		return
	}

	if _, err := s.deps.Registry.Lookup(value); err != nil {
		httpError(w, http.StatusBadRequest, "%v", err)
		return
	}

	store.SetTemplate(value)
	writeJSON(w, http.StatusOK, store.Snapshot())
}

type generateResponse struct {
	Summary string `json:"summary"`
	Applied bool   `json:"applied"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	store, ok := s.session(w, r)
	if !ok {
		return
	}

	if s.deps.Generator == nil {
		httpError(w, http.StatusServiceUnavailable, "summary generation is not configured")
		return
	}

	// The request context cancels generation if the client goes away.
	result := summary.Generate(r.Context(), s.deps.Generator, store, s.deps.GenerationTimeout)
	if result.Err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(result.Err, summary.ErrSummaryChanged):
			status = http.StatusConflict
		case errors.Is(result.Err, context.DeadlineExceeded):
			status = http.StatusGatewayTimeout
		}
		s.log.Warn("summary generation failed", "session", chi.URLParam(r, "id"), "error", result.Err)
		httpError(w, status, "%v", result.Err)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Summary: result.Text,
		Applied: result.Applied,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	store, ok := s.session(w, r)
	if !ok {
		return
	}

	if s.deps.Exporter == nil {
		httpError(w, http.StatusServiceUnavailable, "PDF export is not configured")
		return
	}

	state := store.Snapshot()
	doc, err := s.deps.Registry.RenderState(state)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "rendering document: %v", err)
		return
	}

	pdf, err := s.deps.Exporter.Bytes(r.Context(), doc)
	if err != nil {
		s.log.Error("export failed", "session", chi.URLParam(r, "id"), "error", err)
		httpError(w, http.StatusInternalServerError, "exporting document: %v", err)
		return
	}

	filename := export.Filename(state.Profile.Name)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Write(pdf)
}

// handleEvents streams a "render" event with the preview document after every
// mutation of the session. Each event renders the store as it is when sent,
// so slow readers skip intermediate states but never end on a stale one.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	store, release, ok := s.sessions.Attach(chi.URLParam(r, "id"))
	if !ok {
		httpError(w, http.StatusNotFound, "unknown session")
		return
	}
	defer release()

	flusher, ok := w.(http.Flusher)
	if !ok {
		httpError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	changed := make(chan struct{}, 1)
	unsubscribe := store.Subscribe(func(profile.State) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func() (alive bool) {
		doc, err := s.deps.Registry.RenderState(store.Snapshot())
		if err != nil {
			s.log.Error("rendering preview", "error", err)
			alive = true
			return alive
		}
		err = writeEvent(w, "render", doc.String())
		if err != nil {
			return alive
		}
		flusher.Flush()
		alive = true
		return alive
	}

	if !send() {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-changed:
			if !send() {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, event, data string) (err error) {
	var sb strings.Builder
	sb.WriteString("event: ")
	sb.WriteString(event)
	sb.WriteString("\n")
	for _, line := range strings.Split(data, "\n") {
		sb.WriteString("data: ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	_, err = w.Write([]byte(sb.String()))
	if err != nil {
		err = errors.Wrap(err, "failed to write event")
	}
	return err
}

// formValue reads the "value" form field from a urlencoded or multipart body.
// A missing field is an empty value.
func formValue(w http.ResponseWriter, r *http.Request) (value string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	err := r.ParseForm()
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid form: %v", err)
		return value, ok
	}
	value = r.PostForm.Get("value")
	ok = true
	return value, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
}
