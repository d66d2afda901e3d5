package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"monthcal/internal/calendar"
	"monthcal/internal/config"
	appLog "monthcal/internal/log"
	"monthcal/internal/source"
	"monthcal/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed all:static
var staticFS embed.FS

var calendarTmpl = template.Must(template.ParseFS(templateFS, "templates/calendar.html"))

// Server serves the month view as HTML and JSON.
type Server struct {
	cfg   *config.Config
	store *source.Store
	mux   *http.ServeMux

	// today is swappable for tests.
	today func() calendar.Date
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, store *source.Store) *Server {
	s := &Server{
		cfg:   cfg,
		store: store,
		mux:   http.NewServeMux(),
		today: calendar.Today,
	}
	s.registerRoutes()
	return s
}

// Handler returns the root handler, wrapped in basic auth when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled")
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="monthcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Run serves on cfg.Listen until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/month", s.handleMonth)
	s.mux.HandleFunc("GET /api/day", s.handleDay)
	s.mux.HandleFunc("POST /api/reload", s.handleReload)
	s.mux.HandleFunc("GET /calendar", s.handleCalendar)
	s.mux.HandleFunc("GET /preview.png", s.handlePreview)
	s.mux.Handle("GET /static/", s.staticFileServer())
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/calendar", http.StatusFound)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// monthParam reads ?month=yyyy-mm, defaulting to today's month.
func (s *Server) monthParam(r *http.Request) (calendar.Date, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return s.today().StartOfMonth(), nil
	}
	return calendar.ParseMonth(raw)
}

func (s *Server) monthView(ref calendar.Date) view.Month {
	return view.BuildMonth(ref, s.today(), s.store.Index(), s.cfg.MaxVisible)
}

// handleMonth returns the month grid as JSON.
//
// GET /api/month?month=2024-02
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	ref, err := s.monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must be yyyy-mm")
		return
	}
	writeJSON(w, http.StatusOK, s.monthView(ref))
}

// handleDay returns every event of one day with conflict indices.
//
// GET /api/day?date=2024-02-10
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	d, err := calendar.ParseKey(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be yyyy-mm-dd")
		return
	}
	writeJSON(w, http.StatusOK, view.BuildDay(d, s.store.Index()))
}

type reloadResponse struct {
	Events   int       `json:"events"`
	LoadedAt time.Time `json:"loaded_at"`
	Error    string    `json:"error,omitempty"`
}

// handleReload re-reads all sources. Partial failures still swap in the new
// index and are reported in the body.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	resp := reloadResponse{}
	if err := s.store.Reload(r.Context()); err != nil {
		resp.Error = err.Error()
	}
	resp.Events = s.store.Index().Len()
	resp.LoadedAt = s.store.LoadedAt()
	writeJSON(w, http.StatusOK, resp)
}

type calendarPage struct {
	view.Month
	LoadedAt time.Time
}

// handleCalendar renders the month grid as HTML.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	ref, err := s.monthParam(r)
	if err != nil {
		http.Error(w, "month must be yyyy-mm", http.StatusBadRequest)
		return
	}

	page := calendarPage{Month: s.monthView(ref), LoadedAt: s.store.LoadedAt()}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := calendarTmpl.Execute(w, page); err != nil {
		appLog.Error("calendar template failed", err, "month", ref.MonthKey())
	}
}

// handlePreview serves the last snapshot PNG.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	path, err := config.Expand(s.cfg.Snapshot.Output)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "bad snapshot path")
		return
	}
	// http.ServeFile answers 404 for a missing file.
	http.ServeFile(w, r, path)
}

func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.NotFoundHandler()
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
