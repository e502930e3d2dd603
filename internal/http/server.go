package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"equanima/internal/core"
	applog "equanima/internal/log"
	appweb "equanima/web"
)

// storageTimeout bounds every journal call made while serving a request.
const storageTimeout = 7 * time.Second

// Journal is the part of the aggregator the HTTP layer drives.
type Journal interface {
	AddEntry(ctx context.Context, e core.NewEntry) (core.MoodEntry, error)
	UpdateEntry(ctx context.Context, id string, patch core.EntryPatch) error
	DeleteEntry(ctx context.Context, id string) error
	Entries(ctx context.Context) ([]core.MoodEntry, error)
	Entry(ctx context.Context, id string) (core.MoodEntry, bool, error)
	WeeklyData(ctx context.Context) ([]core.DayPoint, error)
	Trend(ctx context.Context) (core.TrendSummary, error)
	Distribution(ctx context.Context) (core.Distribution, error)
	Overview(ctx context.Context, recent int) (core.Overview, error)
}

// ReadyFunc reports whether the backing store can serve requests.
type ReadyFunc func(ctx context.Context) error

type Server struct {
	http.Server
	templates   *template.Template
	journal     Journal
	ready       ReadyFunc
	validate    *validator.Validate
	rateLimiter *rateLimiter
	metrics     *securityMetrics
	logger      *applog.Logger
	httpLog     *applog.StructuredLogger
	now         func() time.Time

	shutdownOnce sync.Once
}

type ServerOption func(*Server)

// WithClock overrides the clock used to default an entry's date.
func WithClock(now func() time.Time) ServerOption {
	return func(s *Server) { s.now = now }
}

// WithReadiness sets the check behind /readyz.
func WithReadiness(ready ReadyFunc) ServerOption {
	return func(s *Server) { s.ready = ready }
}

func WithLogger(l *applog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, j Journal, opts ...ServerOption) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		journal:     j,
		validate:    newValidator(),
		rateLimiter: newRateLimiter(),
		metrics:     &securityMetrics{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = applog.FromSlog(nil, applog.ComponentHTTP)
	}
	s.httpLog = applog.NewStructuredLogger(s.logger)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /{$}", s.withSecurityHeaders(s.handleDashboard))
	mux.HandleFunc("POST /entries", s.withSecurityHeaders(s.handleCreateEntryForm))
	mux.HandleFunc("POST /entries/{id}/delete", s.withSecurityHeaders(s.handleDeleteEntryForm))

	mux.HandleFunc("GET /api/entries", s.withSecurityHeaders(s.handleListEntries))
	mux.HandleFunc("POST /api/entries", s.withSecurityHeaders(s.handleCreateEntry))
	mux.HandleFunc("GET /api/entries/{id}", s.withSecurityHeaders(s.handleGetEntry))
	mux.HandleFunc("PATCH /api/entries/{id}", s.withSecurityHeaders(s.handleUpdateEntry))
	mux.HandleFunc("DELETE /api/entries/{id}", s.withSecurityHeaders(s.handleDeleteEntry))

	mux.HandleFunc("GET /api/stats/weekly", s.withSecurityHeaders(s.handleWeekly))
	mux.HandleFunc("GET /api/stats/trend", s.withSecurityHeaders(s.handleTrend))
	mux.HandleFunc("GET /api/stats/distribution", s.withSecurityHeaders(s.handleDistribution))
	mux.HandleFunc("GET /api/stats/overview", s.withSecurityHeaders(s.handleOverview))

	return s
}

// Shutdown stops the rate limiter and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		limited, suspicious := s.metrics.snapshot()
		s.logger.Info("HTTP server shutting down",
			"rate_limited_requests", limited,
			"suspicious_requests", suspicious)
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		reqLogger := s.logger.With(applog.FieldRequestID, requestID)
		ctx := applog.NewContext(r.Context(), reqLogger)
		r = r.WithContext(ctx)

		s.httpLog.LogHTTPStart(ctx, r, clientIP)
		if isSuspicious(r, s.metrics) {
			reqLogger.WithComponent(applog.ComponentSecurity).WarnContext(ctx, "Suspicious request",
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path)
		}

		w.Header().Set("X-Request-ID", requestID)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			reqLogger.WithComponent(applog.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			rw.Header().Set("Retry-After", "60")
			writeError(rw, r, http.StatusTooManyRequests, "rate limit exceeded, try again later", nil)
		} else {
			next(rw, r)
		}

		s.httpLog.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.written = true
	return rw.ResponseWriter.Write(b)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storageTimeout)
	defer cancel()

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	if _, err := s.journal.Entries(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed to load entries", applog.FieldError, err)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ready"))
}

var templateFuncs = template.FuncMap{
	"percent": func(share float64) string { return fmt.Sprintf("%.0f", share*100) },
	"oneDecimal": func(v float64) string {
		return fmt.Sprintf("%.1f", v)
	},
	"joinTags": func(tags []string) string { return strings.Join(tags, ", ") },
	"weekday":  func(d core.Date) string { return d.Weekday().String()[:3] },
	"trendSymbol": func(t core.Trend) string {
		switch t {
		case core.TrendUp:
			return "↑"
		case core.TrendDown:
			return "↓"
		}
		return "→"
	},
	"scorePercent": func(score, max int) int {
		if max <= 0 {
			return 0
		}
		return score * 100 / max
	},
}
