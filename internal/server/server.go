// Package server provides the HTTP REST API for the career admin.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/career-admin/internal/aicontext"
	"github.com/jonathan/career-admin/internal/assistant"
	"github.com/jonathan/career-admin/internal/config"
	"github.com/jonathan/career-admin/internal/db"
	"github.com/jonathan/career-admin/internal/logging"
	"github.com/jonathan/career-admin/internal/server/middleware"
	"github.com/jonathan/career-admin/internal/server/ratelimit"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// shutdownTimeout bounds graceful shutdown
const shutdownTimeout = 30 * time.Second

// Store is the record store the API serves
type Store interface {
	aicontext.Store
	assistant.CareerStore

	UpsertProfile(ctx context.Context, profile *db.Profile) error

	CreateExperience(ctx context.Context, rec *db.Experience) error
	UpdateExperience(ctx context.Context, rec *db.Experience) error
	DeleteExperience(ctx context.Context, id uuid.UUID) error

	CreateSkill(ctx context.Context, rec *db.Skill) error
	UpdateSkill(ctx context.Context, rec *db.Skill) error
	DeleteSkill(ctx context.Context, id uuid.UUID) error

	CreateProject(ctx context.Context, rec *db.Project) error
	UpdateProject(ctx context.Context, rec *db.Project) error
	DeleteProject(ctx context.Context, id uuid.UUID) error

	CreateEducation(ctx context.Context, rec *db.Education) error
	UpdateEducation(ctx context.Context, rec *db.Education) error
	DeleteEducation(ctx context.Context, id uuid.UUID) error

	GetKeyword(ctx context.Context, id uuid.UUID) (*db.Keyword, error)
	CreateKeyword(ctx context.Context, rec *db.Keyword) error
	UpdateKeyword(ctx context.Context, rec *db.Keyword) error
	DeleteKeyword(ctx context.Context, id uuid.UUID) error
}

// Deps are the collaborators a Server is built from
type Deps struct {
	Store     Store
	Assembler *aicontext.Assembler
	Assistant *assistant.Service
	Agent     *assistant.JobAgent
	Auth      *config.AuthConfig
	Limiter   *ratelimit.Limiter // optional; nil disables rate limiting
	Logger    *slog.Logger

	Addr           string
	AllowedOrigins []string // "*" allows any origin
	WriteTimeout   time.Duration
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       Store
	assembler   *aicontext.Assembler
	assistant   *assistant.Service
	agent       *assistant.JobAgent
	rateLimiter *ratelimit.Limiter
	authHandler *AuthHandler
	validator   *validator.Validate
	origins     map[string]bool
	anyOrigin   bool
	logger      *slog.Logger
}

// New creates a new server instance
func New(deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("server: store is required")
	}
	if deps.Assistant == nil || deps.Agent == nil {
		return nil, errors.New("server: assistant and job agent are required")
	}
	if deps.Auth == nil {
		return nil, errors.New("server: auth config is required")
	}

	s := &Server{
		store:       deps.Store,
		assembler:   deps.Assembler,
		assistant:   deps.Assistant,
		agent:       deps.Agent,
		rateLimiter: deps.Limiter,
		validator:   validator.New(),
		origins:     map[string]bool{},
		logger:      logging.OrDiscard(deps.Logger),
	}
	if s.assembler == nil {
		s.assembler = aicontext.NewAssembler(deps.Store, s.logger)
	}
	for _, origin := range deps.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			s.anyOrigin = true
		} else if origin != "" {
			s.origins[origin] = true
		}
	}

	jwtService := NewJWTService(deps.Auth)
	s.authHandler = NewAuthHandler(deps.Auth, jwtService, s.logger)

	// Routes behind the bearer token
	protected := http.NewServeMux()
	protected.HandleFunc("GET /profile", s.handleGetProfile)
	protected.HandleFunc("PUT /profile", s.handleUpdateProfile)
	s.registerRecords(protected)
	protected.HandleFunc("POST /assistant/context", s.handleBuildContext)
	protected.HandleFunc("POST /assistant/chat", s.handleChat)
	protected.HandleFunc("POST /drafts/{kind}", s.handleGenerateDraft)
	protected.HandleFunc("POST /drafts/{kind}/revise", s.handleReviseDraft)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("/", middleware.AuthMiddleware(jwtService.AsTokenValidator())(protected))

	s.handler = middleware.Logging(s.logger)(s.withCORS(s.withRateLimit(mux)))

	writeTimeout := deps.WriteTimeout
	if writeTimeout <= 0 {
		// Long enough for a draft plus the posting fetch
		writeTimeout = 3 * time.Minute
	}
	s.httpServer = &http.Server{
		Addr:              deps.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is canceled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers for allowed origins and answers preflight requests
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (s.anyOrigin || s.origins[origin]) {
			if s.anyOrigin {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.rateLimiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := extractClientID(r)

		allowed, info := s.rateLimiter.Allow(r.Context(), clientID, r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, kind, message string) {
	s.jsonResponse(w, status, map[string]string{"error": kind, "message": message})
}

// writeError classifies err and writes it. Server-side failures are logged
// with the underlying error, which is never sent to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)
	if e.Status >= http.StatusInternalServerError {
		s.requestLogger(r).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", e.Status,
			"error", err)
	}
	s.errorResponse(w, e.Status, e.Kind, e.Message)
}

// requestLogger tags the server logger with the authenticated subject, if any
func (s *Server) requestLogger(r *http.Request) *slog.Logger {
	if subject, ok := middleware.Subject(r); ok {
		return s.logger.With("subject", subject)
	}
	return s.logger
}

// decodeJSON reads a size-limited JSON body into dst and validates it
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Message: "request body is empty"}
		}
		return &ErrValidation{Message: "invalid request body: " + err.Error()}
	}
	if err := s.validator.Struct(dst); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return nil
		}
		return err
	}
	return nil
}

// extractClientID returns the caller's IP address from RemoteAddr
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     kindRateLimitHTTP,
		"message":   "Rate limit exceeded. Please wait and try again.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Seconds())
		response["retry_after"] = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}

	s.logger.Warn("rate limit exceeded",
		"path", r.URL.Path,
		"method", r.Method,
		"limit", info.Limit,
		"reset", info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
