package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"askgreg/internal/config"
	"askgreg/internal/logging"
	"askgreg/internal/preference/sink"
	"askgreg/internal/services"
	"askgreg/internal/session"
)

const (
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 64 << 10
	// writeSlack covers request decoding, the sink append and response encoding.
	writeSlack       = 30 * time.Second
	maxSweepInterval = time.Minute
)

// Options wires a Server.
type Options struct {
	Config     *config.Config
	Controller *session.Controller
	// Querier exposes durable preference stats on /api/stats when the sink
	// supports reading back.
	Querier sink.Querier
	Logger  *slog.Logger
}

// Server is the HTTP front end over a session controller.
type Server struct {
	bind       string
	controller *session.Controller
	querier    sink.Querier
	tokens     *tokenIssuer
	logger     *slog.Logger
	handler    http.Handler

	listener    net.Listener
	server      *http.Server
	stopJanitor context.CancelFunc
	sweepEvery  time.Duration
}

// New builds a server. It does not listen until Start.
func New(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Controller == nil {
		return nil, services.Wrap(services.ErrConfiguration, "api", "new", "config and controller are required", nil)
	}
	cfg := opts.Config
	tokens, err := newTokenIssuer(cfg.Session.TokenSecret, time.Duration(cfg.Session.TokenTTLMinutes)*time.Minute)
	if err != nil {
		return nil, err
	}
	s := &Server{
		bind:       strings.TrimSpace(cfg.Paths.APIBind),
		controller: opts.Controller,
		querier:    opts.Querier,
		tokens:     tokens,
		logger:     logging.NewComponentLogger(opts.Logger, "api"),
		// A session unused for a whole token lifetime can no longer present a
		// valid token, so the janitor drops it.
		sweepEvery: min(tokens.ttl/4, maxSweepInterval),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.withSession(s.handleSession))
	mux.HandleFunc("DELETE /api/sessions/{id}", s.withSession(s.handleCloseSession))
	mux.HandleFunc("POST /api/sessions/{id}/questions", s.withSession(s.handleQuestion))
	mux.HandleFunc("POST /api/sessions/{id}/choice", s.withSession(s.handleChoice))
	mux.HandleFunc("POST /api/sessions/{id}/reset", s.withSession(s.handleReset))
	mux.HandleFunc("GET /api/sessions/{id}/preferences", s.withSession(s.handlePreferences))
	mux.HandleFunc("DELETE /api/sessions/{id}/preferences", s.withSession(s.handleClearPreferences))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.Session.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", SessionTokenHeader},
		ExposedHeaders: []string{requestIDHeader},
	})
	s.handler = corsHandler.Handler(authMiddleware(cfg.Paths.APIToken, s.requestContext(mux)))

	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout(cfg),
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// writeTimeout covers the slowest Submit: an llm classification call followed
// by the concurrent generation calls, each bounded by the generation timeout
// including its rate limiter wait.
func writeTimeout(cfg *config.Config) time.Duration {
	perCall := time.Duration(cfg.Generation.TimeoutSeconds) * time.Second
	calls := 1
	if cfg.Classification.Mode == config.ClassifyLLM {
		calls++
	}
	return time.Duration(calls)*perCall + writeSlack
}

// Handler exposes the fully wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Start listens on the configured bind address and serves until ctx ends.
func (s *Server) Start(ctx context.Context) error {
	if s.bind == "" {
		return services.Wrap(services.ErrConfiguration, "api", "start", "paths.api_bind is empty", nil)
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	janitorCtx, cancel := context.WithCancel(ctx)
	s.stopJanitor = cancel
	go s.controller.RunJanitor(janitorCtx, s.tokens.ttl, s.sweepEvery)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr reports the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	if s.stopJanitor != nil {
		s.stopJanitor()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("api shutdown incomplete", logging.Error(err))
	}
}

// requestContext tags every request with a correlation id.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := services.WithRequestID(r.Context(), id)
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))
		logging.WithContext(ctx, s.logger).Debug("request served",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", rec.status),
			logging.Duration("elapsed", time.Since(started)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withSession requires a session token whose subject matches the path id.
func (s *Server) withSession(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		r = r.WithContext(services.WithSessionID(r.Context(), id))
		if err := s.tokens.verify(r.Header.Get(SessionTokenHeader), id); err != nil {
			logging.WithContext(r.Context(), s.logger).Debug("session token rejected", logging.Error(err))
			s.writeError(w, http.StatusUnauthorized, errInvalidToken.Error())
			return
		}
		next(w, r, id)
	}
}

func decodeBody(r *http.Request, w http.ResponseWriter, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return services.Wrap(services.ErrValidation, "api", "decode", "malformed request body", err)
	}
	return nil
}

func statusFor(err error) int {
	switch services.Kind(err) {
	case "validation", "invalid_category":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "conflict":
		return http.StatusConflict
	case "generation_failed":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := logging.WithContext(r.Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(logger, "request failed", "api_request_failed",
			logging.Error(err),
			logging.String("path", r.URL.Path),
			logging.String(logging.FieldErrorHint, "check provider and sink configuration"),
		)
	} else {
		logger.Info("request rejected", logging.Error(err), logging.Int("status", status))
	}
	s.writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: services.Kind(err)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
