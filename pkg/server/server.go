package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/m-mizutani/flowgen/pkg/model"
	"github.com/m-mizutani/flowgen/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Generator is the application boundary the HTTP layer calls into
type Generator interface {
	Handle(ctx context.Context, req model.DiagramRequest) (*model.DiagramResult, error)
}

type Server struct {
	generator Generator
	logger    *slog.Logger
}

func New(generator Generator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Default()
	}
	return &Server{
		generator: generator,
		logger:    logger,
	}
}

// Router builds the HTTP handler with middleware and routes
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(s.requestLogger)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", s.health)
	router.Post("/generate", s.generate)

	return router
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	var req model.DiagramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: model.MsgInvalidInput})
		return
	}

	result, err := s.generator.Handle(r.Context(), req)
	if err != nil {
		logging.From(r.Context()).Error("generation failed", "error", err)

		status := http.StatusInternalServerError
		if goerr.HasTag(err, model.ErrTagInvalidInput) {
			status = http.StatusBadRequest
		}
		s.respondJSON(w, status, errorResponse{Error: model.UserMessage(err)})
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// requestLogger attaches a request-scoped logger to the context and logs
// each request on completion
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := s.logger.With("request_id", chimiddleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(started),
		)
	})
}
