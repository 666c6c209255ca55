// Package chi is the HTTP transport: request decoding, domain error mapping,
// and route registration for the search API.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodsearch/internal/domain"
	"github.com/kailas-cloud/prodsearch/internal/metrics"
	searchuc "github.com/kailas-cloud/prodsearch/internal/search"
)

// Error codes returned in the JSON error body.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeInternalError    = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Searcher is the consumer contract for the search pipeline.
type Searcher interface {
	Search(ctx context.Context, req searchuc.Request) (domain.SearchResult, error)
}

// HealthCheck is one named dependency probe.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server handles the HTTP API.
type Server struct {
	search Searcher
	checks []HealthCheck
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, checks []HealthCheck, logger *zap.Logger) *Server {
	return &Server{search: search, checks: checks, logger: logger}
}

// searchRequest is the POST /v1/search body.
type searchRequest struct {
	Query           string                  `json:"query"`
	Preferences     *domain.UserPreferences `json:"preferences,omitempty"`
	Categories      []string                `json:"categories,omitempty"`
	IncludeInactive bool                    `json:"include_inactive,omitempty"`
	Limit           int                     `json:"limit,omitempty"`
}

// HandleSearch handles POST /v1/search.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query is required")
		return
	}
	if req.Limit < 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must not be negative")
		return
	}

	result, err := s.search.Search(r.Context(), searchuc.Request{
		Query:           req.Query,
		Preferences:     req.Preferences,
		Categories:      req.Categories,
		IncludeInactive: req.IncludeInactive,
		Limit:           req.Limit,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// healthResponse is the GET /v1/health body.
type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HandleHealth handles GET /v1/health. Dependency failures degrade the
// status but never fail the probe outright: the search pipeline works
// without its external providers.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "healthy"}
	if len(s.checks) > 0 {
		resp.Checks = make(map[string]string, len(s.checks))
	}
	for _, c := range s.checks {
		if err := c.Check(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.String("check", c.Name), zap.Error(err))
			resp.Checks[c.Name] = "unhealthy"
			resp.Status = "degraded"
			continue
		}
		resp.Checks[c.Name] = "healthy"
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleMetrics handles GET /metrics.
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// NewRouter wires middlewares and routes.
func NewRouter(s *Server, apiKeys []string, logger *zap.Logger) *chirouter.Mux {
	r := chirouter.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chimiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Post("/v1/search", s.HandleSearch)
	r.Get("/v1/health", s.HandleHealth)
	r.Get("/metrics", s.HandleMetrics)
	return r
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		s.logger.Warn("invalid search request", zap.Error(err))
		writeError(w, http.StatusBadRequest, codeValidationFailed, safeDomainMessage(err))
	case errors.Is(err, domain.ErrPipelineFault):
		s.logger.Error("search pipeline fault", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, safeDomainMessage(err))
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidArgument,
		domain.ErrPipelineFault,
		domain.ErrNoCandidates,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
