// Package api serves the sandbox over HTTP.
//
// Routes:
//
//	POST /v1/builds                        run a build and wait for it
//	POST /v1/resolve                       resolve a module version from a classpath
//	GET  /v1/versions/{group}/{artifact}   list published versions
//	GET  /metrics                          Prometheus metrics
//
// Builds are serialized by the sandbox; a request blocks until its build
// finished.
package api

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/mvnbox/pkg/errors"
	"github.com/matzehuels/mvnbox/pkg/runner"
	"github.com/matzehuels/mvnbox/pkg/version"
)

// ResolveFunc resolves the version of module from a classpath.
type ResolveFunc func(ctx context.Context, module string, classpath []version.ClasspathEntry) (*semver.Version, error)

// VersionLister lists the published versions of an artifact, newest first.
type VersionLister interface {
	AllVersions(ctx context.Context, groupID, artifactID string, refresh bool) (iter.Seq[string], error)
}

// Server holds the collaborators behind the HTTP routes. A nil Runner falls
// back to the process-wide runner registry; a nil Catalog disables the
// versions route.
type Server struct {
	Runner   runner.Runner
	Resolve  ResolveFunc
	Catalog  VersionLister
	Gatherer prometheus.Gatherer
	Logger   *log.Logger
}

// NewHandler creates the HTTP handler for s.
func NewHandler(s *Server) http.Handler {
	if s.Resolve == nil {
		s.Resolve = version.Resolve
	}
	if s.Logger == nil {
		s.Logger = log.Default()
	}
	if s.Gatherer == nil {
		s.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/builds", s.Build)
		r.Post("/resolve", s.ResolveVersion)
		r.Get("/versions/{group}/{artifact}", s.Versions)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start))
	})
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeResolution, errors.ErrCodeExecution:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeNotConfigured, errors.ErrCodeEnvironment:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "code", code, "error", err)
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
