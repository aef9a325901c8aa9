package api

import (
	stderrors "errors"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/mvnbox/pkg/buildspec"
	"github.com/matzehuels/mvnbox/pkg/errors"
	"github.com/matzehuels/mvnbox/pkg/runner"
	"github.com/matzehuels/mvnbox/pkg/sandbox"
	"github.com/matzehuels/mvnbox/pkg/version"
)

// BuildRequest describes a build. Properties with a null value are passed
// as -Dkey.
type BuildRequest struct {
	Dir        string             `json:"dir"`
	Goals      []string           `json:"goals"`
	Options    []string           `json:"options,omitempty"`
	Properties map[string]*string `json:"properties,omitempty"`
	Bare       bool               `json:"bare,omitempty"`
}

// BuildResponse reports a finished build.
type BuildResponse struct {
	ID       string  `json:"id"`
	Spec     string  `json:"spec"`
	Success  bool    `json:"success"`
	ExitCode *int    `json:"exitCode,omitempty"`
	Error    string  `json:"error,omitempty"`
	Seconds  float64 `json:"seconds"`
}

// Spec converts the request into a build spec.
func (b BuildRequest) Spec() (*buildspec.BuildSpec, error) {
	spec := buildspec.New()
	if b.Bare {
		spec = buildspec.NewBare()
	}
	if err := spec.SetWorkingDirectory(b.Dir); err != nil {
		return nil, err
	}
	if err := spec.AddGoals(b.Goals...); err != nil {
		return nil, err
	}
	if err := spec.AddOptions(b.Options...); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(b.Properties))
	for k := range b.Properties {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := spec.SetProperty(k, b.Properties[k]); err != nil {
			return nil, err
		}
	}
	return spec, nil
}

// Build handles POST /v1/builds. A build that ran and failed is reported
// with 200 and success=false; only requests that could not start a build
// get an error status.
func (s *Server) Build(w http.ResponseWriter, r *http.Request) {
	var req BuildRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	spec, err := req.Spec()
	if err != nil {
		s.writeError(w, err)
		return
	}

	id := uuid.NewString()
	logger := s.Logger.With("build", id)
	logger.Info("build started", "spec", spec.String())

	start := time.Now()
	if s.Runner != nil {
		err = s.Runner.Execute(r.Context(), spec)
	} else {
		err = runner.Execute(r.Context(), spec)
	}
	resp := BuildResponse{
		ID:      id,
		Spec:    spec.String(),
		Success: err == nil,
		Seconds: time.Since(start).Seconds(),
	}

	if err != nil && !errors.Is(err, errors.ErrCodeExecution) {
		logger.Warn("build not started", "error", err)
		s.writeError(w, err)
		return
	}
	if err != nil {
		var exit *sandbox.ExitError
		if stderrors.As(err, &exit) {
			resp.ExitCode = &exit.Code
		}
		resp.Error = errors.UserMessage(err)
		logger.Warn("build failed", "error", err)
	} else {
		zero := 0
		resp.ExitCode = &zero
		logger.Info("build finished", "seconds", resp.Seconds)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ResolveRequest asks for the version of a module on a classpath.
type ResolveRequest struct {
	Module    string                   `json:"module"`
	Classpath []version.ClasspathEntry `json:"classpath"`
}

// ResolveResponse carries the resolved version, or found=false.
type ResolveResponse struct {
	Module  string `json:"module"`
	Found   bool   `json:"found"`
	Version string `json:"version,omitempty"`
}

// ResolveVersion handles POST /v1/resolve.
func (s *Server) ResolveVersion(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Module == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "module is required"))
		return
	}
	v, err := s.Resolve(r.Context(), req.Module, req.Classpath)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := ResolveResponse{Module: req.Module, Found: v != nil}
	if v != nil {
		resp.Version = v.Original()
	}
	writeJSON(w, http.StatusOK, resp)
}

// VersionsResponse lists published versions, newest first.
type VersionsResponse struct {
	GroupID    string   `json:"groupId"`
	ArtifactID string   `json:"artifactId"`
	Versions   []string `json:"versions"`
}

// Versions handles GET /v1/versions/{group}/{artifact}. The query
// parameter refresh=true bypasses the response cache.
func (s *Server) Versions(w http.ResponseWriter, r *http.Request) {
	if s.Catalog == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotConfigured, "version catalog not configured"))
		return
	}
	g, a := chi.URLParam(r, "group"), chi.URLParam(r, "artifact")
	seq, err := s.Catalog.AllVersions(r.Context(), g, a, r.URL.Query().Get("refresh") == "true")
	if err != nil {
		s.writeError(w, err)
		return
	}
	versions := slices.Collect(seq)
	if versions == nil {
		versions = []string{}
	}
	writeJSON(w, http.StatusOK, VersionsResponse{GroupID: g, ArtifactID: a, Versions: versions})
}
