package api

import (
	"context"
	"encoding/json"
	"io"
	"iter"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/mvnbox/pkg/buildspec"
	"github.com/matzehuels/mvnbox/pkg/errors"
	"github.com/matzehuels/mvnbox/pkg/integrations"
	"github.com/matzehuels/mvnbox/pkg/runner"
	"github.com/matzehuels/mvnbox/pkg/sandbox"
	"github.com/matzehuels/mvnbox/pkg/version"
)

type fakeCatalog map[string][]string

func (c fakeCatalog) AllVersions(_ context.Context, g, a string, _ bool) (iter.Seq[string], error) {
	v, ok := c[g+":"+a]
	if !ok {
		return nil, errors.Wrap(errors.ErrCodeNotFound, integrations.ErrNotFound, "%s:%s", g, a)
	}
	return slices.Values(v), nil
}

func newTestServer(t *testing.T, s *Server) *httptest.Server {
	t.Helper()
	if s.Logger == nil {
		s.Logger = log.New(io.Discard)
	}
	srv := httptest.NewServer(NewHandler(s))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]any
	json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestBuild(t *testing.T) {
	var got *buildspec.BuildSpec
	srv := newTestServer(t, &Server{Runner: runner.Func(func(_ context.Context, s *buildspec.BuildSpec) error {
		got = s
		return nil
	})})

	resp, body := post(t, srv.URL+"/v1/builds",
		`{"dir":"/work","goals":["clean","install"],"options":["B"],"properties":{"skipTests":null,"x":"1"},"bare":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %v", resp.StatusCode, body)
	}
	if body["success"] != true || body["exitCode"] != float64(0) || body["id"] == "" {
		t.Errorf("body = %v", body)
	}
	want := []string{"clean", "install", "-B", "-DskipTests", "-Dx=1"}
	if !slices.Equal(got.Args(), want) {
		t.Errorf("Args() = %v, want %v", got.Args(), want)
	}
}

func TestBuild_Failed(t *testing.T) {
	srv := newTestServer(t, &Server{Runner: runner.Func(func(context.Context, *buildspec.BuildSpec) error {
		return errors.Wrap(errors.ErrCodeExecution, &sandbox.ExitError{Code: 1}, "maven build failed")
	})})

	resp, body := post(t, srv.URL+"/v1/builds", `{"dir":"/work","goals":["verify"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["success"] != false || body["exitCode"] != float64(1) || body["error"] == "" {
		t.Errorf("body = %v", body)
	}
}

func TestBuild_Rejected(t *testing.T) {
	called := false
	srv := newTestServer(t, &Server{Runner: runner.Func(func(context.Context, *buildspec.BuildSpec) error {
		called = true
		return nil
	})})

	tests := []struct {
		name, body string
		status     int
	}{
		{"malformed", `{"dir":`, http.StatusBadRequest},
		{"unknown field", `{"dir":"/w","goals":["a"],"extra":1}`, http.StatusBadRequest},
		{"no dir", `{"goals":["verify"]}`, http.StatusBadRequest},
		{"blank goal", `{"dir":"/w","goals":[" "]}`, http.StatusBadRequest},
		{"bad property", `{"dir":"/w","goals":["a"],"properties":{"":"x"}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, srv.URL+"/v1/builds", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if body["code"] != string(errors.ErrCodeInvalidInput) {
				t.Errorf("code = %v", body["code"])
			}
		})
	}
	if called {
		t.Error("runner should not be called")
	}
}

func TestBuild_NoRunner(t *testing.T) {
	prev := runner.Default
	runner.Default = &runner.Registry{}
	t.Cleanup(func() { runner.Default = prev })

	srv := newTestServer(t, &Server{})
	resp, body := post(t, srv.URL+"/v1/builds", `{"dir":"/w","goals":["verify"]}`)
	if resp.StatusCode != http.StatusServiceUnavailable || body["code"] != string(errors.ErrCodeNotConfigured) {
		t.Errorf("status = %d, body = %v", resp.StatusCode, body)
	}
}

func TestResolve(t *testing.T) {
	srv := newTestServer(t, &Server{Resolve: func(_ context.Context, module string, cp []version.ClasspathEntry) (*semver.Version, error) {
		switch module {
		case "maven-core":
			if len(cp) != 1 || cp[0].Path != "/m2/maven-core-3.9.6.jar" {
				t.Errorf("classpath = %+v", cp)
			}
			return semver.MustParse("3.9.6"), nil
		case "broken":
			return nil, errors.New(errors.ErrCodeResolution, "bad manifest")
		}
		return nil, nil
	}})

	_, body := post(t, srv.URL+"/v1/resolve", `{"module":"maven-core","classpath":[{"path":"/m2/maven-core-3.9.6.jar"}]}`)
	if body["found"] != true || body["version"] != "3.9.6" {
		t.Errorf("body = %v", body)
	}

	resp, body := post(t, srv.URL+"/v1/resolve", `{"module":"other","classpath":[]}`)
	if resp.StatusCode != http.StatusOK || body["found"] != false {
		t.Errorf("absent: status = %d, body = %v", resp.StatusCode, body)
	}

	resp, body = post(t, srv.URL+"/v1/resolve", `{"module":"broken"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity || body["code"] != string(errors.ErrCodeResolution) {
		t.Errorf("broken: status = %d, body = %v", resp.StatusCode, body)
	}

	resp, _ = post(t, srv.URL+"/v1/resolve", `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing module: status = %d", resp.StatusCode)
	}
}

func TestVersions(t *testing.T) {
	srv := newTestServer(t, &Server{Catalog: fakeCatalog{"junit:junit": {"4.13.2", "4.12"}}})

	resp, err := http.Get(srv.URL + "/v1/versions/junit/junit")
	if err != nil {
		t.Fatal(err)
	}
	var body VersionsResponse
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if !slices.Equal(body.Versions, []string{"4.13.2", "4.12"}) {
		t.Errorf("versions = %v", body.Versions)
	}

	resp, err = http.Get(srv.URL + "/v1/versions/org.example/missing")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing artifact status = %d", resp.StatusCode)
	}

	bare := newTestServer(t, &Server{})
	resp, err = http.Get(bare.URL + "/v1/versions/junit/junit")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("no catalog status = %d", resp.StatusCode)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "mvnbox_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	srv := newTestServer(t, &Server{Gatherer: reg})
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), "mvnbox_test_total 1") {
		t.Errorf("metrics output:\n%s", data)
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[errors.Code]int{
		errors.ErrCodeInvalidInput:  http.StatusBadRequest,
		errors.ErrCodeNotFound:      http.StatusNotFound,
		errors.ErrCodeExecution:     http.StatusUnprocessableEntity,
		errors.ErrCodeNetwork:       http.StatusBadGateway,
		errors.ErrCodeEnvironment:   http.StatusServiceUnavailable,
		errors.ErrCodeInternal:      http.StatusInternalServerError,
		errors.ErrCodeIO:            http.StatusInternalServerError,
		errors.ErrCodeNotConfigured: http.StatusServiceUnavailable,
	}
	for code, want := range tests {
		if got := statusFor(code); got != want {
			t.Errorf("statusFor(%s) = %d, want %d", code, got, want)
		}
	}
}
