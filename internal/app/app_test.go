package app

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/InQaaaaGit/usersvc.git/internal/buildinfo"
	"github.com/InQaaaaGit/usersvc.git/internal/config"
	"github.com/InQaaaaGit/usersvc.git/internal/metrics"
	"github.com/InQaaaaGit/usersvc.git/internal/models"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const header = "X-Correlation-ID"

func newTestApp(t *testing.T, mutate func(cfg *config.Config)) *App {
	t.Helper()
	cfg := config.Default()
	cfg.StaticDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.StaticDir, "site.css"), []byte("body{}"), 0o600))
	if mutate != nil {
		mutate(cfg)
	}

	a, err := NewApp(cfg, zap.NewNop(), buildinfo.NewInfo("v0.1.0", "", ""))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, a.Close()) })
	return a
}

func serve(a *App, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	return w
}

func TestNewApp(t *testing.T) {
	a := newTestApp(t, nil)
	assert.NotNil(t, a.router)
	assert.NotNil(t, a.logger)
	assert.NotNil(t, a.handler)
	assert.NotNil(t, a.storage)

	server := a.GetServer()
	assert.Equal(t, a.config.ServerAddress, server.Addr)
	assert.NotNil(t, server.Handler)
}

func TestNewApp_BadMatcher(t *testing.T) {
	cfg := config.Default()
	cfg.CorrelationExclude = []string{"static/**"}

	_, err := NewApp(cfg, zap.NewNop(), nil)
	assert.Error(t, err)
}

func TestAppRoutes(t *testing.T) {
	a := newTestApp(t, nil)

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		headers        map[string]string
		expectedStatus int
		expectHeader   bool
	}{
		{name: "ping", method: http.MethodGet, path: "/ping", expectedStatus: http.StatusOK, expectHeader: true},
		{name: "list users", method: http.MethodGet, path: "/api/users", expectedStatus: http.StatusOK, expectHeader: true},
		{name: "unknown user", method: http.MethodGet, path: "/api/users/missing", expectedStatus: http.StatusNotFound, expectHeader: true},
		{name: "version", method: http.MethodGet, path: "/api/version", expectedStatus: http.StatusOK, expectHeader: true},
		{name: "index page", method: http.MethodGet, path: "/", expectedStatus: http.StatusOK, expectHeader: true},
		{name: "unknown user page", method: http.MethodGet, path: "/users/missing", expectedStatus: http.StatusNotFound, expectHeader: true},
		{name: "unknown route", method: http.MethodGet, path: "/nope", expectedStatus: http.StatusNotFound, expectHeader: true},
		{
			name:           "bad content type",
			method:         http.MethodPost,
			path:           "/api/users",
			body:           `{}`,
			headers:        map[string]string{"Content-Type": "text/plain"},
			expectedStatus: http.StatusUnsupportedMediaType,
			expectHeader:   true,
		},
		{name: "static file", method: http.MethodGet, path: "/static/site.css", expectedStatus: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(a, tt.method, tt.path, tt.body, tt.headers)

			assert.Equal(t, tt.expectedStatus, w.Code)
			got := w.Header().Get(header)
			if !tt.expectHeader {
				assert.Empty(t, got)
				return
			}
			parsed, err := uuid.Parse(got)
			require.NoError(t, err)
			assert.Equal(t, uuid.Version(4), parsed.Version())
		})
	}
}

func TestCorrelationEcho(t *testing.T) {
	a := newTestApp(t, nil)

	w := serve(a, http.MethodPost, "/api/users", `{"name":"Ann","email":"ann@example.com"}`, map[string]string{
		"Content-Type": "application/json",
		header:         "client-trace-1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "client-trace-1", w.Header().Get(header))

	var user models.User
	require.NoError(t, json.NewDecoder(w.Body).Decode(&user))

	w = serve(a, http.MethodGet, "/api/users/"+user.ID, "", map[string]string{header: "client-trace-2"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "client-trace-2", w.Header().Get(header))

	w = serve(a, http.MethodPost, "/api/users", `{"name":"Ann","email":"ANN@example.com"}`, map[string]string{
		"Content-Type": "application/json",
		header:         "client-trace-3",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "client-trace-3", resp.CorrelationID)
	assert.Equal(t, "client-trace-3", w.Header().Get(header))
}

func TestCorrelationInPingAndPages(t *testing.T) {
	a := newTestApp(t, nil)

	w := serve(a, http.MethodGet, "/ping", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ping models.PingResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&ping))
	assert.Equal(t, w.Header().Get(header), ping.CorrelationID)

	w = serve(a, http.MethodGet, "/", "", map[string]string{header: "page-trace"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<meta name="correlation-id" content="page-trace">`)
	assert.Contains(t, w.Body.String(), "v0.1.0")
}

func TestCorrelationWithGzip(t *testing.T) {
	a := newTestApp(t, nil)

	w := serve(a, http.MethodGet, "/api/version", "", map[string]string{
		"Accept-Encoding": "gzip",
		header:            "zip-trace",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	assert.Equal(t, "zip-trace", w.Header().Get(header))

	gz, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	defer gz.Close()
	var info buildinfo.Info
	require.NoError(t, json.NewDecoder(gz).Decode(&info))
	assert.Equal(t, "v0.1.0", info.Version)
}

func TestCustomCorrelationConfig(t *testing.T) {
	a := newTestApp(t, func(cfg *config.Config) {
		cfg.CorrelationHeader = "x-request-id"
		cfg.CorrelationInclude = []string{"/api/**"}
		cfg.CorrelationExclude = []string{"/api/version"}
	})

	w := serve(a, http.MethodGet, "/api/users", "", map[string]string{"X-Request-Id": "custom"})
	assert.Equal(t, "custom", w.Header().Get("X-Request-Id"))
	assert.Empty(t, w.Header().Get(header))

	w = serve(a, http.MethodGet, "/api/version", "", map[string]string{"X-Request-Id": "custom"})
	assert.Empty(t, w.Header().Get("X-Request-Id"))

	w = serve(a, http.MethodGet, "/ping", "", nil)
	assert.Empty(t, w.Header().Get("X-Request-Id"))
}

func TestMetricsExposeCorrelationSources(t *testing.T) {
	a := newTestApp(t, nil)

	serve(a, http.MethodGet, "/ping", "", nil)
	serve(a, http.MethodGet, "/ping", "", map[string]string{header: "given"})

	w := serve(a, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `usersvc_correlation_ids_total{source="generated"}`)
	assert.Contains(t, body, `usersvc_correlation_ids_total{source="inbound-header"}`)
	assert.Contains(t, body, `usersvc_http_requests_total{code="200",method="GET"}`)
}

func TestMetricsBoundUnknownMethods(t *testing.T) {
	a := newTestApp(t, nil)

	serve(a, "JUNK", "/api/users", "", nil)
	before := testutil.CollectAndCount(metrics.HTTPRequests)

	for i := 0; i < 200; i++ {
		w := serve(a, "JUNK"+strconv.Itoa(i), "/api/users", "", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	}

	assert.Equal(t, before, testutil.CollectAndCount(metrics.HTTPRequests))
	assert.Equal(t, before, testutil.CollectAndCount(metrics.HTTPRequestDuration))
}
