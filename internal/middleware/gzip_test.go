package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestGzipMiddleware(t *testing.T) {
	tests := []struct {
		name             string
		acceptEncoding   string
		contentEncoding  string
		requestBody      []byte
		handlerStatus    int
		expectedStatus   int
		expectedBody     string
		checkCompression bool
	}{
		{
			name:             "Compress response when client supports gzip",
			acceptEncoding:   "gzip, deflate",
			requestBody:      []byte("test request"),
			handlerStatus:    http.StatusOK,
			expectedStatus:   http.StatusOK,
			expectedBody:     "test response",
			checkCompression: true,
		},
		{
			name:           "Do not compress when client does not support gzip",
			requestBody:    []byte("test request"),
			handlerStatus:  http.StatusOK,
			expectedStatus: http.StatusOK,
			expectedBody:   "test response",
		},
		{
			name:           "Do not compress 204",
			acceptEncoding: "gzip",
			handlerStatus:  http.StatusNoContent,
			expectedStatus: http.StatusNoContent,
		},
		{
			name:            "Decompress gzipped request",
			contentEncoding: "gzip",
			handlerStatus:   http.StatusOK,
			expectedStatus:  http.StatusOK,
			expectedBody:    "test response",
		},
		{
			name:            "Reject invalid gzip request",
			contentEncoding: "gzip",
			requestBody:     []byte("invalid gzip data"),
			expectedStatus:  http.StatusBadRequest,
			expectedBody:    "Invalid gzip body\n",
		},
		{
			name:            "Reject empty gzipped request",
			contentEncoding: "gzip",
			requestBody:     nil,
			expectedStatus:  http.StatusBadRequest,
			expectedBody:    "Empty request body\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := tt.requestBody
			if tt.name == "Decompress gzipped request" {
				body = gzipped(t, "test request")
			}

			called := false
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				got, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				if tt.contentEncoding == "gzip" {
					assert.Equal(t, "test request", string(got))
					assert.Empty(t, r.Header.Get("Content-Encoding"))
				}

				w.WriteHeader(tt.handlerStatus)
				if tt.handlerStatus != http.StatusNoContent {
					_, _ = w.Write([]byte(tt.expectedBody))
				}
			})

			var reader io.Reader = http.NoBody
			if body != nil {
				reader = bytes.NewReader(body)
			}
			req := httptest.NewRequest(http.MethodPost, "/", reader)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			if tt.contentEncoding != "" {
				req.Header.Set("Content-Encoding", tt.contentEncoding)
			}
			w := httptest.NewRecorder()

			GzipMiddleware(handler).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.handlerStatus == 0 {
				assert.False(t, called)
			}

			if tt.checkCompression {
				assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
				assert.Contains(t, w.Header().Values("Vary"), "Accept-Encoding")

				gz, err := gzip.NewReader(w.Body)
				require.NoError(t, err)
				defer gz.Close()
				got, err := io.ReadAll(gz)
				require.NoError(t, err)
				assert.Equal(t, tt.expectedBody, string(got))
				return
			}

			assert.Empty(t, w.Header().Get("Content-Encoding"))
			assert.Equal(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestGzipMiddleware_KeepsHandlerHeaders(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Correlation-ID", "abc")
		_, _ = w.Write([]byte(strings.Repeat("a", 1024)))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()

	GzipMiddleware(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", w.Header().Get("X-Correlation-ID"))
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	assert.Less(t, w.Body.Len(), 1024)
}

func TestGzipMiddleware_EmptyBodyIsValidStream(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()

	GzipMiddleware(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	gz, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestGzipMiddleware_NoContentHasNoBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()

	GzipMiddleware(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Zero(t, w.Body.Len())
}
