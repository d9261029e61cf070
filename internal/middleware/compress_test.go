package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonHandler(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func TestCompressJSON(t *testing.T) {
	large := `{"items":"` + strings.Repeat("x", 2048) + `"}`

	t.Run("compresses large JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", "gzip, deflate")
		rec := httptest.NewRecorder()

		CompressJSON(DefaultCompressMinSize)(jsonHandler(http.StatusCreated, large)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		gz, err := gzip.NewReader(rec.Body)
		require.NoError(t, err)
		got, err := io.ReadAll(gz)
		require.NoError(t, err)
		assert.Equal(t, large, string(got))
	})

	tests := []struct {
		name           string
		acceptEncoding string
		body           string
	}{
		{"small body", "gzip", `{"ok":true}`},
		{"client without gzip", "", large},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			rec := httptest.NewRecorder()

			CompressJSON(DefaultCompressMinSize)(jsonHandler(http.StatusOK, tt.body)).ServeHTTP(rec, req)

			assert.Empty(t, rec.Header().Get("Content-Encoding"))
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}

	t.Run("skips non-JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = io.WriteString(w, strings.Repeat("y", 4096))
		})

		CompressJSON(DefaultCompressMinSize)(next).ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, 4096, rec.Body.Len())
	})
}

func TestIsJSON(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/problem+json", true},
		{"text/html", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isJSON(tt.contentType); got != tt.want {
			t.Errorf("isJSON(%q) = %v, want %v", tt.contentType, got, tt.want)
		}
	}
}
