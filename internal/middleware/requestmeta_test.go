package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/url-hashprefix/internal/handlers"
	"github.com/serroba/url-hashprefix/internal/middleware"
	"github.com/stretchr/testify/assert"
)

type testOutput struct {
	Body string `json:"body"`
}

func fixedID() string {
	return "generated-id"
}

// serveMeta sends req through the RequestMeta middleware and returns the captured metadata.
func serveMeta(
	t *testing.T,
	req *http.Request,
	clientIP middleware.ClientIPFunc,
) (handlers.RequestMeta, *httptest.ResponseRecorder) {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestMeta(api, fixedID, clientIP))

	metaChan := make(chan handlers.RequestMeta, 1)

	huma.Get(api, "/test", func(ctx context.Context, _ *struct{}) (*testOutput, error) {
		metaChan <- handlers.RequestMetaFromContext(ctx)

		return &testOutput{Body: "ok"}, nil
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	return <-metaChan, w
}

func TestRequestMeta(t *testing.T) {
	t.Run("extracts user-agent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("User-Agent", "TestAgent/1.0")

		meta, _ := serveMeta(t, req, middleware.RemoteIP)

		assert.Equal(t, "TestAgent/1.0", meta.UserAgent)
	})

	t.Run("generates request id and echoes it", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)

		meta, w := serveMeta(t, req, middleware.RemoteIP)

		assert.Equal(t, "generated-id", meta.RequestID)
		assert.Equal(t, "generated-id", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("keeps incoming request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(middleware.RequestIDHeader, "upstream-id")

		meta, w := serveMeta(t, req, middleware.RemoteIP)

		assert.Equal(t, "upstream-id", meta.RequestID)
		assert.Equal(t, "upstream-id", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("extracts IP from X-Forwarded-For with single IP", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.1")

		meta, _ := serveMeta(t, req, middleware.ForwardedIP)

		assert.Equal(t, "192.168.1.1", meta.ClientIP)
	})

	t.Run("extracts first IP from X-Forwarded-For with multiple IPs", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1, 172.16.0.1")

		meta, _ := serveMeta(t, req, middleware.ForwardedIP)

		assert.Equal(t, "192.168.1.1", meta.ClientIP)
	})

	t.Run("extracts IP from X-Real-IP when X-Forwarded-For is absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")

		meta, _ := serveMeta(t, req, middleware.ForwardedIP)

		assert.Equal(t, "10.0.0.1", meta.ClientIP)
	})

	t.Run("falls back to remote addr when no IP headers present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "198.51.100.4:5555"

		meta, _ := serveMeta(t, req, middleware.RemoteIP)

		assert.Equal(t, "198.51.100.4", meta.ClientIP)
	})

	t.Run("ignores X-Forwarded-For without a trusted proxy", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "198.51.100.4:5555"
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		req.Header.Set("X-Real-IP", "203.0.113.9")

		meta, _ := serveMeta(t, req, middleware.RemoteIP)

		assert.Equal(t, "198.51.100.4", meta.ClientIP)
	})
}
