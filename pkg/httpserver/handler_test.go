package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lhanjian/yarhs/pkg/domain"
)

func newHandlerTestSnapshot() *domain.ConfigSnapshot {
	return &domain.ConfigSnapshot{
		Routes: domain.DefaultRoutesBundle(),
		HTTP:   domain.HTTPConfig{DefaultContentType: "text/plain", ServerName: "yarhs-test", MaxBodySize: 16},
	}
}

func TestHandlerHealthCheck(t *testing.T) {
	registry := domain.NewRegistry(newHandlerTestSnapshot())
	h := NewHandler(registry, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	registry := domain.NewRegistry(newHandlerTestSnapshot())
	h := NewHandler(registry, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/anything", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD, OPTIONS", rec.Header().Get("Allow"))
}

func TestHandlerOptionsIsNoContent(t *testing.T) {
	registry := domain.NewRegistry(newHandlerTestSnapshot())
	h := NewHandler(registry, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/anything", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandlerRejectsOversizedBody(t *testing.T) {
	registry := domain.NewRegistry(newHandlerTestSnapshot())
	h := NewHandler(registry, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Content-Length", "1000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandlerDirectActionFromCustomRoute(t *testing.T) {
	snap := newHandlerTestSnapshot()
	snap.Routes.SetCustomRoute("/hello", domain.RouteAction{Type: domain.ActionDirect, Status: 200, Body: "world"})
	registry := domain.NewRegistry(snap)
	h := NewHandler(registry, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "world", rec.Body.String())
}

func TestHandlerUnmatchedPathIs404(t *testing.T) {
	registry := domain.NewRegistry(newHandlerTestSnapshot())
	h := NewHandler(registry, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerSetsServerHeader(t *testing.T) {
	registry := domain.NewRegistry(newHandlerTestSnapshot())
	h := NewHandler(registry, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "yarhs-test", rec.Header().Get("Server"))
}

func TestHandlerRedirectAction(t *testing.T) {
	snap := newHandlerTestSnapshot()
	snap.Routes.SetCustomRoute("/old", domain.RouteAction{Type: domain.ActionRedirect, Target: "/new"})
	registry := domain.NewRegistry(snap)
	h := NewHandler(registry, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/old", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code, "expected default redirect code")
	assert.Equal(t, "/new", rec.Header().Get("Location"))
}
