package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopspot/loopspot/internal/domain"
	"github.com/loopspot/loopspot/internal/handler"
	"github.com/loopspot/loopspot/internal/service"
)

// TestGetHealth_returns200WithOKStatus verifies that GET /healthz returns
// HTTP 200 and a JSON body of {"status":"ok"}.
func TestGetHealth_returns200WithOKStatus(t *testing.T) {
	// Arrange: wire the health-only server through the router.
	httpHandler := handler.Handler(handler.NewHealthHandler())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	// Act
	httpHandler.ServeHTTP(rec, req)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)

	var body handler.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "ok", body.Status)
}

func TestGetOpenAPI(t *testing.T) {
	doc := []byte("openapi: 3.0.3\n")
	h := handler.Handler(handler.NewServer(nil, nil, nil, nil, handler.WithOpenAPI(doc)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Equal(t, string(doc), rec.Body.String())
}

func TestGetProfile_FallsBackToEmail(t *testing.T) {
	h := handler.Handler(handler.NewServer(nil, nil, nil, nil,
		handler.WithProfile(handler.Profile{Email: "sam@example.com"})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.ProfileResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "sam", body.DisplayName)
}

func TestGetMapCenter_DefaultRegion(t *testing.T) {
	fallback := domain.Coordinate{Latitude: 37.78825, Longitude: -122.4324}
	failing := service.LocatorFunc(func(context.Context) (domain.Coordinate, error) {
		return domain.Coordinate{}, assert.AnError
	})
	h := handler.Handler(handler.NewServer(nil, nil, nil, service.NewMapCenter(failing, fallback, nil)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/map/center", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body service.Region
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, fallback, body.Center)
	assert.False(t, body.Located)
}
