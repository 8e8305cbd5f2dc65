package handler

import (
	"net/http"

	"github.com/loopspot/loopspot/internal/domain"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// ProfileResponse is the body of GET /profile.
type ProfileResponse struct {
	DisplayName string `json:"displayName"`
}

// GetHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// GetOpenAPI handles GET /openapi.yaml.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	if len(s.openAPI) == 0 {
		writeJSON(w, http.StatusNotFound, notFoundBody("no API description configured"))
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(s.openAPI)
}

// GetProfile handles GET /profile: the name to greet the user with.
func (s *Server) GetProfile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ProfileResponse{DisplayName: domain.DisplayName(s.profile.DisplayName, s.profile.Email)})
}

// GetMapCenter handles GET /map/center. It always succeeds: without a
// position it returns the default region.
func (s *Server) GetMapCenter(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.region.Region(r.Context()))
}
