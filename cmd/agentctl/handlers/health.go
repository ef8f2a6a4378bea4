package handlers

import (
	"net/http"
)

// BuildInfo identifies the running agentctl binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status string `json:"status"`
	BuildInfo
}

// HealthHandler reports liveness along with the build that is serving.
func HealthHandler(info BuildInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{Status: "healthy", BuildInfo: info})
	}
}
