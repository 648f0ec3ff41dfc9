package api

import (
	"net/http"

	"github.com/teamloop/teamloop-server/internal/http/response"
)

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealthCheck reports server health.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, HealthResponse{Status: "ok"}, s.logger)
}
