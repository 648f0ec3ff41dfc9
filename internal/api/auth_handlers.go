package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/teamloop/teamloop-server/internal/http/response"
	"github.com/teamloop/teamloop-server/internal/service"
)

// logoutRequest is the request body for logout.
type logoutRequest struct {
	SessionID string `json:"session_id"`
}

// handleRegister creates a new account and returns tokens.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	resp, err := s.authService.Register(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	// Hash never leaves the server.
	resp.User.PasswordHash = ""
	response.Created(w, resp, s.logger)
}

// handleLogin authenticates a user and returns tokens.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	req.IPAddress = getClientIP(r)

	resp, err := s.authService.Login(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	resp.User.PasswordHash = ""
	response.Success(w, resp, s.logger)
}

// handleRefresh exchanges a refresh token for new tokens.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req service.RefreshRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	req.IPAddress = getClientIP(r)

	resp, err := s.authService.RefreshTokens(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	resp.User.PasswordHash = ""
	response.Success(w, resp, s.logger)
}

// handleLogout revokes a session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if req.SessionID == "" {
		response.BadRequest(w, "session_id is required", s.logger)
		return
	}

	if err := s.authService.Logout(r.Context(), req.SessionID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleGetCurrentUser returns the authenticated user's record.
func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r.Context())

	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		response.NotFound(w, "User not found", s.logger)
		return
	}

	user.PasswordHash = ""
	response.Success(w, user, s.logger)
}
