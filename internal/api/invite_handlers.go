package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teamloop/teamloop-server/internal/http/response"
)

// generateInviteBody is the request body for creating an invite link.
type generateInviteBody struct {
	ExpiresInHours int `json:"expires_in_hours"`
	MaxUses        int `json:"max_uses"`
}

// handleGenerateInvite creates an invite link for a project.
func (s *Server) handleGenerateInvite(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	var req generateInviteBody
	if r.ContentLength > 0 {
		if err := json.UnmarshalRead(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid request body", s.logger)
			return
		}
	}

	resp, err := s.inviteService.GenerateInviteLink(r.Context(), projectID, getUserID(r.Context()), req.ExpiresInHours, req.MaxUses)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, resp, s.logger)
}

// handleValidateInvite resolves an invite code. Public; an
// authenticated caller also learns whether they already belong to the
// target project.
func (s *Server) handleValidateInvite(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	resp, err := s.inviteService.ValidateInviteCode(r.Context(), code, s.optionalUserID(r))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resp, s.logger)
}

// handleRevokeInvite withdraws an invite code.
func (s *Server) handleRevokeInvite(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if err := s.inviteService.RevokeInvite(r.Context(), code, getUserID(r.Context())); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleListProjectInvites lists a project's invites.
func (s *Server) handleListProjectInvites(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	invites, err := s.inviteService.ListProjectInvites(r.Context(), projectID, getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, invites, s.logger)
}

// handleJoinProject consumes an invite code for the caller.
func (s *Server) handleJoinProject(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	resp, err := s.memberService.JoinProjectWithInvite(r.Context(), code, getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resp, s.logger)
}
