package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teamloop/teamloop-server/internal/http/response"
	"github.com/teamloop/teamloop-server/internal/service"
)

// handleCreateProject creates a project owned by the caller.
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProjectRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	project, err := s.projectService.CreateProject(r.Context(), getUserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, project, s.logger)
}

// handleListProjects lists the caller's projects.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	entries, err := s.projectService.ListProjects(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, entries, s.logger)
}

// handleGetProject returns one project for an active member.
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	project, err := s.projectService.GetProject(r.Context(), projectID, getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, project, s.logger)
}

// handleDeleteProject soft-deletes a project. Owner only.
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	if err := s.projectService.DeleteProject(r.Context(), projectID, getUserID(r.Context())); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleListMembers lists a project's members.
func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	members, err := s.memberService.ListMembers(r.Context(), projectID, getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, members, s.logger)
}

// handleRemoveMember removes another user from a project.
func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	userID := chi.URLParam(r, "userId")

	resp, err := s.memberService.RemoveMember(r.Context(), projectID, userID, getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resp, s.logger)
}

// handleBlockMember blocks a member from a project.
func (s *Server) handleBlockMember(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	userID := chi.URLParam(r, "userId")

	if err := s.memberService.BlockMember(r.Context(), projectID, userID, getUserID(r.Context())); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleLeaveProject removes the caller's own membership.
func (s *Server) handleLeaveProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	resp, err := s.memberService.LeaveProject(r.Context(), projectID, getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resp, s.logger)
}
