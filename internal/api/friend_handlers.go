package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/teamloop/teamloop-server/internal/http/response"
	"github.com/teamloop/teamloop-server/internal/service"
)

// sendFriendRequestBody is the request body for sending a friend request.
type sendFriendRequestBody struct {
	ReceiverID string `json:"receiver_id"`
}

// handleSendFriendRequest sends a friend request to another user.
func (s *Server) handleSendFriendRequest(w http.ResponseWriter, r *http.Request) {
	var req sendFriendRequestBody
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	resp, err := s.friendService.SendFriendRequest(r.Context(), getUserID(r.Context()), req.ReceiverID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, resp, s.logger)
}

// handleAcceptFriendRequest accepts a pending request from {userId}.
func (s *Server) handleAcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	requesterID := chi.URLParam(r, "userId")

	resp, err := s.friendService.AcceptFriendRequest(r.Context(), requesterID, getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resp, s.logger)
}

// handleRejectFriendRequest rejects a pending request from {userId}.
func (s *Server) handleRejectFriendRequest(w http.ResponseWriter, r *http.Request) {
	requesterID := chi.URLParam(r, "userId")

	if err := s.friendService.RejectFriendRequest(r.Context(), requesterID, getUserID(r.Context())); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleRemoveFriend removes an accepted friendship with {userId}.
func (s *Server) handleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	friendID := chi.URLParam(r, "userId")

	if err := s.friendService.RemoveFriend(r.Context(), getUserID(r.Context()), friendID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleListFriends returns the caller's accepted friends.
func (s *Server) handleListFriends(w http.ResponseWriter, r *http.Request) {
	query := listQueryFromRequest(r)
	query.UserID = getUserID(r.Context())

	resp, err := s.friendService.GetFriends(r.Context(), query)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resp, s.logger)
}

// handleListFriendRequests returns pending requests. The direction
// query selects received (default) or sent.
func (s *Server) handleListFriendRequests(w http.ResponseWriter, r *http.Request) {
	query := listQueryFromRequest(r)
	query.UserID = getUserID(r.Context())

	direction := service.RequestsReceived
	if r.URL.Query().Get("direction") == string(service.RequestsSent) {
		direction = service.RequestsSent
	}

	resp, err := s.friendService.GetFriendRequests(r.Context(), query, direction)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, resp, s.logger)
}

// listQueryFromRequest parses offset and limit query parameters.
func listQueryFromRequest(r *http.Request) service.ListQuery {
	var query service.ListQuery
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			query.Offset = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			query.Limit = n
		}
	}
	return query
}
