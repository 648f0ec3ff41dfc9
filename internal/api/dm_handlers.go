package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/teamloop/teamloop-server/internal/http/response"
)

// openConversationBody is the request body for opening a DM channel.
type openConversationBody struct {
	UserID string `json:"user_id"`
}

// handleOpenConversation ensures a DM channel with another user exists.
func (s *Server) handleOpenConversation(w http.ResponseWriter, r *http.Request) {
	var req openConversationBody
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	channel, err := s.dmService.EnsureDMChannel(r.Context(), getUserID(r.Context()), req.UserID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, channel, s.logger)
}

// handleListConversations lists the caller's DM conversations.
func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	views, err := s.dmService.ListConversations(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, views, s.logger)
}
