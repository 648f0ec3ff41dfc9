package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamloop/teamloop-server/internal/domain"
	domainerrors "github.com/teamloop/teamloop-server/internal/errors"
	"github.com/teamloop/teamloop-server/internal/store"
)

// FriendService orchestrates the friend request lifecycle across both
// participants' friend indexes.
type FriendService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewFriendService creates a new friend service.
func NewFriendService(store *store.Store, logger *slog.Logger) *FriendService {
	return &FriendService{
		store:  store,
		logger: logger,
	}
}

// FriendView is one entry in a friend or request listing, hydrated with
// the peer's current public profile.
type FriendView struct {
	UserID          string              `json:"user_id"`
	DisplayName     string              `json:"display_name"`
	ProfileImageURL string              `json:"profile_image_url,omitempty"`
	Status          domain.FriendStatus `json:"status"`
	RequestedAt     time.Time           `json:"requested_at"`
	AcceptedAt      *time.Time          `json:"accepted_at,omitempty"`
}

// FriendListResponse is a paginated friend or request listing.
type FriendListResponse struct {
	Friends []FriendView `json:"friends"`
	Total   int          `json:"total"`
	HasMore bool         `json:"has_more"`
}

// SendFriendRequestResponse is returned after a request is created.
type SendFriendRequestResponse struct {
	FriendRequestID string              `json:"friend_request_id"`
	Status          domain.FriendStatus `json:"status"`
	RequestedAt     time.Time           `json:"requested_at"`
}

// AcceptFriendRequestResponse is returned after a request is accepted.
type AcceptFriendRequestResponse struct {
	FriendID   string              `json:"friend_id"`
	Status     domain.FriendStatus `json:"status"`
	AcceptedAt time.Time           `json:"accepted_at"`
}

// SendFriendRequest creates the two complementary edges of a new
// request: REQUESTED under the requester, PENDING under the receiver.
// Both edges are written in one transaction, so a completed request is
// always visible to both sides.
func (s *FriendService) SendFriendRequest(ctx context.Context, requesterID, receiverID string) (*SendFriendRequestResponse, error) {
	if requesterID == "" || receiverID == "" {
		return nil, domainerrors.Validation("requester and receiver IDs are required")
	}
	if requesterID == receiverID {
		return nil, domainerrors.Validation("cannot send a friend request to yourself")
	}

	requester, err := s.store.GetUser(ctx, requesterID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFoundResource("user", requesterID)
		}
		return nil, fmt.Errorf("get requester: %w", err)
	}

	receiver, err := s.store.GetUser(ctx, receiverID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFoundResource("user", receiverID)
		}
		return nil, fmt.Errorf("get receiver: %w", err)
	}

	if !receiver.CanReceiveFriendRequests() {
		return nil, domainerrors.Conflict("user is not accepting friend requests")
	}

	alreadyFriends, err := s.store.AreUsersFriends(ctx, requesterID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("check friendship: %w", err)
	}
	if alreadyFriends {
		return nil, domainerrors.Conflict("users are already friends")
	}

	// An open request in either direction blocks a new one.
	for _, pair := range [][2]string{{requesterID, receiverID}, {receiverID, requesterID}} {
		open, err := s.store.FriendRequestExists(ctx, pair[0], pair[1])
		if err != nil {
			return nil, fmt.Errorf("check existing request: %w", err)
		}
		if open {
			return nil, domainerrors.Conflict("a friend request already exists between these users")
		}
	}

	requestID := friendRequestID(requesterID, receiverID)
	requesterEdge := domain.NewFriendEdge(requestID, receiver.Profile(), domain.FriendStatusRequested)
	receiverEdge := domain.NewFriendEdge(requestID, requester.Profile(), domain.FriendStatusPending)

	if err := s.store.SaveFriendPair(ctx, requesterID, requesterEdge, receiverID, receiverEdge); err != nil {
		return nil, fmt.Errorf("save friend request pair: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Friend request sent",
			"request_id", requestID,
			"requester_id", requesterID,
			"receiver_id", receiverID,
		)
	}

	return &SendFriendRequestResponse{
		FriendRequestID: requestID,
		Status:          requesterEdge.Status,
		RequestedAt:     requesterEdge.RequestedAt,
	}, nil
}

// AcceptFriendRequest transitions the receiver's pending edge to
// accepted. The receiver's write is authoritative; the reciprocal edge
// under the requester is updated (or created) best-effort, and the
// friend counters and DM bootstrap run best-effort afterwards.
func (s *FriendService) AcceptFriendRequest(ctx context.Context, requesterID, receiverID string) (*AcceptFriendRequestResponse, error) {
	if requesterID == "" || receiverID == "" {
		return nil, domainerrors.Validation("requester and receiver IDs are required")
	}
	if requesterID == receiverID {
		return nil, domainerrors.Validation("requester and receiver must differ")
	}

	edge, err := s.store.GetFriend(ctx, receiverID, requesterID)
	if err != nil {
		if errors.Is(err, store.ErrFriendNotFound) {
			return nil, domainerrors.NotFound("no pending friend request from this user")
		}
		return nil, fmt.Errorf("get friend request: %w", err)
	}

	// Only the receiving side of a request holds a PENDING edge. A
	// REQUESTED edge here means the caller sent the request themselves
	// and cannot answer it.
	if edge.Status != domain.FriendStatusPending {
		return nil, domainerrors.ConflictResource("friend request", "status", string(edge.Status))
	}

	if err := edge.Accept(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateFriend(ctx, receiverID, edge); err != nil {
		return nil, fmt.Errorf("save accepted request: %w", err)
	}

	s.acceptReciprocalEdge(ctx, requesterID, receiverID, edge.RequestID)
	s.refreshFriendCounts(ctx, requesterID, receiverID)
	s.bootstrapDM(ctx, requesterID, receiverID)

	if s.logger != nil {
		s.logger.Info("Friend request accepted",
			"request_id", edge.RequestID,
			"requester_id", requesterID,
			"receiver_id", receiverID,
		)
	}

	return &AcceptFriendRequestResponse{
		FriendID:   edge.ID,
		Status:     edge.Status,
		AcceptedAt: *edge.AcceptedAt,
	}, nil
}

// acceptReciprocalEdge moves the requester's edge to accepted,
// constructing it if it went missing. Failures are logged only; the
// accepting side's state is authoritative.
func (s *FriendService) acceptReciprocalEdge(ctx context.Context, requesterID, receiverID, requestID string) {
	reciprocal, err := s.store.GetFriend(ctx, requesterID, receiverID)
	switch {
	case err == nil:
		if reciprocal.IsAccepted() {
			return
		}
		if acceptErr := reciprocal.Accept(); acceptErr != nil {
			s.warn("reciprocal edge in unexpected state", "requester_id", requesterID, "receiver_id", receiverID, "error", acceptErr)
			return
		}
	case errors.Is(err, store.ErrFriendNotFound):
		receiver, userErr := s.store.GetUser(ctx, receiverID)
		if userErr != nil {
			s.warn("failed to rebuild reciprocal edge", "receiver_id", receiverID, "error", userErr)
			return
		}
		reciprocal = domain.NewFriendEdge(requestID, receiver.Profile(), domain.FriendStatusPending)
		if acceptErr := reciprocal.Accept(); acceptErr != nil {
			s.warn("failed to accept rebuilt edge", "error", acceptErr)
			return
		}
	default:
		s.warn("failed to load reciprocal edge", "requester_id", requesterID, "error", err)
		return
	}

	if err := s.store.SaveFriend(ctx, requesterID, reciprocal); err != nil {
		s.warn("failed to save reciprocal edge", "requester_id", requesterID, "error", err)
	}
}

// RejectFriendRequest declines a pending request. The receiver's edge
// is authoritative; the requester's mirror moves best-effort.
func (s *FriendService) RejectFriendRequest(ctx context.Context, requesterID, receiverID string) error {
	if requesterID == "" || receiverID == "" {
		return domainerrors.Validation("requester and receiver IDs are required")
	}

	edge, err := s.store.GetFriend(ctx, receiverID, requesterID)
	if err != nil {
		if errors.Is(err, store.ErrFriendNotFound) {
			return domainerrors.NotFound("no pending friend request from this user")
		}
		return fmt.Errorf("get friend request: %w", err)
	}

	// Same guard as accept: only the receiver's PENDING edge is
	// answerable through this operation.
	if edge.Status != domain.FriendStatusPending {
		return domainerrors.ConflictResource("friend request", "status", string(edge.Status))
	}

	if err := edge.Reject(); err != nil {
		return err
	}
	if err := s.store.UpdateFriend(ctx, receiverID, edge); err != nil {
		return fmt.Errorf("save rejected request: %w", err)
	}

	if reciprocal, recErr := s.store.GetFriend(ctx, requesterID, receiverID); recErr == nil {
		if rejErr := reciprocal.Reject(); rejErr == nil {
			if saveErr := s.store.UpdateFriend(ctx, requesterID, reciprocal); saveErr != nil {
				s.warn("failed to mirror rejection", "requester_id", requesterID, "error", saveErr)
			}
		}
	}

	if s.logger != nil {
		s.logger.Info("Friend request rejected", "requester_id", requesterID, "receiver_id", receiverID)
	}
	return nil
}

// RemoveFriend ends an accepted friendship from both sides. Partial
// success is tolerated; the call fails only if neither side could be
// updated. Friend counters refresh best-effort afterwards.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if userID == "" || friendID == "" {
		return domainerrors.Validation("user and friend IDs are required")
	}
	if userID == friendID {
		return domainerrors.Validation("cannot remove yourself")
	}

	removed := 0
	var lastErr error
	for _, side := range [][2]string{{userID, friendID}, {friendID, userID}} {
		viewer, peer := side[0], side[1]
		edge, err := s.store.GetFriend(ctx, viewer, peer)
		if err != nil {
			lastErr = err
			s.warn("failed to load friend edge for removal", "viewer_id", viewer, "error", err)
			continue
		}
		if err := edge.Remove(); err != nil {
			lastErr = err
			s.warn("friend edge not removable", "viewer_id", viewer, "status", string(edge.Status))
			continue
		}
		if err := s.store.UpdateFriend(ctx, viewer, edge); err != nil {
			lastErr = err
			s.warn("failed to save removed edge", "viewer_id", viewer, "error", err)
			continue
		}
		removed++
	}

	if removed == 0 {
		if lastErr != nil && errors.Is(lastErr, store.ErrFriendNotFound) {
			return domainerrors.NotFound("friendship not found")
		}
		var domainErr *domainerrors.Error
		if lastErr != nil && errors.As(lastErr, &domainErr) {
			return lastErr
		}
		return domainerrors.Internal("failed to remove friendship on either side")
	}

	s.refreshFriendCounts(ctx, userID, friendID)

	if s.logger != nil {
		s.logger.Info("Friend removed", "user_id", userID, "friend_id", friendID, "sides_updated", removed)
	}
	return nil
}

// ListQuery is the paging envelope for friend and request listings.
type ListQuery struct {
	UserID string `json:"user_id" validate:"required"`
	Offset int    `json:"offset" validate:"min=0"`
	Limit  int    `json:"limit" validate:"min=0,max=200"`
}

// GetFriends returns the user's accepted friendships, hydrated with
// each peer's current public profile.
func (s *FriendService) GetFriends(ctx context.Context, query ListQuery) (*FriendListResponse, error) {
	if err := validate.Struct(query); err != nil {
		return nil, formatValidationError(err)
	}

	edges, err := s.store.ListFriendsByUser(ctx, query.UserID, domain.FriendStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}

	return s.paginate(ctx, edges, query.Offset, query.Limit), nil
}

// RequestDirection selects which side of pending requests to list.
type RequestDirection string

const (
	// RequestsReceived lists requests awaiting this user's answer.
	RequestsReceived RequestDirection = "received"
	// RequestsSent lists requests this user has sent.
	RequestsSent RequestDirection = "sent"
)

// GetFriendRequests returns the user's open requests in the given
// direction.
func (s *FriendService) GetFriendRequests(ctx context.Context, query ListQuery, direction RequestDirection) (*FriendListResponse, error) {
	if err := validate.Struct(query); err != nil {
		return nil, formatValidationError(err)
	}

	var status domain.FriendStatus
	switch direction {
	case RequestsReceived:
		status = domain.FriendStatusPending
	case RequestsSent:
		status = domain.FriendStatusRequested
	default:
		return nil, domainerrors.Validationf("unknown request direction %q", direction)
	}

	edges, err := s.store.ListFriendsByUser(ctx, query.UserID, status)
	if err != nil {
		return nil, fmt.Errorf("list friend requests: %w", err)
	}

	return s.paginate(ctx, edges, query.Offset, query.Limit), nil
}

// paginate slices edges by offset/limit and hydrates each entry with
// the peer's live profile, falling back to the stored snapshot when the
// peer no longer resolves.
func (s *FriendService) paginate(ctx context.Context, edges []*domain.Friend, offset, limit int) *FriendListResponse {
	total := len(edges)
	if limit <= 0 {
		limit = 50
	}
	if offset > total {
		offset = total
	}
	end := min(offset+limit, total)

	views := make([]FriendView, 0, end-offset)
	for _, edge := range edges[offset:end] {
		view := FriendView{
			UserID:          edge.ID,
			DisplayName:     edge.Name,
			ProfileImageURL: edge.ProfileImageURL,
			Status:          edge.Status,
			RequestedAt:     edge.RequestedAt,
			AcceptedAt:      edge.AcceptedAt,
		}
		if peer, err := s.store.GetUser(ctx, edge.ID); err == nil {
			profile := peer.Profile()
			view.DisplayName = profile.DisplayName
			view.ProfileImageURL = profile.ProfileImageURL
		}
		views = append(views, view)
	}

	return &FriendListResponse{
		Friends: views,
		Total:   total,
		HasMore: total > end,
	}
}

// refreshFriendCounts recomputes the denormalized friend counters on
// both user records. Best-effort.
func (s *FriendService) refreshFriendCounts(ctx context.Context, userIDs ...string) {
	for _, userID := range userIDs {
		count, err := s.store.CountAcceptedFriends(ctx, userID)
		if err != nil {
			s.warn("failed to count friends", "user_id", userID, "error", err)
			continue
		}
		user, err := s.store.GetUser(ctx, userID)
		if err != nil {
			s.warn("failed to load user for count refresh", "user_id", userID, "error", err)
			continue
		}
		user.FriendCount = count
		if err := s.store.UpdateUser(ctx, user); err != nil {
			s.warn("failed to save friend count", "user_id", userID, "error", err)
		}
	}
}

// bootstrapDM ensures a DM channel and both wrapper entries exist for a
// newly accepted pair. Best-effort.
func (s *FriendService) bootstrapDM(ctx context.Context, userAID, userBID string) {
	channelID := domain.DMChannelID(userAID, userBID)

	if _, err := s.store.GetDMChannel(ctx, channelID); err != nil {
		if !errors.Is(err, store.ErrDMChannelNotFound) {
			s.warn("failed to check dm channel", "channel_id", channelID, "error", err)
			return
		}
		if err := s.store.SaveDMChannel(ctx, domain.NewDMChannel(userAID, userBID)); err != nil {
			s.warn("failed to create dm channel", "channel_id", channelID, "error", err)
			return
		}
	}

	for _, side := range [][2]string{{userAID, userBID}, {userBID, userAID}} {
		owner, peerID := side[0], side[1]
		if _, err := s.store.GetDMWrapper(ctx, owner, channelID); err == nil {
			continue
		}
		peer, err := s.store.GetUser(ctx, peerID)
		if err != nil {
			s.warn("failed to load peer for dm wrapper", "peer_id", peerID, "error", err)
			continue
		}
		if err := s.store.SaveDMWrapper(ctx, owner, domain.NewDMWrapper(channelID, peer.Profile())); err != nil {
			s.warn("failed to save dm wrapper", "user_id", owner, "error", err)
		}
	}
}

func (s *FriendService) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
