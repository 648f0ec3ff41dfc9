package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teamloop/teamloop-server/internal/domain"
	domainerrors "github.com/teamloop/teamloop-server/internal/errors"
	"github.com/teamloop/teamloop-server/internal/store"
)

// DMService manages direct message channels between friends and the
// per-user conversation index.
type DMService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewDMService creates a new DM service.
func NewDMService(store *store.Store, logger *slog.Logger) *DMService {
	return &DMService{
		store:  store,
		logger: logger,
	}
}

// ConversationView is one entry in a user's DM listing.
type ConversationView struct {
	ChannelID         string `json:"channel_id"`
	OtherUserID       string `json:"other_user_id"`
	OtherUserName     string `json:"other_user_name"`
	OtherUserImageURL string `json:"other_user_image_url,omitempty"`
}

// EnsureDMChannel returns the channel between two users, creating it
// and both conversation wrappers if it does not exist yet. The channel
// ID is derived from the sorted user pair, so repeated calls converge
// on the same channel.
func (s *DMService) EnsureDMChannel(ctx context.Context, userAID, userBID string) (*domain.DMChannel, error) {
	if userAID == "" || userBID == "" {
		return nil, domainerrors.Validation("both user IDs are required")
	}
	if userAID == userBID {
		return nil, domainerrors.Validation("cannot open a conversation with yourself")
	}

	channelID := domain.DMChannelID(userAID, userBID)
	if existing, err := s.store.GetDMChannel(ctx, channelID); err == nil {
		return existing, nil
	} else if !errors.Is(err, store.ErrDMChannelNotFound) {
		return nil, fmt.Errorf("get dm channel: %w", err)
	}

	userA, err := s.store.GetUser(ctx, userAID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFoundResource("user", userAID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	userB, err := s.store.GetUser(ctx, userBID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFoundResource("user", userBID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	channel := domain.NewDMChannel(userAID, userBID)
	if err := s.store.SaveDMChannel(ctx, channel); err != nil {
		return nil, fmt.Errorf("save dm channel: %w", err)
	}

	// Conversation wrappers are secondary indexes; a lost write leaves
	// the channel reachable through the other participant.
	if err := s.store.SaveDMWrapper(ctx, userAID, domain.NewDMWrapper(channel.ID, userB.Profile())); err != nil {
		s.warn("failed to save dm wrapper", "channel_id", channel.ID, "user_id", userAID, "error", err)
	}
	if err := s.store.SaveDMWrapper(ctx, userBID, domain.NewDMWrapper(channel.ID, userA.Profile())); err != nil {
		s.warn("failed to save dm wrapper", "channel_id", channel.ID, "user_id", userBID, "error", err)
	}

	if s.logger != nil {
		s.logger.Info("DM channel created", "channel_id", channel.ID, "user_a", userAID, "user_b", userBID)
	}
	return channel, nil
}

// ListConversations returns the user's DM conversations with the other
// participant's profile refreshed from the live user record where
// possible.
func (s *DMService) ListConversations(ctx context.Context, userID string) ([]ConversationView, error) {
	if userID == "" {
		return nil, domainerrors.Validation("user ID is required")
	}

	wrappers, err := s.store.ListDMWrappersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list dm wrappers: %w", err)
	}

	views := make([]ConversationView, 0, len(wrappers))
	for _, w := range wrappers {
		view := ConversationView{
			ChannelID:         w.ID,
			OtherUserID:       w.OtherUserID,
			OtherUserName:     w.OtherUserName,
			OtherUserImageURL: w.OtherUserImageURL,
		}
		if other, err := s.store.GetUser(ctx, w.OtherUserID); err == nil {
			profile := other.Profile()
			view.OtherUserName = profile.DisplayName
			view.OtherUserImageURL = profile.ProfileImageURL
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *DMService) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
