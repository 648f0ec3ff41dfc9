package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/teamloop/teamloop-server/internal/domain"
)

const (
	dmChannelPrefix = "dmchannel:"
	dmWrapperPrefix = "dmwrapper:"
)

// ErrDMChannelNotFound is returned when a DM channel cannot be found.
var ErrDMChannelNotFound = errors.New("dm channel not found")

// SaveDMChannel writes a DM channel. The channel ID is derived from the
// participant pair, so rewriting an existing channel is harmless.
func (s *Store) SaveDMChannel(_ context.Context, channel *domain.DMChannel) error {
	return s.set([]byte(dmChannelPrefix+channel.ID), channel)
}

// GetDMChannel retrieves a DM channel by ID.
func (s *Store) GetDMChannel(_ context.Context, id string) (*domain.DMChannel, error) {
	var channel domain.DMChannel
	if err := s.get([]byte(dmChannelPrefix+id), &channel); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrDMChannelNotFound
		}
		return nil, fmt.Errorf("get dm channel: %w", err)
	}
	return &channel, nil
}

// GetDMChannelByParticipants retrieves the channel for a pair of users.
func (s *Store) GetDMChannelByParticipants(ctx context.Context, userAID, userBID string) (*domain.DMChannel, error) {
	return s.GetDMChannel(ctx, domain.DMChannelID(userAID, userBID))
}

// SaveDMWrapper writes one user's index entry for a channel.
func (s *Store) SaveDMWrapper(_ context.Context, userID string, wrapper *domain.DMWrapper) error {
	return s.set([]byte(dmWrapperPrefix+userID+":"+wrapper.ID), wrapper)
}

// GetDMWrapper retrieves a user's index entry for a channel.
func (s *Store) GetDMWrapper(_ context.Context, userID, channelID string) (*domain.DMWrapper, error) {
	var wrapper domain.DMWrapper
	if err := s.get([]byte(dmWrapperPrefix+userID+":"+channelID), &wrapper); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrDMChannelNotFound
		}
		return nil, fmt.Errorf("get dm wrapper: %w", err)
	}
	return &wrapper, nil
}

// ListDMWrappersByUser returns a user's DM conversation index.
func (s *Store) ListDMWrappersByUser(_ context.Context, userID string) ([]*domain.DMWrapper, error) {
	wrappers, err := scanPrefix[domain.DMWrapper](s, []byte(dmWrapperPrefix+userID+":"))
	if err != nil {
		return nil, fmt.Errorf("list dm wrappers: %w", err)
	}
	return wrappers, nil
}
