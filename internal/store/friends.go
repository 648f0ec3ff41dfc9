package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/teamloop/teamloop-server/internal/domain"
)

// Friend edges are keyed friend:{viewerID}:{peerID}, so one prefix scan
// yields everything a user sees and a point read resolves one edge.
const friendPrefix = "friend:"

// ErrFriendNotFound is returned when a friend edge cannot be found.
var ErrFriendNotFound = errors.New("friend not found")

func friendKey(viewerID, peerID string) []byte {
	return []byte(friendPrefix + viewerID + ":" + peerID)
}

// SaveFriend writes one edge of a relationship under the viewer.
func (s *Store) SaveFriend(_ context.Context, viewerID string, edge *domain.Friend) error {
	return s.set(friendKey(viewerID, edge.ID), edge)
}

// SaveFriendPair writes both edges of a relationship in one
// transaction. Either both writes land or neither does, so a completed
// request always appears on both sides.
func (s *Store) SaveFriendPair(_ context.Context, viewerAID string, edgeA *domain.Friend, viewerBID string, edgeB *domain.Friend) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := setInTxn(txn, friendKey(viewerAID, edgeA.ID), edgeA); err != nil {
			return err
		}
		return setInTxn(txn, friendKey(viewerBID, edgeB.ID), edgeB)
	})
}

// GetFriend retrieves the edge the viewer holds for the given peer.
func (s *Store) GetFriend(_ context.Context, viewerID, peerID string) (*domain.Friend, error) {
	var edge domain.Friend
	if err := s.get(friendKey(viewerID, peerID), &edge); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrFriendNotFound
		}
		return nil, fmt.Errorf("get friend: %w", err)
	}
	return &edge, nil
}

// UpdateFriend persists a mutated edge.
func (s *Store) UpdateFriend(_ context.Context, viewerID string, edge *domain.Friend) error {
	key := friendKey(viewerID, edge.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check friend exists: %w", err)
	}
	if !exists {
		return ErrFriendNotFound
	}

	edge.Touch()
	return s.set(key, edge)
}

// DeleteFriend removes an edge outright. Most flows soft-remove via
// status instead; this is the hard-delete path.
func (s *Store) DeleteFriend(_ context.Context, viewerID, peerID string) error {
	return s.delete(friendKey(viewerID, peerID))
}

// ListFriendsByUser returns all edges the viewer holds, optionally
// filtered by status. An empty status returns everything.
func (s *Store) ListFriendsByUser(_ context.Context, viewerID string, status domain.FriendStatus) ([]*domain.Friend, error) {
	edges, err := scanPrefix[domain.Friend](s, []byte(friendPrefix+viewerID+":"))
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}

	if status == "" {
		return edges, nil
	}

	filtered := edges[:0]
	for _, e := range edges {
		if e.Status == status {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// CountAcceptedFriends returns how many accepted friendships the viewer
// holds. Used to refresh the denormalized friend counter.
func (s *Store) CountAcceptedFriends(ctx context.Context, viewerID string) (int, error) {
	edges, err := s.ListFriendsByUser(ctx, viewerID, domain.FriendStatusAccepted)
	if err != nil {
		return 0, err
	}
	return len(edges), nil
}

// AreUsersFriends reports whether both sides hold an accepted edge.
func (s *Store) AreUsersFriends(ctx context.Context, userAID, userBID string) (bool, error) {
	edgeA, err := s.GetFriend(ctx, userAID, userBID)
	if err != nil {
		if errors.Is(err, ErrFriendNotFound) {
			return false, nil
		}
		return false, err
	}
	return edgeA.IsAccepted(), nil
}

// FriendRequestExists reports whether an unanswered request already
// links the two users, in either direction.
func (s *Store) FriendRequestExists(ctx context.Context, userAID, userBID string) (bool, error) {
	edge, err := s.GetFriend(ctx, userAID, userBID)
	if err != nil {
		if errors.Is(err, ErrFriendNotFound) {
			return false, nil
		}
		return false, err
	}
	return edge.IsAnswerable(), nil
}
