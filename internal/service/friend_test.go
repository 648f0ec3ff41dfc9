package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamloop/teamloop-server/internal/domain"
	domainerrors "github.com/teamloop/teamloop-server/internal/errors"
)

func TestFriendService_SendFriendRequest_CreatesBothEdges(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s, nil)
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	resp, err := svc.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendStatusRequested, resp.Status)
	assert.NotEmpty(t, resp.FriendRequestID)
	assert.False(t, resp.RequestedAt.IsZero())

	// Requester sees an outgoing edge, receiver an incoming one, and
	// both carry the same request ID.
	requesterEdge, err := s.GetFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendStatusRequested, requesterEdge.Status)

	receiverEdge, err := s.GetFriend(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendStatusPending, receiverEdge.Status)
	assert.Equal(t, requesterEdge.RequestID, receiverEdge.RequestID)
}

func TestFriendService_SendFriendRequest_ToSelf(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s, nil)

	alice := newTestUser(t, s, "alice")

	_, err := svc.SendFriendRequest(context.Background(), alice.ID, alice.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestFriendService_SendFriendRequest_UnknownReceiver(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s, nil)

	alice := newTestUser(t, s, "alice")

	_, err := svc.SendFriendRequest(context.Background(), alice.ID, "usr_missing")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestFriendService_SendFriendRequest_ReceiverDisallows(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s, nil)
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")
	bob.AllowFriendRequests = false
	require.NoError(t, s.UpdateUser(ctx, bob))

	_, err := svc.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))
}

func TestFriendService_SendFriendRequest_DuplicateBlocked(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s, nil)
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	_, err := svc.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// Same direction.
	_, err = svc.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))

	// Opposite direction while the first is still open.
	_, err = svc.SendFriendRequest(ctx, bob.ID, alice.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))
}

func TestFriendService_AcceptFriendRequest_FullLifecycle(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s, nil)
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	_, err := svc.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// Bob sees the request in his received listing, Alice in her sent one.
	received, err := svc.GetFriendRequests(ctx, ListQuery{UserID: bob.ID}, RequestsReceived)
	require.NoError(t, err)
	require.Len(t, received.Friends, 1)
	assert.Equal(t, alice.ID, received.Friends[0].UserID)

	sent, err := svc.GetFriendRequests(ctx, ListQuery{UserID: alice.ID}, RequestsSent)
	require.NoError(t, err)
	require.Len(t, sent.Friends, 1)
	assert.Equal(t, bob.ID, sent.Friends[0].UserID)

	resp, err := svc.AcceptFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendStatusAccepted, resp.Status)
	assert.Equal(t, alice.ID, resp.FriendID)
	assert.False(t, resp.AcceptedAt.IsZero())

	// Both friend listings show the accepted friendship.
	bobFriends, err := svc.GetFriends(ctx, ListQuery{UserID: bob.ID})
	require.NoError(t, err)
	require.Len(t, bobFriends.Friends, 1)
	assert.Equal(t, alice.ID, bobFriends.Friends[0].UserID)

	aliceFriends, err := svc.GetFriends(ctx, ListQuery{UserID: alice.ID})
	require.NoError(t, err)
	require.Len(t, aliceFriends.Friends, 1)
	assert.Equal(t, bob.ID, aliceFriends.Friends[0].UserID)

	// Friend counters refreshed on both users.
	aliceReloaded, err := s.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, aliceReloaded.FriendCount)

	bobReloaded, err := s.GetUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, bobReloaded.FriendCount)

	// A DM channel and both conversation wrappers were bootstrapped.
	channelID := domain.DMChannelID(alice.ID, bob.ID)
	_, err = s.GetDMChannel(ctx, channelID)
	require.NoError(t, err)

	for _, userID := range []string{alice.ID, bob.ID} {
		_, err = s.GetDMWrapper(ctx, userID, channelID)
		require.NoError(t, err)
	}
}

func TestFriendService_AcceptFriendRequest_RebuildsMissingReciprocal(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s, nil)
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	_, err := svc.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// Simulate a lost requester-side edge.
	require.NoError(t, s.DeleteFriend(ctx, alice.ID, bob.ID))

	_, err = svc.AcceptFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// The requester's edge was reconstructed as accepted.
	rebuilt, err := s.GetFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendStatusAccepted, rebuilt.Status)
	assert.Equal(t, bob.ID, rebuilt.ID)
}

func TestFriendService_AcceptFriendRequest_SenderCannotAnswerOwnRequest(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s, nil)
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	_, err := svc.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// Alice swaps the roles so the lookup lands on her own REQUESTED
	// edge. Only Bob's PENDING edge is answerable.
	_, err = svc.AcceptFriendRequest(ctx, bob.ID, alice.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))

	err = svc.RejectFriendRequest(ctx, bob.ID, alice.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))

	// Neither edge moved.
	senderEdge, err := s.GetFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendStatusRequested, senderEdge.Status)

	receiverEdge, err := s.GetFriend(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendStatusPending, receiverEdge.Status)

	// The real receiver can still accept.
	_, err = svc.AcceptFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
}

func TestFriendService_AcceptFriendRequest_NoRequest(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s, nil)

	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	_, err := svc.AcceptFriendRequest(context.Background(), alice.ID, bob.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestFriendService_RejectFriendRequest(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s, nil)
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	_, err := svc.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RejectFriendRequest(ctx, alice.ID, bob.ID))

	// Both edges moved to rejected.
	receiverEdge, err := s.GetFriend(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendStatusRejected, receiverEdge.Status)

	requesterEdge, err := s.GetFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FriendStatusRejected, requesterEdge.Status)

	// A rejected request cannot be accepted afterwards.
	_, err = svc.AcceptFriendRequest(ctx, alice.ID, bob.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))

	// A rejected request no longer blocks a new one.
	_, err = svc.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
}

func TestFriendService_RemoveFriend(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s, nil)
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	_, err := svc.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.AcceptFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveFriend(ctx, alice.ID, bob.ID))

	for _, userID := range []string{alice.ID, bob.ID} {
		friends, err := svc.GetFriends(ctx, ListQuery{UserID: userID})
		require.NoError(t, err)
		assert.Empty(t, friends.Friends)

		user, err := s.GetUser(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 0, user.FriendCount)
	}
}

func TestFriendService_RemoveFriend_NotFriends(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s, nil)

	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	err := svc.RemoveFriend(context.Background(), alice.ID, bob.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestFriendService_RemoveFriend_PendingNotRemovable(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s, nil)
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	_, err := svc.SendFriendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// Removal only applies to accepted friendships.
	err = svc.RemoveFriend(ctx, alice.ID, bob.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))
}

func TestFriendService_GetFriends_Pagination(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s, nil)
	ctx := context.Background()

	alice := newTestUser(t, s, "alice")
	peers := []string{"bob", "carol", "dave"}
	for _, name := range peers {
		peer := newTestUser(t, s, name)
		_, err := svc.SendFriendRequest(ctx, alice.ID, peer.ID)
		require.NoError(t, err)
		_, err = svc.AcceptFriendRequest(ctx, alice.ID, peer.ID)
		require.NoError(t, err)
	}

	page, err := svc.GetFriends(ctx, ListQuery{UserID: alice.ID, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Friends, 2)
	assert.Equal(t, 3, page.Total)
	assert.True(t, page.HasMore)

	rest, err := svc.GetFriends(ctx, ListQuery{UserID: alice.ID, Offset: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, rest.Friends, 1)
	assert.False(t, rest.HasMore)
}

func TestFriendService_GetFriendRequests_UnknownDirection(t *testing.T) {
	s := newTestStore(t)
	svc := NewFriendService(s, nil)

	alice := newTestUser(t, s, "alice")

	_, err := svc.GetFriendRequests(context.Background(), ListQuery{UserID: alice.ID}, RequestDirection("sideways"))
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}
