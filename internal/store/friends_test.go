package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamloop/teamloop-server/internal/domain"
)

func newEdge(peerID string, status domain.FriendStatus) *domain.Friend {
	return domain.NewFriendEdge("req_1", domain.PublicProfile{ID: peerID, DisplayName: peerID}, status)
}

func TestSaveFriendPair(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	err := store.SaveFriendPair(ctx,
		"user_a", newEdge("user_b", domain.FriendStatusRequested),
		"user_b", newEdge("user_a", domain.FriendStatusPending),
	)
	require.NoError(t, err)

	edgeA, err := store.GetFriend(ctx, "user_a", "user_b")
	require.NoError(t, err)
	assert.Equal(t, domain.FriendStatusRequested, edgeA.Status)

	edgeB, err := store.GetFriend(ctx, "user_b", "user_a")
	require.NoError(t, err)
	assert.Equal(t, domain.FriendStatusPending, edgeB.Status)
	assert.Equal(t, edgeA.RequestID, edgeB.RequestID)
}

func TestGetFriend_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetFriend(context.Background(), "user_a", "user_b")
	assert.ErrorIs(t, err, ErrFriendNotFound)
}

func TestListFriendsByUser_StatusFilter(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.SaveFriend(ctx, "user_a", newEdge("user_b", domain.FriendStatusAccepted)))
	require.NoError(t, store.SaveFriend(ctx, "user_a", newEdge("user_c", domain.FriendStatusPending)))
	require.NoError(t, store.SaveFriend(ctx, "user_a", newEdge("user_d", domain.FriendStatusAccepted)))
	// Edge owned by another user must not leak into the scan.
	require.NoError(t, store.SaveFriend(ctx, "user_b", newEdge("user_a", domain.FriendStatusAccepted)))

	accepted, err := store.ListFriendsByUser(ctx, "user_a", domain.FriendStatusAccepted)
	require.NoError(t, err)
	assert.Len(t, accepted, 2)

	all, err := store.ListFriendsByUser(ctx, "user_a", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	count, err := store.CountAcceptedFriends(ctx, "user_a")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAreUsersFriends(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	ok, err := store.AreUsersFriends(ctx, "user_a", "user_b")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveFriend(ctx, "user_a", newEdge("user_b", domain.FriendStatusAccepted)))

	ok, err = store.AreUsersFriends(ctx, "user_a", "user_b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFriendRequestExists(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	ok, err := store.FriendRequestExists(ctx, "user_a", "user_b")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveFriend(ctx, "user_a", newEdge("user_b", domain.FriendStatusRequested)))

	ok, err = store.FriendRequestExists(ctx, "user_a", "user_b")
	require.NoError(t, err)
	assert.True(t, ok)

	// Rejected edges do not count as open requests.
	rejected := newEdge("user_d", domain.FriendStatusRejected)
	require.NoError(t, store.SaveFriend(ctx, "user_a", rejected))

	ok, err = store.FriendRequestExists(ctx, "user_a", "user_d")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateFriend(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	edge := newEdge("user_b", domain.FriendStatusPending)
	require.NoError(t, store.SaveFriend(ctx, "user_a", edge))

	require.NoError(t, edge.Accept())
	require.NoError(t, store.UpdateFriend(ctx, "user_a", edge))

	retrieved, err := store.GetFriend(ctx, "user_a", "user_b")
	require.NoError(t, err)
	assert.Equal(t, domain.FriendStatusAccepted, retrieved.Status)

	err = store.UpdateFriend(ctx, "user_z", edge)
	assert.ErrorIs(t, err, ErrFriendNotFound)
}
