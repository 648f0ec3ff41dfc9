package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamloop/teamloop-server/internal/domain"
)

func newTestInvite(code, projectID string) *domain.Invite {
	return domain.NewInvite(code, projectID, "user_1", time.Now().Add(24*time.Hour), 0)
}

func TestCreateInvite(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	err := store.CreateInvite(ctx, newTestInvite("Abc23xYz", "proj_1"))
	require.NoError(t, err)

	retrieved, err := store.GetInviteByCode(ctx, "Abc23xYz")
	require.NoError(t, err)
	assert.Equal(t, "proj_1", retrieved.ProjectID)
	assert.Equal(t, domain.InviteStatusActive, retrieved.Status)
}

func TestCreateInvite_CodeCollision(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateInvite(ctx, newTestInvite("Abc23xYz", "proj_1")))

	err := store.CreateInvite(ctx, newTestInvite("Abc23xYz", "proj_2"))
	assert.ErrorIs(t, err, ErrInviteCodeExists)
}

func TestGetInviteByCode_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetInviteByCode(context.Background(), "missing99")
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestExistsInviteCode(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	exists, err := store.ExistsInviteCode(ctx, "Abc23xYz")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.CreateInvite(ctx, newTestInvite("Abc23xYz", "proj_1")))

	exists, err = store.ExistsInviteCode(ctx, "Abc23xYz")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUpdateInvite(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	invite := newTestInvite("Abc23xYz", "proj_1")
	require.NoError(t, store.CreateInvite(ctx, invite))

	require.NoError(t, invite.Revoke())
	require.NoError(t, store.UpdateInvite(ctx, invite))

	retrieved, err := store.GetInviteByCode(ctx, "Abc23xYz")
	require.NoError(t, err)
	assert.Equal(t, domain.InviteStatusRevoked, retrieved.Status)

	err = store.UpdateInvite(ctx, newTestInvite("missing99", "proj_1"))
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestConsumeInviteUse(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	capped := domain.NewInvite("Capped12", "proj_1", "user_1", time.Now().Add(24*time.Hour), 2)
	require.NoError(t, store.CreateInvite(ctx, capped))

	require.NoError(t, store.ConsumeInviteUse(ctx, "Capped12"))
	require.NoError(t, store.ConsumeInviteUse(ctx, "Capped12"))

	retrieved, err := store.GetInviteByCode(ctx, "Capped12")
	require.NoError(t, err)
	assert.Equal(t, 2, retrieved.CurrentUses)

	// Past the cap the counter stays put.
	err = store.ConsumeInviteUse(ctx, "Capped12")
	assert.ErrorIs(t, err, ErrInviteExhausted)

	retrieved, err = store.GetInviteByCode(ctx, "Capped12")
	require.NoError(t, err)
	assert.Equal(t, 2, retrieved.CurrentUses)
}

func TestConsumeInviteUse_UncappedNotCounted(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateInvite(ctx, newTestInvite("OpenLink", "proj_1")))
	require.NoError(t, store.ConsumeInviteUse(ctx, "OpenLink"))

	retrieved, err := store.GetInviteByCode(ctx, "OpenLink")
	require.NoError(t, err)
	assert.Equal(t, 0, retrieved.CurrentUses)

	err = store.ConsumeInviteUse(ctx, "missing99")
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestListInvitesByProject(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateInvite(ctx, newTestInvite("CodeAaaa", "proj_1")))
	require.NoError(t, store.CreateInvite(ctx, newTestInvite("CodeBbbb", "proj_1")))
	require.NoError(t, store.CreateInvite(ctx, newTestInvite("CodeCccc", "proj_2")))

	invites, err := store.ListInvitesByProject(ctx, "proj_1")
	require.NoError(t, err)
	assert.Len(t, invites, 2)
	for _, inv := range invites {
		assert.Equal(t, "proj_1", inv.ProjectID)
	}
}
