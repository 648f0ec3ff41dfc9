package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamloop/teamloop-server/internal/domain"
)

func TestCreateMember(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	member := domain.NewMember("mbr_1", "proj_1", "user_1")

	require.NoError(t, store.CreateMember(ctx, member))

	retrieved, err := store.GetMember(ctx, "proj_1", "user_1")
	require.NoError(t, err)
	assert.Equal(t, "mbr_1", retrieved.ID)
	assert.Equal(t, domain.MemberStatusActive, retrieved.Status)
}

func TestCreateMember_Duplicate(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateMember(ctx, domain.NewMember("mbr_1", "proj_1", "user_1")))

	err := store.CreateMember(ctx, domain.NewMember("mbr_2", "proj_1", "user_1"))
	assert.ErrorIs(t, err, ErrMemberExists)
}

func TestDeleteMember(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.CreateMember(ctx, domain.NewMember("mbr_1", "proj_1", "user_1")))

	require.NoError(t, store.DeleteMember(ctx, "proj_1", "user_1"))

	_, err := store.GetMember(ctx, "proj_1", "user_1")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestCountActiveMembers(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateMember(ctx, domain.NewMember("mbr_1", "proj_1", "user_1")))
	require.NoError(t, store.CreateMember(ctx, domain.NewMember("mbr_2", "proj_1", "user_2")))

	blocked := domain.NewMember("mbr_3", "proj_1", "user_3")
	require.NoError(t, blocked.Block())
	require.NoError(t, store.CreateMember(ctx, blocked))

	// Different project should not count.
	require.NoError(t, store.CreateMember(ctx, domain.NewMember("mbr_4", "proj_2", "user_1")))

	count, err := store.CountActiveMembers(ctx, "proj_1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	members, err := store.ListMembersByProject(ctx, "proj_1")
	require.NoError(t, err)
	assert.Len(t, members, 3)
}
