package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/teamloop/teamloop-server/internal/errors"
)

func TestProjectService_CreateProject(t *testing.T) {
	s := newTestStore(t)
	svc := NewProjectService(s, nil)
	ctx := context.Background()

	owner := newTestUser(t, s, "owner")

	project, err := svc.CreateProject(ctx, owner.ID, CreateProjectRequest{
		Name:        "Apollo",
		Description: "Launch planning",
	})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, project.OwnerID)
	assert.Equal(t, 1, project.MemberCount)

	// Owner is the first member and holds a wrapper entry.
	member, err := s.GetMember(ctx, project.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, member.IsActive())

	wrapper, err := s.GetWrapper(ctx, owner.ID, project.ID)
	require.NoError(t, err)
	assert.True(t, wrapper.IsActive())
	assert.Equal(t, "Apollo", wrapper.ProjectName)
}

func TestProjectService_CreateProject_Validation(t *testing.T) {
	s := newTestStore(t)
	svc := NewProjectService(s, nil)

	owner := newTestUser(t, s, "owner")

	_, err := svc.CreateProject(context.Background(), owner.ID, CreateProjectRequest{})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestProjectService_DeleteProject_OwnerOnly(t *testing.T) {
	s := newTestStore(t)
	svc := NewProjectService(s, nil)
	members := NewMemberService(s, nil)
	invites := newTestInviteService(s)
	ctx := context.Background()

	owner := newTestUser(t, s, "owner")
	other := newTestUser(t, s, "other")

	project, err := svc.CreateProject(ctx, owner.ID, CreateProjectRequest{Name: "Apollo"})
	require.NoError(t, err)

	generated, err := invites.GenerateInviteLink(ctx, project.ID, owner.ID, 0, 0)
	require.NoError(t, err)
	_, err = members.JoinProjectWithInvite(ctx, generated.InviteCode, other.ID)
	require.NoError(t, err)

	// A regular member cannot delete; only the exact owner can.
	err = svc.DeleteProject(ctx, project.ID, other.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))

	require.NoError(t, svc.DeleteProject(ctx, project.ID, owner.ID))

	reloaded, err := s.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsDeleted())

	// Deleting twice conflicts.
	err = svc.DeleteProject(ctx, project.ID, owner.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))
}

func TestProjectService_ListProjects_LazyCleanup(t *testing.T) {
	s := newTestStore(t)
	svc := NewProjectService(s, nil)
	ctx := context.Background()

	owner := newTestUser(t, s, "owner")

	kept, err := svc.CreateProject(ctx, owner.ID, CreateProjectRequest{Name: "Kept"})
	require.NoError(t, err)
	doomed, err := svc.CreateProject(ctx, owner.ID, CreateProjectRequest{Name: "Doomed"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProject(ctx, doomed.ID, owner.ID))

	// Deletion does not cascade, so the stale wrapper still exists.
	_, err = s.GetWrapper(ctx, owner.ID, doomed.ID)
	require.NoError(t, err)

	entries, err := svc.ListProjects(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, kept.ID, entries[0].ProjectID)

	// The listing swept the stale wrapper away.
	_, err = s.GetWrapper(ctx, owner.ID, doomed.ID)
	require.Error(t, err)
}

func TestProjectService_GetProject_MemberOnly(t *testing.T) {
	s := newTestStore(t)
	svc := NewProjectService(s, nil)
	ctx := context.Background()

	owner := newTestUser(t, s, "owner")
	outsider := newTestUser(t, s, "outsider")

	project, err := svc.CreateProject(ctx, owner.ID, CreateProjectRequest{Name: "Apollo"})
	require.NoError(t, err)

	got, err := svc.GetProject(ctx, project.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ID)

	_, err = svc.GetProject(ctx, project.ID, outsider.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}
