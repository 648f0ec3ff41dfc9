package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamloop/teamloop-server/internal/domain"
	domainerrors "github.com/teamloop/teamloop-server/internal/errors"
	"github.com/teamloop/teamloop-server/internal/store"
)

// joinFixture creates an owner, a project, an active invite, and the
// joining user.
func joinFixture(t *testing.T, s *store.Store) (owner, joiner *domain.User, project *domain.Project, code string) {
	t.Helper()

	owner = newTestUser(t, s, "owner")
	joiner = newTestUser(t, s, "joiner")
	project = newTestProject(t, s, owner, "Apollo")

	invites := newTestInviteService(s)
	resp, err := invites.GenerateInviteLink(context.Background(), project.ID, owner.ID, 0, 0)
	require.NoError(t, err)

	return owner, joiner, project, resp.InviteCode
}

func TestMemberService_JoinProjectWithInvite(t *testing.T) {
	s := newTestStore(t)
	svc := NewMemberService(s, nil)
	ctx := context.Background()

	owner, joiner, project, code := joinFixture(t, s)

	resp, err := svc.JoinProjectWithInvite(ctx, code, joiner.ID)
	require.NoError(t, err)
	assert.Equal(t, project.ID, resp.ProjectID)
	assert.Equal(t, "Apollo", resp.ProjectName)
	assert.NotEmpty(t, resp.MembershipID)

	member, err := s.GetMember(ctx, project.ID, joiner.ID)
	require.NoError(t, err)
	assert.True(t, member.IsActive())
	assert.Equal(t, owner.ID, member.InvitedBy)

	wrapper, err := s.GetWrapper(ctx, joiner.ID, project.ID)
	require.NoError(t, err)
	assert.True(t, wrapper.IsActive())
	assert.Equal(t, "Apollo", wrapper.ProjectName)

	// Member counter bumped; per-use counting is not applied to
	// uncapped shareable links.
	reloaded, err := s.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.MemberCount)

	invite, err := s.GetInviteByCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, 0, invite.CurrentUses)
}

func TestMemberService_JoinProjectWithInvite_Idempotent(t *testing.T) {
	s := newTestStore(t)
	svc := NewMemberService(s, nil)
	ctx := context.Background()

	_, joiner, project, code := joinFixture(t, s)

	_, err := svc.JoinProjectWithInvite(ctx, code, joiner.ID)
	require.NoError(t, err)

	_, err = svc.JoinProjectWithInvite(ctx, code, joiner.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))

	// Exactly one membership row survives.
	members, err := s.ListMembersByProject(ctx, project.ID)
	require.NoError(t, err)
	count := 0
	for _, m := range members {
		if m.UserID == joiner.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestMemberService_JoinProjectWithInvite_UnusableInvite(t *testing.T) {
	s := newTestStore(t)
	svc := NewMemberService(s, nil)
	ctx := context.Background()

	owner, joiner, project, _ := joinFixture(t, s)

	expired := domain.NewInvite("EXPIRED1", project.ID, owner.ID, time.Now().Add(-time.Hour), 0)
	require.NoError(t, s.CreateInvite(ctx, expired))

	_, err := svc.JoinProjectWithInvite(ctx, "EXPIRED1", joiner.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}

func TestMemberService_JoinProjectWithInvite_UnknownCode(t *testing.T) {
	s := newTestStore(t)
	svc := NewMemberService(s, nil)

	joiner := newTestUser(t, s, "joiner")

	_, err := svc.JoinProjectWithInvite(context.Background(), "NOPE1234", joiner.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestMemberService_JoinProjectWithInvite_BlockedUser(t *testing.T) {
	s := newTestStore(t)
	svc := NewMemberService(s, nil)
	ctx := context.Background()

	owner, joiner, project, code := joinFixture(t, s)

	_, err := svc.JoinProjectWithInvite(ctx, code, joiner.ID)
	require.NoError(t, err)

	require.NoError(t, svc.BlockMember(ctx, project.ID, joiner.ID, owner.ID))

	_, err = svc.JoinProjectWithInvite(ctx, code, joiner.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}

func TestMemberService_JoinProjectWithInvite_UseCapBinds(t *testing.T) {
	s := newTestStore(t)
	svc := NewMemberService(s, nil)
	ctx := context.Background()

	owner := newTestUser(t, s, "owner")
	first := newTestUser(t, s, "first")
	second := newTestUser(t, s, "second")
	project := newTestProject(t, s, owner, "Apollo")

	invites := newTestInviteService(s)
	resp, err := invites.GenerateInviteLink(ctx, project.ID, owner.ID, 0, 1)
	require.NoError(t, err)

	_, err = svc.JoinProjectWithInvite(ctx, resp.InviteCode, first.ID)
	require.NoError(t, err)

	invite, err := s.GetInviteByCode(ctx, resp.InviteCode)
	require.NoError(t, err)
	assert.Equal(t, 1, invite.CurrentUses)

	// The cap is consumed, so a second joiner is turned away and no
	// membership row is written for them.
	_, err = svc.JoinProjectWithInvite(ctx, resp.InviteCode, second.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))

	_, err = s.GetMember(ctx, project.ID, second.ID)
	assert.ErrorIs(t, err, store.ErrMemberNotFound)
}

func TestMemberService_RemoveMember(t *testing.T) {
	s := newTestStore(t)
	svc := NewMemberService(s, nil)
	ctx := context.Background()

	owner, joiner, project, code := joinFixture(t, s)

	_, err := svc.JoinProjectWithInvite(ctx, code, joiner.ID)
	require.NoError(t, err)

	resp, err := svc.RemoveMember(ctx, project.ID, joiner.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, resp.MemberRemoved)
	assert.True(t, resp.ProjectWrapperRemoved)

	_, err = s.GetMember(ctx, project.ID, joiner.ID)
	assert.ErrorIs(t, err, store.ErrMemberNotFound)

	_, err = s.GetWrapper(ctx, joiner.ID, project.ID)
	assert.ErrorIs(t, err, store.ErrWrapperNotFound)

	reloaded, err := s.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.MemberCount)
}

func TestMemberService_RemoveMember_SelfRemovalRejected(t *testing.T) {
	s := newTestStore(t)
	svc := NewMemberService(s, nil)
	ctx := context.Background()

	_, joiner, project, code := joinFixture(t, s)

	_, err := svc.JoinProjectWithInvite(ctx, code, joiner.ID)
	require.NoError(t, err)

	_, err = svc.RemoveMember(ctx, project.ID, joiner.ID, joiner.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestMemberService_RemoveMember_RemoverNotMember(t *testing.T) {
	s := newTestStore(t)
	svc := NewMemberService(s, nil)
	ctx := context.Background()

	_, joiner, project, code := joinFixture(t, s)
	outsider := newTestUser(t, s, "outsider")

	_, err := svc.JoinProjectWithInvite(ctx, code, joiner.ID)
	require.NoError(t, err)

	_, err = svc.RemoveMember(ctx, project.ID, joiner.ID, outsider.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}

func TestMemberService_LeaveProject(t *testing.T) {
	s := newTestStore(t)
	svc := NewMemberService(s, nil)
	ctx := context.Background()

	_, joiner, project, code := joinFixture(t, s)

	_, err := svc.JoinProjectWithInvite(ctx, code, joiner.ID)
	require.NoError(t, err)

	resp, err := svc.LeaveProject(ctx, project.ID, joiner.ID)
	require.NoError(t, err)
	assert.True(t, resp.MemberRemoved)

	_, err = s.GetMember(ctx, project.ID, joiner.ID)
	assert.ErrorIs(t, err, store.ErrMemberNotFound)
}

func TestMemberService_BlockMember(t *testing.T) {
	s := newTestStore(t)
	svc := NewMemberService(s, nil)
	ctx := context.Background()

	owner, joiner, project, code := joinFixture(t, s)

	_, err := svc.JoinProjectWithInvite(ctx, code, joiner.ID)
	require.NoError(t, err)

	require.NoError(t, svc.BlockMember(ctx, project.ID, joiner.ID, owner.ID))

	member, err := s.GetMember(ctx, project.ID, joiner.ID)
	require.NoError(t, err)
	assert.True(t, member.IsBlocked())

	// The project drops out of the blocked user's index.
	wrapper, err := s.GetWrapper(ctx, joiner.ID, project.ID)
	require.NoError(t, err)
	assert.False(t, wrapper.IsActive())

	// No self-block.
	err = svc.BlockMember(ctx, project.ID, owner.ID, owner.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestMemberService_ListMembers(t *testing.T) {
	s := newTestStore(t)
	svc := NewMemberService(s, nil)
	ctx := context.Background()

	owner, joiner, project, code := joinFixture(t, s)

	_, err := svc.JoinProjectWithInvite(ctx, code, joiner.ID)
	require.NoError(t, err)

	views, err := svc.ListMembers(ctx, project.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byUser := make(map[string]MemberView, len(views))
	for _, v := range views {
		byUser[v.UserID] = v
	}
	assert.Equal(t, "joiner", byUser[joiner.ID].DisplayName)
	assert.Contains(t, byUser[joiner.ID].RoleIDs, domain.DefaultRoleID)

	// Outsiders cannot list members.
	outsider := newTestUser(t, s, "outsider")
	_, err = svc.ListMembers(ctx, project.ID, outsider.ID)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
}
