package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teamloop/teamloop-server/internal/domain"
	domainerrors "github.com/teamloop/teamloop-server/internal/errors"
	"github.com/teamloop/teamloop-server/internal/id"
	"github.com/teamloop/teamloop-server/internal/store"
)

// MemberService manages project membership and the per-user project
// wrapper index that mirrors it.
type MemberService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewMemberService creates a new member service.
func NewMemberService(store *store.Store, logger *slog.Logger) *MemberService {
	return &MemberService{
		store:  store,
		logger: logger,
	}
}

// JoinProjectResponse is returned after a successful join.
type JoinProjectResponse struct {
	ProjectID    string `json:"project_id"`
	ProjectName  string `json:"project_name"`
	MembershipID string `json:"membership_id"`
}

// RemoveMemberResponse distinguishes the authoritative membership
// deletion from the best-effort wrapper cleanup so callers can detect
// partial inconsistency.
type RemoveMemberResponse struct {
	MemberRemoved         bool `json:"member_removed"`
	ProjectWrapperRemoved bool `json:"project_wrapper_removed"`
}

// MemberView is one entry in a member listing.
type MemberView struct {
	UserID          string              `json:"user_id"`
	DisplayName     string              `json:"display_name"`
	ProfileImageURL string              `json:"profile_image_url,omitempty"`
	RoleIDs         []string            `json:"role_ids"`
	Status          domain.MemberStatus `json:"status"`
}

// requireActiveMember is the single membership predicate guarding
// member and invite operations. Deliberately coarse: any active member
// qualifies, with no role check. Swap this out when a role model lands.
func requireActiveMember(ctx context.Context, st *store.Store, projectID, userID string) error {
	member, err := st.GetMember(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return domainerrors.Unauthorized("user is not a member of this project")
		}
		return fmt.Errorf("get member: %w", err)
	}
	if !member.IsActive() {
		return domainerrors.Unauthorized("user is not an active member of this project")
	}
	return nil
}

// JoinProjectWithInvite consumes an invite code and adds the user to
// the target project. Membership creation is authoritative; the wrapper
// write follows it, and the member counter moves best-effort.
func (s *MemberService) JoinProjectWithInvite(ctx context.Context, inviteCode, userID string) (*JoinProjectResponse, error) {
	if inviteCode == "" || userID == "" {
		return nil, domainerrors.Validation("invite code and user ID are required")
	}

	invite, err := s.store.GetInviteByCode(ctx, inviteCode)
	if err != nil {
		if errors.Is(err, store.ErrInviteNotFound) {
			return nil, domainerrors.NotFoundResource("invite", inviteCode)
		}
		return nil, fmt.Errorf("get invite: %w", err)
	}
	if !invite.CanBeUsed() {
		return nil, domainerrors.Unauthorized(invite.UnusableReason())
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFoundResource("user", userID)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	project, err := s.store.GetProject(ctx, invite.ProjectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return nil, domainerrors.NotFoundResource("project", invite.ProjectID)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project.IsDeleted() {
		return nil, domainerrors.NotFoundResource("project", invite.ProjectID)
	}

	// Duplicate-join guards: an existing member row or an active
	// wrapper means this user already joined.
	if existing, err := s.store.GetMember(ctx, project.ID, userID); err == nil {
		if existing.IsBlocked() {
			return nil, domainerrors.Unauthorized("user is blocked from this project")
		}
		return nil, domainerrors.Conflict("user is already a member of this project")
	} else if !errors.Is(err, store.ErrMemberNotFound) {
		return nil, fmt.Errorf("check membership: %w", err)
	}

	existingWrapper, wrapperErr := s.store.GetWrapper(ctx, userID, project.ID)
	if wrapperErr == nil && existingWrapper.IsActive() {
		return nil, domainerrors.Conflict("user already holds this project")
	}
	if wrapperErr != nil && !errors.Is(wrapperErr, store.ErrWrapperNotFound) {
		return nil, fmt.Errorf("check wrapper: %w", wrapperErr)
	}

	// Capped invites claim their usage slot atomically before the
	// member row is written, so racing joins cannot exceed the cap.
	// Uncapped shareable links are not counted.
	if err := s.store.ConsumeInviteUse(ctx, invite.Code); err != nil {
		if errors.Is(err, store.ErrInviteExhausted) {
			return nil, domainerrors.Unauthorized("invite has reached its maximum usage limit")
		}
		return nil, fmt.Errorf("consume invite use: %w", err)
	}

	// Primary write: the membership row. The pair key makes a racing
	// duplicate join land on ErrMemberExists.
	member := domain.NewMember(id.MustNew("mbr"), project.ID, user.ID)
	member.InvitedBy = invite.CreatedBy
	if err := s.store.CreateMember(ctx, member); err != nil {
		if errors.Is(err, store.ErrMemberExists) {
			return nil, domainerrors.Conflict("user is already a member of this project")
		}
		return nil, fmt.Errorf("create member: %w", err)
	}

	// Wrapper write: reactivate a stale entry or create a fresh one.
	if existingWrapper != nil {
		existingWrapper.Activate(project)
		err = s.store.UpdateWrapper(ctx, userID, existingWrapper)
	} else {
		err = s.store.SaveWrapper(ctx, userID, domain.NewProjectWrapper(project))
	}
	if err != nil {
		return nil, fmt.Errorf("save project wrapper: %w", err)
	}

	// Member counter is a best-effort denormalization.
	project.MemberCount++
	if err := s.store.UpdateProject(ctx, project); err != nil {
		s.warn("failed to bump member count", "project_id", project.ID, "error", err)
	}

	if s.logger != nil {
		s.logger.Info("User joined project via invite",
			"project_id", project.ID,
			"user_id", userID,
			"invite_code", inviteCode,
		)
	}

	return &JoinProjectResponse{
		ProjectID:    project.ID,
		ProjectName:  project.Name,
		MembershipID: member.ID,
	}, nil
}

// RemoveMember deletes another user's membership. Self-removal must go
// through LeaveProject. The membership deletion is authoritative; the
// wrapper cleanup is best-effort and reported separately.
func (s *MemberService) RemoveMember(ctx context.Context, projectID, userID, removedBy string) (*RemoveMemberResponse, error) {
	if projectID == "" || userID == "" || removedBy == "" {
		return nil, domainerrors.Validation("project, user, and remover IDs are required")
	}
	if userID == removedBy {
		return nil, domainerrors.Validation("use the leave operation to remove yourself")
	}

	if err := requireActiveMember(ctx, s.store, projectID, removedBy); err != nil {
		return nil, err
	}

	return s.removeMembership(ctx, projectID, userID)
}

// LeaveProject removes the caller's own membership.
func (s *MemberService) LeaveProject(ctx context.Context, projectID, userID string) (*RemoveMemberResponse, error) {
	if projectID == "" || userID == "" {
		return nil, domainerrors.Validation("project and user IDs are required")
	}
	return s.removeMembership(ctx, projectID, userID)
}

// removeMembership is the shared removal path for remove and leave.
func (s *MemberService) removeMembership(ctx context.Context, projectID, userID string) (*RemoveMemberResponse, error) {
	if _, err := s.store.GetMember(ctx, projectID, userID); err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return nil, domainerrors.NotFound("membership not found")
		}
		return nil, fmt.Errorf("get member: %w", err)
	}

	if err := s.store.DeleteMember(ctx, projectID, userID); err != nil {
		return nil, fmt.Errorf("delete member: %w", err)
	}
	resp := &RemoveMemberResponse{MemberRemoved: true}

	// Wrapper is a repairable secondary index.
	if err := s.store.DeleteWrapper(ctx, userID, projectID); err != nil {
		s.warn("failed to remove project wrapper", "project_id", projectID, "user_id", userID, "error", err)
	} else {
		resp.ProjectWrapperRemoved = true
	}

	// Member counter moves best-effort.
	if project, err := s.store.GetProject(ctx, projectID); err == nil {
		if project.MemberCount > 0 {
			project.MemberCount--
		}
		if err := s.store.UpdateProject(ctx, project); err != nil {
			s.warn("failed to drop member count", "project_id", projectID, "error", err)
		}
	}

	if remaining, err := s.store.CountActiveMembers(ctx, projectID); err == nil && remaining == 0 {
		s.warn("project has no active members left", "project_id", projectID)
	}

	if s.logger != nil {
		s.logger.Info("Member removed", "project_id", projectID, "user_id", userID)
	}
	return resp, nil
}

// BlockMember bars a member from the project while keeping the row for
// audit. No self-block; the blocker must be an active member.
func (s *MemberService) BlockMember(ctx context.Context, projectID, userID, blockedBy string) error {
	if projectID == "" || userID == "" || blockedBy == "" {
		return domainerrors.Validation("project, user, and blocker IDs are required")
	}
	if userID == blockedBy {
		return domainerrors.Validation("cannot block yourself")
	}

	if err := requireActiveMember(ctx, s.store, projectID, blockedBy); err != nil {
		return err
	}

	member, err := s.store.GetMember(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return domainerrors.NotFound("membership not found")
		}
		return fmt.Errorf("get member: %w", err)
	}

	if err := member.Block(); err != nil {
		return err
	}
	if err := s.store.UpdateMember(ctx, member); err != nil {
		return fmt.Errorf("save blocked member: %w", err)
	}

	// The blocked user's wrapper is deactivated best-effort so the
	// project drops out of their index.
	if wrapper, err := s.store.GetWrapper(ctx, userID, projectID); err == nil {
		wrapper.Deactivate()
		if err := s.store.UpdateWrapper(ctx, userID, wrapper); err != nil {
			s.warn("failed to deactivate wrapper for blocked member", "user_id", userID, "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("Member blocked", "project_id", projectID, "user_id", userID, "blocked_by", blockedBy)
	}
	return nil
}

// ListMembers returns the project's member rows hydrated with each
// user's public profile. Only active members may list.
func (s *MemberService) ListMembers(ctx context.Context, projectID, userID string) ([]MemberView, error) {
	if projectID == "" || userID == "" {
		return nil, domainerrors.Validation("project and user IDs are required")
	}

	if err := requireActiveMember(ctx, s.store, projectID, userID); err != nil {
		return nil, err
	}

	members, err := s.store.ListMembersByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	views := make([]MemberView, 0, len(members))
	for _, m := range members {
		view := MemberView{
			UserID:  m.UserID,
			RoleIDs: m.RoleIDs,
			Status:  m.Status,
		}
		if user, err := s.store.GetUser(ctx, m.UserID); err == nil {
			profile := user.Profile()
			view.DisplayName = profile.DisplayName
			view.ProfileImageURL = profile.ProfileImageURL
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *MemberService) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
