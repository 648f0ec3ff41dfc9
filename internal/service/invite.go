package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamloop/teamloop-server/internal/domain"
	domainerrors "github.com/teamloop/teamloop-server/internal/errors"
	"github.com/teamloop/teamloop-server/internal/id"
	"github.com/teamloop/teamloop-server/internal/store"
)

// maxCodeAttempts bounds collision retries during code generation.
// The code space is large enough that repeated collisions indicate a
// systemic problem, not bad luck.
const maxCodeAttempts = 3

// InviteService handles invite generation, validation, and revocation.
type InviteService struct {
	store          *store.Store
	logger         *slog.Logger
	publicURL      string // Base URL for generating invite links
	defaultTTL     time.Duration
	defaultMaxUses int

	// newCode is swappable in tests to force collisions.
	newCode func() (string, error)
}

// NewInviteService creates a new invite service.
func NewInviteService(
	store *store.Store,
	logger *slog.Logger,
	publicURL string,
	defaultTTL time.Duration,
	defaultMaxUses int,
) *InviteService {
	return &InviteService{
		store:          store,
		logger:         logger,
		publicURL:      publicURL,
		defaultTTL:     defaultTTL,
		defaultMaxUses: defaultMaxUses,
		newCode:        id.NewInviteCode,
	}
}

// GenerateInviteResponse is returned after creating an invite link.
type GenerateInviteResponse struct {
	InviteCode string              `json:"invite_code"`
	InviteLink string              `json:"invite_link"`
	ExpiresAt  time.Time           `json:"expires_at"`
	Status     domain.InviteStatus `json:"status"`
}

// ValidateInviteResponse reports whether a code can be used and, when
// it resolves, where it leads. An unknown or unusable code is reported
// through Valid and ErrorMessage rather than an error; callers must
// check Valid.
type ValidateInviteResponse struct {
	Valid           bool       `json:"valid"`
	ProjectID       string     `json:"project_id,omitempty"`
	ProjectName     string     `json:"project_name,omitempty"`
	ProjectImageURL string     `json:"project_image_url,omitempty"`
	InviterName     string     `json:"inviter_name,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	IsAlreadyMember bool       `json:"is_already_member,omitempty"`
	ErrorMessage    string     `json:"error_message,omitempty"`
}

// GenerateInviteLink creates a collision-checked invite code for a
// project and returns the shareable link. The inviter must be an
// active member. Zero expiresInHours and maxUses fall back to the
// configured defaults.
func (s *InviteService) GenerateInviteLink(ctx context.Context, projectID, inviterID string, expiresInHours, maxUses int) (*GenerateInviteResponse, error) {
	if projectID == "" || inviterID == "" {
		return nil, domainerrors.Validation("project and inviter IDs are required")
	}
	if expiresInHours < 0 {
		return nil, domainerrors.Validation("expiry must not be negative")
	}
	if maxUses < 0 {
		return nil, domainerrors.Validation("max uses must not be negative")
	}

	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return nil, domainerrors.NotFoundResource("project", projectID)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project.IsDeleted() {
		return nil, domainerrors.NotFoundResource("project", projectID)
	}

	if err := requireActiveMember(ctx, s.store, projectID, inviterID); err != nil {
		return nil, err
	}

	ttl := s.defaultTTL
	if expiresInHours > 0 {
		ttl = time.Duration(expiresInHours) * time.Hour
	}
	expiresAt := time.Now().Add(ttl)

	useCap := s.defaultMaxUses
	if maxUses > 0 {
		useCap = maxUses
	}

	// Optimistic create-if-absent with bounded retries. The code is the
	// document key, so the collision check and the write are atomic.
	var invite *domain.Invite
	for attempt := range maxCodeAttempts {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("generate invite code: %w", err)
		}

		candidate := domain.NewInvite(code, projectID, inviterID, expiresAt, useCap)
		err = s.store.CreateInvite(ctx, candidate)
		if err == nil {
			invite = candidate
			break
		}
		if !errors.Is(err, store.ErrInviteCodeExists) {
			return nil, fmt.Errorf("create invite: %w", err)
		}

		s.warn("invite code collision", "attempt", attempt+1, "project_id", projectID)
	}
	if invite == nil {
		return nil, domainerrors.Internalf("failed to generate a unique invite code after %d attempts", maxCodeAttempts)
	}

	if s.logger != nil {
		s.logger.Info("Invite link generated",
			"code", invite.Code,
			"project_id", projectID,
			"created_by", inviterID,
			"expires_at", invite.ExpiresAt,
		)
	}

	return &GenerateInviteResponse{
		InviteCode: invite.Code,
		InviteLink: s.InviteURL(invite.Code),
		ExpiresAt:  invite.ExpiresAt,
		Status:     invite.Status,
	}, nil
}

// ValidateInviteCode checks a code without side effects. Pass a userID
// to additionally learn whether that user already belongs to the
// target project.
func (s *InviteService) ValidateInviteCode(ctx context.Context, code, userID string) (*ValidateInviteResponse, error) {
	if code == "" {
		return nil, domainerrors.Validation("invite code is required")
	}

	invite, err := s.store.GetInviteByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrInviteNotFound) {
			return &ValidateInviteResponse{Valid: false, ErrorMessage: "invite not found"}, nil
		}
		return nil, fmt.Errorf("get invite: %w", err)
	}

	resp := &ValidateInviteResponse{
		ProjectID: invite.ProjectID,
		ExpiresAt: &invite.ExpiresAt,
	}

	if project, err := s.store.GetProject(ctx, invite.ProjectID); err == nil && !project.IsDeleted() {
		resp.ProjectName = project.Name
		resp.ProjectImageURL = project.ImageURL
	} else {
		resp.ErrorMessage = "project no longer exists"
		return resp, nil
	}

	if !invite.CanBeUsed() {
		resp.ErrorMessage = invite.UnusableReason()
		return resp, nil
	}
	resp.Valid = true

	if inviter, err := s.store.GetUser(ctx, invite.CreatedBy); err == nil {
		resp.InviterName = inviter.Name()
	}

	if userID != "" {
		member, err := s.store.GetMember(ctx, invite.ProjectID, userID)
		if err == nil && member.IsActive() {
			resp.IsAlreadyMember = true
		}
	}

	return resp, nil
}

// RevokeInvite withdraws an invite. Only the invite's creator or the
// project owner may revoke it.
func (s *InviteService) RevokeInvite(ctx context.Context, code, userID string) error {
	if code == "" || userID == "" {
		return domainerrors.Validation("invite code and user ID are required")
	}

	invite, err := s.store.GetInviteByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrInviteNotFound) {
			return domainerrors.NotFoundResource("invite", code)
		}
		return fmt.Errorf("get invite: %w", err)
	}

	if invite.CreatedBy != userID {
		project, err := s.store.GetProject(ctx, invite.ProjectID)
		if err != nil || !project.IsOwner(userID) {
			return domainerrors.Unauthorized("only the invite creator or the project owner can revoke it")
		}
	}

	if err := invite.Revoke(); err != nil {
		return err
	}
	if err := s.store.UpdateInvite(ctx, invite); err != nil {
		return fmt.Errorf("save revoked invite: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Invite revoked", "code", code, "project_id", invite.ProjectID, "revoked_by", userID)
	}
	return nil
}

// ListProjectInvites returns all invites for a project. Only active
// members may list them.
func (s *InviteService) ListProjectInvites(ctx context.Context, projectID, userID string) ([]*domain.Invite, error) {
	if projectID == "" || userID == "" {
		return nil, domainerrors.Validation("project and user IDs are required")
	}

	if err := requireActiveMember(ctx, s.store, projectID, userID); err != nil {
		return nil, err
	}

	invites, err := s.store.ListInvitesByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	return invites, nil
}

// InviteURL returns the shareable URL for an invite code.
func (s *InviteService) InviteURL(code string) string {
	return s.publicURL + "/invite/" + code
}

func (s *InviteService) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
