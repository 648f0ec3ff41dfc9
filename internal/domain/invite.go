package domain

import (
	"time"

	"github.com/teamloop/teamloop-server/internal/errors"
)

// InviteStatus represents the explicit lifecycle state of an invite.
// Expiry is derived from ExpiresAt, not stored as a status.
type InviteStatus string

const (
	// InviteStatusActive means the invite can be used, subject to
	// expiry and the usage cap.
	InviteStatusActive InviteStatus = "ACTIVE"
	// InviteStatusRevoked means the invite was withdrawn by a member.
	InviteStatusRevoked InviteStatus = "REVOKED"
)

// Invite is a shareable token granting entry to a project.
// The code doubles as the storage key, which makes collision checks a
// simple existence test.
type Invite struct {
	Base // ID equals Code

	Code      string    `json:"code"`
	ProjectID string    `json:"project_id"`
	CreatedBy string    `json:"created_by"`
	ExpiresAt time.Time `json:"expires_at"`

	// MaxUses caps how many joins this invite allows. Zero means
	// unlimited.
	MaxUses     int `json:"max_uses,omitempty"`
	CurrentUses int `json:"current_uses"`

	Status InviteStatus `json:"status"`
}

// NewInvite creates an active invite for the given project.
func NewInvite(code, projectID, createdBy string, expiresAt time.Time, maxUses int) *Invite {
	inv := &Invite{
		Base:      Base{ID: code},
		Code:      code,
		ProjectID: projectID,
		CreatedBy: createdBy,
		ExpiresAt: expiresAt,
		MaxUses:   maxUses,
		Status:    InviteStatusActive,
	}
	inv.InitTimestamps()
	return inv
}

// IsExpired returns true if the invite has passed its expiration time.
func (i *Invite) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// IsMaxedOut returns true if the invite has a usage cap and has reached it.
func (i *Invite) IsMaxedOut() bool {
	return i.MaxUses > 0 && i.CurrentUses >= i.MaxUses
}

// CanBeUsed returns true if the invite can still admit a user:
// active, not expired, and under its usage cap.
func (i *Invite) CanBeUsed() bool {
	return i.Status == InviteStatusActive && !i.IsExpired() && !i.IsMaxedOut() && !i.IsDeleted()
}

// UnusableReason returns a human-readable reason the invite cannot be
// used, or an empty string if it can.
func (i *Invite) UnusableReason() string {
	switch {
	case i.Status == InviteStatusRevoked || i.IsDeleted():
		return "invite has been revoked"
	case i.IsExpired():
		return "invite has expired"
	case i.IsMaxedOut():
		return "invite has reached its maximum usage limit"
	default:
		return ""
	}
}

// Revoke withdraws the invite. Revoking twice is a conflict.
func (i *Invite) Revoke() error {
	if i.Status == InviteStatusRevoked {
		return errors.Conflict("invite is already revoked")
	}
	i.Status = InviteStatusRevoked
	i.Touch()
	return nil
}

// RecordUse increments the usage counter.
func (i *Invite) RecordUse() {
	i.CurrentUses++
	i.Touch()
}
