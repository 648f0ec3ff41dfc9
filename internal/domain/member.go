package domain

import "github.com/teamloop/teamloop-server/internal/errors"

// MemberStatus represents a member's standing within a project.
type MemberStatus string

const (
	// MemberStatusActive indicates a participating member.
	MemberStatusActive MemberStatus = "ACTIVE"
	// MemberStatusBlocked indicates a member barred from the project.
	// The row is retained for audit rather than deleted.
	MemberStatusBlocked MemberStatus = "BLOCKED"
)

// DefaultRoleID is assigned to members who join without an explicit role.
const DefaultRoleID = "member"

// Member represents one user's membership in one project.
// At most one member record exists per (project, user) pair while active;
// removal deletes the row outright.
type Member struct {
	Base
	ProjectID string       `json:"project_id"`
	UserID    string       `json:"user_id"`
	RoleIDs   []string     `json:"role_ids"`
	Status    MemberStatus `json:"status"`
	InvitedBy string       `json:"invited_by,omitempty"` // User who created the invite this member joined with
}

// NewMember creates an active membership with the default role.
func NewMember(id, projectID, userID string) *Member {
	m := &Member{
		Base:      Base{ID: id},
		ProjectID: projectID,
		UserID:    userID,
		RoleIDs:   []string{DefaultRoleID},
		Status:    MemberStatusActive,
	}
	m.InitTimestamps()
	return m
}

// IsActive returns true if the member participates in the project.
func (m *Member) IsActive() bool {
	return m.Status == MemberStatusActive && !m.IsDeleted()
}

// IsBlocked returns true if the member has been blocked.
func (m *Member) IsBlocked() bool {
	return m.Status == MemberStatusBlocked
}

// Block bars the member from the project. Blocking an already blocked
// member is a conflict.
func (m *Member) Block() error {
	if m.IsBlocked() {
		return errors.Conflict("member is already blocked")
	}
	m.Status = MemberStatusBlocked
	m.Touch()
	return nil
}

// HasRole reports whether the member holds the given role.
func (m *Member) HasRole(roleID string) bool {
	for _, r := range m.RoleIDs {
		if r == roleID {
			return true
		}
	}
	return false
}
