package domain

import "github.com/teamloop/teamloop-server/internal/errors"

// Project represents a collaboration space that users join as members.
type Project struct {
	Base
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	OwnerID     string `json:"owner_id"`

	// MemberCount is a denormalized counter updated best-effort on
	// join/leave. Treat it as approximate.
	MemberCount int `json:"member_count"`
}

// NewProject creates a project owned by the given user. The owner is
// counted as the first member.
func NewProject(id, name, ownerID string) *Project {
	p := &Project{
		Base:        Base{ID: id},
		Name:        name,
		OwnerID:     ownerID,
		MemberCount: 1,
	}
	p.InitTimestamps()
	return p
}

// IsOwner reports whether the given user owns the project.
func (p *Project) IsOwner(userID string) bool {
	return p.OwnerID == userID
}

// Delete soft-deletes the project. Members and wrappers are not
// cascaded; stale wrappers are cleaned up lazily when their users next
// list projects.
func (p *Project) Delete() error {
	if p.IsDeleted() {
		return errors.Conflict("project is already deleted")
	}
	p.MarkDeleted()
	return nil
}
