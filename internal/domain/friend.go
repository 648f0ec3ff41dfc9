package domain

import (
	"time"

	"github.com/teamloop/teamloop-server/internal/errors"
)

// FriendStatus represents the state of one directed friend edge.
// Each side of a relationship holds its own record with its own status.
type FriendStatus string

const (
	// FriendStatusPending marks an incoming request awaiting a response.
	FriendStatusPending FriendStatus = "PENDING"
	// FriendStatusRequested marks an outgoing request the peer has not
	// yet answered.
	FriendStatusRequested FriendStatus = "REQUESTED"
	// FriendStatusAccepted marks an established friendship.
	FriendStatusAccepted FriendStatus = "ACCEPTED"
	// FriendStatusRejected marks a declined request.
	FriendStatusRejected FriendStatus = "REJECTED"
	// FriendStatusRemoved marks a friendship ended after acceptance.
	FriendStatusRemoved FriendStatus = "REMOVED"
	// FriendStatusBlocked marks a peer this user has blocked.
	FriendStatusBlocked FriendStatus = "BLOCKED"
)

// Valid checks if the status is a known value.
func (s FriendStatus) Valid() bool {
	switch s {
	case FriendStatusPending, FriendStatusRequested, FriendStatusAccepted,
		FriendStatusRejected, FriendStatusRemoved, FriendStatusBlocked:
		return true
	default:
		return false
	}
}

// Friend is one directed edge of a relationship, stored under the
// viewing user and keyed by the peer's ID. For any live relationship
// between A and B, both sides hold a record with complementary status
// (A sees REQUESTED while B sees PENDING until acceptance makes both
// ACCEPTED).
type Friend struct {
	Base // ID is the peer's user ID

	// RequestID is shared by both edges of one request so the pair can
	// be correlated.
	RequestID string `json:"request_id"`

	// Denormalized snapshot of the peer taken when the edge was written.
	// Not refreshed when the peer later changes their profile.
	Name            string `json:"name"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`

	Status      FriendStatus `json:"status"`
	RequestedAt time.Time    `json:"requested_at"`
	AcceptedAt  *time.Time   `json:"accepted_at,omitempty"`
}

// NewFriendEdge builds one edge of a relationship pointing at the given
// peer with the given initial status.
func NewFriendEdge(requestID string, peer PublicProfile, status FriendStatus) *Friend {
	f := &Friend{
		Base:            Base{ID: peer.ID},
		RequestID:       requestID,
		Name:            peer.DisplayName,
		ProfileImageURL: peer.ProfileImageURL,
		Status:          status,
		RequestedAt:     time.Now(),
	}
	f.InitTimestamps()
	return f
}

// IsAccepted returns true if this edge represents an established friendship.
func (f *Friend) IsAccepted() bool {
	return f.Status == FriendStatusAccepted
}

// IsAnswerable returns true if this edge is a request that can still be
// accepted or rejected.
func (f *Friend) IsAnswerable() bool {
	return f.Status == FriendStatusPending || f.Status == FriendStatusRequested
}

// Accept transitions a pending or requested edge to accepted.
func (f *Friend) Accept() error {
	if !f.IsAnswerable() {
		return errors.ConflictResource("friend request", "status", string(f.Status))
	}
	now := time.Now()
	f.Status = FriendStatusAccepted
	f.AcceptedAt = &now
	f.Touch()
	return nil
}

// Reject transitions a pending or requested edge to rejected.
func (f *Friend) Reject() error {
	if !f.IsAnswerable() {
		return errors.ConflictResource("friend request", "status", string(f.Status))
	}
	f.Status = FriendStatusRejected
	f.Touch()
	return nil
}

// Remove ends an accepted friendship. Only accepted edges can be removed.
func (f *Friend) Remove() error {
	if f.Status != FriendStatusAccepted {
		return errors.ConflictResource("friend", "status", string(f.Status))
	}
	f.Status = FriendStatusRemoved
	f.Touch()
	return nil
}

// Block marks the peer as blocked from any current state except blocked.
func (f *Friend) Block() error {
	if f.Status == FriendStatusBlocked {
		return errors.Conflict("user is already blocked")
	}
	f.Status = FriendStatusBlocked
	f.Touch()
	return nil
}
