package domain

import "time"

// UserStatus represents the user's account status.
type UserStatus string

const (
	// UserStatusActive indicates the user can log in and use the system.
	UserStatusActive UserStatus = "active"
	// UserStatusSuspended indicates the account has been disabled.
	UserStatusSuspended UserStatus = "suspended"
)

// User represents an authenticated account.
type User struct {
	Base
	Email           string     `json:"email"`
	PasswordHash    string     `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	DisplayName     string     `json:"display_name"`
	ProfileImageURL string     `json:"profile_image_url,omitempty"`
	Status          UserStatus `json:"status,omitempty"` // empty = active for backward compat

	// AllowFriendRequests controls whether other users can send this
	// account a friend request.
	AllowFriendRequests bool `json:"allow_friend_requests"`

	// FriendCount is a denormalized counter refreshed best-effort after
	// friend operations. Treat it as approximate.
	FriendCount int `json:"friend_count"`

	LastLoginAt time.Time `json:"last_login_at,omitzero"`
}

// IsActive returns true if the user can log in and use the system.
// Empty status is treated as active for backward compatibility.
func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == UserStatusActive
}

// CanReceiveFriendRequests reports whether this user accepts incoming
// friend requests.
func (u *User) CanReceiveFriendRequests() bool {
	return u.AllowFriendRequests && u.IsActive() && !u.IsDeleted()
}

// Name returns the best available display string for the user.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// PublicProfile is the subset of user fields safe to embed in other
// users' views (friend lists, member lists).
type PublicProfile struct {
	ID              string     `json:"id"`
	DisplayName     string     `json:"display_name"`
	ProfileImageURL string     `json:"profile_image_url,omitempty"`
	Status          UserStatus `json:"status,omitempty"`
}

// Profile returns the public view of the user.
func (u *User) Profile() PublicProfile {
	return PublicProfile{
		ID:              u.ID,
		DisplayName:     u.Name(),
		ProfileImageURL: u.ProfileImageURL,
		Status:          u.Status,
	}
}
