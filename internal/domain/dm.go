package domain

import "strings"

// DMChannel is a direct-message channel between exactly two users.
// Its ID is derived from the sorted participant pair, so any two users
// share at most one channel regardless of who initiates.
type DMChannel struct {
	Base // ID from DMChannelID

	Participants [2]string `json:"participants"` // sorted ascending
}

// DMChannelID derives the canonical channel ID for a pair of users.
// The IDs are sorted so both orderings map to the same channel.
func DMChannelID(userA, userB string) string {
	a, b := SortUserPair(userA, userB)
	return "dm_" + a + ":" + b
}

// SortUserPair returns the two user IDs in ascending order.
func SortUserPair(userA, userB string) (string, string) {
	if strings.Compare(userA, userB) > 0 {
		return userB, userA
	}
	return userA, userB
}

// NewDMChannel creates the channel for a pair of users.
func NewDMChannel(userA, userB string) *DMChannel {
	a, b := SortUserPair(userA, userB)
	ch := &DMChannel{
		Base:         Base{ID: DMChannelID(a, b)},
		Participants: [2]string{a, b},
	}
	ch.InitTimestamps()
	return ch
}

// HasParticipant reports whether the user belongs to this channel.
func (c *DMChannel) HasParticipant(userID string) bool {
	return c.Participants[0] == userID || c.Participants[1] == userID
}

// OtherParticipant returns the peer of the given user, or an empty
// string if the user is not in the channel.
func (c *DMChannel) OtherParticipant(userID string) string {
	switch userID {
	case c.Participants[0]:
		return c.Participants[1]
	case c.Participants[1]:
		return c.Participants[0]
	default:
		return ""
	}
}

// DMWrapper is a per-user index entry for a DM channel, carrying a
// snapshot of the peer so the client can render the conversation list
// without extra lookups.
type DMWrapper struct {
	Base // ID is the channel ID

	OtherUserID       string `json:"other_user_id"`
	OtherUserName     string `json:"other_user_name"`
	OtherUserImageURL string `json:"other_user_image_url,omitempty"`
}

// NewDMWrapper creates the index entry for one side of a channel.
func NewDMWrapper(channelID string, peer PublicProfile) *DMWrapper {
	w := &DMWrapper{
		Base:              Base{ID: channelID},
		OtherUserID:       peer.ID,
		OtherUserName:     peer.DisplayName,
		OtherUserImageURL: peer.ProfileImageURL,
	}
	w.InitTimestamps()
	return w
}
