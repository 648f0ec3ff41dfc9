package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDMChannelID_OrderIndependent(t *testing.T) {
	assert.Equal(t, DMChannelID("user-a", "user-b"), DMChannelID("user-b", "user-a"))
}

func TestNewDMChannel(t *testing.T) {
	ch := NewDMChannel("user-b", "user-a")

	require.NotNil(t, ch)
	assert.Equal(t, [2]string{"user-a", "user-b"}, ch.Participants)
	assert.Equal(t, DMChannelID("user-a", "user-b"), ch.ID)
	assert.True(t, ch.HasParticipant("user-a"))
	assert.True(t, ch.HasParticipant("user-b"))
	assert.False(t, ch.HasParticipant("user-c"))
}

func TestDMChannel_OtherParticipant(t *testing.T) {
	ch := NewDMChannel("user-a", "user-b")

	assert.Equal(t, "user-b", ch.OtherParticipant("user-a"))
	assert.Equal(t, "user-a", ch.OtherParticipant("user-b"))
	assert.Empty(t, ch.OtherParticipant("user-c"))
}

func TestNewDMWrapper(t *testing.T) {
	peer := PublicProfile{ID: "user-b", DisplayName: "Dana"}
	w := NewDMWrapper("dm_user-a:user-b", peer)

	assert.Equal(t, "dm_user-a:user-b", w.ID)
	assert.Equal(t, "user-b", w.OtherUserID)
	assert.Equal(t, "Dana", w.OtherUserName)
}
