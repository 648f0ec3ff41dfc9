package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvite(t *testing.T) {
	expires := time.Now().Add(24 * time.Hour)

	inv := NewInvite("Abc23xYz", "proj-1", "user-1", expires, 5)

	require.NotNil(t, inv)
	assert.Equal(t, "Abc23xYz", inv.ID)
	assert.Equal(t, "Abc23xYz", inv.Code)
	assert.Equal(t, "proj-1", inv.ProjectID)
	assert.Equal(t, "user-1", inv.CreatedBy)
	assert.Equal(t, 5, inv.MaxUses)
	assert.Equal(t, 0, inv.CurrentUses)
	assert.Equal(t, InviteStatusActive, inv.Status)
	assert.True(t, inv.CanBeUsed())
}

func TestInvite_CanBeUsed(t *testing.T) {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name        string
		invite      *Invite
		want        bool
		wantMessage string
	}{
		{
			name:   "active, unexpired, unlimited uses",
			invite: &Invite{Status: InviteStatusActive, ExpiresAt: future},
			want:   true,
		},
		{
			name:   "active, unexpired, under use cap",
			invite: &Invite{Status: InviteStatusActive, ExpiresAt: future, MaxUses: 3, CurrentUses: 2},
			want:   true,
		},
		{
			name:        "revoked",
			invite:      &Invite{Status: InviteStatusRevoked, ExpiresAt: future},
			want:        false,
			wantMessage: "revoked",
		},
		{
			name:        "expired",
			invite:      &Invite{Status: InviteStatusActive, ExpiresAt: past},
			want:        false,
			wantMessage: "expired",
		},
		{
			name:        "maxed out",
			invite:      &Invite{Status: InviteStatusActive, ExpiresAt: future, MaxUses: 3, CurrentUses: 3},
			want:        false,
			wantMessage: "maximum usage limit",
		},
		{
			name:        "revoked and expired reports revoked",
			invite:      &Invite{Status: InviteStatusRevoked, ExpiresAt: past},
			want:        false,
			wantMessage: "revoked",
		},
		{
			name:        "expired and maxed out reports expired",
			invite:      &Invite{Status: InviteStatusActive, ExpiresAt: past, MaxUses: 1, CurrentUses: 1},
			want:        false,
			wantMessage: "expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.invite.CanBeUsed())

			reason := tt.invite.UnusableReason()
			if tt.want {
				assert.Empty(t, reason)
			} else {
				assert.Contains(t, reason, tt.wantMessage)
			}
		})
	}
}

func TestInvite_Revoke(t *testing.T) {
	inv := NewInvite("Abc23xYz", "proj-1", "user-1", time.Now().Add(time.Hour), 0)

	require.NoError(t, inv.Revoke())
	assert.Equal(t, InviteStatusRevoked, inv.Status)
	assert.False(t, inv.CanBeUsed())

	err := inv.Revoke()
	assert.Error(t, err)
}

func TestInvite_RecordUse(t *testing.T) {
	inv := NewInvite("Abc23xYz", "proj-1", "user-1", time.Now().Add(time.Hour), 2)

	inv.RecordUse()
	assert.Equal(t, 1, inv.CurrentUses)
	assert.True(t, inv.CanBeUsed())

	inv.RecordUse()
	assert.Equal(t, 2, inv.CurrentUses)
	assert.False(t, inv.CanBeUsed())
	assert.Contains(t, inv.UnusableReason(), "maximum usage limit")
}
