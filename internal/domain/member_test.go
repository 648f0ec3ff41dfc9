package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMember(t *testing.T) {
	m := NewMember("mbr-1", "proj-1", "user-1")

	require.NotNil(t, m)
	assert.Equal(t, "mbr-1", m.ID)
	assert.Equal(t, "proj-1", m.ProjectID)
	assert.Equal(t, "user-1", m.UserID)
	assert.Equal(t, []string{DefaultRoleID}, m.RoleIDs)
	assert.Equal(t, MemberStatusActive, m.Status)
	assert.True(t, m.IsActive())
	assert.False(t, m.IsBlocked())
}

func TestMember_Block(t *testing.T) {
	m := NewMember("mbr-1", "proj-1", "user-1")

	require.NoError(t, m.Block())
	assert.Equal(t, MemberStatusBlocked, m.Status)
	assert.True(t, m.IsBlocked())
	assert.False(t, m.IsActive())

	err := m.Block()
	assert.Error(t, err)
}

func TestMember_HasRole(t *testing.T) {
	m := NewMember("mbr-1", "proj-1", "user-1")
	m.RoleIDs = []string{"member", "moderator"}

	assert.True(t, m.HasRole("member"))
	assert.True(t, m.HasRole("moderator"))
	assert.False(t, m.HasRole("owner"))
}

func TestMember_DeletedIsNotActive(t *testing.T) {
	m := NewMember("mbr-1", "proj-1", "user-1")
	m.MarkDeleted()

	assert.False(t, m.IsActive())
}
