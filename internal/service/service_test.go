package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teamloop/teamloop-server/internal/domain"
	"github.com/teamloop/teamloop-server/internal/id"
	"github.com/teamloop/teamloop-server/internal/store"
)

// newTestStore creates a store backed by a temporary directory.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "teamloop-service-test-*")
	require.NoError(t, err)

	s, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	})

	return s
}

// newTestUser creates and persists a user that accepts friend requests.
func newTestUser(t *testing.T, s *store.Store, displayName string) *domain.User {
	t.Helper()

	user := &domain.User{
		Base:                domain.Base{ID: id.MustNew("usr")},
		Email:               displayName + "@example.com",
		DisplayName:         displayName,
		AllowFriendRequests: true,
	}
	user.InitTimestamps()
	require.NoError(t, s.CreateUser(context.Background(), user))

	return user
}

// newTestProject creates a project with the owner's membership and
// wrapper, mirroring ProjectService.CreateProject.
func newTestProject(t *testing.T, s *store.Store, owner *domain.User, name string) *domain.Project {
	t.Helper()

	ctx := context.Background()
	project := domain.NewProject(id.MustNew("prj"), name, owner.ID)
	require.NoError(t, s.CreateProject(ctx, project))
	require.NoError(t, s.CreateMember(ctx, domain.NewMember(id.MustNew("mbr"), project.ID, owner.ID)))
	require.NoError(t, s.SaveWrapper(ctx, owner.ID, domain.NewProjectWrapper(project)))

	return project
}
