package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/teamloop/teamloop-server/internal/domain"
	domainerrors "github.com/teamloop/teamloop-server/internal/errors"
	"github.com/teamloop/teamloop-server/internal/id"
	"github.com/teamloop/teamloop-server/internal/store"
)

// ProjectService manages project lifecycle and the per-user project
// listings backed by the wrapper index.
type ProjectService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewProjectService creates a new project service.
func NewProjectService(store *store.Store, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		store:  store,
		logger: logger,
	}
}

// CreateProjectRequest contains the data needed to create a project.
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
}

// CreateProject creates a project with the caller as owner and first
// member, and seeds the owner's wrapper entry.
func (s *ProjectService) CreateProject(ctx context.Context, ownerID string, req CreateProjectRequest) (*domain.Project, error) {
	if ownerID == "" {
		return nil, domainerrors.Validation("owner ID is required")
	}
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	if _, err := s.store.GetUser(ctx, ownerID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFoundResource("user", ownerID)
		}
		return nil, fmt.Errorf("get owner: %w", err)
	}

	project := domain.NewProject(id.MustNew("prj"), req.Name, ownerID)
	project.Description = req.Description
	project.ImageURL = req.ImageURL

	if err := s.store.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	// The owner's membership row is part of the project's invariant;
	// failing it fails the create.
	owner := domain.NewMember(id.MustNew("mbr"), project.ID, ownerID)
	if err := s.store.CreateMember(ctx, owner); err != nil {
		return nil, fmt.Errorf("create owner membership: %w", err)
	}

	// Wrapper is a secondary index, repaired lazily if this write is lost.
	if err := s.store.SaveWrapper(ctx, ownerID, domain.NewProjectWrapper(project)); err != nil {
		s.warn("failed to seed owner wrapper", "project_id", project.ID, "owner_id", ownerID, "error", err)
	}

	if s.logger != nil {
		s.logger.Info("Project created", "project_id", project.ID, "name", project.Name, "owner_id", ownerID)
	}
	return project, nil
}

// DeleteProject soft-deletes a project. Only the owner may delete, with
// no delegation. Members and wrappers are not cascaded; stale wrappers
// are cleaned up lazily when their users next list projects.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID, deletedBy string) error {
	if projectID == "" || deletedBy == "" {
		return domainerrors.Validation("project and user IDs are required")
	}

	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return domainerrors.NotFoundResource("project", projectID)
		}
		return fmt.Errorf("get project: %w", err)
	}

	if !project.IsOwner(deletedBy) {
		return domainerrors.Unauthorized("only the project owner can delete the project")
	}

	if err := project.Delete(); err != nil {
		return err
	}
	if err := s.store.UpdateProject(ctx, project); err != nil {
		return fmt.Errorf("save deleted project: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Project deleted", "project_id", projectID, "deleted_by", deletedBy)
	}
	return nil
}

// ProjectListEntry is one project in a user's listing.
type ProjectListEntry struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	ImageURL    string `json:"image_url,omitempty"`
}

// ListProjects returns the user's active projects from the wrapper
// index. Wrappers pointing at deleted or missing projects are cleaned
// up lazily here, since deletion does not cascade.
func (s *ProjectService) ListProjects(ctx context.Context, userID string) ([]ProjectListEntry, error) {
	if userID == "" {
		return nil, domainerrors.Validation("user ID is required")
	}

	wrappers, err := s.store.ListWrappersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list wrappers: %w", err)
	}

	entries := make([]ProjectListEntry, 0, len(wrappers))
	for _, w := range wrappers {
		if !w.IsActive() {
			continue
		}

		project, err := s.store.GetProject(ctx, w.ID)
		if err != nil || project.IsDeleted() {
			if err != nil && !errors.Is(err, store.ErrProjectNotFound) {
				s.warn("failed to resolve wrapped project", "project_id", w.ID, "error", err)
				continue
			}
			// Stale wrapper left behind by a project deletion.
			if delErr := s.store.DeleteWrapper(ctx, userID, w.ID); delErr != nil {
				s.warn("failed to clean stale wrapper", "project_id", w.ID, "user_id", userID, "error", delErr)
			}
			continue
		}

		entries = append(entries, ProjectListEntry{
			ProjectID:   project.ID,
			ProjectName: project.Name,
			ImageURL:    project.ImageURL,
		})
	}
	return entries, nil
}

// GetProject returns a project for an active member.
func (s *ProjectService) GetProject(ctx context.Context, projectID, userID string) (*domain.Project, error) {
	if projectID == "" || userID == "" {
		return nil, domainerrors.Validation("project and user IDs are required")
	}

	if err := requireActiveMember(ctx, s.store, projectID, userID); err != nil {
		return nil, err
	}

	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrProjectNotFound) {
			return nil, domainerrors.NotFoundResource("project", projectID)
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project.IsDeleted() {
		return nil, domainerrors.NotFoundResource("project", projectID)
	}
	return project, nil
}

func (s *ProjectService) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
