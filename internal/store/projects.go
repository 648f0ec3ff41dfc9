package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/teamloop/teamloop-server/internal/domain"
)

const projectPrefix = "project:"

// ErrProjectNotFound is returned when a project cannot be found.
var ErrProjectNotFound = errors.New("project not found")

// CreateProject creates a new project.
func (s *Store) CreateProject(_ context.Context, project *domain.Project) error {
	key := []byte(projectPrefix + project.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check project exists: %w", err)
	}
	if exists {
		return errors.New("project ID already exists")
	}

	return s.set(key, project)
}

// GetProject retrieves a project by ID. Soft-deleted projects are
// still returned; callers decide how to treat them.
func (s *Store) GetProject(_ context.Context, id string) (*domain.Project, error) {
	key := []byte(projectPrefix + id)

	var project domain.Project
	if err := s.get(key, &project); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	return &project, nil
}

// UpdateProject updates an existing project.
func (s *Store) UpdateProject(_ context.Context, project *domain.Project) error {
	key := []byte(projectPrefix + project.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check project exists: %w", err)
	}
	if !exists {
		return ErrProjectNotFound
	}

	project.Touch()
	return s.set(key, project)
}
