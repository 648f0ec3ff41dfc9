package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/teamloop/teamloop-server/internal/domain"
)

// Wrappers are keyed wrapper:{userID}:{projectID} so a user's project
// index is one prefix scan.
const wrapperPrefix = "wrapper:"

// ErrWrapperNotFound is returned when a project wrapper cannot be found.
var ErrWrapperNotFound = errors.New("project wrapper not found")

func wrapperKey(userID, projectID string) []byte {
	return []byte(wrapperPrefix + userID + ":" + projectID)
}

// SaveWrapper writes a project wrapper into the user's index.
func (s *Store) SaveWrapper(_ context.Context, userID string, wrapper *domain.ProjectWrapper) error {
	return s.set(wrapperKey(userID, wrapper.ID), wrapper)
}

// GetWrapper retrieves the wrapper a user holds for a project.
func (s *Store) GetWrapper(_ context.Context, userID, projectID string) (*domain.ProjectWrapper, error) {
	var wrapper domain.ProjectWrapper
	if err := s.get(wrapperKey(userID, projectID), &wrapper); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrWrapperNotFound
		}
		return nil, fmt.Errorf("get wrapper: %w", err)
	}
	return &wrapper, nil
}

// UpdateWrapper persists a mutated wrapper.
func (s *Store) UpdateWrapper(_ context.Context, userID string, wrapper *domain.ProjectWrapper) error {
	key := wrapperKey(userID, wrapper.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check wrapper exists: %w", err)
	}
	if !exists {
		return ErrWrapperNotFound
	}

	wrapper.Touch()
	return s.set(key, wrapper)
}

// DeleteWrapper removes a wrapper from the user's index.
func (s *Store) DeleteWrapper(_ context.Context, userID, projectID string) error {
	return s.delete(wrapperKey(userID, projectID))
}

// ListWrappersByUser returns all wrappers in a user's index, active or
// not.
func (s *Store) ListWrappersByUser(_ context.Context, userID string) ([]*domain.ProjectWrapper, error) {
	wrappers, err := scanPrefix[domain.ProjectWrapper](s, []byte(wrapperPrefix+userID+":"))
	if err != nil {
		return nil, fmt.Errorf("list wrappers: %w", err)
	}
	return wrappers, nil
}
