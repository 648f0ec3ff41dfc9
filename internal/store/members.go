package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/teamloop/teamloop-server/internal/domain"
)

// Memberships are keyed member:{projectID}:{userID}. The pair key is
// the uniqueness guard: a second join attempt lands on the same key.
const memberPrefix = "member:"

var (
	// ErrMemberNotFound is returned when a membership cannot be found.
	ErrMemberNotFound = errors.New("member not found")
	// ErrMemberExists is returned when creating a membership that
	// already exists for the (project, user) pair.
	ErrMemberExists = errors.New("member already exists")
)

func memberKey(projectID, userID string) []byte {
	return []byte(memberPrefix + projectID + ":" + userID)
}

// CreateMember creates a membership, failing if one already exists for
// the pair. Check and write share one transaction so concurrent joins
// cannot both succeed.
func (s *Store) CreateMember(_ context.Context, member *domain.Member) error {
	key := memberKey(member.ProjectID, member.UserID)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrMemberExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check member exists: %w", err)
		}

		return setInTxn(txn, key, member)
	})
}

// GetMember retrieves the membership for a (project, user) pair.
func (s *Store) GetMember(_ context.Context, projectID, userID string) (*domain.Member, error) {
	var member domain.Member
	if err := s.get(memberKey(projectID, userID), &member); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &member, nil
}

// UpdateMember persists a mutated membership.
func (s *Store) UpdateMember(_ context.Context, member *domain.Member) error {
	key := memberKey(member.ProjectID, member.UserID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check member exists: %w", err)
	}
	if !exists {
		return ErrMemberNotFound
	}

	member.Touch()
	return s.set(key, member)
}

// DeleteMember removes a membership row outright.
func (s *Store) DeleteMember(_ context.Context, projectID, userID string) error {
	return s.delete(memberKey(projectID, userID))
}

// ListMembersByProject returns all membership rows for a project,
// including blocked ones.
func (s *Store) ListMembersByProject(_ context.Context, projectID string) ([]*domain.Member, error) {
	members, err := scanPrefix[domain.Member](s, []byte(memberPrefix+projectID+":"))
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// CountActiveMembers returns the number of active members in a project.
func (s *Store) CountActiveMembers(ctx context.Context, projectID string) (int, error) {
	members, err := s.ListMembersByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range members {
		if m.IsActive() {
			count++
		}
	}
	return count, nil
}
