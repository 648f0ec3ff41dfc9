package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/teamloop/teamloop-server/internal/domain"
)

const (
	// The invite code is the document key, so a collision check is a
	// point read on the prospective key.
	invitePrefix          = "invite:"
	inviteByProjectPrefix = "idx:invites:project:"
)

var (
	// ErrInviteNotFound is returned when an invite cannot be found.
	ErrInviteNotFound = errors.New("invite not found")
	// ErrInviteCodeExists is returned when an invite code already exists.
	ErrInviteCodeExists = errors.New("invite code already exists")
	// ErrInviteExhausted is returned when a capped invite has no uses left.
	ErrInviteExhausted = errors.New("invite has no uses left")
)

// CreateInvite persists a new invite keyed by its code. The existence
// check and the write share one transaction, which closes the
// check-then-create race between two generators landing on the same
// code.
func (s *Store) CreateInvite(_ context.Context, invite *domain.Invite) error {
	key := []byte(invitePrefix + invite.Code)
	projectKey := []byte(inviteByProjectPrefix + invite.ProjectID + ":" + invite.Code)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrInviteCodeExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check code exists: %w", err)
		}

		if err := setInTxn(txn, key, invite); err != nil {
			return err
		}

		// Project index for listing a project's invites.
		return txn.Set(projectKey, []byte{})
	})
}

// GetInviteByCode retrieves an invite by its code.
func (s *Store) GetInviteByCode(_ context.Context, code string) (*domain.Invite, error) {
	key := []byte(invitePrefix + code)

	var invite domain.Invite
	if err := s.get(key, &invite); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("get invite: %w", err)
	}

	return &invite, nil
}

// ExistsInviteCode checks whether a code is already taken.
func (s *Store) ExistsInviteCode(_ context.Context, code string) (bool, error) {
	return s.exists([]byte(invitePrefix + code))
}

// UpdateInvite updates an existing invite (revocation, usage counting).
func (s *Store) UpdateInvite(_ context.Context, invite *domain.Invite) error {
	key := []byte(invitePrefix + invite.Code)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check invite exists: %w", err)
	}
	if !exists {
		return ErrInviteNotFound
	}

	invite.Touch()
	return s.set(key, invite)
}

// ConsumeInviteUse increments the usage counter of a capped invite.
// The cap re-check and the increment share one transaction so two
// racing joins cannot both take the last slot. Uncapped invites are
// left untouched.
func (s *Store) ConsumeInviteUse(_ context.Context, code string) error {
	key := []byte(invitePrefix + code)

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrInviteNotFound
			}
			return fmt.Errorf("get invite: %w", err)
		}

		var invite domain.Invite
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &invite)
		}); err != nil {
			return fmt.Errorf("decode invite: %w", err)
		}

		if invite.MaxUses == 0 {
			return nil
		}
		if invite.IsMaxedOut() {
			return ErrInviteExhausted
		}

		invite.RecordUse()
		return setInTxn(txn, key, &invite)
	})
}

// ListInvitesByProject returns all invites created for a project.
func (s *Store) ListInvitesByProject(ctx context.Context, projectID string) ([]*domain.Invite, error) {
	prefix := []byte(inviteByProjectPrefix + projectID + ":")
	var invites []*domain.Invite

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false // We only need keys

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			// Key format: idx:invites:project:projectID:code
			key := string(it.Item().Key())
			idx := strings.LastIndex(key, ":")
			if idx < 0 || idx == len(key)-1 {
				continue
			}
			code := key[idx+1:]

			invite, err := s.GetInviteByCode(ctx, code)
			if err != nil {
				if errors.Is(err, ErrInviteNotFound) {
					continue // Skip missing invites
				}
				return err
			}

			invites = append(invites, invite)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list invites by project: %w", err)
	}

	return invites, nil
}
