// Package id generates the identifiers used across TeamLoop entities.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Invite codes are short and human-shareable. The alphabet drops
// lookalike characters (0/O, 1/l/I) so codes survive being read aloud.
const (
	inviteCodeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz"
	inviteCodeLength   = 8
)

// New creates a prefixed unique ID using NanoID.
// Format: prefix_nanoid (e.g., "usr_V1StGXR8_Z5jdHi6B-myT").
//
// NanoIDs are URL-friendly and compact, with better entropy per
// character than UUIDs.
func New(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "_" + id, nil
}

// MustNew is like New but panics if ID generation fails.
// Use only where failure should crash the program, such as during
// initialization or in tests.
func MustNew(prefix string) string {
	id, err := New(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewInviteCode generates an 8-character invite code.
// Codes are not guaranteed unique; callers must handle collisions
// at insert time.
func NewInviteCode() (string, error) {
	code, err := gonanoid.Generate(inviteCodeAlphabet, inviteCodeLength)
	if err != nil {
		return "", fmt.Errorf("generate invite code: %w", err)
	}
	return code, nil
}
