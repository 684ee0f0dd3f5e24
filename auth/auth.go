// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// PlaceholderSecret is the value shipped in sample env files. It is never accepted.
const PlaceholderSecret = "CHANGE_THIS_IN_ENV"

var (
	ErrInvalidAdminKey    = errors.New("invalid admin key")
	ErrSecretUnconfigured = errors.New("anonymization secret is not configured")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateAdminKey creates an HMAC-based admin key for an election
// This is deterministic and verifiable
func GenerateAdminKey(electionID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(electionID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the election
func ValidateAdminKey(electionID, adminKey, salt string) error {
	expected := GenerateAdminKey(electionID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// Anonymizer turns a raw voter identity into a per-election fingerprint.
type Anonymizer struct {
	secret []byte
}

// NewAnonymizer fails when the secret is empty or still the placeholder:
// a guessable key would let anyone recompute fingerprints from voter ids.
func NewAnonymizer(secret string) (*Anonymizer, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" || secret == PlaceholderSecret {
		return nil, ErrSecretUnconfigured
	}
	return &Anonymizer{secret: []byte(secret)}, nil
}

// Fingerprint returns hex(HMAC-SHA256(secret, electionID ":" voterID)).
// The election id is part of the MAC input, so the same voter gets
// unrelated fingerprints in different elections.
func (a *Anonymizer) Fingerprint(electionID, voterID string) string {
	h := hmac.New(sha256.New, a.secret)
	h.Write([]byte(electionID))
	h.Write([]byte{':'})
	h.Write([]byte(voterID))
	return hex.EncodeToString(h.Sum(nil))
}
